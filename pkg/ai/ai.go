package ai

import (
	"context"
)

// ToolHandler is a function that executes a tool call and returns its result.
// The arguments parameter contains the JSON-encoded arguments from the AI model.
type ToolHandler func(ctx context.Context, arguments string) (string, error)

// Tool defines a function that can be called by an AI model during generation.
type Tool struct {
	Name        string         // Unique identifier for the tool
	Description string         // Human-readable description of what the tool does
	Parameters  map[string]any // JSON Schema defining the tool's input parameters
	Handler     ToolHandler    // Function to execute when the tool is called
}

// ToolCall represents a request from the AI model to invoke a specific tool.
type ToolCall struct {
	ID        string // Unique identifier for this tool call
	Name      string // Name of the tool to invoke
	Arguments string // JSON-encoded arguments for the tool
}

// ChatMessage represents a single message in a chat conversation.
//
// Role must be one of:
//   - "user"      → a user-provided message
//   - "assistant" → a message from the AI assistant
type ChatMessage struct {
	Message string `json:"message"`
	Role    string `json:"role"`
}

// GenerateOptions holds configuration for AI generation requests.
type GenerateOptions struct {
	Model         string   // Model identifier to use for generation
	SystemPrompts []string // System prompts prepended to the request
	Temperature   float64  // Sampling temperature (0.0-2.0)
}

// ModelMetrics contains performance metrics from AI model operations.
type ModelMetrics struct {
	InputTokens    int     `json:"input_tokens"`
	OutputTokens   int     `json:"output_tokens"`
	TotalTokens    int     `json:"total_tokens"`
	DurationMs     int64   `json:"duration_ms"`
	WallClockMs    int64   `json:"wall_clock_ms"`
	TokenPerSecond float32 `json:"tokens_per_second"`
}

// GenerateOption is a functional option for configuring AI generation requests.
type GenerateOption func(*GenerateOptions)

// WithModel returns a GenerateOption that sets the model to use for generation.
func WithModel(model string) GenerateOption {
	return func(o *GenerateOptions) {
		o.Model = model
	}
}

// WithSystemPrompts returns a GenerateOption that sets the system prompts
// to prepend to the generation request.
func WithSystemPrompts(prompts ...string) GenerateOption {
	return func(o *GenerateOptions) {
		o.SystemPrompts = prompts
	}
}

// WithTemperature returns a GenerateOption that sets the sampling temperature.
// Higher values (e.g., 1.0) produce more random outputs, while lower values
// (e.g., 0.2) make outputs more focused and deterministic.
func WithTemperature(temp float64) GenerateOption {
	return func(o *GenerateOptions) {
		o.Temperature = temp
	}
}

// AIClient is the capability surface the matching engine, the assistant, and
// the embedding backfill share. Implementations cover hosted APIs (openai),
// local inference (ollama), and deterministic in-process variants (local,
// mock); the adapter is chosen by configuration at startup.
//
// GenerateEmbedding must return a vector of exactly EmbeddingDimensions
// entries. Implementations recover from their own transport failures where
// possible; callers treat a returned error as "no embedding available", not
// as a reason to abort the surrounding operation.
type AIClient interface {
	GenerateCompletion(
		ctx context.Context,
		prompt string,
		opts ...GenerateOption,
	) (string, error)
	GenerateCompletionWithFormat(
		ctx context.Context,
		name string,
		description string,
		prompt string,
		out any,
		opts ...GenerateOption,
	) error

	GenerateChat(
		ctx context.Context,
		messages []ChatMessage,
		opts ...GenerateOption,
	) (string, error)
	GenerateChatWithTools(
		ctx context.Context,
		messages []ChatMessage,
		tools []Tool,
		opts ...GenerateOption,
	) (string, error)

	GenerateEmbedding(ctx context.Context, input []byte) ([]float32, error)
	EmbeddingDimensions() int

	ResetMetrics()
	GetMetrics() ModelMetrics
}

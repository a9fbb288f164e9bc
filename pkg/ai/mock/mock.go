package mock

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
	"sync"

	"github.com/nwsirlp/skillgraph/pkg/ai"
)

const defaultDimensions = 64

const defaultReply = "I could not find matching candidates in the current data."

// ScriptedToolCall is one tool invocation a MockClient performs during
// GenerateChatWithTools before producing its answer.
type ScriptedToolCall struct {
	Name      string
	Arguments string
}

// MockClient implements ai.AIClient without any model behind it. Embeddings
// are pseudo-random but fully determined by the input bytes, completions are
// popped from a scripted queue, and tool conversations execute a scripted
// call sequence. It backs the "mock" adapter for offline demos and is the
// test double for everything that talks to an AI client.
type MockClient struct {
	dimensions int

	mu          sync.Mutex
	completions []string
	toolCalls   []ScriptedToolCall
	executed    []ai.ToolCall
	metrics     ai.ModelMetrics
}

// NewMockClientParams contains configuration for creating a MockClient.
type NewMockClientParams struct {
	Dimensions  int
	Completions []string
	ToolCalls   []ScriptedToolCall
}

// NewMockClient creates a deterministic scripted client.
func NewMockClient(params NewMockClientParams) *MockClient {
	dimensions := params.Dimensions
	if dimensions <= 0 {
		dimensions = defaultDimensions
	}
	return &MockClient{
		dimensions:  dimensions,
		completions: append([]string{}, params.Completions...),
		toolCalls:   append([]ScriptedToolCall{}, params.ToolCalls...),
	}
}

// EmbeddingDimensions returns the vector size this client produces.
func (c *MockClient) EmbeddingDimensions() int {
	return c.dimensions
}

// GenerateEmbedding derives a unit vector from an fnv64a seed of the input,
// expanded through an xorshift generator. The same input always produces the
// same vector; empty input produces the zero vector.
func (c *MockClient) GenerateEmbedding(ctx context.Context, input []byte) ([]float32, error) {
	vector := make([]float32, c.dimensions)
	if len(strings.TrimSpace(string(input))) == 0 {
		return vector, nil
	}

	h := fnv.New64a()
	h.Write(input)
	state := h.Sum64()
	if state == 0 {
		state = 0x9e3779b97f4a7c15
	}

	var norm float64
	for i := range vector {
		state ^= state << 13
		state ^= state >> 7
		state ^= state << 17
		v := float32(int64(state%2001)-1000) / 1000
		vector[i] = v
		norm += float64(v) * float64(v)
	}
	if norm > 0 {
		scale := float32(1 / math.Sqrt(norm))
		for i := range vector {
			vector[i] *= scale
		}
	}

	c.addTokens(len(input) / 4)
	return vector, nil
}

func (c *MockClient) nextCompletion() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.completions) == 0 {
		return ""
	}
	next := c.completions[0]
	c.completions = c.completions[1:]
	return next
}

func (c *MockClient) GenerateCompletion(ctx context.Context, prompt string, opts ...ai.GenerateOption) (string, error) {
	c.addTokens(len(prompt) / 4)
	if next := c.nextCompletion(); next != "" {
		return next, nil
	}
	return defaultReply, nil
}

func (c *MockClient) GenerateCompletionWithFormat(ctx context.Context, name string, description string, prompt string, out any, opts ...ai.GenerateOption) error {
	c.addTokens(len(prompt) / 4)
	next := c.nextCompletion()
	if next == "" {
		next = "{}"
	}
	return ai.UnmarshalFlexible(next, out)
}

func (c *MockClient) GenerateChat(ctx context.Context, messages []ai.ChatMessage, opts ...ai.GenerateOption) (string, error) {
	for _, m := range messages {
		c.addTokens(len(m.Message) / 4)
	}
	if next := c.nextCompletion(); next != "" {
		return next, nil
	}
	return defaultReply, nil
}

// GenerateChatWithTools executes the scripted tool calls against the
// provided tool handlers, then returns the next scripted completion. With no
// completion scripted, the joined tool results become the answer so the
// conversation still reflects what the tools found.
func (c *MockClient) GenerateChatWithTools(ctx context.Context, messages []ai.ChatMessage, tools []ai.Tool, opts ...ai.GenerateOption) (string, error) {
	for _, m := range messages {
		c.addTokens(len(m.Message) / 4)
	}

	c.mu.Lock()
	script := c.toolCalls
	c.toolCalls = nil
	c.mu.Unlock()

	var results []string
	for i, call := range script {
		var handler ai.ToolHandler
		for _, tool := range tools {
			if tool.Name == call.Name {
				handler = tool.Handler
				break
			}
		}
		if handler == nil {
			continue
		}

		result, err := handler(ctx, call.Arguments)
		if err != nil {
			result = "tool failed: " + err.Error()
		}
		results = append(results, result)

		c.mu.Lock()
		c.executed = append(c.executed, ai.ToolCall{
			ID:        "mock_call_" + string(rune('a'+i)),
			Name:      call.Name,
			Arguments: call.Arguments,
		})
		c.mu.Unlock()
	}

	if next := c.nextCompletion(); next != "" {
		return next, nil
	}
	if len(results) > 0 {
		return strings.Join(results, "\n\n"), nil
	}
	return defaultReply, nil
}

// ExecutedToolCalls returns the tool calls performed so far, in order.
func (c *MockClient) ExecutedToolCalls() []ai.ToolCall {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]ai.ToolCall{}, c.executed...)
}

// ResetMetrics clears all accumulated metrics to zero.
func (c *MockClient) ResetMetrics() {
	c.mu.Lock()
	c.metrics = ai.ModelMetrics{}
	c.mu.Unlock()
}

// GetMetrics returns the accumulated metrics since the last reset.
func (c *MockClient) GetMetrics() ai.ModelMetrics {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.metrics
}

func (c *MockClient) addTokens(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.metrics.InputTokens += n
	c.metrics.TotalTokens += n
}

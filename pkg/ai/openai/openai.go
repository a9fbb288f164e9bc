package openai

import (
	"sync"

	"github.com/nwsirlp/skillgraph/pkg/ai"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"golang.org/x/sync/semaphore"
)

const (
	defaultDimensions     = 1536
	defaultTimeoutMin     = 2
	defaultParallelEmbeds = 4
)

// OpenAIClient implements ai.AIClient against OpenAI-compatible APIs. It
// manages separate clients for embeddings and chat, so the two concerns can
// point at different endpoints (e.g. a hosted embedding API and a
// self-hosted chat gateway).
//
// An OpenAIClient should be created using NewOpenAIClient.
type OpenAIClient struct {
	embeddingModel string
	chatModel      string

	embeddingURL string
	embeddingKey string
	chatURL      string
	chatKey      string

	embeddingDimensions int
	timeoutMin          int

	embeddingLock *semaphore.Weighted

	metricsLock sync.Mutex
	metrics     ai.ModelMetrics

	ChatClient      *openai.Client
	EmbeddingClient *openai.Client
}

// NewOpenAIClientParams defines the configuration for creating an
// OpenAIClient.
//
// EmbeddingDimensions is the vector size this client reports and enforces:
// longer model output is truncated, shorter output padded. It must match the
// dimensionality of the vectors already in the store.
type NewOpenAIClientParams struct {
	EmbeddingModel string
	ChatModel      string

	EmbeddingURL string
	EmbeddingKey string
	ChatURL      string
	ChatKey      string

	EmbeddingDimensions int
	RequestTimeoutMin   int
	MaxParallelEmbeds   int64
}

// NewOpenAIClient creates a client configured with the provided parameters.
// A concern whose API key is empty gets a nil underlying client; calls
// hitting it will fail, which the caller-side fallbacks handle.
//
// Example:
//
//	client := openai.NewOpenAIClient(openai.NewOpenAIClientParams{
//		EmbeddingModel: "text-embedding-3-small",
//		ChatModel:      "gpt-4o-mini",
//		EmbeddingKey:   os.Getenv("OPENAI_API_KEY"),
//		ChatKey:        os.Getenv("OPENAI_API_KEY"),
//	})
func NewOpenAIClient(
	params NewOpenAIClientParams,
) *OpenAIClient {
	chatClient := newOpenaiClient(params.ChatURL, params.ChatKey)
	embedClient := newOpenaiClient(params.EmbeddingURL, params.EmbeddingKey)

	dimensions := params.EmbeddingDimensions
	if dimensions <= 0 {
		dimensions = defaultDimensions
	}
	timeoutMin := params.RequestTimeoutMin
	if timeoutMin <= 0 {
		timeoutMin = defaultTimeoutMin
	}
	parallelEmbeds := params.MaxParallelEmbeds
	if parallelEmbeds <= 0 {
		parallelEmbeds = defaultParallelEmbeds
	}

	return &OpenAIClient{
		embeddingModel: params.EmbeddingModel,
		chatModel:      params.ChatModel,

		embeddingURL: params.EmbeddingURL,
		embeddingKey: params.EmbeddingKey,
		chatURL:      params.ChatURL,
		chatKey:      params.ChatKey,

		embeddingDimensions: dimensions,
		timeoutMin:          timeoutMin,

		embeddingLock: semaphore.NewWeighted(parallelEmbeds),

		metricsLock: sync.Mutex{},
		metrics:     ai.ModelMetrics{},

		ChatClient:      chatClient,
		EmbeddingClient: embedClient,
	}
}

// EmbeddingDimensions returns the vector size this client produces.
func (c *OpenAIClient) EmbeddingDimensions() int {
	return c.embeddingDimensions
}

func newOpenaiClient(
	baseURL string,
	apiKey string,
) *openai.Client {
	if apiKey == "" {
		return nil
	}
	options := []option.RequestOption{
		option.WithAPIKey(apiKey),
	}

	if baseURL != "" {
		options = append(options, option.WithBaseURL(baseURL))
	}

	client := openai.NewClient(options...)

	return &client
}

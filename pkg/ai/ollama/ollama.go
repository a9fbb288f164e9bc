package ollama

import (
	"net/http"
	"net/url"
	"sync"

	"github.com/nwsirlp/skillgraph/pkg/ai"

	"github.com/ollama/ollama/api"
	"golang.org/x/sync/semaphore"
)

const (
	defaultDimensions = 768
	defaultTimeoutMin = 5
)

// OllamaClient implements ai.AIClient against a locally-hosted Ollama
// server. A weighted semaphore caps concurrent requests, since a single
// Ollama instance serializes badly under load.
type OllamaClient struct {
	embeddingModel string
	chatModel      string

	embeddingDimensions int
	timeoutMin          int

	reqLock *semaphore.Weighted

	metricsLock sync.Mutex
	metrics     ai.ModelMetrics

	baseURL    *url.URL
	apiKey     string
	httpClient *http.Client

	Client *api.Client
}

// NewOllamaClientParams contains configuration options for creating a new
// OllamaClient.
type NewOllamaClientParams struct {
	EmbeddingModel string
	ChatModel      string

	BaseURL string
	ApiKey  string

	EmbeddingDimensions   int
	RequestTimeoutMin     int
	MaxConcurrentRequests int64
}

type headerTransport struct {
	headers map[string]string
	rt      http.RoundTripper
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// clone so original request isn't modified
	r := req.Clone(req.Context())
	for k, v := range t.headers {
		// don't overwrite if already set
		if r.Header.Get(k) == "" {
			r.Header.Set(k, v)
		}
	}
	return t.rt.RoundTrip(r)
}

// NewOllamaClient creates a new Ollama-based AI client with the specified
// configuration. It connects to the Ollama server at the given BaseURL (or
// the default if empty) and injects the API key as a bearer header when one
// is configured.
func NewOllamaClient(
	params NewOllamaClientParams,
) (*OllamaClient, error) {
	var (
		u   *url.URL
		err error
	)

	if params.BaseURL != "" {
		u, err = url.Parse(params.BaseURL)
		if err != nil {
			return nil, err
		}
	}

	httpClient := &http.Client{
		Transport: &headerTransport{
			headers: map[string]string{
				"Authorization": "Bearer " + params.ApiKey,
			},
			rt: http.DefaultTransport,
		},
	}

	cli := api.NewClient(u, httpClient)

	maxConcurrent := params.MaxConcurrentRequests
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	dimensions := params.EmbeddingDimensions
	if dimensions <= 0 {
		dimensions = defaultDimensions
	}
	timeoutMin := params.RequestTimeoutMin
	if timeoutMin <= 0 {
		timeoutMin = defaultTimeoutMin
	}

	return &OllamaClient{
		embeddingModel: params.EmbeddingModel,
		chatModel:      params.ChatModel,

		embeddingDimensions: dimensions,
		timeoutMin:          timeoutMin,

		reqLock: semaphore.NewWeighted(maxConcurrent),

		metricsLock: sync.Mutex{},
		metrics:     ai.ModelMetrics{},

		baseURL:    u,
		apiKey:     params.ApiKey,
		httpClient: httpClient,

		Client: cli,
	}, nil
}

// EmbeddingDimensions returns the vector size this client produces.
func (c *OllamaClient) EmbeddingDimensions() int {
	return c.embeddingDimensions
}

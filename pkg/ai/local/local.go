package local

import (
	"context"
	"errors"
	"hash/fnv"
	"math"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/nwsirlp/skillgraph/pkg/ai"
)

const defaultDimensions = 256

// ErrTextGeneration is returned by all completion and chat methods; the
// local adapter only embeds.
var ErrTextGeneration = errors.New("local adapter does not support text generation")

// LocalClient implements ai.AIClient with an in-process feature-hashing
// embedder: tokens are hashed into a fixed-size vector which is then L2
// normalized. No network, fully deterministic, and texts sharing vocabulary
// land near each other, which is enough signal for demo matching and for
// the fallback path when a real provider is down.
type LocalClient struct {
	dimensions int

	metricsLock sync.Mutex
	metrics     ai.ModelMetrics
}

// NewLocalClientParams contains configuration for creating a LocalClient.
type NewLocalClientParams struct {
	Dimensions int
}

// NewLocalClient creates a feature-hashing embedder with the given vector
// size (default 256).
func NewLocalClient(params NewLocalClientParams) *LocalClient {
	dimensions := params.Dimensions
	if dimensions <= 0 {
		dimensions = defaultDimensions
	}
	return &LocalClient{
		dimensions: dimensions,
	}
}

// EmbeddingDimensions returns the vector size this client produces.
func (c *LocalClient) EmbeddingDimensions() int {
	return c.dimensions
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// GenerateEmbedding hashes each token into a bucket, with the hash's top bit
// choosing the sign, and L2-normalizes the result. Empty input maps to the
// zero vector.
func (c *LocalClient) GenerateEmbedding(ctx context.Context, input []byte) ([]float32, error) {
	start := time.Now()
	vector := make([]float32, c.dimensions)

	tokens := tokenize(string(input))
	for _, token := range tokens {
		h := fnv.New64a()
		h.Write([]byte(token))
		sum := h.Sum64()

		idx := int(sum % uint64(c.dimensions))
		if sum&(1<<63) != 0 {
			vector[idx] -= 1
		} else {
			vector[idx] += 1
		}
	}

	var norm float64
	for _, v := range vector {
		norm += float64(v) * float64(v)
	}
	if norm > 0 {
		scale := float32(1 / math.Sqrt(norm))
		for i := range vector {
			vector[i] *= scale
		}
	}

	c.modifyMetrics(ai.ModelMetrics{
		InputTokens: len(tokens),
		TotalTokens: len(tokens),
		DurationMs:  time.Since(start).Milliseconds(),
	})

	return vector, nil
}

func (c *LocalClient) GenerateCompletion(ctx context.Context, prompt string, opts ...ai.GenerateOption) (string, error) {
	return "", ErrTextGeneration
}

func (c *LocalClient) GenerateCompletionWithFormat(ctx context.Context, name string, description string, prompt string, out any, opts ...ai.GenerateOption) error {
	return ErrTextGeneration
}

func (c *LocalClient) GenerateChat(ctx context.Context, messages []ai.ChatMessage, opts ...ai.GenerateOption) (string, error) {
	return "", ErrTextGeneration
}

func (c *LocalClient) GenerateChatWithTools(ctx context.Context, messages []ai.ChatMessage, tools []ai.Tool, opts ...ai.GenerateOption) (string, error) {
	return "", ErrTextGeneration
}

// ResetMetrics clears all accumulated metrics to zero.
func (c *LocalClient) ResetMetrics() {
	c.metricsLock.Lock()
	c.metrics = ai.ModelMetrics{}
	c.metricsLock.Unlock()
}

// GetMetrics returns the accumulated metrics since the last reset.
func (c *LocalClient) GetMetrics() ai.ModelMetrics {
	c.metricsLock.Lock()
	defer c.metricsLock.Unlock()
	return c.metrics
}

func (c *LocalClient) modifyMetrics(m ai.ModelMetrics) {
	c.metricsLock.Lock()
	defer c.metricsLock.Unlock()

	c.metrics.InputTokens += m.InputTokens
	c.metrics.TotalTokens += m.TotalTokens
	c.metrics.DurationMs += m.DurationMs
}

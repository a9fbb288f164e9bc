package ai

import (
	"context"

	"github.com/nwsirlp/skillgraph/pkg/logger"
)

// embedFallbackClient delegates everything to the primary client but
// recovers failed embedding calls with a secondary embedder. Callers above
// the provider layer never see a transport error turn into a missing score.
type embedFallbackClient struct {
	AIClient
	fallback AIClient
}

// WithEmbedFallback wraps primary so that a failed GenerateEmbedding call is
// answered by fallback instead of an error. The fallback must produce
// vectors of the same dimensionality as the primary, otherwise similarity
// checks against stored vectors will fail downstream.
func WithEmbedFallback(primary AIClient, fallback AIClient) AIClient {
	return &embedFallbackClient{
		AIClient: primary,
		fallback: fallback,
	}
}

func (c *embedFallbackClient) GenerateEmbedding(ctx context.Context, input []byte) ([]float32, error) {
	vector, err := c.AIClient.GenerateEmbedding(ctx, input)
	if err == nil {
		return vector, nil
	}

	logger.Warn("[AI] Embedding provider failed, using deterministic fallback", "error", err)
	return c.fallback.GenerateEmbedding(ctx, input)
}

package ollama

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/factgraph/backend/pkg/ai"

	"github.com/ollama/ollama/api"
)

// GenerateEmbedding creates a vector embedding for the given input text
// using the configured embedding model on Ollama. Vectors are truncated or
// zero padded to the configured dimensions.
func (c *GraphOllamaClient) GenerateEmbedding(
	ctx context.Context,
	input []byte,
) ([]float32, error) {
	text := strings.TrimSpace(string(input))
	if text == "" {
		return nil, errors.New("cannot embed empty input")
	}

	rCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req := &api.EmbedRequest{
		Model: c.embeddingModel,
		Input: text,
	}

	if err := c.reqLock.Acquire(rCtx, 1); err != nil {
		return nil, err
	}
	defer c.reqLock.Release(1)

	res, err := c.Client.Embed(rCtx, req)
	if err != nil {
		return nil, err
	}

	c.modifyMetrics(ai.ModelMetrics{
		InputTokens: res.PromptEvalCount,
		TotalTokens: res.PromptEvalCount,
		DurationMs:  res.TotalDuration.Milliseconds(),
	})

	if len(res.Embeddings) != 1 {
		return nil, fmt.Errorf("embedding response size mismatch: got %d want 1", len(res.Embeddings))
	}
	return fitDimensions(res.Embeddings[0], c.dimensions), nil
}

func fitDimensions(in []float32, dim int) []float32 {
	if dim <= 0 {
		dim = len(in)
	}
	out := make([]float32, dim)
	copy(out, in)
	return out
}

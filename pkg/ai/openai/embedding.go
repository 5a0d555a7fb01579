package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/factgraph/backend/pkg/ai"

	"github.com/openai/openai-go/v3"
)

// GenerateEmbedding creates a vector embedding for the given input text
// using the configured embedding model.
//
// Blank input is rejected: a zero vector would make every cosine comparison
// undefined.
func (c *GraphOpenAIClient) GenerateEmbedding(ctx context.Context, input []byte) ([]float32, error) {
	text := strings.TrimSpace(string(input))
	if text == "" {
		return nil, errors.New("cannot embed empty input")
	}
	if c.EmbeddingClient == nil {
		return nil, errors.New("openai embedding client is not configured")
	}

	rCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	body := openai.EmbeddingNewParams{
		Input:          openai.EmbeddingNewParamsInputUnion{OfArrayOfStrings: []string{text}},
		Model:          c.embeddingModel,
		EncodingFormat: openai.EmbeddingNewParamsEncodingFormatFloat,
	}

	if err := c.reqLock.Acquire(rCtx, 1); err != nil {
		return nil, err
	}
	defer c.reqLock.Release(1)

	start := time.Now()
	response, err := c.EmbeddingClient.Embeddings.New(rCtx, body)
	if err != nil {
		return nil, err
	}

	c.modifyMetrics(ai.ModelMetrics{
		InputTokens: int(response.Usage.PromptTokens),
		TotalTokens: int(response.Usage.TotalTokens),
		DurationMs:  time.Since(start).Milliseconds(),
	})

	if len(response.Data) != 1 {
		return nil, fmt.Errorf("embedding response size mismatch: got %d want 1", len(response.Data))
	}
	return fitDimensions(response.Data[0].Embedding, c.dimensions), nil
}

// fitDimensions converts to float32 and truncates or zero pads to dim.
// dim <= 0 keeps the provider's dimensionality.
func fitDimensions(in []float64, dim int) []float32 {
	if dim <= 0 {
		dim = len(in)
	}
	out := make([]float32, dim)
	for i := 0; i < dim && i < len(in); i++ {
		out[i] = float32(in[i])
	}
	return out
}

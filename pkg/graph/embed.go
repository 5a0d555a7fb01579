package graph

import (
	"context"
	"fmt"
	"time"

	"github.com/factgraph/backend/internal/util"
	"github.com/factgraph/backend/pkg/ai"
	"github.com/factgraph/backend/pkg/common"
)

// Embedder turns text into a model tagged vector.
type Embedder interface {
	Embed(ctx context.Context, text string) (common.Embedding, error)
}

// AIEmbedder embeds text through an ai.GraphAIClient. Every attempt is
// bounded by timeout; failed attempts are retried up to maxRetries times.
type AIEmbedder struct {
	client     ai.GraphAIClient
	timeout    time.Duration
	maxRetries int
}

func NewAIEmbedder(client ai.GraphAIClient, timeout time.Duration, maxRetries int) *AIEmbedder {
	if timeout <= 0 {
		timeout = time.Minute
	}
	if maxRetries <= 0 {
		maxRetries = 1
	}
	return &AIEmbedder{client: client, timeout: timeout, maxRetries: maxRetries}
}

// Embed returns an error wrapping ErrEmbeddingFailure when the provider
// fails or returns a vector that cannot be compared.
func (e *AIEmbedder) Embed(ctx context.Context, text string) (common.Embedding, error) {
	vec, err := util.RetryWithContext(ctx, e.maxRetries, func(ctx context.Context) ([]float32, error) {
		eCtx, cancel := context.WithTimeout(ctx, e.timeout)
		defer cancel()
		return e.client.GenerateEmbedding(eCtx, []byte(text))
	})
	if err != nil {
		return common.Embedding{}, fmt.Errorf("%w: %w", ErrEmbeddingFailure, err)
	}

	emb := common.Embedding{Model: e.client.EmbeddingModel(), Vector: vec}
	if err := ValidateEmbedding(emb); err != nil {
		return common.Embedding{}, fmt.Errorf("%w: %w", ErrEmbeddingFailure, err)
	}
	return emb, nil
}

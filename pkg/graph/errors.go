package graph

import (
	"errors"

	"github.com/factgraph/backend/pkg/topic"
)

var (
	// ErrEmbeddingFailure marks a provider error or timeout while embedding
	// a new fact. The fact is stored without an embedding and not linked.
	ErrEmbeddingFailure = errors.New("embedding failure")
	// ErrClassificationFailure marks a fact that fell back to the misc topic.
	ErrClassificationFailure = topic.ErrClassificationFailure
	// ErrDimensionMismatch is returned when two embeddings differ in length
	// or come from different models.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
	// ErrMalformedEmbedding is returned for empty, zero or non-finite vectors.
	ErrMalformedEmbedding = errors.New("malformed embedding")

	ErrDuplicateFact    = errors.New("duplicate fact in case")
	ErrInvalidKind      = errors.New("invalid fact kind")
	ErrEmptyContent     = errors.New("empty fact content")
	ErrNoFactsExtracted = errors.New("no facts could be extracted")
)

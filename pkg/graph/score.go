package graph

import (
	"fmt"
	"math"

	"github.com/factgraph/backend/pkg/common"
	"github.com/factgraph/backend/pkg/topic"
)

// DefaultTopicBoost is added to the cosine similarity of two facts that
// share a topic.
const DefaultTopicBoost = 0.10

// Cosine returns dot(a, b) / (|a| * |b|), computed in float64.
func Cosine(a, b common.Embedding) (float64, error) {
	if a.Model != "" && b.Model != "" && a.Model != b.Model {
		return 0, fmt.Errorf("%w: model %q vs %q", ErrDimensionMismatch, a.Model, b.Model)
	}
	if len(a.Vector) != len(b.Vector) {
		return 0, fmt.Errorf("%w: %d vs %d", ErrDimensionMismatch, len(a.Vector), len(b.Vector))
	}
	if len(a.Vector) == 0 {
		return 0, fmt.Errorf("%w: empty vector", ErrMalformedEmbedding)
	}

	var dot, na, nb float64
	for i := range a.Vector {
		x := float64(a.Vector[i])
		y := float64(b.Vector[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0, fmt.Errorf("%w: zero magnitude", ErrMalformedEmbedding)
	}

	sim := dot / (math.Sqrt(na) * math.Sqrt(nb))
	if math.IsNaN(sim) || math.IsInf(sim, 0) {
		return 0, fmt.Errorf("%w: non-finite similarity", ErrMalformedEmbedding)
	}
	return sim, nil
}

// Score is the affinity between a new fact and a candidate: the cosine
// similarity of their embeddings plus DefaultTopicBoost when the topics are
// equal. The result is not clamped.
func Score(newEmb common.Embedding, newTopic topic.Topic, candEmb common.Embedding, candTopic topic.Topic) (float64, error) {
	return scoreWithBoost(newEmb, newTopic, candEmb, candTopic, DefaultTopicBoost)
}

func scoreWithBoost(
	newEmb common.Embedding,
	newTopic topic.Topic,
	candEmb common.Embedding,
	candTopic topic.Topic,
	boost float64,
) (float64, error) {
	sim, err := Cosine(newEmb, candEmb)
	if err != nil {
		return 0, err
	}
	if newTopic == candTopic {
		sim += boost
	}
	return sim, nil
}

// Strength converts a score into the stored edge strength in [0, 100].
func Strength(score float64) int {
	s := int(math.Round(math.Min(score, 1) * 100))
	return max(s, 0)
}

// ValidateEmbedding rejects vectors that cannot take part in cosine
// comparisons.
func ValidateEmbedding(e common.Embedding) error {
	if len(e.Vector) == 0 {
		return fmt.Errorf("%w: empty vector", ErrMalformedEmbedding)
	}
	var norm float64
	for _, v := range e.Vector {
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return fmt.Errorf("%w: non-finite component", ErrMalformedEmbedding)
		}
		norm += f * f
	}
	if norm == 0 {
		return fmt.Errorf("%w: zero magnitude", ErrMalformedEmbedding)
	}
	return nil
}

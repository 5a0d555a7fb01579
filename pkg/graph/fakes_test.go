package graph

import (
	"context"
	"errors"
	"math"
	"sync"

	"github.com/factgraph/backend/pkg/common"
	"github.com/factgraph/backend/pkg/topic"
)

// unitAt returns a 3-dim vector whose cosine with (1, 0, 0) is c.
func unitAt(c float64) []float32 {
	return []float32{float32(c), float32(math.Sqrt(1 - c*c)), 0}
}

var errFakeEmbed = errors.New("embedding provider down")

type fakeEmbedder struct {
	mu      sync.Mutex
	vectors map[string][]float32
	calls   int
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) (common.Embedding, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	v, ok := f.vectors[text]
	if !ok {
		return common.Embedding{}, errFakeEmbed
	}
	return common.Embedding{Model: "fake-embed", Vector: v}, nil
}

type fakeClassifier struct {
	topics map[string]topic.Topic
}

func (f *fakeClassifier) Classify(ctx context.Context, text string) (topic.Topic, error) {
	t, ok := f.topics[text]
	if !ok {
		return topic.Misc, topic.ErrClassificationFailure
	}
	return t, nil
}

type fakeExtractor struct {
	facts []string
	err   error
}

func (f *fakeExtractor) Extract(ctx context.Context, text string) ([]string, error) {
	return f.facts, f.err
}

type failingLocker struct{}

func (failingLocker) Lock(ctx context.Context, caseID int64) (context.Context, func(), error) {
	return nil, nil, errors.New("lock table unavailable")
}

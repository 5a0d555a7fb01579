package graph

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/factgraph/backend/pkg/ai"
)

type fakeAIClient struct {
	mu          sync.Mutex
	completions func(prompt string) (string, error)
	embedding   func(input string) ([]float32, error)
	prompts     []string
}

func (f *fakeAIClient) GenerateCompletion(ctx context.Context, prompt string, opts ...ai.GenerateOption) (string, error) {
	f.mu.Lock()
	f.prompts = append(f.prompts, prompt)
	f.mu.Unlock()
	return f.completions(prompt)
}

func (f *fakeAIClient) GenerateCompletionWithFormat(context.Context, string, string, string, any, ...ai.GenerateOption) error {
	return errors.New("not used")
}

func (f *fakeAIClient) GenerateEmbedding(ctx context.Context, input []byte) ([]float32, error) {
	return f.embedding(string(input))
}

func (f *fakeAIClient) EmbeddingModel() string { return "fake-embed" }

func (f *fakeAIClient) ResetMetrics() {}

func (f *fakeAIClient) GetMetrics() ai.ModelMetrics { return ai.ModelMetrics{} }

func TestParseFactLines(t *testing.T) {
	in := "Name: John Smith\n\n  - Employment: Apple  \n* Location: San Francisco\n1. Education: MIT\n2) Born 1990\n   \n2015. Graduated"
	got := ParseFactLines(in)
	want := []string{
		"Name: John Smith",
		"Employment: Apple",
		"Location: San Francisco",
		"Education: MIT",
		"Born 1990",
		"2015. Graduated",
	}
	if len(got) != len(want) {
		t.Fatalf("expected %q, got %q", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("line %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}

func TestAIExtractor_SkipsFailingChunk(t *testing.T) {
	client := &fakeAIClient{
		completions: func(prompt string) (string, error) {
			if strings.HasPrefix(prompt, "bad") {
				return "", errors.New("model overloaded")
			}
			return "Fact from " + prompt[:4] + "\nsecond", nil
		},
	}
	e := NewAIExtractor(NewAIExtractorParams{Client: client, ChunkSize: 10, Timeout: time.Second, MaxRetries: 1})

	facts, err := e.Extract(context.Background(), "good one\nbad chunk\ngood two")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	want := []string{"Fact from good", "second", "Fact from good", "second"}
	if len(facts) != len(want) {
		t.Fatalf("expected %q, got %q", want, facts)
	}
	if len(client.prompts) != 3 {
		t.Fatalf("expected 3 chunks sent, got %d", len(client.prompts))
	}
}

func TestAIExtractor_AllChunksFail(t *testing.T) {
	client := &fakeAIClient{
		completions: func(string) (string, error) { return "", errors.New("model overloaded") },
	}
	e := NewAIExtractor(NewAIExtractorParams{Client: client, ChunkSize: 5, MaxRetries: 2})

	_, err := e.Extract(context.Background(), "aaaa\nbbbb")
	if err == nil || !strings.Contains(err.Error(), "chunk 1") {
		t.Fatalf("expected joined chunk errors, got %v", err)
	}
	if len(client.prompts) != 4 {
		t.Fatalf("expected 2 attempts per chunk, got %d calls", len(client.prompts))
	}
}

func TestAIExtractor_EmptyDocument(t *testing.T) {
	client := &fakeAIClient{completions: func(string) (string, error) { return "x", nil }}
	e := NewAIExtractor(NewAIExtractorParams{Client: client})
	facts, err := e.Extract(context.Background(), "\n \n")
	if err != nil || len(facts) != 0 {
		t.Fatalf("expected no facts and no error, got %q %v", facts, err)
	}
}

func TestAIEmbedder(t *testing.T) {
	calls := 0
	client := &fakeAIClient{
		embedding: func(input string) ([]float32, error) {
			calls++
			if calls == 1 {
				return nil, errors.New("temporary")
			}
			if input == "zero" {
				return []float32{0, 0}, nil
			}
			return []float32{0.1, 0.2}, nil
		},
	}
	e := NewAIEmbedder(client, time.Second, 2)

	got, err := e.Embed(context.Background(), "text")
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if got.Model != "fake-embed" || got.Dim() != 2 {
		t.Fatalf("unexpected embedding %+v", got)
	}

	calls = 0
	if _, err := e.Embed(context.Background(), "zero"); !errors.Is(err, ErrEmbeddingFailure) || !errors.Is(err, ErrMalformedEmbedding) {
		t.Fatalf("expected malformed embedding failure, got %v", err)
	}

	calls = -10
	client.embedding = func(string) ([]float32, error) { return nil, errors.New("down") }
	if _, err := e.Embed(context.Background(), "text"); !errors.Is(err, ErrEmbeddingFailure) {
		t.Fatalf("expected ErrEmbeddingFailure, got %v", err)
	}
}

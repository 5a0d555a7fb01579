package setup

import (
	"testing"
	"time"

	gai "github.com/factgraph/backend/pkg/ai/openai"
	"github.com/factgraph/backend/pkg/store/memory"
)

func TestAIClientFromEnv(t *testing.T) {
	t.Setenv("AI_ADAPTER", "openai")
	t.Setenv("AI_EMBED_MODEL", "text-embedding-3-small")
	client, err := AIClientFromEnv()
	if err != nil {
		t.Fatalf("AIClientFromEnv: %v", err)
	}
	if _, ok := client.(*gai.GraphOpenAIClient); !ok {
		t.Fatalf("expected openai client, got %T", client)
	}
	if client.EmbeddingModel() != "text-embedding-3-small" {
		t.Fatalf("unexpected embedding model %q", client.EmbeddingModel())
	}

	t.Setenv("AI_ADAPTER", "ollama")
	t.Setenv("AI_CHAT_URL", "http://localhost:11434")
	if _, err := AIClientFromEnv(); err != nil {
		t.Fatalf("ollama: %v", err)
	}

	t.Setenv("AI_ADAPTER", "carrier-pigeon")
	if _, err := AIClientFromEnv(); err == nil {
		t.Fatalf("expected error for unknown adapter")
	}
}

func TestPipeline(t *testing.T) {
	t.Setenv("AI_ADAPTER", "openai")
	client, err := AIClientFromEnv()
	if err != nil {
		t.Fatalf("AIClientFromEnv: %v", err)
	}
	p, err := Pipeline(client, memory.New(), nil)
	if err != nil {
		t.Fatalf("Pipeline: %v", err)
	}
	if p.Store() == nil {
		t.Fatalf("expected store")
	}
}

func TestFormatDuration(t *testing.T) {
	if got := FormatDuration(time.Hour + 2*time.Minute + 3*time.Second); got != "01:02:03" {
		t.Fatalf("got %s", got)
	}
}

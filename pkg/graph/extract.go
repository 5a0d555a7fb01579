package graph

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/factgraph/backend/internal/util"
	"github.com/factgraph/backend/pkg/ai"
	"github.com/factgraph/backend/pkg/logger"
)

// Extractor turns a document into candidate facts in document order.
type Extractor interface {
	Extract(ctx context.Context, text string) ([]string, error)
}

// AIExtractor sends every chunk of a document to a chat model and reads
// one fact per output line.
type AIExtractor struct {
	client     ai.GraphAIClient
	chunkSize  int
	timeout    time.Duration
	maxRetries int
	model      string
}

// NewAIExtractorParams configures an AIExtractor.
type NewAIExtractorParams struct {
	Client     ai.GraphAIClient
	ChunkSize  int
	Timeout    time.Duration
	MaxRetries int
	Model      string
}

func NewAIExtractor(params NewAIExtractorParams) *AIExtractor {
	chunkSize := params.ChunkSize
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	timeout := params.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	retries := params.MaxRetries
	if retries <= 0 {
		retries = 1
	}
	return &AIExtractor{
		client:     params.Client,
		chunkSize:  chunkSize,
		timeout:    timeout,
		maxRetries: retries,
		model:      params.Model,
	}
}

// Extract processes chunks in order. A failing chunk is logged and skipped;
// when every chunk fails the joined error is returned.
func (e *AIExtractor) Extract(ctx context.Context, text string) ([]string, error) {
	chunks := SplitText(text, e.chunkSize)
	if len(chunks) == 0 {
		return nil, nil
	}

	opts := []ai.GenerateOption{
		ai.WithSystemPrompts(ai.ExtractPrompt),
		ai.WithTemperature(0.3),
	}
	if e.model != "" {
		opts = append(opts, ai.WithModel(e.model))
	}

	var (
		facts []string
		errs  []error
	)
	for i, chunk := range chunks {
		out, err := util.RetryWithContext(ctx, e.maxRetries, func(ctx context.Context) (string, error) {
			cCtx, cancel := context.WithTimeout(ctx, e.timeout)
			defer cancel()
			return e.client.GenerateCompletion(cCtx, chunk, opts...)
		})
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			logger.Warn("[Graph] Extraction failed for chunk", "chunk", i, "err", err)
			errs = append(errs, fmt.Errorf("chunk %d: %w", i, err))
			continue
		}
		lines := ParseFactLines(out)
		logger.Debug("[Graph] Extracted facts from chunk", "chunk", i, "facts", len(lines))
		facts = append(facts, lines...)
	}

	if len(errs) == len(chunks) {
		return nil, errors.Join(errs...)
	}
	return facts, nil
}

var bulletPrefix = regexp.MustCompile(`^(?:[-*•]\s+|\d{1,3}[.)]\s+)`)

// ParseFactLines splits a model answer into facts: one per line, trimmed,
// blank lines dropped and list bullets removed.
func ParseFactLines(s string) []string {
	var out []string
	for line := range strings.SplitSeq(s, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimSpace(bulletPrefix.ReplaceAllString(line, ""))
		if line == "" {
			continue
		}
		out = append(out, line)
	}
	return out
}

package queue

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/factgraph/backend/internal/storage"
	"github.com/factgraph/backend/pkg/graph"
	"github.com/factgraph/backend/pkg/logger"
	"github.com/factgraph/backend/pkg/store"
)

// Ingester is the part of *graph.Pipeline the worker needs.
type Ingester interface {
	IngestDocument(ctx context.Context, caseID int64, text string) (graph.IngestResult, error)
}

// ProcessIngestMessage fetches the referenced document and ingests it.
//
// Errors that a redelivery cannot fix (malformed message, unknown case,
// empty document or no extractable facts) are logged and swallowed so
// the message is acked. Every other error is returned for a retry.
func ProcessIngestMessage(
	ctx context.Context,
	docs storage.DocumentStore,
	ingester Ingester,
	body []byte,
) error {
	msg, err := ParseIngestMessage(body)
	if err != nil {
		logger.Error("[Queue] Dropping malformed ingest message", "err", err)
		return nil
	}

	log := []any{"case_id", msg.CaseID, "key", msg.DocumentKey, "correlation_id", msg.CorrelationID}

	data, err := docs.GetDocument(ctx, msg.DocumentKey)
	if err != nil {
		return fmt.Errorf("failed to fetch document %s: %w", msg.DocumentKey, err)
	}
	if !utf8.Valid(data) {
		logger.Error("[Queue] Dropping document that is not valid UTF-8", log...)
		return nil
	}

	res, err := ingester.IngestDocument(ctx, msg.CaseID, string(data))
	switch {
	case err == nil:
	case errors.Is(err, store.ErrNotFound),
		errors.Is(err, graph.ErrEmptyContent),
		errors.Is(err, graph.ErrNoFactsExtracted):
		logger.Warn("[Queue] Ingest produced no facts", append(log, "err", err)...)
		return nil
	default:
		return fmt.Errorf("failed to ingest document %s: %w", msg.DocumentKey, err)
	}

	logger.Info("[Queue] Document ingested", append(log, "facts_created", res.FactsCreated, "skipped", res.Skipped)...)
	return nil
}

package graph

import (
	"context"
	"errors"
	"fmt"

	"github.com/factgraph/backend/internal/util"
	"github.com/factgraph/backend/pkg/common"
	"github.com/factgraph/backend/pkg/logger"
	"github.com/factgraph/backend/pkg/topic"

	"golang.org/x/sync/errgroup"
)

// FactResult is the outcome of CreateFact. Fact is set whenever the fact
// was persisted, even if linking degraded; Warnings say how.
type FactResult struct {
	Fact     common.Fact           `json:"fact"`
	Edges    []common.Relationship `json:"edges"`
	Warnings []string              `json:"warnings,omitempty"`
	Failures []CandidateFailure    `json:"-"`
}

// IngestResult counts the facts a document produced.
type IngestResult struct {
	FactsCreated int `json:"facts_created"`
	Skipped      int `json:"skipped"`
}

// CreateFact stores a new fact and links it against the facts already in
// the case.
//
// Embedding and classification run concurrently. Reading the existing
// facts, the duplicate check, the insert and the edge writes happen under
// the case lock. A failed embedding stores the fact without embedding and
// skips linking; a failed classification stores it as misc. Both are
// reported in FactResult.Warnings.
func (p *Pipeline) CreateFact(
	ctx context.Context,
	caseID int64,
	kind common.FactKind,
	content string,
) (FactResult, error) {
	if !kind.Valid() {
		return FactResult{}, fmt.Errorf("%w: %q", ErrInvalidKind, kind)
	}
	content = util.NormalizeContent(content)
	if content == "" {
		return FactResult{}, ErrEmptyContent
	}

	var (
		emb    common.Embedding
		embErr error
		tp     topic.Topic
		tpErr  error
	)
	eg, gCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		emb, embErr = p.embedder.Embed(gCtx, content)
		return nil
	})
	eg.Go(func() error {
		tp, tpErr = p.classifier.Classify(gCtx, content)
		return nil
	})
	_ = eg.Wait()
	if err := ctx.Err(); err != nil {
		return FactResult{}, err
	}
	if !tp.Valid() {
		tp = topic.Misc
	}

	fact := common.Fact{
		CaseID:   caseID,
		Kind:     kind,
		Content:  content,
		Topic:    string(tp),
		Metadata: map[string]any{"topic": string(tp)},
	}

	var res FactResult
	if tpErr != nil {
		res.Warnings = append(res.Warnings, fmt.Sprintf("topic defaulted to misc: %v", tpErr))
	}
	if embErr != nil {
		logger.Warn("[Graph] Embedding failed, storing fact without links", "case_id", caseID, "err", embErr)
		res.Warnings = append(res.Warnings, fmt.Sprintf("fact stored without links: %v", embErr))
	} else {
		fact.Embedding = &emb
	}

	lockCtx, unlock, err := p.locker.Lock(ctx, caseID)
	if err != nil {
		if ctx.Err() != nil {
			return FactResult{}, ctx.Err()
		}
		logger.Warn("[Graph] Case lock unavailable, storing fact without links", "case_id", caseID, "err", err)
		res.Warnings = append(res.Warnings, fmt.Sprintf("fact stored without links: case lock: %v", err))
		if _, err := p.checkDuplicate(ctx, caseID, content); err != nil {
			return FactResult{}, err
		}
		stored, err := p.store.InsertFact(ctx, fact)
		if err != nil {
			return FactResult{}, fmt.Errorf("failed to insert fact: %w", err)
		}
		res.Fact = stored
		res.Edges = []common.Relationship{}
		return res, nil
	}
	defer unlock()

	existing, err := p.checkDuplicate(lockCtx, caseID, content)
	if err != nil {
		return FactResult{}, err
	}

	stored, err := p.store.InsertFact(lockCtx, fact)
	if err != nil {
		return FactResult{}, fmt.Errorf("failed to insert fact: %w", err)
	}
	res.Fact = stored
	res.Edges = []common.Relationship{}

	if stored.Embedding == nil {
		return res, nil
	}

	linked, err := p.linker.Link(lockCtx, stored, existing)
	if err != nil {
		logger.Warn("[Graph] Linking failed", "case_id", caseID, "fact_id", stored.ID, "err", err)
		res.Warnings = append(res.Warnings, fmt.Sprintf("linking failed: %v", err))
		return res, nil
	}
	res.Failures = linked.Failures
	for _, f := range linked.Failures {
		res.Warnings = append(res.Warnings, f.Error())
	}

	for _, e := range linked.Edges {
		rel, err := p.store.InsertEdge(lockCtx, common.Relationship{
			CaseID:   caseID,
			SourceID: stored.ID,
			TargetID: e.TargetID,
			Type:     e.Type,
			Strength: e.Strength,
		})
		if err != nil {
			logger.Error("[Graph] Failed to insert relationship", "case_id", caseID, "source", stored.ID, "target", e.TargetID, "err", err)
			res.Warnings = append(res.Warnings, fmt.Sprintf("relationship to %d not stored: %v", e.TargetID, err))
			if lockCtx.Err() != nil {
				break
			}
			continue
		}
		res.Edges = append(res.Edges, rel)
	}

	logger.Debug(
		"[Graph] Fact linked",
		"case_id", caseID,
		"fact_id", stored.ID,
		"topic", stored.Topic,
		"candidates", linked.Candidates,
		"edges", len(res.Edges),
	)
	return res, nil
}

// checkDuplicate returns the current facts of the case, or ErrDuplicateFact
// if one of them already holds content.
func (p *Pipeline) checkDuplicate(ctx context.Context, caseID int64, content string) ([]common.Fact, error) {
	existing, err := p.store.FindFactsByCase(ctx, caseID)
	if err != nil {
		return nil, fmt.Errorf("failed to load case facts: %w", err)
	}
	for _, f := range existing {
		if util.NormalizeContent(f.Content) == content {
			return nil, fmt.Errorf("%w: matches fact %d", ErrDuplicateFact, f.ID)
		}
	}
	return existing, nil
}

// IngestDocument extracts facts from text and runs each through CreateFact
// in document order, one at a time, so later facts can link to earlier
// ones of the same document. Facts that fail are logged and counted in
// Skipped.
func (p *Pipeline) IngestDocument(ctx context.Context, caseID int64, text string) (IngestResult, error) {
	if p.extractor == nil {
		return IngestResult{}, errors.New("graph pipeline has no extractor")
	}
	text = util.NormalizeContent(text)
	if text == "" {
		return IngestResult{}, ErrEmptyContent
	}

	candidates, err := p.extractor.Extract(ctx, text)
	if err != nil {
		return IngestResult{}, fmt.Errorf("failed to extract facts: %w", err)
	}
	if len(candidates) == 0 {
		return IngestResult{}, ErrNoFactsExtracted
	}

	logger.Info("[Graph] Ingesting document", "case_id", caseID, "candidates", len(candidates))

	var res IngestResult
	for i, content := range candidates {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if _, err := p.CreateFact(ctx, caseID, common.FactKindText, content); err != nil {
			if ctx.Err() != nil {
				return res, ctx.Err()
			}
			logger.Warn("[Graph] Skipping extracted fact", "case_id", caseID, "index", i, "err", err)
			res.Skipped++
			continue
		}
		res.FactsCreated++
	}

	logger.Info("[Graph] Document ingested", "case_id", caseID, "created", res.FactsCreated, "skipped", res.Skipped)
	return res, nil
}

package graph

import (
	"context"
	"fmt"
	"sort"

	"github.com/factgraph/backend/pkg/common"
	"github.com/factgraph/backend/pkg/logger"
	"github.com/factgraph/backend/pkg/topic"

	"golang.org/x/sync/errgroup"
)

const (
	EdgeTypeSemantic       = "semantic"
	EdgeTypeStrongSemantic = "strong_semantic"
)

// LinkParams controls candidate selection.
type LinkParams struct {
	BaseThreshold    float64
	MaxRelationships int
	TopicBoost       float64
	StrongThreshold  float64
	// Parallel bounds concurrent scoring goroutines.
	Parallel int
}

// DefaultLinkParams returns threshold 0.85, three relationships per fact,
// a 0.10 topic boost and 0.92 for strong cross-topic links.
func DefaultLinkParams() LinkParams {
	return LinkParams{
		BaseThreshold:    0.85,
		MaxRelationships: 3,
		TopicBoost:       DefaultTopicBoost,
		StrongThreshold:  0.92,
		Parallel:         8,
	}
}

// Edge is one selected link from the new fact to TargetID.
type Edge struct {
	TargetID int64
	Type     string
	Strength int
	Score    float64
}

// CandidateFailure reports a candidate that could not be scored.
type CandidateFailure struct {
	FactID int64
	Err    error
}

func (f CandidateFailure) Error() string {
	return fmt.Sprintf("candidate %d: %v", f.FactID, f.Err)
}

func (f CandidateFailure) Unwrap() error {
	return f.Err
}

// LinkResult holds the ranked edges and the candidates that failed.
type LinkResult struct {
	Edges      []Edge
	Failures   []CandidateFailure
	Candidates int
}

// Linker decides which existing facts a new fact is linked to.
type Linker struct {
	params LinkParams
}

// NewLinker returns a Linker. Zero fields of params fall back to
// DefaultLinkParams, except TopicBoost which may be zero on purpose.
func NewLinker(params LinkParams) *Linker {
	def := DefaultLinkParams()
	if params.BaseThreshold <= 0 {
		params.BaseThreshold = def.BaseThreshold
	}
	if params.MaxRelationships <= 0 {
		params.MaxRelationships = def.MaxRelationships
	}
	if params.TopicBoost < 0 {
		params.TopicBoost = def.TopicBoost
	}
	if params.StrongThreshold <= 0 {
		params.StrongThreshold = def.StrongThreshold
	}
	if params.Parallel <= 0 {
		params.Parallel = def.Parallel
	}
	return &Linker{params: params}
}

// Params returns the effective parameters.
func (l *Linker) Params() LinkParams {
	return l.params
}

type scored struct {
	fact  *common.Fact
	score float64
}

// Link ranks candidates against source and returns at most
// MaxRelationships edges ordered by score descending, ties by ascending
// candidate id. Candidates without an embedding and source itself are
// skipped. A candidate that fails to score is reported in Failures and
// treated as score 0.
func (l *Linker) Link(ctx context.Context, source common.Fact, candidates []common.Fact) (LinkResult, error) {
	if source.Embedding == nil {
		return LinkResult{}, fmt.Errorf("%w: new fact %d has no embedding", ErrMalformedEmbedding, source.ID)
	}
	if err := ValidateEmbedding(*source.Embedding); err != nil {
		return LinkResult{}, err
	}

	srcTopic := factTopic(source)

	pool := make([]*common.Fact, 0, len(candidates))
	for i := range candidates {
		c := &candidates[i]
		if c.ID == source.ID || c.Embedding == nil {
			continue
		}
		pool = append(pool, c)
	}

	results := make([]scored, len(pool))
	errs := make([]error, len(pool))

	eg, gCtx := errgroup.WithContext(ctx)
	eg.SetLimit(l.params.Parallel)
	for i, cand := range pool {
		eg.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			s, err := scoreWithBoost(*source.Embedding, srcTopic, *cand.Embedding, factTopic(*cand), l.params.TopicBoost)
			results[i] = scored{fact: cand, score: s}
			errs[i] = err
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return LinkResult{}, err
	}

	res := LinkResult{Candidates: len(pool)}
	kept := make([]scored, 0, len(pool))
	for i, r := range results {
		if errs[i] != nil {
			logger.Warn("[Graph] Candidate scoring failed", "fact_id", source.ID, "candidate_id", pool[i].ID, "err", errs[i])
			res.Failures = append(res.Failures, CandidateFailure{FactID: pool[i].ID, Err: errs[i]})
			continue
		}
		if r.score >= l.params.BaseThreshold {
			kept = append(kept, r)
		}
	}

	sort.SliceStable(kept, func(i, j int) bool {
		if kept[i].score != kept[j].score {
			return kept[i].score > kept[j].score
		}
		return kept[i].fact.ID < kept[j].fact.ID
	})
	if len(kept) > l.params.MaxRelationships {
		kept = kept[:l.params.MaxRelationships]
	}

	res.Edges = make([]Edge, 0, len(kept))
	for _, k := range kept {
		res.Edges = append(res.Edges, Edge{
			TargetID: k.fact.ID,
			Type:     l.edgeType(srcTopic, factTopic(*k.fact), k.score),
			Strength: Strength(k.score),
			Score:    k.score,
		})
	}
	return res, nil
}

func (l *Linker) edgeType(src, cand topic.Topic, score float64) string {
	if src == cand {
		return string(src) + "_related"
	}
	if score > l.params.StrongThreshold {
		return EdgeTypeStrongSemantic
	}
	return EdgeTypeSemantic
}

func factTopic(f common.Fact) topic.Topic {
	if f.Topic == "" {
		return topic.Misc
	}
	return topic.Topic(f.Topic)
}

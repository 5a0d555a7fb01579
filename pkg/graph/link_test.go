package graph

import (
	"context"
	"errors"
	"testing"

	"github.com/factgraph/backend/pkg/common"
	"github.com/factgraph/backend/pkg/topic"
)

func fact(id int64, tp topic.Topic, vec []float32) common.Fact {
	f := common.Fact{ID: id, CaseID: 1, Kind: common.FactKindText, Topic: string(tp)}
	if vec != nil {
		f.Embedding = &common.Embedding{Model: "m", Vector: vec}
	}
	return f
}

var origin = []float32{1, 0, 0}

func TestLink_SameTopicClampsStrength(t *testing.T) {
	l := NewLinker(DefaultLinkParams())
	res, err := l.Link(context.Background(),
		fact(10, topic.Identity, origin),
		[]common.Fact{fact(1, topic.Identity, unitAt(0.9))},
	)
	if err != nil {
		t.Fatalf("Link: %v", err)
	}
	if len(res.Edges) != 1 {
		t.Fatalf("expected 1 edge, got %d", len(res.Edges))
	}
	e := res.Edges[0]
	if e.Type != "identity_related" || e.Strength != 100 || e.TargetID != 1 {
		t.Fatalf("unexpected edge %+v", e)
	}
}

func TestLink_StrongSemanticAcrossTopics(t *testing.T) {
	l := NewLinker(DefaultLinkParams())
	res, err := l.Link(context.Background(),
		fact(10, topic.Identity, origin),
		[]common.Fact{fact(1, topic.Location, unitAt(0.93))},
	)
	if err != nil {
		t.Fatalf("Link: %v", err)
	}
	if len(res.Edges) != 1 {
		t.Fatalf("expected 1 edge, got %d", len(res.Edges))
	}
	if e := res.Edges[0]; e.Type != EdgeTypeStrongSemantic || e.Strength != 93 {
		t.Fatalf("unexpected edge %+v", e)
	}
}

func TestLink_SemanticAcrossTopics(t *testing.T) {
	l := NewLinker(DefaultLinkParams())
	res, _ := l.Link(context.Background(),
		fact(10, topic.Identity, origin),
		[]common.Fact{fact(1, topic.Location, unitAt(0.88))},
	)
	if len(res.Edges) != 1 || res.Edges[0].Type != EdgeTypeSemantic || res.Edges[0].Strength != 88 {
		t.Fatalf("unexpected edges %+v", res.Edges)
	}
}

func TestLink_BelowThreshold(t *testing.T) {
	l := NewLinker(DefaultLinkParams())
	res, err := l.Link(context.Background(),
		fact(10, topic.Identity, origin),
		[]common.Fact{fact(1, topic.Location, unitAt(0.80))},
	)
	if err != nil {
		t.Fatalf("Link: %v", err)
	}
	if len(res.Edges) != 0 {
		t.Fatalf("expected no edges, got %+v", res.Edges)
	}
}

func TestLink_TopThreeWithTies(t *testing.T) {
	l := NewLinker(DefaultLinkParams())
	tie := unitAt(0.90)
	candidates := []common.Fact{
		fact(5, topic.Contact, unitAt(0.88)),
		fact(3, topic.Contact, tie),
		fact(4, topic.Contact, unitAt(0.97)),
		fact(2, topic.Contact, tie),
		fact(1, topic.Contact, unitAt(0.95)),
	}
	res, err := l.Link(context.Background(), fact(10, topic.Identity, origin), candidates)
	if err != nil {
		t.Fatalf("Link: %v", err)
	}
	want := []int64{4, 1, 2}
	if len(res.Edges) != len(want) {
		t.Fatalf("expected %d edges, got %d", len(want), len(res.Edges))
	}
	for i, id := range want {
		if res.Edges[i].TargetID != id {
			t.Fatalf("edge %d: expected target %d, got %d", i, id, res.Edges[i].TargetID)
		}
	}
	if res.Candidates != 5 {
		t.Fatalf("expected 5 candidates, got %d", res.Candidates)
	}
}

func TestLink_Deterministic(t *testing.T) {
	l := NewLinker(DefaultLinkParams())
	tie := unitAt(0.91)
	candidates := []common.Fact{
		fact(7, topic.Misc, tie),
		fact(3, topic.Misc, tie),
		fact(9, topic.Misc, tie),
		fact(1, topic.Misc, tie),
	}
	for i := 0; i < 20; i++ {
		res, err := l.Link(context.Background(), fact(10, topic.Identity, origin), candidates)
		if err != nil {
			t.Fatalf("Link: %v", err)
		}
		got := []int64{res.Edges[0].TargetID, res.Edges[1].TargetID, res.Edges[2].TargetID}
		if got[0] != 1 || got[1] != 3 || got[2] != 7 {
			t.Fatalf("unexpected order %v", got)
		}
	}
}

func TestLink_SkipsSelfAndMissingEmbeddings(t *testing.T) {
	l := NewLinker(DefaultLinkParams())
	src := fact(10, topic.Identity, origin)
	res, err := l.Link(context.Background(), src, []common.Fact{
		src,
		fact(1, topic.Identity, nil),
		fact(2, topic.Identity, unitAt(0.99)),
	})
	if err != nil {
		t.Fatalf("Link: %v", err)
	}
	if res.Candidates != 1 || len(res.Edges) != 1 || res.Edges[0].TargetID != 2 {
		t.Fatalf("unexpected result %+v", res)
	}
	if len(res.Failures) != 0 {
		t.Fatalf("missing embeddings must not be failures: %+v", res.Failures)
	}
}

func TestLink_IsolatesCandidateFailures(t *testing.T) {
	l := NewLinker(DefaultLinkParams())
	bad := fact(1, topic.Identity, []float32{0, 0, 0})
	short := fact(2, topic.Identity, []float32{1, 0})
	otherModel := fact(3, topic.Identity, unitAt(0.99))
	otherModel.Embedding.Model = "other"
	good := fact(4, topic.Identity, unitAt(0.9))

	res, err := l.Link(context.Background(), fact(10, topic.Identity, origin), []common.Fact{bad, short, otherModel, good})
	if err != nil {
		t.Fatalf("Link: %v", err)
	}
	if len(res.Edges) != 1 || res.Edges[0].TargetID != 4 {
		t.Fatalf("expected only the good candidate, got %+v", res.Edges)
	}
	if len(res.Failures) != 3 {
		t.Fatalf("expected 3 failures, got %+v", res.Failures)
	}
	if !errors.Is(res.Failures[0], ErrMalformedEmbedding) {
		t.Fatalf("expected malformed embedding, got %v", res.Failures[0])
	}
	if !errors.Is(res.Failures[1], ErrDimensionMismatch) || !errors.Is(res.Failures[2], ErrDimensionMismatch) {
		t.Fatalf("expected dimension mismatch, got %v / %v", res.Failures[1], res.Failures[2])
	}
}

func TestLink_SourceWithoutEmbedding(t *testing.T) {
	l := NewLinker(DefaultLinkParams())
	_, err := l.Link(context.Background(), fact(10, topic.Identity, nil), nil)
	if !errors.Is(err, ErrMalformedEmbedding) {
		t.Fatalf("expected ErrMalformedEmbedding, got %v", err)
	}
}

func TestLink_CustomParams(t *testing.T) {
	l := NewLinker(LinkParams{BaseThreshold: 0.5, MaxRelationships: 1, StrongThreshold: 0.6})
	res, _ := l.Link(context.Background(), fact(10, topic.Identity, origin), []common.Fact{
		fact(1, topic.Location, unitAt(0.7)),
		fact(2, topic.Location, unitAt(0.55)),
	})
	if len(res.Edges) != 1 || res.Edges[0].TargetID != 1 || res.Edges[0].Type != EdgeTypeStrongSemantic {
		t.Fatalf("unexpected edges %+v", res.Edges)
	}
}

package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/factgraph/backend/pkg/common"
	"github.com/factgraph/backend/pkg/store"
)

func TestFactsAreScopedToCase(t *testing.T) {
	ctx := context.Background()
	s := New()

	a, _ := s.CreateCase(ctx, common.Case{Title: "a"})
	b, _ := s.CreateCase(ctx, common.Case{Title: "b"})

	f1, err := s.InsertFact(ctx, common.Fact{CaseID: a.ID, Kind: common.FactKindText, Content: "one", Topic: "misc"})
	if err != nil {
		t.Fatalf("InsertFact: %v", err)
	}
	if _, err := s.InsertFact(ctx, common.Fact{CaseID: b.ID, Kind: common.FactKindText, Content: "two", Topic: "misc"}); err != nil {
		t.Fatalf("InsertFact: %v", err)
	}
	f3, _ := s.InsertFact(ctx, common.Fact{CaseID: a.ID, Kind: common.FactKindText, Content: "three", Topic: "misc"})

	facts, err := s.FindFactsByCase(ctx, a.ID)
	if err != nil {
		t.Fatalf("FindFactsByCase: %v", err)
	}
	if len(facts) != 2 || facts[0].ID != f1.ID || facts[1].ID != f3.ID {
		t.Fatalf("unexpected facts %+v", facts)
	}

	if _, err := s.InsertFact(ctx, common.Fact{CaseID: 999, Content: "x"}); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown case, got %v", err)
	}
}

func TestInsertFactCopiesEmbedding(t *testing.T) {
	ctx := context.Background()
	s := New()
	c, _ := s.CreateCase(ctx, common.Case{Title: "a"})

	vec := []float32{1, 2}
	if _, err := s.InsertFact(ctx, common.Fact{CaseID: c.ID, Content: "x", Embedding: &common.Embedding{Model: "m", Vector: vec}}); err != nil {
		t.Fatalf("InsertFact: %v", err)
	}
	vec[0] = 42

	facts, _ := s.FindFactsByCase(ctx, c.ID)
	if facts[0].Embedding.Vector[0] != 1 {
		t.Fatal("stored embedding must not alias the caller's slice")
	}
}

func TestInsertEdgeRejectsCrossCase(t *testing.T) {
	ctx := context.Background()
	s := New()
	a, _ := s.CreateCase(ctx, common.Case{Title: "a"})
	b, _ := s.CreateCase(ctx, common.Case{Title: "b"})
	fa, _ := s.InsertFact(ctx, common.Fact{CaseID: a.ID, Content: "a"})
	fb, _ := s.InsertFact(ctx, common.Fact{CaseID: b.ID, Content: "b"})

	_, err := s.InsertEdge(ctx, common.Relationship{CaseID: a.ID, SourceID: fa.ID, TargetID: fb.ID, Type: "semantic"})
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestTagsAndGraphFilter(t *testing.T) {
	ctx := context.Background()
	s := New()
	c, _ := s.CreateCase(ctx, common.Case{Title: "a"})
	f1, _ := s.InsertFact(ctx, common.Fact{CaseID: c.ID, Content: "one"})
	f2, _ := s.InsertFact(ctx, common.Fact{CaseID: c.ID, Content: "two"})
	f3, _ := s.InsertFact(ctx, common.Fact{CaseID: c.ID, Content: "three"})
	if _, err := s.InsertEdge(ctx, common.Relationship{CaseID: c.ID, SourceID: f2.ID, TargetID: f1.ID, Type: "semantic", Strength: 90}); err != nil {
		t.Fatalf("InsertEdge: %v", err)
	}
	if _, err := s.InsertEdge(ctx, common.Relationship{CaseID: c.ID, SourceID: f3.ID, TargetID: f1.ID, Type: "semantic", Strength: 88}); err != nil {
		t.Fatalf("InsertEdge: %v", err)
	}

	tag, err := s.CreateTag(ctx, common.Tag{CaseID: c.ID, Name: "suspect", Color: "#ff0000"})
	if err != nil {
		t.Fatalf("CreateTag: %v", err)
	}
	if err := s.SetFactTags(ctx, c.ID, f1.ID, []int64{tag.ID}); err != nil {
		t.Fatalf("SetFactTags: %v", err)
	}
	if err := s.SetFactTags(ctx, c.ID, f2.ID, []int64{tag.ID, tag.ID}); err != nil {
		t.Fatalf("SetFactTags: %v", err)
	}
	if err := s.SetFactTags(ctx, c.ID, f3.ID, []int64{12345}); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown tag, got %v", err)
	}

	tags, _ := s.GetFactTags(ctx, c.ID, f2.ID)
	if len(tags) != 1 || tags[0].Name != "suspect" {
		t.Fatalf("unexpected tags %+v", tags)
	}

	g, err := s.GetCaseGraph(ctx, c.ID, []int64{tag.ID})
	if err != nil {
		t.Fatalf("GetCaseGraph: %v", err)
	}
	if len(g.Nodes) != 2 || len(g.Links) != 1 {
		t.Fatalf("expected 2 nodes and 1 link, got %d and %d", len(g.Nodes), len(g.Links))
	}

	full, _ := s.GetCaseGraph(ctx, c.ID, nil)
	if len(full.Nodes) != 3 || len(full.Links) != 2 {
		t.Fatalf("expected 3 nodes and 2 links, got %d and %d", len(full.Nodes), len(full.Links))
	}
}

func TestUpdateFactPosition(t *testing.T) {
	ctx := context.Background()
	s := New()
	c, _ := s.CreateCase(ctx, common.Case{Title: "a"})
	f, _ := s.InsertFact(ctx, common.Fact{CaseID: c.ID, Content: "one"})

	got, err := s.UpdateFactPosition(ctx, c.ID, f.ID, 10, -4)
	if err != nil {
		t.Fatalf("UpdateFactPosition: %v", err)
	}
	if got.X == nil || *got.X != 10 || got.Y == nil || *got.Y != -4 {
		t.Fatalf("unexpected position %v %v", got.X, got.Y)
	}
	if _, err := s.UpdateFactPosition(ctx, c.ID+100, f.ID, 1, 1); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

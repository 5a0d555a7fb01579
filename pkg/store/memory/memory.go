// Package memory provides an in-process GraphStorage used by tests and by
// the CLI preview command.
package memory

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/factgraph/backend/pkg/common"
	"github.com/factgraph/backend/pkg/store"
)

// GraphMemoryStorage keeps all records in maps guarded by a single RWMutex.
// Returned values are copies; mutating them does not change the store.
type GraphMemoryStorage struct {
	mu sync.RWMutex

	nextID int64
	now    func() time.Time

	cases    map[int64]common.Case
	facts    map[int64]common.Fact
	rels     map[int64]common.Relationship
	tags     map[int64]common.Tag
	factTags map[int64][]int64
}

// New returns an empty store.
func New() *GraphMemoryStorage {
	return &GraphMemoryStorage{
		now:      time.Now,
		cases:    map[int64]common.Case{},
		facts:    map[int64]common.Fact{},
		rels:     map[int64]common.Relationship{},
		tags:     map[int64]common.Tag{},
		factTags: map[int64][]int64{},
	}
}

var _ store.GraphStorage = (*GraphMemoryStorage)(nil)

func (s *GraphMemoryStorage) id() int64 {
	s.nextID++
	return s.nextID
}

func (s *GraphMemoryStorage) CreateCase(ctx context.Context, c common.Case) (common.Case, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c.ID = s.id()
	c.CreatedAt = s.now()
	c.UpdatedAt = c.CreatedAt
	s.cases[c.ID] = c
	return c, nil
}

func (s *GraphMemoryStorage) GetCase(ctx context.Context, id int64) (common.Case, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.cases[id]
	if !ok {
		return common.Case{}, fmt.Errorf("case %d: %w", id, store.ErrNotFound)
	}
	return c, nil
}

// ListCases returns the cases newest first.
func (s *GraphMemoryStorage) ListCases(ctx context.Context) ([]common.Case, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := slices.Collect(maps.Values(s.cases))
	slices.SortFunc(out, func(a, b common.Case) int {
		return int(b.ID - a.ID)
	})
	return out, nil
}

func (s *GraphMemoryStorage) InsertFact(ctx context.Context, fact common.Fact) (common.Fact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.cases[fact.CaseID]; !ok {
		return common.Fact{}, fmt.Errorf("case %d: %w", fact.CaseID, store.ErrNotFound)
	}

	fact.ID = s.id()
	fact.CreatedAt = s.now()
	fact.Tags = nil
	fact.Embedding = copyEmbedding(fact.Embedding)
	s.facts[fact.ID] = fact
	return copyFact(fact), nil
}

// FindFactsByCase returns the facts of a case in creation order.
func (s *GraphMemoryStorage) FindFactsByCase(ctx context.Context, caseID int64) ([]common.Fact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.factsOf(caseID), nil
}

func (s *GraphMemoryStorage) factsOf(caseID int64) []common.Fact {
	out := make([]common.Fact, 0)
	for _, f := range s.facts {
		if f.CaseID != caseID {
			continue
		}
		f = copyFact(f)
		f.Tags = s.tagsOf(f.ID)
		out = append(out, f)
	}
	slices.SortFunc(out, func(a, b common.Fact) int {
		return int(a.ID - b.ID)
	})
	return out
}

func (s *GraphMemoryStorage) InsertEdge(ctx context.Context, rel common.Relationship) (common.Relationship, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range []int64{rel.SourceID, rel.TargetID} {
		f, ok := s.facts[id]
		if !ok || f.CaseID != rel.CaseID {
			return common.Relationship{}, fmt.Errorf("fact %d in case %d: %w", id, rel.CaseID, store.ErrNotFound)
		}
	}

	rel.ID = s.id()
	rel.CreatedAt = s.now()
	s.rels[rel.ID] = rel
	return rel, nil
}

// ListRelationships returns the relationships of a case in creation order.
func (s *GraphMemoryStorage) ListRelationships(ctx context.Context, caseID int64) ([]common.Relationship, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.relsOf(caseID), nil
}

func (s *GraphMemoryStorage) relsOf(caseID int64) []common.Relationship {
	out := make([]common.Relationship, 0)
	for _, r := range s.rels {
		if r.CaseID == caseID {
			out = append(out, r)
		}
	}
	slices.SortFunc(out, func(a, b common.Relationship) int {
		return int(a.ID - b.ID)
	})
	return out
}

func (s *GraphMemoryStorage) UpdateFactPosition(ctx context.Context, caseID, factID int64, x, y int) (common.Fact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, ok := s.facts[factID]
	if !ok || f.CaseID != caseID {
		return common.Fact{}, fmt.Errorf("fact %d in case %d: %w", factID, caseID, store.ErrNotFound)
	}
	f.X = &x
	f.Y = &y
	s.facts[factID] = f

	out := copyFact(f)
	out.Tags = s.tagsOf(factID)
	return out, nil
}

func (s *GraphMemoryStorage) CreateTag(ctx context.Context, tag common.Tag) (common.Tag, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.cases[tag.CaseID]; !ok {
		return common.Tag{}, fmt.Errorf("case %d: %w", tag.CaseID, store.ErrNotFound)
	}
	tag.ID = s.id()
	tag.CreatedAt = s.now()
	s.tags[tag.ID] = tag
	return tag, nil
}

// ListTags returns the tags of a case ordered by name.
func (s *GraphMemoryStorage) ListTags(ctx context.Context, caseID int64) ([]common.Tag, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]common.Tag, 0)
	for _, t := range s.tags {
		if t.CaseID == caseID {
			out = append(out, t)
		}
	}
	slices.SortFunc(out, func(a, b common.Tag) int {
		if a.Name < b.Name {
			return -1
		}
		if a.Name > b.Name {
			return 1
		}
		return int(a.ID - b.ID)
	})
	return out, nil
}

// SetFactTags replaces the tag set of a fact.
func (s *GraphMemoryStorage) SetFactTags(ctx context.Context, caseID, factID int64, tagIDs []int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, ok := s.facts[factID]
	if !ok || f.CaseID != caseID {
		return fmt.Errorf("fact %d in case %d: %w", factID, caseID, store.ErrNotFound)
	}
	ids := store.DedupeIDs(tagIDs)
	for _, id := range ids {
		t, ok := s.tags[id]
		if !ok || t.CaseID != caseID {
			return fmt.Errorf("tag %d in case %d: %w", id, caseID, store.ErrNotFound)
		}
	}
	s.factTags[factID] = ids
	return nil
}

func (s *GraphMemoryStorage) GetFactTags(ctx context.Context, caseID, factID int64) ([]common.Tag, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	f, ok := s.facts[factID]
	if !ok || f.CaseID != caseID {
		return nil, fmt.Errorf("fact %d in case %d: %w", factID, caseID, store.ErrNotFound)
	}
	return s.tagsOf(factID), nil
}

func (s *GraphMemoryStorage) tagsOf(factID int64) []common.Tag {
	ids := s.factTags[factID]
	out := make([]common.Tag, 0, len(ids))
	for _, id := range ids {
		if t, ok := s.tags[id]; ok {
			out = append(out, t)
		}
	}
	return out
}

func (s *GraphMemoryStorage) GetCaseGraph(ctx context.Context, caseID int64, tagFilter []int64) (common.Graph, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.cases[caseID]; !ok {
		return common.Graph{}, fmt.Errorf("case %d: %w", caseID, store.ErrNotFound)
	}
	facts := s.factsOf(caseID)
	for i := range facts {
		facts[i].Embedding = nil
	}
	return store.FilterGraph(facts, s.relsOf(caseID), tagFilter), nil
}

func copyEmbedding(e *common.Embedding) *common.Embedding {
	if e == nil {
		return nil
	}
	return &common.Embedding{Model: e.Model, Vector: slices.Clone(e.Vector)}
}

func copyFact(f common.Fact) common.Fact {
	f.Embedding = copyEmbedding(f.Embedding)
	if f.X != nil {
		x := *f.X
		f.X = &x
	}
	if f.Y != nil {
		y := *f.Y
		f.Y = &y
	}
	f.Metadata = maps.Clone(f.Metadata)
	return f
}

package pgx

import (
	"context"

	"github.com/factgraph/backend/pkg/common"
	"github.com/factgraph/backend/pkg/store"
)

// GetCaseGraph loads facts, tags and relationships of a case and applies
// the tag filter in memory.
func (s *GraphDBStorage) GetCaseGraph(ctx context.Context, caseID int64, tagFilter []int64) (common.Graph, error) {
	if _, err := s.GetCase(ctx, caseID); err != nil {
		return common.Graph{}, err
	}
	facts, err := s.FindFactsByCase(ctx, caseID)
	if err != nil {
		return common.Graph{}, err
	}
	links, err := s.ListRelationships(ctx, caseID)
	if err != nil {
		return common.Graph{}, err
	}
	for i := range facts {
		// vectors are not part of the rendered graph
		facts[i].Embedding = nil
	}
	return store.FilterGraph(facts, links, tagFilter), nil
}

package store

import (
	"context"
	"errors"

	"github.com/factgraph/backend/pkg/common"
)

// ErrNotFound is returned when a case, fact or tag does not exist.
var ErrNotFound = errors.New("not found")

// GraphStorage defines the persistence operations of the case graph. The
// linking pipeline only needs InsertFact, InsertEdge and FindFactsByCase;
// the remaining methods back the HTTP API.
type GraphStorage interface {
	InsertFact(ctx context.Context, fact common.Fact) (common.Fact, error)
	InsertEdge(ctx context.Context, rel common.Relationship) (common.Relationship, error)
	FindFactsByCase(ctx context.Context, caseID int64) ([]common.Fact, error)

	CreateCase(ctx context.Context, c common.Case) (common.Case, error)
	GetCase(ctx context.Context, id int64) (common.Case, error)
	ListCases(ctx context.Context) ([]common.Case, error)

	UpdateFactPosition(ctx context.Context, caseID, factID int64, x, y int) (common.Fact, error)
	ListRelationships(ctx context.Context, caseID int64) ([]common.Relationship, error)

	CreateTag(ctx context.Context, tag common.Tag) (common.Tag, error)
	ListTags(ctx context.Context, caseID int64) ([]common.Tag, error)
	SetFactTags(ctx context.Context, caseID, factID int64, tagIDs []int64) error
	GetFactTags(ctx context.Context, caseID, factID int64) ([]common.Tag, error)

	// GetCaseGraph returns the facts of a case with their tags and the
	// relationships among them. With a non-empty tagFilter only facts that
	// carry at least one of the tags are returned, and only links whose
	// both ends survive the filter.
	GetCaseGraph(ctx context.Context, caseID int64, tagFilter []int64) (common.Graph, error)
}

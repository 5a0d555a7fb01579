package pgx

import (
	"context"
	"fmt"

	"github.com/factgraph/backend/internal/util"
	"github.com/factgraph/backend/pkg/common"
	"github.com/factgraph/backend/pkg/logger"

	pgxv5 "github.com/jackc/pgx/v5"
	"github.com/pgvector/pgvector-go"
)

const factColumns = `id, case_id, kind, content, topic, embedding, embedding_model, x, y, metadata, created_at`

const insertFactSQL = `
INSERT INTO facts (case_id, kind, content, topic, embedding, embedding_model, metadata)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING ` + factColumns + `;
`

const findFactsByCaseSQL = `
SELECT ` + factColumns + `
FROM facts
WHERE case_id = $1
ORDER BY id;
`

const updateFactPositionSQL = `
UPDATE facts
SET x = $3, y = $4
WHERE id = $2 AND case_id = $1
RETURNING ` + factColumns + `;
`

func (s *GraphDBStorage) InsertFact(ctx context.Context, fact common.Fact) (common.Fact, error) {
	var (
		vec   *pgvector.Vector
		model string
	)
	if fact.Embedding != nil {
		v := pgvector.NewVector(fact.Embedding.Vector)
		vec = &v
		model = fact.Embedding.Model
	}
	metadata := fact.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}

	logger.Debug("[Store] Inserting fact", "case_id", fact.CaseID, "dim", fact.Embedding.Dim())

	out, err := scanFact(s.conn.QueryRow(
		ctx,
		insertFactSQL,
		fact.CaseID,
		string(fact.Kind),
		util.SanitizePostgresText(fact.Content),
		fact.Topic,
		vec,
		model,
		metadata,
	))
	if err != nil {
		return common.Fact{}, mapErr(fmt.Sprintf("insert fact into case %d", fact.CaseID), err)
	}
	return out, nil
}

// FindFactsByCase returns the facts of a case in creation order with their
// tags attached.
func (s *GraphDBStorage) FindFactsByCase(ctx context.Context, caseID int64) ([]common.Fact, error) {
	rows, err := s.conn.Query(ctx, findFactsByCaseSQL, caseID)
	if err != nil {
		return nil, mapErr("find facts", err)
	}
	facts, err := pgxv5.CollectRows(rows, func(row pgxv5.CollectableRow) (common.Fact, error) {
		return scanFact(row)
	})
	if err != nil {
		return nil, mapErr("scan facts", err)
	}

	tags, err := s.tagsByFact(ctx, caseID)
	if err != nil {
		return nil, err
	}
	for i := range facts {
		facts[i].Tags = tags[facts[i].ID]
	}
	return facts, nil
}

func (s *GraphDBStorage) UpdateFactPosition(ctx context.Context, caseID, factID int64, x, y int) (common.Fact, error) {
	out, err := scanFact(s.conn.QueryRow(ctx, updateFactPositionSQL, caseID, factID, x, y))
	if err != nil {
		return common.Fact{}, mapErr(fmt.Sprintf("fact %d in case %d", factID, caseID), err)
	}
	tags, err := s.GetFactTags(ctx, caseID, factID)
	if err != nil {
		return common.Fact{}, err
	}
	out.Tags = tags
	return out, nil
}

func scanFact(row pgxv5.Row) (common.Fact, error) {
	var (
		f     common.Fact
		kind  string
		vec   *pgvector.Vector
		model string
		x, y  *int32
	)
	if err := row.Scan(
		&f.ID,
		&f.CaseID,
		&kind,
		&f.Content,
		&f.Topic,
		&vec,
		&model,
		&x,
		&y,
		&f.Metadata,
		&f.CreatedAt,
	); err != nil {
		return common.Fact{}, err
	}
	f.Kind = common.FactKind(kind)
	if vec != nil {
		f.Embedding = &common.Embedding{Model: model, Vector: vec.Slice()}
	}
	if x != nil {
		v := int(*x)
		f.X = &v
	}
	if y != nil {
		v := int(*y)
		f.Y = &v
	}
	return f, nil
}

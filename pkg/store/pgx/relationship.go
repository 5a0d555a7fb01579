package pgx

import (
	"context"
	"fmt"

	"github.com/factgraph/backend/pkg/common"

	pgxv5 "github.com/jackc/pgx/v5"
)

// insertEdgeSQL only inserts when both facts belong to the case.
const insertEdgeSQL = `
INSERT INTO relationships (case_id, source_id, target_id, type, strength)
SELECT $1, $2, $3, $4, $5
WHERE EXISTS (SELECT 1 FROM facts WHERE id = $2 AND case_id = $1)
  AND EXISTS (SELECT 1 FROM facts WHERE id = $3 AND case_id = $1)
RETURNING id, case_id, source_id, target_id, type, strength, created_at;
`

const listRelationshipsSQL = `
SELECT id, case_id, source_id, target_id, type, strength, created_at
FROM relationships
WHERE case_id = $1
ORDER BY id;
`

func (s *GraphDBStorage) InsertEdge(ctx context.Context, rel common.Relationship) (common.Relationship, error) {
	var out common.Relationship
	err := s.conn.QueryRow(ctx, insertEdgeSQL, rel.CaseID, rel.SourceID, rel.TargetID, rel.Type, rel.Strength).
		Scan(&out.ID, &out.CaseID, &out.SourceID, &out.TargetID, &out.Type, &out.Strength, &out.CreatedAt)
	if err != nil {
		return common.Relationship{}, mapErr(
			fmt.Sprintf("relationship %d -> %d in case %d", rel.SourceID, rel.TargetID, rel.CaseID),
			err,
		)
	}
	return out, nil
}

func (s *GraphDBStorage) ListRelationships(ctx context.Context, caseID int64) ([]common.Relationship, error) {
	rows, err := s.conn.Query(ctx, listRelationshipsSQL, caseID)
	if err != nil {
		return nil, mapErr("list relationships", err)
	}
	out, err := pgxv5.CollectRows(rows, func(row pgxv5.CollectableRow) (common.Relationship, error) {
		var r common.Relationship
		err := row.Scan(&r.ID, &r.CaseID, &r.SourceID, &r.TargetID, &r.Type, &r.Strength, &r.CreatedAt)
		return r, err
	})
	if err != nil {
		return nil, mapErr("scan relationships", err)
	}
	return out, nil
}

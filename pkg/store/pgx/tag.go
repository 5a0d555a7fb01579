package pgx

import (
	"context"
	"fmt"

	"github.com/factgraph/backend/pkg/common"
	"github.com/factgraph/backend/pkg/store"

	pgxv5 "github.com/jackc/pgx/v5"
)

const insertTagSQL = `
INSERT INTO tags (case_id, name, color)
VALUES ($1, $2, $3)
RETURNING id, case_id, name, color, created_at;
`

const listTagsSQL = `
SELECT id, case_id, name, color, created_at
FROM tags
WHERE case_id = $1
ORDER BY name, id;
`

const factInCaseSQL = `
SELECT 1 FROM facts WHERE id = $1 AND case_id = $2;
`

const deleteFactTagsSQL = `
DELETE FROM fact_tags WHERE fact_id = $1;
`

// insertFactTagsSQL links tags of the same case; the caller compares the
// affected row count with the number of requested tags.
const insertFactTagsSQL = `
INSERT INTO fact_tags (fact_id, tag_id)
SELECT $1, t.id
FROM tags t
WHERE t.case_id = $2 AND t.id = ANY($3::bigint[]);
`

const getFactTagsSQL = `
SELECT t.id, t.case_id, t.name, t.color, t.created_at
FROM fact_tags ft
JOIN tags t ON t.id = ft.tag_id
WHERE ft.fact_id = $1
ORDER BY t.name, t.id;
`

const caseFactTagsSQL = `
SELECT ft.fact_id, t.id, t.case_id, t.name, t.color, t.created_at
FROM fact_tags ft
JOIN tags t ON t.id = ft.tag_id
WHERE t.case_id = $1
ORDER BY t.name, t.id;
`

func (s *GraphDBStorage) CreateTag(ctx context.Context, tag common.Tag) (common.Tag, error) {
	var out common.Tag
	err := s.conn.QueryRow(ctx, insertTagSQL, tag.CaseID, tag.Name, tag.Color).
		Scan(&out.ID, &out.CaseID, &out.Name, &out.Color, &out.CreatedAt)
	if err != nil {
		return common.Tag{}, mapErr(fmt.Sprintf("insert tag into case %d", tag.CaseID), err)
	}
	return out, nil
}

func (s *GraphDBStorage) ListTags(ctx context.Context, caseID int64) ([]common.Tag, error) {
	rows, err := s.conn.Query(ctx, listTagsSQL, caseID)
	if err != nil {
		return nil, mapErr("list tags", err)
	}
	out, err := pgxv5.CollectRows(rows, scanTag)
	if err != nil {
		return nil, mapErr("scan tags", err)
	}
	return out, nil
}

// SetFactTags replaces the tag set of a fact in one transaction.
func (s *GraphDBStorage) SetFactTags(ctx context.Context, caseID, factID int64, tagIDs []int64) error {
	ids := store.DedupeIDs(tagIDs)

	tx, err := s.conn.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var one int
	if err := tx.QueryRow(ctx, factInCaseSQL, factID, caseID).Scan(&one); err != nil {
		return mapErr(fmt.Sprintf("fact %d in case %d", factID, caseID), err)
	}
	if _, err := tx.Exec(ctx, deleteFactTagsSQL, factID); err != nil {
		return mapErr("clear fact tags", err)
	}
	if len(ids) > 0 {
		tag, err := tx.Exec(ctx, insertFactTagsSQL, factID, caseID, ids)
		if err != nil {
			return mapErr("insert fact tags", err)
		}
		if tag.RowsAffected() != int64(len(ids)) {
			return fmt.Errorf("tags %v in case %d: %w", ids, caseID, store.ErrNotFound)
		}
	}
	return tx.Commit(ctx)
}

func (s *GraphDBStorage) GetFactTags(ctx context.Context, caseID, factID int64) ([]common.Tag, error) {
	var one int
	if err := s.conn.QueryRow(ctx, factInCaseSQL, factID, caseID).Scan(&one); err != nil {
		return nil, mapErr(fmt.Sprintf("fact %d in case %d", factID, caseID), err)
	}
	rows, err := s.conn.Query(ctx, getFactTagsSQL, factID)
	if err != nil {
		return nil, mapErr("get fact tags", err)
	}
	out, err := pgxv5.CollectRows(rows, scanTag)
	if err != nil {
		return nil, mapErr("scan fact tags", err)
	}
	return out, nil
}

func (s *GraphDBStorage) tagsByFact(ctx context.Context, caseID int64) (map[int64][]common.Tag, error) {
	rows, err := s.conn.Query(ctx, caseFactTagsSQL, caseID)
	if err != nil {
		return nil, mapErr("load case tags", err)
	}
	defer rows.Close()

	out := make(map[int64][]common.Tag)
	for rows.Next() {
		var (
			factID int64
			t      common.Tag
		)
		if err := rows.Scan(&factID, &t.ID, &t.CaseID, &t.Name, &t.Color, &t.CreatedAt); err != nil {
			return nil, err
		}
		out[factID] = append(out[factID], t)
	}
	return out, rows.Err()
}

func scanTag(row pgxv5.CollectableRow) (common.Tag, error) {
	var t common.Tag
	err := row.Scan(&t.ID, &t.CaseID, &t.Name, &t.Color, &t.CreatedAt)
	return t, err
}

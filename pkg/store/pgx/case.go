package pgx

import (
	"context"
	"fmt"

	"github.com/factgraph/backend/pkg/common"
)

const insertCaseSQL = `
INSERT INTO cases (title, description)
VALUES ($1, $2)
RETURNING id, title, description, created_at, updated_at;
`

const getCaseSQL = `
SELECT id, title, description, created_at, updated_at
FROM cases
WHERE id = $1;
`

const listCasesSQL = `
SELECT id, title, description, created_at, updated_at
FROM cases
ORDER BY id DESC;
`

func (s *GraphDBStorage) CreateCase(ctx context.Context, c common.Case) (common.Case, error) {
	var out common.Case
	err := s.conn.QueryRow(ctx, insertCaseSQL, c.Title, c.Description).
		Scan(&out.ID, &out.Title, &out.Description, &out.CreatedAt, &out.UpdatedAt)
	if err != nil {
		return common.Case{}, mapErr("insert case", err)
	}
	return out, nil
}

func (s *GraphDBStorage) GetCase(ctx context.Context, id int64) (common.Case, error) {
	var out common.Case
	err := s.conn.QueryRow(ctx, getCaseSQL, id).
		Scan(&out.ID, &out.Title, &out.Description, &out.CreatedAt, &out.UpdatedAt)
	if err != nil {
		return common.Case{}, mapErr(fmt.Sprintf("case %d", id), err)
	}
	return out, nil
}

func (s *GraphDBStorage) ListCases(ctx context.Context) ([]common.Case, error) {
	rows, err := s.conn.Query(ctx, listCasesSQL)
	if err != nil {
		return nil, mapErr("list cases", err)
	}
	defer rows.Close()

	out := make([]common.Case, 0)
	for rows.Next() {
		var c common.Case
		if err := rows.Scan(&c.ID, &c.Title, &c.Description, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

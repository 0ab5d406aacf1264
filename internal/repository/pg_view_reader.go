package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type pgViewReader struct {
	pool *pgxpool.Pool
}

// NewPgViewReader returns a ViewReader backed by PostgreSQL.
func NewPgViewReader(pool *pgxpool.Pool) ViewReader {
	return &pgViewReader{pool: pool}
}

func (r *pgViewReader) SelectFrom(ctx context.Context, view string, limit int) ([]Row, error) {
	query := fmt.Sprintf("SELECT * FROM %s LIMIT $1", pgx.Identifier{view}.Sanitize())

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("select from %s: %w", view, err)
	}

	maps, err := pgx.CollectRows(rows, pgx.RowToMap)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", view, err)
	}

	out := make([]Row, len(maps))
	for i, m := range maps {
		out[i] = Row(m)
	}
	return out, nil
}

package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

type sqlViewReader struct {
	db *sql.DB
}

// NewSQLViewReader returns a ViewReader over a database/sql handle.
// It is used with the embedded SQLite driver for local runs and tests.
func NewSQLViewReader(db *sql.DB) ViewReader {
	return &sqlViewReader{db: db}
}

func (r *sqlViewReader) SelectFrom(ctx context.Context, view string, limit int) ([]Row, error) {
	query := fmt.Sprintf("SELECT * FROM %s LIMIT ?", quoteIdent(view))

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("select from %s: %w", view, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("columns of %s: %w", view, err)
	}

	var out []Row
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan %s: %w", view, err)
		}
		row := make(Row, len(cols))
		for i, c := range cols {
			// drivers may hand back reused buffers
			if b, ok := values[i].([]byte); ok {
				values[i] = string(b)
			}
			row[c] = values[i]
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", view, err)
	}
	return out, nil
}

func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

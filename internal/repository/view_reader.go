package repository

import "context"

// Row is one result row keyed by column name. Values carry whatever the
// driver produced; NULL columns are present with a nil value.
type Row map[string]any

// ViewReader is read-only access to the deal stage views.
// The pgx implementation is in pg_view_reader.go, the database/sql one
// (SQLite) in sql_view_reader.go. Tests use MockViewReader.
type ViewReader interface {
	// SelectFrom returns every column of at most limit rows of view.
	SelectFrom(ctx context.Context, view string, limit int) ([]Row, error)
}

package words

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
)

// Schema creates the table read by Repository.
const Schema = `
CREATE TABLE IF NOT EXISTS words (
    id         BIGSERIAL PRIMARY KEY,
    category   TEXT NOT NULL,
    word       TEXT NOT NULL,
    hint       TEXT,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    UNIQUE (category, word)
)`

const (
	listCategoriesQuery = `SELECT DISTINCT category FROM words ORDER BY category`
	listEntriesQuery    = `SELECT word, category, hint FROM words WHERE category = ANY($1) ORDER BY category, id`
)

// Querier defines what the repository needs from the database layer
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Repository is a Pool backed by the Postgres words table.
type Repository struct {
	db Querier
}

// NewRepository creates a new words repository
func NewRepository(db Querier) *Repository {
	return &Repository{db: db}
}

// Categories implements Pool.
func (r *Repository) Categories(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, listCategoriesQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Entries implements Pool.
func (r *Repository) Entries(ctx context.Context, categories []string) ([]Entry, error) {
	categories = dedupe(categories)
	if len(categories) == 0 {
		return nil, nil
	}

	rows, err := r.db.QueryContext(ctx, listEntriesQuery, pq.Array(categories))
	if err != nil {
		return nil, fmt.Errorf("failed to list words: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var (
			e    Entry
			hint sql.NullString
		)
		if err := rows.Scan(&e.Word, &e.Category, &hint); err != nil {
			return nil, fmt.Errorf("failed to scan word: %w", err)
		}
		e.Hint = hint.String
		out = append(out, e)
	}
	return out, rows.Err()
}

package words

import "context"

// Entry is a word drawn from the pool, tagged with its source category.
type Entry struct {
	Word     string `json:"word" yaml:"word"`
	Category string `json:"category" yaml:"-"`
	Hint     string `json:"hint,omitempty" yaml:"hint"`
}

// Pool is a read-only mapping from category name to words.
type Pool interface {
	// Categories returns the category names, sorted.
	Categories(ctx context.Context) ([]string, error)
	// Entries returns every entry of the given categories in a stable order.
	// Categories the pool does not know contribute nothing.
	Entries(ctx context.Context, categories []string) ([]Entry, error)
}

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mcdev12/hangman/go/internal/assets"
	"github.com/mcdev12/hangman/go/internal/dbconfig"
	"github.com/mcdev12/hangman/go/internal/words"
)

func main() {
	ctx := context.Background()

	// 1) Load the word list, either from the given YAML file or the built-in one
	var (
		list *words.FilePool
		err  error
	)
	if len(os.Args) > 1 {
		list, err = words.LoadFile(os.Args[1])
	} else {
		list, err = words.Parse(assets.WordList)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "load word list: %v\n", err)
		os.Exit(1)
	}

	categories, err := list.Categories(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "list categories: %v\n", err)
		os.Exit(1)
	}
	entries, err := list.Entries(ctx, categories)
	if err != nil {
		fmt.Fprintf(os.Stderr, "list words: %v\n", err)
		os.Exit(1)
	}

	// 2) Connect using shared dbconfig
	cfg := dbconfig.NewConfigFromEnv()
	pool, err := pgxpool.New(ctx, cfg.DSN())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to connect: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	if _, err := pool.Exec(ctx, words.Schema); err != nil {
		fmt.Fprintf(os.Stderr, "create words table: %v\n", err)
		os.Exit(1)
	}

	// 3) Insert and count
	var (
		total    = len(entries)
		inserted int
		skipped  int
		errs     int
	)

	for _, e := range entries {
		var hint *string
		if e.Hint != "" {
			hint = &e.Hint
		}
		cmdTag, err := pool.Exec(ctx, `
            INSERT INTO words (category, word, hint)
            VALUES ($1, $2, $3)
            ON CONFLICT (category, word) DO NOTHING
        `, e.Category, e.Word, hint)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error inserting word %s/%s: %v\n", e.Category, e.Word, err)
			errs++
			continue
		}
		if cmdTag.RowsAffected() == 1 {
			inserted++
		} else {
			skipped++
		}
	}

	// 4) Print summary
	fmt.Printf(
		"Words seed complete: %d categories, %d total, %d inserted, %d skipped, %d errors\n",
		len(categories), total, inserted, skipped, errs,
	)
}

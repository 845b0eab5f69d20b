package main

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/hangman/go/internal/appconfig"
	"github.com/mcdev12/hangman/go/internal/assets"
	"github.com/mcdev12/hangman/go/internal/dbconfig"
	"github.com/mcdev12/hangman/go/internal/words"
)

func setupDatabase() (*sql.DB, error) {
	dbCfg := dbconfig.NewConfigFromEnv()

	database, err := sql.Open("postgres", dbCfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to create database connection: %w", err)
	}

	if err := database.Ping(); err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Info().
		Str("host", dbCfg.Host).
		Int("port", dbCfg.Port).
		Str("database", dbCfg.Database).
		Msg("connected to database")
	return database, nil
}

// setupWordPool returns the configured pool. The database is nil unless the
// pool reads from Postgres.
func setupWordPool(cfg *appconfig.Config) (words.Pool, *sql.DB, error) {
	switch cfg.WordSource {
	case appconfig.WordSourcePostgres:
		database, err := setupDatabase()
		if err != nil {
			return nil, nil, err
		}
		return words.NewRepository(database), database, nil

	default:
		var (
			pool *words.FilePool
			err  error
		)
		if cfg.WordFile != "" {
			pool, err = words.LoadFile(cfg.WordFile)
		} else {
			pool, err = words.Parse(assets.WordList)
		}
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load word list: %w", err)
		}
		log.Info().Str("file", cfg.WordFile).Int("words", pool.Size()).Msg("loaded word list")
		return pool, nil, nil
	}
}

package main

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/mcdev12/hangman/go/internal/appconfig"
	"github.com/mcdev12/hangman/go/internal/bus"
	"github.com/mcdev12/hangman/go/internal/game"
	"github.com/mcdev12/hangman/go/internal/gateway"
)

type Services struct {
	Game      *game.App
	Lobby     *game.Service
	Gateway   *gateway.Service
	Publisher *bus.Publisher // nil unless events go through JetStream

	database *sql.DB
}

func setupServices(cfg *appconfig.Config) (*Services, error) {
	// Word pool → registry + app → gateway (commands) and lobby service (queries)
	pool, database, err := setupWordPool(cfg)
	if err != nil {
		return nil, err
	}
	s := &Services{database: database}

	useNATS := cfg.BroadcastMode == appconfig.BroadcastNATS
	if useNATS {
		// The publisher creates the stream the gateway consumes from.
		pubCfg := bus.DefaultJetStreamConfig()
		pubCfg.URL = cfg.NATSURL
		s.Publisher, err = bus.NewPublisher(pubCfg)
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("failed to create publisher: %w", err)
		}
	}

	gwCfg := gateway.DefaultConfig()
	gwCfg.ConnectionConfig.CheckOrigin = gateway.AllowOrigins(cfg.AllowedOrigins)
	gwCfg.JetStreamConfig.URL = cfg.NATSURL
	gwCfg.UseJetStream = useNATS

	s.Gateway, err = gateway.NewService(gwCfg, nil)
	if err != nil {
		s.Close()
		return nil, err
	}

	var broadcaster game.Broadcaster = s.Gateway.Broadcaster()
	if s.Publisher != nil {
		broadcaster = s.Publisher
	}

	s.Game = game.NewApp(game.NewRegistry(nil), pool, broadcaster, cfg.Game,
		game.WithMembership(s.Gateway.Broadcaster()),
	)
	s.Gateway.SetApp(s.Game)
	s.Lobby = game.NewService(s.Game)

	return s, nil
}

// Start runs the background loops until ctx is cancelled
func (s *Services) Start(ctx context.Context) {
	go func() {
		if err := s.Gateway.Start(ctx); err != nil {
			log.Error().Err(err).Msg("gateway service failed")
		}
	}()
	if s.Publisher != nil {
		go s.Publisher.Run(ctx)
	}
}

func (s *Services) Close() {
	if s.Publisher != nil {
		if err := s.Publisher.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close publisher")
		}
	}
	if s.database != nil {
		if err := s.database.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close database")
		}
	}
}

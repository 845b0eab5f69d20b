package game

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog/log"

	"github.com/mcdev12/hangman/go/internal/models"
	"github.com/mcdev12/hangman/go/internal/words"
)

const (
	maxNameLength   = 24
	defaultCategory = "Custom"
)

const reasonModeratorLeft = "moderator disconnected"

func normalizeName(username string) (string, error) {
	name := strings.TrimSpace(username)
	if name == "" {
		return "", ErrInvalidName
	}
	if utf8.RuneCountInString(name) > maxNameLength {
		return "", fmt.Errorf("%w: username must be at most %d characters", ErrInvalidArgument, maxNameLength)
	}
	return name, nil
}

// CreateRoom registers a new room moderated by connID.
func (a *App) CreateRoom(ctx context.Context, connID, username string, capacity, wordCount int) (*CreateRoomResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	name, err := normalizeName(username)
	if err != nil {
		return nil, err
	}
	if capacity < 1 || capacity > a.cfg.MaxCapacity || wordCount < 1 || wordCount > a.cfg.MaxWordCount {
		return nil, ErrInvalidSettings
	}

	e, err := a.registry.create(func(code string) *models.Room {
		return &models.Room{
			Code:      code,
			Moderator: models.Moderator{ConnID: connID, Username: name},
			Players:   []*models.Player{},
			Settings:  models.RoomSettings{Capacity: capacity, WordCount: wordCount},
			State:     models.RoomStateLobby,
			CreatedAt: a.clock.Now().UTC(),
		}
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create room: %w", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	a.members.Join(e.room.Code, connID)
	a.emitRoom(e)
	log.Info().
		Str("room_code", e.room.Code).
		Str("connection_id", connID).
		Int("capacity", capacity).
		Int("word_count", wordCount).
		Msg("room created")

	return &CreateRoomResult{RoomCode: e.room.Code, Room: snapshotRoom(e.room)}, nil
}

// JoinRoom adds connID to the roster of the room.
func (a *App) JoinRoom(ctx context.Context, code, connID, username string) (*RoomSnapshot, error) {
	name, err := normalizeName(username)
	if err != nil {
		return nil, err
	}

	var snap RoomSnapshot
	err = a.withRoom(ctx, "join_room", code, func(e *roomEntry) error {
		if err := a.addPlayer(e, connID, name); err != nil {
			return err
		}
		snap = snapshotRoom(e.room)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &snap, nil
}

// addPlayer appends a connected player and broadcasts. Caller must hold e.mu.
func (a *App) addPlayer(e *roomEntry, connID, name string) error {
	r := e.room
	if r.IsModerator(connID) || r.PlayerByConn(connID) >= 0 {
		return ErrAlreadyJoined
	}
	if len(r.Players) >= r.Settings.Capacity {
		return ErrRoomFull
	}
	folded := fold(name)
	for _, p := range r.Players {
		if fold(p.Username) == folded {
			return ErrNameTaken
		}
	}

	r.Players = append(r.Players, &models.Player{
		ConnID:    connID,
		Username:  name,
		Score:     a.cfg.InitialScore,
		Connected: true,
	})

	a.members.Join(r.Code, connID)
	a.emitRoom(e)
	if r.Game != nil {
		a.emitScores(e)
		a.emitGame(e)
	}
	log.Info().Str("room_code", r.Code).Str("connection_id", connID).Str("username", name).Msg("player joined")
	return nil
}

// ReconnectPlayer binds connID to the disconnected slot named username.
// In the lobby an unknown name joins as a new player instead.
func (a *App) ReconnectPlayer(ctx context.Context, code, connID, username string) (*RoomSnapshot, error) {
	name, err := normalizeName(username)
	if err != nil {
		return nil, err
	}

	var snap RoomSnapshot
	err = a.withRoom(ctx, "reconnect_player", code, func(e *roomEntry) error {
		r := e.room
		if r.IsModerator(connID) || r.PlayerByConn(connID) >= 0 {
			return ErrAlreadyJoined
		}

		folded := fold(name)
		for _, p := range r.Players {
			if fold(p.Username) != folded {
				continue
			}
			// A connected slot is taken over: the old socket may be half-open
			// and not yet seen to drop.
			if p.Connected {
				a.members.Leave(r.Code, p.ConnID)
				log.Warn().
					Str("room_code", r.Code).
					Str("connection_id", p.ConnID).
					Str("username", p.Username).
					Msg("player session taken over by reconnect")
			}
			p.ConnID = connID
			p.Connected = true

			a.members.Join(r.Code, connID)
			a.emitRoom(e)
			if r.Game != nil {
				a.emitScores(e)
				a.emitGame(e)
			}
			log.Info().Str("room_code", r.Code).Str("connection_id", connID).Str("username", p.Username).Msg("player reconnected")
			snap = snapshotRoom(r)
			return nil
		}

		if r.State != models.RoomStateLobby {
			return ErrPlayerNotFound
		}
		if err := a.addPlayer(e, connID, name); err != nil {
			return err
		}
		snap = snapshotRoom(r)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &snap, nil
}

// requireModeratorInLobby checks a moderator-only lobby action. Caller must hold e.mu.
func requireModeratorInLobby(e *roomEntry, connID string) error {
	if !e.room.IsModerator(connID) {
		return ErrUnauthorized
	}
	if e.room.State != models.RoomStateLobby {
		return ErrNotInLobby
	}
	return nil
}

// SubmitWordList sets a moderator-authored word list of exactly wordCount entries.
func (a *App) SubmitWordList(ctx context.Context, code, connID string, entries []models.WordEntry) error {
	list := make([]models.WordEntry, 0, len(entries))
	for i, we := range entries {
		word := strings.TrimSpace(we.Word)
		if !hasLetter(word) {
			return fmt.Errorf("%w: entry %d has no letters", ErrInvalidWordList, i)
		}
		category := strings.TrimSpace(we.Category)
		if category == "" {
			category = defaultCategory
		}
		list = append(list, models.WordEntry{Word: word, Category: category, Hint: strings.TrimSpace(we.Hint)})
	}

	return a.withRoom(ctx, "submit_word_list", code, func(e *roomEntry) error {
		if err := requireModeratorInLobby(e, connID); err != nil {
			return err
		}
		if len(list) != e.room.Settings.WordCount {
			return fmt.Errorf("%w: expected %d words, got %d", ErrInvalidWordList, e.room.Settings.WordCount, len(list))
		}
		e.room.WordList = list
		e.room.SelectedCategories = nil
		a.emitRoom(e)
		log.Info().Str("room_code", e.room.Code).Int("words", len(list)).Msg("word list submitted")
		return nil
	})
}

// SubmitCategories draws the room's word list at random from the selected categories.
func (a *App) SubmitCategories(ctx context.Context, code, connID string, categories []string) error {
	selected := make([]string, 0, len(categories))
	seen := make(map[string]struct{}, len(categories))
	for _, c := range categories {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		selected = append(selected, c)
	}
	if len(selected) == 0 {
		return ErrNoCategories
	}

	// Validate before touching the pool, which may be a database.
	var need int
	err := a.withRoom(ctx, "submit_categories", code, func(e *roomEntry) error {
		if err := requireModeratorInLobby(e, connID); err != nil {
			return err
		}
		need = e.room.Settings.WordCount
		return nil
	})
	if err != nil {
		return err
	}

	if a.pool == nil {
		return fmt.Errorf("%w: no word pool configured", ErrInsufficientWords)
	}
	available, err := a.pool.Entries(ctx, selected)
	if err != nil {
		return fmt.Errorf("failed to load words: %w", err)
	}

	a.rngMu.Lock()
	picked, err := words.Select(available, need, a.rng)
	a.rngMu.Unlock()
	if err != nil {
		var insufficient *words.InsufficientError
		if errors.As(err, &insufficient) {
			return fmt.Errorf("%w: %v", ErrInsufficientWords, insufficient)
		}
		return err
	}

	list := make([]models.WordEntry, 0, len(picked))
	for _, p := range picked {
		list = append(list, models.WordEntry{Word: p.Word, Category: p.Category, Hint: p.Hint})
	}

	return a.withRoom(ctx, "submit_categories", code, func(e *roomEntry) error {
		if err := requireModeratorInLobby(e, connID); err != nil {
			return err
		}
		if len(list) != e.room.Settings.WordCount {
			return fmt.Errorf("%w: room settings changed during selection", ErrInvalidState)
		}
		e.room.WordList = list
		e.room.SelectedCategories = selected
		a.emitRoom(e)
		log.Info().
			Str("room_code", e.room.Code).
			Strs("categories", selected).
			Int("words", len(list)).
			Msg("word list drawn from categories")
		return nil
	})
}

// Categories lists the categories offered by the word pool.
func (a *App) Categories(ctx context.Context) ([]string, error) {
	if a.pool == nil {
		return []string{}, nil
	}
	cats, err := a.pool.Categories(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return cats, nil
}

// StartGame begins a game with the submitted word list.
func (a *App) StartGame(ctx context.Context, code, connID string) error {
	return a.withRoom(ctx, "start_game", code, func(e *roomEntry) error {
		r := e.room
		if !r.IsModerator(connID) {
			return ErrUnauthorized
		}
		if r.State == models.RoomStatePlaying {
			return ErrGameInProgress
		}
		if len(r.WordList) == 0 {
			return ErrNoWords
		}
		first := nextEligible(r, -1)
		if first < 0 {
			return ErrNoPlayers
		}

		r.Game = &models.Game{TurnIndex: first}
		r.State = models.RoomStatePlaying
		setupWord(r)

		a.emitRoom(e)
		a.emitScores(e)
		a.emitGame(e)
		a.startTurnTimer(e)

		log.Info().Str("room_code", r.Code).Int("words", len(r.WordList)).Msg("game started")
		return nil
	})
}

// RestartGame returns the room to the lobby with fresh scores. Players are kept.
func (a *App) RestartGame(ctx context.Context, code, connID string) error {
	return a.withRoom(ctx, "restart_game", code, func(e *roomEntry) error {
		r := e.room
		if !r.IsModerator(connID) {
			return ErrUnauthorized
		}

		a.cancelTask(e)
		for _, p := range r.Players {
			p.Score = a.cfg.InitialScore
		}
		r.WordList = nil
		r.SelectedCategories = nil
		r.Game = nil
		r.State = models.RoomStateLobby

		a.emitRoom(e)
		a.emitScores(e)
		log.Info().Str("room_code", r.Code).Msg("game restarted")
		return nil
	})
}

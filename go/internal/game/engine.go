package game

import (
	"context"
	"strings"
	"unicode"

	"github.com/rs/zerolog/log"

	"github.com/mcdev12/hangman/go/internal/models"
)

// setupWord loads the word at CurrentWordIndex. TurnIndex is left alone.
func setupWord(r *models.Room) {
	g := r.Game
	entry := r.WordList[g.CurrentWordIndex]

	g.CurrentWord = entry.Word
	g.Category = entry.Category
	g.Hint = entry.Hint

	runes := []rune(entry.Word)
	g.Revealed = make([]string, len(runes))
	for i, ch := range runes {
		if unicode.IsLetter(ch) {
			g.Revealed[i] = models.HiddenLetter
		} else {
			g.Revealed[i] = string(ch)
		}
	}
	g.IncorrectGuesses = []string{}
	g.GuessedLetters = []string{}
	g.HangmanState = 0
	g.Solved = false
	g.TurnEnded = false
}

// nextEligible returns the first connected player after index from, wrapping
// around the roster, or -1 when nobody is connected.
func nextEligible(r *models.Room, from int) int {
	n := len(r.Players)
	for step := 1; step <= n; step++ {
		i := ((from+step)%n + n) % n
		if r.Players[i].Connected {
			return i
		}
	}
	return -1
}

// turnHolder returns the roster index of connID if it may act now.
func turnHolder(r *models.Room, connID string) (int, error) {
	g := r.Game
	if g.Solved || g.TurnEnded {
		return -1, ErrNotYourTurn
	}
	idx := r.PlayerByConn(connID)
	if idx < 0 || idx != g.TurnIndex || !r.Players[idx].Connected {
		return -1, ErrNotYourTurn
	}
	return idx, nil
}

func requirePlaying(r *models.Room) error {
	if r.State != models.RoomStatePlaying || r.Game == nil {
		return ErrGameNotInProgress
	}
	return nil
}

// GuessLetter applies a letter guess by the turn holder.
func (a *App) GuessLetter(ctx context.Context, code, connID, letter string) (*GuessResult, error) {
	var res GuessResult
	err := a.withRoom(ctx, "guess_letter", code, func(e *roomEntry) error {
		r := e.room
		if err := requirePlaying(r); err != nil {
			return err
		}
		idx, err := turnHolder(r, connID)
		if err != nil {
			return err
		}
		folded, err := parseLetter(letter)
		if err != nil {
			return err
		}

		g := r.Game
		if g.HasGuessed(folded) {
			return ErrLetterAlreadyGuessed
		}
		g.GuessedLetters = append(g.GuessedLetters, folded)

		found := false
		for i, ch := range []rune(g.CurrentWord) {
			if fold(string(ch)) == folded {
				g.Revealed[i] = string(ch)
				found = true
			}
		}

		p := r.Players[idx]
		if found {
			p.Score++
			a.emitScores(e)

			if g.IsRevealed() {
				p.Score++
				a.markSolved(e)
				log.Info().Str("room_code", r.Code).Str("username", p.Username).Msg("word solved by letter")
				res = GuessResult{Correct: true, Solved: true}
				return nil
			}
		} else {
			p.Score--
			g.IncorrectGuesses = append(g.IncorrectGuesses, folded)
			g.HangmanState++
			a.emitScores(e)
		}

		a.endTurn(e)
		res = GuessResult{Correct: found}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// SolveWord applies a full-word guess by the turn holder.
func (a *App) SolveWord(ctx context.Context, code, connID, guess string) (*GuessResult, error) {
	var res GuessResult
	err := a.withRoom(ctx, "solve_word", code, func(e *roomEntry) error {
		r := e.room
		if err := requirePlaying(r); err != nil {
			return err
		}
		idx, err := turnHolder(r, connID)
		if err != nil {
			return err
		}
		guess = strings.TrimSpace(guess)
		if !hasLetter(guess) {
			return ErrInvalidGuess
		}

		g := r.Game
		p := r.Players[idx]
		if fold(guess) == fold(g.CurrentWord) {
			for i, ch := range []rune(g.CurrentWord) {
				g.Revealed[i] = string(ch)
			}
			p.Score += 2
			a.emitScores(e)
			a.markSolved(e)
			log.Info().Str("room_code", r.Code).Str("username", p.Username).Msg("word solved")
			res = GuessResult{Correct: true, Solved: true}
			return nil
		}

		p.Score--
		a.emitScores(e)
		a.endTurn(e)
		res = GuessResult{}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// markSolved freezes the word and schedules the move to the next one. Caller must hold e.mu.
func (a *App) markSolved(e *roomEntry) {
	g := e.room.Game
	g.Solved = true
	g.TimerEnd = nil
	a.cancelTask(e)
	a.emitScores(e)
	a.emitGame(e)
	a.schedule(e, "advance_word", a.cfg.SolveDelay, a.advanceWord)
}

// endTurn closes the holder's turn and schedules rotation. Caller must hold e.mu.
func (a *App) endTurn(e *roomEntry) {
	g := e.room.Game
	g.TurnEnded = true
	g.TimerEnd = nil
	a.cancelTask(e)
	a.emitGame(e)
	a.schedule(e, "advance_turn", a.cfg.GuessDelay, func(e *roomEntry) {
		a.advanceTurn(e, false)
	})
}

// advanceTurn rotates to the next connected player. Caller must hold e.mu.
func (a *App) advanceTurn(e *roomEntry, timedOut bool) {
	r := e.room
	g := r.Game

	if timedOut {
		if holder := r.Players[g.TurnIndex]; holder.Connected {
			holder.Score--
			a.emitScores(e)
			log.Debug().Str("room_code", r.Code).Str("username", holder.Username).Msg("turn timed out")
		}
	}

	next := nextEligible(r, g.TurnIndex)
	if next < 0 {
		a.endGame(e)
		return
	}
	g.TurnIndex = next
	g.TurnEnded = false
	g.TimerEnd = nil
	a.startTurnTimer(e)
}

// advanceWord moves to the next word or ends the game. Caller must hold e.mu.
func (a *App) advanceWord(e *roomEntry) {
	r := e.room
	g := r.Game

	g.CurrentWordIndex++
	if g.CurrentWordIndex >= len(r.WordList) {
		a.endGame(e)
		return
	}
	next := nextEligible(r, g.TurnIndex)
	if next < 0 {
		a.endGame(e)
		return
	}
	g.TurnIndex = next
	setupWord(r)
	a.startTurnTimer(e)
}

// startTurnTimer sets a fresh deadline and arms the timeout. Caller must hold e.mu.
func (a *App) startTurnTimer(e *roomEntry) {
	g := e.room.Game
	end := a.clock.Now().Add(a.cfg.TurnDuration)
	g.TimerEnd = &end

	a.schedule(e, "turn_timeout", a.cfg.TurnDuration, func(e *roomEntry) {
		a.advanceTurn(e, true)
	})
	a.emit(e, EventTimerUpdate, TimerUpdate{TimerEnd: unixMilli(g.TimerEnd)})
	a.emitGame(e)
}

// endGame finishes the game and broadcasts the final scoreboard. Caller must hold e.mu.
func (a *App) endGame(e *roomEntry) {
	a.cancelTask(e)
	r := e.room
	r.State = models.RoomStateFinished
	if r.Game != nil {
		r.Game.TimerEnd = nil
	}
	a.emit(e, EventGameOver, scoreboard(r))
	a.emitRoom(e)
	log.Info().Str("room_code", r.Code).Msg("game over")
}

// HandleDisconnect removes connID from every room it belongs to. A moderator
// disconnect closes the room; a player is flagged disconnected and skipped in rotation.
func (a *App) HandleDisconnect(ctx context.Context, connID string) {
	for _, e := range a.registry.entries() {
		a.disconnectFrom(e, connID)
	}
}

func (a *App) disconnectFrom(e *roomEntry, connID string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return
	}
	r := e.room
	if r.IsModerator(connID) {
		_ = a.guard(e, "close_room", func() error {
			a.closeRoom(e, reasonModeratorLeft)
			return nil
		})
		return
	}

	idx := r.PlayerByConn(connID)
	if idx < 0 || !r.Players[idx].Connected {
		return
	}

	_ = a.guard(e, "player_disconnect", func() error {
		r.Players[idx].Connected = false
		log.Info().Str("room_code", r.Code).Str("connection_id", connID).Str("username", r.Players[idx].Username).Msg("player disconnected")

		if r.State == models.RoomStatePlaying && r.Game != nil {
			if r.ConnectedPlayers() == 0 {
				a.endGame(e)
			} else if idx == r.Game.TurnIndex && !r.Game.Solved {
				a.cancelTask(e)
				a.advanceTurn(e, false)
			}
		}

		a.emitRoom(e)
		if r.Game != nil {
			a.emitScores(e)
			a.emitGame(e)
		}
		return nil
	})
}

package game

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/hangman/go/internal/models"
	"github.com/mcdev12/hangman/go/internal/words"
)

// Clock is the interface we use for time operations.
// In production, use clockwork.NewRealClock(). In tests, a FakeClock.
type Clock interface {
	Now() time.Time
	NewTimer(d time.Duration) clockwork.Timer
}

// App owns room setup and the turn engine. Every operation on a room runs under
// that room's lock, including the broadcasts it triggers.
type App struct {
	registry    *Registry
	pool        words.Pool
	broadcaster Broadcaster
	members     Membership
	clock       Clock
	cfg         Config

	rngMu sync.Mutex
	rng   *rand.Rand
}

// Option configures an App.
type Option func(*App)

// WithClock overrides the real clock.
func WithClock(c Clock) Option {
	return func(a *App) { a.clock = c }
}

// WithRand overrides the source used for word selection.
func WithRand(r *rand.Rand) Option {
	return func(a *App) { a.rng = r }
}

// WithMembership registers accepted room members with m.
func WithMembership(m Membership) Option {
	return func(a *App) { a.members = m }
}

// NewApp creates a new App.
func NewApp(registry *Registry, pool words.Pool, broadcaster Broadcaster, cfg Config, opts ...Option) *App {
	if broadcaster == nil {
		broadcaster = nopBroadcaster{}
	}
	a := &App{
		registry:    registry,
		pool:        pool,
		broadcaster: broadcaster,
		members:     nopMembership{},
		clock:       clockwork.NewRealClock(),
		cfg:         cfg.withDefaults(),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.rng == nil {
		a.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return a
}

// Config returns the effective tunables.
func (a *App) Config() Config {
	return a.cfg
}

// withRoom runs fn under the room's lock.
func (a *App) withRoom(ctx context.Context, op, code string, fn func(e *roomEntry) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	e, err := a.registry.get(code)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return ErrRoomNotFound
	}
	return a.guard(e, op, func() error { return fn(e) })
}

// guard converts a panic in a room operation into ErrInternal and force-ends the room's game.
// Caller must hold e.mu.
func (a *App) guard(e *roomEntry, op string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().
				Str("room_code", e.room.Code).
				Str("op", op).
				Interface("panic", r).
				Bytes("stack", debug.Stack()).
				Msg("recovered panic in room operation")
			a.forceEnd(e)
			err = fmt.Errorf("%w: %s failed", ErrInternal, op)
		}
	}()
	return fn()
}

func (a *App) forceEnd(e *roomEntry) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Str("room_code", e.room.Code).Interface("panic", r).Msg("failed to force-end game")
			e.room.State = models.RoomStateFinished
		}
	}()
	a.cancelTask(e)
	if e.room.State == models.RoomStatePlaying {
		a.endGame(e)
	}
}

// emit marshals payload and hands the event to the broadcaster. Caller must hold e.mu.
func (a *App) emit(e *roomEntry, typ EventType, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Str("room_code", e.room.Code).Str("event_type", string(typ)).Msg("failed to marshal event")
		return
	}
	a.broadcaster.BroadcastToRoom(e.room.Code, &Event{
		ID:        uuid.NewString(),
		RoomCode:  e.room.Code,
		Type:      typ,
		Timestamp: a.clock.Now().UTC(),
		Data:      data,
	})
}

func (a *App) emitRoom(e *roomEntry) {
	a.emit(e, EventRoomUpdate, snapshotRoom(e.room))
}

func (a *App) emitGame(e *roomEntry) {
	if gs := publicGameState(e.room); gs != nil {
		a.emit(e, EventGameUpdate, gs)
	}
}

func (a *App) emitScores(e *roomEntry) {
	a.emit(e, EventScoreUpdate, scoreboard(e.room))
}

// Snapshot returns the public view of a room.
func (a *App) Snapshot(ctx context.Context, code string) (*RoomView, error) {
	var view RoomView
	err := a.withRoom(ctx, "snapshot", code, func(e *roomEntry) error {
		view = RoomView{Room: snapshotRoom(e.room), Game: publicGameState(e.room)}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &view, nil
}

// Stats summarizes every live room.
func (a *App) Stats() Stats {
	var s Stats
	for _, e := range a.registry.entries() {
		e.mu.Lock()
		if !e.closed {
			s.Rooms++
			switch e.room.State {
			case models.RoomStateLobby:
				s.Lobby++
			case models.RoomStatePlaying:
				s.Playing++
			case models.RoomStateFinished:
				s.Finished++
			}
			s.Players += len(e.room.Players)
			s.ConnectedPlayers += e.room.ConnectedPlayers()
		}
		e.mu.Unlock()
	}
	return s
}

// CloseRoom closes a room as if its moderator had disconnected.
func (a *App) CloseRoom(ctx context.Context, code, reason string) error {
	return a.withRoom(ctx, "close_room", code, func(e *roomEntry) error {
		a.closeRoom(e, reason)
		return nil
	})
}

// closeRoom broadcasts roomClosed and removes the room. Caller must hold e.mu.
func (a *App) closeRoom(e *roomEntry, reason string) {
	a.cancelTask(e)
	e.closed = true
	a.emit(e, EventRoomClosed, RoomClosed{Reason: reason})
	a.registry.delete(e.room.Code)
	log.Info().Str("room_code", e.room.Code).Str("reason", reason).Msg("room closed")
}

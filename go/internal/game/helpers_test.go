package game

import (
	"context"
	"encoding/json"
	"math/rand/v2"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"

	"github.com/mcdev12/hangman/go/internal/models"
	"github.com/mcdev12/hangman/go/internal/words"
)

const testWordList = `
Animals:
  - word: CAT
    hint: Purrs
  - word: DOG
  - word: COW
    hint: Moos
Fruits:
  - word: Apple
`

type fakeClock interface {
	Clock
	Advance(d time.Duration)
}

type recorder struct {
	mu     sync.Mutex
	events []*Event
}

func (r *recorder) BroadcastToRoom(roomCode string, event *Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recorder) count(typ EventType) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if e.Type == typ {
			n++
		}
	}
	return n
}

func (r *recorder) last(typ EventType) *Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.events) - 1; i >= 0; i-- {
		if r.events[i].Type == typ {
			return r.events[i]
		}
	}
	return nil
}

// memberSet records room membership as App reports it.
type memberSet struct {
	mu      sync.Mutex
	members map[string]map[string]bool
}

func (m *memberSet) Join(roomCode, connID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.members == nil {
		m.members = make(map[string]map[string]bool)
	}
	if m.members[roomCode] == nil {
		m.members[roomCode] = make(map[string]bool)
	}
	m.members[roomCode][connID] = true
}

func (m *memberSet) Leave(roomCode, connID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.members[roomCode], connID)
}

func (m *memberSet) has(roomCode, connID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.members[roomCode][connID]
}

type harness struct {
	t     *testing.T
	ctx   context.Context
	app   *App
	clock fakeClock
	rec   *recorder
	mem   *memberSet
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	pool, err := words.Parse([]byte(testWordList))
	require.NoError(t, err)

	clock := clockwork.NewFakeClock()
	rec := &recorder{}
	mem := &memberSet{}
	app := NewApp(NewRegistry(nil), pool, rec, DefaultConfig(),
		WithClock(clock),
		WithRand(rand.New(rand.NewPCG(1, 2))),
		WithMembership(mem),
	)
	return &harness{t: t, ctx: context.Background(), app: app, clock: clock, rec: rec, mem: mem}
}

// room creates a lobby moderated by "mod" with the given players joined in order.
func (h *harness) room(capacity, wordCount int, players ...string) string {
	h.t.Helper()
	res, err := h.app.CreateRoom(h.ctx, "mod", "Moderator", capacity, wordCount)
	require.NoError(h.t, err)
	for _, name := range players {
		_, err := h.app.JoinRoom(h.ctx, res.RoomCode, connOf(name), name)
		require.NoError(h.t, err)
	}
	return res.RoomCode
}

// playing creates a room with the given words and players and starts the game.
func (h *harness) playing(wordList []string, players ...string) string {
	h.t.Helper()
	code := h.room(len(players), len(wordList), players...)
	entries := make([]models.WordEntry, 0, len(wordList))
	for _, w := range wordList {
		entries = append(entries, models.WordEntry{Word: w, Category: "Animals"})
	}
	require.NoError(h.t, h.app.SubmitWordList(h.ctx, code, "mod", entries))
	require.NoError(h.t, h.app.StartGame(h.ctx, code, "mod"))
	return code
}

func (h *harness) view(code string) *RoomView {
	h.t.Helper()
	v, err := h.app.Snapshot(h.ctx, code)
	require.NoError(h.t, err)
	return v
}

// waitTurn blocks until a fresh turn for the player at idx has started.
func (h *harness) waitTurn(code string, idx int) *RoomView {
	h.t.Helper()
	var v *RoomView
	require.Eventually(h.t, func() bool {
		v = h.view(code)
		return v.Game != nil && v.Game.TurnIndex == idx && v.Game.TimerEnd != nil && !v.Game.Solved
	}, time.Second, 5*time.Millisecond)
	return v
}

func (h *harness) waitState(code string, state models.RoomState) *RoomView {
	h.t.Helper()
	var v *RoomView
	require.Eventually(h.t, func() bool {
		v = h.view(code)
		return v.Room.State == state
	}, time.Second, 5*time.Millisecond)
	return v
}

func score(v *RoomView, username string) int {
	for _, p := range v.Room.Players {
		if p.Username == username {
			return p.Score
		}
	}
	return -1000
}

func connOf(name string) string {
	return "conn-" + name
}

func decode[T any](t *testing.T, e *Event) T {
	t.Helper()
	require.NotNil(t, e)
	var out T
	require.NoError(t, json.Unmarshal(e.Data, &out))
	return out
}

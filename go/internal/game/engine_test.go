package game

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcdev12/hangman/go/internal/models"
)

func TestScenario_Cat(t *testing.T) {
	h := newHarness(t)
	code := h.playing([]string{"CAT"}, "Alice", "Bob")
	a, b := connOf("Alice"), connOf("Bob")

	v := h.waitTurn(code, 0)
	assert.Equal(t, []string{"_", "_", "_"}, v.Game.Revealed)
	assert.Equal(t, "Animals", v.Game.Category)

	res, err := h.app.GuessLetter(h.ctx, code, a, "c")
	require.NoError(t, err)
	assert.Equal(t, GuessResult{Correct: true}, *res)

	v = h.view(code)
	assert.Equal(t, []string{"C", "_", "_"}, v.Game.Revealed)
	assert.Equal(t, 11, score(v, "Alice"))

	// The turn is over even before rotation happens.
	_, err = h.app.GuessLetter(h.ctx, code, a, "t")
	assert.ErrorIs(t, err, ErrNotYourTurn)
	_, err = h.app.GuessLetter(h.ctx, code, b, "t")
	assert.ErrorIs(t, err, ErrNotYourTurn)

	h.clock.Advance(time.Second)
	h.waitTurn(code, 1)

	res, err = h.app.GuessLetter(h.ctx, code, b, "x")
	require.NoError(t, err)
	assert.Equal(t, GuessResult{}, *res)
	v = h.view(code)
	assert.Equal(t, []string{"C", "_", "_"}, v.Game.Revealed)
	assert.Equal(t, 9, score(v, "Bob"))
	assert.Equal(t, 1, v.Game.HangmanState)
	assert.Equal(t, []string{"x"}, v.Game.IncorrectGuesses)

	h.clock.Advance(time.Second)
	h.waitTurn(code, 0)

	_, err = h.app.GuessLetter(h.ctx, code, a, "t")
	require.NoError(t, err)
	h.clock.Advance(time.Second)
	h.waitTurn(code, 1)

	_, err = h.app.GuessLetter(h.ctx, code, b, "q")
	require.NoError(t, err)
	h.clock.Advance(time.Second)
	h.waitTurn(code, 0)

	res, err = h.app.GuessLetter(h.ctx, code, a, "A")
	require.NoError(t, err)
	assert.Equal(t, GuessResult{Correct: true, Solved: true}, *res)

	v = h.view(code)
	assert.Equal(t, []string{"C", "A", "T"}, v.Game.Revealed)
	assert.True(t, v.Game.Solved)
	assert.Nil(t, v.Game.TimerEnd)
	assert.Equal(t, 14, score(v, "Alice"))
	assert.Equal(t, 8, score(v, "Bob"))
	assert.Equal(t, 2, v.Game.HangmanState)
	assert.Equal(t, []string{"c", "x", "t", "q", "a"}, v.Game.GuessedLetters)

	assert.Zero(t, h.rec.count(EventGameOver))
	h.clock.Advance(2 * time.Second)
	h.waitState(code, models.RoomStateFinished)

	final := decode[[]ScoreEntry](t, h.rec.last(EventGameOver))
	assert.Equal(t, []ScoreEntry{
		{Username: "Alice", Score: 14, Connected: true},
		{Username: "Bob", Score: 8, Connected: true},
	}, final)
}

func TestGuessLetter_AlreadyGuessed(t *testing.T) {
	h := newHarness(t)
	code := h.playing([]string{"CAT"}, "Alice", "Bob")

	_, err := h.app.GuessLetter(h.ctx, code, connOf("Alice"), "z")
	require.NoError(t, err)
	h.clock.Advance(time.Second)
	h.waitTurn(code, 1)

	before := h.view(code)
	_, err = h.app.GuessLetter(h.ctx, code, connOf("Bob"), "Z")
	assert.ErrorIs(t, err, ErrLetterAlreadyGuessed)
	assert.Equal(t, CodeAlreadyGuessed, ErrorCode(err))
	assert.Equal(t, before, h.view(code))

	// Bob still holds the turn.
	_, err = h.app.GuessLetter(h.ctx, code, connOf("Bob"), "c")
	assert.NoError(t, err)
}

func TestGuessLetter_Validation(t *testing.T) {
	h := newHarness(t)
	code := h.room(2, 1, "Alice")

	_, err := h.app.GuessLetter(h.ctx, code, connOf("Alice"), "c")
	assert.ErrorIs(t, err, ErrGameNotInProgress)
	assert.Equal(t, CodeInvalidState, ErrorCode(err))

	_, err = h.app.GuessLetter(h.ctx, "NOPE22", connOf("Alice"), "c")
	assert.ErrorIs(t, err, ErrRoomNotFound)

	code = h.playing([]string{"CAT"}, "Alice", "Bob")
	for _, bad := range []string{"", "ab", "1", "-"} {
		_, err = h.app.GuessLetter(h.ctx, code, connOf("Alice"), bad)
		assert.ErrorIs(t, err, ErrInvalidGuess, "guess %q", bad)
	}

	_, err = h.app.GuessLetter(h.ctx, code, "mod", "c")
	assert.ErrorIs(t, err, ErrNotYourTurn)
	assert.Empty(t, h.view(code).Game.GuessedLetters)
}

func TestSolveWord(t *testing.T) {
	h := newHarness(t)
	code := h.playing([]string{"CAT", "DOG"}, "Alice", "Bob")

	res, err := h.app.SolveWord(h.ctx, code, connOf("Alice"), "cow")
	require.NoError(t, err)
	assert.Equal(t, GuessResult{}, *res)
	assert.Equal(t, 9, score(h.view(code), "Alice"))

	h.clock.Advance(time.Second)
	h.waitTurn(code, 1)

	res, err = h.app.SolveWord(h.ctx, code, connOf("Bob"), " cat ")
	require.NoError(t, err)
	assert.Equal(t, GuessResult{Correct: true, Solved: true}, *res)

	v := h.view(code)
	assert.Equal(t, []string{"C", "A", "T"}, v.Game.Revealed)
	assert.Equal(t, 12, score(v, "Bob"))

	_, err = h.app.SolveWord(h.ctx, code, connOf("Bob"), "cat")
	assert.ErrorIs(t, err, ErrNotYourTurn)

	// Word boundaries always rotate the turn.
	h.clock.Advance(2 * time.Second)
	v = h.waitTurn(code, 0)
	assert.Equal(t, 1, v.Game.CurrentWordIndex)
	assert.Equal(t, []string{"_", "_", "_"}, v.Game.Revealed)
	assert.Empty(t, v.Game.GuessedLetters)
	assert.Zero(t, v.Game.HangmanState)
}

func TestSetupWord_NonLetters(t *testing.T) {
	h := newHarness(t)
	code := h.playing([]string{"Ice Cream"}, "Alice")

	v := h.view(code)
	assert.Equal(t, []string{"_", "_", "_", " ", "_", "_", "_", "_", "_"}, v.Game.Revealed)

	_, err := h.app.GuessLetter(h.ctx, code, connOf("Alice"), "e")
	require.NoError(t, err)
	v = h.view(code)
	assert.Equal(t, []string{"_", "_", "e", " ", "_", "_", "e", "_", "_"}, v.Game.Revealed)
	assert.Len(t, v.Game.Revealed, len([]rune("Ice Cream")))
}

func TestTurnTimeout_PenaltyOnce(t *testing.T) {
	h := newHarness(t)
	code := h.playing([]string{"CAT"}, "Alice", "Bob")

	// Alice's guess supersedes her turn timer.
	_, err := h.app.GuessLetter(h.ctx, code, connOf("Alice"), "c")
	require.NoError(t, err)
	h.clock.Advance(time.Second)
	h.waitTurn(code, 1)

	// Bob lets his turn expire.
	h.clock.Advance(10 * time.Second)
	v := h.waitTurn(code, 0)
	assert.Equal(t, 9, score(v, "Bob"))
	assert.Equal(t, 11, score(v, "Alice"))

	// Alice's original deadline has long passed without a second penalty.
	h.clock.Advance(5 * time.Second)
	v = h.view(code)
	assert.Equal(t, 0, v.Game.TurnIndex)
	assert.Equal(t, 9, score(v, "Bob"))
	assert.Equal(t, 11, score(v, "Alice"))
}

func TestTurnTimeout_Rotates(t *testing.T) {
	h := newHarness(t)
	code := h.playing([]string{"CAT"}, "Alice", "Bob", "Carol")

	h.clock.Advance(10 * time.Second)
	v := h.waitTurn(code, 1)
	assert.Equal(t, 9, score(v, "Alice"))

	h.clock.Advance(10 * time.Second)
	v = h.waitTurn(code, 2)
	assert.Equal(t, 9, score(v, "Bob"))

	h.clock.Advance(10 * time.Second)
	v = h.waitTurn(code, 0)
	assert.Equal(t, 9, score(v, "Carol"))
	assert.GreaterOrEqual(t, h.rec.count(EventTimerUpdate), 4)
}

func TestStaleTaskIsNoop(t *testing.T) {
	h := newHarness(t)
	code := h.playing([]string{"CAT"}, "Alice", "Bob")

	e, err := h.app.registry.get(code)
	require.NoError(t, err)
	e.mu.Lock()
	stale := e.seq - 1
	e.mu.Unlock()

	h.app.runTask(e, stale, "stale", func(*roomEntry) {
		t.Fatal("stale task ran")
	})

	require.NoError(t, h.app.RestartGame(h.ctx, code, "mod"))
	e.mu.Lock()
	current := e.seq
	e.mu.Unlock()
	h.app.runTask(e, current, "after_restart", func(*roomEntry) {
		t.Fatal("task ran without a game")
	})
}

func TestDisconnect_TurnHolderAdvancesImmediately(t *testing.T) {
	h := newHarness(t)
	code := h.playing([]string{"CAT"}, "Alice", "Bob", "Carol")

	h.app.HandleDisconnect(h.ctx, connOf("Alice"))

	v := h.view(code)
	assert.Equal(t, 1, v.Game.TurnIndex)
	assert.NotNil(t, v.Game.TimerEnd)
	assert.Equal(t, 10, score(v, "Alice"))
	assert.False(t, v.Room.Players[0].Connected)

	scores := decode[[]ScoreEntry](t, h.rec.last(EventScoreUpdate))
	assert.False(t, scores[0].Connected)

	// Rotation skips the disconnected slot.
	_, err := h.app.GuessLetter(h.ctx, code, connOf("Bob"), "c")
	require.NoError(t, err)
	h.clock.Advance(time.Second)
	h.waitTurn(code, 2)
	_, err = h.app.GuessLetter(h.ctx, code, connOf("Carol"), "x")
	require.NoError(t, err)
	h.clock.Advance(time.Second)
	h.waitTurn(code, 1)
}

func TestDisconnect_LastPlayerEndsGame(t *testing.T) {
	h := newHarness(t)
	code := h.playing([]string{"CAT"}, "Alice", "Bob")

	h.app.HandleDisconnect(h.ctx, connOf("Bob"))
	assert.Equal(t, models.RoomStatePlaying, h.view(code).Room.State)

	h.app.HandleDisconnect(h.ctx, connOf("Alice"))
	v := h.view(code)
	assert.Equal(t, models.RoomStateFinished, v.Room.State)
	assert.Equal(t, 1, h.rec.count(EventGameOver))

	// No timer survives the end of the game.
	h.clock.Advance(time.Minute)
	assert.Equal(t, 1, h.rec.count(EventGameOver))
}

func TestDisconnect_ModeratorClosesRoom(t *testing.T) {
	h := newHarness(t)
	code := h.playing([]string{"CAT"}, "Alice", "Bob")

	h.app.HandleDisconnect(h.ctx, "mod")

	closed := h.rec.last(EventRoomClosed)
	require.NotNil(t, closed)
	assert.Equal(t, code, closed.RoomCode)
	assert.Zero(t, h.app.registry.Len())

	_, err := h.app.JoinRoom(h.ctx, code, "conn-late", "Late")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, CodeNotFound, ErrorCode(err))

	h.clock.Advance(time.Minute)
	assert.Zero(t, h.rec.count(EventGameOver))
}

func TestReconnectPlayer(t *testing.T) {
	h := newHarness(t)
	code := h.playing([]string{"CAT"}, "Alice", "Bob")

	_, err := h.app.GuessLetter(h.ctx, code, connOf("Alice"), "c")
	require.NoError(t, err)
	h.app.HandleDisconnect(h.ctx, connOf("Alice"))

	assert.False(t, h.mem.has(code, "conn-new"))
	_, err = h.app.ReconnectPlayer(h.ctx, code, "conn-new", "Mallory")
	assert.ErrorIs(t, err, ErrPlayerNotFound)
	assert.False(t, h.mem.has(code, "conn-new"))

	snap, err := h.app.ReconnectPlayer(h.ctx, code, "conn-new", "alice")
	require.NoError(t, err)
	assert.Equal(t, "Alice", snap.Players[0].Username)
	assert.True(t, snap.Players[0].Connected)
	assert.True(t, h.mem.has(code, "conn-new"))
	assert.Equal(t, 11, snap.Players[0].Score)

	h.clock.Advance(time.Second)
	h.waitTurn(code, 1)
	_, err = h.app.GuessLetter(h.ctx, code, connOf("Bob"), "x")
	require.NoError(t, err)
	h.clock.Advance(time.Second)
	h.waitTurn(code, 0)
	_, err = h.app.GuessLetter(h.ctx, code, "conn-new", "a")
	assert.NoError(t, err)
}

func TestReconnectPlayer_TakesOverConnectedSlot(t *testing.T) {
	h := newHarness(t)
	code := h.playing([]string{"CAT"}, "Alice", "Bob")

	// Alice's old socket has not been seen to drop.
	snap, err := h.app.ReconnectPlayer(h.ctx, code, "conn-alice-2", "Alice")
	require.NoError(t, err)
	require.Len(t, snap.Players, 2)
	assert.True(t, snap.Players[0].Connected)
	assert.True(t, h.mem.has(code, "conn-alice-2"))
	assert.False(t, h.mem.has(code, connOf("Alice")))

	_, err = h.app.GuessLetter(h.ctx, code, connOf("Alice"), "c")
	assert.ErrorIs(t, err, ErrNotYourTurn)
	res, err := h.app.GuessLetter(h.ctx, code, "conn-alice-2", "c")
	require.NoError(t, err)
	assert.True(t, res.Correct)

	// The stale socket dropping later does not touch the slot.
	h.app.HandleDisconnect(h.ctx, connOf("Alice"))
	v := h.view(code)
	assert.True(t, v.Room.Players[0].Connected)
	assert.Equal(t, models.RoomStatePlaying, v.Room.State)
}

func TestPanicForceEndsGame(t *testing.T) {
	h := newHarness(t)
	code := h.playing([]string{"CAT"}, "Alice", "Bob")

	e, err := h.app.registry.get(code)
	require.NoError(t, err)
	e.mu.Lock()
	e.room.Game.Revealed = nil
	e.mu.Unlock()

	_, err = h.app.GuessLetter(h.ctx, code, connOf("Alice"), "c")
	assert.ErrorIs(t, err, ErrInternal)
	assert.Equal(t, CodeInternal, ErrorCode(err))

	v := h.view(code)
	assert.Equal(t, models.RoomStateFinished, v.Room.State)
	assert.Equal(t, 1, h.rec.count(EventGameOver))
}

func TestNextEligible(t *testing.T) {
	r := &models.Room{Players: []*models.Player{
		{Username: "a", Connected: true},
		{Username: "b", Connected: false},
		{Username: "c", Connected: true},
	}}
	assert.Equal(t, 0, nextEligible(r, -1))
	assert.Equal(t, 2, nextEligible(r, 0))
	assert.Equal(t, 0, nextEligible(r, 2))
	assert.Equal(t, 2, nextEligible(r, 1))

	r.Players[0].Connected = false
	assert.Equal(t, 2, nextEligible(r, 2))

	r.Players[2].Connected = false
	assert.Equal(t, -1, nextEligible(r, 0))
}

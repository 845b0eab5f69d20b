package game

import (
	"time"

	"github.com/mcdev12/hangman/go/internal/models"
)

// PlayerView is a roster entry as sent to clients. Session ids stay server-side;
// clients know their own from the welcome message.
type PlayerView struct {
	Username  string `json:"username"`
	Score     int    `json:"score"`
	Connected bool   `json:"connected"`
}

// RoomSnapshot is the roomUpdate payload. It never contains the word list itself.
type RoomSnapshot struct {
	RoomCode           string              `json:"roomCode"`
	Moderator          string              `json:"moderator"`
	Players            []PlayerView        `json:"players"`
	Settings           models.RoomSettings `json:"settings"`
	State              models.RoomState    `json:"state"`
	WordsSubmitted     int                 `json:"wordsSubmitted"`
	SelectedCategories []string            `json:"selectedCategories"`
}

// GameState is the public gameUpdate payload. The current word only appears through Revealed.
type GameState struct {
	CurrentWordIndex int              `json:"currentWordIndex"`
	TotalWords       int              `json:"totalWords"`
	Category         string           `json:"category"`
	Hint             string           `json:"hint"`
	Revealed         []string         `json:"revealed"`
	IncorrectGuesses []string         `json:"incorrectGuesses"`
	HangmanState     int              `json:"hangmanState"`
	TurnIndex        int              `json:"turnIndex"`
	GuessedLetters   []string         `json:"guessedLetters"`
	Solved           bool             `json:"solved"`
	State            models.RoomState `json:"state"`
	TimerEnd         *int64           `json:"timerEnd"`
}

// ScoreEntry is one row of the scoreboard sent in scoreUpdate and gameOver.
type ScoreEntry struct {
	Username  string `json:"username"`
	Score     int    `json:"score"`
	Connected bool   `json:"connected"`
}

// TimerUpdate is the timerUpdate payload.
type TimerUpdate struct {
	TimerEnd *int64 `json:"timerEnd"`
}

// RoomClosed is the roomClosed payload.
type RoomClosed struct {
	Reason string `json:"reason"`
}

// GuessResult is returned to the guessing connection.
type GuessResult struct {
	Correct bool `json:"correct"`
	Solved  bool `json:"solved"`
}

// CreateRoomResult is returned to the moderator on createRoom.
type CreateRoomResult struct {
	RoomCode string       `json:"roomCode"`
	Room     RoomSnapshot `json:"room"`
}

// RoomView combines the room snapshot with the public game state, if any.
type RoomView struct {
	Room RoomSnapshot `json:"room"`
	Game *GameState   `json:"game,omitempty"`
}

// Stats summarizes the registry.
type Stats struct {
	Rooms            int `json:"rooms"`
	Lobby            int `json:"lobby"`
	Playing          int `json:"playing"`
	Finished         int `json:"finished"`
	Players          int `json:"players"`
	ConnectedPlayers int `json:"connectedPlayers"`
}

func snapshotRoom(r *models.Room) RoomSnapshot {
	players := make([]PlayerView, 0, len(r.Players))
	for _, p := range r.Players {
		players = append(players, PlayerView{
			Username:  p.Username,
			Score:     p.Score,
			Connected: p.Connected,
		})
	}
	return RoomSnapshot{
		RoomCode:           r.Code,
		Moderator:          r.Moderator.Username,
		Players:            players,
		Settings:           r.Settings,
		State:              r.State,
		WordsSubmitted:     len(r.WordList),
		SelectedCategories: copyStrings(r.SelectedCategories),
	}
}

func publicGameState(r *models.Room) *GameState {
	g := r.Game
	if g == nil {
		return nil
	}
	return &GameState{
		CurrentWordIndex: g.CurrentWordIndex,
		TotalWords:       len(r.WordList),
		Category:         g.Category,
		Hint:             g.Hint,
		Revealed:         copyStrings(g.Revealed),
		IncorrectGuesses: copyStrings(g.IncorrectGuesses),
		HangmanState:     g.HangmanState,
		TurnIndex:        g.TurnIndex,
		GuessedLetters:   copyStrings(g.GuessedLetters),
		Solved:           g.Solved,
		State:            r.State,
		TimerEnd:         unixMilli(g.TimerEnd),
	}
}

func scoreboard(r *models.Room) []ScoreEntry {
	out := make([]ScoreEntry, 0, len(r.Players))
	for _, p := range r.Players {
		out = append(out, ScoreEntry{Username: p.Username, Score: p.Score, Connected: p.Connected})
	}
	return out
}

func unixMilli(t *time.Time) *int64 {
	if t == nil {
		return nil
	}
	ms := t.UnixMilli()
	return &ms
}

// copyStrings returns a non-nil copy so JSON carries [] rather than null.
func copyStrings(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}

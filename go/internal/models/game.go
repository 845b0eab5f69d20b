package models

import "time"

// HiddenLetter marks an unrevealed position in Game.Revealed.
const HiddenLetter = "_"

// Game is the per-room state of a game in progress.
type Game struct {
	CurrentWordIndex int
	CurrentWord      string
	Category         string
	Hint             string
	Revealed         []string
	IncorrectGuesses []string
	HangmanState     int
	TurnIndex        int
	GuessedLetters   []string
	Solved           bool
	// TurnEnded is set once the current holder has acted and the turn is waiting to rotate.
	TurnEnded bool
	TimerEnd  *time.Time
}

// IsRevealed reports whether no hidden positions remain.
func (g *Game) IsRevealed() bool {
	for _, l := range g.Revealed {
		if l == HiddenLetter {
			return false
		}
	}
	return true
}

// HasGuessed reports whether the (already folded) letter was tried for the current word.
func (g *Game) HasGuessed(letter string) bool {
	for _, l := range g.GuessedLetters {
		if l == letter {
			return true
		}
	}
	return false
}

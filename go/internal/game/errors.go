package game

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by App wraps exactly one of these.
var (
	ErrNotFound          = errors.New("not found")
	ErrUnauthorized      = errors.New("not authorized")
	ErrFull              = errors.New("full")
	ErrInvalidState      = errors.New("invalid state")
	ErrAlreadyGuessed    = errors.New("already guessed")
	ErrNotYourTurn       = errors.New("not your turn")
	ErrInsufficientWords = errors.New("insufficient words")
	ErrInvalidArgument   = errors.New("invalid argument")
	ErrInternal          = errors.New("internal error")
)

var (
	ErrRoomNotFound   = fmt.Errorf("room %w", ErrNotFound)
	ErrPlayerNotFound = fmt.Errorf("player %w", ErrNotFound)

	ErrRoomFull = fmt.Errorf("room is %w", ErrFull)

	ErrGameNotInProgress = fmt.Errorf("%w: game not in progress", ErrInvalidState)
	ErrGameInProgress    = fmt.Errorf("%w: game already in progress", ErrInvalidState)
	ErrNotInLobby        = fmt.Errorf("%w: room is not in the lobby", ErrInvalidState)
	ErrNoWords           = fmt.Errorf("%w: no words submitted", ErrInvalidState)
	ErrNoPlayers         = fmt.Errorf("%w: no players in room", ErrInvalidState)
	ErrAlreadyJoined     = fmt.Errorf("%w: connection already in room", ErrInvalidState)

	ErrLetterAlreadyGuessed = fmt.Errorf("letter %w", ErrAlreadyGuessed)

	ErrInvalidGuess    = fmt.Errorf("%w: guess must be a single letter or a word", ErrInvalidArgument)
	ErrInvalidSettings = fmt.Errorf("%w: room settings out of range", ErrInvalidArgument)
	ErrInvalidName     = fmt.Errorf("%w: username is required", ErrInvalidArgument)
	ErrNameTaken       = fmt.Errorf("%w: username already in room", ErrInvalidArgument)
	ErrInvalidWordList = fmt.Errorf("%w: invalid word list", ErrInvalidArgument)
	ErrNoCategories    = fmt.Errorf("%w: no categories selected", ErrInvalidArgument)

	ErrCodeSpaceExhausted = errors.New("could not allocate a unique room code")
)

// Wire error codes returned to the calling connection.
const (
	CodeNotFound          = "NOT_FOUND"
	CodeUnauthorized      = "UNAUTHORIZED"
	CodeFull              = "FULL"
	CodeInvalidState      = "INVALID_STATE"
	CodeAlreadyGuessed    = "ALREADY_GUESSED"
	CodeNotYourTurn       = "NOT_YOUR_TURN"
	CodeInsufficientWords = "INSUFFICIENT_WORDS"
	CodeInvalidArgument   = "INVALID_ARGUMENT"
	CodeInternal          = "INTERNAL"
)

// ErrorCode maps an error to its wire code.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrNotFound):
		return CodeNotFound
	case errors.Is(err, ErrUnauthorized):
		return CodeUnauthorized
	case errors.Is(err, ErrFull):
		return CodeFull
	case errors.Is(err, ErrInvalidState):
		return CodeInvalidState
	case errors.Is(err, ErrAlreadyGuessed):
		return CodeAlreadyGuessed
	case errors.Is(err, ErrNotYourTurn):
		return CodeNotYourTurn
	case errors.Is(err, ErrInsufficientWords):
		return CodeInsufficientWords
	case errors.Is(err, ErrInvalidArgument):
		return CodeInvalidArgument
	default:
		return CodeInternal
	}
}

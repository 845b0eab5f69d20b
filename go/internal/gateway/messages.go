package gateway

import (
	"encoding/json"

	"github.com/mcdev12/hangman/go/internal/models"
)

// Server message types that are not room events
const (
	MessageTypeWelcome  = "welcome"
	MessageTypeResponse = "response"
)

// Client command names
const (
	CommandCreateRoom       = "createRoom"
	CommandJoinRoom         = "joinRoom"
	CommandReconnectPlayer  = "reconnectPlayer"
	CommandSubmitWordList   = "submitWordList"
	CommandSubmitWords      = "submitWords"
	CommandSubmitCategories = "submitCategories"
	CommandGetCategories    = "getCategories"
	CommandStartGame        = "startGame"
	CommandGuessLetter      = "guessLetter"
	CommandSolveWord        = "solveWord"
	CommandRestartGame      = "restartGame"
)

// ClientMessage is a command sent by a client. ID is echoed in the response.
type ClientMessage struct {
	ID   string          `json:"id"`
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// ServerMessage is a direct message to one connection.
type ServerMessage struct {
	Type  string       `json:"type"`
	ID    string       `json:"id,omitempty"`
	OK    bool         `json:"ok"`
	Data  any          `json:"data,omitempty"`
	Error *ErrorResult `json:"error,omitempty"`
}

// ErrorResult is the structured error returned to the caller only.
type ErrorResult struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// WelcomeMessage is the first message on every connection.
type WelcomeMessage struct {
	Type string  `json:"type"`
	Data Welcome `json:"data"`
}

// Welcome tells a client its session id.
type Welcome struct {
	ConnectionID string `json:"connectionId"`
}

type createRoomRequest struct {
	Username  string `json:"username"`
	RoomSize  int    `json:"roomSize"`
	WordCount int    `json:"wordCount"`
}

type roomRequest struct {
	RoomCode string `json:"roomCode"`
}

type joinRoomRequest struct {
	RoomCode string `json:"roomCode"`
	Username string `json:"username"`
}

type submitWordListRequest struct {
	RoomCode string             `json:"roomCode"`
	WordList []models.WordEntry `json:"wordList"`
}

type submitCategoriesRequest struct {
	RoomCode   string   `json:"roomCode"`
	Categories []string `json:"categories"`
}

type guessLetterRequest struct {
	RoomCode string `json:"roomCode"`
	Letter   string `json:"letter"`
}

type solveWordRequest struct {
	RoomCode string `json:"roomCode"`
	Guess    string `json:"guess"`
}

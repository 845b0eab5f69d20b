package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"runtime/debug"

	"github.com/rs/zerolog/log"

	"github.com/mcdev12/hangman/go/internal/game"
	"github.com/mcdev12/hangman/go/internal/models"
)

// GameApp defines what the gateway needs from the game application
type GameApp interface {
	CreateRoom(ctx context.Context, connID, username string, capacity, wordCount int) (*game.CreateRoomResult, error)
	JoinRoom(ctx context.Context, code, connID, username string) (*game.RoomSnapshot, error)
	ReconnectPlayer(ctx context.Context, code, connID, username string) (*game.RoomSnapshot, error)
	SubmitWordList(ctx context.Context, code, connID string, entries []models.WordEntry) error
	SubmitCategories(ctx context.Context, code, connID string, categories []string) error
	Categories(ctx context.Context) ([]string, error)
	StartGame(ctx context.Context, code, connID string) error
	RestartGame(ctx context.Context, code, connID string) error
	GuessLetter(ctx context.Context, code, connID, letter string) (*game.GuessResult, error)
	SolveWord(ctx context.Context, code, connID, guess string) (*game.GuessResult, error)
	HandleDisconnect(ctx context.Context, connID string)
}

var (
	errMalformedMessage = fmt.Errorf("%w: malformed message", game.ErrInvalidArgument)
	errUnknownCommand   = fmt.Errorf("%w: unknown command", game.ErrInvalidArgument)
)

// handleClientMessage runs one command and replies to this connection only
func (c *Connection) handleClientMessage(message []byte) {
	var msg ClientMessage
	if err := json.Unmarshal(message, &msg); err != nil {
		c.reply("", nil, errMalformedMessage)
		return
	}

	log.Debug().
		Str("connection_id", c.ID).
		Str("command", msg.Type).
		Str("request_id", msg.ID).
		Msg("received client command")

	ctx, cancel := context.WithTimeout(context.Background(), c.Manager.config.CommandTimeout)
	defer cancel()

	data, err := c.dispatch(ctx, msg)
	c.reply(msg.ID, data, err)
}

// dispatch recovers from any panic so one command cannot take the process down
func (c *Connection) dispatch(ctx context.Context, msg ClientMessage) (data any, err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().
				Str("connection_id", c.ID).
				Str("command", msg.Type).
				Interface("panic", r).
				Bytes("stack", debug.Stack()).
				Msg("recovered panic in command")
			data, err = nil, fmt.Errorf("%w: command failed", game.ErrInternal)
		}
	}()

	app := c.Manager.app
	switch msg.Type {
	case CommandCreateRoom:
		var req createRoomRequest
		if err := decode(msg.Data, &req); err != nil {
			return nil, err
		}
		res, err := app.CreateRoom(ctx, c.ID, req.Username, req.RoomSize, req.WordCount)
		if err != nil {
			return nil, err
		}
		return res, nil

	case CommandJoinRoom, CommandReconnectPlayer:
		var req joinRoomRequest
		if err := decode(msg.Data, &req); err != nil {
			return nil, err
		}
		// The game subscribes the caller itself once the join is accepted.
		var snap *game.RoomSnapshot
		if msg.Type == CommandJoinRoom {
			snap, err = app.JoinRoom(ctx, req.RoomCode, c.ID, req.Username)
		} else {
			snap, err = app.ReconnectPlayer(ctx, req.RoomCode, c.ID, req.Username)
		}
		if err != nil {
			return nil, err
		}
		return snap, nil

	case CommandSubmitWordList, CommandSubmitWords:
		var req submitWordListRequest
		if err := decode(msg.Data, &req); err != nil {
			return nil, err
		}
		return nil, app.SubmitWordList(ctx, req.RoomCode, c.ID, req.WordList)

	case CommandSubmitCategories:
		var req submitCategoriesRequest
		if err := decode(msg.Data, &req); err != nil {
			return nil, err
		}
		return nil, app.SubmitCategories(ctx, req.RoomCode, c.ID, req.Categories)

	case CommandGetCategories:
		cats, err := app.Categories(ctx)
		if err != nil {
			return nil, err
		}
		return cats, nil

	case CommandStartGame:
		var req roomRequest
		if err := decode(msg.Data, &req); err != nil {
			return nil, err
		}
		return nil, app.StartGame(ctx, req.RoomCode, c.ID)

	case CommandRestartGame:
		var req roomRequest
		if err := decode(msg.Data, &req); err != nil {
			return nil, err
		}
		return nil, app.RestartGame(ctx, req.RoomCode, c.ID)

	case CommandGuessLetter:
		var req guessLetterRequest
		if err := decode(msg.Data, &req); err != nil {
			return nil, err
		}
		return nilIfErr(app.GuessLetter(ctx, req.RoomCode, c.ID, req.Letter))

	case CommandSolveWord:
		var req solveWordRequest
		if err := decode(msg.Data, &req); err != nil {
			return nil, err
		}
		return nilIfErr(app.SolveWord(ctx, req.RoomCode, c.ID, req.Guess))

	default:
		return nil, errUnknownCommand
	}
}

// reply sends the command outcome to the caller
func (c *Connection) reply(id string, data any, err error) {
	msg := ServerMessage{Type: MessageTypeResponse, ID: id, OK: err == nil, Data: data}
	if err != nil {
		code := game.ErrorCode(err)
		message := err.Error()
		if code == game.CodeInternal && !errors.Is(err, game.ErrInternal) {
			log.Error().Err(err).Str("connection_id", c.ID).Str("request_id", id).Msg("command failed")
			message = "internal error"
		}
		msg.Error = &ErrorResult{Code: code, Message: message}
	}
	c.sendJSON(msg)
}

func decode(data json.RawMessage, v any) error {
	if len(data) == 0 {
		return errMalformedMessage
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %v", errMalformedMessage, err)
	}
	return nil
}

func nilIfErr(res *game.GuessResult, err error) (any, error) {
	if err != nil {
		return nil, err
	}
	return res, nil
}

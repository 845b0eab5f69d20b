package game

import (
	"context"
	"errors"
	"net/http"

	"connectrpc.com/connect"

	"github.com/mcdev12/hangman/go/internal/rpcjson"
)

// LobbyServiceName is the fully-qualified name of the lobby query service.
const LobbyServiceName = "hangman.v1.LobbyService"

const (
	LobbyServiceListCategoriesProcedure = "/hangman.v1.LobbyService/ListCategories"
	LobbyServiceGetRoomProcedure        = "/hangman.v1.LobbyService/GetRoom"
	LobbyServiceGetStatsProcedure       = "/hangman.v1.LobbyService/GetStats"
)

// LobbyApp defines what the service layer needs from the game application
type LobbyApp interface {
	Categories(ctx context.Context) ([]string, error)
	Snapshot(ctx context.Context, code string) (*RoomView, error)
	Stats() Stats
}

type ListCategoriesRequest struct{}

type ListCategoriesResponse struct {
	Categories []string `json:"categories"`
}

type GetRoomRequest struct {
	RoomCode string `json:"roomCode"`
}

type GetRoomResponse struct {
	Room RoomSnapshot `json:"room"`
	Game *GameState   `json:"game,omitempty"`
}

type GetStatsRequest struct{}

type GetStatsResponse struct {
	Stats Stats `json:"stats"`
}

// Service implements the LobbyService over the Connect protocol
type Service struct {
	app LobbyApp
}

// NewService creates a new lobby service
func NewService(app LobbyApp) *Service {
	return &Service{app: app}
}

// ListCategories returns the word pool categories
func (s *Service) ListCategories(ctx context.Context, req *connect.Request[ListCategoriesRequest]) (*connect.Response[ListCategoriesResponse], error) {
	cats, err := s.app.Categories(ctx)
	if err != nil {
		return nil, connect.NewError(connectCode(err), err)
	}
	return connect.NewResponse(&ListCategoriesResponse{Categories: cats}), nil
}

// GetRoom returns the public view of a room
func (s *Service) GetRoom(ctx context.Context, req *connect.Request[GetRoomRequest]) (*connect.Response[GetRoomResponse], error) {
	if req.Msg.RoomCode == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("roomCode is required"))
	}
	view, err := s.app.Snapshot(ctx, req.Msg.RoomCode)
	if err != nil {
		return nil, connect.NewError(connectCode(err), err)
	}
	return connect.NewResponse(&GetRoomResponse{Room: view.Room, Game: view.Game}), nil
}

// GetStats returns registry statistics
func (s *Service) GetStats(ctx context.Context, req *connect.Request[GetStatsRequest]) (*connect.Response[GetStatsResponse], error) {
	return connect.NewResponse(&GetStatsResponse{Stats: s.app.Stats()}), nil
}

// NewLobbyServiceHandler builds an HTTP handler serving every LobbyService procedure.
// It returns the path on which to mount the handler and the handler itself.
func NewLobbyServiceHandler(svc *Service, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(rpcjson.Codec{})}, opts...)

	listCategories := connect.NewUnaryHandler(LobbyServiceListCategoriesProcedure, svc.ListCategories, opts...)
	getRoom := connect.NewUnaryHandler(LobbyServiceGetRoomProcedure, svc.GetRoom, opts...)
	getStats := connect.NewUnaryHandler(LobbyServiceGetStatsProcedure, svc.GetStats, opts...)

	return "/" + LobbyServiceName + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case LobbyServiceListCategoriesProcedure:
			listCategories.ServeHTTP(w, r)
		case LobbyServiceGetRoomProcedure:
			getRoom.ServeHTTP(w, r)
		case LobbyServiceGetStatsProcedure:
			getStats.ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}

func connectCode(err error) connect.Code {
	switch {
	case errors.Is(err, ErrNotFound):
		return connect.CodeNotFound
	case errors.Is(err, ErrUnauthorized):
		return connect.CodePermissionDenied
	case errors.Is(err, ErrFull), errors.Is(err, ErrInsufficientWords):
		return connect.CodeResourceExhausted
	case errors.Is(err, ErrInvalidState), errors.Is(err, ErrNotYourTurn), errors.Is(err, ErrAlreadyGuessed):
		return connect.CodeFailedPrecondition
	case errors.Is(err, ErrInvalidArgument):
		return connect.CodeInvalidArgument
	case errors.Is(err, context.Canceled):
		return connect.CodeCanceled
	case errors.Is(err, context.DeadlineExceeded):
		return connect.CodeDeadlineExceeded
	default:
		return connect.CodeInternal
	}
}

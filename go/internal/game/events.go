package game

import (
	"encoding/json"
	"time"
)

// EventType is the type of a room broadcast.
type EventType string

const (
	EventRoomUpdate  EventType = "roomUpdate"
	EventGameUpdate  EventType = "gameUpdate"
	EventScoreUpdate EventType = "scoreUpdate"
	EventTimerUpdate EventType = "timerUpdate"
	EventGameOver    EventType = "gameOver"
	EventRoomClosed  EventType = "roomClosed"
)

// Event is the envelope for every broadcast sent to room members.
type Event struct {
	ID        string          `json:"id"`
	RoomCode  string          `json:"roomCode"`
	Type      EventType       `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// Broadcaster delivers events to every connection subscribed to a room.
// Implementations must preserve call order per room and must not call back into App.
type Broadcaster interface {
	BroadcastToRoom(roomCode string, event *Event)
}

// MultiBroadcaster fans every event out to several broadcasters in order.
type MultiBroadcaster []Broadcaster

func (m MultiBroadcaster) BroadcastToRoom(roomCode string, event *Event) {
	for _, b := range m {
		b.BroadcastToRoom(roomCode, event)
	}
}

type nopBroadcaster struct{}

func (nopBroadcaster) BroadcastToRoom(string, *Event) {}

// Membership tracks which connections receive a room's events. App calls it
// under the room lock, after a join is accepted and before the events that
// join triggers, so a member never misses an event and a rejected caller is
// never added. Implementations must not call back into App.
type Membership interface {
	Join(roomCode, connID string)
	Leave(roomCode, connID string)
}

type nopMembership struct{}

func (nopMembership) Join(string, string)  {}
func (nopMembership) Leave(string, string) {}

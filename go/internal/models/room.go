package models

import "time"

// RoomState defines the lifecycle state of a room.
type RoomState string

const (
	RoomStateLobby    RoomState = "lobby"
	RoomStatePlaying  RoomState = "playing"
	RoomStateFinished RoomState = "finished"
)

// RoomSettings holds the moderator's configuration for a room.
type RoomSettings struct {
	Capacity  int `json:"roomSize"`
	WordCount int `json:"wordCount"`
}

// Moderator is the connection that created the room.
type Moderator struct {
	ConnID   string `json:"id"`
	Username string `json:"username"`
}

// Player is a member of a room's roster. Roster order is join order and turn order.
type Player struct {
	ConnID    string `json:"id"`
	Username  string `json:"username"`
	Score     int    `json:"score"`
	Connected bool   `json:"connected"`
}

// WordEntry is one word in a room's word list.
type WordEntry struct {
	Word     string `json:"word"`
	Category string `json:"category"`
	Hint     string `json:"hint,omitempty"`
}

// Room represents an isolated game session.
type Room struct {
	Code               string       `json:"roomCode"`
	Moderator          Moderator    `json:"moderator"`
	Players            []*Player    `json:"players"`
	Settings           RoomSettings `json:"settings"`
	State              RoomState    `json:"state"`
	WordList           []WordEntry  `json:"-"`
	SelectedCategories []string     `json:"selectedCategories,omitempty"`
	Game               *Game        `json:"-"`
	CreatedAt          time.Time    `json:"createdAt"`
}

// PlayerByConn returns the index of the player bound to connID, or -1.
func (r *Room) PlayerByConn(connID string) int {
	for i, p := range r.Players {
		if p.ConnID == connID {
			return i
		}
	}
	return -1
}

// ConnectedPlayers counts players with a live connection.
func (r *Room) ConnectedPlayers() int {
	n := 0
	for _, p := range r.Players {
		if p.Connected {
			n++
		}
	}
	return n
}

// IsModerator reports whether connID is the room's moderator.
func (r *Room) IsModerator(connID string) bool {
	return r.Moderator.ConnID == connID
}

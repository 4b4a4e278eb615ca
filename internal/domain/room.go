package domain

import "errors"

type Status string

const (
	StatusWaiting Status = "waiting"
	StatusActive  Status = "active"
	StatusClosed  Status = "closed"
)

const DefaultGameMode = "classic"

var (
	ErrLobbyNotFound = errors.New("lobby not found")
	ErrLobbyFull     = errors.New("lobby is full")
	ErrLobbyClosed   = errors.New("lobby is closed")
)

// Room is a capacity-bounded group of players sharing a session.
// Code and Owner are immutable after creation.
type Room struct {
	Code     string   `json:"code"`
	Owner    UserID   `json:"owner"`
	Players  []UserID `json:"players"`
	GameMode string   `json:"gameMode"`
	Status   Status   `json:"status"`
}

func NewRoom(code string, owner UserID) *Room {
	return &Room{
		Code:     code,
		Owner:    owner,
		Players:  []UserID{owner},
		GameMode: DefaultGameMode,
		Status:   StatusWaiting,
	}
}

func (r *Room) HasPlayer(uid UserID) bool {
	for _, p := range r.Players {
		if p == uid {
			return true
		}
	}
	return false
}

// Clone returns a snapshot safe to hand outside the registry lock.
func (r *Room) Clone() *Room {
	c := *r
	c.Players = append([]UserID(nil), r.Players...)
	return &c
}

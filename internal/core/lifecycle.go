package core

import (
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/playgrid/lobby/internal/domain"
)

// DisconnectPolicy decides what a disconnect does to the rest of the room.
type DisconnectPolicy string

const (
	// CloseOnEmpty removes only the departing player; the room dies when
	// the last player leaves. Default.
	CloseOnEmpty DisconnectPolicy = "closeOnEmpty"
	// CloseOnAnyDisconnect tears the whole room down on the first
	// disconnect, regardless of who remains.
	CloseOnAnyDisconnect DisconnectPolicy = "closeOnAnyDisconnect"
)

func ParseDisconnectPolicy(s string) (DisconnectPolicy, error) {
	switch DisconnectPolicy(s) {
	case CloseOnEmpty, CloseOnAnyDisconnect:
		return DisconnectPolicy(s), nil
	case "":
		return CloseOnEmpty, nil
	}
	return "", errors.New("unknown disconnect policy: " + s)
}

// Coordinator reacts to membership events: it mutates the registry and
// fans the result out through the hub. Broadcasts always happen after
// the registry mutation completed, never under its lock.
type Coordinator struct {
	Registry *Registry
	Hub      *Hub
	Policy   DisconnectPolicy
}

func NewCoordinator(reg *Registry, hub *Hub, policy DisconnectPolicy) *Coordinator {
	if policy == "" {
		policy = CloseOnEmpty
	}
	return &Coordinator{Registry: reg, Hub: hub, Policy: policy}
}

func (c *Coordinator) CreateLobby(owner domain.UserID) (*domain.Room, error) {
	return c.Registry.Create(owner)
}

func (c *Coordinator) JoinLobby(code string, uid domain.UserID) (*domain.Room, error) {
	room, err := c.Registry.Join(code, uid)
	if err != nil {
		return nil, err
	}
	c.Hub.Broadcast(code, Event{Event: EventPresenceUpdated, Lobby: room})
	return room, nil
}

func (c *Coordinator) GetLobby(code string) (*domain.Room, error) {
	return c.Registry.Get(code)
}

func (c *Coordinator) ListLobbies() []*domain.Room {
	return c.Registry.List()
}

// Announce pushes the current room state to everyone bound to it. Used
// when a presence channel binds, so existing members see the arrival.
func (c *Coordinator) Announce(code string) {
	room, err := c.Registry.Get(code)
	if err != nil {
		return
	}
	c.Hub.Broadcast(code, Event{Event: EventPresenceUpdated, Lobby: room})
}

// Disconnect handles a presence channel going away. A code that is
// already gone is a no-op: the room was closed while the channel was
// still draining.
func (c *Coordinator) Disconnect(code string, uid domain.UserID) {
	switch c.Policy {
	case CloseOnAnyDisconnect:
		c.closeLobby(code, uid)
	default:
		c.drainPlayer(code, uid)
	}
}

func (c *Coordinator) drainPlayer(code string, uid domain.UserID) {
	room, emptied, err := c.Registry.Leave(code, uid)
	if err != nil {
		return
	}
	if emptied {
		c.Hub.Broadcast(code, Event{Event: EventRoomClosed, Lobby: room})
		c.Hub.DropRoom(code)
		log.Info().Str("module", "core.lifecycle").Str("code", code).Msg("lobby closed on empty")
		return
	}
	c.Hub.Broadcast(code, Event{
		Event:   EventPresenceUpdated,
		Lobby:   room,
		Message: string(uid) + " left the lobby",
	})
}

func (c *Coordinator) closeLobby(code string, uid domain.UserID) {
	room, ok := c.Registry.Remove(code)
	if !ok {
		return
	}
	c.Hub.Broadcast(code, Event{Event: EventRoomClosed, Lobby: room})
	c.Hub.DropRoom(code)
	log.Info().Str("module", "core.lifecycle").Str("code", code).Str("uid", string(uid)).Msg("lobby closed on disconnect")
}

package core

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/playgrid/lobby/internal/domain"
)

const DefaultMaxPlayers = 2

// codeSource lets tests script code generation.
type codeSource interface {
	Generate() string
}

// Registry is the exclusive owner of all rooms. Every mutation happens
// under its lock; callers only ever see snapshots.
type Registry struct {
	mu         sync.RWMutex
	rooms      map[string]*domain.Room
	codes      codeSource
	maxPlayers int
}

func NewRegistry(codes codeSource, maxPlayers int) *Registry {
	if maxPlayers <= 0 {
		maxPlayers = DefaultMaxPlayers
	}
	return &Registry{
		rooms:      make(map[string]*domain.Room),
		codes:      codes,
		maxPlayers: maxPlayers,
	}
}

// Create builds a room owned by uid under a fresh non-colliding code.
func (r *Registry) Create(owner domain.UserID) (*domain.Room, error) {
	if err := domain.ValidateUserID(owner); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	code := r.codes.Generate()
	for {
		if _, taken := r.rooms[code]; !taken {
			break
		}
		code = r.codes.Generate()
	}

	room := domain.NewRoom(code, owner)
	r.rooms[code] = room
	log.Info().Str("module", "core.registry").Str("code", code).Str("owner", string(owner)).Msg("lobby created")
	return room.Clone(), nil
}

func (r *Registry) Get(code string) (*domain.Room, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	room, ok := r.rooms[code]
	if !ok {
		return nil, domain.ErrLobbyNotFound
	}
	return room.Clone(), nil
}

// Join appends uid to the room. Re-join by a current member is a no-op
// success and bypasses the status and capacity checks.
func (r *Registry) Join(code string, uid domain.UserID) (*domain.Room, error) {
	if err := domain.ValidateUserID(uid); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[code]
	if !ok {
		return nil, domain.ErrLobbyNotFound
	}
	if room.HasPlayer(uid) {
		return room.Clone(), nil
	}
	// Capacity first: a room at capacity reports full, not closed, even
	// though filling up also advanced its status.
	if len(room.Players) >= r.maxPlayers {
		return nil, domain.ErrLobbyFull
	}
	if room.Status != domain.StatusWaiting {
		return nil, domain.ErrLobbyClosed
	}

	room.Players = append(room.Players, uid)
	if len(room.Players) >= r.maxPlayers {
		room.Status = domain.StatusActive
	}
	log.Info().Str("module", "core.registry").Str("code", code).Str("uid", string(uid)).Str("status", string(room.Status)).Msg("player joined")
	return room.Clone(), nil
}

// Leave removes uid from the room and reports whether it emptied.
// Removing the last player marks the room closed and drops it.
func (r *Registry) Leave(code string, uid domain.UserID) (*domain.Room, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[code]
	if !ok {
		return nil, false, domain.ErrLobbyNotFound
	}

	kept := room.Players[:0]
	for _, p := range room.Players {
		if p != uid {
			kept = append(kept, p)
		}
	}
	room.Players = kept

	if len(room.Players) == 0 {
		room.Status = domain.StatusClosed
		delete(r.rooms, code)
		log.Info().Str("module", "core.registry").Str("code", code).Msg("lobby emptied and closed")
		return room.Clone(), true, nil
	}
	log.Info().Str("module", "core.registry").Str("code", code).Str("uid", string(uid)).Msg("player left")
	return room.Clone(), false, nil
}

// Remove deletes the room outright, marking the final snapshot closed.
func (r *Registry) Remove(code string) (*domain.Room, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	room, ok := r.rooms[code]
	if !ok {
		return nil, false
	}
	room.Status = domain.StatusClosed
	delete(r.rooms, code)
	log.Info().Str("module", "core.registry").Str("code", code).Msg("lobby removed")
	return room.Clone(), true
}

func (r *Registry) List() []*domain.Room {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domain.Room, 0, len(r.rooms))
	for _, room := range r.rooms {
		out = append(out, room.Clone())
	}
	return out
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}

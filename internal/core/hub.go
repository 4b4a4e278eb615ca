package core

import (
	"encoding/json"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/playgrid/lobby/internal/domain"
)

type ChannelID string

// Sender is a transport endpoint a room event can be pushed to.
// Owned by the adapter; the adapter must Close() it.
type Sender interface {
	TrySend(data []byte) error
}

// Event is the outbound wire shape for room notifications.
type Event struct {
	Event   string       `json:"event"`
	Lobby   *domain.Room `json:"lobby,omitempty"`
	Message string       `json:"message,omitempty"`
}

const (
	EventPresenceUpdated = "presenceUpdated"
	EventRoomClosed      = "roomClosed"
	EventPong            = "pong"
	EventError           = "error"
)

// PublishResult reports delivery stats per broadcast.
type PublishResult struct {
	SentTo  int
	Dropped int
}

// Hub indexes bound presence channels by lobby code so a broadcast never
// scans unrelated connections. TrySend is non-blocking, so holding the
// read lock across the fan-out is safe.
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]map[ChannelID]Sender
}

func NewHub() *Hub {
	return &Hub{rooms: make(map[string]map[ChannelID]Sender)}
}

func (h *Hub) Attach(code string, id ChannelID, s Sender) {
	h.mu.Lock()
	defer h.mu.Unlock()
	channels, ok := h.rooms[code]
	if !ok {
		channels = make(map[ChannelID]Sender)
		h.rooms[code] = channels
	}
	channels[id] = s
	log.Info().Str("module", "core.hub").Str("code", code).Str("channel", string(id)).Msg("channel attached")
}

func (h *Hub) Detach(code string, id ChannelID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	channels, ok := h.rooms[code]
	if !ok {
		return
	}
	delete(channels, id)
	if len(channels) == 0 {
		delete(h.rooms, code)
	}
	log.Info().Str("module", "core.hub").Str("code", code).Str("channel", string(id)).Msg("channel detached")
}

// DropRoom removes every channel index entry for a code. The channels
// themselves stay open; only their room association in the hub goes.
func (h *Hub) DropRoom(code string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.rooms, code)
}

func (h *Hub) RoomSize(code string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[code])
}

// Broadcast delivers ev to every channel bound to code. Best-effort per
// channel: a failed send is skipped, never escalated to the caller.
func (h *Hub) Broadcast(code string, ev Event) PublishResult {
	data, err := json.Marshal(ev)
	if err != nil {
		log.Error().Err(err).Str("module", "core.hub").Msg("marshal event")
		return PublishResult{}
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	res := PublishResult{}
	for id, s := range h.rooms[code] {
		if err := s.TrySend(data); err != nil {
			res.Dropped++
			log.Debug().Str("module", "core.hub").Str("code", code).Str("channel", string(id)).Msg("send skipped")
			continue
		}
		res.SentTo++
	}
	log.Debug().Str("module", "core.hub").Str("code", code).Str("event", ev.Event).Int("sent_to", res.SentTo).Int("dropped", res.Dropped).Msg("broadcast result")
	return res
}

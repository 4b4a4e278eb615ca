package core

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/playgrid/lobby/internal/domain"
)

// recordingSender collects everything delivered to it, in order.
type recordingSender struct {
	frames [][]byte
	fail   bool
}

func (s *recordingSender) TrySend(data []byte) error {
	if s.fail {
		return errors.New("send failed")
	}
	s.frames = append(s.frames, data)
	return nil
}

func (s *recordingSender) events(t *testing.T) []Event {
	t.Helper()
	out := make([]Event, 0, len(s.frames))
	for _, f := range s.frames {
		var ev Event
		if err := json.Unmarshal(f, &ev); err != nil {
			t.Fatalf("bad event payload %s: %v", f, err)
		}
		out = append(out, ev)
	}
	return out
}

func TestBroadcastReachesBoundChannels(t *testing.T) {
	hub := NewHub()
	a := &recordingSender{}
	b := &recordingSender{}
	other := &recordingSender{}
	hub.Attach("AB12", "ch-a", a)
	hub.Attach("AB12", "ch-b", b)
	hub.Attach("ZZ99", "ch-z", other)

	room := &domain.Room{Code: "AB12", Status: domain.StatusWaiting}
	res := hub.Broadcast("AB12", Event{Event: EventPresenceUpdated, Lobby: room})
	if res.SentTo != 2 || res.Dropped != 0 {
		t.Fatalf("expected 2 sent 0 dropped, got %+v", res)
	}
	if len(other.frames) != 0 {
		t.Fatalf("channel in another room received %d frames", len(other.frames))
	}

	evs := a.events(t)
	if len(evs) != 1 || evs[0].Event != EventPresenceUpdated || evs[0].Lobby.Code != "AB12" {
		t.Fatalf("unexpected events %+v", evs)
	}
}

func TestBroadcastSkipsFailedSends(t *testing.T) {
	hub := NewHub()
	slow := &recordingSender{fail: true}
	ok := &recordingSender{}
	hub.Attach("AB12", "ch-slow", slow)
	hub.Attach("AB12", "ch-ok", ok)

	res := hub.Broadcast("AB12", Event{Event: EventRoomClosed})
	if res.SentTo != 1 || res.Dropped != 1 {
		t.Fatalf("expected 1 sent 1 dropped, got %+v", res)
	}
	if len(ok.frames) != 1 {
		t.Fatalf("healthy channel should still receive, got %d frames", len(ok.frames))
	}
}

func TestBroadcastFIFOPerChannel(t *testing.T) {
	hub := NewHub()
	s := &recordingSender{}
	hub.Attach("AB12", "ch", s)

	for _, msg := range []string{"one", "two", "three"} {
		hub.Broadcast("AB12", Event{Event: EventPresenceUpdated, Message: msg})
	}

	evs := s.events(t)
	if len(evs) != 3 {
		t.Fatalf("expected 3 events, got %d", len(evs))
	}
	for i, want := range []string{"one", "two", "three"} {
		if evs[i].Message != want {
			t.Fatalf("event %d out of order: got %q want %q", i, evs[i].Message, want)
		}
	}
}

func TestDetachStopsDelivery(t *testing.T) {
	hub := NewHub()
	s := &recordingSender{}
	hub.Attach("AB12", "ch", s)
	hub.Detach("AB12", "ch")

	res := hub.Broadcast("AB12", Event{Event: EventPresenceUpdated})
	if res.SentTo != 0 {
		t.Fatalf("detached channel still reached: %+v", res)
	}
	if hub.RoomSize("AB12") != 0 {
		t.Fatalf("expected empty index entry to be dropped")
	}
}

func TestDropRoom(t *testing.T) {
	hub := NewHub()
	hub.Attach("AB12", "ch-a", &recordingSender{})
	hub.Attach("AB12", "ch-b", &recordingSender{})
	hub.DropRoom("AB12")
	if hub.RoomSize("AB12") != 0 {
		t.Fatal("expected no channels after DropRoom")
	}
}

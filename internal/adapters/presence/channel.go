package presence

import (
	"errors"
	"sync"
	"time"

	"github.com/playgrid/lobby/internal/core"
	"github.com/playgrid/lobby/internal/domain"
)

var ErrBackpressure = errors.New("backpressure")
var errClosed = errors.New("connection closed")

// WSConn is an indirection over *websocket.Conn to ease testing.
type WSConn interface {
	ReadMessage() (int, []byte, error)
	WriteMessage(mt int, data []byte) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

type binding struct {
	code string
	uid  domain.UserID
}

// Channel is one presence connection. It starts unbound; a handshake
// binds it to a (lobby, uid) pair exactly once, never reassigned.
type Channel struct {
	id   core.ChannelID
	conn WSConn
	send chan []byte

	mu     sync.RWMutex
	closed bool
	bound  *binding

	disconnectOnce sync.Once
}

func newChannel(id core.ChannelID, conn WSConn, sendBuffer int) *Channel {
	if sendBuffer <= 0 {
		sendBuffer = 32
	}
	return &Channel{
		id:   id,
		conn: conn,
		send: make(chan []byte, sendBuffer),
	}
}

func (ch *Channel) ID() core.ChannelID { return ch.id }

// TrySend queues data for the write pump without blocking. Implements
// core.Sender.
func (ch *Channel) TrySend(data []byte) error {
	ch.mu.RLock()
	defer ch.mu.RUnlock()
	if ch.closed {
		return errClosed
	}
	select {
	case ch.send <- data:
	default:
		return ErrBackpressure
	}
	return nil
}

func (ch *Channel) Close() {
	ch.mu.Lock()
	if ch.closed {
		ch.mu.Unlock()
		return
	}
	ch.closed = true
	close(ch.send)
	_ = ch.conn.Close()
	ch.mu.Unlock()
}

// Bind associates the channel with a lobby. Only the unset→set
// transition succeeds.
func (ch *Channel) Bind(code string, uid domain.UserID) bool {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	if ch.bound != nil {
		return false
	}
	ch.bound = &binding{code: code, uid: uid}
	return true
}

func (ch *Channel) Binding() (code string, uid domain.UserID, ok bool) {
	ch.mu.RLock()
	defer ch.mu.RUnlock()
	if ch.bound == nil {
		return "", "", false
	}
	return ch.bound.code, ch.bound.uid, true
}

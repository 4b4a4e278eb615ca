package presence

import (
	"errors"
	"testing"
	"time"
)

// fakeConn satisfies WSConn without a network.
type fakeConn struct {
	closed bool
	writes [][]byte
}

func (f *fakeConn) ReadMessage() (int, []byte, error)      { return 0, nil, errors.New("eof") }
func (f *fakeConn) WriteMessage(mt int, data []byte) error { f.writes = append(f.writes, data); return nil }
func (f *fakeConn) SetWriteDeadline(t time.Time) error     { return nil }
func (f *fakeConn) Close() error                           { f.closed = true; return nil }

func TestTrySendBackpressure(t *testing.T) {
	ch := newChannel("ch", &fakeConn{}, 1)

	if err := ch.TrySend([]byte("one")); err != nil {
		t.Fatalf("TrySend returned error: %v", err)
	}
	if err := ch.TrySend([]byte("two")); !errors.Is(err, ErrBackpressure) {
		t.Fatalf("expected ErrBackpressure, got %v", err)
	}
}

func TestTrySendAfterClose(t *testing.T) {
	conn := &fakeConn{}
	ch := newChannel("ch", conn, 4)
	ch.Close()

	if !conn.closed {
		t.Fatal("expected underlying conn closed")
	}
	if err := ch.TrySend([]byte("x")); err == nil {
		t.Fatal("expected error sending on closed channel")
	}
	// Close is idempotent.
	ch.Close()
}

func TestBindOnce(t *testing.T) {
	ch := newChannel("ch", &fakeConn{}, 4)

	if _, _, ok := ch.Binding(); ok {
		t.Fatal("fresh channel must be unbound")
	}
	if !ch.Bind("AB12", "u1") {
		t.Fatal("first bind must succeed")
	}
	if ch.Bind("ZZ99", "u2") {
		t.Fatal("second bind must fail")
	}

	code, uid, ok := ch.Binding()
	if !ok || code != "AB12" || uid != "u1" {
		t.Fatalf("binding corrupted: %s %s %v", code, uid, ok)
	}
}

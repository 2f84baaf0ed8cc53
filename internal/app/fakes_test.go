package app

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/dkeye/Convo/internal/core"
	"github.com/dkeye/Convo/internal/domain"
)

var errQueueFull = errors.New("queue full")

type fakeConn struct {
	id domain.ConnectionID

	mu     sync.Mutex
	frames []core.Frame
	full   bool
	closed bool
}

func newFakeConn(id string) *fakeConn {
	return &fakeConn{id: domain.ConnectionID(id)}
}

func (c *fakeConn) ID() domain.ConnectionID { return c.id }

func (c *fakeConn) TrySend(f core.Frame) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.full || c.closed {
		return errQueueFull
	}
	c.frames = append(c.frames, f)
	return nil
}

func (c *fakeConn) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
}

func (c *fakeConn) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

type received struct {
	Event string                     `json:"event"`
	Data  map[string]json.RawMessage `json:"data"`
}

// drain returns and forgets every frame queued so far.
func (c *fakeConn) drain(t *testing.T) []received {
	t.Helper()
	c.mu.Lock()
	frames := c.frames
	c.frames = nil
	c.mu.Unlock()

	out := make([]received, 0, len(frames))
	for _, f := range frames {
		var r received
		if err := json.Unmarshal(f, &r); err != nil {
			t.Fatalf("Failed to decode frame %q: %v", f, err)
		}
		out = append(out, r)
	}
	return out
}

func (r received) str(t *testing.T, key string) string {
	t.Helper()
	var s string
	if err := json.Unmarshal(r.Data[key], &s); err != nil {
		t.Fatalf("field %q of %s is not a string: %s", key, r.Event, r.Data[key])
	}
	return s
}

type fakeDirectory struct {
	rooms map[domain.RoomID]bool
	err   error
}

func (d *fakeDirectory) FindActiveRoom(_ context.Context, id domain.RoomID) (*domain.Room, error) {
	if d.err != nil {
		return nil, d.err
	}
	if !d.rooms[id] {
		return nil, core.ErrRoomNotFound
	}
	return &domain.Room{RoomID: id, Active: true}, nil
}

func rooms(ids ...string) *fakeDirectory {
	d := &fakeDirectory{rooms: make(map[domain.RoomID]bool)}
	for _, id := range ids {
		d.rooms[domain.RoomID(id)] = true
	}
	return d
}

func inbound(t *testing.T, raw string) core.Inbound {
	t.Helper()
	in, err := core.DecodeInbound([]byte(raw))
	if err != nil {
		t.Fatalf("Failed to decode %s: %v", raw, err)
	}
	return in
}

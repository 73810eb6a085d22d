package relay

import (
	"encoding/json"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/mossy-p/camrelay/internal/events"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(ev events.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
}

func (p *recordingPublisher) kinds() []events.Kind {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]events.Kind, 0, len(p.events))
	for _, ev := range p.events {
		out = append(out, ev.Kind)
	}
	return out
}

func newTestHub() (*Hub, *recordingPublisher) {
	pub := &recordingPublisher{}
	return NewHub(Options{Logger: quietLogger(), Events: pub}), pub
}

func connect(h *Hub, id string) *Conn {
	c := NewConn(id, "127.0.0.1:0", 16)
	h.Connect(c)
	return c
}

func registerAs(t *testing.T, h *Hub, c *Conn, role string) {
	t.Helper()
	h.Route(c, []byte(`{"type":"register","role":"`+role+`"}`))
}

// pending returns every frame queued on c without blocking.
func pending(c *Conn) [][]byte {
	var out [][]byte
	for {
		select {
		case data, ok := <-c.Outbound():
			if !ok {
				return out
			}
			out = append(out, data)
		default:
			return out
		}
	}
}

func decode(t *testing.T, data []byte) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("Failed to decode %q: %v", data, err)
	}
	return m
}

// expectOne asserts exactly one frame is pending on c and returns it decoded.
func expectOne(t *testing.T, c *Conn) map[string]any {
	t.Helper()
	frames := pending(c)
	if len(frames) != 1 {
		t.Fatalf("Expected 1 frame on %s, got %d: %q", c.ID, len(frames), frames)
	}
	return decode(t, frames[0])
}

func expectNone(t *testing.T, c *Conn) {
	t.Helper()
	if frames := pending(c); len(frames) != 0 {
		t.Fatalf("Expected no frames on %s, got %q", c.ID, frames)
	}
}

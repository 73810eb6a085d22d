package relay

import (
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultQueueSize is the outbound buffer used when NewConn is given zero.
const DefaultQueueSize = 256

// Role is the part a connection plays in the relay.
type Role int

const (
	RoleUnregistered Role = iota
	RoleCamera
	RoleViewer
)

func (r Role) String() string {
	switch r {
	case RoleCamera:
		return "camera"
	case RoleViewer:
		return "viewer"
	default:
		return "unregistered"
	}
}

// Conn is the relay's handle for one duplex peer channel. The transport owns
// the socket and drains Outbound and Pings; the hub only ever enqueues.
type Conn struct {
	ID          string
	RemoteAddr  string
	ConnectedAt time.Time

	mu     sync.RWMutex
	role   Role
	closed bool

	send     chan []byte
	ping     chan struct{}
	lastSeen atomic.Int64
}

// NewConn creates an open, unregistered connection handle.
func NewConn(id, remoteAddr string, queueSize int) *Conn {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	now := time.Now()
	c := &Conn{
		ID:          id,
		RemoteAddr:  remoteAddr,
		ConnectedAt: now,
		send:        make(chan []byte, queueSize),
		ping:        make(chan struct{}, 1),
	}
	c.lastSeen.Store(now.UnixNano())
	return c
}

// Role returns the role assigned by registration.
func (c *Conn) Role() Role {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.role
}

// assignRole sets the role once. It reports false if the connection is
// closed or already registered.
func (c *Conn) assignRole(r Role) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.role != RoleUnregistered {
		return false
	}
	c.role = r
	return true
}

// IsOpen reports whether Close has not been called yet.
func (c *Conn) IsOpen() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return !c.closed
}

// Send enqueues a frame without blocking.
func (c *Conn) Send(data []byte) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return ErrConnClosed
	}
	select {
	case c.send <- data:
		return nil
	default:
		return ErrQueueFull
	}
}

// SendJSON marshals v and enqueues it.
func (c *Conn) SendJSON(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %T: %w", v, err)
	}
	return c.Send(data)
}

// Ping asks the transport to send a liveness ping. Requests coalesce: if one
// is already pending the call is a no-op.
func (c *Conn) Ping() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return false
	}
	select {
	case c.ping <- struct{}{}:
	default:
	}
	return true
}

// Close marks the connection closed and ends the outbound stream. Frames
// queued before Close are still delivered by the transport. It reports
// whether this call performed the close.
func (c *Conn) Close() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	c.closed = true
	close(c.send)
	return true
}

// Outbound is closed after the last queued frame once Close is called.
func (c *Conn) Outbound() <-chan []byte {
	return c.send
}

func (c *Conn) Pings() <-chan struct{} {
	return c.ping
}

// Touch records inbound activity from the peer.
func (c *Conn) Touch(t time.Time) {
	c.lastSeen.Store(t.UnixNano())
}

func (c *Conn) LastSeen() time.Time {
	return time.Unix(0, c.lastSeen.Load())
}

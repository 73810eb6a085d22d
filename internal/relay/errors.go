package relay

import "errors"

var (
	// ErrConnClosed is returned when sending to a connection that was closed.
	ErrConnClosed = errors.New("relay: connection closed")

	// ErrQueueFull is returned when a connection's outbound queue has no room.
	ErrQueueFull = errors.New("relay: outbound queue full")
)

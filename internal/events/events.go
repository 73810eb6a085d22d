// Package events carries relay lifecycle events to an external sink without
// ever blocking the relay itself.
package events

import (
	"context"
	"log/slog"
	"time"
)

// Kind names a lifecycle transition.
type Kind string

const (
	CameraRegistered Kind = "camera_registered"
	CameraReplaced   Kind = "camera_replaced"
	CameraLeft       Kind = "camera_left"
	ViewerJoined     Kind = "viewer_joined"
	ViewerLeft       Kind = "viewer_left"
)

// Event is one lifecycle transition of one connection.
type Event struct {
	Kind   Kind      `json:"kind"`
	ConnID string    `json:"connId"`
	At     time.Time `json:"at"`
}

// Sink receives events from the bus worker.
type Sink interface {
	Handle(ctx context.Context, ev Event) error
}

const handleTimeout = 2 * time.Second

// Bus is a bounded queue between the relay and a Sink.
type Bus struct {
	queue  chan Event
	sink   Sink
	logger *slog.Logger
}

func NewBus(sink Sink, size int, logger *slog.Logger) *Bus {
	if size <= 0 {
		size = 1024
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Bus{
		queue:  make(chan Event, size),
		sink:   sink,
		logger: logger,
	}
}

// Publish enqueues ev, dropping it when the queue is full.
func (b *Bus) Publish(ev Event) {
	if ev.At.IsZero() {
		ev.At = time.Now()
	}
	select {
	case b.queue <- ev:
	default:
		b.logger.Warn("event queue full, dropping event", "kind", ev.Kind, "conn", ev.ConnID)
	}
}

// Run drains the queue into the sink until ctx is cancelled.
func (b *Bus) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-b.queue:
			hctx, cancel := context.WithTimeout(ctx, handleTimeout)
			if err := b.sink.Handle(hctx, ev); err != nil {
				b.logger.Warn("event sink failed", "kind", ev.Kind, "conn", ev.ConnID, "err", err)
			}
			cancel()
		}
	}
}

package relay

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/mossy-p/camrelay/internal/events"
	"github.com/mossy-p/camrelay/internal/models"
)

// Publisher receives lifecycle events. events.Bus satisfies it.
type Publisher interface {
	Publish(ev events.Event)
}

type Options struct {
	Logger *slog.Logger
	Events Publisher
}

// Hub owns the registry and runs the connection lifecycle. Lifecycle units
// (register, disconnect) are serialized on mu; message routing only takes
// registry snapshots.
type Hub struct {
	registry *Registry
	mu       sync.Mutex
	logger   *slog.Logger
	events   Publisher
}

func NewHub(opts Options) *Hub {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		registry: NewRegistry(),
		logger:   logger,
		events:   opts.Events,
	}
}

func (h *Hub) Registry() *Registry {
	return h.registry
}

// Connect attaches a freshly opened, unregistered connection.
func (h *Hub) Connect(c *Conn) {
	h.registry.Attach(c)
	h.logger.Debug("connection opened", "conn", c.ID, "remote", c.RemoteAddr)
}

// Disconnect closes c and removes it from the registry. When c was the
// camera every remaining viewer is told the camera is gone. Calling it more
// than once is harmless.
func (h *Hub) Disconnect(c *Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	c.Close()
	switch h.registry.Remove(c) {
	case RoleCamera:
		n := h.broadcast(h.registry.Viewers(), models.NewCameraStatus(false))
		h.publish(events.CameraLeft, c)
		h.logger.Info("camera disconnected", "conn", c.ID, "notified_viewers", n)
	case RoleViewer:
		h.publish(events.ViewerLeft, c)
		h.logger.Info("viewer disconnected", "conn", c.ID)
	default:
		h.logger.Debug("connection closed", "conn", c.ID)
	}
}

// DisconnectCamera evicts the current camera, if any.
func (h *Hub) DisconnectCamera() bool {
	cam := h.registry.Camera()
	if cam == nil {
		return false
	}
	h.Disconnect(cam)
	return true
}

func (h *Hub) register(c *Conn, role string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if current := c.Role(); current != RoleUnregistered {
		h.logger.Warn("ignoring repeated register", "conn", c.ID, "role", current, "requested", role)
		return
	}

	switch role {
	case models.RoleCamera:
		h.registerCamera(c)
	case models.RoleViewer:
		h.registerViewer(c)
	default:
		h.logger.Debug("ignoring register with unknown role", "conn", c.ID, "role", role)
	}
}

func (h *Hub) registerCamera(c *Conn) {
	if !c.assignRole(RoleCamera) {
		return
	}

	if prev := h.registry.SetCamera(c); prev != nil {
		h.deliver(prev, models.NewCameraReplaced())
		prev.Close()
		h.publish(events.CameraReplaced, prev)
		h.logger.Info("camera replaced", "old", prev.ID, "new", c.ID)
	}

	h.deliver(c, models.NewCameraRegistered())
	n := h.broadcast(h.registry.Viewers(), models.NewCameraStatus(true))
	h.publish(events.CameraRegistered, c)
	h.logger.Info("camera registered", "conn", c.ID, "notified_viewers", n)
}

func (h *Hub) registerViewer(c *Conn) {
	if !c.assignRole(RoleViewer) {
		return
	}

	h.registry.AddViewer(c)
	h.deliver(c, models.NewCameraStatus(h.registry.CameraAvailable()))
	h.publish(events.ViewerJoined, c)
	h.logger.Info("viewer registered", "conn", c.ID)
}

// deliver sends v to one connection, swallowing delivery failures.
func (h *Hub) deliver(c *Conn, v any) {
	if err := c.SendJSON(v); err != nil {
		h.logger.Debug("dropped message", "conn", c.ID, "err", err)
	}
}

// broadcast marshals v once and sends it to every target. It returns how many
// targets accepted the frame.
func (h *Hub) broadcast(targets []*Conn, v any) int {
	data, err := json.Marshal(v)
	if err != nil {
		h.logger.Error("failed to marshal broadcast", "err", err)
		return 0
	}
	return h.sendAll(targets, data, nil)
}

func (h *Hub) sendAll(targets []*Conn, data []byte, except *Conn) int {
	sent := 0
	for _, t := range targets {
		if t == except {
			continue
		}
		if err := t.Send(data); err != nil {
			h.logger.Debug("dropped message", "conn", t.ID, "err", err)
			continue
		}
		sent++
	}
	return sent
}

func (h *Hub) publish(kind events.Kind, c *Conn) {
	if h.events == nil {
		return
	}
	h.events.Publish(events.Event{Kind: kind, ConnID: c.ID})
}

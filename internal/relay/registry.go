package relay

import (
	"sync"

	"github.com/mossy-p/camrelay/internal/models"
)

// Registry tracks the single camera, the viewer set and every attached
// connection. All methods are safe for concurrent use; none of them send.
type Registry struct {
	mu      sync.RWMutex
	camera  *Conn
	viewers map[*Conn]struct{}
	conns   map[*Conn]struct{}
}

func NewRegistry() *Registry {
	return &Registry{
		viewers: make(map[*Conn]struct{}),
		conns:   make(map[*Conn]struct{}),
	}
}

// Attach records a newly opened connection.
func (r *Registry) Attach(c *Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns[c] = struct{}{}
}

// SetCamera makes c the camera and returns the displaced camera, if it was
// a different connection that is still open. The caller notifies and closes it.
func (r *Registry) SetCamera(c *Conn) *Conn {
	r.mu.Lock()
	defer r.mu.Unlock()

	prev := r.camera
	r.camera = c
	delete(r.viewers, c)
	r.conns[c] = struct{}{}

	if prev == nil || prev == c || !prev.IsOpen() {
		return nil
	}
	return prev
}

// AddViewer inserts c into the viewer set. Closed connections and the
// current camera are never added.
func (r *Registry) AddViewer(c *Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c == r.camera || !c.IsOpen() {
		return
	}
	r.viewers[c] = struct{}{}
	r.conns[c] = struct{}{}
}

// Remove drops c from the registry and returns the role it held there.
// Connections that hold no role yield RoleUnregistered.
func (r *Registry) Remove(c *Conn) Role {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.conns, c)
	if r.camera == c {
		r.camera = nil
		return RoleCamera
	}
	if _, ok := r.viewers[c]; ok {
		delete(r.viewers, c)
		return RoleViewer
	}
	return RoleUnregistered
}

// Camera returns the current camera, or nil when absent or closed.
func (r *Registry) Camera() *Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.camera == nil || !r.camera.IsOpen() {
		return nil
	}
	return r.camera
}

func (r *Registry) CameraAvailable() bool {
	return r.Camera() != nil
}

// Viewers returns a snapshot of the open viewers.
func (r *Registry) Viewers() []*Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Conn, 0, len(r.viewers))
	for c := range r.viewers {
		if c.IsOpen() {
			out = append(out, c)
		}
	}
	return out
}

// Conns returns a snapshot of every open attached connection.
func (r *Registry) Conns() []*Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Conn, 0, len(r.conns))
	for c := range r.conns {
		if c.IsOpen() {
			out = append(out, c)
		}
	}
	return out
}

func (r *Registry) Status() models.RelayStatus {
	return models.RelayStatus{
		CameraAvailable: r.CameraAvailable(),
		Viewers:         len(r.Viewers()),
		Connections:     len(r.Conns()),
	}
}

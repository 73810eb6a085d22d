package handlers

import (
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"
	"github.com/mossy-p/camrelay/internal/middleware"
	"github.com/mossy-p/camrelay/internal/models"
)

// Status reports camera availability and peer counts (public)
func (h *Handlers) Status(c *gin.Context) {
	c.JSON(http.StatusOK, h.hub.Registry().Status())
}

// Connections lists every open connection (operator only)
func (h *Handlers) Connections(c *gin.Context) {
	registry := h.hub.Registry()
	conns := registry.Conns()
	sort.Slice(conns, func(i, j int) bool {
		return conns[i].ConnectedAt.Before(conns[j].ConnectedAt)
	})

	list := models.ConnectionList{
		Status:      registry.Status(),
		Connections: make([]models.ConnectionInfo, 0, len(conns)),
	}
	for _, conn := range conns {
		list.Connections = append(list.Connections, models.ConnectionInfo{
			ID:          conn.ID,
			Role:        conn.Role().String(),
			RemoteAddr:  conn.RemoteAddr,
			ConnectedAt: conn.ConnectedAt,
			LastSeen:    conn.LastSeen(),
		})
	}

	c.JSON(http.StatusOK, list)
}

// DisconnectCamera evicts the current camera (operator only). Viewers are
// notified exactly as if the camera had dropped.
func (h *Handlers) DisconnectCamera(c *gin.Context) {
	if !h.hub.DisconnectCamera() {
		c.JSON(http.StatusNotFound, gin.H{"error": "No camera connected"})
		return
	}

	h.logger.Info("camera evicted by operator", "operator", c.GetString(middleware.OperatorKey))
	c.JSON(http.StatusOK, gin.H{"message": "Camera disconnected"})
}

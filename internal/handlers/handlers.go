package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/mossy-p/camrelay/config"
	"github.com/mossy-p/camrelay/internal/middleware"
	"github.com/mossy-p/camrelay/internal/relay"
)

// Handlers binds the HTTP surface to one relay hub
type Handlers struct {
	hub      *relay.Hub
	cfg      *config.Config
	logger   *slog.Logger
	upgrader websocket.Upgrader
}

func New(hub *relay.Hub, cfg *config.Config, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handlers{
		hub:    hub,
		cfg:    cfg,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				// Origin checking is handled by middleware
				return true
			},
		},
	}
}

// NewRouter builds the gin engine serving health, status, operator and
// signaling endpoints
func NewRouter(h *Handlers) *gin.Engine {
	if h.cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()

	// Global CORS middleware (runs before routing)
	router.Use(OriginFilter(h.cfg.AllowedOrigins))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	apiGroup := router.Group("/api")
	{
		apiGroup.GET("/status", h.Status)
		apiGroup.POST("/auth/login", h.Login)

		admin := apiGroup.Group("/admin", middleware.JWTAuth(h.cfg.JWTSecret))
		admin.GET("/connections", h.Connections)
		admin.DELETE("/camera", h.DisconnectCamera)
	}

	router.GET("/ws", h.HandleSignaling)

	return router
}

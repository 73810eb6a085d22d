package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/mossy-p/camrelay/internal/relay"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Maximum inbound frame size; SDP offers stay well below this
	maxMessageSize = 64 * 1024
)

// HandleSignaling upgrades the request and attaches the peer to the hub
func (h *Handlers) HandleSignaling(c *gin.Context) {
	ws, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("failed to upgrade connection", "remote", c.Request.RemoteAddr, "err", err)
		return
	}

	conn := relay.NewConn(uuid.New().String(), c.Request.RemoteAddr, h.cfg.SendQueueSize)
	h.hub.Connect(conn)

	go h.writePump(ws, conn)
	go h.readPump(ws, conn)
}

// readPump feeds inbound frames to the hub in arrival order. Any read error,
// including a normal close, ends the connection.
func (h *Handlers) readPump(ws *websocket.Conn, conn *relay.Conn) {
	defer func() {
		h.hub.Disconnect(conn)
		ws.Close()
	}()

	ws.SetReadLimit(maxMessageSize)
	ws.SetPongHandler(func(string) error {
		conn.Touch(time.Now())
		return nil
	})

	for {
		msgType, message, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				h.logger.Warn("websocket error", "conn", conn.ID, "err", err)
			}
			return
		}
		conn.Touch(time.Now())

		if msgType != websocket.TextMessage {
			continue
		}
		h.hub.Route(conn, message)
	}
}

// writePump owns every write on ws. It exits once the hub closes the
// connection and the queued frames have been flushed.
func (h *Handlers) writePump(ws *websocket.Conn, conn *relay.Conn) {
	defer ws.Close()

	for {
		select {
		case message, ok := <-conn.Outbound():
			ws.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				ws.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}

			if err := ws.WriteMessage(websocket.TextMessage, message); err != nil {
				h.logger.Debug("failed to write message", "conn", conn.ID, "err", err)
				return
			}

		case <-conn.Pings():
			ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"storyhub/internal/hub"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// serveWS upgrades the connection and hands it to the hub. A token may be
// supplied as a query parameter to bind an identity; connections without a
// valid token stay anonymous.
func (h *Handler) serveWS(c *gin.Context) {
	var userID *string
	if token := c.Query("token"); token != "" {
		if user, err := h.auth.ResolveToken(c.Request.Context(), token); err == nil {
			userID = &user.ID
		}
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.WithError(err).Warn("websocket upgrade failed")
		return
	}

	hub.ServeConn(h.hub, conn, userID)
}

// Package wsedge upgrades HTTP connections to websockets and wires them
// into the Channel Registry so the Slow Path can push results as soon
// as they're ready.
package wsedge

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/coder/websocket"
	"github.com/gin-gonic/gin"

	"github.com/basegraph/salesassist/common/logger"
	"github.com/basegraph/salesassist/internal/channel"
)

// defaultWriteTimeout bounds how long a single push may block a slow or
// stalled client before the registry is told the send failed.
const defaultWriteTimeout = 5 * time.Second

// Handler upgrades the push channel endpoint to a websocket and attaches
// the resulting connection to the Channel Registry for its lifetime.
type Handler struct {
	registry       *channel.Registry
	allowedOrigins []string
	writeTimeout   time.Duration
}

func New(registry *channel.Registry, allowedOrigins []string) *Handler {
	return &Handler{
		registry:       registry,
		allowedOrigins: allowedOrigins,
		writeTimeout:   defaultWriteTimeout,
	}
}

// ServeWS is a gin handler for the push channel endpoint, parameterized
// by a :session_id path param. It blocks until the connection closes.
func (h *Handler) ServeWS(c *gin.Context) {
	sessionID := c.Param("session_id")
	ctx := logger.WithLogFields(c.Request.Context(), logger.LogFields{
		SessionID: &sessionID,
		Component: "salesassist.http.wsedge",
	})

	conn, err := websocket.Accept(c.Writer, c.Request, &websocket.AcceptOptions{
		OriginPatterns: h.allowedOrigins,
	})
	if err != nil {
		slog.ErrorContext(ctx, "websocket upgrade failed", "error", err)
		return
	}

	ch := &wsChannel{conn: conn, writeTimeout: h.writeTimeout}

	result, attachErr := h.registry.Attach(sessionID, ch)
	if attachErr != nil {
		slog.WarnContext(ctx, "rejected websocket attach", "error", attachErr)
		conn.Close(websocket.StatusPolicyViolation, attachErr.Error())
		return
	}
	if result == channel.AttachReplaced {
		slog.InfoContext(ctx, "replaced existing push connection for session")
	}

	defer func() {
		h.registry.Detach(sessionID, ch)
		conn.Close(websocket.StatusNormalClosure, "")
	}()

	slog.InfoContext(ctx, "push channel attached")

	// The client never sends anything meaningful over this connection; the
	// read loop exists only to detect when it goes away. Any inbound frame
	// (including protocol-level pings) keeps the loop alive; a read error
	// means the socket closed.
	for {
		if _, _, err := conn.Read(ctx); err != nil {
			break
		}
	}

	slog.InfoContext(ctx, "push channel detached")
}

// wsChannel adapts a single websocket connection to channel.Channel.
type wsChannel struct {
	conn         *websocket.Conn
	writeTimeout time.Duration
}

func (w *wsChannel) Send(ctx context.Context, message any) error {
	data, err := json.Marshal(message)
	if err != nil {
		return err
	}

	writeCtx, cancel := context.WithTimeout(ctx, w.writeTimeout)
	defer cancel()

	return w.conn.Write(writeCtx, websocket.MessageText, data)
}

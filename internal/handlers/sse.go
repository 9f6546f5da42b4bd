// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"net/http"
	"time"

	"codeberg.org/oliverandrich/disney-bounding/internal/appcontext"
	"codeberg.org/oliverandrich/disney-bounding/internal/sse"
	"github.com/labstack/echo/v4"
)

const defaultHeartbeat = 30 * time.Second

// SSEHandler handles Server-Sent Events connections.
type SSEHandler struct {
	hub       *sse.Hub
	heartbeat time.Duration
}

// NewSSEHandler creates a new SSE handler.
func NewSSEHandler(hub *sse.Hub) *SSEHandler {
	return &SSEHandler{hub: hub, heartbeat: defaultHeartbeat}
}

// SetHeartbeat changes the keep-alive interval. Intended for tests.
func (h *SSEHandler) SetHeartbeat(d time.Duration) {
	h.heartbeat = d
}

// Events streams notifications for the signed-in user until the client goes away.
func (h *SSEHandler) Events(c echo.Context) error {
	cc := appcontext.From(c)
	user := cc.GetUser()
	if user == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Authentication required")
	}

	w := c.Response()
	w.Header().Set(echo.HeaderContentType, "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // Disable nginx buffering
	w.WriteHeader(http.StatusOK)

	ch := h.hub.Register(user.ID, cc.IsAdmin)
	defer h.hub.Unregister(user.ID, ch)

	if _, err := w.Write([]byte(sse.FormatEvent(sse.EventConnected, "ok"))); err != nil {
		return nil
	}
	w.Flush()

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	ctx := c.Request().Context()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := w.Write([]byte(sse.Heartbeat)); err != nil {
				return nil
			}
			w.Flush()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			if _, err := w.Write([]byte(msg)); err != nil {
				return nil
			}
			w.Flush()
		}
	}
}

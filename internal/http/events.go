package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"task-kpi-system.com/task-kpi-system/internal/notifier"
)

const keepaliveInterval = 15 * time.Second

// StreamEvents serves the caller's notification channels as Server-Sent
// Events. The stream opens only once the channels are live, so a client may
// re-fetch as soon as it sees the subscribed comment. Nothing is replayed.
func (h *Handler) StreamEvents(c echo.Context) error {
	actor, err := identity(c)
	if err != nil {
		return err
	}

	sub, err := h.hub.Subscribe(c.Request().Context(), actor)
	if err != nil {
		if errors.Is(err, notifier.ErrHubClosed) {
			return echo.NewHTTPError(http.StatusServiceUnavailable, "server is shutting down")
		}
		return err
	}
	defer sub.Close()

	w := c.Response()
	w.Header().Set(echo.HeaderContentType, "text/event-stream")
	w.Header().Set(echo.HeaderCacheControl, "no-cache")
	w.Header().Set(echo.HeaderConnection, "keep-alive")
	w.WriteHeader(http.StatusOK)

	if _, err := fmt.Fprintf(w, "retry: 3000\n: subscribed %v\n\n", sub.Channels); err != nil {
		return nil
	}
	w.Flush()

	ticker := time.NewTicker(keepaliveInterval)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-sub.Events():
			if !ok {
				return nil
			}
			var head struct {
				Event string `json:"event"`
			}
			_ = json.Unmarshal(msg.Payload, &head)

			if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", head.Event, msg.Payload); err != nil {
				return nil
			}
			w.Flush()
		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": keepalive\n\n"); err != nil {
				return nil
			}
			w.Flush()
		case <-c.Request().Context().Done():
			return nil
		}
	}
}

package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"campusnav/pkg/nav"
)

const (
	streamBufferSize = 64
	pingInterval     = 30 * time.Second
	writeDeadline    = 10 * time.Second
)

// StreamHandler pushes session events to websocket clients. A slow
// client drops events rather than stalling the pipeline.
type StreamHandler struct {
	session  *nav.Session
	upgrader websocket.Upgrader
}

func NewStreamHandler(session *nav.Session) *StreamHandler {
	return &StreamHandler{
		session: session,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

func (h *StreamHandler) HandleEvents(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("Failed to upgrade event stream", "error", err)
		return
	}
	defer conn.Close()

	events := make(chan nav.Event, streamBufferSize)
	subID := h.session.Subscribe(func(ev nav.Event) {
		select {
		case events <- ev:
		default:
			// Client is not keeping up; dropping is better than
			// stalling the sensor pipeline.
		}
	})
	defer h.session.Unsubscribe(subID)

	// Reader goroutine exists only to notice the client going away.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(pingInterval)
	defer ping.Stop()

	for {
		select {
		case <-closed:
			return
		case <-r.Context().Done():
			return
		case ev := <-events:
			conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			if err := conn.WriteJSON(ev); err != nil {
				slog.Debug("event stream write failed", "error", err)
				return
			}
		case <-ping.C:
			conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

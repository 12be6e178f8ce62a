package httpapi

import (
	router "github.com/goliatone/go-router"
	"go.uber.org/zap"
)

func registerWebSocket[T any](r router.Router[T], h *Handlers, path string) {
	cfg := router.DefaultWebSocketConfig()
	r.WebSocket(path, cfg, h.streamEvents)
}

// streamEvents pushes every ConfigEvent to the client until either side closes.
func (h *Handlers) streamEvents(ws router.WebSocketContext) error {
	events, cancel := h.Events.Subscribe()
	defer cancel()
	for {
		select {
		case event, ok := <-events:
			if !ok {
				return nil
			}
			if err := ws.WriteJSON(event); err != nil {
				h.logger().Debug("dashboard event stream closed", zap.Error(err))
				return err
			}
		case <-ws.Context().Done():
			return ws.Close()
		}
	}
}

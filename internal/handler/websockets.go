package handler

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"cinemaguard/internal/logger"
	ws "cinemaguard/internal/service/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// AlertsWebsocketHandler serves GET /ws/alerts: viewers receive alert and
// status messages pushed by the hub until they disconnect.
func AlertsWebsocketHandler(hub *ws.HubService, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		connection, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Error("WebSocket upgrade error: %v", err)
			return
		}
		connection.SetReadLimit(512)
		connection.SetReadDeadline(time.Now().Add(60 * time.Second))
		connection.SetPongHandler(func(appData string) error {
			connection.SetReadDeadline(time.Now().Add(60 * time.Second))
			return nil
		})
		defer connection.Close()

		hub.Register(connection)
		defer hub.Unregister(connection)

		for {
			_, _, err := connection.ReadMessage()
			if err != nil {
				logger.Info("Viewer disconnected: %v", err)
				break
			}
		}
	}
}

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/clashcup/clanwar-tournament/brackets"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// CORS on the REST routes is the real gate; websocket clients come
		// from the same origins.
		return true
	},
}

type WebSocketHandler struct {
	hub    *brackets.Hub
	logger *slog.Logger
}

func NewWebSocketHandler(hub *brackets.Hub, logger *slog.Logger) *WebSocketHandler {
	return &WebSocketHandler{hub: hub, logger: logger}
}

// ServeWs subscribes the caller to live updates for one bracket. Connect to
// /ws?bracketId=main (the default bracket if the parameter is omitted).
func (h *WebSocketHandler) ServeWs(w http.ResponseWriter, r *http.Request) {
	bracketID := queryParam(r, "bracketId", "main")

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed",
			slog.Any("error", err),
			slog.String("bracket_id", bracketID),
		)
		return
	}

	h.hub.Subscribe(conn, bracketID)
}

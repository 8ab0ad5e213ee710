package server

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/sandiips/schoolfinder/internal/chat"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The SSE endpoint already allows any origin; the relay matches it.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// handleChatWS relays the chat event stream over a WebSocket: the client
// sends one request message per turn and receives the same typed events the
// SSE endpoint produces, one JSON message each.
func (s *Server) handleChatWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	for {
		var req chatRequest
		if err := conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Warn("websocket read failed", "error", err)
			}
			return
		}
		if len(req.Messages) == 0 {
			continue
		}

		sessionID := req.SessionID
		if sessionID == "" {
			sessionID = uuid.NewString()
		}

		emitter := chat.EmitterFunc(func(ev chat.Event) error {
			return conn.WriteJSON(ev)
		})
		if err := s.orchestrator.RunStream(r.Context(), req.Messages, sessionID, emitter); err != nil {
			s.logger.Error("websocket chat turn failed",
				"session_id", sessionID, "error", err)
		}
	}
}

package api

import (
	"log/slog"
	"net/http"

	"resume-forge/internal/auth"
	"resume-forge/internal/websocket"
)

// ServeWsHandler upgrades the connection and registers it with the hub.
// Browsers cannot set an Authorization header on websocket dials, so the JWT
// comes in as a query parameter.
func (s *Server) ServeWsHandler(w http.ResponseWriter, r *http.Request) {
	tokenString := r.URL.Query().Get("token")
	if tokenString == "" {
		s.fail(w, r, http.StatusUnauthorized, "authentication required")
		return
	}

	claims, err := auth.VerifyJWT(tokenString, s.config.JWT.Secret)
	if err != nil {
		s.fail(w, r, http.StatusForbidden, "invalid or expired token")
		return
	}

	conn, err := websocket.Upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("websocket upgrade failed", "error", err)
		return
	}

	client := websocket.NewClient(s.wsHub, conn, claims.UserID)
	s.wsHub.Register <- client

	go client.ReadPump()
	go client.WritePump()
}

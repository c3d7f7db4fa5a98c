// internal/handlers/api_server.go
package handlers

import (
	"net/http"

	"github.com/jason-s-yu/cardparty/internal/middleware"
)

// NewRouter mounts every HTTP and websocket route behind the logging middleware.
func NewRouter(gs *GameServer) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/user/register", RegisterHandler(gs))
	mux.HandleFunc("/rooms", ListRoomsHandler(gs))
	mux.HandleFunc("/healthz", HealthHandler(gs))
	mux.HandleFunc("/ws", WSHandler(gs))
	return middleware.LogMiddleware(gs.Logger)(mux)
}

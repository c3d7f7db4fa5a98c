package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/jason-s-yu/cardparty/internal/game"
)

type registerRequest struct {
	DisplayName string `json:"displayName"`
}

// RegisterHandler handles POST /user/register. It validates a display name and
// returns a signed session token, also set as the auth_token cookie. A websocket
// opened with that token starts out registered.
//
// Request payload:
//
//	{
//	  "displayName": "alice"
//	}
//
// Response payload:
//
//	{
//	  "displayName": "alice",
//	  "token": "{jwt}"
//	}
func RegisterHandler(gs *GameServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if gs.Tokens == nil {
			http.Error(w, "registration tokens are disabled", http.StatusServiceUnavailable)
			return
		}

		var req registerRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request payload", http.StatusBadRequest)
			return
		}
		name, err := game.ValidateDisplayName(req.DisplayName)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		token, err := gs.Tokens.CreateToken(name)
		if err != nil {
			gs.Logger.Errorf("failed to create token: %v", err)
			http.Error(w, "failed to create token", http.StatusInternalServerError)
			return
		}

		http.SetCookie(w, &http.Cookie{
			Name:     authCookieName,
			Value:    token,
			HttpOnly: true,
			Path:     "/",
			MaxAge:   int(gs.Tokens.Expiry().Seconds()),
		})
		writeJSON(w, http.StatusOK, registerData{DisplayName: name, Token: token})
	}
}

// ListRoomsHandler handles GET /rooms with a snapshot of every live room.
func ListRoomsHandler(gs *GameServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"rooms": gs.Coordinator.ListRooms()})
	}
}

// HealthHandler reports liveness along with the live connection and room counts.
func HealthHandler(gs *GameServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"status":      "ok",
			"connections": gs.Hub.Len(),
			"rooms":       gs.Coordinator.Registry.Len(),
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

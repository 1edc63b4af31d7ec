// Package api exposes a small read-only HTTP status surface next to the
// game's TCP protocol: a health check and a room listing for operators.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/tictacgame-go/internal/middleware"
	"github.com/mcoot/tictacgame-go/internal/services/room"
)

// RoomLister provides the room snapshot served by the status API
type RoomLister interface {
	Snapshot() []room.Status
}

// RouterConfig holds configuration for the status router
type RouterConfig struct {
	Logger *slog.Logger
	Rooms  RoomLister
}

// NewRouter creates the status API router
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.Logging(cfg.Logger))

	r.HandleFunc("/health", healthHandler).Methods(http.MethodGet)
	r.HandleFunc("/rooms", roomsHandler(cfg.Rooms)).Methods(http.MethodGet)

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

func roomsHandler(rooms RoomLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"rooms": rooms.Snapshot(),
		})
	}
}

// writeJSON writes a JSON response
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

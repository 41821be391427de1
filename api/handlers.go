// Package api exposes the narrator's read-only operator endpoints: the
// live roster and the in-memory test history.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/beanz-y/not-the-end/history"
	"github.com/beanz-y/not-the-end/roster"
)

// Handler holds dependencies for API handlers.
type Handler struct {
	Roster  *roster.Roster
	History history.Recorder
}

// NewHandler creates a new API handler with the given dependencies.
func NewHandler(r *roster.Roster, h history.Recorder) *Handler {
	return &Handler{Roster: r, History: h}
}

// RegisterRoutes attaches the API endpoints to mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/roster", h.HandleRoster)
	mux.HandleFunc("/api/history", h.HandleHistory)
}

// CORS sets CORS headers on the response. Returns true when the request
// was a preflight and has been fully answered.
func CORS(w http.ResponseWriter, r *http.Request) bool {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return true
	}
	return false
}

// HandleRoster serves GET /api/roster: the connected players and their
// latest sheets.
func (h *Handler) HandleRoster(w http.ResponseWriter, r *http.Request) {
	if CORS(w, r) {
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, h.Roster.Snapshot())
}

// HandleHistory serves GET /api/history: completed test results,
// oldest first.
func (h *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	if CORS(w, r) {
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, h.History.List())
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("writing api response", "tag", "api", "err", err)
	}
}

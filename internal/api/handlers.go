package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/assemblymechs/arena-core/internal/protocol"
	"github.com/assemblymechs/arena-core/internal/store"
)

// Handler methods for routerHandlers. Everything here is read-only
// except handleCreateMatch and handleScheduleMatch, which only queue
// work for a coordinator host to pick up off the bus; neither one
// touches a running match's state directly.

func (h *routerHandlers) handleGetMatch(w http.ResponseWriter, r *http.Request) {
	matchID := chi.URLParam(r, "id")

	state, err := h.store.Get(r.Context(), matchID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, "match not found", http.StatusNotFound)
			return
		}
		writeError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, state)
}

func (h *routerHandlers) handleGetLeaderboard(w http.ResponseWriter, r *http.Request) {
	limit := 10
	if q := r.URL.Query().Get("limit"); q != "" {
		if n, err := strconv.Atoi(q); err == nil && n > 0 {
			limit = n
		}
	}

	entries := h.leaderboard.Top(limit)
	writeJSON(w, map[string]interface{}{
		"entries":    entries,
		"generation": h.leaderboard.Generation(),
	})
}

func (h *routerHandlers) handleGetSchedule(w http.ResponseWriter, r *http.Request) {
	scheduled, err := h.store.ListScheduled(r.Context())
	if err != nil {
		writeError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	resp := protocol.ScheduleResponse{Matches: make([]protocol.ScheduledMatch, 0, len(scheduled))}
	for _, m := range scheduled {
		resp.Matches = append(resp.Matches, protocol.ScheduledMatch{
			MatchID:   m.MatchID,
			Actors:    m.Actors,
			StartTime: m.StartTime,
		})
	}

	writeJSON(w, resp)
}

func (h *routerHandlers) handleListAgents(w http.ResponseWriter, r *http.Request) {
	agents, err := h.store.ListAgents(r.Context())
	if err != nil {
		writeError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]interface{}{"agents": agents})
}

// handleScheduleMatch queues a match to run at a future time; it does
// not start a coordinator. A host watching SubjectArenaSchedule claims
// and starts it when its start time arrives.
func (h *routerHandlers) handleScheduleMatch(w http.ResponseWriter, r *http.Request) {
	var req store.StoredMatch
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request", http.StatusBadRequest)
		return
	}
	if req.MatchID == "" || len(req.Actors) == 0 {
		writeError(w, "match_id and actors are required", http.StatusBadRequest)
		return
	}

	if err := h.store.PutScheduled(r.Context(), req); err != nil {
		writeError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]bool{"success": true})
}

// handleCreateMatch asks a coordinator host to start a match
// immediately by publishing a StartMatch command on the control
// subject; the caller doesn't wait for the match to finish.
func (h *routerHandlers) handleCreateMatch(w http.ResponseWriter, r *http.Request) {
	var create protocol.CreateMatch
	if err := json.NewDecoder(r.Body).Decode(&create); err != nil {
		writeError(w, "invalid request", http.StatusBadRequest)
		return
	}
	if create.MatchID == "" || len(create.Actors) == 0 {
		writeError(w, "match_id and actors are required", http.StatusBadRequest)
		return
	}

	cmd := protocol.ArenaControlCommand{Kind: protocol.ArenaControlStartMatch, StartMatch: &create}
	payload, err := json.Marshal(cmd)
	if err != nil {
		writeError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if err := h.bus.Publish(r.Context(), protocol.SubjectArenaControl, payload); err != nil {
		writeError(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	writeJSON(w, map[string]bool{"success": true})
}

func writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, message string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

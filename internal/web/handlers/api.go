package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/parcelgraph/internal/audit"
)

// APIHandler serves the audit review endpoints
type APIHandler struct {
	Store *audit.Store
}

// ListRuns returns every batch run, newest first
func (h *APIHandler) ListRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := h.Store.ListRuns()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if runs == nil {
		runs = []audit.Run{}
	}
	writeJSON(w, runs)
}

// ListDecisions returns one run's recorded match decisions
func (h *APIHandler) ListDecisions(w http.ResponseWriter, r *http.Request) {
	runID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		http.Error(w, "invalid run id", http.StatusBadRequest)
		return
	}
	decisions, err := h.Store.ListDecisions(runID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if decisions == nil {
		decisions = []audit.Decision{}
	}
	writeJSON(w, decisions)
}

// GetStats returns aggregate decision counts per match method
func (h *APIHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Store.Stats()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if stats == nil {
		stats = []audit.MethodStat{}
	}
	writeJSON(w, stats)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

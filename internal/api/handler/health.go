package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/iconidentify/sharegrab/internal/history"
	"github.com/iconidentify/sharegrab/internal/stage"
	"github.com/iconidentify/sharegrab/internal/worker"
)

var startTime = time.Now()

// HealthHandler serves the liveness, readiness and stats endpoints the
// external dashboard polls.
type HealthHandler struct {
	pool    *worker.Pool
	journal *history.Store
	scratch *stage.Store
}

// NewHealthHandler creates a new health handler. journal and scratch may
// be nil; the matching response fields are then omitted.
func NewHealthHandler(pool *worker.Pool, journal *history.Store, scratch *stage.Store) *HealthHandler {
	return &HealthHandler{
		pool:    pool,
		journal: journal,
		scratch: scratch,
	}
}

// HealthResponse is the JSON response for health checks.
type HealthResponse struct {
	Status        string `json:"status"`
	Timestamp     string `json:"timestamp"`
	UptimeSeconds int64  `json:"uptime_seconds"`
	Pending       int    `json:"pending,omitempty"`
}

// Live handles GET /health - liveness probe.
func (h *HealthHandler) Live(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:        "ok",
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
		UptimeSeconds: int64(time.Since(startTime).Seconds()),
	})
}

// Ready handles GET /ready - readiness probe.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	// The journal is the only dependency that can go away underneath us.
	if h.journal != nil {
		if _, err := h.journal.Stats(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, HealthResponse{
				Status:    "error",
				Timestamp: time.Now().UTC().Format(time.RFC3339),
			})
			return
		}
	}

	writeJSON(w, http.StatusOK, HealthResponse{
		Status:        "ok",
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
		UptimeSeconds: int64(time.Since(startTime).Seconds()),
		Pending:       h.pool.Pending(),
	})
}

// StatsResponse is the JSON response for GET /api/v1/stats.
type StatsResponse struct {
	Pending          int            `json:"pending"`
	ScratchFreeBytes int64          `json:"scratch_free_bytes,omitempty"`
	Journal          *history.Stats `json:"journal,omitempty"`
}

// Stats handles GET /api/v1/stats - aggregate usage counters.
func (h *HealthHandler) Stats(w http.ResponseWriter, r *http.Request) {
	resp := StatsResponse{Pending: h.pool.Pending()}
	if h.scratch != nil {
		resp.ScratchFreeBytes = h.scratch.FreeSpace()
	}

	if h.journal != nil {
		stats, err := h.journal.Stats(r.Context())
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		resp.Journal = stats
	}

	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

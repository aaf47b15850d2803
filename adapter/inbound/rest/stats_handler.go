package rest

import (
	"context"
	"net/http"
	"strconv"
	"time"
)

const healthTimeout = 2 * time.Second

type healthResponse struct {
	Status    string `json:"status"`
	Store     string `json:"store"`
	Telegram  bool   `json:"telegram"`
	Timestamp string `json:"timestamp"`
}

// health reports 503 while the document store is unreachable
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	resp := healthResponse{
		Status:    "ok",
		Store:     "online",
		Telegram:  h.notifier.Enabled(),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	status := http.StatusOK

	if err := h.store.Ping(ctx); err != nil {
		h.logger.Warn("Health check: store unreachable", "error", err)
		resp.Status, resp.Store = "degraded", "offline"
		status = http.StatusServiceUnavailable
	}

	writeJSON(w, status, resp)
}

func (h *Handler) currentStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.stats.GetCurrentStats(r.Context())
	if err != nil {
		h.logger.Error("Failed to collect stats", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *Handler) statsHistory(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	history, err := h.stats.GetStatsHistory(r.Context(), limit)
	if err != nil {
		h.logger.Error("Failed to read stats history", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, history)
}

package monitoring

import (
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"
)

// Health exposes a liveness endpoint reporting uptime and the last time
// the monitoring loop completed a cycle.
type Health struct {
	startedAt time.Time
	lastCycle atomic.Int64 // unix nanos
}

// NewHealth creates a health tracker anchored to now.
func NewHealth() *Health {
	return &Health{startedAt: time.Now()}
}

// MarkCycle records a completed monitoring cycle.
func (h *Health) MarkCycle() {
	h.lastCycle.Store(time.Now().UnixNano())
}

// ServeHTTP reports the process health as JSON.
func (h *Health) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	last := h.lastCycle.Load()
	status := map[string]interface{}{
		"status":  "ok",
		"uptime":  time.Since(h.startedAt).String(),
		"started": h.startedAt.Format(time.RFC3339),
	}
	if last > 0 {
		status["last_cycle"] = time.Unix(0, last).Format(time.RFC3339)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(status) //nolint:errcheck
}

package monitoring

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"
)

// HealthStatus is the JSON body served by the health endpoint.
type HealthStatus struct {
	Status        string    `json:"status"`
	Symbol        string    `json:"symbol"`
	BarsProcessed int       `json:"bars_processed"`
	LastBarTime   time.Time `json:"last_bar_time"`
	Regime        string    `json:"regime"`
	Equity        float64   `json:"equity"`
	StartedAt     time.Time `json:"started_at"`
	UptimeSeconds float64   `json:"uptime_seconds"`
}

// HealthChecker tracks replay liveness for the health endpoint.
type HealthChecker struct {
	mu      sync.RWMutex
	status  HealthStatus
	started time.Time
}

// NewHealthChecker creates a checker for one symbol.
func NewHealthChecker(symbol string) *HealthChecker {
	now := time.Now()
	return &HealthChecker{
		status: HealthStatus{
			Status:    "starting",
			Symbol:    symbol,
			StartedAt: now,
		},
		started: now,
	}
}

// Update records the latest bar's state.
func (h *HealthChecker) Update(barTime time.Time, regime string, equity float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.status.Status = "ok"
	h.status.BarsProcessed++
	h.status.LastBarTime = barTime
	h.status.Regime = regime
	h.status.Equity = equity
}

// Handler serves the current status as JSON.
func (h *HealthChecker) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.mu.RLock()
		status := h.status
		h.mu.RUnlock()
		status.UptimeSeconds = time.Since(h.started).Seconds()

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(status)
	})
}

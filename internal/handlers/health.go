package handlers

import (
	"context"
	"net/http"
	"time"
)

const version = "0.1.0"

// Check represents the status of a health check.
type Check struct {
	Status  string `json:"status"`            // "pass" or "fail"
	Latency string `json:"latency,omitempty"` // e.g., "2ms"
	Message string `json:"message,omitempty"`
}

// Usage is the storage footprint against its budget.
type Usage struct {
	UsedBytes   int     `json:"used_bytes"`
	BudgetBytes int     `json:"budget_bytes"`
	Percent     float64 `json:"percent"`
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status    string           `json:"status"` // "healthy" or "degraded"
	Version   string           `json:"version"`
	Checks    map[string]Check `json:"checks"`
	Storage   *Usage           `json:"storage,omitempty"`
	Timestamp string           `json:"timestamp"`
}

// Health handles the health check endpoint.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	checks := make(map[string]Check)
	status := "healthy"
	statusCode := http.StatusOK

	start := time.Now()
	if err := h.chat.Ping(ctx); err != nil {
		checks["store"] = Check{Status: "fail", Message: "store unreachable"}
		status = "degraded"
		statusCode = http.StatusServiceUnavailable
	} else {
		checks["store"] = Check{Status: "pass", Latency: time.Since(start).String()}
	}

	h.JSON(w, statusCode, HealthResponse{
		Status:    status,
		Version:   version,
		Checks:    checks,
		Storage:   h.usage(),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *Handler) usage() *Usage {
	used, budget, ok := h.chat.StorageUsage()
	if !ok {
		return nil
	}
	u := &Usage{UsedBytes: used, BudgetBytes: budget}
	if budget > 0 {
		u.Percent = float64(used) * 100 / float64(budget)
	}
	return u
}

// RootResponse represents the root endpoint response.
type RootResponse struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// Root handles the root endpoint.
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	h.JSON(w, http.StatusOK, RootResponse{Name: "chattest", Version: version})
}

package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

type pinger interface {
	PingContext(ctx context.Context) error
}

type pingFunc func(ctx context.Context) error

func (f pingFunc) PingContext(ctx context.Context) error { return f(ctx) }

type HealthHandler struct {
	db    pinger
	cache pinger
}

// NewHealthHandler checks db and, when ping is non-nil, the token store.
func NewHealthHandler(db pinger, ping func(ctx context.Context) error) *HealthHandler {
	h := &HealthHandler{db: db}
	if ping != nil {
		h.cache = pingFunc(ping)
	}
	return h
}

func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	RespondJSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"version":   "1.0.0",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	httpStatus := http.StatusOK
	checks := map[string]string{"database": "ok"}

	if err := h.db.PingContext(r.Context()); err != nil {
		slog.Warn("readiness check failed: database unreachable", "error", err)
		checks["database"] = "down"
		httpStatus = http.StatusServiceUnavailable
	}
	if h.cache != nil {
		checks["token_store"] = "ok"
		if err := h.cache.PingContext(r.Context()); err != nil {
			slog.Warn("readiness check failed: token store unreachable", "error", err)
			checks["token_store"] = "down"
			httpStatus = http.StatusServiceUnavailable
		}
	}

	overallStatus := "ok"
	if httpStatus != http.StatusOK {
		overallStatus = "down"
	}

	RespondJSON(w, httpStatus, map[string]any{
		"status":    overallStatus,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"checks":    checks,
	})
}

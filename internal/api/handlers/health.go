package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// Check reports whether a dependency is usable.
type Check func(ctx context.Context) error

type HealthHandler struct {
	checks map[string]Check
	status map[string]func() string
}

// NewHealthHandler checks db and rdb when they are configured.
func NewHealthHandler(db *pgxpool.Pool, rdb *redis.Client) *HealthHandler {
	h := &HealthHandler{checks: map[string]Check{}, status: map[string]func() string{}}
	if db != nil {
		h.AddCheck("database", db.Ping)
	}
	if rdb != nil {
		h.AddCheck("redis", func(ctx context.Context) error { return rdb.Ping(ctx).Err() })
	}
	return h
}

func (h *HealthHandler) AddCheck(name string, c Check) {
	h.checks[name] = c
}

// AddStatus reports a component's state without affecting readiness.
func (h *HealthHandler) AddStatus(name string, fn func() string) {
	h.status[name] = fn
}

func (h *HealthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *HealthHandler) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	status := http.StatusOK
	checks := map[string]string{}
	for _, name := range names {
		if err := h.checks[name](ctx); err != nil {
			checks[name] = "unhealthy: " + err.Error()
			status = http.StatusServiceUnavailable
		} else {
			checks[name] = "ok"
		}
	}
	for name, fn := range h.status {
		checks[name] = fn()
	}

	writeJSON(w, status, map[string]interface{}{"status": statusStr(status), "checks": checks})
}

func statusStr(code int) string {
	if code == http.StatusOK {
		return "ok"
	}
	return "unhealthy"
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

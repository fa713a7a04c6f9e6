package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// ReadinessCheck probes a single downstream dependency.
type ReadinessCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// HealthHandler serves liveness and readiness probes.
type HealthHandler struct {
	serviceName string
	checks      []ReadinessCheck
}

// HealthOption customizes the health handler.
type HealthOption func(*HealthHandler)

// WithReadinessCheck registers a dependency probe for the readiness endpoint.
func WithReadinessCheck(name string, check func(ctx context.Context) error) HealthOption {
	return func(h *HealthHandler) {
		if check == nil {
			return
		}
		h.checks = append(h.checks, ReadinessCheck{Name: name, Check: check})
	}
}

func NewHealthHandler(serviceName string, opts ...HealthOption) *HealthHandler {
	h := &HealthHandler{serviceName: serviceName}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Status handles GET /healthz.
func (h *HealthHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": h.serviceName,
	})
}

// Readiness handles GET /readyz. It probes each registered dependency with a
// short timeout and reports per-dependency outcomes.
func (h *HealthHandler) Readiness(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	results := make(map[string]string, len(h.checks))
	healthy := true

	for _, probe := range h.checks {
		if err := probe.Check(ctx); err != nil {
			results[probe.Name] = err.Error()
			healthy = false
			continue
		}
		results[probe.Name] = "ok"
	}

	status := http.StatusOK
	overall := "ready"
	if !healthy {
		status = http.StatusServiceUnavailable
		overall = "degraded"
	}

	c.JSON(status, gin.H{
		"status":       overall,
		"service":      h.serviceName,
		"dependencies": results,
	})
}

package handler

import (
	"context"
	"net/http"
	"time"

	"rizzpay-gateway/internal/core/ports"

	"github.com/gin-gonic/gin"
)

// HealthHandler reports service and dependency health.
type HealthHandler struct {
	checkers []ports.HealthChecker
}

// NewHealthHandler creates a health handler over the given dependency checks.
func NewHealthHandler(checkers ...ports.HealthChecker) *HealthHandler {
	return &HealthHandler{checkers: checkers}
}

// Check handles GET /health. Any failing dependency degrades the whole
// service to 503 so load balancers stop routing to this instance.
func (h *HealthHandler) Check(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	overall := "ok"
	deps := make(map[string]string, len(h.checkers))

	for _, checker := range h.checkers {
		if err := checker.Ping(ctx); err != nil {
			deps[checker.Name()] = "unreachable"
			overall = "degraded"
			status = http.StatusServiceUnavailable
			continue
		}
		deps[checker.Name()] = "ok"
	}

	c.JSON(status, gin.H{
		"status":       overall,
		"dependencies": deps,
		"timestamp":    time.Now().UTC().Format(time.RFC3339),
	})
}

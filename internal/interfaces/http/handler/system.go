package handler

import (
	"context"
	"net/http"
	"slices"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
)

// HealthCheck reports whether one dependency is reachable
type HealthCheck func(ctx context.Context) error

// ComponentStatus is the health of one dependency
type ComponentStatus struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// HealthResponse is the body of GET /health
type HealthResponse struct {
	Status     string                     `json:"status"`
	Components map[string]ComponentStatus `json:"components"`
}

// SystemHandler serves liveness and readiness endpoints
type SystemHandler struct {
	checks  map[string]HealthCheck
	timeout time.Duration
}

// NewSystemHandler creates a handler that runs checks, each bounded by timeout
func NewSystemHandler(checks map[string]HealthCheck, timeout time.Duration) *SystemHandler {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &SystemHandler{checks: checks, timeout: timeout}
}

// RegisterRoutes implements router.RouteRegistrar
func (h *SystemHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/health", h.Health)
	rg.GET("/health/live", h.Live)
}

// Live always answers 200 while the process serves requests
func (h *SystemHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "up"})
}

// Health runs every check concurrently; any failing one makes the answer 503
func (h *SystemHandler) Health(c *gin.Context) {
	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	slices.Sort(names)

	results := make([]ComponentStatus, len(names))
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	var g errgroup.Group
	for i, name := range names {
		g.Go(func() error {
			results[i] = ComponentStatus{Status: "up"}
			if err := h.checks[name](ctx); err != nil {
				results[i] = ComponentStatus{Status: "down", Error: err.Error()}
			}
			return nil
		})
	}
	_ = g.Wait()

	resp := HealthResponse{Status: "up", Components: make(map[string]ComponentStatus, len(names))}
	status := http.StatusOK
	for i, name := range names {
		resp.Components[name] = results[i]
		if results[i].Status != "up" {
			resp.Status = "down"
			status = http.StatusServiceUnavailable
		}
	}
	c.JSON(status, resp)
}

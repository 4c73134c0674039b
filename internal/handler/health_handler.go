package handler

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
)

// Probe reports whether a dependency can serve traffic.
type Probe func(ctx context.Context) error

// Pinger is satisfied by *sqlx.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// PingProbe adapts a Pinger.
func PingProbe(p Pinger) Probe { return p.PingContext }

const probeTimeout = 2 * time.Second

// HealthHandler serves liveness and readiness for the document store and the
// extraction engine.
type HealthHandler struct {
	probes map[string]Probe
	names  []string
}

// NewHealthHandler creates a HealthHandler. Readiness fails if any probe fails.
func NewHealthHandler(probes map[string]Probe) *HealthHandler {
	names := make([]string, 0, len(probes))
	for name := range probes {
		names = append(names, name)
	}
	sort.Strings(names)
	return &HealthHandler{probes: probes, names: names}
}

// Liveness handles GET /healthz
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Readiness handles GET /readyz
func (h *HealthHandler) Readiness(c *gin.Context) {
	checks := make(gin.H, len(h.names))
	status, code := "ok", http.StatusOK

	for _, name := range h.names {
		ctx, cancel := context.WithTimeout(c.Request.Context(), probeTimeout)
		err := h.probes[name](ctx)
		cancel()
		if err != nil {
			checks[name] = "unavailable"
			status, code = "unavailable", http.StatusServiceUnavailable
			continue
		}
		checks[name] = "ok"
	}
	c.JSON(code, gin.H{"status": status, "checks": checks})
}

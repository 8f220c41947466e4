package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

var startTime = time.Now()

// ReadyCheck reports whether one dependency can serve traffic.
type ReadyCheck func(ctx context.Context) error

// RegisterHealth registers /health (liveness) and /ready (dependency readiness).
func RegisterHealth(r *gin.Engine, checks map[string]ReadyCheck) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"service":   "backend",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})

	// return 200 only when critical dependencies are available
	r.GET("/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		ready := true
		deps := map[string]bool{}
		for name, check := range checks {
			ok := check != nil && check(ctx) == nil
			deps[name] = ok
			ready = ready && ok
		}

		status, code := "ready", http.StatusOK
		if !ready {
			status, code = "not_ready", http.StatusServiceUnavailable
		}
		c.JSON(code, gin.H{"status": status, "deps": deps, "uptime": time.Since(startTime).String()})
	})
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type HealthHandler struct {
	backend string
	ready   func() bool
}

// NewHealthHandler creates a health handler. ready reports whether the form finished loading.
func NewHealthHandler(backend string, ready func() bool) *HealthHandler {
	return &HealthHandler{
		backend: backend,
		ready:   ready,
	}
}

func (h *HealthHandler) Healthcheck(c *gin.Context) {
	c.Header("Cache-Control", "no-cache, no-store, max-age=0, must-revalidate")

	if h.ready != nil && !h.ready() {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unavailable",
			"reason": "profile form not initialized",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"backend": h.backend,
	})
}

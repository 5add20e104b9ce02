package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// HealthHandler exposes the liveness endpoint
type HealthHandler struct {
	common *CommonServices
}

// NewHealthHandler creates a handler with interface dependencies
func NewHealthHandler(common *CommonServices) *HealthHandler {
	return &HealthHandler{common: common}
}

// Check reports service liveness.
func (h *HealthHandler) Check(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "stateline-api",
	})
}

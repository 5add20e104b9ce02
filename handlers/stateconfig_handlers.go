package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stateline/stateline-api/helpers"
	"github.com/stateline/stateline-api/types/api/responses"
)

// StateConfigHandler exposes the configured state rule table
type StateConfigHandler struct {
	common *CommonServices
}

// NewStateConfigHandler creates a handler with interface dependencies
func NewStateConfigHandler(common *CommonServices) *StateConfigHandler {
	return &StateConfigHandler{common: common}
}

// ListStates returns every configured state rule row.
func (h *StateConfigHandler) ListStates(c *gin.Context) {
	states := h.common.registry.All()
	sendSuccess(c, http.StatusOK, responses.StateConfigListResponse{
		States: states,
		Count:  len(states),
	})
}

// GetState returns the rule row for one state.
func (h *StateConfigHandler) GetState(c *gin.Context) {
	stateCode := c.Param("state_code")
	if err := helpers.ValidateStateCode(stateCode); err != nil {
		sendError(c, http.StatusBadRequest, err.Error(), err)
		return
	}

	config, ok := h.common.registry.GetConfig(stateCode)
	if !ok {
		sendError(c, http.StatusNotFound, "State not configured", nil)
		return
	}
	sendSuccess(c, http.StatusOK, responses.StateConfigResponse{Config: config})
}

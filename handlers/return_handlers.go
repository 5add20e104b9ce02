package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stateline/stateline-api/types/api/requests"
)

// ReturnHandler exposes multistate return processing
type ReturnHandler struct {
	common *CommonServices
}

// NewReturnHandler creates a handler with interface dependencies
func NewReturnHandler(common *CommonServices) *ReturnHandler {
	return &ReturnHandler{common: common}
}

// Process runs the full return orchestration on an ad-hoc financial snapshot
// without persisting anything.
func (h *ReturnHandler) Process(c *gin.Context) {
	var req requests.MultistateBusinessDataRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	data, err := toBusinessData(req)
	if err != nil {
		sendError(c, http.StatusBadRequest, err.Error(), err)
		return
	}

	result := h.common.ReturnService.ProcessMultistateReturn(data)
	sendSuccess(c, http.StatusOK, result)
}

// ProcessForProfile runs the return orchestration for a stored profile and
// persists the resulting snapshot.
func (h *ReturnHandler) ProcessForProfile(c *gin.Context) {
	profileID, err := uuid.Parse(c.Param("profile_id"))
	if err != nil {
		sendError(c, http.StatusBadRequest, "Invalid profile ID", err)
		return
	}

	var req requests.MultistateBusinessDataRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	data, err := toBusinessData(req)
	if err != nil {
		sendError(c, http.StatusBadRequest, err.Error(), err)
		return
	}

	result, err := h.common.ProfileService.ProcessAndStoreReturn(c.Request.Context(), profileID, data)
	if err != nil {
		handleDBError(c, err, "Profile not found")
		return
	}
	sendSuccess(c, http.StatusCreated, result)
}

// ListForProfile lists the stored return snapshots for a profile, newest
// first.
func (h *ReturnHandler) ListForProfile(c *gin.Context) {
	profileID, err := uuid.Parse(c.Param("profile_id"))
	if err != nil {
		sendError(c, http.StatusBadRequest, "Invalid profile ID", err)
		return
	}

	returns, err := h.common.ProfileService.ListReturns(c.Request.Context(), profileID)
	if err != nil {
		sendError(c, http.StatusInternalServerError, "Failed to list returns", err)
		return
	}
	sendList(c, returns)
}

// GetForProfile loads one stored return snapshot under a profile.
func (h *ReturnHandler) GetForProfile(c *gin.Context) {
	profileID, err := uuid.Parse(c.Param("profile_id"))
	if err != nil {
		sendError(c, http.StatusBadRequest, "Invalid profile ID", err)
		return
	}
	returnID, err := uuid.Parse(c.Param("return_id"))
	if err != nil {
		sendError(c, http.StatusBadRequest, "Invalid return ID", err)
		return
	}

	stored, err := h.common.ProfileService.GetReturn(c.Request.Context(), profileID, returnID)
	if err != nil {
		handleDBError(c, err, "Return not found")
		return
	}
	sendSuccess(c, http.StatusOK, stored)
}

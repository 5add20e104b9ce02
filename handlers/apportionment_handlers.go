package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stateline/stateline-api/types/api/requests"
	"github.com/stateline/stateline-api/types/api/responses"
	"github.com/stateline/stateline-api/types/business"
)

// ApportionmentHandler exposes the apportionment calculations
type ApportionmentHandler struct {
	common *CommonServices
}

// NewApportionmentHandler creates a handler with interface dependencies
func NewApportionmentHandler(common *CommonServices) *ApportionmentHandler {
	return &ApportionmentHandler{common: common}
}

// Calculate computes the full multistate apportionment breakdown along with
// its advisory validation warnings.
func (h *ApportionmentHandler) Calculate(c *gin.Context) {
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

	factors := h.common.ApportionmentService.CalculateMultistateApportionment(data)
	warnings := h.common.ApportionmentService.ValidateApportionmentFactors(factors)

	sendSuccess(c, http.StatusOK, responses.ApportionmentResponse{
		Factors:  factors,
		Warnings: warnings,
	})
}

// Validate runs the advisory factor checks on a previously computed
// breakdown without recomputing it.
func (h *ApportionmentHandler) Validate(c *gin.Context) {
	var req struct {
		Factors business.ApportionmentFactors `json:"factors" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	warnings := h.common.ApportionmentService.ValidateApportionmentFactors(req.Factors)
	sendSuccess(c, http.StatusOK, responses.ValidationResponse{Warnings: warnings})
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stateline/stateline-api/helpers"
	"github.com/stateline/stateline-api/types/api/requests"
	"github.com/stateline/stateline-api/types/api/responses"
)

// NexusHandler exposes the nexus determination operations
type NexusHandler struct {
	common *CommonServices
}

// NewNexusHandler creates a handler with interface dependencies
func NewNexusHandler(common *CommonServices) *NexusHandler {
	return &NexusHandler{common: common}
}

// CheckEconomicNexus godoc
// @Summary Check economic nexus
// @Description Evaluates sales-tax economic nexus for one state
// @Tags nexus
// @Accept json
// @Produce json
// @Success 200 {object} business.NexusStatus
// @Failure 400 {object} ErrorResponse
// @Router /nexus/economic-check [post]
func (h *NexusHandler) CheckEconomicNexus(c *gin.Context) {
	var req requests.EconomicNexusCheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if err := helpers.ValidateStateCode(req.StateCode); err != nil {
		sendError(c, http.StatusBadRequest, err.Error(), err)
		return
	}
	if err := helpers.ValidateNonNegative("sales_amount", req.SalesAmount); err != nil {
		sendError(c, http.StatusBadRequest, err.Error(), err)
		return
	}
	if err := helpers.ValidateNonNegativeCount("transaction_count", req.TransactionCount); err != nil {
		sendError(c, http.StatusBadRequest, err.Error(), err)
		return
	}
	asOfDate, err := parseDate("as_of_date", req.AsOfDate)
	if err != nil {
		sendError(c, http.StatusBadRequest, err.Error(), err)
		return
	}

	status := h.common.NexusService.CheckEconomicNexus(req.StateCode, req.SalesAmount, req.TransactionCount, asOfDate)
	sendSuccess(c, http.StatusOK, status)
}

// CheckPhysicalPresence evaluates physical presence nexus for one state.
func (h *NexusHandler) CheckPhysicalPresence(c *gin.Context) {
	var req requests.PhysicalPresenceCheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if err := helpers.ValidateStateCode(req.StateCode); err != nil {
		sendError(c, http.StatusBadRequest, err.Error(), err)
		return
	}
	asOfDate, err := parseDate("as_of_date", req.AsOfDate)
	if err != nil {
		sendError(c, http.StatusBadRequest, err.Error(), err)
		return
	}
	activities, err := toActivities(req.Activities)
	if err != nil {
		sendError(c, http.StatusBadRequest, err.Error(), err)
		return
	}

	status := h.common.NexusService.CheckPhysicalPresenceNexus(req.StateCode, activities, asOfDate)
	sendSuccess(c, http.StatusOK, status)
}

// CheckIncomeTaxNexus evaluates income-tax nexus for one state.
func (h *NexusHandler) CheckIncomeTaxNexus(c *gin.Context) {
	var req requests.IncomeTaxNexusCheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if err := helpers.ValidateStateCode(req.StateCode); err != nil {
		sendError(c, http.StatusBadRequest, err.Error(), err)
		return
	}
	asOfDate, err := parseDate("as_of_date", req.AsOfDate)
	if err != nil {
		sendError(c, http.StatusBadRequest, err.Error(), err)
		return
	}
	activities, err := toActivities(req.Activities)
	if err != nil {
		sendError(c, http.StatusBadRequest, err.Error(), err)
		return
	}
	financials, err := toFinancials(req.Financials)
	if err != nil {
		sendError(c, http.StatusBadRequest, err.Error(), err)
		return
	}

	status := h.common.NexusService.CheckIncomeTaxNexus(req.StateCode, activities, financials, asOfDate)
	sendSuccess(c, http.StatusOK, status)
}

// GetAllNexusStatus evaluates nexus across every candidate state.
func (h *NexusHandler) GetAllNexusStatus(c *gin.Context) {
	var req requests.NexusStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	asOfDate, err := parseDate("as_of_date", req.AsOfDate)
	if err != nil {
		sendError(c, http.StatusBadRequest, err.Error(), err)
		return
	}
	activities, err := toActivities(req.Activities)
	if err != nil {
		sendError(c, http.StatusBadRequest, err.Error(), err)
		return
	}
	financials, err := toFinancials(req.Financials)
	if err != nil {
		sendError(c, http.StatusBadRequest, err.Error(), err)
		return
	}

	statuses := h.common.NexusService.GetAllNexusStatus(activities, financials, asOfDate)
	sendSuccess(c, http.StatusOK, responses.NexusStatusResponse{
		Statuses: statuses,
		AsOfDate: req.AsOfDate,
	})
}

// MonitorThresholds returns advance warnings for states approaching an
// economic nexus threshold.
func (h *NexusHandler) MonitorThresholds(c *gin.Context) {
	var req requests.ThresholdMonitorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	financials, err := toFinancials(req.Financials)
	if err != nil {
		sendError(c, http.StatusBadRequest, err.Error(), err)
		return
	}

	proximity := decimal.Zero
	if req.ProximityThreshold != nil {
		proximity = *req.ProximityThreshold
		if proximity.IsNegative() || proximity.GreaterThanOrEqual(decimal.NewFromInt(1)) {
			sendError(c, http.StatusBadRequest, "proximity_threshold must be in (0, 1)", nil)
			return
		}
	}

	warnings := h.common.NexusService.MonitorThresholdProximity(financials, proximity)
	sendSuccess(c, http.StatusOK, responses.ThresholdMonitorResponse{Warnings: warnings})
}

// ValidateNexusData runs the advisory activity/financials sanity checks.
func (h *NexusHandler) ValidateNexusData(c *gin.Context) {
	var req requests.NexusValidationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	activities, err := toActivities(req.Activities)
	if err != nil {
		sendError(c, http.StatusBadRequest, err.Error(), err)
		return
	}
	financials, err := toFinancials(req.Financials)
	if err != nil {
		sendError(c, http.StatusBadRequest, err.Error(), err)
		return
	}

	warnings := h.common.NexusService.ValidateNexusData(activities, financials)
	sendSuccess(c, http.StatusOK, responses.ValidationResponse{Warnings: warnings})
}

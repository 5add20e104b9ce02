package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stateline/stateline-api/helpers"
	"github.com/stateline/stateline-api/types/api/requests"
	"github.com/stateline/stateline-api/types/api/responses"
)

// ProfileHandler exposes nexus profile and activity management
type ProfileHandler struct {
	common *CommonServices
}

// NewProfileHandler creates a handler with interface dependencies
func NewProfileHandler(common *CommonServices) *ProfileHandler {
	return &ProfileHandler{common: common}
}

// CreateProfile persists a new nexus profile.
func (h *ProfileHandler) CreateProfile(c *gin.Context) {
	var req requests.CreateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	workspaceID, err := uuid.Parse(req.WorkspaceID)
	if err != nil {
		sendError(c, http.StatusBadRequest, "Invalid workspace ID", err)
		return
	}
	if err := helpers.ValidateStateCode(req.HomeState); err != nil {
		sendError(c, http.StatusBadRequest, err.Error(), err)
		return
	}

	profile, err := h.common.ProfileService.CreateProfile(c.Request.Context(), workspaceID, req.BusinessName, req.HomeState, req.TaxYear)
	if err != nil {
		sendError(c, http.StatusInternalServerError, "Failed to create profile", err)
		return
	}
	sendSuccess(c, http.StatusCreated, profile)
}

// GetProfile loads one profile by ID.
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	profileID, err := uuid.Parse(c.Param("profile_id"))
	if err != nil {
		sendError(c, http.StatusBadRequest, "Invalid profile ID", err)
		return
	}

	profile, err := h.common.ProfileService.GetProfile(c.Request.Context(), profileID)
	if err != nil {
		handleDBError(c, err, "Profile not found")
		return
	}
	sendSuccess(c, http.StatusOK, profile)
}

// ListProfiles lists all profiles in a workspace.
func (h *ProfileHandler) ListProfiles(c *gin.Context) {
	workspaceID, err := uuid.Parse(c.Query("workspace_id"))
	if err != nil {
		sendError(c, http.StatusBadRequest, "Invalid workspace ID", err)
		return
	}

	profiles, err := h.common.ProfileService.ListProfiles(c.Request.Context(), workspaceID)
	if err != nil {
		sendError(c, http.StatusInternalServerError, "Failed to list profiles", err)
		return
	}
	sendList(c, profiles)
}

// DeleteProfile removes a profile along with its activities and stored
// returns.
func (h *ProfileHandler) DeleteProfile(c *gin.Context) {
	profileID, err := uuid.Parse(c.Param("profile_id"))
	if err != nil {
		sendError(c, http.StatusBadRequest, "Invalid profile ID", err)
		return
	}

	if err := h.common.ProfileService.DeleteProfile(c.Request.Context(), profileID); err != nil {
		sendError(c, http.StatusInternalServerError, "Failed to delete profile", err)
		return
	}
	sendSuccess(c, http.StatusOK, SuccessResponse{Message: "Profile deleted"})
}

// RecordActivity appends a business activity to a profile.
func (h *ProfileHandler) RecordActivity(c *gin.Context) {
	profileID, err := uuid.Parse(c.Param("profile_id"))
	if err != nil {
		sendError(c, http.StatusBadRequest, "Invalid profile ID", err)
		return
	}

	var payload requests.ActivityPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		sendError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	activity, err := toActivityRecord(payload)
	if err != nil {
		sendError(c, http.StatusBadRequest, err.Error(), err)
		return
	}
	activity.ProfileID = profileID

	stored, err := h.common.ProfileService.RecordActivity(c.Request.Context(), activity)
	if err != nil {
		handleDBError(c, err, "Profile not found")
		return
	}
	sendSuccess(c, http.StatusCreated, stored)
}

// ListActivities lists the activities recorded under a profile.
func (h *ProfileHandler) ListActivities(c *gin.Context) {
	profileID, err := uuid.Parse(c.Param("profile_id"))
	if err != nil {
		sendError(c, http.StatusBadRequest, "Invalid profile ID", err)
		return
	}

	activities, err := h.common.ProfileService.ListActivities(c.Request.Context(), profileID)
	if err != nil {
		sendError(c, http.StatusInternalServerError, "Failed to list activities", err)
		return
	}
	sendList(c, activities)
}

// AnalyzeProfile runs the full nexus evaluation for a profile using its
// stored activities plus the supplied financials.
func (h *ProfileHandler) AnalyzeProfile(c *gin.Context) {
	profileID, err := uuid.Parse(c.Param("profile_id"))
	if err != nil {
		sendError(c, http.StatusBadRequest, "Invalid profile ID", err)
		return
	}

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
	financials, err := toFinancials(req.Financials)
	if err != nil {
		sendError(c, http.StatusBadRequest, err.Error(), err)
		return
	}

	statuses, err := h.common.ProfileService.AnalyzeProfile(c.Request.Context(), profileID, financials, asOfDate)
	if err != nil {
		handleDBError(c, err, "Profile not found")
		return
	}
	sendSuccess(c, http.StatusOK, responses.NexusStatusResponse{
		Statuses: statuses,
		AsOfDate: req.AsOfDate,
	})
}

package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stateline/stateline-api/db"
	"github.com/stateline/stateline-api/helpers"
	"github.com/stateline/stateline-api/interfaces"
	"github.com/stateline/stateline-api/logger"
	"github.com/stateline/stateline-api/stateconfig"
	"github.com/stateline/stateline-api/types/api/params"
	"github.com/stateline/stateline-api/types/api/requests"
	"github.com/stateline/stateline-api/types/business"
	"go.uber.org/zap"
)

// dateLayout is the wire format for dates in request payloads.
const dateLayout = "2006-01-02"

// CommonServices holds shared dependencies used across handlers
type CommonServices struct {
	db       db.Querier
	registry *stateconfig.Registry
	logger   *zap.Logger

	NexusService         interfaces.NexusService
	ApportionmentService interfaces.ApportionmentService
	ReturnService        interfaces.MultistateReturnService
	ProfileService       interfaces.ProfileService
}

// CommonServicesConfig contains all dependencies needed to create CommonServices
type CommonServicesConfig struct {
	DB       db.Querier
	Registry *stateconfig.Registry
	Logger   *zap.Logger

	NexusService         interfaces.NexusService
	ApportionmentService interfaces.ApportionmentService
	ReturnService        interfaces.MultistateReturnService
	ProfileService       interfaces.ProfileService
}

// NewCommonServices creates a new instance of CommonServices
func NewCommonServices(config CommonServicesConfig) *CommonServices {
	if config.Logger == nil {
		config.Logger = logger.Log
	}
	return &CommonServices{
		db:                   config.DB,
		registry:             config.Registry,
		logger:               config.Logger,
		NexusService:         config.NexusService,
		ApportionmentService: config.ApportionmentService,
		ReturnService:        config.ReturnService,
		ProfileService:       config.ProfileService,
	}
}

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// SuccessResponse represents a standard success response
type SuccessResponse struct {
	Message string `json:"message"`
}

// sendError logs the error and sends a JSON error response with the
// correlation ID for debugging.
func sendError(c *gin.Context, statusCode int, message string, err error) {
	correlationID := ""
	if id, exists := c.Get("correlationID"); exists {
		correlationID, _ = id.(string)
	}

	logger.Error(message,
		zap.Error(err),
		zap.String("path", c.Request.URL.Path),
		zap.String("method", c.Request.Method),
		zap.String("correlation_id", correlationID),
	)

	response := struct {
		Error         string `json:"error"`
		CorrelationID string `json:"correlation_id,omitempty"`
	}{
		Error:         message,
		CorrelationID: correlationID,
	}
	c.JSON(statusCode, response)
}

// handleDBError maps database errors onto HTTP status codes.
func handleDBError(c *gin.Context, err error, notFoundMsg string) {
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		sendError(c, http.StatusNotFound, notFoundMsg, err)
	default:
		sendError(c, http.StatusInternalServerError, "Internal server error", err)
	}
}

// sendSuccess sends a success response
func sendSuccess(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, data)
}

// sendList sends a list response
func sendList(c *gin.Context, items interface{}) {
	c.JSON(http.StatusOK, gin.H{
		"object": "list",
		"data":   items,
	})
}

// parseDate parses an ISO date from a request payload.
func parseDate(field, value string) (time.Time, error) {
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, errors.Wrapf(err, "invalid date for %s, expected YYYY-MM-DD", field)
	}
	return t, nil
}

// toFinancials converts the inbound payload into engine financials after
// boundary validation: well-formed state codes, non-negative amounts.
func toFinancials(payload requests.FinancialsPayload) (params.BusinessFinancials, error) {
	financials := params.BusinessFinancials{
		StateSales:        payload.StateSales,
		StateTransactions: payload.StateTransactions,
		StatePayroll:      payload.StatePayroll,
		StateProperty:     payload.StateProperty,
	}
	if financials.StateSales == nil {
		financials.StateSales = map[string]decimal.Decimal{}
	}
	if financials.StateTransactions == nil {
		financials.StateTransactions = map[string]int64{}
	}
	if financials.StatePayroll == nil {
		financials.StatePayroll = map[string]decimal.Decimal{}
	}
	if financials.StateProperty == nil {
		financials.StateProperty = map[string]decimal.Decimal{}
	}

	for _, entries := range []map[string]decimal.Decimal{financials.StateSales, financials.StatePayroll, financials.StateProperty} {
		for stateCode, amount := range entries {
			if err := helpers.ValidateStateCode(stateCode); err != nil {
				return params.BusinessFinancials{}, err
			}
			if err := helpers.ValidateNonNegative("amount for "+stateCode, amount); err != nil {
				return params.BusinessFinancials{}, err
			}
		}
	}
	for stateCode, count := range financials.StateTransactions {
		if err := helpers.ValidateStateCode(stateCode); err != nil {
			return params.BusinessFinancials{}, err
		}
		if err := helpers.ValidateNonNegativeCount("transactions for "+stateCode, count); err != nil {
			return params.BusinessFinancials{}, err
		}
	}
	return financials, nil
}

// toActivities converts inbound activity payloads into engine records.
func toActivities(payloads []requests.ActivityPayload) ([]business.BusinessActivity, error) {
	activities := make([]business.BusinessActivity, 0, len(payloads))
	for _, payload := range payloads {
		activity, err := toActivityRecord(payload)
		if err != nil {
			return nil, err
		}
		activities = append(activities, activity)
	}
	return activities, nil
}

func toActivityRecord(payload requests.ActivityPayload) (business.BusinessActivity, error) {
	activityType := business.ActivityType(payload.ActivityType)
	if !activityType.IsValid() {
		return business.BusinessActivity{}, errors.Errorf("unknown activity type: %q", payload.ActivityType)
	}
	if err := helpers.ValidateStateCode(payload.StateCode); err != nil {
		return business.BusinessActivity{}, err
	}

	startDate, err := parseDate("start_date", payload.StartDate)
	if err != nil {
		return business.BusinessActivity{}, err
	}

	activity := business.BusinessActivity{
		ActivityType: activityType,
		StateCode:    payload.StateCode,
		StartDate:    startDate,
		Description:  payload.Description,
		AnnualValue:  payload.AnnualValue,
	}
	if payload.EndDate != nil {
		endDate, err := parseDate("end_date", *payload.EndDate)
		if err != nil {
			return business.BusinessActivity{}, err
		}
		if endDate.Before(startDate) {
			return business.BusinessActivity{}, errors.New("end_date must not precede start_date")
		}
		activity.EndDate = &endDate
	}
	if activity.AnnualValue != nil {
		if err := helpers.ValidateNonNegative("annual_value", *activity.AnnualValue); err != nil {
			return business.BusinessActivity{}, err
		}
	}
	return activity, nil
}

// toBusinessData converts the inbound snapshot into engine business data
// after boundary validation.
func toBusinessData(req requests.MultistateBusinessDataRequest) (params.MultistateBusinessData, error) {
	for _, stateCode := range req.States {
		if err := helpers.ValidateStateCode(stateCode); err != nil {
			return params.MultistateBusinessData{}, err
		}
	}
	totals := map[string]decimal.Decimal{
		"total_sales":    req.TotalSales,
		"total_payroll":  req.TotalPayroll,
		"total_property": req.TotalProperty,
		"nowhere_sales":  req.NowhereSales,
	}
	for field, amount := range totals {
		if err := helpers.ValidateNonNegative(field, amount); err != nil {
			return params.MultistateBusinessData{}, err
		}
	}

	calculationDate, err := parseDate("calculation_date", req.CalculationDate)
	if err != nil {
		return params.MultistateBusinessData{}, err
	}

	data := params.MultistateBusinessData{
		States:          req.States,
		TotalSales:      req.TotalSales,
		TotalPayroll:    req.TotalPayroll,
		TotalProperty:   req.TotalProperty,
		TotalIncome:     req.TotalIncome,
		NowhereSales:    req.NowhereSales,
		StateSales:      req.StateSales,
		StatePayroll:    req.StatePayroll,
		StateProperty:   req.StateProperty,
		CalculationDate: calculationDate,
		TaxYear:         req.TaxYear,
	}
	if data.StateSales == nil {
		data.StateSales = map[string]decimal.Decimal{}
	}
	if data.StatePayroll == nil {
		data.StatePayroll = map[string]decimal.Decimal{}
	}
	if data.StateProperty == nil {
		data.StateProperty = map[string]decimal.Decimal{}
	}
	for _, entries := range []map[string]decimal.Decimal{data.StateSales, data.StatePayroll, data.StateProperty} {
		for stateCode, amount := range entries {
			if err := helpers.ValidateStateCode(stateCode); err != nil {
				return params.MultistateBusinessData{}, err
			}
			if err := helpers.ValidateNonNegative("amount for "+stateCode, amount); err != nil {
				return params.MultistateBusinessData{}, err
			}
		}
	}
	return data, nil
}

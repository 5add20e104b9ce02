package responses

import (
	"github.com/stateline/stateline-api/types/business"
)

// NexusStatusResponse is the full per-state, per-tax-type nexus evaluation.
type NexusStatusResponse struct {
	Statuses map[string]map[business.TaxType]business.NexusStatus `json:"statuses"`
	AsOfDate string                                               `json:"as_of_date"`
}

// ThresholdMonitorResponse lists proximity warnings per state.
type ThresholdMonitorResponse struct {
	Warnings map[string][]business.ThresholdProximityWarning `json:"warnings"`
}

// ValidationResponse carries advisory warnings from any validation surface.
type ValidationResponse struct {
	Warnings []business.ValidationWarning `json:"warnings"`
}

// ApportionmentResponse is the computed factor breakdown plus its advisory
// warnings. Warnings never block the computation.
type ApportionmentResponse struct {
	Factors  business.ApportionmentFactors `json:"factors"`
	Warnings []business.ValidationWarning  `json:"validation_warnings"`
}

// StateConfigResponse exposes a single state's threshold configuration.
type StateConfigResponse struct {
	Config business.StateThresholdConfig `json:"config"`
}

// StateConfigListResponse exposes the full configured rule table.
type StateConfigListResponse struct {
	States map[string]business.StateThresholdConfig `json:"states"`
	Count  int                                      `json:"count"`
}

// Package stateconfig holds the per-state threshold and apportionment rule
// table. The registry is built once at startup and read-only afterward, so a
// single instance is safe to share across goroutines without locking.
package stateconfig

import (
	"fmt"
	"io"
	"os"

	"github.com/shopspring/decimal"
	"github.com/stateline/stateline-api/types/business"
	"gopkg.in/yaml.v3"
)

// Registry is an immutable lookup of per-state threshold configuration,
// keyed by 2-letter state code.
type Registry struct {
	configs map[string]business.StateThresholdConfig
}

// NewRegistry builds a registry from the embedded default state table.
func NewRegistry() *Registry {
	configs := make(map[string]business.StateThresholdConfig, len(defaultConfigs))
	for _, c := range defaultConfigs {
		configs[c.StateCode] = c
	}
	return &Registry{configs: configs}
}

// NewRegistryFromYAML builds a registry from the defaults, then merges
// operator-supplied override rows from a YAML file. Override rows replace
// the default row for their state code wholesale.
func NewRegistryFromYAML(path string) (*Registry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open state config overrides: %w", err)
	}
	defer f.Close()
	return newRegistryFromReader(f)
}

// overrideRow is the YAML shape of one override entry. Monetary amounts are
// strings in the file and parsed as decimals; malformed values are rejected,
// never coerced.
type overrideRow struct {
	StateCode            string `yaml:"state_code"`
	StateName            string `yaml:"state_name"`
	SalesThreshold       string `yaml:"sales_threshold"`
	TransactionThreshold *int64 `yaml:"transaction_threshold"`

	IncomeTaxThresholds struct {
		Sales    string `yaml:"sales"`
		Property string `yaml:"property"`
		Payroll  string `yaml:"payroll"`
	} `yaml:"income_tax_thresholds"`

	ApportionmentMethod string `yaml:"apportionment_method"`
	FactorWeights       struct {
		Sales    string `yaml:"sales"`
		Payroll  string `yaml:"payroll"`
		Property string `yaml:"property"`
	} `yaml:"factor_weights"`
	ThrowbackRule string `yaml:"throwback_rule"`

	MandatesCombinedFiling bool `yaml:"mandates_combined_filing"`
}

func (row overrideRow) toConfig() (business.StateThresholdConfig, error) {
	config := business.StateThresholdConfig{
		StateCode:              row.StateCode,
		StateName:              row.StateName,
		TransactionThreshold:   row.TransactionThreshold,
		ApportionmentMethod:    business.ApportionmentMethod(row.ApportionmentMethod),
		ThrowbackRule:          business.ThrowbackRule(row.ThrowbackRule),
		MandatesCombinedFiling: row.MandatesCombinedFiling,
	}
	if config.ThrowbackRule == "" {
		config.ThrowbackRule = business.ThrowbackRuleNone
	}

	var err error
	if config.SalesThreshold, err = parseOptionalAmount(row.StateCode, "sales_threshold", row.SalesThreshold); err != nil {
		return config, err
	}
	if config.IncomeTaxThresholds.Sales, err = parseOptionalAmount(row.StateCode, "income_tax_thresholds.sales", row.IncomeTaxThresholds.Sales); err != nil {
		return config, err
	}
	if config.IncomeTaxThresholds.Property, err = parseOptionalAmount(row.StateCode, "income_tax_thresholds.property", row.IncomeTaxThresholds.Property); err != nil {
		return config, err
	}
	if config.IncomeTaxThresholds.Payroll, err = parseOptionalAmount(row.StateCode, "income_tax_thresholds.payroll", row.IncomeTaxThresholds.Payroll); err != nil {
		return config, err
	}

	if config.FactorWeights.Sales, err = parseWeight(row.StateCode, "sales", row.FactorWeights.Sales); err != nil {
		return config, err
	}
	if config.FactorWeights.Payroll, err = parseWeight(row.StateCode, "payroll", row.FactorWeights.Payroll); err != nil {
		return config, err
	}
	if config.FactorWeights.Property, err = parseWeight(row.StateCode, "property", row.FactorWeights.Property); err != nil {
		return config, err
	}
	return config, nil
}

func parseOptionalAmount(stateCode, field, value string) (*decimal.Decimal, error) {
	if value == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return nil, fmt.Errorf("state %s: invalid %s %q: %w", stateCode, field, value, err)
	}
	return &d, nil
}

func parseWeight(stateCode, field, value string) (decimal.Decimal, error) {
	if value == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("state %s: invalid %s weight %q: %w", stateCode, field, value, err)
	}
	return d, nil
}

func newRegistryFromReader(r io.Reader) (*Registry, error) {
	var overrides struct {
		States []overrideRow `yaml:"states"`
	}
	if err := yaml.NewDecoder(r).Decode(&overrides); err != nil {
		return nil, fmt.Errorf("failed to parse state config overrides: %w", err)
	}

	registry := NewRegistry()
	for _, row := range overrides.States {
		if row.StateCode == "" {
			return nil, fmt.Errorf("state config override missing state_code")
		}
		c, err := row.toConfig()
		if err != nil {
			return nil, err
		}
		if err := validateConfig(c); err != nil {
			return nil, err
		}
		registry.configs[c.StateCode] = c
	}
	return registry, nil
}

// validateConfig enforces the weight invariants on a configured row:
// weights are non-negative and at least one is positive.
func validateConfig(c business.StateThresholdConfig) error {
	w := c.FactorWeights
	if w.Sales.IsNegative() || w.Payroll.IsNegative() || w.Property.IsNegative() {
		return fmt.Errorf("state %s: factor weights must be non-negative", c.StateCode)
	}
	if !w.Total().IsPositive() {
		return fmt.Errorf("state %s: at least one factor weight must be positive", c.StateCode)
	}
	return nil
}

// GetConfig returns the configuration for a state, if one exists.
func (r *Registry) GetConfig(stateCode string) (business.StateThresholdConfig, bool) {
	c, ok := r.configs[stateCode]
	return c, ok
}

// ConfigOrDefault returns the configuration for a state, falling back to an
// equally weighted, no-throwback default for unconfigured jurisdictions.
// Unknown states are not an error; no special rule applies to them.
func (r *Registry) ConfigOrDefault(stateCode string) business.StateThresholdConfig {
	if c, ok := r.configs[stateCode]; ok {
		return c
	}
	third := decimal.New(1, 0).DivRound(decimal.New(3, 0), 6)
	return business.StateThresholdConfig{
		StateCode:           stateCode,
		ApportionmentMethod: business.MethodEquallyWeighted,
		FactorWeights: business.FactorWeights{
			Sales:    third,
			Payroll:  third,
			Property: third,
		},
		ThrowbackRule: business.ThrowbackRuleNone,
	}
}

// All returns every configured state row, keyed by state code. The returned
// map is a copy; mutating it does not affect the registry.
func (r *Registry) All() map[string]business.StateThresholdConfig {
	out := make(map[string]business.StateThresholdConfig, len(r.configs))
	for k, v := range r.configs {
		out[k] = v
	}
	return out
}

// IsKnownState reports whether the 2-letter code is in the configured table.
func (r *Registry) IsKnownState(stateCode string) bool {
	_, ok := r.configs[stateCode]
	return ok
}

package stateconfig

import (
	"github.com/shopspring/decimal"
	"github.com/stateline/stateline-api/types/business"
)

func amount(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func count(n int64) *int64 {
	return &n
}

func weights(sales, payroll, property string) business.FactorWeights {
	return business.FactorWeights{
		Sales:    decimal.RequireFromString(sales),
		Payroll:  decimal.RequireFromString(payroll),
		Property: decimal.RequireFromString(property),
	}
}

var (
	singleSales    = weights("1", "0", "0")
	equalThree     = weights("1", "1", "1")
	doubleWeighted = weights("0.5", "0.25", "0.25")
)

// factorPresence is the common factor-presence threshold set used by states
// that adopted the MTC model statute amounts.
func factorPresence(sales, property, payroll string) business.IncomeTaxThresholds {
	return business.IncomeTaxThresholds{
		Sales:    amount(sales),
		Property: amount(property),
		Payroll:  amount(payroll),
	}
}

func salesOnlyPresence(sales string) business.IncomeTaxThresholds {
	return business.IncomeTaxThresholds{Sales: amount(sales)}
}

// defaultConfigs is the embedded default rule table for all fifty states plus
// DC. States with both sales-tax thresholds absent levy no sales tax at all
// (AK, DE, MT, NH, OR). Threshold amounts are the commonly adopted
// post-Wayfair economic nexus levels; operators can override any row via the
// YAML override file.
var defaultConfigs = []business.StateThresholdConfig{
	{StateCode: "AL", StateName: "Alabama", SalesThreshold: amount("250000"), ApportionmentMethod: business.MethodDoubleWeightedSales, FactorWeights: doubleWeighted, ThrowbackRule: business.ThrowbackRuleThrowback},
	{StateCode: "AK", StateName: "Alaska", ApportionmentMethod: business.MethodEquallyWeighted, FactorWeights: equalThree, ThrowbackRule: business.ThrowbackRuleThrowback},
	{StateCode: "AZ", StateName: "Arizona", SalesThreshold: amount("100000"), ApportionmentMethod: business.MethodSingleSalesFactor, FactorWeights: singleSales, ThrowbackRule: business.ThrowbackRuleNone},
	{StateCode: "AR", StateName: "Arkansas", SalesThreshold: amount("100000"), TransactionThreshold: count(200), ApportionmentMethod: business.MethodDoubleWeightedSales, FactorWeights: doubleWeighted, ThrowbackRule: business.ThrowbackRuleThrowback},
	{StateCode: "CA", StateName: "California", SalesThreshold: amount("500000"), IncomeTaxThresholds: factorPresence("500000", "50000", "50000"), ApportionmentMethod: business.MethodSingleSalesFactor, FactorWeights: singleSales, ThrowbackRule: business.ThrowbackRuleThrowback, MandatesCombinedFiling: true},
	{StateCode: "CO", StateName: "Colorado", SalesThreshold: amount("100000"), IncomeTaxThresholds: factorPresence("500000", "50000", "50000"), ApportionmentMethod: business.MethodSingleSalesFactor, FactorWeights: singleSales, ThrowbackRule: business.ThrowbackRuleThrowback},
	{StateCode: "CT", StateName: "Connecticut", SalesThreshold: amount("100000"), TransactionThreshold: count(200), IncomeTaxThresholds: salesOnlyPresence("500000"), ApportionmentMethod: business.MethodSingleSalesFactor, FactorWeights: singleSales, ThrowbackRule: business.ThrowbackRuleNone, MandatesCombinedFiling: true},
	{StateCode: "DE", StateName: "Delaware", ApportionmentMethod: business.MethodEquallyWeighted, FactorWeights: equalThree, ThrowbackRule: business.ThrowbackRuleNone},
	{StateCode: "DC", StateName: "District of Columbia", SalesThreshold: amount("100000"), TransactionThreshold: count(200), ApportionmentMethod: business.MethodSingleSalesFactor, FactorWeights: singleSales, ThrowbackRule: business.ThrowbackRuleThrowback, MandatesCombinedFiling: true},
	{StateCode: "FL", StateName: "Florida", SalesThreshold: amount("100000"), ApportionmentMethod: business.MethodDoubleWeightedSales, FactorWeights: doubleWeighted, ThrowbackRule: business.ThrowbackRuleNone},
	{StateCode: "GA", StateName: "Georgia", SalesThreshold: amount("100000"), TransactionThreshold: count(200), ApportionmentMethod: business.MethodSingleSalesFactor, FactorWeights: singleSales, ThrowbackRule: business.ThrowbackRuleNone},
	{StateCode: "HI", StateName: "Hawaii", SalesThreshold: amount("100000"), TransactionThreshold: count(200), ApportionmentMethod: business.MethodEquallyWeighted, FactorWeights: equalThree, ThrowbackRule: business.ThrowbackRuleThrowback},
	{StateCode: "ID", StateName: "Idaho", SalesThreshold: amount("100000"), ApportionmentMethod: business.MethodDoubleWeightedSales, FactorWeights: doubleWeighted, ThrowbackRule: business.ThrowbackRuleThrowback},
	{StateCode: "IL", StateName: "Illinois", SalesThreshold: amount("100000"), TransactionThreshold: count(200), ApportionmentMethod: business.MethodSingleSalesFactor, FactorWeights: singleSales, ThrowbackRule: business.ThrowbackRuleThrowback, MandatesCombinedFiling: true},
	{StateCode: "IN", StateName: "Indiana", SalesThreshold: amount("100000"), TransactionThreshold: count(200), ApportionmentMethod: business.MethodSingleSalesFactor, FactorWeights: singleSales, ThrowbackRule: business.ThrowbackRuleNone},
	{StateCode: "IA", StateName: "Iowa", SalesThreshold: amount("100000"), ApportionmentMethod: business.MethodSingleSalesFactor, FactorWeights: singleSales, ThrowbackRule: business.ThrowbackRuleNone},
	{StateCode: "KS", StateName: "Kansas", SalesThreshold: amount("100000"), ApportionmentMethod: business.MethodEquallyWeighted, FactorWeights: equalThree, ThrowbackRule: business.ThrowbackRuleThrowback},
	{StateCode: "KY", StateName: "Kentucky", SalesThreshold: amount("100000"), TransactionThreshold: count(200), ApportionmentMethod: business.MethodSingleSalesFactor, FactorWeights: singleSales, ThrowbackRule: business.ThrowbackRuleNone},
	{StateCode: "LA", StateName: "Louisiana", SalesThreshold: amount("100000"), ApportionmentMethod: business.MethodSingleSalesFactor, FactorWeights: singleSales, ThrowbackRule: business.ThrowbackRuleNone},
	{StateCode: "ME", StateName: "Maine", SalesThreshold: amount("100000"), ApportionmentMethod: business.MethodSingleSalesFactor, FactorWeights: singleSales, ThrowbackRule: business.ThrowbackRuleThrowout},
	{StateCode: "MD", StateName: "Maryland", SalesThreshold: amount("100000"), TransactionThreshold: count(200), ApportionmentMethod: business.MethodSingleSalesFactor, FactorWeights: singleSales, ThrowbackRule: business.ThrowbackRuleNone},
	{StateCode: "MA", StateName: "Massachusetts", SalesThreshold: amount("100000"), IncomeTaxThresholds: salesOnlyPresence("500000"), ApportionmentMethod: business.MethodDoubleWeightedSales, FactorWeights: doubleWeighted, ThrowbackRule: business.ThrowbackRuleNone},
	{StateCode: "MI", StateName: "Michigan", SalesThreshold: amount("100000"), TransactionThreshold: count(200), IncomeTaxThresholds: salesOnlyPresence("350000"), ApportionmentMethod: business.MethodSingleSalesFactor, FactorWeights: singleSales, ThrowbackRule: business.ThrowbackRuleNone, MandatesCombinedFiling: true},
	{StateCode: "MN", StateName: "Minnesota", SalesThreshold: amount("100000"), TransactionThreshold: count(200), ApportionmentMethod: business.MethodSingleSalesFactor, FactorWeights: singleSales, ThrowbackRule: business.ThrowbackRuleNone, MandatesCombinedFiling: true},
	{StateCode: "MS", StateName: "Mississippi", SalesThreshold: amount("250000"), ApportionmentMethod: business.MethodEquallyWeighted, FactorWeights: equalThree, ThrowbackRule: business.ThrowbackRuleThrowback},
	{StateCode: "MO", StateName: "Missouri", SalesThreshold: amount("100000"), ApportionmentMethod: business.MethodSingleSalesFactor, FactorWeights: singleSales, ThrowbackRule: business.ThrowbackRuleThrowback},
	{StateCode: "MT", StateName: "Montana", ApportionmentMethod: business.MethodEquallyWeighted, FactorWeights: equalThree, ThrowbackRule: business.ThrowbackRuleThrowback, MandatesCombinedFiling: true},
	{StateCode: "NE", StateName: "Nebraska", SalesThreshold: amount("100000"), TransactionThreshold: count(200), ApportionmentMethod: business.MethodSingleSalesFactor, FactorWeights: singleSales, ThrowbackRule: business.ThrowbackRuleNone},
	{StateCode: "NV", StateName: "Nevada", SalesThreshold: amount("100000"), TransactionThreshold: count(200), ApportionmentMethod: business.MethodSingleSalesFactor, FactorWeights: singleSales, ThrowbackRule: business.ThrowbackRuleNone},
	{StateCode: "NH", StateName: "New Hampshire", ApportionmentMethod: business.MethodDoubleWeightedSales, FactorWeights: doubleWeighted, ThrowbackRule: business.ThrowbackRuleThrowback},
	{StateCode: "NJ", StateName: "New Jersey", SalesThreshold: amount("100000"), TransactionThreshold: count(200), ApportionmentMethod: business.MethodSingleSalesFactor, FactorWeights: singleSales, ThrowbackRule: business.ThrowbackRuleThrowout, MandatesCombinedFiling: true},
	{StateCode: "NM", StateName: "New Mexico", SalesThreshold: amount("100000"), ApportionmentMethod: business.MethodSingleSalesFactor, FactorWeights: singleSales, ThrowbackRule: business.ThrowbackRuleNone},
	{StateCode: "NY", StateName: "New York", SalesThreshold: amount("500000"), TransactionThreshold: count(100), IncomeTaxThresholds: salesOnlyPresence("1000000"), ApportionmentMethod: business.MethodSingleSalesFactor, FactorWeights: singleSales, ThrowbackRule: business.ThrowbackRuleNone, MandatesCombinedFiling: true},
	{StateCode: "NC", StateName: "North Carolina", SalesThreshold: amount("100000"), TransactionThreshold: count(200), ApportionmentMethod: business.MethodSingleSalesFactor, FactorWeights: singleSales, ThrowbackRule: business.ThrowbackRuleNone},
	{StateCode: "ND", StateName: "North Dakota", SalesThreshold: amount("100000"), ApportionmentMethod: business.MethodEquallyWeighted, FactorWeights: equalThree, ThrowbackRule: business.ThrowbackRuleThrowback},
	{StateCode: "OH", StateName: "Ohio", SalesThreshold: amount("100000"), TransactionThreshold: count(200), IncomeTaxThresholds: factorPresence("500000", "50000", "50000"), ApportionmentMethod: business.MethodSingleSalesFactor, FactorWeights: singleSales, ThrowbackRule: business.ThrowbackRuleNone},
	{StateCode: "OK", StateName: "Oklahoma", SalesThreshold: amount("100000"), ApportionmentMethod: business.MethodEquallyWeighted, FactorWeights: equalThree, ThrowbackRule: business.ThrowbackRuleThrowback},
	{StateCode: "OR", StateName: "Oregon", ApportionmentMethod: business.MethodSingleSalesFactor, FactorWeights: singleSales, ThrowbackRule: business.ThrowbackRuleThrowback, MandatesCombinedFiling: true},
	{StateCode: "PA", StateName: "Pennsylvania", SalesThreshold: amount("100000"), ApportionmentMethod: business.MethodDoubleWeightedSales, FactorWeights: doubleWeighted, ThrowbackRule: business.ThrowbackRuleThrowback},
	{StateCode: "RI", StateName: "Rhode Island", SalesThreshold: amount("100000"), TransactionThreshold: count(200), ApportionmentMethod: business.MethodSingleSalesFactor, FactorWeights: singleSales, ThrowbackRule: business.ThrowbackRuleNone, MandatesCombinedFiling: true},
	{StateCode: "SC", StateName: "South Carolina", SalesThreshold: amount("100000"), ApportionmentMethod: business.MethodSingleSalesFactor, FactorWeights: singleSales, ThrowbackRule: business.ThrowbackRuleNone},
	{StateCode: "SD", StateName: "South Dakota", SalesThreshold: amount("100000"), TransactionThreshold: count(200), ApportionmentMethod: business.MethodEquallyWeighted, FactorWeights: equalThree, ThrowbackRule: business.ThrowbackRuleNone},
	{StateCode: "TN", StateName: "Tennessee", SalesThreshold: amount("100000"), IncomeTaxThresholds: factorPresence("500000", "50000", "50000"), ApportionmentMethod: business.MethodSingleSalesFactor, FactorWeights: singleSales, ThrowbackRule: business.ThrowbackRuleNone},
	{StateCode: "TX", StateName: "Texas", SalesThreshold: amount("500000"), IncomeTaxThresholds: salesOnlyPresence("500000"), ApportionmentMethod: business.MethodSingleSalesFactor, FactorWeights: singleSales, ThrowbackRule: business.ThrowbackRuleNone, MandatesCombinedFiling: true},
	{StateCode: "UT", StateName: "Utah", SalesThreshold: amount("100000"), TransactionThreshold: count(200), ApportionmentMethod: business.MethodSingleSalesFactor, FactorWeights: singleSales, ThrowbackRule: business.ThrowbackRuleThrowback},
	{StateCode: "VT", StateName: "Vermont", SalesThreshold: amount("100000"), TransactionThreshold: count(200), ApportionmentMethod: business.MethodDoubleWeightedSales, FactorWeights: doubleWeighted, ThrowbackRule: business.ThrowbackRuleThrowback, MandatesCombinedFiling: true},
	{StateCode: "VA", StateName: "Virginia", SalesThreshold: amount("100000"), TransactionThreshold: count(200), ApportionmentMethod: business.MethodDoubleWeightedSales, FactorWeights: doubleWeighted, ThrowbackRule: business.ThrowbackRuleNone},
	{StateCode: "WA", StateName: "Washington", SalesThreshold: amount("100000"), IncomeTaxThresholds: salesOnlyPresence("500000"), ApportionmentMethod: business.MethodSingleSalesFactor, FactorWeights: singleSales, ThrowbackRule: business.ThrowbackRuleNone},
	{StateCode: "WV", StateName: "West Virginia", SalesThreshold: amount("100000"), TransactionThreshold: count(200), ApportionmentMethod: business.MethodDoubleWeightedSales, FactorWeights: doubleWeighted, ThrowbackRule: business.ThrowbackRuleNone, MandatesCombinedFiling: true},
	{StateCode: "WI", StateName: "Wisconsin", SalesThreshold: amount("100000"), ApportionmentMethod: business.MethodSingleSalesFactor, FactorWeights: singleSales, ThrowbackRule: business.ThrowbackRuleThrowback, MandatesCombinedFiling: true},
	{StateCode: "WY", StateName: "Wyoming", SalesThreshold: amount("100000"), TransactionThreshold: count(200), ApportionmentMethod: business.MethodEquallyWeighted, FactorWeights: equalThree, ThrowbackRule: business.ThrowbackRuleNone},
}

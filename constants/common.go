package constants

// Common string constants used throughout the codebase
const (
	// Log levels
	ErrorLevel = "error"

	// Environments
	ProdEnvironment = "prod"

	// Status written on stored return rows
	ProcessedStatus = "processed"
)

// FactorPrecision is the decimal precision used for apportionment factors.
// Downstream sums are compared against a 100% tolerance band, so this must
// not change without revisiting the validation slack.
const FactorPrecision = 6

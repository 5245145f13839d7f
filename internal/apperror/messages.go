package apperror

// messages maps error codes to human-readable messages
var messages = map[Code]string{
	CodeRequiredField:   "Required field is missing",
	CodeInvalidInput:    "Invalid input provided",
	CodeInvalidFormat:   "Invalid data format",
	CodeNotFound:        "Resource not found",
	CodeValidationError: "Validation error",

	CodeConfigurationError: "Configuration error",

	CodeExternalServiceError: "External service error",
	CodeServiceTimeout:       "Service request timeout",
	CodeServiceUnavailable:   "Service temporarily unavailable",
	CodeRateLimitExceeded:    "Rate limit exceeded",

	CodeInternalError: "Internal server error",
	CodeUnknownError:  "An unknown error occurred",

	// Swap calculation
	CodeInvalidAmount:   "Amount must be a finite number greater than zero",
	CodeUnsupportedPair: "Unsupported token pair",
	CodeUnknownToken:    "Unknown token",
	CodeEmptyPool:       "Pool has no liquidity",
	CodeDivisionByZero:  "Division by zero during swap calculation",
	CodeInvalidPool:     "Invalid pool configuration",

	// Loss analytics
	CodeInvalidPriceRatio:     "Price ratio must be greater than zero",
	CodeInvalidExpectedAmount: "Expected amount must be greater than zero",
	CodeInvalidRawAmount:      "Invalid raw token amount",

	// Endless chain
	CodeUpstreamFailure:    "Upstream pool data unavailable",
	CodeEndlessViewFailed:  "Endless view function call failed",
	CodeInvalidViewPayload: "Invalid view function response",

	CodeTransactionsLoadFailed: "Failed to load transactions",

	CodeCacheMiss: "Cache miss",

	CodeCircuitOpen:     "Circuit breaker is open",
	CodeCircuitHalfOpen: "Circuit breaker is half-open",
}

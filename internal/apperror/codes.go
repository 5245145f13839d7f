package apperror

// Code represents a unique error code for the application
type Code string

// General error codes
const (
	CodeRequiredField   Code = "REQUIRED_FIELD"
	CodeInvalidInput    Code = "INVALID_INPUT"
	CodeInvalidFormat   Code = "INVALID_FORMAT"
	CodeNotFound        Code = "NOT_FOUND"
	CodeValidationError Code = "VALIDATION_ERROR"

	CodeConfigurationError Code = "CONFIGURATION_ERROR"

	// External service errors
	CodeExternalServiceError Code = "EXTERNAL_SERVICE_ERROR"
	CodeServiceTimeout       Code = "SERVICE_TIMEOUT"
	CodeServiceUnavailable   Code = "SERVICE_UNAVAILABLE"
	CodeRateLimitExceeded    Code = "RATE_LIMIT_EXCEEDED"

	// System errors
	CodeInternalError Code = "INTERNAL_ERROR"
	CodeUnknownError  Code = "UNKNOWN_ERROR"
)

// Swap calculation error codes
const (
	CodeInvalidAmount   Code = "INVALID_AMOUNT"
	CodeUnsupportedPair Code = "UNSUPPORTED_PAIR"
	CodeUnknownToken    Code = "UNKNOWN_TOKEN"
	CodeEmptyPool       Code = "EMPTY_POOL"
	CodeDivisionByZero  Code = "DIVISION_BY_ZERO"
	CodeInvalidPool     Code = "INVALID_POOL"

	// Loss analytics
	CodeInvalidPriceRatio     Code = "INVALID_PRICE_RATIO"
	CodeInvalidExpectedAmount Code = "INVALID_EXPECTED_AMOUNT"
	CodeInvalidRawAmount      Code = "INVALID_RAW_AMOUNT"
)

// Endless chain errors
const (
	CodeUpstreamFailure    Code = "UPSTREAM_FAILURE"
	CodeEndlessViewFailed  Code = "ENDLESS_VIEW_FAILED"
	CodeInvalidViewPayload Code = "INVALID_VIEW_PAYLOAD"

	// Transaction store
	CodeTransactionsLoadFailed Code = "TRANSACTIONS_LOAD_FAILED"

	// Cache errors
	CodeCacheMiss Code = "CACHE_MISS"

	// Circuit breaker errors
	CodeCircuitOpen     Code = "CIRCUIT_OPEN"
	CodeCircuitHalfOpen Code = "CIRCUIT_HALF_OPEN"
)

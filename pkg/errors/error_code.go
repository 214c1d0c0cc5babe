package errors

// ErrorCode represents a unique error code for identifying different error types.
type ErrorCode int

const (
	// General errors (1-99)
	ErrCodeUnknown ErrorCode = 1

	// Validation errors (100-199)
	ErrCodeInvalidOrderParameters ErrorCode = 100
	ErrCodeInvalidConfiguration   ErrorCode = 101
	ErrCodeInvalidTradingMode     ErrorCode = 102
	ErrCodeMissingParameter       ErrorCode = 103

	// Data/Resource errors (200-299)
	ErrCodePairNotFound ErrorCode = 200
	ErrCodeBotNotFound  ErrorCode = 201
	ErrCodeDataNotFound ErrorCode = 202

	// Exchange errors (300-399)
	ErrCodeExchangeUnavailable ErrorCode = 300
	ErrCodeExchangeRejected    ErrorCode = 301

	// Trading errors (400-499)
	ErrCodeInsufficientBalance  ErrorCode = 400
	ErrCodeInsufficientPosition ErrorCode = 401

	// Ledger errors (500-599)
	ErrCodePortfolioNotFound ErrorCode = 500
)

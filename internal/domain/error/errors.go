package error

import (
	"errors"
	"fmt"
	"time"
)

// Error codes for standardized API responses
const (
	// 4xxx - Client errors
	CodeInvalidTrnType      = 4001
	CodeInvalidStatus       = 4002
	CodeInvalidAmount       = 4003
	CodeInvalidRow          = 4004
	CodeFutureTradeDate     = 4005
	CodeInvalidCallerRef    = 4006
	CodeConstraintViolation = 4007
	CodeDuplicateTrn        = 4090
	CodeAlreadySettled      = 4091
	CodePortfolioNotFound   = 4040
	CodeAssetNotFound       = 4041
	CodeTrnNotFound         = 4042
	CodeRateUnavailable     = 4220

	// 5xxx - Server errors
	CodeInternalServer = 5000
)

// Base error types
var (
	// ErrInvalidTrnType is returned when the transaction type is not one of the allowed values
	ErrInvalidTrnType = errors.New("invalid transaction type")

	// ErrInvalidStatus is returned when the transaction status is not one of the allowed values
	ErrInvalidStatus = errors.New("invalid transaction status")

	// ErrInvalidAmount is returned when a numeric field cannot be parsed
	ErrInvalidAmount = errors.New("invalid amount format")

	// ErrInvalidRow is returned when an imported row has the wrong shape or unparseable cells
	ErrInvalidRow = errors.New("invalid import row")

	// ErrFutureTradeDate is returned when an imported row is dated after today
	ErrFutureTradeDate = errors.New("trade date cannot be in the future")

	// ErrInvalidCallerRef is returned when a caller reference is malformed
	ErrInvalidCallerRef = errors.New("invalid caller reference")

	// ErrRateUnavailable is returned when no FX rate can be resolved for a currency pair
	ErrRateUnavailable = errors.New("fx rate unavailable")

	// ErrPortfolioNotFound is returned when the requested portfolio doesn't exist
	ErrPortfolioNotFound = errors.New("portfolio not found")

	// ErrAssetNotFound is returned when the requested asset doesn't exist
	ErrAssetNotFound = errors.New("asset not found")

	// ErrTrnNotFound is returned when the requested transaction doesn't exist
	ErrTrnNotFound = errors.New("transaction not found")

	// ErrDuplicateTrn is returned when a transaction with the same caller reference already exists
	ErrDuplicateTrn = errors.New("transaction with this caller reference already exists")

	// ErrAlreadySettled is returned when settling a transaction that is already settled
	ErrAlreadySettled = errors.New("transaction is already settled")

	// ErrInvalidRequest is returned when the request format is invalid
	ErrInvalidRequest = errors.New("invalid request")

	// ErrConstraintViolation is returned when a database constraint is violated
	ErrConstraintViolation = errors.New("database constraint violation")

	// ErrDatabaseConnection is returned when there's a problem connecting to the database
	ErrDatabaseConnection = errors.New("database connection error")

	// ErrDuplicateAsset is returned when trying to create an asset that already exists
	ErrDuplicateAsset = errors.New("asset already exists")

	// ErrInternalServer is returned for unexpected server-side errors
	ErrInternalServer = errors.New("internal server error")

	// ErrNotFound is returned when a generic resource is not found
	ErrNotFound = errors.New("resource not found")
)

// ErrorCode returns standardized error codes for known errors
func ErrorCode(err error) int {
	switch {
	case errors.Is(err, ErrInvalidTrnType):
		return CodeInvalidTrnType
	case errors.Is(err, ErrInvalidStatus):
		return CodeInvalidStatus
	case errors.Is(err, ErrInvalidAmount):
		return CodeInvalidAmount
	case errors.Is(err, ErrFutureTradeDate):
		return CodeFutureTradeDate
	case errors.Is(err, ErrInvalidCallerRef):
		return CodeInvalidCallerRef
	case errors.Is(err, ErrInvalidRow), errors.Is(err, ErrInvalidRequest):
		return CodeInvalidRow
	case errors.Is(err, ErrDuplicateTrn):
		return CodeDuplicateTrn
	case errors.Is(err, ErrAlreadySettled):
		return CodeAlreadySettled
	case errors.Is(err, ErrPortfolioNotFound):
		return CodePortfolioNotFound
	case errors.Is(err, ErrAssetNotFound):
		return CodeAssetNotFound
	case errors.Is(err, ErrTrnNotFound):
		return CodeTrnNotFound
	case errors.Is(err, ErrRateUnavailable):
		return CodeRateUnavailable
	case errors.Is(err, ErrConstraintViolation):
		return CodeConstraintViolation
	default:
		return CodeInternalServer
	}
}

// RateError carries the currency pair and date a rate lookup failed for
type RateError struct {
	From string
	To   string
	AsOf time.Time
	Err  error
}

// Error implements the error interface for RateError
func (e *RateError) Error() string {
	return fmt.Sprintf("rate resolution failed for %s/%s as of %s: %v",
		e.From, e.To, e.AsOf.Format("2006-01-02"), e.Err)
}

// Unwrap returns the underlying error
func (e *RateError) Unwrap() error {
	return e.Err
}

// LogFields returns a map of fields for structured logging
func (e *RateError) LogFields() map[string]any {
	return map[string]any{
		"error_type": "rate_error",
		"from":       e.From,
		"to":         e.To,
		"as_of":      e.AsOf.Format("2006-01-02"),
		"error":      e.Err.Error(),
		"error_code": ErrorCode(e.Err),
	}
}

// NewRateError creates a detailed rate resolution error
func NewRateError(from, to string, asOf time.Time, err error) error {
	return &RateError{From: from, To: to, AsOf: asOf, Err: err}
}

// RowError carries the offending column of a rejected import row
type RowError struct {
	Format string
	Column string
	Value  string
	Err    error
}

// Error implements the error interface for RowError
func (e *RowError) Error() string {
	return fmt.Sprintf("row rejected (format: %s, column: %s, value: %q): %v",
		e.Format, e.Column, e.Value, e.Err)
}

// Unwrap returns the underlying error
func (e *RowError) Unwrap() error {
	return e.Err
}

// LogFields returns a map of fields for structured logging
func (e *RowError) LogFields() map[string]any {
	return map[string]any{
		"error_type": "row_error",
		"format":     e.Format,
		"column":     e.Column,
		"value":      e.Value,
		"error":      e.Err.Error(),
		"error_code": ErrorCode(e.Err),
	}
}

// NewRowError creates a detailed import row error
func NewRowError(format, column, value string, err error) error {
	return &RowError{Format: format, Column: column, Value: value, Err: err}
}

// TrnError represents an error related to transaction processing
type TrnError struct {
	CallerRef   string
	PortfolioID string
	TrnType     string
	Reason      string
	Err         error
}

// Error implements the error interface for TrnError
func (e *TrnError) Error() string {
	return fmt.Sprintf("transaction error for caller ref %s (portfolio: %s, type: %s): %s - %v",
		e.CallerRef, e.PortfolioID, e.TrnType, e.Reason, e.Err)
}

// Unwrap returns the underlying error
func (e *TrnError) Unwrap() error {
	return e.Err
}

// LogFields returns a map of fields for structured logging
func (e *TrnError) LogFields() map[string]any {
	return map[string]any{
		"error_type":   "trn_error",
		"caller_ref":   e.CallerRef,
		"portfolio_id": e.PortfolioID,
		"trn_type":     e.TrnType,
		"reason":       e.Reason,
		"error":        e.Err.Error(),
		"error_code":   ErrorCode(e.Err),
	}
}

// NewTrnError creates a detailed transaction processing error
func NewTrnError(callerRef, portfolioID, trnType, reason string, err error) error {
	return &TrnError{
		CallerRef:   callerRef,
		PortfolioID: portfolioID,
		TrnType:     trnType,
		Reason:      reason,
		Err:         err,
	}
}

// IsNotFoundError checks whether err denotes a missing resource
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrPortfolioNotFound) ||
		errors.Is(err, ErrAssetNotFound) ||
		errors.Is(err, ErrTrnNotFound) ||
		errors.Is(err, ErrNotFound)
}

// IsValidationError checks whether err denotes rejected input
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidTrnType) ||
		errors.Is(err, ErrInvalidStatus) ||
		errors.Is(err, ErrInvalidAmount) ||
		errors.Is(err, ErrInvalidRow) ||
		errors.Is(err, ErrFutureTradeDate) ||
		errors.Is(err, ErrInvalidCallerRef) ||
		errors.Is(err, ErrInvalidRequest)
}

// IsRateUnavailableError checks whether err denotes a failed rate lookup
func IsRateUnavailableError(err error) bool {
	return errors.Is(err, ErrRateUnavailable)
}

// IsDuplicateTrnError checks whether err denotes a replayed caller reference
func IsDuplicateTrnError(err error) bool {
	return errors.Is(err, ErrDuplicateTrn)
}

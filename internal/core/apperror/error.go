// Package apperror defines the structured error type every layer of
// the application returns. The error middleware turns an AppError
// into the JSON body and status of the HTTP response.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Machine-readable error codes.
const (
	CodeInternal = "INTERNAL_ERROR"
	CodeDatabase = "DATABASE_ERROR"
	CodeTimeout  = "TIMEOUT_ERROR"

	CodeValidation   = "VALIDATION_ERROR"
	CodeInvalidInput = "INVALID_INPUT"

	CodeBusinessRule           = "BUSINESS_RULE_VIOLATION"
	CodeInsufficientStock      = "INSUFFICIENT_STOCK"
	CodeDocumentPosted         = "DOCUMENT_ALREADY_POSTED"
	CodeDocumentNotPosted      = "DOCUMENT_NOT_POSTED"
	CodePeriodClosed           = "PERIOD_CLOSED"
	CodeConcurrentModification = "CONCURRENT_MODIFICATION"

	CodePeriodNotFound        = "PERIOD_NOT_FOUND"
	CodeSubPeriodNotFound     = "SUB_PERIOD_NOT_FOUND"
	CodePeriodicAlreadyClosed = "PERIODIC_ALREADY_CLOSED"

	CodeUnauthorized = "UNAUTHORIZED"
	CodeForbidden    = "FORBIDDEN"

	CodeNotFound = "NOT_FOUND"

	CodeConflict    = "CONFLICT"
	CodeDuplicate   = "DUPLICATE_ENTRY"
	CodeIdempotency = "IDEMPOTENCY_CONFLICT"
)

// AppError pairs a code and message with the HTTP status the handler
// should answer with. The wrapped cause never reaches the client.
type AppError struct {
	Code       string         `json:"code"`
	Message    string         `json:"message"`
	Details    map[string]any `json:"details,omitempty"`
	HTTPStatus int            `json:"-"`
	Err        error          `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// WithDetail attaches a key-value pair for the response body.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// WithCause records the underlying error for logging.
func (e *AppError) WithCause(err error) *AppError {
	e.Err = err
	return e
}

func newErr(code, message string, status int) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: status}
}

func NewValidation(message string) *AppError {
	return newErr(CodeValidation, message, http.StatusBadRequest)
}

func NewNotFound(entity string, id any) *AppError {
	return newErr(CodeNotFound, fmt.Sprintf("%s not found", entity), http.StatusNotFound).
		WithDetail("entity", entity).WithDetail("id", id)
}

// NewBusinessRule builds a 422 with a caller-chosen code.
func NewBusinessRule(code, message string) *AppError {
	return newErr(code, message, http.StatusUnprocessableEntity)
}

func NewInsufficientStock(productID string, requested, available float64) *AppError {
	return newErr(CodeInsufficientStock, "Insufficient stock", http.StatusUnprocessableEntity).
		WithDetail("product_id", productID).
		WithDetail("requested", requested).
		WithDetail("available", available)
}

// NewConcurrentModification reports a failed optimistic-lock check.
func NewConcurrentModification(entity string, id any) *AppError {
	return newErr(CodeConcurrentModification,
		"Record was modified by another user. Please refresh and try again.",
		http.StatusConflict).
		WithDetail("entity", entity).WithDetail("id", id)
}

// NewInternal hides the cause behind a generic 500 message.
func NewInternal(err error) *AppError {
	return newErr(CodeInternal, "Internal server error", http.StatusInternalServerError).WithCause(err)
}

func NewUnauthorized(message string) *AppError {
	return newErr(CodeUnauthorized, message, http.StatusUnauthorized)
}

func NewForbidden(message string) *AppError {
	return newErr(CodeForbidden, message, http.StatusForbidden)
}

// NewIdempotencyConflict means the key is currently claimed by an
// in-flight request.
func NewIdempotencyConflict(key string) *AppError {
	return newErr(CodeIdempotency, "Operation already in progress or completed", http.StatusConflict).
		WithDetail("idempotency_key", key)
}

// NewIdempotencyMismatch means the key was reused with a different
// user, operation or body hash.
func NewIdempotencyMismatch(key string) *AppError {
	return newErr(CodeIdempotency, "Idempotency key mismatch", http.StatusConflict).
		WithDetail("idempotency_key", key)
}

// NewPeriodNotFound is fatal for a ledger write, no fiscal year covers
// the document date and no partial entries are created.
func NewPeriodNotFound(date string) *AppError {
	return newErr(CodePeriodNotFound, "No fiscal period covers this date", http.StatusUnprocessableEntity).
		WithDetail("date", date)
}

// NewSubPeriodNotFound means the fiscal year exists but lacks a month
// bucket for the document date.
func NewSubPeriodNotFound(date string) *AppError {
	return newErr(CodeSubPeriodNotFound, "No fiscal sub-period covers this date", http.StatusUnprocessableEntity).
		WithDetail("date", date)
}

// NewPeriodicAlreadyClosed rejects a second month-end close of the
// same sub-period.
func NewPeriodicAlreadyClosed(subPeriod string) *AppError {
	return newErr(CodePeriodicAlreadyClosed,
		"Periodic closing has already run for this sub-period",
		http.StatusUnprocessableEntity).
		WithDetail("sub_period", subPeriod)
}

func NewPeriodClosed(period string) *AppError {
	return newErr(CodePeriodClosed,
		fmt.Sprintf("Period %s is closed for modifications", period),
		http.StatusUnprocessableEntity).
		WithDetail("period", period)
}

func NewConflict(message string) *AppError {
	return newErr(CodeConflict, message, http.StatusConflict)
}

func NewDuplicate(entity, field, value string) *AppError {
	return newErr(CodeDuplicate,
		fmt.Sprintf("%s with this %s already exists", entity, field),
		http.StatusConflict).
		WithDetail("entity", entity).
		WithDetail("field", field).
		WithDetail("value", value)
}

func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// AsAppError pulls the first AppError out of the chain.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// GetHTTPStatus falls back to 500 for plain errors.
func GetHTTPStatus(err error) int {
	if appErr, ok := AsAppError(err); ok {
		return appErr.HTTPStatus
	}
	return http.StatusInternalServerError
}

func hasCode(err error, code string) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Code == code
}

func IsNotFound(err error) bool {
	return hasCode(err, CodeNotFound)
}

func IsConcurrentModification(err error) bool {
	return hasCode(err, CodeConcurrentModification)
}

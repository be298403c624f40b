package errors

import (
	"fmt"
	"runtime"
	"strings"
	"time"
)

// ErrorCode is the stable, machine readable kind of an AppError.
type ErrorCode string

const (
	// Generic
	ErrCodeInternal        ErrorCode = "INTERNAL_ERROR"
	ErrCodeValidation      ErrorCode = "VALIDATION_ERROR"
	ErrCodeNotFound        ErrorCode = "NOT_FOUND"
	ErrCodeUnauthorized    ErrorCode = "UNAUTHORIZED"
	ErrCodeForbidden       ErrorCode = "FORBIDDEN"
	ErrCodeBadRequest      ErrorCode = "BAD_REQUEST"
	ErrCodeRateLimit       ErrorCode = "RATE_LIMIT_EXCEEDED"
	ErrCodeStore           ErrorCode = "STORE_ERROR"
	ErrCodeLockTimeout     ErrorCode = "LOCK_TIMEOUT"
	ErrCodeExternalAPI     ErrorCode = "EXTERNAL_API_ERROR"
	ErrCodeWalletNotLinked ErrorCode = "WALLET_NOT_LINKED"

	// Registry
	ErrCodeAlreadyRegistered ErrorCode = "ALREADY_REGISTERED"
	ErrCodeNotRegistered     ErrorCode = "NOT_REGISTERED"

	// Ledger
	ErrCodeUserNotRegistered      ErrorCode = "USER_NOT_REGISTERED"
	ErrCodeRecipientNotRegistered ErrorCode = "RECIPIENT_NOT_REGISTERED"
	ErrCodeInsufficientFunds      ErrorCode = "INSUFFICIENT_FUNDS"
	ErrCodeInvalidAmount          ErrorCode = "INVALID_AMOUNT"
	ErrCodeTokenTransferFailed    ErrorCode = "TOKEN_TRANSFER_FAILED"
	ErrCodeReentrantCall          ErrorCode = "REENTRANT_CALL"
)

// Ledger and registry failure kinds. Compare with errors.Is; any AppError
// carrying the same code matches.
var (
	ErrUserNotRegistered      = &AppError{Code: ErrCodeUserNotRegistered, Message: "User not registered"}
	ErrRecipientNotRegistered = &AppError{Code: ErrCodeRecipientNotRegistered, Message: "Recipient not registered"}
	ErrInsufficientFunds      = &AppError{Code: ErrCodeInsufficientFunds, Message: "Insufficient funds"}
	ErrNotRegistered          = &AppError{Code: ErrCodeNotRegistered, Message: "Not registered"}
	ErrAlreadyRegistered      = &AppError{Code: ErrCodeAlreadyRegistered, Message: "User already registered"}
	ErrInvalidAmount          = &AppError{Code: ErrCodeInvalidAmount, Message: "Amount must be a positive integer"}
	ErrTokenTransferFailed    = &AppError{Code: ErrCodeTokenTransferFailed, Message: "Token transfer failed"}
	ErrReentrantCall          = &AppError{Code: ErrCodeReentrantCall, Message: "Reentrant call"}
	ErrLockTimeout            = &AppError{Code: ErrCodeLockTimeout, Message: "Ledger is busy, try again"}
)

// AppError is a typed application error rendered to clients as JSON.
type AppError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   map[string]interface{} `json:"details,omitempty"`
	Context   map[string]string      `json:"context,omitempty"`
	Stack     []string               `json:"-"`
	Timestamp time.Time              `json:"timestamp"`
	RequestID string                 `json:"request_id,omitempty"`
	Cause     error                  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is matches any AppError with the same code, so fresh errors built from a
// sentinel still compare equal to it.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// IsNotFound reports whether the error is a "not found" kind.
func (e *AppError) IsNotFound() bool {
	return e.Code == ErrCodeNotFound || e.Code == ErrCodeWalletNotLinked
}

// IsValidation reports whether the error was caused by bad input.
func (e *AppError) IsValidation() bool {
	return e.Code == ErrCodeValidation ||
		e.Code == ErrCodeBadRequest ||
		e.Code == ErrCodeInvalidAmount
}

// IsUnauthorized reports whether the error is an authn/authz failure.
func (e *AppError) IsUnauthorized() bool {
	return e.Code == ErrCodeUnauthorized || e.Code == ErrCodeForbidden
}

// IsInternal reports whether the error is on our side.
func (e *AppError) IsInternal() bool {
	return e.Code == ErrCodeInternal ||
		e.Code == ErrCodeStore ||
		e.Code == ErrCodeExternalAPI ||
		e.Code == ErrCodeTokenTransferFailed
}

// IsLedgerRejection reports whether the error is an expected business rule
// rejection of a registry or ledger operation.
func (e *AppError) IsLedgerRejection() bool {
	switch e.Code {
	case ErrCodeUserNotRegistered, ErrCodeRecipientNotRegistered, ErrCodeInsufficientFunds,
		ErrCodeNotRegistered, ErrCodeAlreadyRegistered, ErrCodeReentrantCall:
		return true
	}
	return false
}

func (e *AppError) WithContext(key, value string) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]string)
	}
	e.Context[key] = value
	return e
}

func (e *AppError) WithDetail(key string, value interface{}) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

func (e *AppError) WithRequestID(requestID string) *AppError {
	e.RequestID = requestID
	return e
}

// New creates an application error.
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:      code,
		Message:   message,
		Timestamp: time.Now(),
		Stack:     getStackTrace(),
	}
}

// From creates a fresh error of the sentinel's kind, safe to decorate with
// details without mutating the shared sentinel.
func From(sentinel *AppError) *AppError {
	return New(sentinel.Code, sentinel.Message)
}

// Wrap wraps an existing error.
func Wrap(err error, code ErrorCode, message string) *AppError {
	appErr := New(code, message)
	appErr.Cause = err
	return appErr
}

// Wrapf wraps an existing error with a formatted message.
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *AppError {
	return Wrap(err, code, fmt.Sprintf(format, args...))
}

func getStackTrace() []string {
	var stack []string
	for i := 2; ; i++ {
		pc, file, line, ok := runtime.Caller(i)
		if !ok {
			break
		}
		fn := runtime.FuncForPC(pc)
		if fn == nil {
			continue
		}
		if strings.Contains(fn.Name(), "internal/common/errors") {
			continue
		}
		stack = append(stack, fmt.Sprintf("%s:%d %s", file, line, fn.Name()))
		if len(stack) >= 10 {
			break
		}
	}
	return stack
}

// NewValidationError reports a bad field.
func NewValidationError(field, reason string) *AppError {
	return New(ErrCodeValidation, fmt.Sprintf("Validation failed for field '%s': %s", field, reason)).
		WithDetail("field", field).
		WithDetail("reason", reason)
}

func NewNotFoundError(resource string, id interface{}) *AppError {
	return New(ErrCodeNotFound, fmt.Sprintf("%s not found", resource)).
		WithDetail("resource", resource).
		WithDetail("id", id)
}

func NewUnauthorizedError(reason string) *AppError {
	return New(ErrCodeUnauthorized, fmt.Sprintf("Unauthorized: %s", reason)).
		WithDetail("reason", reason)
}

func NewForbiddenError(reason string) *AppError {
	return New(ErrCodeForbidden, fmt.Sprintf("Forbidden: %s", reason)).
		WithDetail("reason", reason)
}

// NewStoreError wraps a storage failure.
func NewStoreError(operation string, err error) *AppError {
	return Wrap(err, ErrCodeStore, fmt.Sprintf("Store operation failed: %s", operation)).
		WithDetail("operation", operation)
}

func NewRateLimitError(retryAfter time.Duration) *AppError {
	return New(ErrCodeRateLimit, "Rate limit exceeded").
		WithDetail("retry_after", retryAfter.String())
}

// IsAppError reports whether err is an *AppError.
func IsAppError(err error) bool {
	_, ok := AsAppError(err)
	return ok
}

// AsAppError unwraps err to the outermost *AppError in its chain.
func AsAppError(err error) (*AppError, bool) {
	for err != nil {
		if appErr, ok := err.(*AppError); ok {
			return appErr, true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return nil, false
		}
		err = u.Unwrap()
	}
	return nil, false
}

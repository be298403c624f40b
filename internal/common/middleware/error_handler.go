package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	apperrors "quad-backend/internal/common/errors"
)

const (
	requestIDKey    = "request_id"
	requestIDHeader = "X-Request-ID"
)

// ErrorHandler recovers panics and renders them as INTERNAL_ERROR.
func ErrorHandler() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		log.Error().
			Str("request_id", getRequestID(c)).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Interface("panic", recovered).
			Str("stack", string(debug.Stack())).
			Msg("Panic recovered")

		appErr := apperrors.New(apperrors.ErrCodeInternal, "Internal server error").
			WithDetail("panic", fmt.Sprintf("%v", recovered))
		sendErrorResponse(c, appErr)
	})
}

// RequestID propagates X-Request-ID or generates one.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(requestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
		}

		c.Set(requestIDKey, requestID)
		c.Header(requestIDHeader, requestID)
		c.Next()
	}
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Success   bool                `json:"success"`
	Error     *apperrors.AppError `json:"error"`
	Timestamp time.Time           `json:"timestamp"`
	RequestID string              `json:"request_id"`
	Path      string              `json:"path,omitempty"`
	Method    string              `json:"method,omitempty"`
}

// AbortWithError renders err and stops the chain. Errors that are not
// AppErrors become INTERNAL_ERROR, except a cancelled request context.
func AbortWithError(c *gin.Context, err error) {
	appErr, ok := apperrors.AsAppError(err)
	switch {
	case ok:
	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		appErr = apperrors.Wrap(err, apperrors.ErrCodeBadRequest, "Request cancelled")
	default:
		appErr = apperrors.Wrap(err, apperrors.ErrCodeInternal, "Handler error occurred")
	}
	sendErrorResponse(c, appErr)
}

func sendErrorResponse(c *gin.Context, appErr *apperrors.AppError) {
	requestID := getRequestID(c)

	appErr.WithRequestID(requestID).
		WithContext("path", c.Request.URL.Path).
		WithContext("method", c.Request.Method)

	statusCode := HTTPStatus(appErr.Code)
	logError(c, appErr, statusCode)

	c.AbortWithStatusJSON(statusCode, ErrorResponse{
		Success:   false,
		Error:     appErr,
		Timestamp: time.Now(),
		RequestID: requestID,
		Path:      c.Request.URL.Path,
		Method:    c.Request.Method,
	})
}

// HTTPStatus maps an error code to its response status.
func HTTPStatus(code apperrors.ErrorCode) int {
	switch code {
	case apperrors.ErrCodeValidation, apperrors.ErrCodeBadRequest, apperrors.ErrCodeInvalidAmount:
		return http.StatusBadRequest
	case apperrors.ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case apperrors.ErrCodeForbidden, apperrors.ErrCodeUserNotRegistered, apperrors.ErrCodeNotRegistered:
		return http.StatusForbidden
	case apperrors.ErrCodeNotFound, apperrors.ErrCodeWalletNotLinked, apperrors.ErrCodeRecipientNotRegistered:
		return http.StatusNotFound
	case apperrors.ErrCodeAlreadyRegistered, apperrors.ErrCodeInsufficientFunds, apperrors.ErrCodeReentrantCall:
		return http.StatusConflict
	case apperrors.ErrCodeRateLimit:
		return http.StatusTooManyRequests
	case apperrors.ErrCodeTokenTransferFailed, apperrors.ErrCodeExternalAPI:
		return http.StatusBadGateway
	case apperrors.ErrCodeLockTimeout:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func logError(c *gin.Context, appErr *apperrors.AppError, status int) {
	var ev *zerolog.Event
	switch {
	case status >= http.StatusInternalServerError:
		ev = log.Error()
	case appErr.IsUnauthorized():
		ev = log.Warn()
	default:
		ev = log.Info()
	}

	ev = ev.
		Str("request_id", getRequestID(c)).
		Str("method", c.Request.Method).
		Str("path", c.Request.URL.Path).
		Int("status", status).
		Str("error_code", string(appErr.Code)).
		Str("error_message", appErr.Message)
	if caller, ok := CallerFrom(c); ok {
		ev = ev.Str("caller", caller.String())
	}
	if len(appErr.Details) > 0 {
		ev = ev.Interface("details", appErr.Details)
	}
	if appErr.Cause != nil {
		ev = ev.AnErr("cause", appErr.Cause)
	}
	ev.Msg("Request failed")
}

func getRequestID(c *gin.Context) string {
	if id := c.GetString(requestIDKey); id != "" {
		return id
	}
	return "unknown"
}

// Package apperrors defines the closed error taxonomy shared by every core
// component. Each kind carries a stable code, an HTTP-status hint, and an
// expose flag that controls whether its message reaches the caller verbatim.
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code identifies one member of the closed error taxonomy.
type Code string

const (
	CodeValidation         Code = "VALIDATION_ERROR"
	CodeAuthentication     Code = "AUTHENTICATION_ERROR"
	CodeAuthorization      Code = "AUTHORIZATION_ERROR"
	CodeNotFound           Code = "NOT_FOUND"
	CodeConflict           Code = "CONFLICT"
	CodeGone               Code = "GONE"
	CodeQuota              Code = "QUOTA_EXCEEDED"
	CodeDriverContract     Code = "DRIVER_CONTRACT_ERROR"
	CodeDriverError        Code = "DRIVER_ERROR"
	CodeRepository         Code = "REPOSITORY_ERROR"
	CodeProxySignature     Code = "PROXY_SIGNATURE_ERROR"
	CodeUploadNotFound     Code = "UPLOAD_NOT_FOUND"
	CodeSessionNotActive   Code = "SESSION_NOT_ACTIVE"
	CodeUnsupportedCapability Code = "UNSUPPORTED_CAPABILITY"
)

// Error is the concrete error type carried across every core boundary.
type Error struct {
	Code    Code
	Status  int
	Expose  bool
	Message string
	Details any
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// PublicMessage returns the message to show verbatim, or a generic phrase
// when Expose is false. The code is always safe to emit for telemetry.
func (e *Error) PublicMessage() string {
	if e.Expose {
		return e.Message
	}
	return "an internal error occurred"
}

func newErr(code Code, status int, expose bool, format string, args ...any) *Error {
	return &Error{Code: code, Status: status, Expose: expose, Message: fmt.Sprintf(format, args...)}
}

// Validation builds a 400 ValidationError. Always exposed: validation
// messages describe the caller's own request.
func Validation(format string, args ...any) *Error {
	return newErr(CodeValidation, http.StatusBadRequest, true, format, args...)
}

// Authentication builds a 401 AuthenticationError.
func Authentication(format string, args ...any) *Error {
	return newErr(CodeAuthentication, http.StatusUnauthorized, true, format, args...)
}

// Authorization builds a 403 AuthorizationError.
func Authorization(format string, args ...any) *Error {
	return newErr(CodeAuthorization, http.StatusForbidden, true, format, args...)
}

// NotFound builds a 404 NotFoundError.
func NotFound(format string, args ...any) *Error {
	return newErr(CodeNotFound, http.StatusNotFound, true, format, args...)
}

// Conflict builds a 409 ConflictError.
func Conflict(format string, args ...any) *Error {
	return newErr(CodeConflict, http.StatusConflict, true, format, args...)
}

// Gone builds a 410 GoneError.
func Gone(format string, args ...any) *Error {
	return newErr(CodeGone, http.StatusGone, true, format, args...)
}

// Quota builds a 400 QuotaError.
func Quota(format string, args ...any) *Error {
	return newErr(CodeQuota, http.StatusBadRequest, true, format, args...)
}

// DriverContract builds a fatal 500 DriverContractError. Never exposed
// verbatim; the contract violation is an operator-facing bug, not a
// caller-facing detail.
func DriverContract(format string, args ...any) *Error {
	return newErr(CodeDriverContract, http.StatusInternalServerError, false, format, args...)
}

// Driver wraps a backend failure as a 502 DriverError. The backend cause is
// carried in Details for logging but redacted from the public message.
func Driver(cause error, format string, args ...any) *Error {
	e := newErr(CodeDriverError, http.StatusBadGateway, false, format, args...)
	e.cause = cause
	if cause != nil {
		e.Details = cause.Error()
	}
	return e
}

// Repository wraps a persistence failure as a 500 RepositoryError.
func Repository(cause error, format string, args ...any) *Error {
	e := newErr(CodeRepository, http.StatusInternalServerError, false, format, args...)
	e.cause = cause
	return e
}

// ProxySignature builds a 401 ProxySignatureError.
func ProxySignature(format string, args ...any) *Error {
	return newErr(CodeProxySignature, http.StatusUnauthorized, true, format, args...)
}

// As unwraps err into the first *Error in its chain, if any.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// Is reports whether err carries the given Code anywhere in its chain.
func Is(err error, code Code) bool {
	e, ok := As(err)
	return ok && e.Code == code
}

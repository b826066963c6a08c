package services

import "errors"

// 业务错误，handler 统一映射为 HTTP 状态码
var (
	ErrValidation    = errors.New("validation failed")
	ErrAuth          = errors.New("not authorized")
	ErrNotFound      = errors.New("not found")
	ErrForbidden     = errors.New("forbidden")
	ErrDepthExceeded = errors.New("maximum reply depth reached")
	ErrUpstream      = errors.New("upstream service failed")
	ErrInvalidOTP    = errors.New("Invalid or expired OTP")
)

// Error carries a client-facing message for one of the sentinel kinds above.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Kind }

func newError(kind error, msg string) error {
	return &Error{Kind: kind, Message: msg}
}

package services

import "errors"

// ErrorCode classifies a ServiceError for transport mapping.
type ErrorCode string

const (
	ErrorInvalid  ErrorCode = "invalid"
	ErrorNotFound ErrorCode = "not_found"
)

// ServiceError is an expected failure with a client-facing message.
type ServiceError struct {
	Code    ErrorCode
	Message string
}

func (e *ServiceError) Error() string { return e.Message }

func NewInvalidError(msg string) error  { return &ServiceError{Code: ErrorInvalid, Message: msg} }
func NewNotFoundError(msg string) error { return &ServiceError{Code: ErrorNotFound, Message: msg} }

// AsServiceError unwraps err to a *ServiceError.
func AsServiceError(err error) (*ServiceError, bool) {
	var se *ServiceError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

var (
	// ErrShareTokenInvalid is returned for share tokens that cannot be decoded or verified.
	ErrShareTokenInvalid = errors.New("invalid share token")
	// ErrUnknownAction is returned when an action envelope names no known transition.
	ErrUnknownAction = errors.New("unknown action")
)

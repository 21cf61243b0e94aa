package errors

import "fmt"

// ErrorCode identifies an application error category
type ErrorCode string

const (
	ErrInternalServer             ErrorCode = "INTERNAL_SERVER_ERROR"
	ErrInvalidInput               ErrorCode = "INVALID_INPUT"
	ErrInvalidRequestData         ErrorCode = "INVALID_REQUEST_DATA"
	ErrUnauthorized               ErrorCode = "UNAUTHORIZED"
	ErrTokenExpired               ErrorCode = "TOKEN_EXPIRED"
	ErrInvalidTokenFormat         ErrorCode = "INVALID_TOKEN_FORMAT"
	ErrMissingAuthorizationHeader ErrorCode = "MISSING_AUTHORIZATION_HEADER"
	ErrForbidden                  ErrorCode = "FORBIDDEN"
	ErrNotFound                   ErrorCode = "NOT_FOUND"
	ErrAlreadyExists              ErrorCode = "ALREADY_EXISTS"

	// Lifecycle orchestration errors
	ErrInvalidState    ErrorCode = "INVALID_STATE"    // no transition edge from the current status
	ErrStaleVersion    ErrorCode = "STALE_VERSION"    // optimistic lock lost to a concurrent writer
	ErrConflict        ErrorCode = "CONFLICT"         // schedule overlap, capacity race, duplicate key
	ErrQuorumNotMet    ErrorCode = "QUORUM_NOT_MET"   // not enough accepted participants
	ErrDeadlinePassed  ErrorCode = "DEADLINE_PASSED"  // action attempted after its deadline
	ErrExternalTimeout ErrorCode = "EXTERNAL_TIMEOUT" // external service exceeded its budget
)

// AppError is the error type returned by services
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new application error
func NewAppError(code ErrorCode, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

package types

import (
	"errors"
	"net/http"
)

type ErrorCode string

func (e ErrorCode) String() string {
	return string(e)
}

const (
	// 5XX
	InternalServiceError ErrorCode = "INTERNAL_SERVICE_ERROR"
	ValidationError      ErrorCode = "VALIDATION_ERROR"
	NotFound             ErrorCode = "NOT_FOUND"
	BadRequest           ErrorCode = "BAD_REQUEST"
	TooManyRequests      ErrorCode = "TOO_MANY_REQUESTS"

	// Ledger errors. These are returned to clients as the `error` field of the response.
	InvalidSignature       ErrorCode = "INVALID_SIGNATURE"
	DuplicateNote          ErrorCode = "DUPLICATE_NOTE"
	NoteNotFound           ErrorCode = "NOTE_NOT_FOUND"
	InsufficientBalance    ErrorCode = "INSUFFICIENT_BALANCE"
	Unauthorized           ErrorCode = "UNAUTHORIZED"
	InsufficientCollateral ErrorCode = "INSUFFICIENT_COLLATERAL"
	MalformedKey           ErrorCode = "MALFORMED_KEY"
	MalformedAmount        ErrorCode = "MALFORMED_AMOUNT"
	Conflict               ErrorCode = "CONFLICT"
)

// Error represents an error with an HTTP status code and an application-specific error code.
// Field optionally names the request field that caused the error.
type Error struct {
	Err        error
	StatusCode int
	ErrorCode  ErrorCode
	Field      string
}

const UninitializedStatusCode = 0

func (e *Error) Error() string {
	return e.Err.Error()
}

// NewError creates a new Error with the provided status code, error code, and underlying error.
// If the status code is not provided (0), it defaults to http.StatusInternalServerError(500).
// If the error code is empty, it defaults to INTERNAL_SERVICE_ERROR.
func NewError(statusCode int, errorCode ErrorCode, err error) *Error {
	if statusCode == UninitializedStatusCode {
		statusCode = http.StatusInternalServerError
	}
	if errorCode == "" {
		errorCode = InternalServiceError
	}
	return &Error{
		StatusCode: statusCode,
		ErrorCode:  errorCode,
		Err:        err,
	}
}

func NewErrorWithMsg(statusCode int, errorCode ErrorCode, msg string) *Error {
	return NewError(statusCode, errorCode, errors.New(msg))
}

// NewFieldError is NewErrorWithMsg with the offending request field attached.
func NewFieldError(statusCode int, errorCode ErrorCode, field, msg string) *Error {
	e := NewErrorWithMsg(statusCode, errorCode, msg)
	e.Field = field
	return e
}

func NewInternalServiceError(err error) *Error {
	return &Error{
		StatusCode: http.StatusInternalServerError,
		ErrorCode:  InternalServiceError,
		Err:        err,
	}
}

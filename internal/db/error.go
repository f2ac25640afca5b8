package db

import (
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
)

// DuplicateKeyError is an error type for duplicate key errors
type DuplicateKeyError struct {
	Key     string
	Message string
}

func (e *DuplicateKeyError) Error() string {
	return e.Message
}

func IsDuplicateKeyError(err error) bool {
	var e *DuplicateKeyError
	return errors.As(err, &e)
}

// InvalidPaginationTokenError is an error type for invalid pagination token errors
type InvalidPaginationTokenError struct {
	Message string
}

func (e *InvalidPaginationTokenError) Error() string {
	return e.Message
}

func IsInvalidPaginationTokenError(err error) bool {
	var e *InvalidPaginationTokenError
	return errors.As(err, &e)
}

// Not found Error
type NotFoundError struct {
	Key     string
	Message string
}

func (e *NotFoundError) Error() string {
	return e.Message
}

func IsNotFoundError(err error) bool {
	var e *NotFoundError
	return errors.As(err, &e)
}

// InsufficientBalanceError is returned when a redemption asks for more than a note has left.
type InsufficientBalanceError struct {
	NoteId    string
	Remaining uint64
	Requested uint64
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("note %s has %d remaining, %d requested", e.NoteId, e.Remaining, e.Requested)
}

func IsInsufficientBalanceError(err error) bool {
	var e *InsufficientBalanceError
	return errors.As(err, &e)
}

// InsufficientCollateralError is returned when an issuer's reserves cannot back more debt.
type InsufficientCollateralError struct {
	OwnerPkHex string
	Available  uint64
	Requested  uint64
}

func (e *InsufficientCollateralError) Error() string {
	return fmt.Sprintf("issuer %s has %d collateral available, %d requested", e.OwnerPkHex, e.Available, e.Requested)
}

func IsInsufficientCollateralError(err error) bool {
	var e *InsufficientCollateralError
	return errors.As(err, &e)
}

// InvalidReserveUpdateError is returned for custody updates that would break a reserve.
type InvalidReserveUpdateError struct {
	BoxId   string
	Message string
}

func (e *InvalidReserveUpdateError) Error() string {
	return e.Message
}

func IsInvalidReserveUpdateError(err error) bool {
	var e *InvalidReserveUpdateError
	return errors.As(err, &e)
}

// ConcurrentUpdateError signals that a document changed between read and write
// within a transaction. It is retried like a write conflict.
type ConcurrentUpdateError struct {
	Key string
}

func (e *ConcurrentUpdateError) Error() string {
	return "concurrent update on " + e.Key
}

// Error code references: https://www.mongodb.com/docs/manual/reference/error-codes/
const (
	writeConflictCode      = 112
	transactionAbortedCode = 251
)

func IsWriteConflictError(err error) bool {
	return hasCommandErrorCode(err, writeConflictCode)
}

func IsTransactionAbortedError(err error) bool {
	return hasCommandErrorCode(err, transactionAbortedCode)
}

// IsConflictError reports whether err is a contention failure that outlived the retries.
func IsConflictError(err error) bool {
	var e *ConcurrentUpdateError
	if errors.As(err, &e) {
		return true
	}
	return IsWriteConflictError(err) || IsTransactionAbortedError(err)
}

func hasCommandErrorCode(err error, code int32) bool {
	if err == nil {
		return false
	}
	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) {
		return cmdErr.Code == code
	}
	var cmdErrPtr *mongo.CommandError
	if errors.As(err, &cmdErrPtr) && cmdErrPtr != nil {
		return cmdErrPtr.Code == code
	}
	var writeErr mongo.WriteException
	if errors.As(err, &writeErr) {
		for _, e := range writeErr.WriteErrors {
			if int32(e.Code) == code {
				return true
			}
		}
	}
	return false
}

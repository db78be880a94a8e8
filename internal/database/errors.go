package database

import (
	"errors"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"

	apperrors "github.com/zekret/vault/internal/errors"
)

var (
	// ErrConcurrentWrite indicates the transaction lost a race with another writer.
	ErrConcurrentWrite = apperrors.Wrap(apperrors.ErrConflict, "concurrent write")

	// ErrDanglingReference indicates a row referencing a parent that does not exist.
	ErrDanglingReference = apperrors.Wrap(apperrors.ErrInvalidInput, "dangling reference")

	// ErrDuplicate indicates a unique constraint violation.
	ErrDuplicate = apperrors.Wrap(apperrors.ErrConflict, "duplicate")
)

// TranslateError maps driver failures onto the error taxonomy. Errors it does not
// recognise are wrapped with message and keep their chain.
func TranslateError(err error, message string) error {
	switch {
	case err == nil:
		return nil
	case IsUniqueViolation(err):
		return apperrors.Wrap(ErrDuplicate, message)
	case IsForeignKeyViolation(err):
		return apperrors.Wrap(ErrDanglingReference, message)
	case IsConcurrentWriteFailure(err):
		return apperrors.Wrap(ErrConcurrentWrite, message)
	default:
		return apperrors.Wrap(err, message)
	}
}

// PostgreSQL SQLSTATE codes.
const (
	pgUniqueViolation      = "23505"
	pgForeignKeyViolation  = "23503"
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
	pgLockNotAvailable     = "55P03"
)

// MySQL server error numbers.
const (
	myDuplicateEntry  = 1062
	myNoReferencedRow = 1452
	myRowIsReferenced = 1451
	myLockWaitTimeout = 1205
	myDeadlock        = 1213
)

// IsUniqueViolation reports whether err is a duplicate key error from either driver.
func IsUniqueViolation(err error) bool {
	if pqErr, ok := asPQError(err); ok {
		return string(pqErr.Code) == pgUniqueViolation
	}
	if myErr, ok := asMySQLError(err); ok {
		return myErr.Number == myDuplicateEntry
	}
	return false
}

// IsForeignKeyViolation reports whether err is a referential integrity error.
func IsForeignKeyViolation(err error) bool {
	if pqErr, ok := asPQError(err); ok {
		return string(pqErr.Code) == pgForeignKeyViolation
	}
	if myErr, ok := asMySQLError(err); ok {
		return myErr.Number == myNoReferencedRow || myErr.Number == myRowIsReferenced
	}
	return false
}

// IsConcurrentWriteFailure reports whether err means the transaction lost a race
// with another writer (serialization failure, deadlock or lock wait timeout).
func IsConcurrentWriteFailure(err error) bool {
	if pqErr, ok := asPQError(err); ok {
		switch string(pqErr.Code) {
		case pgSerializationFailure, pgDeadlockDetected, pgLockNotAvailable:
			return true
		}
		return false
	}
	if myErr, ok := asMySQLError(err); ok {
		return myErr.Number == myDeadlock || myErr.Number == myLockWaitTimeout
	}
	return false
}

func asPQError(err error) (*pq.Error, bool) {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr, true
	}
	return nil, false
}

func asMySQLError(err error) (*mysql.MySQLError, bool) {
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr, true
	}
	return nil, false
}

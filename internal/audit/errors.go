package audit

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes failures at the audit boundary.
type ErrorCode string

const (
	// ErrCodeSerialization indicates the payload has no canonical form.
	ErrCodeSerialization ErrorCode = "SERIALIZATION"

	// ErrCodeIO indicates an append-log filesystem failure.
	ErrCodeIO ErrorCode = "IO"

	// ErrCodeStorage indicates an index-store failure.
	ErrCodeStorage ErrorCode = "STORAGE"
)

// Error is a categorized failure from an audit operation. Errors are
// propagated to the immediate caller, never retried and never
// swallowed.
type Error struct {
	Code ErrorCode
	Op   string // operation that failed, e.g. "append"
	Err  error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Op, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Op)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsSerializationError reports whether err is a payload serialization
// failure. Uses errors.As to handle wrapped errors.
func IsSerializationError(err error) bool {
	return hasCode(err, ErrCodeSerialization)
}

// IsIOError reports whether err is an append-log write failure.
func IsIOError(err error) bool {
	return hasCode(err, ErrCodeIO)
}

// IsStorageError reports whether err is an index-store failure.
func IsStorageError(err error) bool {
	return hasCode(err, ErrCodeStorage)
}

func hasCode(err error, code ErrorCode) bool {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Code == code
	}
	return false
}

func newError(code ErrorCode, op string, err error) *Error {
	return &Error{Code: code, Op: op, Err: err}
}

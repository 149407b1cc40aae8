package store

import (
	"fmt"
)

// --------------------------------------------------------------------------
// Custom Error Type
// --------------------------------------------------------------------------

// Error is a custom error type that wraps a return code (of type RetCode),
// an error message and optionally the underlying cause.
type Error struct {
	Code RetCode // The return code
	Msg  string  // The error message.
	Err  error   // The cause (may be nil)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("StoreError (code %s): %s: %v", e.Code, e.Msg, e.Err)
	}
	return fmt.Sprintf("StoreError (code %s): %s", e.Code, e.Msg)
}

// Unwrap returns the cause so errors.Is and errors.As see through the store error.
func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates a new StoreError with the given code and message.
func NewError(code RetCode, msg string) *Error {
	return &Error{
		Code: code,
		Msg:  msg,
	}
}

// WrapError creates a new StoreError with the given code and message wrapping err.
func WrapError(code RetCode, msg string, err error) *Error {
	return &Error{
		Code: code,
		Msg:  msg,
		Err:  err,
	}
}

// --------------------------------------------------------------------------
// Return Codes
// --------------------------------------------------------------------------

type RetCode uint64

const (
	RetCSuccess          RetCode = iota // 0: Command executed successfully.
	RetCInternalError                   // 1: A pipeline or middleware failed.
	RetCInvalidDirection                // 2: Direction is neither "get" nor "set".
	RetCInvalidOperation                // 3: Invalid argument (e.g. a nil middleware).
	RetCEncodeError                     // 4: The value could not be encoded.
	RetCMediumError                     // 5: The storage medium failed.
	RetCReadOnly                        // 6: The write was rejected because the store is read-only.
)

func (c RetCode) String() string {
	switch c {
	case RetCSuccess:
		return "Success"
	case RetCInternalError:
		return "InternalError"
	case RetCInvalidDirection:
		return "InvalidDirection"
	case RetCInvalidOperation:
		return "InvalidOperation"
	case RetCEncodeError:
		return "EncodeError"
	case RetCMediumError:
		return "MediumError"
	case RetCReadOnly:
		return "ReadOnly"
	default:
		return "Unknown"
	}
}

// IsCode reports whether err is (or wraps) a store *Error with the given code.
func IsCode(err error, code RetCode) bool {
	for err != nil {
		if e, ok := err.(*Error); ok && e.Code == code {
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

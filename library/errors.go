package library

import (
	"errors"
	"fmt"
)

// Code is a machine-readable error kind.
type Code string

const (
	CodeValidation Code = "VALIDATION"
	CodeDuplicate  Code = "DUPLICATE_BOOK"
	CodeNotFound   Code = "NOT_FOUND"
)

// Error is a domain error with a closed set of codes. Callers match with
// errors.Is against the sentinel values below.
type Error struct {
	Code    Code
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.cause }

// Is matches any *Error carrying the same code.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// Sentinel errors for use with errors.Is().
var (
	ErrValidation    = &Error{Code: CodeValidation, Message: "validation error"}
	ErrDuplicateBook = &Error{Code: CodeDuplicate, Message: "duplicate book"}
	ErrNotFound      = &Error{Code: CodeNotFound, Message: "not found"}
)

func validationErr(format string, args ...any) *Error {
	return &Error{Code: CodeValidation, Message: fmt.Sprintf(format, args...)}
}

func validationCause(msg string, cause error) *Error {
	return &Error{Code: CodeValidation, Message: msg, cause: cause}
}

func duplicateErr(title, author string) *Error {
	return &Error{Code: CodeDuplicate, Message: fmt.Sprintf("book %q by %q already exists", title, author)}
}

func notFoundErr(id int) *Error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf("book %d does not exist", id)}
}

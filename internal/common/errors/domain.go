package commonerrors

import (
	"errors"
	"fmt"
)

type ErrorCategory string

const (
	CategoryValidation ErrorCategory = "VALIDATION"
	CategoryAuth       ErrorCategory = "AUTH"
	CategoryNotFound   ErrorCategory = "NOT_FOUND"
	CategoryConflict   ErrorCategory = "CONFLICT"
	CategoryInternal   ErrorCategory = "INTERNAL"
)

type DomainError interface {
	error
	Code() string
	Category() ErrorCategory
	Status() int
	Message() string
	Unwrap() error
	WithCause(cause error) DomainError
}

type domainError struct {
	code     string
	category ErrorCategory
	status   int
	message  string
	cause    error
}

func (e *domainError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

func (e *domainError) Code() string {
	return e.code
}

func (e *domainError) Category() ErrorCategory {
	return e.category
}

// Status is the numeric code written on the wire as "ERROR <status>".
func (e *domainError) Status() int {
	return e.status
}

func (e *domainError) Message() string {
	return e.message
}

func (e *domainError) Unwrap() error {
	return e.cause
}

// Is matches on code so that errors derived through WithCause still compare
// equal to the sentinel they were built from.
func (e *domainError) Is(target error) bool {
	t, ok := target.(*domainError)
	if !ok {
		return false
	}
	return e.code == t.code
}

func (e *domainError) WithCause(cause error) DomainError {
	return &domainError{
		code:     e.code,
		category: e.category,
		status:   e.status,
		message:  e.message,
		cause:    cause,
	}
}

func NewDomainError(code string, category ErrorCategory, status int, message string) DomainError {
	return &domainError{
		code:     code,
		category: category,
		status:   status,
		message:  message,
	}
}

func IsDomainError(err error) bool {
	var de DomainError
	return errors.As(err, &de)
}

func AsDomainError(err error) (DomainError, bool) {
	var de DomainError
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

var (
	ErrNoteNotFound = NewDomainError(
		"NOTE_NOT_FOUND",
		CategoryNotFound,
		StatusNotFound,
		"note not found",
	)

	ErrNoteTitleExists = NewDomainError(
		"NOTE_TITLE_EXISTS",
		CategoryConflict,
		StatusAlreadyExists,
		"note title already exists",
	)

	ErrInvalidRequest = NewDomainError(
		"INVALID_REQUEST",
		CategoryValidation,
		StatusInvalidRequest,
		"invalid request",
	)

	ErrWrongArgumentCount = NewDomainError(
		"WRONG_ARGUMENT_COUNT",
		CategoryValidation,
		StatusInvalidRequest,
		"wrong number of arguments",
	)

	ErrInvalidIndex = NewDomainError(
		"INVALID_INDEX",
		CategoryValidation,
		StatusInvalidRequest,
		"note index is not an integer",
	)

	ErrEmptyTitle = NewDomainError(
		"EMPTY_TITLE",
		CategoryValidation,
		StatusInvalidRequest,
		"note title cannot be empty",
	)

	ErrUnknownCommand = NewDomainError(
		"UNKNOWN_COMMAND",
		CategoryValidation,
		StatusInvalidRequest,
		"unknown command",
	)

	ErrNotAuthenticated = NewDomainError(
		"NOT_AUTHENTICATED",
		CategoryAuth,
		StatusInvalidRequest,
		"session is not connected",
	)

	ErrAlreadyAuthenticated = NewDomainError(
		"ALREADY_AUTHENTICATED",
		CategoryAuth,
		StatusInvalidRequest,
		"session is already connected",
	)

	ErrEmptyUsername = NewDomainError(
		"EMPTY_USERNAME",
		CategoryValidation,
		StatusInvalidRequest,
		"username cannot be empty",
	)

	ErrInternalError = NewDomainError(
		"INTERNAL_ERROR",
		CategoryInternal,
		StatusInvalidRequest,
		"internal server error",
	)
)

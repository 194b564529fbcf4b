package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an AppError independently of its message.
type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindValidation
	KindConflict
	KindUnknownState
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindUnknownState:
		return "unknown_state"
	default:
		return "internal"
	}
}

// httpStatus maps a kind to the status code the HTTP layer responds with.
func (k Kind) httpStatus() int {
	switch k {
	case KindNotFound:
		return http.StatusNotFound
	case KindValidation, KindUnknownState:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// AppError is a custom error type that includes an HTTP status code and an optional internal error code.
type AppError struct {
	Kind    Kind   // Error classification
	Code    int    // HTTP Status Code (e.g., 400, 404)
	Message string // User-facing error message
	Err     error  // The underlying error, if any (not exposed to user)
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is reports whether target is the kind sentinel matching e.
// Sentinels are AppErrors with an empty message, e.g. ErrNotFound.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	if t.Message == "" {
		return t.Kind == e.Kind
	}
	return t == e
}

// Kind sentinels, usable with errors.Is.
var (
	ErrNotFound     = &AppError{Kind: KindNotFound}
	ErrValidation   = &AppError{Kind: KindValidation}
	ErrConflict     = &AppError{Kind: KindConflict}
	ErrUnknownState = &AppError{Kind: KindUnknownState}
)

// New creates a new AppError with a status code and message.
// The kind is derived from the status code.
func New(code int, message string) *AppError {
	return &AppError{
		Kind:    kindFromStatus(code),
		Code:    code,
		Message: message,
	}
}

// Wrap creates a new AppError wrapping an existing error.
func Wrap(err error, code int, message string) *AppError {
	return &AppError{
		Kind:    kindFromStatus(code),
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func newKind(kind Kind, format string, args ...any) *AppError {
	return &AppError{
		Kind:    kind,
		Code:    kind.httpStatus(),
		Message: fmt.Sprintf(format, args...),
	}
}

// NotFound reports an unknown id or a request the caller may not see.
func NotFound(format string, args ...any) *AppError {
	return newKind(KindNotFound, format, args...)
}

// Validation reports a violated domain rule.
func Validation(format string, args ...any) *AppError {
	return newKind(KindValidation, format, args...)
}

// Conflict reports a clash with existing state.
func Conflict(format string, args ...any) *AppError {
	return newKind(KindConflict, format, args...)
}

// UnknownState reports a state filter that does not map to a known value.
func UnknownState(value string) *AppError {
	return newKind(KindUnknownState, "Unknown state: %s", value)
}

// KindOf returns the kind of the first AppError in err's chain,
// or KindInternal if there is none.
func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

func kindFromStatus(code int) Kind {
	switch code {
	case http.StatusNotFound:
		return KindNotFound
	case http.StatusBadRequest:
		return KindValidation
	case http.StatusConflict:
		return KindConflict
	default:
		return KindInternal
	}
}

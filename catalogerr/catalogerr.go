// Package catalogerr defines the error vocabulary shared by every catalog
// package. Errors never flow through panic/recover across layer boundaries;
// a repository call that hits a driver-level uniqueness violation returns a
// typed *Error, never a bare wrapped driver error.
package catalogerr

import (
	"errors"
	"fmt"
)

// Kind classifies a catalog error so callers can branch with errors.As
// without string-matching messages.
type Kind int

const (
	_ Kind = iota
	NotFound
	AlreadyExists
	InvalidName
	QueryCompileError
	MetaValidationError
	CircularDatasetDependency
	Cancelled
	StoreError
)

func (k Kind) String() string {
	switch k {
	case NotFound:
		return "NotFound"
	case AlreadyExists:
		return "AlreadyExists"
	case InvalidName:
		return "InvalidName"
	case QueryCompileError:
		return "QueryCompileError"
	case MetaValidationError:
		return "MetaValidationError"
	case CircularDatasetDependency:
		return "CircularDatasetDependency"
	case Cancelled:
		return "Cancelled"
	case StoreError:
		return "StoreError"
	default:
		return "Unknown"
	}
}

// FieldError is one entry of a MetaValidationError's metadata_errors list.
type FieldError struct {
	Key     string `json:"key"`
	Message string `json:"message"`
}

// Error is the concrete error type returned by every catalog package.
type Error struct {
	Kind    Kind
	Message string
	Fields  []FieldError // only populated for MetaValidationError
	cause   error
}

func (e *Error) Error() string {
	if e.Message == "" {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// Is lets errors.Is(err, catalogerr.NotFound) read naturally by comparing
// Kind values wrapped in a sentinel *Error.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Kind == t.Kind
	}
	return false
}

// New builds a fresh *Error of the given kind.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// Newf builds a fresh *Error with a formatted message.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a Kind to an underlying error, preserving it for errors.Unwrap.
func Wrap(kind Kind, err error) *Error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Message: err.Error(), cause: err}
}

// WithFields attaches per-key validation errors, used for MetaValidationError.
func (e *Error) WithFields(fields []FieldError) *Error {
	e.Fields = fields
	return e
}

// KindOf returns the Kind of err if it is (or wraps) a *Error, and ok=false
// otherwise.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}

// Sentinels usable with errors.Is(err, catalogerr.ErrNotFound).
var (
	ErrNotFound                  = New(NotFound, "")
	ErrAlreadyExists             = New(AlreadyExists, "")
	ErrInvalidName               = New(InvalidName, "")
	ErrQueryCompileError         = New(QueryCompileError, "")
	ErrMetaValidationError       = New(MetaValidationError, "")
	ErrCircularDatasetDependency = New(CircularDatasetDependency, "")
	ErrCancelled                 = New(Cancelled, "")
	ErrStoreError                = New(StoreError, "")
)

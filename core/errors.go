package core

import (
	stderrors "errors"

	"github.com/pkg/errors"
)

// ErrorKind is the stable, machine-readable kind of a domain failure.
type ErrorKind string

const (
	KindUnknown ErrorKind = ""

	// authorization
	KindUnauthenticated   ErrorKind = "unauthenticated"
	KindInvalidCredential ErrorKind = "invalid_credential"
	KindForbidden         ErrorKind = "forbidden"

	// not found
	KindCourseNotFound ErrorKind = "course_not_found"
	KindLessonNotFound ErrorKind = "lesson_not_found"
	KindNotEnrolled    ErrorKind = "not_enrolled"
	KindReviewNotFound ErrorKind = "review_not_found"

	// duplicate actions
	KindAlreadyEnrolled  ErrorKind = "already_enrolled"
	KindAlreadyCompleted ErrorKind = "already_completed"

	// input & domain validation
	KindInvalidRating ErrorKind = "invalid_rating"
	KindNoLessons     ErrorKind = "no_lessons"
	KindNotEligible   ErrorKind = "not_eligible"

	// storage
	KindConflict           ErrorKind = "conflict"
	KindStorageUnavailable ErrorKind = "storage_unavailable"
)

// Error is a domain failure carrying a stable Kind and a human-readable Message.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error // optional underlying cause
}

func NewError(kind ErrorKind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

func (err *Error) Error() string {
	if err.Err != nil {
		return err.Message + ": " + err.Err.Error()
	}
	return err.Message
}

func (err *Error) Unwrap() error { return err.Err }

// Is matches any *Error of the same Kind, so that sentinel comparisons survive a WithCause.
func (err *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == err.Kind
}

// WithCause returns a copy of err wrapping cause.
func (err *Error) WithCause(cause error) *Error {
	return &Error{Kind: err.Kind, Message: err.Message, Err: cause}
}

var (
	ErrConflict           = NewError(KindConflict, "the resource was modified concurrently")
	ErrStorageUnavailable = NewError(KindStorageUnavailable, "storage unavailable")
)

// KindOf returns the Kind of the first *Error in err's chain, KindUnknown otherwise.
func KindOf(err error) ErrorKind {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind ErrorKind) bool {
	return err != nil && KindOf(err) == kind
}

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string
	Error string
}

type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		return ""
	}
	return err.Err.Error()
}

type shutdown struct {
	message string
}

func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s shutdown) Error() string {
	return s.message
}

func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}

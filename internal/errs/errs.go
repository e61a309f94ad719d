package errs

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
)

// Error categories surfaced to callers of the issue core. Every error returned by a
// usecase wraps exactly one of these, except for raw store failures which KindOf
// reports as KindPersistence.
var (
	ErrNotFound        = errors.New("not found")
	ErrVersionConflict = errors.New("version conflict")
	ErrValidation      = errors.New("validation failed")
	ErrPersistence     = errors.New("persistence failure")
)

type Kind string

const (
	KindNotFound        Kind = "not_found"
	KindVersionConflict Kind = "version_conflict"
	KindValidation      Kind = "validation"
	KindPersistence     Kind = "persistence"
)

// KindOf classifies err. nil yields "".
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrVersionConflict):
		return KindVersionConflict
	case errors.Is(err, ErrValidation):
		return KindValidation
	default:
		return KindPersistence
	}
}

// Validationf builds a validation error with a caller-facing message.
func Validationf(format string, args ...any) error {
	return &categorized{kind: ErrValidation, msg: fmt.Sprintf(format, args...)}
}

// NotFoundf builds a not-found error with a caller-facing message.
func NotFoundf(format string, args ...any) error {
	return &categorized{kind: ErrNotFound, msg: fmt.Sprintf(format, args...)}
}

// Conflictf builds an optimistic-lock conflict error.
func Conflictf(format string, args ...any) error {
	return &categorized{kind: ErrVersionConflict, msg: fmt.Sprintf(format, args...)}
}

// Persistence marks a store failure so it survives later wrapping as a persistence error.
func Persistence(err error, msg string) error {
	if err == nil {
		return nil
	}
	return &categorized{kind: ErrPersistence, msg: msg, cause: err}
}

// categorized carries a display message and matches its category sentinel via errors.Is.
type categorized struct {
	kind  error
	msg   string
	cause error
}

func (e *categorized) Error() string {
	if e.cause != nil {
		return e.msg + ": " + e.cause.Error()
	}
	return e.msg
}

func (e *categorized) Is(target error) bool { return target == e.kind }
func (e *categorized) Unwrap() error { return e.cause }

// Wrap adds context and preserves the error chain (errors.Is/As works).
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// Wrapf adds formatted context and preserves the error chain.
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	args = append(args, err)
	return fmt.Errorf(format+": %w", args...)
}

// WithStack captures a stack trace once, at the root cause boundary.
func WithStack(err error) error {
	if err == nil {
		return nil
	}

	var se *StackError
	if errors.As(err, &se) {
		return err
	}

	return &StackError{
		err:   err,
		stack: debug.Stack(),
	}
}

// StackError wraps an error and stores a stack trace.
type StackError struct {
	err   error
	stack []byte
}

func (e *StackError) Error() string { return e.err.Error() }
func (e *StackError) Unwrap() error { return e.err }
func (e *StackError) Stack() []byte { return e.stack }

// Loggable makes slog encode the error as structured fields.
// Usage: slog.Any("err", errs.Loggable(err))
func Loggable(err error) slog.LogValuer { return loggable{err: err} }

type loggable struct{ err error }

func (l loggable) LogValue() slog.Value {
	if l.err == nil {
		return slog.GroupValue()
	}

	attrs := []slog.Attr{
		slog.String("message", l.err.Error()),
		slog.String("kind", string(KindOf(l.err))),
		slog.Any("chain", ErrorChainStrings(l.err)),
	}

	var se *StackError
	if errors.As(l.err, &se) {
		attrs = append(attrs, slog.String("stack", string(se.Stack())))
	}

	return slog.GroupValue(attrs...)
}

// ErrorChainStrings returns the unwrap chain as strings (outer -> inner).
func ErrorChainStrings(err error) []string {
	if err == nil {
		return nil
	}

	out := make([]string, 0, 8)
	for e := err; e != nil; e = errors.Unwrap(e) {
		out = append(out, e.Error())
	}
	return out
}

// Package apperror normalizes heterogeneous failures into a typed, immutable
// domain error and resolves localized messages and recovery actions for it.
package apperror

import (
	"errors"
	"fmt"
	"maps"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"time"
)

// maxStackFrames bounds the stack kept on an Error.
const maxStackFrames = 5

// Error is a classified failure. All fields are fixed at construction; the
// With* methods return modified copies.
type Error struct {
	typ       Type
	message   string
	context   map[string]any
	timestamp time.Time
	stack     []string
	cause     error
}

// New builds an Error of type t. Message and context are redacted before
// they are stored.
func New(t Type, message string, context map[string]any) *Error {
	if !t.Valid() {
		t = TypeUnknown
	}
	return &Error{
		typ:       t,
		message:   Redact(message),
		context:   redactContext(context),
		timestamp: time.Now(),
		stack:     captureStack(3),
	}
}

// Wrap builds an Error of type t that keeps cause for errors.Is/As. The
// cause is held behind a redacting wrapper, so walking the Unwrap chain
// never yields the unredacted text.
func Wrap(t Type, cause error, message string) *Error {
	if message == "" && cause != nil {
		message = cause.Error()
	}
	e := New(t, message, nil)
	if cause != nil {
		e.cause = &redactedCause{err: cause}
	}
	e.stack = captureStack(3)
	return e
}

// redactedCause answers errors.Is and errors.As against the original failure
// but prints it redacted and does not unwrap to it.
type redactedCause struct {
	err error
}

func (c *redactedCause) Error() string { return Redact(c.err.Error()) }

func (c *redactedCause) Is(target error) bool { return errors.Is(c.err, target) }

func (c *redactedCause) As(target any) bool { return errors.As(c.err, target) }

func (e *Error) Error() string {
	return fmt.Sprintf("[%s] %s", e.typ, e.message)
}

// Unwrap returns the redacted original failure, if any.
func (e *Error) Unwrap() error { return e.cause }

// Is matches another *Error of the same type.
func (e *Error) Is(target error) bool {
	var other *Error
	if errors.As(target, &other) {
		return other.typ == e.typ
	}
	return false
}

func (e *Error) Type() Type { return e.typ }

func (e *Error) Category() Category { return e.typ.Category() }

// Retryable reports whether the retry engine may try the operation again.
func (e *Error) Retryable() bool { return e.typ.Retryable() }

func (e *Error) Severity() Severity { return e.typ.Severity() }

func (e *Error) Message() string { return e.message }

func (e *Error) Timestamp() time.Time { return e.timestamp }

// Stack returns at most five caller frames, captured at construction.
func (e *Error) Stack() []string { return slices.Clone(e.stack) }

// Context returns a copy of the redacted context map.
func (e *Error) Context() map[string]any { return maps.Clone(e.context) }

// WithContext returns a copy carrying an extra (redacted) context entry.
func (e *Error) WithContext(key string, value any) *Error {
	cp := *e
	cp.context = maps.Clone(e.context)
	if cp.context == nil {
		cp.context = make(map[string]any, 1)
	}
	cp.context[key] = redactValue(key, value)
	return &cp
}

// Sentinel returns an Error usable as an errors.Is target for type t.
func Sentinel(t Type) error {
	return &Error{typ: t}
}

// captureStack keeps at most maxStackFrames frames as "func (file.go:line)".
// Package paths and directories are dropped so host paths never leave the process.
func captureStack(skip int) []string {
	pcs := make([]uintptr, maxStackFrames)
	n := runtime.Callers(skip, pcs)
	if n == 0 {
		return nil
	}

	frames := runtime.CallersFrames(pcs[:n])
	stack := make([]string, 0, n)
	for {
		f, more := frames.Next()
		fn := f.Function[strings.LastIndex(f.Function, "/")+1:]
		stack = append(stack, Redact(fmt.Sprintf("%s (%s:%d)", fn, filepath.Base(f.File), f.Line)))
		if !more || len(stack) == maxStackFrames {
			break
		}
	}
	return stack
}

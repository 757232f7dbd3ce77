// Package apperr defines the error kinds shared by the record stores, the
// aggregator and the service layer.
package apperr

import (
	"errors"
	"fmt"
)

type Kind string

const (
	// AdapterUnavailable means the record store could not serve a query or write.
	AdapterUnavailable Kind = "adapter_unavailable"
	// InvalidRecord means a record or argument failed validation.
	InvalidRecord Kind = "invalid_record"
	NotFound      Kind = "not_found"
)

type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error of the same kind, so callers can write
// errors.Is(err, &apperr.Error{Kind: apperr.NotFound}).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Op == "" || t.Op == e.Op)
}

func Unavailable(op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: AdapterUnavailable, Op: op, Err: err}
}

func Invalid(op, format string, args ...any) error {
	return &Error{Kind: InvalidRecord, Op: op, Err: fmt.Errorf(format, args...)}
}

func Missing(op, format string, args ...any) error {
	return &Error{Kind: NotFound, Op: op, Err: fmt.Errorf(format, args...)}
}

// KindOf returns the kind of the first *Error in err's chain, or "".
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

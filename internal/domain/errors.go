package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Every error crossing the use-case boundary wraps exactly one
// of these, so callers can branch with errors.Is without knowing the
// concrete message.
var (
	ErrValidation   = errors.New("validation")
	ErrNotFound     = errors.New("not_found")
	ErrBusinessRule = errors.New("business_rule")
	ErrConflict     = errors.New("conflict")
	ErrDependency   = errors.New("dependency")
)

// Error carries a machine-readable kind plus a human-readable detail.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string { return e.Kind.Error() + ": " + e.Message }
func (e *Error) Unwrap() error { return e.Kind }

func Validationf(format string, args ...any) error {
	return &Error{Kind: ErrValidation, Message: fmt.Sprintf(format, args...)}
}

func NotFoundf(format string, args ...any) error {
	return &Error{Kind: ErrNotFound, Message: fmt.Sprintf(format, args...)}
}

func BusinessRulef(format string, args ...any) error {
	return &Error{Kind: ErrBusinessRule, Message: fmt.Sprintf(format, args...)}
}

func Conflictf(format string, args ...any) error {
	return &Error{Kind: ErrConflict, Message: fmt.Sprintf(format, args...)}
}

func Dependencyf(format string, args ...any) error {
	return &Error{Kind: ErrDependency, Message: fmt.Sprintf(format, args...)}
}

// KindOf returns the taxonomy sentinel wrapped by err, or nil for errors
// that did not originate in the domain.
func KindOf(err error) error {
	for _, kind := range []error{ErrValidation, ErrNotFound, ErrBusinessRule, ErrConflict, ErrDependency} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}

// Package errors is the single import for error values outside the domain layer.
// Sentinel matching goes through the standard library; wrapping records a stack
// via pkg/errors so logged failures point at their origin.
package errors

import (
	stderrors "errors"

	pkgerrors "github.com/pkg/errors"
)

func New(text string) error {
	return stderrors.New(text)
}

func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

func As(err error, target any) bool {
	return stderrors.As(err, target)
}

// Wrap prefixes err with message and attaches a stack. A nil err stays nil.
func Wrap(err error, message string) error {
	return pkgerrors.Wrap(err, message)
}

func Wrapf(err error, format string, args ...any) error {
	return pkgerrors.Wrapf(err, format, args...)
}

func WithStack(err error) error {
	return pkgerrors.WithStack(err)
}

// Errorf builds a new error with a stack. It does not wrap %w operands.
func Errorf(format string, args ...any) error {
	return pkgerrors.Errorf(format, args...)
}

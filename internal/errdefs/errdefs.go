// Package errdefs defines the error kinds shared by the config loader, the
// judge core, and the CLI. Callers match kinds with errors.Is and wrap
// context with fmt.Errorf("...: %w", err).
package errdefs

import (
	"errors"
	"fmt"
)

var (
	// ErrIO covers failures reading the configuration document or writing
	// the verdict.
	ErrIO = errors.New("i/o error")

	// ErrJSON covers a malformed configuration document.
	ErrJSON = errors.New("malformed configuration")

	// ErrInvalidLanguage is returned for a lang value outside the
	// recognized set.
	ErrInvalidLanguage = errors.New("invalid language")

	// ErrInvalidFilePath is returned when a required path does not exist
	// at validation time.
	ErrInvalidFilePath = errors.New("invalid file path")

	// ErrInvalidLimit is returned for a zero resource limit.
	ErrInvalidLimit = errors.New("invalid limit")

	// ErrPermissionDenied is returned when the caller is not root.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrKernel is returned when a privileged syscall fails in the
	// supervisor before or while the child runs.
	ErrKernel = errors.New("kernel error")

	// ErrMessage is the free-form wrapper for contextual failures that
	// fit no other kind.
	ErrMessage = errors.New("judge failure")
)

// IO wraps err as an ErrIO.
func IO(err error) error {
	return fmt.Errorf("%w: %v", ErrIO, err)
}

// JSON wraps err as an ErrJSON.
func JSON(err error) error {
	return fmt.Errorf("%w: %v", ErrJSON, err)
}

// InvalidLanguage reports an unrecognized language name.
func InvalidLanguage(lang string) error {
	return fmt.Errorf("%w: %q", ErrInvalidLanguage, lang)
}

// InvalidFilePath reports a path that does not exist.
func InvalidFilePath(path string) error {
	return fmt.Errorf("%w: %s", ErrInvalidFilePath, path)
}

// InvalidLimit reports a zero limit for the named field.
func InvalidLimit(field string) error {
	return fmt.Errorf("%w: %s must be greater than zero", ErrInvalidLimit, field)
}

// Kernel wraps a failed privileged syscall with the call name.
func Kernel(call string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrKernel, call, err)
}

// Msg builds an ErrMessage from a format string.
func Msg(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMessage, fmt.Sprintf(format, args...))
}

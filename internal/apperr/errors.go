// Package apperr defines the error taxonomy shared by storage, service and
// transport layers.
package apperr

import (
	"errors"
	"fmt"
	"io/fs"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrIOFailure        = errors.New("i/o failure")
	ErrPermissionDenied = errors.New("permission denied")
	ErrConflict         = errors.New("conflict")
	ErrAlreadyExists    = errors.New("already exists")
)

// Classify wraps a raw file-system error with the matching sentinel so that
// callers can use errors.Is without knowing about io/fs. Errors that already
// carry a sentinel, and nil, are returned unchanged.
func Classify(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrIOFailure),
		errors.Is(err, ErrPermissionDenied), errors.Is(err, ErrConflict),
		errors.Is(err, ErrAlreadyExists):
		return err
	case errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	case errors.Is(err, fs.ErrPermission):
		return fmt.Errorf("%w: %w", ErrPermissionDenied, err)
	case errors.Is(err, fs.ErrExist):
		return fmt.Errorf("%w: %w", ErrAlreadyExists, err)
	default:
		return fmt.Errorf("%w: %w", ErrIOFailure, err)
	}
}

package model

import "github.com/cockroachdb/errors"

// Error classes shared by the engines. Concrete errors are marked with one of these and
// tested with errors.Is.
var (
	ErrValidation  = errors.New("unexpected input")
	ErrCapacity    = errors.New("too many photos")
	ErrPersistence = errors.New("storage failure")
	ErrNotFound    = errors.New("not found")
	ErrEmptyInput  = errors.New("empty input")
	ErrForbidden   = errors.New("not allowed")
)

// Persistence marks err as a storage failure.
func Persistence(err error, msg string) error {
	if err == nil {
		return nil
	}
	return errors.Mark(errors.Wrap(err, msg), ErrPersistence)
}

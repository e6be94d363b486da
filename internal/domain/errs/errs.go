// Package errs holds the error kinds shared by every domain package. Concrete
// failures wrap one of these with fmt.Errorf("%w: ...") so callers can map them
// with errors.Is.
package errs

import "errors"

var (
	ErrValidation   = errors.New("invalid input")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	// ErrFatal marks a store that is in a state the lifecycle can never produce.
	ErrFatal = errors.New("inconsistent state")
)

// ExpectRows turns a rows-affected result into an error: err when the
// statement failed, onZero when it matched nothing.
func ExpectRows(n int64, err error, onZero error) error {
	if err != nil {
		return err
	}
	if n == 0 {
		return onZero
	}
	return nil
}

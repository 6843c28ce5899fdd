// Package errorz contains the error kinds shared between packages.
//
// Business failures are modelled as typed errors that the web layer
// translates to a response envelope. Unexpected faults are left untyped
// and surface as generic internal server errors.
package errorz

import (
	"database/sql"
	"errors"

	"github.com/mattn/go-sqlite3"
)

var (
	// ErrNotFound indicates a resource lookup missed, either because the
	// record is absent or because it's owned by another subject.
	ErrNotFound = errors.New("not found")
	// ErrConstraintViolated indicates a store level constraint was violated.
	ErrConstraintViolated = errors.New("constraint violated")
)

// MapDBErr maps database errors to appropriate errorz errors.
// If err is nil, MapDBErr returns nil.
func MapDBErr(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}

	sErr := sqlite3.Error{}
	if errors.As(err, &sErr) {
		if sErr.Code == sqlite3.ErrConstraint {
			return ErrConstraintViolated
		}
	}

	return err
}

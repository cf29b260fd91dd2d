/*
errors.go - Error types for the orders domain

PURPOSE:
  All domain error values in one place. Handlers map these to HTTP status
  codes; anything else is treated as a store/internal failure.

ERROR CATEGORIES:
  1. Schema errors - uploaded workbook missing a required column (batch-fatal)
  2. Parse errors - unreadable/empty workbook (batch-fatal)
  3. Input errors - bad purge key, empty edit set

USAGE:
    if errors.Is(err, orders.ErrMissingColumn) {
        // 400, nothing was written
    }

SEE ALSO:
  - ingest.go: Produces schema and parse errors
  - api/handlers.go: Maps them to responses
*/
package orders

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingColumn is returned when an uploaded workbook lacks one of
	// the required headers. The whole upload batch is rejected.
	ErrMissingColumn = errors.New("missing required column")

	// ErrEmptyWorkbook is returned when an uploaded workbook has no sheet
	// or no rows at all.
	ErrEmptyWorkbook = errors.New("workbook is empty")

	// ErrNoBatch is returned by PurgeBatch when no Fecha de carga value
	// was supplied.
	ErrNoBatch = errors.New("no batch timestamp given")
)

// MissingColumnError names the header an uploaded workbook lacked.
type MissingColumnError struct {
	Column string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("missing required column %q", e.Column)
}

func (e *MissingColumnError) Unwrap() error {
	return ErrMissingColumn
}

// IsClientError reports whether err is caused by bad input rather than a
// store or internal failure.
func IsClientError(err error) bool {
	return errors.Is(err, ErrMissingColumn) ||
		errors.Is(err, ErrEmptyWorkbook) ||
		errors.Is(err, ErrNoBatch)
}

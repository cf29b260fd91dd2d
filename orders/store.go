/*
store.go - Persistence contract for the two order tables

PURPOSE:
  Defines the interface between the domain logic and the backing store.
  The store holds exactly two tables, pendientes and confirmaciones, and
  supports only two operations per table: read everything, or replace
  everything. There is no row-level update, delete, or append primitive -
  the backing stores (a spreadsheet workbook, or SQLite standing in for
  one) only ever see clear-then-write.

FULL-OVERWRITE CONTRACT:
  Overwrite* replaces the whole table. A caller that semantically wants
  "append one row" must load, modify in memory, and overwrite. The helpers
  in reconcile.go re-read immediately before every overwrite to narrow
  (not eliminate) the lost-update window between two editors.

ORDERING:
  Load* returns rows in stored order; Overwrite* persists them in slice
  order. Row order is part of the data (it is what the users see).

FAILURE:
  Errors are I/O failures and abort the caller's whole action. No retry
  policy lives at this boundary; a failure between clear and write can
  lose the table, which the single-writer deployment accepts.

IMPLEMENTATIONS:
  - store/sqlite: production store, one transaction per overwrite
  - store/xlsx:   a local workbook, one sheet per table
  - store/memory: tests and throwaway development

SEE ALSO:
  - reconcile.go: All read-modify-write cycles over this interface
*/
package orders

import "context"

// Store persists the pendientes and confirmaciones tables.
// Full read and full overwrite only.
type Store interface {
	// LoadPending returns every pending order in stored order.
	// An empty table yields an empty slice, not an error.
	LoadPending(ctx context.Context) ([]PendingOrder, error)

	// OverwritePending replaces the whole pendientes table.
	OverwritePending(ctx context.Context, rows []PendingOrder) error

	// LoadConfirmations returns every confirmation record in stored order.
	LoadConfirmations(ctx context.Context) ([]ConfirmationRecord, error)

	// OverwriteConfirmations replaces the whole confirmaciones table.
	OverwriteConfirmations(ctx context.Context, rows []ConfirmationRecord) error
}

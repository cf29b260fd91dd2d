/*
reconcile.go - Merge, bucket, and persist logic for the two order tables

PURPOSE:
  The working heart of the board. Joins pendientes with confirmaciones,
  splits the result into the three display buckets, and implements every
  mutation as an explicit read-modify-write cycle over the Store.

DISPLAY JOIN:
  Left join on OrderID. When a confirmation exists for a pending order,
  its Confirmation text AND its Technician override the pending values
  (the confirmation row is the fresher source for who actually went).
  Duplicate confirmation OrderIDs resolve to the last stored row.

BUCKETS:
  Completed: status == COMPLETADO (case-insensitive), whatever the text
  Awaiting:  not completed, confirmation empty
  Confirmed: not completed, confirmation non-empty
  Exactly one bucket per row.

READ-MODIFY-WRITE:
  The store only supports full overwrite, so every mutation here loads
  the latest stored state immediately before recomputing and writing.
  That narrows the window in which a second editor's write is lost; it
  does not close it. Last overwrite wins, by design of the backing store.

SEE ALSO:
  - store.go: The Load/Overwrite contract
  - export.go: The confirmed-subset hand-off
*/
package orders

import (
	"context"
	"fmt"
	"strings"
)

// Category is the display bucket of one work order.
type Category int

const (
	// Completed orders were closed in the field; nothing left to confirm.
	Completed Category = iota
	// Awaiting orders still need a technician confirmation.
	Awaiting
	// Confirmed orders carry a non-empty confirmation text.
	Confirmed
)

// Categorize assigns a work order to exactly one bucket.
func Categorize(w WorkOrder) Category {
	if completedStatus(w.Status) {
		return Completed
	}
	if w.Confirmation == "" {
		return Awaiting
	}
	return Confirmed
}

// completedStatus matches COMPLETADO in any casing.
func completedStatus(status string) bool {
	return strings.EqualFold(strings.TrimSpace(status), StatusCompleted)
}

// =============================================================================
// DISPLAY JOIN
// =============================================================================

// BuildView left-joins pending orders with their confirmations.
// Row order follows the pendientes table.
func BuildView(pending []PendingOrder, confirmations []ConfirmationRecord) []WorkOrder {
	byID := make(map[string]ConfirmationRecord, len(confirmations))
	for _, c := range confirmations {
		byID[c.OrderID] = c // last duplicate wins
	}

	views := make([]WorkOrder, 0, len(pending))
	for _, p := range pending {
		w := WorkOrder{PendingOrder: p}
		if c, ok := byID[p.OrderID]; ok {
			w.Confirmation = c.Confirmation
			if c.Technician != "" {
				w.Technician = c.Technician
			}
		}
		views = append(views, w)
	}
	return views
}

// Split partitions a view into the three buckets, preserving order.
func Split(views []WorkOrder) (completed, awaiting, confirmed []WorkOrder) {
	for _, w := range views {
		switch Categorize(w) {
		case Completed:
			completed = append(completed, w)
		case Awaiting:
			awaiting = append(awaiting, w)
		case Confirmed:
			confirmed = append(confirmed, w)
		}
	}
	return completed, awaiting, confirmed
}

// FilterLocalidades keeps only work orders in the selected localidades.
// An empty selection means no filter.
func FilterLocalidades(views []WorkOrder, selected []string) []WorkOrder {
	if len(selected) == 0 {
		return views
	}
	keep := make(map[string]bool, len(selected))
	for _, l := range selected {
		keep[strings.ToUpper(strings.TrimSpace(l))] = true
	}
	out := make([]WorkOrder, 0, len(views))
	for _, w := range views {
		if keep[w.Localidad] {
			out = append(out, w)
		}
	}
	return out
}

// Batches returns the distinct Fecha de carga values of the pending table
// in first-seen order. These drive the purge control.
func Batches(pending []PendingOrder) []string {
	seen := make(map[string]bool)
	var batches []string
	for _, p := range pending {
		if p.LoadedAt == "" || seen[p.LoadedAt] {
			continue
		}
		seen[p.LoadedAt] = true
		batches = append(batches, p.LoadedAt)
	}
	return batches
}

// =============================================================================
// INGEST DEDUPE + APPEND
// =============================================================================

// FilterNew drops ingested rows whose OrderID is already confirmed.
// This keeps already-handled orders from resurfacing on re-upload.
func FilterNew(rows []PendingOrder, confirmations []ConfirmationRecord) []PendingOrder {
	confirmedIDs := make(map[string]bool, len(confirmations))
	for _, c := range confirmations {
		confirmedIDs[c.OrderID] = true
	}
	out := make([]PendingOrder, 0, len(rows))
	for _, r := range rows {
		if confirmedIDs[r.OrderID] {
			continue
		}
		out = append(out, r)
	}
	return out
}

// AppendPending appends freshly ingested rows to the pendientes table,
// minus any order that already has a confirmation. Returns how many rows
// were appended and how many were skipped as already confirmed.
func AppendPending(ctx context.Context, store Store, rows []PendingOrder) (added, skipped int, err error) {
	confirmations, err := store.LoadConfirmations(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("load confirmaciones: %w", err)
	}
	fresh := FilterNew(rows, confirmations)
	skipped = len(rows) - len(fresh)
	if len(fresh) == 0 {
		return 0, skipped, nil
	}

	pending, err := store.LoadPending(ctx)
	if err != nil {
		return 0, skipped, fmt.Errorf("load pendientes: %w", err)
	}
	if err := store.OverwritePending(ctx, append(pending, fresh...)); err != nil {
		return 0, skipped, fmt.Errorf("write pendientes: %w", err)
	}
	return len(fresh), skipped, nil
}

// =============================================================================
// CONFIRMATION MUTATIONS
// =============================================================================

// SaveNewConfirmations records confirmations for awaiting orders.
// edits maps OrderID to the entered text; blank values are ignored, as
// are OrderIDs that are not currently in the awaiting bucket. New records
// are appended to the stored confirmaciones table. Returns how many were
// saved.
func SaveNewConfirmations(ctx context.Context, store Store, edits map[string]string) (int, error) {
	pending, err := store.LoadPending(ctx)
	if err != nil {
		return 0, fmt.Errorf("load pendientes: %w", err)
	}
	confirmations, err := store.LoadConfirmations(ctx)
	if err != nil {
		return 0, fmt.Errorf("load confirmaciones: %w", err)
	}

	_, awaiting, _ := Split(BuildView(pending, confirmations))

	var fresh []ConfirmationRecord
	for _, w := range awaiting {
		text := strings.TrimSpace(edits[w.OrderID])
		if text == "" {
			continue
		}
		fresh = append(fresh, w.ConfirmationFor(text))
	}
	if len(fresh) == 0 {
		return 0, nil
	}

	if err := store.OverwriteConfirmations(ctx, append(confirmations, fresh...)); err != nil {
		return 0, fmt.Errorf("write confirmaciones: %w", err)
	}
	return len(fresh), nil
}

// UpdateConfirmations rewrites the confirmation text of existing records.
// edits maps OrderID to the new text (trimmed before storing; an empty
// result is allowed and sends the order back to awaiting). This is a
// keyed replace: table cardinality and row order are preserved, records
// without an edit are untouched. Returns how many records changed.
func UpdateConfirmations(ctx context.Context, store Store, edits map[string]string) (int, error) {
	confirmations, err := store.LoadConfirmations(ctx)
	if err != nil {
		return 0, fmt.Errorf("load confirmaciones: %w", err)
	}

	updated := 0
	for i, c := range confirmations {
		text, ok := edits[c.OrderID]
		if !ok {
			continue
		}
		text = strings.TrimSpace(text)
		if text == c.Confirmation {
			continue
		}
		confirmations[i].Confirmation = text
		updated++
	}
	if updated == 0 {
		return 0, nil
	}

	if err := store.OverwriteConfirmations(ctx, confirmations); err != nil {
		return 0, fmt.Errorf("write confirmaciones: %w", err)
	}
	return updated, nil
}

// =============================================================================
// BATCH PURGE
// =============================================================================

// PurgeBatch removes every pending order whose Fecha de carga equals
// loadedAt exactly. Other batches are untouched. Returns how many rows
// were removed.
func PurgeBatch(ctx context.Context, store Store, loadedAt string) (int, error) {
	if loadedAt == "" {
		return 0, ErrNoBatch
	}
	pending, err := store.LoadPending(ctx)
	if err != nil {
		return 0, fmt.Errorf("load pendientes: %w", err)
	}

	kept := make([]PendingOrder, 0, len(pending))
	for _, p := range pending {
		if p.LoadedAt == loadedAt {
			continue
		}
		kept = append(kept, p)
	}
	removed := len(pending) - len(kept)
	if removed == 0 {
		return 0, nil
	}

	if err := store.OverwritePending(ctx, kept); err != nil {
		return 0, fmt.Errorf("write pendientes: %w", err)
	}
	return removed, nil
}

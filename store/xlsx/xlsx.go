/*
Package xlsx provides an orders.Store backed by a local .xlsx workbook.

PURPOSE:
  Keeps both tables as sheets of one workbook file, the same shape as
  the shared spreadsheet the board originally used: a header row
  followed by data rows. An overwrite drops the sheet and rewrites it,
  which is exactly the clear-then-update cycle of the original store.

LAYOUT:
  Sheet "pendientes":      Técnico | Estado de la orden | Número de
                           petición | Dias | Dirección | Localidad |
                           Teléfono móvil | Fecha de carga
  Sheet "confirmaciones":  same head columns (with the legacy "Días"
                           spelling) | Confirmación

  The "Dias"/"Días" split between the two sheets is legacy and is kept
  so existing workbooks stay readable.

DURABILITY:
  The workbook is re-read on every load and saved on every overwrite.
  A crash between delete-sheet and save can lose the table; acceptable
  for the single-editor deployment, same as the original.

SEE ALSO:
  - orders/store.go: Interface definition
  - store/sqlite: The transactional alternative
*/
package xlsx

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/xuri/excelize/v2"

	"github.com/ayg/confirmaciones/orders"
)

const (
	// SheetPending holds the pendientes table.
	SheetPending = "pendientes"
	// SheetConfirmations holds the confirmaciones table.
	SheetConfirmations = "confirmaciones"
)

// Store implements orders.Store on a workbook file.
type Store struct {
	mu   sync.Mutex
	path string
}

// New opens the workbook at path, creating it with empty header-only
// sheets when it does not exist yet.
func New(path string) (*Store, error) {
	s := &Store{path: path}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := s.create(); err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, fmt.Errorf("stat workbook: %w", err)
	}
	return s, nil
}

// create writes a fresh workbook holding both header-only sheets.
func (s *Store) create() error {
	file := excelize.NewFile()
	defer func() { _ = file.Close() }()

	if err := file.SetSheetName("Sheet1", SheetPending); err != nil {
		return fmt.Errorf("create %s: %w", SheetPending, err)
	}
	if _, err := file.NewSheet(SheetConfirmations); err != nil {
		return fmt.Errorf("create %s: %w", SheetConfirmations, err)
	}
	if err := writeHeader(file, SheetPending, orders.PendingColumns); err != nil {
		return err
	}
	if err := writeHeader(file, SheetConfirmations, orders.ConfirmationColumns); err != nil {
		return err
	}
	if err := file.SaveAs(s.path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

// =============================================================================
// PENDIENTES (orders.Store interface)
// =============================================================================

// LoadPending reads the pendientes sheet.
func (s *Store) LoadPending(_ context.Context) ([]orders.PendingOrder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.loadRows(SheetPending)
	if err != nil {
		return nil, err
	}

	result := []orders.PendingOrder{}
	for _, row := range rows {
		result = append(result, orders.PendingOrder{
			Technician:      cell(row, 0),
			Status:          cell(row, 1),
			OrderID:         cell(row, 2),
			DaysOutstanding: cell(row, 3),
			Address:         cell(row, 4),
			Localidad:       cell(row, 5),
			MobilePhone:     cell(row, 6),
			LoadedAt:        cell(row, 7),
		})
	}
	return result, nil
}

// OverwritePending rewrites the pendientes sheet.
func (s *Store) OverwritePending(_ context.Context, pending []orders.PendingOrder) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows := make([][]interface{}, len(pending))
	for i, p := range pending {
		rows[i] = []interface{}{
			p.Technician, p.Status, p.OrderID, p.DaysOutstanding,
			p.Address, p.Localidad, p.MobilePhone, p.LoadedAt,
		}
	}
	return s.overwriteSheet(SheetPending, orders.PendingColumns, rows)
}

// =============================================================================
// CONFIRMACIONES (orders.Store interface)
// =============================================================================

// LoadConfirmations reads the confirmaciones sheet.
func (s *Store) LoadConfirmations(_ context.Context) ([]orders.ConfirmationRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.loadRows(SheetConfirmations)
	if err != nil {
		return nil, err
	}

	result := []orders.ConfirmationRecord{}
	for _, row := range rows {
		result = append(result, orders.ConfirmationRecord{
			Technician:      cell(row, 0),
			Status:          cell(row, 1),
			OrderID:         cell(row, 2),
			DaysOutstanding: cell(row, 3),
			Address:         cell(row, 4),
			Localidad:       cell(row, 5),
			MobilePhone:     cell(row, 6),
			Confirmation:    cell(row, 7),
		})
	}
	return result, nil
}

// OverwriteConfirmations rewrites the confirmaciones sheet.
func (s *Store) OverwriteConfirmations(_ context.Context, confirmations []orders.ConfirmationRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows := make([][]interface{}, len(confirmations))
	for i, c := range confirmations {
		rows[i] = []interface{}{
			c.Technician, c.Status, c.OrderID, c.DaysOutstanding,
			c.Address, c.Localidad, c.MobilePhone, c.Confirmation,
		}
	}
	return s.overwriteSheet(SheetConfirmations, orders.ConfirmationColumns, rows)
}

// =============================================================================
// WORKBOOK PLUMBING
// =============================================================================

// loadRows returns the data rows of a sheet, header excluded.
// A missing sheet reads as empty rather than failing.
func (s *Store) loadRows(sheet string) ([][]string, error) {
	file, err := excelize.OpenFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer func() { _ = file.Close() }()

	rows, err := file.GetRows(sheet)
	if err != nil {
		if _, missing := err.(excelize.ErrSheetNotExist); missing {
			return nil, nil
		}
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if len(rows) <= 1 {
		return nil, nil
	}
	return rows[1:], nil
}

// overwriteSheet drops and rewrites one sheet: header, then rows.
func (s *Store) overwriteSheet(sheet string, header []string, rows [][]interface{}) error {
	file, err := excelize.OpenFile(s.path)
	if err != nil {
		return fmt.Errorf("open workbook: %w", err)
	}
	defer func() { _ = file.Close() }()

	if err := file.DeleteSheet(sheet); err != nil {
		return fmt.Errorf("clear sheet %q: %w", sheet, err)
	}
	if _, err := file.NewSheet(sheet); err != nil {
		return fmt.Errorf("recreate sheet %q: %w", sheet, err)
	}
	if err := writeHeader(file, sheet, header); err != nil {
		return err
	}

	for i, row := range rows {
		cellName, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("row %d: %w", i+2, err)
		}
		r := row
		if err := file.SetSheetRow(sheet, cellName, &r); err != nil {
			return fmt.Errorf("write row %d of %q: %w", i+2, sheet, err)
		}
	}

	if err := file.Save(); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

func writeHeader(file *excelize.File, sheet string, header []string) error {
	cells := make([]interface{}, len(header))
	for i, h := range header {
		cells[i] = h
	}
	if err := file.SetSheetRow(sheet, "A1", &cells); err != nil {
		return fmt.Errorf("write header of %q: %w", sheet, err)
	}
	return nil
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

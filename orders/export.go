/*
export.go - Confirmed-orders hand-off workbook

PURPOSE:
  Selects the rows downstream teams care about (confirmed, not yet
  completed) and renders them as an .xlsx workbook for download.

SELECTION:
  status != COMPLETADO (case-insensitive) AND confirmation non-empty.
  A confirmation record with empty text is noise, not a hand-off.

SEE ALSO:
  - reconcile.go: Where Confirmed rows come from
*/
package orders

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// ExportSheetName is the sheet holding the hand-off rows.
const ExportSheetName = "confirmadas"

// ExportConfirmed selects the hand-off subset of the confirmaciones
// table: not completed, confirmation text present. Stored order is kept.
func ExportConfirmed(records []ConfirmationRecord) []ConfirmationRecord {
	out := make([]ConfirmationRecord, 0, len(records))
	for _, c := range records {
		if completedStatus(c.Status) || c.Confirmation == "" {
			continue
		}
		out = append(out, c)
	}
	return out
}

// WriteWorkbook renders confirmation records as an .xlsx workbook with
// the confirmaciones header row.
func WriteWorkbook(w io.Writer, records []ConfirmationRecord) error {
	file := excelize.NewFile()
	defer func() { _ = file.Close() }()

	if err := file.SetSheetName("Sheet1", ExportSheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	header := make([]interface{}, len(ConfirmationColumns))
	for i, col := range ConfirmationColumns {
		header[i] = col
	}
	if err := file.SetSheetRow(ExportSheetName, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, c := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("row %d: %w", i+2, err)
		}
		row := []interface{}{
			c.Technician, c.Status, c.OrderID, c.DaysOutstanding,
			c.Address, c.Localidad, c.MobilePhone, c.Confirmation,
		}
		if err := file.SetSheetRow(ExportSheetName, cell, &row); err != nil {
			return fmt.Errorf("row %d: %w", i+2, err)
		}
	}

	if err := file.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

/*
ingest.go - Upload parsing and normalization for pending orders

PURPOSE:
  Turns uploaded .xlsx workbooks into clean PendingOrder rows. Per file:
  1. Locate the 7 required columns by header (extra columns are dropped,
     a missing one fails the whole upload batch)
  2. Uppercase Localidad
  3. Keep only allow-listed localidades, counting what was dropped
  4. Stamp every surviving row with the batch's Fecha de carga
  5. Normalize Teléfono móvil to a plain integer digit string

FAIL-FAST:
  One bad file fails the whole batch. Nothing reaches the store until
  every file parsed, so a rejected upload leaves no partial state.

PHONE CELLS:
  Spreadsheet exports render numeric phone columns as "3105551234",
  "3105551234.0" or even "3.105551234E+09" depending on the source tool.
  All three must come out as "3105551234". Non-numeric values are kept
  verbatim rather than rejected.

SEE ALSO:
  - reconcile.go: AppendPending dedupes the result against confirmaciones
  - export.go: The writing half of the workbook boundary
*/
package orders

import (
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// IngestResult is the outcome of normalizing one upload batch.
type IngestResult struct {
	Rows             []PendingOrder
	DroppedLocalidad int // rows outside the allow-list, counted per batch
	LoadedAt         string
}

// IngestWorkbooks parses and normalizes one or more uploaded workbooks.
// Every row of the batch shares loadedAt as its Fecha de carga. Rows keep
// input-file order, then sheet row order. Any unreadable file or missing
// required column fails the whole batch.
func IngestWorkbooks(readers []io.Reader, loadedAt string) (IngestResult, error) {
	result := IngestResult{LoadedAt: loadedAt}
	for i, r := range readers {
		rows, dropped, err := parseWorkbook(r, loadedAt)
		if err != nil {
			return IngestResult{}, fmt.Errorf("file %d: %w", i+1, err)
		}
		result.Rows = append(result.Rows, rows...)
		result.DroppedLocalidad += dropped
	}
	return result, nil
}

// parseWorkbook reads the first sheet of one workbook and applies the
// normalization pipeline.
func parseWorkbook(r io.Reader, loadedAt string) ([]PendingOrder, int, error) {
	file, err := excelize.OpenReader(r)
	if err != nil {
		return nil, 0, fmt.Errorf("open workbook: %w", err)
	}
	defer func() { _ = file.Close() }()

	sheetName := file.GetSheetName(0)
	if sheetName == "" {
		return nil, 0, ErrEmptyWorkbook
	}

	cells, err := file.GetRows(sheetName)
	if err != nil {
		return nil, 0, fmt.Errorf("read sheet %q: %w", sheetName, err)
	}
	if len(cells) == 0 {
		return nil, 0, ErrEmptyWorkbook
	}

	cols, err := locateColumns(cells[0])
	if err != nil {
		return nil, 0, err
	}

	var (
		orders  []PendingOrder
		dropped int
	)
	for _, row := range cells[1:] {
		localidad := strings.ToUpper(cellValue(row, cols[ColLocalidad]))
		if !ValidLocalidad(localidad) {
			dropped++
			continue
		}
		orders = append(orders, PendingOrder{
			Technician:      cellValue(row, cols[ColTecnico]),
			Status:          cellValue(row, cols[ColEstado]),
			OrderID:         cellValue(row, cols[ColPeticion]),
			DaysOutstanding: cellValue(row, cols[ColDias]),
			Address:         cellValue(row, cols[ColDireccion]),
			Localidad:       localidad,
			MobilePhone:     NormalizePhone(cellValue(row, cols[ColTelefono])),
			LoadedAt:        loadedAt,
		})
	}
	return orders, dropped, nil
}

// locateColumns maps each required header to its column index.
// Headers match case-insensitively after trimming; the "Días" spelling is
// accepted for the days column since some exports carry the accent.
func locateColumns(header []string) (map[string]int, error) {
	index := make(map[string]int, len(RequiredUploadColumns))
	for i, cell := range header {
		name := strings.TrimSpace(cell)
		for _, want := range RequiredUploadColumns {
			if strings.EqualFold(name, want) {
				if _, ok := index[want]; !ok {
					index[want] = i
				}
			}
		}
		if strings.EqualFold(name, ColDiasAccent) {
			if _, ok := index[ColDias]; !ok {
				index[ColDias] = i
			}
		}
	}
	for _, want := range RequiredUploadColumns {
		if _, ok := index[want]; !ok {
			return nil, &MissingColumnError{Column: want}
		}
	}
	return index, nil
}

// cellValue returns the trimmed cell at idx, or "" when the row is short.
// excelize truncates trailing empty cells, so short rows are normal.
func cellValue(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// NormalizePhone renders a numeric phone cell as a plain integer digit
// string. Empty stays empty; non-numeric values pass through untouched.
func NormalizePhone(raw string) string {
	if raw == "" {
		return ""
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return raw
	}
	return d.Truncate(0).String()
}

package orders_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/ayg/confirmaciones/orders"
)

func TestExportConfirmed_Selection(t *testing.T) {
	records := []orders.ConfirmationRecord{
		confirmada("P1", "Pendiente", "confirmado"), // kept
		confirmada("P9", "Pendiente", ""),           // empty text: excluded
		confirmada("P2", "COMPLETADO", "listo"),     // completed: excluded
		confirmada("P3", "Completado", "ok"),        // completed, mixed case: excluded
		confirmada("P4", "En ruta", "mañana 8am"),   // kept
	}

	out := orders.ExportConfirmed(records)
	require.Len(t, out, 2)
	assert.Equal(t, "P1", out[0].OrderID)
	assert.Equal(t, "P4", out[1].OrderID)
}

func TestWriteWorkbook_HeaderAndRows(t *testing.T) {
	records := []orders.ConfirmationRecord{
		confirmada("P1", "Pendiente", "confirmado"),
		confirmada("P4", "En ruta", "mañana 8am"),
	}

	var buf bytes.Buffer
	require.NoError(t, orders.WriteWorkbook(&buf, records))

	file, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer file.Close()

	rows, err := file.GetRows(orders.ExportSheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	// header carries the accented legacy spelling of the days column
	assert.Equal(t, orders.ConfirmationColumns, rows[0])
	assert.Equal(t, "P1", rows[1][2])
	assert.Equal(t, "mañana 8am", rows[2][7])
}

func TestWriteWorkbook_EmptyStillHasHeader(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, orders.WriteWorkbook(&buf, nil))

	file, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer file.Close()

	rows, err := file.GetRows(orders.ExportSheetName)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, orders.ConfirmationColumns, rows[0])
}

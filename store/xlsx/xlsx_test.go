package xlsx_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/ayg/confirmaciones/orders"
	"github.com/ayg/confirmaciones/store/xlsx"
)

func newTestStore(t *testing.T) (*xlsx.Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "confirmaciones.xlsx")
	store, err := xlsx.New(path)
	require.NoError(t, err)
	return store, path
}

func TestNewCreatesHeaderOnlyWorkbook(t *testing.T) {
	_, path := newTestStore(t)

	file, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer file.Close()

	rows, err := file.GetRows(xlsx.SheetPending)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, orders.PendingColumns, rows[0])

	rows, err = file.GetRows(xlsx.SheetConfirmations)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	// the confirmaciones sheet keeps the accented legacy "Días" header
	assert.Equal(t, orders.ConfirmationColumns, rows[0])
}

func TestEmptyTablesLoadEmpty(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	pending, err := store.LoadPending(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)

	confirmations, err := store.LoadConfirmations(ctx)
	require.NoError(t, err)
	assert.Empty(t, confirmations)
}

func TestRoundTrip_BothTables(t *testing.T) {
	store, path := newTestStore(t)
	ctx := context.Background()

	pending := []orders.PendingOrder{
		{Technician: "Carlos Rojas", Status: "Pendiente", OrderID: "P1", DaysOutstanding: "3",
			Address: "Cra 9 # 12-34", Localidad: "FUNZA", MobilePhone: "3105551234",
			LoadedAt: "2025-08-01 08:00:00"},
		{Technician: "Luisa Prieto", Status: "En ruta", OrderID: "P2", DaysOutstanding: "1",
			Address: "Cl 3 # 4-55", Localidad: "COTA", MobilePhone: "",
			LoadedAt: "2025-08-02 09:30:00"},
	}
	confirmations := []orders.ConfirmationRecord{
		{Technician: "Luisa Prieto", Status: "Pendiente", OrderID: "P1", DaysOutstanding: "3",
			Address: "Cra 9 # 12-34", Localidad: "FUNZA", MobilePhone: "3105551234",
			Confirmation: "confirmado 10am"},
	}

	require.NoError(t, store.OverwritePending(ctx, pending))
	require.NoError(t, store.OverwriteConfirmations(ctx, confirmations))

	// reopen from disk: the workbook is the source of truth, not memory
	reopened, err := xlsx.New(path)
	require.NoError(t, err)

	gotPending, err := reopened.LoadPending(ctx)
	require.NoError(t, err)
	assert.Equal(t, pending, gotPending)

	gotConfirmations, err := reopened.LoadConfirmations(ctx)
	require.NoError(t, err)
	assert.Equal(t, confirmations, gotConfirmations)
}

func TestOverwriteReplacesSheet(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.OverwritePending(ctx, []orders.PendingOrder{
		{OrderID: "P1", LoadedAt: "2025-08-01 08:00:00"},
		{OrderID: "P2", LoadedAt: "2025-08-01 08:00:00"},
	}))
	require.NoError(t, store.OverwritePending(ctx, []orders.PendingOrder{
		{OrderID: "P3", LoadedAt: "2025-08-02 09:30:00"},
	}))

	got, err := store.LoadPending(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "P3", got[0].OrderID)
}

func TestOverwriteOneSheetLeavesTheOther(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.OverwriteConfirmations(ctx, []orders.ConfirmationRecord{
		{OrderID: "P1", Confirmation: "ok"},
	}))
	require.NoError(t, store.OverwritePending(ctx, []orders.PendingOrder{
		{OrderID: "P2", LoadedAt: "2025-08-01 08:00:00"},
	}))

	confirmations, err := store.LoadConfirmations(ctx)
	require.NoError(t, err)
	require.Len(t, confirmations, 1)
	assert.Equal(t, "P1", confirmations[0].OrderID)
}

/*
handlers_test.go - HTTP round-trip tests for the board API

Tests for:
- Upload ingestion (allow-list, dedupe, batch stamping)
- Board view buckets and localidad filter
- Confirmation save/edit
- Export download
- Batch purge
*/
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/ayg/confirmaciones/orders"
	"github.com/ayg/confirmaciones/store/memory"
)

var uploadHeader = []string{
	"Técnico", "Estado de la orden", "Número de petición", "Dias",
	"Dirección", "Localidad", "Teléfono móvil",
}

func newTestServer(t *testing.T) (*httptest.Server, *memory.Store) {
	t.Helper()

	store := memory.New()
	handler := NewHandler(store)
	handler.now = func() time.Time {
		return time.Date(2025, 8, 29, 10, 0, 0, 0, time.UTC)
	}

	server := httptest.NewServer(NewRouter(handler))
	t.Cleanup(server.Close)
	return server, store
}

// workbookBytes renders an .xlsx with the given header and rows.
func workbookBytes(t *testing.T, header []string, rows [][]interface{}) []byte {
	t.Helper()

	file := excelize.NewFile()
	defer file.Close()

	cells := make([]interface{}, len(header))
	for i, h := range header {
		cells[i] = h
	}
	if err := file.SetSheetRow("Sheet1", "A1", &cells); err != nil {
		t.Fatalf("Failed to write header: %v", err)
	}
	for i, row := range rows {
		cellName, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			t.Fatalf("Failed to name cell: %v", err)
		}
		r := row
		if err := file.SetSheetRow("Sheet1", cellName, &r); err != nil {
			t.Fatalf("Failed to write row: %v", err)
		}
	}

	buf, err := file.WriteToBuffer()
	if err != nil {
		t.Fatalf("Failed to render workbook: %v", err)
	}
	return buf.Bytes()
}

// uploadRequest builds a multipart POST carrying one or more workbooks.
func uploadRequest(t *testing.T, url string, workbooks ...[]byte) *http.Request {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for i, wb := range workbooks {
		part, err := writer.CreateFormFile("files", "pendientes.xlsx")
		if err != nil {
			t.Fatalf("Failed to create form file %d: %v", i, err)
		}
		if _, err := part.Write(wb); err != nil {
			t.Fatalf("Failed to write form file %d: %v", i, err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("Failed to close multipart writer: %v", err)
	}

	req, err := http.NewRequest(http.MethodPost, url+"/api/orders/upload", &body)
	if err != nil {
		t.Fatalf("Failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func decodeJSON(t *testing.T, resp *http.Response, into any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(into); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
}

// =============================================================================
// UPLOAD + BOARD VIEW
// =============================================================================

func TestUploadOrders_AppendsAndStamps(t *testing.T) {
	// GIVEN: a workbook with one tracked and one untracked localidad
	server, store := newTestServer(t)
	wb := workbookBytes(t, uploadHeader, [][]interface{}{
		{"Carlos Rojas", "Pendiente", "A1", "3", "Cra 9 # 12-34", "bogota", "3105551234"},
		{"Carlos Rojas", "Pendiente", "A2", "3", "Cra 9 # 12-34", "FUNZA", "3105551234.0"},
	})

	resp, err := http.DefaultClient.Do(uploadRequest(t, server.URL, wb))
	if err != nil {
		t.Fatalf("Upload failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}

	var summary UploadResponse
	decodeJSON(t, resp, &summary)
	if summary.Ingested != 1 || summary.DroppedLocalidad != 1 || summary.Appended != 1 {
		t.Fatalf("Unexpected summary: %+v", summary)
	}
	if summary.LoadedAt != "2025-08-29 10:00:00" {
		t.Fatalf("Unexpected batch stamp: %q", summary.LoadedAt)
	}

	// THEN: only A2 reached the store, normalized
	pending, err := store.LoadPending(context.Background())
	if err != nil {
		t.Fatalf("Failed to load pendientes: %v", err)
	}
	if len(pending) != 1 || pending[0].OrderID != "A2" {
		t.Fatalf("Unexpected pendientes: %+v", pending)
	}
	if pending[0].MobilePhone != "3105551234" {
		t.Fatalf("Phone not normalized: %q", pending[0].MobilePhone)
	}
	if pending[0].LoadedAt != "2025-08-29 10:00:00" {
		t.Fatalf("Row not stamped: %q", pending[0].LoadedAt)
	}
}

func TestUploadOrders_SkipsAlreadyConfirmed(t *testing.T) {
	server, store := newTestServer(t)
	seedConfirmation(t, store, "A1", "Pendiente", "ya confirmada")

	wb := workbookBytes(t, uploadHeader, [][]interface{}{
		{"Carlos Rojas", "Pendiente", "A1", "3", "Cra 9 # 12-34", "FUNZA", ""},
	})

	resp, err := http.DefaultClient.Do(uploadRequest(t, server.URL, wb))
	if err != nil {
		t.Fatalf("Upload failed: %v", err)
	}

	var summary UploadResponse
	decodeJSON(t, resp, &summary)
	if summary.SkippedConfirmed != 1 || summary.Appended != 0 {
		t.Fatalf("Expected the confirmed order to be skipped, got %+v", summary)
	}

	pending, _ := store.LoadPending(context.Background())
	if len(pending) != 0 {
		t.Fatalf("Store should have zero pendientes, got %d", len(pending))
	}
}

func TestUploadOrders_MissingColumnRejectsBatch(t *testing.T) {
	server, store := newTestServer(t)
	good := workbookBytes(t, uploadHeader, [][]interface{}{
		{"Carlos Rojas", "Pendiente", "A1", "3", "Cra 9 # 12-34", "FUNZA", ""},
	})
	bad := workbookBytes(t, []string{"Técnico", "Estado de la orden"}, nil)

	resp, err := http.DefaultClient.Do(uploadRequest(t, server.URL, good, bad))
	if err != nil {
		t.Fatalf("Upload failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d", resp.StatusCode)
	}

	// batch-fatal: the good file must not have been appended either
	pending, _ := store.LoadPending(context.Background())
	if len(pending) != 0 {
		t.Fatalf("Rejected batch must append nothing, got %d rows", len(pending))
	}
}

func TestGetOrders_BucketsAndLocalidadFilter(t *testing.T) {
	server, store := newTestServer(t)
	seedPending(t, store,
		orders.PendingOrder{OrderID: "P1", Status: "Completado", Localidad: "FUNZA", LoadedAt: "2025-08-01 08:00:00"},
		orders.PendingOrder{OrderID: "P2", Status: "Pendiente", Localidad: "COTA", LoadedAt: "2025-08-01 08:00:00"},
		orders.PendingOrder{OrderID: "P3", Status: "Pendiente", Localidad: "MADRID", LoadedAt: "2025-08-01 08:00:00"},
	)
	seedConfirmation(t, store, "P3", "Pendiente", "confirmado")

	resp, err := http.Get(server.URL + "/api/orders")
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	var board OrdersResponse
	decodeJSON(t, resp, &board)

	if len(board.Completed) != 1 || board.Completed[0].OrderID != "P1" {
		t.Fatalf("Unexpected completadas: %+v", board.Completed)
	}
	if len(board.Awaiting) != 1 || board.Awaiting[0].OrderID != "P2" {
		t.Fatalf("Unexpected pendientes: %+v", board.Awaiting)
	}
	if len(board.Confirmed) != 1 || board.Confirmed[0].OrderID != "P3" {
		t.Fatalf("Unexpected confirmadas: %+v", board.Confirmed)
	}

	// localidad filter narrows the board
	resp, err = http.Get(server.URL + "/api/orders?localidades=cota")
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	decodeJSON(t, resp, &board)
	if len(board.Completed) != 0 || len(board.Awaiting) != 1 || len(board.Confirmed) != 0 {
		t.Fatalf("Filter should leave only P2, got %+v", board)
	}
}

// =============================================================================
// CONFIRMATIONS
// =============================================================================

func TestSaveThenEditConfirmations(t *testing.T) {
	server, store := newTestServer(t)
	seedPending(t, store,
		orders.PendingOrder{OrderID: "P1", Status: "Pendiente", Localidad: "FUNZA", Technician: "Carlos Rojas", LoadedAt: "2025-08-01 08:00:00"},
	)

	// Save a new confirmation for the awaiting row
	resp := postJSON(t, server.URL+"/api/confirmations", http.MethodPost,
		ConfirmationsRequest{Confirmations: map[string]string{"P1": "confirmado 10am"}})
	var saved ConfirmationsResponse
	decodeJSON(t, resp, &saved)
	if saved.Saved != 1 {
		t.Fatalf("Expected 1 saved, got %d", saved.Saved)
	}

	// Edit it in place
	resp = postJSON(t, server.URL+"/api/confirmations", http.MethodPut,
		ConfirmationsRequest{Confirmations: map[string]string{"P1": "reprogramado 2pm"}})
	decodeJSON(t, resp, &saved)
	if saved.Saved != 1 {
		t.Fatalf("Expected 1 updated, got %d", saved.Saved)
	}

	confirmations, _ := store.LoadConfirmations(context.Background())
	if len(confirmations) != 1 {
		t.Fatalf("Keyed replace must keep cardinality at 1, got %d", len(confirmations))
	}
	if confirmations[0].Confirmation != "reprogramado 2pm" {
		t.Fatalf("Unexpected text: %q", confirmations[0].Confirmation)
	}
}

func TestSaveConfirmations_EmptyBodyRejected(t *testing.T) {
	server, _ := newTestServer(t)

	resp := postJSON(t, server.URL+"/api/confirmations", http.MethodPost,
		ConfirmationsRequest{})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d", resp.StatusCode)
	}
}

func TestExportConfirmed_Download(t *testing.T) {
	server, store := newTestServer(t)
	seedConfirmation(t, store, "P1", "Pendiente", "confirmado")
	seedConfirmation(t, store, "P9", "Pendiente", "") // excluded: empty text
	seedConfirmation(t, store, "P2", "COMPLETADO", "listo")

	resp, err := http.Get(server.URL + "/api/confirmations/export")
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet" {
		t.Fatalf("Unexpected content type: %q", ct)
	}
	if cd := resp.Header.Get("Content-Disposition"); cd != `attachment; filename="confirmadas_ag.xlsx"` {
		t.Fatalf("Unexpected disposition: %q", cd)
	}

	file, err := excelize.OpenReader(resp.Body)
	if err != nil {
		t.Fatalf("Response is not a workbook: %v", err)
	}
	defer file.Close()

	rows, err := file.GetRows(orders.ExportSheetName)
	if err != nil {
		t.Fatalf("Failed to read export sheet: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("Expected header + 1 row, got %d rows", len(rows))
	}
	if rows[1][2] != "P1" {
		t.Fatalf("Expected P1 in export, got %q", rows[1][2])
	}
}

// =============================================================================
// BATCHES
// =============================================================================

func TestBatchesListAndPurge(t *testing.T) {
	server, store := newTestServer(t)
	seedPending(t, store,
		orders.PendingOrder{OrderID: "P1", Status: "Pendiente", Localidad: "FUNZA", LoadedAt: "2025-08-01 08:00:00"},
		orders.PendingOrder{OrderID: "P2", Status: "Pendiente", Localidad: "COTA", LoadedAt: "2025-08-02 09:30:00"},
	)

	resp, err := http.Get(server.URL + "/api/batches")
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	var batches BatchesResponse
	decodeJSON(t, resp, &batches)
	if len(batches.Batches) != 2 {
		t.Fatalf("Expected 2 batches, got %v", batches.Batches)
	}

	req, _ := http.NewRequest(http.MethodDelete,
		server.URL+"/api/batches?loaded_at=2025-08-01+08%3A00%3A00", nil)
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("DELETE failed: %v", err)
	}
	var purge PurgeResponse
	decodeJSON(t, resp, &purge)
	if purge.Removed != 1 {
		t.Fatalf("Expected 1 removed, got %d", purge.Removed)
	}

	pending, _ := store.LoadPending(context.Background())
	if len(pending) != 1 || pending[0].OrderID != "P2" {
		t.Fatalf("Wrong batch purged: %+v", pending)
	}
}

func TestPurgeBatch_MissingParamRejected(t *testing.T) {
	server, _ := newTestServer(t)

	req, _ := http.NewRequest(http.MethodDelete, server.URL+"/api/batches", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("DELETE failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d", resp.StatusCode)
	}
}

// =============================================================================
// TEST HELPERS
// =============================================================================

func seedPending(t *testing.T, store *memory.Store, rows ...orders.PendingOrder) {
	t.Helper()
	existing, err := store.LoadPending(context.Background())
	if err != nil {
		t.Fatalf("Failed to load pendientes: %v", err)
	}
	if err := store.OverwritePending(context.Background(), append(existing, rows...)); err != nil {
		t.Fatalf("Failed to seed pendientes: %v", err)
	}
}

func seedConfirmation(t *testing.T, store *memory.Store, orderID, status, text string) {
	t.Helper()
	existing, err := store.LoadConfirmations(context.Background())
	if err != nil {
		t.Fatalf("Failed to load confirmaciones: %v", err)
	}
	record := orders.ConfirmationRecord{
		Technician:   "Luisa Prieto",
		Status:       status,
		OrderID:      orderID,
		Localidad:    "FUNZA",
		Confirmation: text,
	}
	if err := store.OverwriteConfirmations(context.Background(), append(existing, record)); err != nil {
		t.Fatalf("Failed to seed confirmaciones: %v", err)
	}
}

func postJSON(t *testing.T, url, method string, body any) *http.Response {
	t.Helper()
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("Failed to marshal body: %v", err)
	}
	req, err := http.NewRequest(method, url, bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("Failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	return resp
}

/*
handlers.go - HTTP API handlers for the confirmation board

PURPOSE:
  Exposes the order confirmation board via REST API. Handles HTTP
  request/response, JSON serialization, multipart uploads, and delegates
  to the orders domain logic.

ENDPOINTS:
  Board:
    GET    /api/orders                 Board view (three buckets)
    POST   /api/orders/upload          Upload pendientes workbooks

  Confirmations:
    POST   /api/confirmations          Save new confirmations (awaiting rows)
    PUT    /api/confirmations          Edit existing confirmation text
    GET    /api/confirmations/export   Download confirmed orders as .xlsx

  Batches:
    GET    /api/batches                List Fecha de carga values
    DELETE /api/batches?loaded_at=...  Purge one upload batch

REQUEST FLOW:
  1. Parse HTTP request
  2. Validate input
  3. Call domain logic (ingest, reconcile, export)
  4. Serialize response
  5. Handle errors

MUTATION SERIALIZATION:
  Every mutating handler holds the Handler mutex across its whole
  read-modify-write cycle, so requests hitting one process cannot
  interleave between load and overwrite. Editors on separate processes
  still race (last overwrite wins); the backing store offers nothing
  stronger.

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Bad uploads (missing column, unreadable file), bad input
  - 500: Store I/O failures
  A failed upload appends nothing: files are parsed fully before any
  store write.

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
  - orders/reconcile.go: The logic these handlers drive
*/
package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/ayg/confirmaciones/orders"
)

const exportFilename = "confirmadas_ag.xlsx"

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store orders.Store

	// serializes read-modify-write cycles within this process
	mu sync.Mutex

	// now stamps upload batches; swapped out in tests
	now func() time.Time
}

// NewHandler creates a new handler over the given store.
func NewHandler(store orders.Store) *Handler {
	return &Handler{
		Store: store,
		now:   time.Now,
	}
}

// =============================================================================
// BOARD HANDLERS
// =============================================================================

// GetOrders returns the board view split into the three buckets,
// optionally filtered by ?localidades=FUNZA,COTA (default: all).
func (h *Handler) GetOrders(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	pending, err := h.Store.LoadPending(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load pendientes", err)
		return
	}
	confirmations, err := h.Store.LoadConfirmations(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load confirmaciones", err)
		return
	}

	selected := parseLocalidades(r.URL.Query().Get("localidades"))
	views := orders.FilterLocalidades(orders.BuildView(pending, confirmations), selected)
	completed, awaiting, confirmed := orders.Split(views)

	if len(selected) == 0 {
		selected = orders.Localidades
	}
	writeJSON(w, http.StatusOK, OrdersResponse{
		Localidades: selected,
		Completed:   toWorkOrderDTOs(completed),
		Awaiting:    toWorkOrderDTOs(awaiting),
		Confirmed:   toWorkOrderDTOs(confirmed),
	})
}

// UploadOrders ingests one or more .xlsx files from the multipart field
// "files" and appends the normalized rows to pendientes, minus orders
// that are already confirmed.
func (h *Handler) UploadOrders(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid multipart request", err)
		return
	}
	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		writeError(w, http.StatusBadRequest, "No files uploaded (use multipart field 'files')", nil)
		return
	}

	readers := make([]io.Reader, 0, len(files))
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("Failed to read %s", fh.Filename), err)
			return
		}
		defer f.Close()
		readers = append(readers, f)
	}

	loadedAt := h.now().Format(orders.TimestampLayout)
	result, err := orders.IngestWorkbooks(readers, loadedAt)
	if err != nil {
		status := http.StatusInternalServerError
		if orders.IsClientError(err) {
			status = http.StatusBadRequest
		}
		writeError(w, status, "Upload rejected", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	added, skipped, err := orders.AppendPending(r.Context(), h.Store, result.Rows)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to store pendientes", err)
		return
	}

	writeJSON(w, http.StatusOK, UploadResponse{
		LoadedAt:         loadedAt,
		Ingested:         len(result.Rows),
		DroppedLocalidad: result.DroppedLocalidad,
		SkippedConfirmed: skipped,
		Appended:         added,
	})
}

// =============================================================================
// CONFIRMATION HANDLERS
// =============================================================================

// SaveConfirmations records new confirmations for awaiting orders.
func (h *Handler) SaveConfirmations(w http.ResponseWriter, r *http.Request) {
	var req ConfirmationsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if len(req.Confirmations) == 0 {
		writeError(w, http.StatusBadRequest, "No confirmations given", nil)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	saved, err := orders.SaveNewConfirmations(r.Context(), h.Store, req.Confirmations)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save confirmations", err)
		return
	}
	writeJSON(w, http.StatusOK, ConfirmationsResponse{Saved: saved})
}

// UpdateConfirmations rewrites the text of existing confirmations.
func (h *Handler) UpdateConfirmations(w http.ResponseWriter, r *http.Request) {
	var req ConfirmationsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if len(req.Confirmations) == 0 {
		writeError(w, http.StatusBadRequest, "No confirmations given", nil)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	updated, err := orders.UpdateConfirmations(r.Context(), h.Store, req.Confirmations)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to update confirmations", err)
		return
	}
	writeJSON(w, http.StatusOK, ConfirmationsResponse{Saved: updated})
}

// ExportConfirmed streams the hand-off workbook: confirmed orders not
// yet completed in the field.
func (h *Handler) ExportConfirmed(w http.ResponseWriter, r *http.Request) {
	confirmations, err := h.Store.LoadConfirmations(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load confirmaciones", err)
		return
	}

	w.Header().Set("Content-Type",
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", exportFilename))

	// Headers are already sent; a failure here can only truncate the body.
	_ = orders.WriteWorkbook(w, orders.ExportConfirmed(confirmations))
}

// =============================================================================
// BATCH HANDLERS
// =============================================================================

// ListBatches returns the distinct Fecha de carga values of the board.
func (h *Handler) ListBatches(w http.ResponseWriter, r *http.Request) {
	pending, err := h.Store.LoadPending(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load pendientes", err)
		return
	}
	writeJSON(w, http.StatusOK, BatchesResponse{Batches: orders.Batches(pending)})
}

// PurgeBatch removes every pending order of one upload batch,
// identified by its exact Fecha de carga string.
func (h *Handler) PurgeBatch(w http.ResponseWriter, r *http.Request) {
	loadedAt := r.URL.Query().Get("loaded_at")
	if loadedAt == "" {
		writeError(w, http.StatusBadRequest, "Missing loaded_at parameter", nil)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	removed, err := orders.PurgeBatch(r.Context(), h.Store, loadedAt)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to purge batch", err)
		return
	}
	writeJSON(w, http.StatusOK, PurgeResponse{LoadedAt: loadedAt, Removed: removed})
}

// =============================================================================
// HELPERS
// =============================================================================

// parseLocalidades splits a comma-separated localidad filter.
func parseLocalidades(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, strings.ToUpper(p))
		}
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

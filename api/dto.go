/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication, decoupling the
  domain types from the wire contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Complex response wrappers

VALIDATION:
  Validation is done in handlers, not in DTOs. DTOs are pure data
  carriers.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import "github.com/ayg/confirmaciones/orders"

// WorkOrderDTO is one row of the board, whatever its bucket.
type WorkOrderDTO struct {
	Technician      string `json:"tecnico"`
	Status          string `json:"estado"`
	OrderID         string `json:"numero_peticion"`
	DaysOutstanding string `json:"dias"`
	Address         string `json:"direccion"`
	Localidad       string `json:"localidad"`
	MobilePhone     string `json:"telefono_movil"`
	LoadedAt        string `json:"fecha_carga"`
	Confirmation    string `json:"confirmacion"`
}

func toWorkOrderDTO(w orders.WorkOrder) WorkOrderDTO {
	return WorkOrderDTO{
		Technician:      w.Technician,
		Status:          w.Status,
		OrderID:         w.OrderID,
		DaysOutstanding: w.DaysOutstanding,
		Address:         w.Address,
		Localidad:       w.Localidad,
		MobilePhone:     w.MobilePhone,
		LoadedAt:        w.LoadedAt,
		Confirmation:    w.Confirmation,
	}
}

func toWorkOrderDTOs(views []orders.WorkOrder) []WorkOrderDTO {
	dtos := make([]WorkOrderDTO, len(views))
	for i, w := range views {
		dtos[i] = toWorkOrderDTO(w)
	}
	return dtos
}

// OrdersResponse is the board view, split into its three buckets.
type OrdersResponse struct {
	Localidades []string       `json:"localidades"`
	Completed   []WorkOrderDTO `json:"completadas"`
	Awaiting    []WorkOrderDTO `json:"pendientes_confirmacion"`
	Confirmed   []WorkOrderDTO `json:"confirmadas"`
}

// UploadResponse summarizes one upload batch.
type UploadResponse struct {
	LoadedAt         string `json:"fecha_carga"`
	Ingested         int    `json:"cargadas"`
	DroppedLocalidad int    `json:"descartadas_localidad"`
	SkippedConfirmed int    `json:"omitidas_confirmadas"`
	Appended         int    `json:"agregadas"`
}

// ConfirmationsRequest carries per-order confirmation text, keyed by
// Número de petición. Used for both saving new confirmations and
// editing existing ones.
type ConfirmationsRequest struct {
	Confirmations map[string]string `json:"confirmaciones"`
}

// ConfirmationsResponse reports how many records a save touched.
type ConfirmationsResponse struct {
	Saved int `json:"guardadas"`
}

// BatchesResponse lists the distinct Fecha de carga values on the board.
type BatchesResponse struct {
	Batches []string `json:"fechas_carga"`
}

// PurgeResponse reports how many pending rows a purge removed.
type PurgeResponse struct {
	LoadedAt string `json:"fecha_carga"`
	Removed  int    `json:"eliminadas"`
}

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

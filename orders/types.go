/*
types.go - Core domain types for the confirmation board

PURPOSE:
  Defines the two persisted record shapes (pending orders and confirmation
  records), the working view produced by joining them, and the shared
  constants: the localidad allow-list, the completed-status sentinel, and
  the column headers used at the spreadsheet boundary.

DATA MODEL:
  PendingOrder:       one uploaded work order, stamped with its upload batch
  ConfirmationRecord: a technician's confirmation for one order
  WorkOrder:          PendingOrder + confirmation overlay, for display

KEY:
  OrderID ("Número de petición") keys both tables. Uniqueness is by
  convention only - the store never enforces it.

SEE ALSO:
  - reconcile.go: Join and bucket logic over these types
  - ingest.go: How PendingOrder rows are born
*/
package orders

// TimestampLayout is the Fecha de carga format. Every row of one upload
// batch shares the exact same stamp; purge matches it by string equality.
const TimestampLayout = "2006-01-02 15:04:05"

// StatusCompleted marks an order as done in the field. Comparisons are
// case-insensitive: source systems deliver "Completado", "COMPLETADO", etc.
const StatusCompleted = "COMPLETADO"

// Localidades is the fixed allow-list of tracked municipalities.
// Ingestion drops rows from anywhere else.
var Localidades = []string{
	"FUNZA",
	"MADRID",
	"MOSQUERA",
	"FACATATIVA",
	"COTA",
	"VILLETA",
	"ANAPOIMA",
	"LA MESA",
}

// ValidLocalidad reports whether name (already uppercased) is tracked.
func ValidLocalidad(name string) bool {
	for _, l := range Localidades {
		if l == name {
			return true
		}
	}
	return false
}

// Column headers as they appear in the backing workbook and in uploads.
// NOTE: the legacy sheets spell the days column "Dias" on pendientes but
// "Días" on confirmaciones. Both spellings are preserved verbatim so
// existing workbooks keep loading; do not unify without migrating them.
const (
	ColTecnico      = "Técnico"
	ColEstado       = "Estado de la orden"
	ColPeticion     = "Número de petición"
	ColDias         = "Dias"
	ColDiasAccent   = "Días"
	ColDireccion    = "Dirección"
	ColLocalidad    = "Localidad"
	ColTelefono     = "Teléfono móvil"
	ColFechaCarga   = "Fecha de carga"
	ColConfirmacion = "Confirmación"
)

// PendingColumns is the pendientes header row, in storage order.
var PendingColumns = []string{
	ColTecnico, ColEstado, ColPeticion, ColDias,
	ColDireccion, ColLocalidad, ColTelefono, ColFechaCarga,
}

// ConfirmationColumns is the confirmaciones header row, in storage order.
var ConfirmationColumns = []string{
	ColTecnico, ColEstado, ColPeticion, ColDiasAccent,
	ColDireccion, ColLocalidad, ColTelefono, ColConfirmacion,
}

// RequiredUploadColumns must all be present in an uploaded workbook.
// Extra columns are tolerated and dropped.
var RequiredUploadColumns = []string{
	ColTecnico, ColEstado, ColPeticion, ColDias,
	ColDireccion, ColLocalidad, ColTelefono,
}

// PendingOrder is one row of the pendientes table.
type PendingOrder struct {
	Technician      string `json:"tecnico"`
	Status          string `json:"estado"`
	OrderID         string `json:"numero_peticion"`
	DaysOutstanding string `json:"dias"`
	Address         string `json:"direccion"`
	Localidad       string `json:"localidad"`
	MobilePhone     string `json:"telefono_movil"`
	LoadedAt        string `json:"fecha_carga"`
}

// ConfirmationRecord is one row of the confirmaciones table.
type ConfirmationRecord struct {
	Technician      string `json:"tecnico"`
	Status          string `json:"estado"`
	OrderID         string `json:"numero_peticion"`
	DaysOutstanding string `json:"dias"`
	Address         string `json:"direccion"`
	Localidad       string `json:"localidad"`
	MobilePhone     string `json:"telefono_movil"`
	Confirmation    string `json:"confirmacion"`
}

// WorkOrder is a pending order overlaid with its confirmation, if any.
// This is the display shape; it is never persisted.
type WorkOrder struct {
	PendingOrder
	Confirmation string `json:"confirmacion"`
}

// ConfirmationFor builds the record persisted when a work order is
// confirmed with the given text.
func (w WorkOrder) ConfirmationFor(text string) ConfirmationRecord {
	return ConfirmationRecord{
		Technician:      w.Technician,
		Status:          w.Status,
		OrderID:         w.OrderID,
		DaysOutstanding: w.DaysOutstanding,
		Address:         w.Address,
		Localidad:       w.Localidad,
		MobilePhone:     w.MobilePhone,
		Confirmation:    text,
	}
}

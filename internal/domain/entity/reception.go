package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReceptionStatus estado del ciclo de vida de una recepción de mercancía.
type ReceptionStatus string

// Estados de la recepción.
const (
	ReceptionStatusPending   ReceptionStatus = "pendiente_recepcion" // facturación cargó la factura; logística escanea
	ReceptionStatusReceived  ReceptionStatus = "recepcionado"        // escaneo cerrado, esperando aprobación de cartera
	ReceptionStatusCompleted ReceptionStatus = "completado"          // aprobada, inventario actualizado
	// ReceptionStatusLegacyCompleted lo dejaba la finalización directa antigua (sin aprobación).
	// Solo se lee; ninguna operación nueva lo escribe.
	ReceptionStatusLegacyCompleted ReceptionStatus = "completed"
)

// IsTerminal indica si la recepción ya no admite transiciones.
func (s ReceptionStatus) IsTerminal() bool {
	return s == ReceptionStatusCompleted || s == ReceptionStatusLegacyCompleted
}

// Verdict resultado de la conciliación al cerrar el escaneo.
type Verdict string

// Resultados posibles de la conciliación.
const (
	VerdictOK       Verdict = "ok"
	VerdictShortage Verdict = "faltante"
	VerdictOverage  Verdict = "sobrante"
)

// Reception cabecera de una recepción de mercancía ligada a una factura de proveedor.
// El par (lower(Supplier), lower(InvoiceNumber)) es único; InvoiceNumber vacío cuenta como valor.
type Reception struct {
	ID              int64
	Supplier        string
	SupplierNIT     string
	InvoiceNumber   string
	InvoiceFilePath string
	Status          ReceptionStatus
	Verdict         Verdict // vacío hasta el cierre
	Notes           string
	CreatedBy       string
	ReceivedBy      string
	ApprovedBy      string
	CreatedAt       time.Time
	ReceivedAt      *time.Time
	ApprovedAt      *time.Time
	CompletedAt     *time.Time
	UpdatedAt       time.Time
}

// ExpectedItem línea de la factura: lo que debería llegar.
// ScannedQuantity solo crece (escaneos); nunca se decrementa.
type ExpectedItem struct {
	ID               int64
	ReceptionID      int64
	ItemCode         string
	ItemDescription  string
	ExpectedQuantity decimal.Decimal
	ScannedQuantity  decimal.Decimal
}

// ExtraItem producto escaneado que no coincidió con ninguna línea esperada.
// Existe a lo sumo uno por (ReceptionID, ProductID).
type ExtraItem struct {
	ID          int64
	ReceptionID int64
	ProductID   int64
	Quantity    decimal.Decimal
	CreatedAt   time.Time
	UpdatedAt   time.Time

	// Datos del catálogo para presentación (solo lectura).
	ProductName  string
	InternalCode string
	Barcode      string
}

// ProductQuantity total acumulado por producto (base de la acreditación al aprobar).
type ProductQuantity struct {
	ProductID int64           `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
}

package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExpectedItemInput línea esperada tal como la envía facturación (o el borrador de extracción).
type ExpectedItemInput struct {
	Code        string          `json:"code" validate:"required_without=Description,max=100"`
	Description string          `json:"description" validate:"max=500"`
	Quantity    decimal.Decimal `json:"quantity"`
}

// CreateReceptionRequest body para POST /api/receptions.
type CreateReceptionRequest struct {
	Supplier        string              `json:"supplier" validate:"required,max=255"`
	SupplierNIT     string              `json:"supplier_nit" validate:"max=50"`
	InvoiceNumber   string              `json:"invoice_number" validate:"max=100"`
	InvoiceFilePath string              `json:"invoice_file_path,omitempty"`
	ExpectedItems   []ExpectedItemInput `json:"expected_items" validate:"dive"`
}

// UpdateExpectedItemsRequest body para PUT /api/receptions/:id/expected-items.
type UpdateExpectedItemsRequest struct {
	ExpectedItems []ExpectedItemInput `json:"expected_items" validate:"dive"`
}

// ScanRequest body para POST /api/receptions/:id/items.
// Barcode admite un código simple o la etiqueta JSON de una caja ({"id","qty","lot","exp"}).
type ScanRequest struct {
	Barcode  string           `json:"barcode" validate:"required,max=1000"`
	Quantity *decimal.Decimal `json:"quantity,omitempty"`
}

// CloseReceptionRequest body para POST /api/receptions/:id/complete-reception.
type CloseReceptionRequest struct {
	Notes string `json:"notes" validate:"max=2000"`
}

// ReceptionListRequest filtros de GET /api/receptions.
type ReceptionListRequest struct {
	Status string `query:"status" validate:"omitempty,oneof=pendiente_recepcion recepcionado completado completed"`
	PageRequest
}

// DuplicateCheckResponse resultado de GET /api/receptions/duplicate-check.
type DuplicateCheckResponse struct {
	Duplicate bool `json:"duplicate"`
}

// ReceptionDTO cabecera de la recepción.
type ReceptionDTO struct {
	ID              int64      `json:"id"`
	Supplier        string     `json:"supplier"`
	SupplierNIT     string     `json:"supplier_nit"`
	InvoiceNumber   string     `json:"invoice_number"`
	InvoiceFilePath string     `json:"invoice_file_path"`
	Status          string     `json:"status"`
	Verdict         string     `json:"reception_status,omitempty"`
	Notes           string     `json:"reception_notes,omitempty"`
	CreatedBy       string     `json:"created_by,omitempty"`
	ReceivedBy      string     `json:"received_by,omitempty"`
	ApprovedBy      string     `json:"approved_by,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	ReceivedAt      *time.Time `json:"received_at,omitempty"`
	ApprovedAt      *time.Time `json:"approved_at,omitempty"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
}

// ExpectedItemDTO línea esperada con su avance de escaneo.
type ExpectedItemDTO struct {
	ID               int64           `json:"id"`
	ItemCode         string          `json:"item_code"`
	ItemDescription  string          `json:"item_description"`
	ExpectedQuantity decimal.Decimal `json:"expected_quantity"`
	ScannedQuantity  decimal.Decimal `json:"scanned_quantity"`
}

// ExtraItemDTO producto escaneado sin línea esperada.
type ExtraItemDTO struct {
	ID           int64           `json:"id"`
	ProductID    int64           `json:"product_id"`
	ProductName  string          `json:"product_name"`
	InternalCode string          `json:"internal_code"`
	Barcode      string          `json:"barcode"`
	Quantity     decimal.Decimal `json:"quantity"`
}

// ReceptionDetailDTO respuesta de GET /api/receptions/:id.
type ReceptionDetailDTO struct {
	ReceptionDTO
	ExpectedItems []ExpectedItemDTO `json:"expectedItems"`
	Items         []ExtraItemDTO    `json:"items"`
}

// ScanResultDTO respuesta de POST /api/receptions/:id/items.
type ScanResultDTO struct {
	ProductID      int64           `json:"product_id"`
	ProductName    string          `json:"product_name"`
	Tier           string          `json:"tier"`
	Quantity       decimal.Decimal `json:"quantity"`
	ExpectedItemID *int64          `json:"expected_item_id,omitempty"` // nil: se registró como item extra
	Lot            string          `json:"lot,omitempty"`
	Expiry         string          `json:"exp,omitempty"`
}

// CloseResultDTO respuesta de POST /api/receptions/:id/complete-reception.
type CloseResultDTO struct {
	ReceptionID   int64           `json:"reception_id"`
	Verdict       string          `json:"status"`
	ExpectedTotal decimal.Decimal `json:"expected_total"`
	ScannedTotal  decimal.Decimal `json:"scanned_total"`
}

// ApproveResultDTO respuesta de POST /api/receptions/:id/approve.
type ApproveResultDTO struct {
	ReceptionID int64           `json:"reception_id"`
	Credited    []ProductQtyDTO `json:"credited"`
	Skipped     []ProductQtyDTO `json:"skipped,omitempty"` // ya acreditados en un intento anterior
}

// ProductQtyDTO cantidad por producto.
type ProductQtyDTO struct {
	ProductID int64           `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
}

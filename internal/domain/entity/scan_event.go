package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// ResolutionTier nivel del catálogo que resolvió un código escaneado.
type ResolutionTier string

// Niveles de resolución en orden de prioridad.
const (
	TierPrimary   ResolutionTier = "catalogo"         // products.barcode / products.internal_code
	TierAlternate ResolutionTier = "codigo_alterno"   // product_barcodes
	TierSupplier  ResolutionTier = "codigo_proveedor" // supplier_product_codes -> products
)

// ScanEvent registro inmutable de un escaneo aplicado a una recepción.
// ExpectedItemID es nil cuando el escaneo fue a parar a los items extra.
// VoidedAt se marca cuando los items esperados se reemplazan: el escaneo queda
// en la auditoría pero ya no cuenta para la aprobación.
type ScanEvent struct {
	ID             int64
	ReceptionID    int64
	ProductID      int64
	ExpectedItemID *int64
	ScannedCode    string
	Tier           ResolutionTier
	Quantity       decimal.Decimal
	Lot            string
	Expiry         string
	ScannedBy      string
	ScannedAt      time.Time
	VoidedAt       *time.Time
}

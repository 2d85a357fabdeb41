package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// MovementTypeReception entrada de inventario originada por la aprobación de una recepción.
const MovementTypeReception = "RECEPCION"

// InventoryMovement registro de una acreditación de inventario.
// (TransactionID, ProductID) es único: es la llave de idempotencia de la aprobación.
type InventoryMovement struct {
	ID            string
	TransactionID string
	ProductID     int64
	Type          string
	Quantity      decimal.Decimal
	CreatedAt     time.Time
	CreatedBy     string
}

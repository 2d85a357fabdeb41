package repository

import (
	"context"

	"github.com/jhoicas/Recepcion-api/internal/domain/entity"
)

// InventoryRepository puerto hacia el actualizador de inventario.
type InventoryRepository interface {
	// CreditOnce suma movement.Quantity al disponible del producto y registra el movimiento,
	// solo si no existe ya un movimiento con el mismo (TransactionID, ProductID).
	// applied=false indica que ese crédito ya se había aplicado.
	CreditOnce(ctx context.Context, movement *entity.InventoryMovement) (applied bool, err error)
}

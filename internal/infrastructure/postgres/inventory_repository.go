package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jhoicas/Recepcion-api/internal/domain/entity"
	"github.com/jhoicas/Recepcion-api/internal/domain/repository"
)

var _ repository.InventoryRepository = (*InventoryRepo)(nil)

// InventoryRepo acredita inventario disponible registrando cada movimiento.
type InventoryRepo struct {
	q Querier
}

// NewInventoryRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInventoryRepository(q Querier) *InventoryRepo {
	return &InventoryRepo{q: q}
}

// CreditOnce inserta el movimiento y, solo si no existía uno con el mismo
// (transaction_id, product_id), suma la cantidad al disponible del producto.
func (r *InventoryRepo) CreditOnce(ctx context.Context, m *entity.InventoryMovement) (bool, error) {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	query := `
		INSERT INTO inventory_movements (id, transaction_id, product_id, type, quantity, created_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (transaction_id, product_id) DO NOTHING`
	tag, err := r.q.Exec(ctx, query,
		m.ID, m.TransactionID, m.ProductID, m.Type, m.Quantity, m.CreatedAt, nullIfEmpty(m.CreatedBy))
	if err != nil {
		return false, fmt.Errorf("create inventory movement: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return false, nil
	}

	tag, err = r.q.Exec(ctx,
		`UPDATE products SET available_quantity = available_quantity + $2 WHERE id = $1`,
		m.ProductID, m.Quantity)
	if err != nil {
		return false, fmt.Errorf("credit product %d: %w", m.ProductID, err)
	}
	if tag.RowsAffected() == 0 {
		return false, fmt.Errorf("credit product %d: producto inexistente", m.ProductID)
	}
	return true, nil
}

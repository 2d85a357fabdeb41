package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Recepcion-api/internal/domain"
	"github.com/jhoicas/Recepcion-api/internal/domain/entity"
	"github.com/jhoicas/Recepcion-api/internal/domain/repository"
)

var _ repository.ReceptionRepository = (*ReceptionRepo)(nil)

// ReceptionRepo implementación sobre PostgreSQL (usable con pool o tx).
type ReceptionRepo struct {
	q Querier
}

// NewReceptionRepository construye el adaptador. Pasar pool o tx (Querier).
func NewReceptionRepository(q Querier) *ReceptionRepo {
	return &ReceptionRepo{q: q}
}

const receptionColumns = `id, supplier, supplier_nit, invoice_number, invoice_file_path, status,
	reception_status, reception_notes, created_by, received_by, approved_by,
	created_at, received_at, approved_at, completed_at, updated_at`

func scanReception(row pgx.Row) (*entity.Reception, error) {
	var (
		r                                                 entity.Reception
		verdict, notes, createdBy, receivedBy, approvedBy *string
	)
	err := row.Scan(
		&r.ID, &r.Supplier, &r.SupplierNIT, &r.InvoiceNumber, &r.InvoiceFilePath, &r.Status,
		&verdict, &notes, &createdBy, &receivedBy, &approvedBy,
		&r.CreatedAt, &r.ReceivedAt, &r.ApprovedAt, &r.CompletedAt, &r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	r.Verdict = entity.Verdict(derefString(verdict))
	r.Notes = derefString(notes)
	r.CreatedBy = derefString(createdBy)
	r.ReceivedBy = derefString(receivedBy)
	r.ApprovedBy = derefString(approvedBy)
	return &r, nil
}

// Create inserta la cabecera. El índice único (lower(supplier), lower(invoice_number))
// respalda el chequeo de duplicado del caso de uso.
func (r *ReceptionRepo) Create(ctx context.Context, rec *entity.Reception) error {
	query := `
		INSERT INTO merchandise_receptions
			(supplier, supplier_nit, invoice_number, invoice_file_path, status, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`
	err := r.q.QueryRow(ctx, query,
		rec.Supplier, rec.SupplierNIT, rec.InvoiceNumber, rec.InvoiceFilePath, rec.Status,
		nullIfEmpty(rec.CreatedBy), rec.CreatedAt, rec.UpdatedAt,
	).Scan(&rec.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return &domain.DuplicateError{Supplier: rec.Supplier, InvoiceNumber: rec.InvoiceNumber}
		}
		return fmt.Errorf("create reception: %w", err)
	}
	return nil
}

// GetByID obtiene la recepción; (nil, nil) si no existe.
func (r *ReceptionRepo) GetByID(ctx context.Context, id int64) (*entity.Reception, error) {
	rec, err := scanReception(r.q.QueryRow(ctx, `SELECT `+receptionColumns+` FROM merchandise_receptions WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get reception: %w", err)
	}
	return rec, nil
}

// GetForUpdate obtiene la recepción y bloquea la fila (SELECT FOR UPDATE). Requiere tx.
func (r *ReceptionRepo) GetForUpdate(ctx context.Context, id int64) (*entity.Reception, error) {
	rec, err := scanReception(r.q.QueryRow(ctx, `SELECT `+receptionColumns+` FROM merchandise_receptions WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get reception for update: %w", err)
	}
	return rec, nil
}

// ExistsBySupplierAndInvoice compara sin distinguir mayúsculas; usa el índice funcional.
func (r *ReceptionRepo) ExistsBySupplierAndInvoice(ctx context.Context, supplier, invoiceNumber string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM merchandise_receptions
			WHERE lower(supplier) = lower($1) AND lower(invoice_number) = lower($2)
		)`
	var exists bool
	if err := r.q.QueryRow(ctx, query, supplier, invoiceNumber).Scan(&exists); err != nil {
		return false, fmt.Errorf("check duplicate reception: %w", err)
	}
	return exists, nil
}

// List recepciones con filtro opcional de estado, las más recientes primero.
func (r *ReceptionRepo) List(ctx context.Context, f repository.ReceptionFilter) ([]*entity.Reception, error) {
	query := `SELECT ` + receptionColumns + ` FROM merchandise_receptions`
	args := []any{}
	pos := 1
	if f.Status != "" {
		query += fmt.Sprintf(" WHERE status = $%d", pos)
		args = append(args, f.Status)
		pos++
	}
	if f.OrderBy == "received_at" {
		query += " ORDER BY received_at DESC NULLS LAST, id DESC"
	} else {
		query += " ORDER BY created_at DESC, id DESC"
	}
	limit := f.Limit
	if limit <= 0 {
		limit = 50
	}
	query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, limit, f.Offset)

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list receptions: %w", err)
	}
	defer rows.Close()
	var list []*entity.Reception
	for rows.Next() {
		rec, err := scanReception(rows)
		if err != nil {
			return nil, fmt.Errorf("scan reception: %w", err)
		}
		list = append(list, rec)
	}
	return list, rows.Err()
}

// MarkReceived cierra el escaneo con el resultado de la conciliación.
func (r *ReceptionRepo) MarkReceived(ctx context.Context, id int64, verdict entity.Verdict, notes, userID string, at time.Time) error {
	query := `
		UPDATE merchandise_receptions
		SET status = $2, reception_status = $3, reception_notes = $4,
			received_by = $5, received_at = $6, updated_at = $6
		WHERE id = $1`
	_, err := r.q.Exec(ctx, query, id, entity.ReceptionStatusReceived, verdict, nullIfEmpty(notes), nullIfEmpty(userID), at)
	if err != nil {
		return fmt.Errorf("mark reception received: %w", err)
	}
	return nil
}

// MarkCompleted registra la aprobación.
func (r *ReceptionRepo) MarkCompleted(ctx context.Context, id int64, userID string, at time.Time) error {
	query := `
		UPDATE merchandise_receptions
		SET status = $2, approved_by = $3, approved_at = $4, completed_at = $4, updated_at = $4
		WHERE id = $1`
	_, err := r.q.Exec(ctx, query, id, entity.ReceptionStatusCompleted, nullIfEmpty(userID), at)
	if err != nil {
		return fmt.Errorf("mark reception completed: %w", err)
	}
	return nil
}

// ReplaceExpectedItems borra e inserta en la misma transacción del caller.
// Los escaneos ya aplicados a items esperados se anulan junto con sus items;
// los de items extra siguen vigentes.
func (r *ReceptionRepo) ReplaceExpectedItems(ctx context.Context, receptionID int64, items []*entity.ExpectedItem) error {
	voidQuery := `
		UPDATE merchandise_reception_scans SET voided_at = now()
		WHERE reception_id = $1 AND expected_item_id IS NOT NULL AND voided_at IS NULL`
	if _, err := r.q.Exec(ctx, voidQuery, receptionID); err != nil {
		return fmt.Errorf("void expected scans: %w", err)
	}
	if _, err := r.q.Exec(ctx, `DELETE FROM merchandise_reception_expected_items WHERE reception_id = $1`, receptionID); err != nil {
		return fmt.Errorf("delete expected items: %w", err)
	}
	query := `
		INSERT INTO merchandise_reception_expected_items (reception_id, item_code, item_description, expected_quantity)
		VALUES ($1, $2, $3, $4)
		RETURNING id`
	for _, it := range items {
		it.ReceptionID = receptionID
		it.ScannedQuantity = decimal.Zero
		if err := r.q.QueryRow(ctx, query, receptionID, it.ItemCode, it.ItemDescription, it.ExpectedQuantity).Scan(&it.ID); err != nil {
			return fmt.Errorf("insert expected item: %w", err)
		}
	}
	return nil
}

// ListExpectedItems en orden de id (el orden de la factura).
func (r *ReceptionRepo) ListExpectedItems(ctx context.Context, receptionID int64) ([]*entity.ExpectedItem, error) {
	query := `
		SELECT id, reception_id, item_code, item_description, expected_quantity, scanned_quantity
		FROM merchandise_reception_expected_items
		WHERE reception_id = $1
		ORDER BY id`
	rows, err := r.q.Query(ctx, query, receptionID)
	if err != nil {
		return nil, fmt.Errorf("list expected items: %w", err)
	}
	defer rows.Close()
	var list []*entity.ExpectedItem
	for rows.Next() {
		var it entity.ExpectedItem
		if err := rows.Scan(&it.ID, &it.ReceptionID, &it.ItemCode, &it.ItemDescription, &it.ExpectedQuantity, &it.ScannedQuantity); err != nil {
			return nil, fmt.Errorf("scan expected item: %w", err)
		}
		list = append(list, &it)
	}
	return list, rows.Err()
}

// AddScannedQuantity incrementa en SQL; nunca se escribe un valor calculado en Go.
func (r *ReceptionRepo) AddScannedQuantity(ctx context.Context, expectedItemID int64, quantity decimal.Decimal) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE merchandise_reception_expected_items SET scanned_quantity = scanned_quantity + $2 WHERE id = $1`,
		expectedItemID, quantity)
	if err != nil {
		return fmt.Errorf("add scanned quantity: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return &domain.NotFoundError{Resource: "item esperado", Key: fmt.Sprint(expectedItemID)}
	}
	return nil
}

// AddExtraQuantity crea o incrementa el item extra (reception_id, product_id).
func (r *ReceptionRepo) AddExtraQuantity(ctx context.Context, receptionID, productID int64, quantity decimal.Decimal) error {
	query := `
		INSERT INTO merchandise_reception_items (reception_id, product_id, quantity)
		VALUES ($1, $2, $3)
		ON CONFLICT (reception_id, product_id)
		DO UPDATE SET quantity = merchandise_reception_items.quantity + EXCLUDED.quantity, updated_at = now()`
	if _, err := r.q.Exec(ctx, query, receptionID, productID, quantity); err != nil {
		return fmt.Errorf("add extra quantity: %w", err)
	}
	return nil
}

// ListExtraItems items extra con los datos del producto para mostrar.
func (r *ReceptionRepo) ListExtraItems(ctx context.Context, receptionID int64) ([]*entity.ExtraItem, error) {
	query := `
		SELECT ri.id, ri.reception_id, ri.product_id, ri.quantity, ri.created_at, ri.updated_at,
			p.product_name, COALESCE(p.internal_code, ''), COALESCE(p.barcode, '')
		FROM merchandise_reception_items ri
		JOIN products p ON p.id = ri.product_id
		WHERE ri.reception_id = $1
		ORDER BY ri.id`
	rows, err := r.q.Query(ctx, query, receptionID)
	if err != nil {
		return nil, fmt.Errorf("list extra items: %w", err)
	}
	defer rows.Close()
	var list []*entity.ExtraItem
	for rows.Next() {
		var it entity.ExtraItem
		if err := rows.Scan(&it.ID, &it.ReceptionID, &it.ProductID, &it.Quantity, &it.CreatedAt, &it.UpdatedAt,
			&it.ProductName, &it.InternalCode, &it.Barcode); err != nil {
			return nil, fmt.Errorf("scan extra item: %w", err)
		}
		list = append(list, &it)
	}
	return list, rows.Err()
}

// CreateScanEvent agrega el escaneo al registro de auditoría.
func (r *ReceptionRepo) CreateScanEvent(ctx context.Context, ev *entity.ScanEvent) error {
	query := `
		INSERT INTO merchandise_reception_scans
			(reception_id, product_id, expected_item_id, scanned_code, tier, quantity, lot, expiry, scanned_by, scanned_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`
	err := r.q.QueryRow(ctx, query,
		ev.ReceptionID, ev.ProductID, ev.ExpectedItemID, ev.ScannedCode, ev.Tier, ev.Quantity,
		ev.Lot, ev.Expiry, nullIfEmpty(ev.ScannedBy), ev.ScannedAt,
	).Scan(&ev.ID)
	if err != nil {
		return fmt.Errorf("create scan event: %w", err)
	}
	return nil
}

// SumScannedByProduct total escaneado vigente por producto (esperados y extra), base de la aprobación.
func (r *ReceptionRepo) SumScannedByProduct(ctx context.Context, receptionID int64) ([]entity.ProductQuantity, error) {
	query := `
		SELECT product_id, SUM(quantity)
		FROM merchandise_reception_scans
		WHERE reception_id = $1 AND voided_at IS NULL
		GROUP BY product_id
		ORDER BY product_id`
	rows, err := r.q.Query(ctx, query, receptionID)
	if err != nil {
		return nil, fmt.Errorf("sum scanned by product: %w", err)
	}
	defer rows.Close()
	var list []entity.ProductQuantity
	for rows.Next() {
		var pq entity.ProductQuantity
		if err := rows.Scan(&pq.ProductID, &pq.Quantity); err != nil {
			return nil, fmt.Errorf("scan product quantity: %w", err)
		}
		list = append(list, pq)
	}
	return list, rows.Err()
}

package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Recepcion-api/internal/domain/entity"
)

// ReceptionFilter filtros del listado de recepciones.
type ReceptionFilter struct {
	Status  entity.ReceptionStatus // vacío = todos
	OrderBy string                 // "created_at" (defecto) o "received_at"
	Limit   int
	Offset  int
}

// ReceptionRepository define el puerto de persistencia para la recepción, sus items
// esperados, sus items extra y el registro de escaneos.
type ReceptionRepository interface {
	Create(ctx context.Context, reception *entity.Reception) error
	GetByID(ctx context.Context, id int64) (*entity.Reception, error)
	// GetForUpdate bloquea la fila de la recepción (SELECT FOR UPDATE) hasta el fin de la tx.
	GetForUpdate(ctx context.Context, id int64) (*entity.Reception, error)
	// ExistsBySupplierAndInvoice compara lower(supplier) y lower(invoice_number).
	ExistsBySupplierAndInvoice(ctx context.Context, supplier, invoiceNumber string) (bool, error)
	List(ctx context.Context, filter ReceptionFilter) ([]*entity.Reception, error)
	MarkReceived(ctx context.Context, id int64, verdict entity.Verdict, notes, userID string, at time.Time) error
	MarkCompleted(ctx context.Context, id int64, userID string, at time.Time) error

	// ReplaceExpectedItems borra y reinserta todos los items esperados de la recepción.
	ReplaceExpectedItems(ctx context.Context, receptionID int64, items []*entity.ExpectedItem) error
	ListExpectedItems(ctx context.Context, receptionID int64) ([]*entity.ExpectedItem, error)
	AddScannedQuantity(ctx context.Context, expectedItemID int64, quantity decimal.Decimal) error

	// AddExtraQuantity crea el item extra (reception, product) o le suma la cantidad.
	AddExtraQuantity(ctx context.Context, receptionID, productID int64, quantity decimal.Decimal) error
	ListExtraItems(ctx context.Context, receptionID int64) ([]*entity.ExtraItem, error)

	CreateScanEvent(ctx context.Context, event *entity.ScanEvent) error
	// SumScannedByProduct total escaneado por producto, en orden de product_id.
	SumScannedByProduct(ctx context.Context, receptionID int64) ([]entity.ProductQuantity, error)
}

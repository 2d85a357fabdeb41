package reception

import (
	"context"
	"time"

	"github.com/jhoicas/Recepcion-api/internal/domain/entity"
	"github.com/jhoicas/Recepcion-api/internal/domain/repository"
)

// TxRunner ejecuta fn dentro de una transacción de BD con repositorios atados a esa tx.
// Commit si fn devuelve nil; Rollback en cualquier otro caso.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		receptionRepo repository.ReceptionRepository,
		catalogRepo repository.CatalogRepository,
		inventoryRepo repository.InventoryRepository,
	) error) error
}

// Locker exclusión mutua por llave (una recepción, o un par proveedor/factura).
// Lock espera hasta obtener el bloqueo o hasta que ctx expire; en ese caso
// devuelve un error que envuelve domain.ErrRetryable.
type Locker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}

// DocumentTextSource entrega el texto linealizado (líneas recortadas, sin vacías) de un documento.
type DocumentTextSource interface {
	Lines(ctx context.Context, path string) ([]string, error)
}

// Tipos de evento del ciclo de vida.
const (
	EventReceptionCreated  = "RecepcionCreada"
	EventReceptionReceived = "RecepcionRecepcionada"
	EventReceptionApproved = "RecepcionAprobada"
)

// Event notificación de una transición ya confirmada en BD.
type Event struct {
	Type          string                 `json:"type"`
	ReceptionID   int64                  `json:"reception_id"`
	Supplier      string                 `json:"supplier"`
	InvoiceNumber string                 `json:"invoice_number"`
	Status        entity.ReceptionStatus `json:"status"`
	Verdict       entity.Verdict         `json:"verdict,omitempty"`
	Actor         string                 `json:"actor"`
	OccurredAt    time.Time              `json:"occurred_at"`
	// Credits solo en RecepcionAprobada: cantidades acreditadas por producto.
	Credits []entity.ProductQuantity `json:"credits,omitempty"`
}

// EventPublisher publica eventos del ciclo de vida. Un fallo al publicar no revierte la transición.
type EventPublisher interface {
	Publish(ctx context.Context, event Event) error
}

// Report datos del acta de recepción.
type Report struct {
	Reception     *entity.Reception
	ExpectedItems []*entity.ExpectedItem
	ExtraItems    []*entity.ExtraItem
}

// ReportGenerator genera el PDF del acta de recepción.
type ReportGenerator interface {
	GenerateReceptionReport(report Report) ([]byte, error)
}

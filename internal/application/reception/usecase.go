// Package reception orquesta el ciclo de vida de una recepción de mercancía:
// alta con control de duplicados, escaneo, cierre con conciliación y aprobación
// con acreditación de inventario. Cada operación que muta estado corre bajo un
// bloqueo por llave y dentro de una transacción con la fila de la recepción bloqueada.
package reception

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Recepcion-api/internal/application/dto"
	"github.com/jhoicas/Recepcion-api/internal/domain"
	"github.com/jhoicas/Recepcion-api/internal/domain/entity"
	"github.com/jhoicas/Recepcion-api/internal/domain/repository"
	"github.com/jhoicas/Recepcion-api/pkg/logger"
	"github.com/jhoicas/Recepcion-api/pkg/textnorm"
)

// DefaultOperationTimeout límite de cada operación cuando no se configura otro.
const DefaultOperationTimeout = 10 * time.Second

// Deps dependencias del caso de uso. ReceptionRepo y CatalogRepo se usan para
// lecturas fuera de transacción (listados, detalle, chequeo de duplicado).
type Deps struct {
	TxRunner         TxRunner
	ReceptionRepo    repository.ReceptionRepository
	CatalogRepo      repository.CatalogRepository
	Locker           Locker
	TextSource       DocumentTextSource
	Events           EventPublisher
	Reports          ReportGenerator
	Logger           *logger.Logger
	OperationTimeout time.Duration
}

// UseCase caso de uso de recepción de mercancía.
type UseCase struct {
	txRunner   TxRunner
	receptions repository.ReceptionRepository
	catalog    repository.CatalogRepository
	locker     Locker
	texts      DocumentTextSource
	events     EventPublisher
	reports    ReportGenerator
	log        *logger.Logger
	timeout    time.Duration
	validate   *validator.Validate
}

// NewUseCase construye el caso de uso.
func NewUseCase(d Deps) *UseCase {
	timeout := d.OperationTimeout
	if timeout <= 0 {
		timeout = DefaultOperationTimeout
	}
	log := d.Logger
	if log == nil {
		log = logger.Nop()
	}
	return &UseCase{
		txRunner:   d.TxRunner,
		receptions: d.ReceptionRepo,
		catalog:    d.CatalogRepo,
		locker:     d.Locker,
		texts:      d.TextSource,
		events:     d.Events,
		reports:    d.Reports,
		log:        log.Component("reception"),
		timeout:    timeout,
		validate:   newValidator(),
	}
}

func newValidator() *validator.Validate {
	v := validator.New()
	// Los errores nombran el campo como aparece en el JSON.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return v
}

func receptionLockKey(id int64) string {
	return fmt.Sprintf("recepcion:%d", id)
}

func invoiceLockKey(supplier, invoiceNumber string) string {
	return "recepcion-factura:" + textnorm.Lower(supplier) + "|" + textnorm.Lower(invoiceNumber)
}

// mutate aplica el timeout de la operación, toma el bloqueo de key y ejecuta fn.
func (uc *UseCase) mutate(ctx context.Context, op, key string, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()

	unlock, err := uc.locker.Lock(ctx, key)
	if err != nil {
		return asRetryable(op, err)
	}
	defer unlock()

	return asRetryable(op, fn(ctx))
}

// read aplica el timeout de la operación a una lectura.
func (uc *UseCase) read(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()
	return asRetryable(op, fn(ctx))
}

// asRetryable convierte el vencimiento del plazo en RetryableError; el resto pasa igual.
func asRetryable(op string, err error) error {
	if err == nil || errors.Is(err, domain.ErrRetryable) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &domain.RetryableError{Op: op, Err: err}
	}
	return err
}

func (uc *UseCase) validateStruct(s interface{}) error {
	err := uc.validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		field := fe.Namespace()
		if i := strings.Index(field, "."); i >= 0 {
			field = field[i+1:]
		}
		return &domain.ValidationError{Field: field, Message: fmt.Sprintf("no cumple la regla %q", fe.Tag())}
	}
	return &domain.ValidationError{Message: err.Error()}
}

func validateExpectedItems(items []dto.ExpectedItemInput) error {
	for i, it := range items {
		if !it.Quantity.IsPositive() {
			return &domain.ValidationError{
				Field:   fmt.Sprintf("expected_items[%d].quantity", i),
				Message: "la cantidad esperada debe ser mayor que cero",
			}
		}
		if err := checkQuantityPrecision(fmt.Sprintf("expected_items[%d].quantity", i), it.Quantity); err != nil {
			return err
		}
	}
	return nil
}

// Las cantidades se guardan como NUMERIC(14,3).
const quantityScale = 3

var maxQuantity = decimal.New(1, 14-quantityScale)

func checkQuantityPrecision(field string, q decimal.Decimal) error {
	if !q.Equal(q.Truncate(quantityScale)) {
		return &domain.ValidationError{Field: field, Message: "la cantidad admite máximo 3 decimales"}
	}
	if q.Abs().GreaterThanOrEqual(maxQuantity) {
		return &domain.ValidationError{Field: field, Message: "la cantidad excede el máximo permitido"}
	}
	return nil
}

func toExpectedItems(receptionID int64, in []dto.ExpectedItemInput) []*entity.ExpectedItem {
	items := make([]*entity.ExpectedItem, 0, len(in))
	for _, it := range in {
		items = append(items, &entity.ExpectedItem{
			ReceptionID:      receptionID,
			ItemCode:         strings.TrimSpace(it.Code),
			ItemDescription:  strings.TrimSpace(it.Description),
			ExpectedQuantity: it.Quantity,
		})
	}
	return items
}

// publish notifica una transición ya confirmada; el fallo solo se registra.
func (uc *UseCase) publish(ctx context.Context, ev Event) {
	if uc.events == nil {
		return
	}
	if err := uc.events.Publish(ctx, ev); err != nil {
		uc.log.Warn().Err(err).Str("event", ev.Type).Int64("reception_id", ev.ReceptionID).Msg("no se pudo publicar el evento")
	}
}

func eventFor(typ string, r *entity.Reception, actor string, at time.Time) Event {
	return Event{
		Type:          typ,
		ReceptionID:   r.ID,
		Supplier:      r.Supplier,
		InvoiceNumber: r.InvoiceNumber,
		Status:        r.Status,
		Verdict:       r.Verdict,
		Actor:         actor,
		OccurredAt:    at,
	}
}

// CheckDuplicate indica si ya existe una recepción para el par proveedor/factura
// (sin distinguir mayúsculas; factura vacía cuenta como valor). Solo lectura.
func (uc *UseCase) CheckDuplicate(ctx context.Context, supplier, invoiceNumber string) (bool, error) {
	supplier = strings.TrimSpace(supplier)
	if supplier == "" {
		return false, &domain.ValidationError{Field: "supplier", Message: "el proveedor es obligatorio"}
	}
	var exists bool
	err := uc.read(ctx, "verificar duplicado", func(ctx context.Context) error {
		var err error
		exists, err = uc.receptions.ExistsBySupplierAndInvoice(ctx, supplier, strings.TrimSpace(invoiceNumber))
		return err
	})
	return exists, err
}

// Create registra la recepción y sus items esperados en estado pendiente_recepcion.
// El chequeo de duplicado corre dentro de la misma transacción, bajo el bloqueo del par.
func (uc *UseCase) Create(ctx context.Context, req dto.CreateReceptionRequest, userID string) (*entity.Reception, error) {
	req.Supplier = strings.TrimSpace(req.Supplier)
	req.InvoiceNumber = strings.TrimSpace(req.InvoiceNumber)
	req.SupplierNIT = strings.TrimSpace(req.SupplierNIT)
	if err := uc.validateStruct(req); err != nil {
		return nil, err
	}
	if err := validateExpectedItems(req.ExpectedItems); err != nil {
		return nil, err
	}

	now := time.Now()
	r := &entity.Reception{
		Supplier:        req.Supplier,
		SupplierNIT:     req.SupplierNIT,
		InvoiceNumber:   req.InvoiceNumber,
		InvoiceFilePath: req.InvoiceFilePath,
		Status:          entity.ReceptionStatusPending,
		CreatedBy:       userID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	err := uc.mutate(ctx, "crear recepción", invoiceLockKey(r.Supplier, r.InvoiceNumber), func(ctx context.Context) error {
		return uc.txRunner.Run(ctx, func(
			receptionRepo repository.ReceptionRepository,
			_ repository.CatalogRepository,
			_ repository.InventoryRepository,
		) error {
			exists, err := receptionRepo.ExistsBySupplierAndInvoice(ctx, r.Supplier, r.InvoiceNumber)
			if err != nil {
				return err
			}
			if exists {
				return &domain.DuplicateError{Supplier: r.Supplier, InvoiceNumber: r.InvoiceNumber}
			}
			if err := receptionRepo.Create(ctx, r); err != nil {
				return err
			}
			if len(req.ExpectedItems) == 0 {
				return nil
			}
			return receptionRepo.ReplaceExpectedItems(ctx, r.ID, toExpectedItems(r.ID, req.ExpectedItems))
		})
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().
		Int64("reception_id", r.ID).
		Str("supplier", r.Supplier).
		Str("invoice_number", r.InvoiceNumber).
		Int("expected_items", len(req.ExpectedItems)).
		Msg("recepción creada")
	uc.publish(ctx, eventFor(EventReceptionCreated, r, userID, now))
	return r, nil
}

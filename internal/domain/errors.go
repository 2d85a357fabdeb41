package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Errores de dominio. Los tipos de error de abajo envuelven uno de estos
// sentinels para que el llamador pueda decidir con errors.Is.
var (
	ErrNotFound                 = errors.New("recurso no encontrado")
	ErrInvalidInput             = errors.New("entrada inválida")
	ErrDuplicate                = errors.New("recurso duplicado")
	ErrInvalidState             = errors.New("estado inválido para esta operación")
	ErrIncompleteReconciliation = errors.New("conciliación incompleta: se requieren notas")
	ErrRetryable                = errors.New("operación no completada, reintente")
	ErrUnauthorized             = errors.New("no autorizado")
	ErrForbidden                = errors.New("acceso denegado")
)

// ValidationError campo obligatorio ausente o con formato inválido. Se rechaza antes de mutar.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

// DuplicateError ya existe una recepción con el mismo par proveedor/factura.
type DuplicateError struct {
	Supplier      string
	InvoiceNumber string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("ya existe una recepción para el proveedor %q con la factura %q", e.Supplier, e.InvoiceNumber)
}

func (e *DuplicateError) Unwrap() error { return ErrDuplicate }

// NotFoundError recepción inexistente o código escaneado sin producto.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s no encontrado: %s", e.Resource, e.Key)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// InvalidStateError la recepción no está en el estado que la operación exige.
type InvalidStateError struct {
	Operation string
	Current   string
	Required  string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("%s: la recepción está en estado %q, se requiere %q", e.Operation, e.Current, e.Required)
}

func (e *InvalidStateError) Unwrap() error { return ErrInvalidState }

// IncompleteReconciliationError cierre con diferencias y sin notas que las expliquen.
type IncompleteReconciliationError struct {
	Verdict       string
	ExpectedTotal decimal.Decimal
	ScannedTotal  decimal.Decimal
}

func (e *IncompleteReconciliationError) Error() string {
	return fmt.Sprintf("resultado %s (esperado %s, recibido %s): debe agregar notas explicando la diferencia",
		e.Verdict, e.ExpectedTotal.String(), e.ScannedTotal.String())
}

func (e *IncompleteReconciliationError) Unwrap() error { return ErrIncompleteReconciliation }

// RetryableError fallo transitorio (timeout, bloqueo ocupado). El estado no cambió.
type RetryableError struct {
	Op  string
	Err error
}

func (e *RetryableError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *RetryableError) Unwrap() error { return e.Err }

func (e *RetryableError) Is(target error) bool { return target == ErrRetryable }

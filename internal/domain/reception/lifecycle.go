// Package reception contiene las reglas puras del ciclo de vida de una recepción:
// precondiciones de estado, conciliación esperado/escaneado y coincidencia de items.
package reception

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Recepcion-api/internal/domain"
	"github.com/jhoicas/Recepcion-api/internal/domain/entity"
)

// Operaciones sujetas a precondición de estado.
const (
	OpApplyScan           = "escanear item"
	OpUpdateExpectedItems = "actualizar items esperados"
	OpClose               = "completar recepción"
	OpApprove             = "aprobar recepción"
)

var requiredStatus = map[string]entity.ReceptionStatus{
	OpApplyScan:           entity.ReceptionStatusPending,
	OpUpdateExpectedItems: entity.ReceptionStatusPending,
	OpClose:               entity.ReceptionStatusPending,
	OpApprove:             entity.ReceptionStatusReceived,
}

// EnsureStatus devuelve InvalidStateError si la recepción no está en el estado exacto que exige op.
func EnsureStatus(r *entity.Reception, op string) error {
	want, ok := requiredStatus[op]
	if !ok {
		return &domain.InvalidStateError{Operation: op, Current: string(r.Status)}
	}
	if r.Status != want {
		return &domain.InvalidStateError{Operation: op, Current: string(r.Status), Required: string(want)}
	}
	return nil
}

// Reconciliation totales y resultado calculados al cerrar.
type Reconciliation struct {
	ExpectedTotal decimal.Decimal
	ScannedTotal  decimal.Decimal
	Verdict       entity.Verdict
}

// Reconcile suma lo esperado y todo lo escaneado (items esperados + extra) de la recepción.
func Reconcile(expected []*entity.ExpectedItem, extras []*entity.ExtraItem) Reconciliation {
	expectedTotal := decimal.Zero
	scannedTotal := decimal.Zero
	for _, it := range expected {
		expectedTotal = expectedTotal.Add(it.ExpectedQuantity)
		scannedTotal = scannedTotal.Add(it.ScannedQuantity)
	}
	for _, it := range extras {
		scannedTotal = scannedTotal.Add(it.Quantity)
	}
	return Reconciliation{
		ExpectedTotal: expectedTotal,
		ScannedTotal:  scannedTotal,
		Verdict:       VerdictFor(expectedTotal, scannedTotal),
	}
}

// VerdictFor ok si coinciden, faltante si se recibió menos, sobrante si se recibió más.
func VerdictFor(expectedTotal, scannedTotal decimal.Decimal) entity.Verdict {
	switch scannedTotal.Cmp(expectedTotal) {
	case -1:
		return entity.VerdictShortage
	case 1:
		return entity.VerdictOverage
	default:
		return entity.VerdictOK
	}
}

// RequireNotes exige una nota no vacía cuando el resultado no es ok.
func RequireNotes(rec Reconciliation, notes string) error {
	if rec.Verdict == entity.VerdictOK || strings.TrimSpace(notes) != "" {
		return nil
	}
	return &domain.IncompleteReconciliationError{
		Verdict:       string(rec.Verdict),
		ExpectedTotal: rec.ExpectedTotal,
		ScannedTotal:  rec.ScannedTotal,
	}
}

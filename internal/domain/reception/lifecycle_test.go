package reception_test

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Recepcion-api/internal/domain"
	"github.com/jhoicas/Recepcion-api/internal/domain/entity"
	"github.com/jhoicas/Recepcion-api/internal/domain/reception"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestEnsureStatus_Precondiciones(t *testing.T) {
	casos := []struct {
		op     string
		status entity.ReceptionStatus
		ok     bool
	}{
		{reception.OpApplyScan, entity.ReceptionStatusPending, true},
		{reception.OpApplyScan, entity.ReceptionStatusReceived, false},
		{reception.OpUpdateExpectedItems, entity.ReceptionStatusPending, true},
		{reception.OpUpdateExpectedItems, entity.ReceptionStatusCompleted, false},
		{reception.OpClose, entity.ReceptionStatusPending, true},
		{reception.OpClose, entity.ReceptionStatusReceived, false},
		{reception.OpApprove, entity.ReceptionStatusReceived, true},
		{reception.OpApprove, entity.ReceptionStatusPending, false},
		{reception.OpApprove, entity.ReceptionStatusCompleted, false},
		{reception.OpApprove, entity.ReceptionStatusLegacyCompleted, false},
	}
	for _, c := range casos {
		err := reception.EnsureStatus(&entity.Reception{Status: c.status}, c.op)
		if c.ok {
			assert.NoError(t, err, "%s en %s", c.op, c.status)
			continue
		}
		require.Error(t, err, "%s en %s", c.op, c.status)
		assert.True(t, errors.Is(err, domain.ErrInvalidState))
		var stateErr *domain.InvalidStateError
		require.True(t, errors.As(err, &stateErr))
		assert.Equal(t, string(c.status), stateErr.Current)
	}
}

func TestReconcile_SumaEsperadosYExtras(t *testing.T) {
	expected := []*entity.ExpectedItem{
		{ItemCode: "GENI14", ExpectedQuantity: dec("10"), ScannedQuantity: dec("10")},
		{ItemCode: "GENI02", ExpectedQuantity: dec("2.5"), ScannedQuantity: dec("1")},
	}
	extras := []*entity.ExtraItem{{ProductID: 9, Quantity: dec("1.5")}}

	rec := reception.Reconcile(expected, extras)

	assert.True(t, rec.ExpectedTotal.Equal(dec("12.5")))
	assert.True(t, rec.ScannedTotal.Equal(dec("12.5")))
	assert.Equal(t, entity.VerdictOK, rec.Verdict)
}

func TestVerdictFor(t *testing.T) {
	assert.Equal(t, entity.VerdictOK, reception.VerdictFor(dec("10"), dec("10.00")))
	assert.Equal(t, entity.VerdictShortage, reception.VerdictFor(dec("10"), dec("7")))
	assert.Equal(t, entity.VerdictOverage, reception.VerdictFor(dec("10"), dec("11")))
}

func TestRequireNotes(t *testing.T) {
	ok := reception.Reconciliation{Verdict: entity.VerdictOK}
	assert.NoError(t, reception.RequireNotes(ok, ""), "ok nunca exige notas")

	short := reception.Reconciliation{ExpectedTotal: dec("10"), ScannedTotal: dec("7"), Verdict: entity.VerdictShortage}
	err := reception.RequireNotes(short, "   ")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrIncompleteReconciliation))

	assert.NoError(t, reception.RequireNotes(short, "2 unidades averiadas en transporte"))
}

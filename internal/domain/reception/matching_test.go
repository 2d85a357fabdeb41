package reception_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Recepcion-api/internal/domain/entity"
	"github.com/jhoicas/Recepcion-api/internal/domain/reception"
)

func TestMatchExpectedItem_Prioridad(t *testing.T) {
	product := &entity.Product{ID: 1, Name: "Gel Neutro 250ml", InternalCode: "GN250", Barcode: "7700001"}
	porNombre := &entity.ExpectedItem{ID: 1, ItemCode: "X", ItemDescription: "gel neutro 250ml"}
	porBarcode := &entity.ExpectedItem{ID: 2, ItemCode: "7700001"}
	porInterno := &entity.ExpectedItem{ID: 3, ItemCode: "GN250"}
	porProveedor := &entity.ExpectedItem{ID: 4, ItemCode: "GENI14"}
	items := []*entity.ExpectedItem{porNombre, porBarcode, porInterno, porProveedor}

	assert.Same(t, porProveedor, reception.MatchExpectedItem(items, product, "GENI14"))
	assert.Same(t, porInterno, reception.MatchExpectedItem(items, product, ""))
	assert.Same(t, porBarcode, reception.MatchExpectedItem(items[:2], product, ""))
	assert.Same(t, porNombre, reception.MatchExpectedItem(items[:1], product, ""))
}

func TestMatchExpectedItem_IgnoraCandidatosVacios(t *testing.T) {
	product := &entity.Product{ID: 1, Name: "Producto", InternalCode: "", Barcode: ""}
	sinCodigo := &entity.ExpectedItem{ID: 1, ItemCode: "", ItemDescription: "otra cosa"}

	assert.Nil(t, reception.MatchExpectedItem([]*entity.ExpectedItem{sinCodigo}, product, ""),
		"un código vacío del producto no debe coincidir con líneas sin código")
}

func TestMatchExpectedItem_PrimerItemEnOrden(t *testing.T) {
	product := &entity.Product{ID: 1, InternalCode: "GENI02"}
	a := &entity.ExpectedItem{ID: 10, ItemCode: "geni02"}
	b := &entity.ExpectedItem{ID: 11, ItemCode: "GENI02"}

	got := reception.MatchExpectedItem([]*entity.ExpectedItem{a, b}, product, "")
	require.NotNil(t, got)
	assert.Equal(t, int64(10), got.ID)
}

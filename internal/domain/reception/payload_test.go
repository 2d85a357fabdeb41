package reception_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Recepcion-api/internal/domain/reception"
)

func TestParsePayload_CodigoSimple(t *testing.T) {
	p := reception.ParsePayload("  7701234567890 ")
	_, isBare := p.(reception.BareCode)
	require.True(t, isBare)
	assert.Equal(t, "7701234567890", p.Code())
	_, has := p.QuantityOverride()
	assert.False(t, has)
}

func TestParsePayload_EtiquetaJSON(t *testing.T) {
	p := reception.ParsePayload(`{"id":"7701234567890","qty":12,"lot":"L-9","exp":"2026-12"}`)
	label, ok := p.(reception.LabelPayload)
	require.True(t, ok)
	assert.Equal(t, "7701234567890", label.Code())
	assert.Equal(t, "L-9", label.Lot)
	assert.Equal(t, "2026-12", label.Expiry)
	qty, has := label.QuantityOverride()
	require.True(t, has)
	assert.True(t, qty.Equal(dec("12")))
}

func TestParsePayload_EtiquetaConIDNumericoYCantidadTexto(t *testing.T) {
	p := reception.ParsePayload(`{"id":7701234,"qty":"6"}`)
	assert.Equal(t, "7701234", p.Code())
	qty, has := p.QuantityOverride()
	require.True(t, has)
	assert.True(t, qty.Equal(dec("6")))
}

func TestParsePayload_EtiquetaSinCantidad_NoSobrescribe(t *testing.T) {
	p := reception.ParsePayload(`{"id":"ABC1","qty":0}`)
	_, has := p.QuantityOverride()
	assert.False(t, has)
}

func TestParsePayload_JSONInvalido_DegradaACodigo(t *testing.T) {
	raw := `{"id":"7701234"`
	p := reception.ParsePayload(raw)
	_, isBare := p.(reception.BareCode)
	require.True(t, isBare, "un JSON roto nunca debe fallar el escaneo")
	assert.Equal(t, raw, p.Code())
}

func TestParsePayload_JSONSinID_DegradaACodigo(t *testing.T) {
	p := reception.ParsePayload(`{"qty":3}`)
	_, isBare := p.(reception.BareCode)
	assert.True(t, isBare)
}

func TestParsePayload_LoteYVencimientoNumericos(t *testing.T) {
	p := reception.ParsePayload(`{"id":"GENI14","qty":10,"lot":123,"exp":202612}`)
	label, ok := p.(reception.LabelPayload)
	require.True(t, ok, "un lote numérico no debe descartar el id de la etiqueta")
	assert.Equal(t, "GENI14", label.Code())
	assert.Equal(t, "123", label.Lot)
	assert.Equal(t, "202612", label.Expiry)
	qty, has := label.QuantityOverride()
	require.True(t, has)
	assert.True(t, qty.Equal(dec("10")))
}

func TestParsePayload_LoteObjeto_SeIgnora(t *testing.T) {
	p := reception.ParsePayload(`{"id":"GENI14","lot":{"n":1}}`)
	label, ok := p.(reception.LabelPayload)
	require.True(t, ok)
	assert.Empty(t, label.Lot)
}

func TestParsePayload_LoteYVencimientoLargos_SeTruncan(t *testing.T) {
	lot := strings.Repeat("Ñ", 150)
	exp := strings.Repeat("9", 80)
	p := reception.ParsePayload(`{"id":"GENI14","lot":"` + lot + `","exp":"` + exp + `"}`)
	label, ok := p.(reception.LabelPayload)
	require.True(t, ok)
	assert.Equal(t, strings.Repeat("Ñ", 100), label.Lot)
	assert.Equal(t, strings.Repeat("9", 50), label.Expiry)
}

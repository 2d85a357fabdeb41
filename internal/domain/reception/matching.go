package reception

import (
	"strings"

	"github.com/jhoicas/Recepcion-api/internal/domain/entity"
)

type matchField int

const (
	matchCode matchField = iota
	matchDescription
)

type matchCandidate struct {
	field matchField
	value string
}

// MatchExpectedItem busca la línea esperada que corresponde al producto escaneado.
// Prioridad: código de proveedor del producto, código interno, código de barras
// (contra item_code) y nombre (contra item_description). Gana el primer item, en el
// orden recibido, para el primer candidato con coincidencia. Comparación sin
// mayúsculas sobre texto recortado; candidatos vacíos se ignoran.
func MatchExpectedItem(items []*entity.ExpectedItem, product *entity.Product, supplierCode string) *entity.ExpectedItem {
	if product == nil {
		return nil
	}
	candidates := []matchCandidate{
		{matchCode, supplierCode},
		{matchCode, product.InternalCode},
		{matchCode, product.Barcode},
		{matchDescription, product.Name},
	}
	for _, c := range candidates {
		want := strings.TrimSpace(c.value)
		if want == "" {
			continue
		}
		for _, it := range items {
			got := it.ItemCode
			if c.field == matchDescription {
				got = it.ItemDescription
			}
			if strings.EqualFold(strings.TrimSpace(got), want) {
				return it
			}
		}
	}
	return nil
}

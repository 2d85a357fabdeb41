package reception

import (
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// ScanPayload lo que entrega el lector: un código simple o una etiqueta estructurada (QR de caja).
// Las únicas implementaciones son BareCode y LabelPayload.
type ScanPayload interface {
	Code() string
	// QuantityOverride cantidad embebida en la etiqueta, si la trae.
	QuantityOverride() (decimal.Decimal, bool)
	sealed()
}

// BareCode código de barras, código interno o código de proveedor tal cual se escaneó.
type BareCode string

func (c BareCode) Code() string                              { return strings.TrimSpace(string(c)) }
func (c BareCode) QuantityOverride() (decimal.Decimal, bool) { return decimal.Zero, false }
func (BareCode) sealed()                                     {}

// LabelPayload etiqueta JSON de caja: {"id":"7701234","qty":12,"lot":"L-9","exp":"2026-12"}.
type LabelPayload struct {
	ID       string
	Quantity decimal.Decimal
	Lot      string
	Expiry   string
}

func (l LabelPayload) Code() string { return strings.TrimSpace(l.ID) }

func (l LabelPayload) QuantityOverride() (decimal.Decimal, bool) {
	if l.Quantity.GreaterThan(decimal.Zero) {
		return l.Quantity, true
	}
	return decimal.Zero, false
}

func (LabelPayload) sealed() {}

type labelJSON struct {
	ID  json.RawMessage `json:"id"`
	Qty json.RawMessage `json:"qty"`
	Lot json.RawMessage `json:"lot"`
	Exp json.RawMessage `json:"exp"`
}

// Límites de las columnas lot y expiry de merchandise_reception_scans.
const (
	maxLotLength    = 100
	maxExpiryLength = 50
)

// ParsePayload clasifica la lectura una sola vez. Si parece JSON y decodifica con un id,
// es una etiqueta; cualquier fallo degrada a BareCode con el texto original.
func ParsePayload(raw string) ScanPayload {
	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, "{") {
		return BareCode(trimmed)
	}
	var lj labelJSON
	if err := json.Unmarshal([]byte(trimmed), &lj); err != nil {
		return BareCode(trimmed)
	}
	id := scalarString(lj.ID)
	if id == "" {
		return BareCode(trimmed)
	}
	label := LabelPayload{
		ID:     id,
		Lot:    truncateRunes(scalarString(lj.Lot), maxLotLength),
		Expiry: truncateRunes(scalarString(lj.Exp), maxExpiryLength),
	}
	if q := scalarString(lj.Qty); q != "" {
		if d, err := decimal.NewFromString(q); err == nil {
			label.Quantity = d
		}
	}
	return label
}

// scalarString acepta "abc", 123 o 12.5 y devuelve su texto; objetos, listas y null dan "".
func scalarString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}

func truncateRunes(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit])
}

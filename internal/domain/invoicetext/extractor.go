// Package invoicetext extrae un borrador estructurado (proveedor, NIT, número de
// factura, items) del texto linealizado de una factura de proveedor.
//
// La extracción es heurística y nunca falla: los campos que no se reconocen
// quedan vacíos o con PlaceholderNotExtracted. El borrador es una sugerencia
// que una persona revisa antes de crear la recepción.
package invoicetext

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Recepcion-api/pkg/nit"
	"github.com/jhoicas/Recepcion-api/pkg/textnorm"
)

// PlaceholderNotExtracted valor de proveedor o número de factura cuando no se reconocieron.
const PlaceholderNotExtracted = "NO EXTRAÍDO"

// headerWindow líneas del encabezado donde se buscan proveedor y NIT.
const headerWindow = 20

// Draft resultado de la extracción.
type Draft struct {
	Supplier    string `json:"supplier"`
	SupplierNIT string `json:"supplier_nit"`
	// SupplierNITValid el NIT extraído trae dígito de verificación y cuadra. Solo informativo.
	SupplierNITValid bool        `json:"supplier_nit_valid"`
	InvoiceNumber    string      `json:"invoice_number"`
	Items            []DraftItem `json:"items"`
	SourceReference  string      `json:"temp_filename,omitempty"`
	// DroppedItems items abiertos que nunca recibieron línea de cantidad (se descartan).
	DroppedItems int `json:"dropped_items"`
}

// DraftItem línea de producto reconocida en la factura.
type DraftItem struct {
	Code        string          `json:"code"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
}

// state de la máquina de extracción. Cada fase recorre su propia ventana de líneas.
type state int

const (
	stateSeekSupplier state = iota
	stateSeekTaxID
	stateSeekInvoiceNumber
	stateSeekItems
	stateItemOpen
	stateDone
)

var (
	// Sufijos societarios: una línea que los contiene es parte del nombre del proveedor.
	companySuffixRe = regexp.MustCompile(`(?i)\b(SAS|LTDA|S\.A\.S|S\.A|CIA|COMPANY|INTERNATIONAL|CORPORATION|LTDA\.)\b`)
	allCapsRe       = regexp.MustCompile(`^[A-Z\s&]+$`)
	hasUpperRe      = regexp.MustCompile(`[A-Z]`)

	nitLabelRe = regexp.MustCompile(`(?i)NIT[:\s]*([0-9.]+(?:-[0-9])?)`)
	nitBareRe  = regexp.MustCompile(`([0-9]{3}\.[0-9]{3}\.[0-9]{3}-?[0-9]?)`)
	spacesRe   = regexp.MustCompile(`\s+`)

	invoiceNumberRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)No\.\s*([A-Z]{2,5}\s*\d+)`),
		regexp.MustCompile(`(?i)Factura.*?No\.\s*([A-Z0-9\s-]+)`),
		regexp.MustCompile(`(?i)No\.\s*([A-Z0-9-]+)`),
		regexp.MustCompile(`(?i)POP\s*\d+`),
	}
	noPrefixRe = regexp.MustCompile(`(?i)No\.\s*`)

	// Inicio de item: consecutivo de 1-3 dígitos + código de al menos 4 caracteres
	// ("1GENI02", "1 GENI02"); el mínimo evita confundir "1000 ML" o "350 GR".
	itemStartRe = regexp.MustCompile(`^(\d{1,3})\s*([A-Z0-9]{4,})$`)
	// Línea de cantidad: empieza con decimal de dos cifras ("84.0021,851.32").
	quantityRe  = regexp.MustCompile(`^(\d+\.\d{2})`)
	onlyDigitRe = regexp.MustCompile(`^\d+$`)
)

// Marcadores de líneas que no son el nombre del proveedor, ya sin tildes y en minúsculas.
var (
	excludedContains = []string{"factura", "senores", "fecha", "direccion", "ciudad"}
	excludedPrefixes = []string{"nit", "tel", "cel", "email", "www.", "carrera", "calle"}
)

// Extract corre todas las fases sobre las líneas (ya recortadas y sin vacías).
// Es determinista: la misma entrada produce siempre el mismo borrador.
func Extract(lines []string) Draft {
	x := &extractor{lines: lines}
	for s := stateSeekSupplier; s != stateDone; {
		s = x.step(s)
	}
	return x.draft
}

type extractor struct {
	lines []string
	draft Draft
}

func (x *extractor) step(s state) state {
	switch s {
	case stateSeekSupplier:
		x.draft.Supplier = orPlaceholder(x.seekSupplier())
		return stateSeekTaxID
	case stateSeekTaxID:
		x.draft.SupplierNIT = x.seekTaxID()
		x.draft.SupplierNITValid = x.draft.SupplierNIT != "" && nit.Validate(x.draft.SupplierNIT) == nil
		return stateSeekInvoiceNumber
	case stateSeekInvoiceNumber:
		x.draft.InvoiceNumber = orPlaceholder(x.seekInvoiceNumber())
		return stateSeekItems
	case stateSeekItems:
		x.draft.Items, x.draft.DroppedItems = scanItems(x.lines)
		return stateDone
	}
	return stateDone
}

func (x *extractor) header() []string {
	if len(x.lines) > headerWindow {
		return x.lines[:headerWindow]
	}
	return x.lines
}

// seekSupplier junta la corrida de líneas que parecen razón social.
// Antes de empezar la corrida los marcadores excluidos se saltan; después la terminan.
func (x *extractor) seekSupplier() string {
	var run []string
	started := false
	for _, line := range x.header() {
		if isExcludedSupplierLine(line) {
			if started {
				break
			}
			continue
		}
		if len(line) > 3 && hasUpperRe.MatchString(line) {
			switch {
			case companySuffixRe.MatchString(line):
				run = append(run, line)
				started = true
			case started && allCapsRe.MatchString(line):
				run = append(run, line)
			case !started && allCapsRe.MatchString(line) && len(line) > 5:
				run = append(run, line)
				started = true
			}
			continue
		}
		if started {
			break
		}
	}
	return strings.TrimSpace(strings.Join(run, " "))
}

func isExcludedSupplierLine(line string) bool {
	folded := textnorm.Fold(line)
	for _, m := range excludedContains {
		if strings.Contains(folded, m) {
			return true
		}
	}
	for _, p := range excludedPrefixes {
		if strings.HasPrefix(folded, p) {
			return true
		}
	}
	return false
}

func (x *extractor) seekTaxID() string {
	for _, line := range x.header() {
		m := nitLabelRe.FindStringSubmatch(line)
		if m == nil {
			m = nitBareRe.FindStringSubmatch(line)
		}
		if m != nil {
			return spacesRe.ReplaceAllString(m[1], "")
		}
	}
	return ""
}

// seekInvoiceNumber primera línea del documento donde dispare algún patrón;
// dentro de la línea gana el primer patrón de la lista.
func (x *extractor) seekInvoiceNumber() string {
	for _, line := range x.lines {
		for _, re := range invoiceNumberRes {
			m := re.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			if len(m) > 1 {
				return strings.TrimSpace(m[1])
			}
			return strings.TrimSpace(noPrefixRe.ReplaceAllString(m[0], ""))
		}
	}
	return ""
}

// scanItems recorre el documento con un único item abierto a la vez.
// Un inicio de item con otro abierto descarta el abierto y lo cuenta en dropped.
func scanItems(lines []string) (items []DraftItem, dropped int) {
	items = []DraftItem{}
	var open *DraftItem
	s := stateSeekItems
	for _, line := range lines {
		if m := itemStartRe.FindStringSubmatch(line); m != nil {
			if s == stateItemOpen {
				dropped++
			}
			open = &DraftItem{Code: m[2], Quantity: decimal.Zero}
			s = stateItemOpen
			continue
		}
		if s != stateItemOpen {
			continue
		}
		if m := quantityRe.FindStringSubmatch(line); m != nil {
			qty, err := decimal.NewFromString(m[1])
			if err == nil {
				open.Quantity = qty
				items = append(items, *open)
				open = nil
				s = stateSeekItems
				continue
			}
		}
		// Consecutivos sueltos y porcentajes de impuesto no son descripción.
		if onlyDigitRe.MatchString(line) || strings.Contains(line, "%") {
			continue
		}
		if open.Description == "" {
			open.Description = line
		} else {
			open.Description += " " + line
		}
	}
	if s == stateItemOpen {
		dropped++
	}
	return items, dropped
}

func orPlaceholder(s string) string {
	if s == "" {
		return PlaceholderNotExtracted
	}
	return s
}

package pdf

import (
	"context"
	"fmt"
	"strings"

	lpdf "github.com/ledongthuc/pdf"

	"github.com/jhoicas/Recepcion-api/internal/application/reception"
	"github.com/jhoicas/Recepcion-api/internal/domain/invoicetext"
)

var _ reception.DocumentTextSource = (*TextSource)(nil)

// TextSource lee el texto de un PDF con capa de texto (sin OCR), una línea por fila visual.
type TextSource struct{}

func NewTextSource() *TextSource { return &TextSource{} }

// Lines devuelve las filas de cada página, de arriba hacia abajo, recortadas y sin vacías.
// Los fragmentos de una misma fila se concatenan en orden horizontal sin separador.
func (s *TextSource) Lines(ctx context.Context, path string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, r, err := lpdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("pdf: abrir %s: %w", path, err)
	}
	defer f.Close()

	var rows []string
	for i := 1; i <= r.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageRows, err := page.GetTextByRow()
		if err != nil {
			return nil, fmt.Errorf("pdf: extraer texto de la página %d: %w", i, err)
		}
		for _, row := range pageRows {
			var b strings.Builder
			for _, t := range row.Content {
				b.WriteString(t.S)
			}
			rows = append(rows, b.String())
		}
	}
	return invoicetext.SplitLines(strings.Join(rows, "\n")), nil
}

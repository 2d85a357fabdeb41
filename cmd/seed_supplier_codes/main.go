// seed_supplier_codes genera el script SQL que carga la tabla de equivalencias
// código de proveedor → código de barras a partir de un CSV exportado del ERP.
//
// Uso: go run ./cmd/seed_supplier_codes [ruta/codigos_proveedor.csv]
// Por defecto busca codigos_proveedor.csv en el directorio actual.
// Columnas: proveedor, codigo_proveedor, codigo_barras (separador ',' o ';').
// Acepta UTF-8 o ISO-8859-1 (exportaciones de Excel).
// Escribe: internal/infrastructure/postgres/migrations/002_seed_supplier_codes.sql
package main

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

type mapping struct {
	supplier     string
	supplierCode string
	barcode      string
}

func main() {
	csvPath := "codigos_proveedor.csv"
	if len(os.Args) > 1 {
		csvPath = os.Args[1]
	}
	raw, err := os.ReadFile(csvPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Abrir CSV: %v\n", err)
		os.Exit(1)
	}

	rows, skipped, err := parseMappings(raw)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Leer CSV: %v\n", err)
		os.Exit(1)
	}

	moduleRoot := findModuleRoot()
	outPath := filepath.Join(moduleRoot, "internal", "infrastructure", "postgres", "migrations", "002_seed_supplier_codes.sql")
	out, err := os.Create(outPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Crear archivo: %v\n", err)
		os.Exit(1)
	}
	defer out.Close()

	if err := writeSQL(out, rows); err != nil {
		fmt.Fprintf(os.Stderr, "Escribir SQL: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Generado %s: %d equivalencias, %d filas descartadas\n", outPath, len(rows), skipped)
}

// parseMappings decodifica el CSV (UTF-8 o Latin-1), salta el encabezado y las
// filas incompletas, y deja una sola fila por (codigo_proveedor, codigo_barras).
func parseMappings(raw []byte) ([]mapping, int, error) {
	var src io.Reader = bytes.NewReader(raw)
	if !utf8.Valid(raw) {
		src = transform.NewReader(src, charmap.ISO8859_1.NewDecoder())
	}
	r := csv.NewReader(src)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	if firstLine, _, _ := bytes.Cut(raw, []byte("\n")); bytes.Count(firstLine, []byte(";")) > bytes.Count(firstLine, []byte(",")) {
		r.Comma = ';'
	}

	seen := make(map[string]int)
	var (
		rows    []mapping
		skipped int
		line    int
	)
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, 0, err
		}
		line++
		if line == 1 && isHeader(rec) {
			continue
		}
		if len(rec) < 3 {
			skipped++
			continue
		}
		m := mapping{
			supplier:     strings.TrimSpace(rec[0]),
			supplierCode: strings.TrimSpace(rec[1]),
			barcode:      strings.TrimSpace(rec[2]),
		}
		if m.supplierCode == "" || m.barcode == "" {
			skipped++
			continue
		}
		key := m.supplierCode + "\x00" + m.barcode
		if i, ok := seen[key]; ok {
			rows[i] = m // la última fila gana
			continue
		}
		seen[key] = len(rows)
		rows = append(rows, m)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].supplierCode != rows[j].supplierCode {
			return rows[i].supplierCode < rows[j].supplierCode
		}
		return rows[i].barcode < rows[j].barcode
	})
	return rows, skipped, nil
}

func isHeader(rec []string) bool {
	if len(rec) < 2 {
		return false
	}
	h := strings.ToLower(strings.TrimSpace(rec[1]))
	return strings.Contains(h, "codigo") || strings.Contains(h, "código") || strings.Contains(h, "code")
}

func writeSQL(w io.Writer, rows []mapping) error {
	var b strings.Builder
	b.WriteString("-- Equivalencias código de proveedor → código de barras\n")
	b.WriteString("-- Generado por cmd/seed_supplier_codes\n\n")
	if len(rows) == 0 {
		b.WriteString("-- (sin filas)\n")
		_, err := io.WriteString(w, b.String())
		return err
	}
	b.WriteString("INSERT INTO supplier_product_codes (supplier, supplier_code, barcode) VALUES\n")
	for i, m := range rows {
		sep := ","
		if i == len(rows)-1 {
			sep = ""
		}
		fmt.Fprintf(&b, "  ('%s', '%s', '%s')%s\n", escapeSQL(m.supplier), escapeSQL(m.supplierCode), escapeSQL(m.barcode), sep)
	}
	b.WriteString("ON CONFLICT (supplier_code, barcode) DO UPDATE SET supplier = EXCLUDED.supplier;\n")
	_, err := io.WriteString(w, b.String())
	return err
}

func escapeSQL(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

func findModuleRoot() string {
	dir, _ := os.Getwd()
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return dir
		}
		dir = parent
	}
}

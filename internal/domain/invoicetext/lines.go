package invoicetext

import "strings"

// SplitLines linealiza el texto de un documento: separa por saltos de línea,
// colapsa espacios internos, recorta y descarta líneas vacías.
func SplitLines(text string) []string {
	raw := strings.FieldsFunc(text, func(r rune) bool { return r == '\n' || r == '\r' })
	lines := make([]string, 0, len(raw))
	for _, l := range raw {
		l = strings.Join(strings.Fields(l), " ")
		if l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}

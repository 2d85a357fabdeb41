// Package textnorm normaliza texto libre (proveedores, facturas, líneas de PDF)
// para comparaciones insensibles a mayúsculas y tildes.
package textnorm

import (
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Lower pasa a minúsculas con reglas Unicode. Es la misma comparación que hace
// lower() en PostgreSQL para la validación de duplicados.
func Lower(s string) string {
	// cases.Caser guarda estado: uno nuevo por llamada.
	return cases.Lower(language.Und).String(s)
}

// StripAccents elimina marcas diacríticas ("Dirección" -> "Direccion", "Señores" -> "Senores").
func StripAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// Fold combina StripAccents y Lower.
func Fold(s string) string {
	return Lower(StripAccents(s))
}

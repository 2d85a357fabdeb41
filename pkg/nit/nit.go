// Package nit valida el dígito de verificación del NIT colombiano (módulo 11, DIAN).
package nit

import (
	"fmt"
	"unicode"
)

// pesos para el cálculo del dígito de verificación (Orden Administrativa 4 de 1989, DIAN).
// Se aplican a los 9 primeros dígitos del NIT, de izquierda a derecha.
var weights = [9]int{41, 37, 29, 23, 19, 17, 13, 7, 3}

// CheckDigit calcula el dígito de verificación para los 9 primeros dígitos del NIT.
// Acepta puntos, guiones y espacios: "900.123.456", "900123456-8".
func CheckDigit(taxID string) (byte, error) {
	digits := extractDigits(taxID)
	if len(digits) < 9 {
		return 0, fmt.Errorf("nit: se requieren al menos 9 dígitos, se encontraron %d", len(digits))
	}
	var sum int
	for i, d := range digits[:9] {
		sum += int(d-'0') * weights[i]
	}
	remainder := sum % 11
	if remainder == 0 || remainder == 1 {
		return byte('0' + remainder), nil
	}
	return byte('0' + (11 - remainder)), nil
}

// Validate exige 10 dígitos (NIT + dígito de verificación) y que el último cuadre.
func Validate(taxID string) error {
	digits := extractDigits(taxID)
	if len(digits) != 10 {
		return fmt.Errorf("nit: se esperan 10 dígitos con el de verificación, se recibieron %d", len(digits))
	}
	expected, err := CheckDigit(taxID)
	if err != nil {
		return err
	}
	if digits[9] != expected {
		return fmt.Errorf("nit: dígito de verificación inválido: esperado %c, recibido %c", expected, digits[9])
	}
	return nil
}

func extractDigits(s string) []byte {
	var out []byte
	for _, r := range s {
		if unicode.IsDigit(r) {
			out = append(out, byte(r))
		}
	}
	return out
}

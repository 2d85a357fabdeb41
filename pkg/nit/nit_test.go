package nit_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Recepcion-api/pkg/nit"
)

func TestCheckDigit(t *testing.T) {
	d, err := nit.CheckDigit("900.123.456")
	require.NoError(t, err)
	assert.Equal(t, byte('8'), d)

	d, err = nit.CheckDigit("860001022")
	require.NoError(t, err)
	assert.Equal(t, byte('7'), d)
}

func TestCheckDigit_MenosDeNueveDigitos(t *testing.T) {
	_, err := nit.CheckDigit("12345")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	assert.NoError(t, nit.Validate("900.123.456-8"))
	assert.NoError(t, nit.Validate("9001234568"))
	assert.Error(t, nit.Validate("900.123.456-7"), "dígito de verificación incorrecto")
	assert.Error(t, nit.Validate("900.123.456"), "sin dígito de verificación")
}

package dto_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/Recepcion-api/internal/application/dto"
)

func TestDefaultPage(t *testing.T) {
	p := dto.PageRequest{Offset: -3}
	p.DefaultPage(50)
	assert.Equal(t, dto.PageRequest{Limit: 50, Offset: 0}, p)

	p = dto.PageRequest{Limit: 10, Offset: 20}
	p.DefaultPage(50)
	assert.Equal(t, dto.PageRequest{Limit: 10, Offset: 20}, p, "lo que pidió el cliente se respeta")
}

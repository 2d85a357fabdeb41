package reception

import (
	"context"
	"fmt"
	"strings"

	"github.com/jhoicas/Recepcion-api/internal/domain"
	"github.com/jhoicas/Recepcion-api/internal/domain/entity"
	"github.com/jhoicas/Recepcion-api/internal/domain/repository"
)

// Resolution producto canónico de un código escaneado y el nivel que lo resolvió.
type Resolution struct {
	Product *entity.Product
	Tier    entity.ResolutionTier
}

// CodeResolver resuelve un código contra el catálogo en orden fijo:
// catálogo principal, códigos de barras alternos y por último códigos de proveedor.
// No guarda estado; se construye por operación sobre los repos de la transacción.
type CodeResolver struct {
	catalog repository.CatalogRepository
}

// NewCodeResolver construye el resolver sobre el repositorio de catálogo.
func NewCodeResolver(catalog repository.CatalogRepository) *CodeResolver {
	return &CodeResolver{catalog: catalog}
}

// Resolve devuelve NotFoundError solo si los tres niveles fallan.
func (r *CodeResolver) Resolve(ctx context.Context, code string) (*Resolution, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, &domain.ValidationError{Field: "code", Message: "el código escaneado es obligatorio"}
	}

	p, err := r.catalog.FindByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("buscar en catálogo: %w", err)
	}
	if p != nil {
		return &Resolution{Product: p, Tier: entity.TierPrimary}, nil
	}

	p, err = r.catalog.FindByAlternateBarcode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("buscar código alterno: %w", err)
	}
	if p != nil {
		return &Resolution{Product: p, Tier: entity.TierAlternate}, nil
	}

	// Los códigos de proveedor van al final: es el espacio menos específico.
	barcode, err := r.catalog.CanonicalBarcode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("buscar código de proveedor: %w", err)
	}
	if barcode != "" {
		p, err = r.catalog.FindByCode(ctx, barcode)
		if err != nil {
			return nil, fmt.Errorf("buscar en catálogo: %w", err)
		}
		if p != nil {
			return &Resolution{Product: p, Tier: entity.TierSupplier}, nil
		}
	}

	return nil, &domain.NotFoundError{Resource: "producto", Key: code}
}

package repository

import (
	"context"

	"github.com/jhoicas/Recepcion-api/internal/domain/entity"
)

// CatalogRepository puerto de solo lectura sobre el catálogo de productos y sus códigos.
// Todas las búsquedas devuelven (nil, nil) o ("", nil) cuando no hay coincidencia.
type CatalogRepository interface {
	// FindByCode coincidencia exacta contra products.barcode o products.internal_code.
	FindByCode(ctx context.Context, code string) (*entity.Product, error)
	// FindByAlternateBarcode coincidencia exacta en product_barcodes, unida a products por nombre.
	FindByAlternateBarcode(ctx context.Context, barcode string) (*entity.Product, error)
	// CanonicalBarcode traduce un código de proveedor a nuestro código de barras.
	CanonicalBarcode(ctx context.Context, supplierCode string) (string, error)
	// SupplierCode traduce nuestro código de barras al código del proveedor.
	SupplierCode(ctx context.Context, barcode string) (string, error)
	// ListSuppliers proveedores distintos configurados para los productos.
	ListSuppliers(ctx context.Context) ([]string, error)
}

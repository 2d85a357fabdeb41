package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Recepcion-api/internal/domain/entity"
	"github.com/jhoicas/Recepcion-api/internal/domain/repository"
)

var _ repository.CatalogRepository = (*CatalogRepo)(nil)

// CatalogRepo lecturas sobre el catálogo de productos (products, product_barcodes,
// supplier_product_codes, product_inventory_config). Nunca escribe.
type CatalogRepo struct {
	q Querier
}

// NewCatalogRepository construye el adaptador. Pasar pool o tx (Querier).
func NewCatalogRepository(q Querier) *CatalogRepo {
	return &CatalogRepo{q: q}
}

func (r *CatalogRepo) findProduct(ctx context.Context, op, query string, arg string) (*entity.Product, error) {
	var p entity.Product
	err := r.q.QueryRow(ctx, query, arg).Scan(&p.ID, &p.Name, &p.InternalCode, &p.Barcode)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &p, nil
}

// FindByCode coincidencia exacta contra barcode o internal_code.
func (r *CatalogRepo) FindByCode(ctx context.Context, code string) (*entity.Product, error) {
	query := `
		SELECT id, product_name, COALESCE(internal_code, ''), COALESCE(barcode, '')
		FROM products
		WHERE barcode = $1 OR internal_code = $1
		ORDER BY (barcode = $1) DESC, id
		LIMIT 1`
	return r.findProduct(ctx, "find product by code", query, code)
}

// FindByAlternateBarcode busca en product_barcodes y une a products por nombre.
func (r *CatalogRepo) FindByAlternateBarcode(ctx context.Context, barcode string) (*entity.Product, error) {
	query := `
		SELECT p.id, p.product_name, COALESCE(p.internal_code, ''), COALESCE(p.barcode, '')
		FROM product_barcodes pb
		JOIN products p ON p.product_name = pb.product_name
		WHERE pb.barcode = $1
		ORDER BY p.id
		LIMIT 1`
	return r.findProduct(ctx, "find product by alternate barcode", query, barcode)
}

func (r *CatalogRepo) lookupString(ctx context.Context, op, query, arg string) (string, error) {
	var out string
	err := r.q.QueryRow(ctx, query, arg).Scan(&out)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}

// CanonicalBarcode código de barras propio para un código de proveedor.
func (r *CatalogRepo) CanonicalBarcode(ctx context.Context, supplierCode string) (string, error) {
	return r.lookupString(ctx, "canonical barcode",
		`SELECT barcode FROM supplier_product_codes WHERE supplier_code = $1 ORDER BY id LIMIT 1`, supplierCode)
}

// SupplierCode código de proveedor asociado a nuestro código de barras.
func (r *CatalogRepo) SupplierCode(ctx context.Context, barcode string) (string, error) {
	return r.lookupString(ctx, "supplier code",
		`SELECT supplier_code FROM supplier_product_codes WHERE barcode = $1 ORDER BY id LIMIT 1`, barcode)
}

// ListSuppliers proveedores distintos y no vacíos en orden alfabético.
func (r *CatalogRepo) ListSuppliers(ctx context.Context) ([]string, error) {
	query := `
		SELECT DISTINCT supplier
		FROM product_inventory_config
		WHERE supplier IS NOT NULL AND supplier <> ''
		ORDER BY supplier`
	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list suppliers: %w", err)
	}
	defer rows.Close()
	var list []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("scan supplier: %w", err)
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

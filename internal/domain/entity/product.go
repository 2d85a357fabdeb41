package entity

// Product identidad canónica de un producto en el catálogo principal.
// El motor de recepción solo lo lee; el inventario disponible lo mueve InventoryRepository.
type Product struct {
	ID           int64
	Name         string
	InternalCode string
	Barcode      string
}

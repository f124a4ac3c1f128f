package product

import (
	"context"

	"valora/internal/core/id"
	"valora/internal/domain"
)

// Repository defines the interface for Product persistence.
type Repository interface {
	domain.CatalogRepository[*Product]

	// FindBySKU retrieves a product by SKU.
	FindBySKU(ctx context.Context, sku string) (*Product, error)

	// FindByBarcode retrieves a product by barcode.
	FindByBarcode(ctx context.Context, barcode string) (*Product, error)

	// GetForUpdate retrieves a product with a row lock.
	GetForUpdate(ctx context.Context, id id.ID) (*Product, error)

	// GetMany retrieves products by IDs in one round trip. Document posting
	// resolves all line products through this.
	GetMany(ctx context.Context, ids []id.ID) (map[id.ID]*Product, error)
}

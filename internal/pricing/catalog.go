package pricing

import "github.com/dmcastellon/pupusapos/pkg/types"

// Catalog indexes loaded products by id for line-item resolution.
type Catalog struct {
	byID  map[int64]*types.Product
	items []types.Product
}

// NewCatalog snapshots the product list. Later edits to the source slice
// do not affect the catalog.
func NewCatalog(products []types.Product) Catalog {
	items := make([]types.Product, len(products))
	copy(items, products)
	byID := make(map[int64]*types.Product, len(items))
	for i := range items {
		byID[items[i].ID] = &items[i]
	}
	return Catalog{byID: byID, items: items}
}

// Lookup resolves a product id; ok is false for ids not in the loaded
// catalog (stale or orphaned references).
func (c Catalog) Lookup(id int64) (*types.Product, bool) {
	product, ok := c.byID[id]
	return product, ok
}

// Products returns the snapshotted entries in load order.
func (c Catalog) Products() []types.Product {
	return c.items
}

// Len reports the number of catalog entries.
func (c Catalog) Len() int {
	return len(c.items)
}

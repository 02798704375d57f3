package bunstore

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	contractx "github.com/boluade/shopmate/agent/contract"
)

// ProductStore is the read-only inventory accessor. Catalog management
// happens elsewhere; this only ever sees active rows.
type ProductStore struct {
	db bun.IDB
}

func NewProductStore(db bun.IDB) *ProductStore {
	return &ProductStore{db: db}
}

var _ contractx.InventoryProvider = (*ProductStore)(nil)

func (s *ProductStore) ActiveProducts(ctx context.Context) ([]contractx.Product, error) {
	var rows []productRow
	err := s.db.NewSelect().
		Model(&rows).
		Where("is_active = TRUE").
		Order("id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("select active products: %w", err)
	}

	products := make([]contractx.Product, 0, len(rows))
	for _, row := range rows {
		products = append(products, contractx.Product{
			ID:          row.ID,
			Name:        row.Name,
			Price:       row.Price,
			Description: row.Description,
		})
	}
	return products, nil
}

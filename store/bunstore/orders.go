package bunstore

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/uptrace/bun"

	contractx "github.com/boluade/shopmate/agent/contract"
)

// OrderStore records issued payment references. Insert-only here; payment
// confirmation flips the status out of band.
type OrderStore struct {
	db bun.IDB
}

func NewOrderStore(db bun.IDB) *OrderStore {
	return &OrderStore{db: db}
}

var _ contractx.OrderStore = (*OrderStore)(nil)

func (s *OrderStore) Insert(ctx context.Context, order contractx.Order) error {
	if strings.TrimSpace(order.Reference) == "" {
		return fmt.Errorf("%w: order reference is empty", contractx.ErrValidation)
	}

	status := order.Status
	if status == "" {
		status = contractx.OrderStatusPending
	}
	createdAt := order.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	row := orderRow{
		ConversationID: order.ConversationID,
		Reference:      order.Reference,
		Amount:         order.Amount,
		Status:         status,
		CreatedAt:      createdAt,
	}
	if _, err := s.db.NewInsert().Model(&row).Exec(ctx); err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

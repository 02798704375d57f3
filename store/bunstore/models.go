package bunstore

import (
	"time"

	"github.com/uptrace/bun"
)

type productRow struct {
	bun.BaseModel `bun:"table:products,alias:p"`

	ID          int64   `bun:"id,pk"`
	Name        string  `bun:"name"`
	Price       float64 `bun:"price"`
	Description string  `bun:"description"`
	IsActive    bool    `bun:"is_active"`
}

type messageRow struct {
	bun.BaseModel `bun:"table:messages,alias:m"`

	ID             int64     `bun:"id,pk,autoincrement"`
	ConversationID string    `bun:"conversation_id"`
	Role           string    `bun:"role"`
	Content        string    `bun:"content"`
	CreatedAt      time.Time `bun:"created_at"`
}

type orderRow struct {
	bun.BaseModel `bun:"table:orders,alias:o"`

	ID             int64     `bun:"id,pk,autoincrement"`
	ConversationID string    `bun:"conversation_id"`
	Reference      string    `bun:"reference"`
	Amount         float64   `bun:"amount"`
	Status         string    `bun:"status"`
	CreatedAt      time.Time `bun:"created_at"`
}

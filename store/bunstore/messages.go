package bunstore

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/uptrace/bun"

	contractx "github.com/boluade/shopmate/agent/contract"
)

// MessageStore is the append-only conversation log. Turns are never updated
// or deleted; ordering within a conversation follows created_at with the
// row id as a tiebreak for same-timestamp writes.
type MessageStore struct {
	db bun.IDB
}

func NewMessageStore(db bun.IDB) *MessageStore {
	return &MessageStore{db: db}
}

var _ contractx.ConversationStore = (*MessageStore)(nil)

func (s *MessageStore) Append(ctx context.Context, turn contractx.Turn) error {
	if strings.TrimSpace(turn.ConversationID) == "" {
		return fmt.Errorf("%w: turn conversation id is empty", contractx.ErrValidation)
	}

	createdAt := turn.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	row := messageRow{
		ConversationID: turn.ConversationID,
		Role:           string(turn.Role),
		Content:        turn.Content,
		CreatedAt:      createdAt,
	}
	if _, err := s.db.NewInsert().Model(&row).Exec(ctx); err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	return nil
}

func (s *MessageStore) Recent(ctx context.Context, conversationID string, limit int) ([]contractx.Turn, error) {
	if limit <= 0 {
		return nil, nil
	}

	var rows []messageRow
	err := s.db.NewSelect().
		Model(&rows).
		Where("conversation_id = ?", conversationID).
		OrderExpr("created_at DESC, id DESC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("select recent messages: %w", err)
	}

	// Rows come back newest-first; the prompt wants oldest-first.
	turns := make([]contractx.Turn, len(rows))
	for i, row := range rows {
		turns[len(rows)-1-i] = contractx.Turn{
			ConversationID: row.ConversationID,
			Role:           contractx.Role(row.Role),
			Content:        row.Content,
			CreatedAt:      row.CreatedAt,
		}
	}
	return turns, nil
}

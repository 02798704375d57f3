package contract

import "context"

// InventoryProvider returns the currently active catalog. Implementations
// must not cache across calls; the prompt snapshot has to reflect the store
// at assembly time.
type InventoryProvider interface {
	ActiveProducts(ctx context.Context) ([]Product, error)
}

// ConversationStore owns the append-only turn log. Recent returns at most
// limit turns for the conversation, oldest first.
type ConversationStore interface {
	Append(ctx context.Context, turn Turn) error
	Recent(ctx context.Context, conversationID string, limit int) ([]Turn, error)
}

// OrderStore persists pending payment records. Insert-only from the
// pipeline's point of view; confirmation happens downstream.
type OrderStore interface {
	Insert(ctx context.Context, order Order) error
}

// Reasoner turns an assembled turn list into a validated ModelDecision.
// A single attempt per call; malformed output is surfaced as an error,
// never as a partly-filled decision.
type Reasoner interface {
	Decide(ctx context.Context, turns []Turn) (ModelDecision, error)
}

// Issuer generates a payment reference and the user-facing payment action
// for a finalize_payment decision.
type Issuer interface {
	Issue(ctx context.Context, conversationID string, amount float64) (PaymentAction, error)
}

type StatusKind string

const StatusTyping StatusKind = "typing"

// Dispatcher delivers a resolved reply back over the originating channel.
// SendStatus is best-effort; adapters without transient statuses no-op.
type Dispatcher interface {
	SendText(ctx context.Context, conversationID string, text string) error
	SendStatus(ctx context.Context, conversationID string, kind StatusKind) error
}

package contract

import "time"

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Intent string

const (
	IntentInquiry         Intent = "inquiry"
	IntentNegotiation     Intent = "negotiation"
	IntentFinalizePayment Intent = "finalize_payment"
)

// Valid reports whether the intent is one of the enumerated values.
// Anything else coming back from the model is a schema violation.
func (i Intent) Valid() bool {
	switch i {
	case IntentInquiry, IntentNegotiation, IntentFinalizePayment:
		return true
	}
	return false
}

type Channel string

const (
	ChannelTerminal Channel = "terminal"
	ChannelTelegram Channel = "telegram"
	ChannelWhatsApp Channel = "whatsapp"
)

// Product is a single active catalog entry as read from the inventory store.
type Product struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Description string  `json:"description,omitempty"`
}

// Turn is one message unit in a conversation, attributed to system, user,
// or assistant. Turns are append-only; the pipeline never mutates one.
type Turn struct {
	ConversationID string    `json:"conversation_id"`
	Role           Role      `json:"role"`
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"created_at"`
}

// Inbound is the channel-neutral form of an incoming message. Channel
// adapters translate their envelopes into this; the pipeline never sees a
// channel-specific shape.
type Inbound struct {
	Channel        Channel
	ConversationID string
	Text           string
}

// ModelDecision is the structured result of one reasoning call.
type ModelDecision struct {
	Intent    Intent `json:"intent"`
	Reply     string `json:"reply"`
	ProductID *int64 `json:"product_id,omitempty"`
}

const OrderStatusPending = "pending"

// Order is the persisted record of an issued payment reference.
type Order struct {
	ConversationID string
	Reference      string
	Amount         float64
	Status         string
	CreatedAt      time.Time
}

// PaymentAction is the user-facing artifact produced when intent resolves
// to finalize_payment. Link embeds Reference into the provider URL template.
type PaymentAction struct {
	Reference string
	Amount    float64
	Link      string
}

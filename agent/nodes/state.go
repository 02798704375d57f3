package pipelinenode

import (
	"errors"
	"strings"
	"time"

	contractx "github.com/boluade/shopmate/agent/contract"
)

var (
	ErrInvalidMessage      = errors.New("message is empty")
	ErrInvalidConversation = errors.New("conversation id is empty")
)

type GraphInput struct {
	Channel        contractx.Channel
	ConversationID string
	Text           string
}

type GraphOutput struct {
	Reply    string
	Decision contractx.ModelDecision
	Action   *contractx.PaymentAction
}

// GraphState is the request-scoped pipeline state. It lives for exactly one
// inbound message and is never persisted.
type GraphState struct {
	Channel        contractx.Channel
	ConversationID string
	Text           string
	Now            time.Time

	Inventory []contractx.Product
	History   []contractx.Turn
	Turns     []contractx.Turn

	Decision contractx.ModelDecision
	Action   *contractx.PaymentAction
	Reply    string
}

func ValidateInbound(in GraphInput, nowFn func() time.Time) (*GraphState, error) {
	conversationID := strings.TrimSpace(in.ConversationID)
	if conversationID == "" {
		return nil, ErrInvalidConversation
	}

	text := strings.TrimSpace(in.Text)
	if text == "" {
		return nil, ErrInvalidMessage
	}

	return &GraphState{
		Channel:        in.Channel,
		ConversationID: conversationID,
		Text:           text,
		Now:            nowFn().UTC(),
	}, nil
}

package orchestrator

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/cloudwego/eino/compose"
	"github.com/rs/zerolog/log"

	contractx "github.com/boluade/shopmate/agent/contract"
	nodex "github.com/boluade/shopmate/agent/nodes"
	promptx "github.com/boluade/shopmate/agent/prompt"
)

var (
	ErrInvalidMessage      = nodex.ErrInvalidMessage
	ErrInvalidConversation = nodex.ErrInvalidConversation
)

// DefaultFallbackReply is the fixed, non-committal reply substituted when
// the reasoning service fails. It never leaks upstream detail.
const DefaultFallbackReply = "I'm thinking... give me a moment and ask me again. 🙏"

type Config struct {
	FallbackReply string
	HistoryLimit  int
}

type Deps struct {
	Inventory     contractx.InventoryProvider
	Conversations contractx.ConversationStore
	Orders        contractx.OrderStore
	Reasoner      contractx.Reasoner
	Issuer        contractx.Issuer
}

// Orchestrator drives one inbound message through the pipeline graph. It is
// stateless between requests apart from the per-conversation locks that
// keep rapid double-sends from interleaving history writes.
type Orchestrator struct {
	inventory     contractx.InventoryProvider
	conversations contractx.ConversationStore
	orders        contractx.OrderStore
	reasoner      contractx.Reasoner
	issuer        contractx.Issuer
	assembler     *promptx.Assembler

	graphRunner compose.Runnable[nodex.GraphInput, nodex.GraphOutput]

	fallbackReply string
	historyLimit  int

	now func() time.Time

	mu        sync.Mutex
	convLocks map[string]*sync.Mutex
}

func New(deps Deps, cfg Config) (*Orchestrator, error) {
	if deps.Inventory == nil {
		return nil, errors.New("inventory provider is required")
	}
	if deps.Conversations == nil {
		return nil, errors.New("conversation store is required")
	}
	if deps.Orders == nil {
		return nil, errors.New("order store is required")
	}
	if deps.Reasoner == nil {
		return nil, errors.New("reasoner is required")
	}
	if deps.Issuer == nil {
		return nil, errors.New("payment issuer is required")
	}

	fallback := strings.TrimSpace(cfg.FallbackReply)
	if fallback == "" {
		fallback = DefaultFallbackReply
	}
	historyLimit := cfg.HistoryLimit
	if historyLimit <= 0 {
		historyLimit = promptx.DefaultHistoryLimit
	}

	o := &Orchestrator{
		inventory:     deps.Inventory,
		conversations: deps.Conversations,
		orders:        deps.Orders,
		reasoner:      deps.Reasoner,
		issuer:        deps.Issuer,
		assembler:     promptx.NewAssembler(promptx.WithHistoryLimit(historyLimit)),
		fallbackReply: fallback,
		historyLimit:  historyLimit,
		now:           time.Now,
		convLocks:     make(map[string]*sync.Mutex),
	}

	graphRunner, err := o.compileHandleMessageGraph(context.Background())
	if err != nil {
		return nil, err
	}
	o.graphRunner = graphRunner

	return o, nil
}

// HandleMessage processes one inbound message end to end and returns the
// reply to dispatch. Reasoning and persistence failures downstream of
// validation resolve to the fallback reply rather than an error: a broken
// model call must not break the conversation.
func (o *Orchestrator) HandleMessage(ctx context.Context, in contractx.Inbound) (string, error) {
	conversationID := strings.TrimSpace(in.ConversationID)
	if conversationID == "" {
		return "", ErrInvalidConversation
	}
	if strings.TrimSpace(in.Text) == "" {
		return "", ErrInvalidMessage
	}

	unlock := o.lockConversation(conversationID)
	defer unlock()

	out, err := o.graphRunner.Invoke(ctx, nodex.GraphInput{
		Channel:        in.Channel,
		ConversationID: conversationID,
		Text:           in.Text,
	})
	if err != nil {
		log.Error().
			Err(err).
			Str("conversation_id", in.ConversationID).
			Str("channel", string(in.Channel)).
			Msg("pipeline failed, substituting fallback reply")
		return o.fallbackReply, nil
	}
	return out.Reply, nil
}

// lockConversation serializes processing per conversation id. The lock map
// only grows; conversation cardinality is bounded by chat volume, not by
// request volume.
func (o *Orchestrator) lockConversation(conversationID string) func() {
	o.mu.Lock()
	lock, ok := o.convLocks[conversationID]
	if !ok {
		lock = &sync.Mutex{}
		o.convLocks[conversationID] = lock
	}
	o.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}

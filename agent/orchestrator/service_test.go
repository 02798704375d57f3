package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	contractx "github.com/boluade/shopmate/agent/contract"
	paymentx "github.com/boluade/shopmate/agent/payment"
)

type fakeInventory struct {
	products []contractx.Product
	err      error
	calls    int
}

func (f *fakeInventory) ActiveProducts(ctx context.Context) ([]contractx.Product, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return append([]contractx.Product(nil), f.products...), nil
}

type fakeConversations struct {
	appended  []contractx.Turn
	appendErr error
	recentErr error
}

func (f *fakeConversations) Append(ctx context.Context, turn contractx.Turn) error {
	if f.appendErr != nil {
		return f.appendErr
	}
	f.appended = append(f.appended, turn)
	return nil
}

func (f *fakeConversations) Recent(ctx context.Context, conversationID string, limit int) ([]contractx.Turn, error) {
	if f.recentErr != nil {
		return nil, f.recentErr
	}
	var turns []contractx.Turn
	for _, t := range f.appended {
		if t.ConversationID == conversationID {
			turns = append(turns, t)
		}
	}
	if len(turns) > limit {
		turns = turns[len(turns)-limit:]
	}
	return turns, nil
}

func (f *fakeConversations) rolesFor(conversationID string) []contractx.Role {
	var roles []contractx.Role
	for _, t := range f.appended {
		if t.ConversationID == conversationID {
			roles = append(roles, t.Role)
		}
	}
	return roles
}

type fakeOrders struct {
	inserted  []contractx.Order
	insertErr error
}

func (f *fakeOrders) Insert(ctx context.Context, order contractx.Order) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.inserted = append(f.inserted, order)
	return nil
}

type fakeReasoner struct {
	decision contractx.ModelDecision
	err      error
	calls    int
	lastCtx  []contractx.Turn
}

func (f *fakeReasoner) Decide(ctx context.Context, turns []contractx.Turn) (contractx.ModelDecision, error) {
	f.calls++
	f.lastCtx = append([]contractx.Turn(nil), turns...)
	if f.err != nil {
		return contractx.ModelDecision{}, f.err
	}
	return f.decision, nil
}

func sequencedIssuer() *paymentx.Issuer {
	n := 0
	return paymentx.NewIssuer(paymentx.WithTokenSource(func() string {
		n++
		return fmt.Sprintf("tok%04d", n)
	}))
}

func newTestOrchestrator(
	t *testing.T,
	inventory *fakeInventory,
	conversations *fakeConversations,
	orders *fakeOrders,
	reasoner *fakeReasoner,
) *Orchestrator {
	t.Helper()
	svc, err := New(
		Deps{
			Inventory:     inventory,
			Conversations: conversations,
			Orders:        orders,
			Reasoner:      reasoner,
			Issuer:        sequencedIssuer(),
		},
		Config{},
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return svc
}

func inbound(text string) contractx.Inbound {
	return contractx.Inbound{
		Channel:        contractx.ChannelTelegram,
		ConversationID: "chat-42",
		Text:           text,
	}
}

func TestHandleMessageInquiryHasNoSideEffects(t *testing.T) {
	t.Parallel()

	conversations := &fakeConversations{}
	orders := &fakeOrders{}
	reasoner := &fakeReasoner{decision: contractx.ModelDecision{
		Intent: contractx.IntentInquiry,
		Reply:  "The phone costs $500.",
	}}
	svc := newTestOrchestrator(t, &fakeInventory{}, conversations, orders, reasoner)

	reply, err := svc.HandleMessage(context.Background(), inbound("how much is the phone?"))
	if err != nil {
		t.Fatalf("HandleMessage() error = %v", err)
	}
	if reply != "The phone costs $500." {
		t.Fatalf("reply = %q", reply)
	}
	if len(orders.inserted) != 0 {
		t.Fatalf("inquiry created %d orders, want 0", len(orders.inserted))
	}

	roles := conversations.rolesFor("chat-42")
	if len(roles) != 2 || roles[0] != contractx.RoleUser || roles[1] != contractx.RoleAssistant {
		t.Fatalf("persisted roles = %v, want [user assistant]", roles)
	}
}

func TestHandleMessageNegotiationHasNoSideEffects(t *testing.T) {
	t.Parallel()

	orders := &fakeOrders{}
	reasoner := &fakeReasoner{decision: contractx.ModelDecision{
		Intent: contractx.IntentNegotiation,
		Reply:  "I can't go lower, but this quality is top-tier!",
	}}
	svc := newTestOrchestrator(t, &fakeInventory{}, &fakeConversations{}, orders, reasoner)

	reply, err := svc.HandleMessage(context.Background(), inbound("can you do $400?"))
	if err != nil {
		t.Fatalf("HandleMessage() error = %v", err)
	}
	if strings.Contains(reply, "paystack.com") {
		t.Fatalf("negotiation reply must not carry a payment link: %q", reply)
	}
	if len(orders.inserted) != 0 {
		t.Fatalf("negotiation created %d orders, want 0", len(orders.inserted))
	}
}

func TestHandleMessageFinalizePaymentScenario(t *testing.T) {
	t.Parallel()

	productID := int64(1)
	inventory := &fakeInventory{products: []contractx.Product{
		{ID: 1, Name: "Phone", Price: 500},
	}}
	conversations := &fakeConversations{}
	orders := &fakeOrders{}
	reasoner := &fakeReasoner{decision: contractx.ModelDecision{
		Intent:    contractx.IntentFinalizePayment,
		Reply:     "Great choice!",
		ProductID: &productID,
	}}
	svc := newTestOrchestrator(t, inventory, conversations, orders, reasoner)

	reply, err := svc.HandleMessage(context.Background(), inbound("I'll take the phone"))
	if err != nil {
		t.Fatalf("HandleMessage() error = %v", err)
	}

	if !strings.Contains(reply, "Great choice!") {
		t.Fatalf("reply missing model text: %q", reply)
	}
	if !strings.Contains(reply, "https://paystack.com/pay/ref_") {
		t.Fatalf("reply missing payment link: %q", reply)
	}

	if len(orders.inserted) != 1 {
		t.Fatalf("finalize created %d orders, want exactly 1", len(orders.inserted))
	}
	order := orders.inserted[0]
	if order.Status != contractx.OrderStatusPending {
		t.Fatalf("order status = %q, want pending", order.Status)
	}
	if order.Amount != 500 {
		t.Fatalf("order amount = %v, want 500 (resolved from inventory)", order.Amount)
	}
	if !strings.Contains(reply, order.Reference) {
		t.Fatalf("reply %q missing reference %q", reply, order.Reference)
	}

	// The persisted assistant turn carries the decorated reply.
	last := conversations.appended[len(conversations.appended)-1]
	if last.Role != contractx.RoleAssistant || last.Content != reply {
		t.Fatalf("persisted assistant turn = %+v", last)
	}
}

func TestHandleMessageReasonerFailureFallsBack(t *testing.T) {
	t.Parallel()

	conversations := &fakeConversations{}
	orders := &fakeOrders{}
	reasoner := &fakeReasoner{err: fmt.Errorf("%w: connection reset", contractx.ErrModelInvoke)}
	svc := newTestOrchestrator(t, &fakeInventory{}, conversations, orders, reasoner)

	reply, err := svc.HandleMessage(context.Background(), inbound("hello?"))
	if err != nil {
		t.Fatalf("HandleMessage() error = %v", err)
	}
	if reply != DefaultFallbackReply {
		t.Fatalf("reply = %q, want fallback", reply)
	}
	if len(orders.inserted) != 0 {
		t.Fatal("failed decision must not create orders")
	}

	// The fallback is never written to history as an assistant turn.
	roles := conversations.rolesFor("chat-42")
	if len(roles) != 1 || roles[0] != contractx.RoleUser {
		t.Fatalf("persisted roles = %v, want [user] only", roles)
	}
}

func TestHandleMessageSchemaViolationFallsBack(t *testing.T) {
	t.Parallel()

	orders := &fakeOrders{}
	reasoner := &fakeReasoner{err: fmt.Errorf("%w: unknown intent", contractx.ErrSchemaViolation)}
	svc := newTestOrchestrator(t, &fakeInventory{}, &fakeConversations{}, orders, reasoner)

	reply, err := svc.HandleMessage(context.Background(), inbound("???"))
	if err != nil {
		t.Fatalf("HandleMessage() error = %v", err)
	}
	if reply != DefaultFallbackReply {
		t.Fatalf("reply = %q, want fallback", reply)
	}
	if len(orders.inserted) != 0 {
		t.Fatal("schema violation must not create orders")
	}
}

func TestHandleMessageOrderWriteFailureFallsBack(t *testing.T) {
	t.Parallel()

	productID := int64(1)
	conversations := &fakeConversations{}
	orders := &fakeOrders{insertErr: errors.New("connection refused")}
	reasoner := &fakeReasoner{decision: contractx.ModelDecision{
		Intent:    contractx.IntentFinalizePayment,
		Reply:     "Great choice!",
		ProductID: &productID,
	}}
	svc := newTestOrchestrator(t, &fakeInventory{}, conversations, orders, reasoner)

	reply, err := svc.HandleMessage(context.Background(), inbound("I'll take it"))
	if err != nil {
		t.Fatalf("HandleMessage() error = %v", err)
	}
	if reply != DefaultFallbackReply {
		t.Fatalf("reply = %q, want fallback when the order cannot be recorded", reply)
	}
}

func TestHandleMessageDegradesOnReadFailures(t *testing.T) {
	t.Parallel()

	inventory := &fakeInventory{err: errors.New("catalog down")}
	conversations := &fakeConversations{recentErr: errors.New("history down")}
	reasoner := &fakeReasoner{decision: contractx.ModelDecision{
		Intent: contractx.IntentInquiry,
		Reply:  "Let me check on that.",
	}}
	svc := newTestOrchestrator(t, inventory, conversations, &fakeOrders{}, reasoner)

	reply, err := svc.HandleMessage(context.Background(), inbound("what do you sell?"))
	if err != nil {
		t.Fatalf("HandleMessage() error = %v", err)
	}
	if reply != "Let me check on that." {
		t.Fatalf("reply = %q", reply)
	}
	if reasoner.calls != 1 {
		t.Fatalf("reasoner called %d times, want 1", reasoner.calls)
	}
	// Context degraded to a bare system turn plus the current message.
	if len(reasoner.lastCtx) != 2 {
		t.Fatalf("reasoner context has %d turns, want 2", len(reasoner.lastCtx))
	}
}

func TestHandleMessageValidation(t *testing.T) {
	t.Parallel()

	svc := newTestOrchestrator(t, &fakeInventory{}, &fakeConversations{}, &fakeOrders{}, &fakeReasoner{
		decision: contractx.ModelDecision{Intent: contractx.IntentInquiry, Reply: "hi"},
	})

	if _, err := svc.HandleMessage(context.Background(), contractx.Inbound{ConversationID: "c1"}); !errors.Is(err, ErrInvalidMessage) {
		t.Fatalf("empty text: error = %v, want ErrInvalidMessage", err)
	}
	if _, err := svc.HandleMessage(context.Background(), contractx.Inbound{Text: "hi"}); !errors.Is(err, ErrInvalidConversation) {
		t.Fatalf("empty conversation: error = %v, want ErrInvalidConversation", err)
	}
}

// Replaying the same inbound envelope is not deduplicated: two deliveries
// append two user turns and mint two distinct references. Transport-level
// retries land here as duplicates; exactly-once is not promised.
func TestHandleMessageReplayDuplicates(t *testing.T) {
	t.Parallel()

	productID := int64(1)
	conversations := &fakeConversations{}
	orders := &fakeOrders{}
	reasoner := &fakeReasoner{decision: contractx.ModelDecision{
		Intent:    contractx.IntentFinalizePayment,
		Reply:     "Great choice!",
		ProductID: &productID,
	}}
	svc := newTestOrchestrator(t, &fakeInventory{}, conversations, orders, reasoner)

	msg := inbound("I'll take the phone")
	if _, err := svc.HandleMessage(context.Background(), msg); err != nil {
		t.Fatalf("first delivery: %v", err)
	}
	if _, err := svc.HandleMessage(context.Background(), msg); err != nil {
		t.Fatalf("second delivery: %v", err)
	}

	userTurns := 0
	for _, turn := range conversations.appended {
		if turn.Role == contractx.RoleUser {
			userTurns++
		}
	}
	if userTurns != 2 {
		t.Fatalf("user turns = %d, want 2 appended duplicates", userTurns)
	}
	if len(orders.inserted) != 2 {
		t.Fatalf("orders = %d, want 2", len(orders.inserted))
	}
	if orders.inserted[0].Reference == orders.inserted[1].Reference {
		t.Fatal("replayed deliveries must still mint distinct references")
	}
}

func TestNewRequiresDependencies(t *testing.T) {
	t.Parallel()

	_, err := New(Deps{}, Config{})
	if err == nil {
		t.Fatal("expected error for missing dependencies")
	}
}

package payment

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	contractx "github.com/boluade/shopmate/agent/contract"
)

const (
	defaultLinkTemplate = "https://paystack.com/pay/%s"
	referencePrefix     = "ref_"
)

// Issuer mints payment references and composes the user-facing payment
// action. References are drawn from a 128-bit random space; a narrow
// counter would collide across replayed webhooks.
type Issuer struct {
	linkTemplate string
	newToken     func() string
}

type IssuerOption func(*Issuer)

func WithLinkTemplate(template string) IssuerOption {
	return func(i *Issuer) {
		trimmed := strings.TrimSpace(template)
		if trimmed != "" {
			i.linkTemplate = trimmed
		}
	}
}

// WithTokenSource overrides the random source. Tests use this for
// deterministic references.
func WithTokenSource(fn func() string) IssuerOption {
	return func(i *Issuer) {
		if fn != nil {
			i.newToken = fn
		}
	}
}

func NewIssuer(opts ...IssuerOption) *Issuer {
	i := &Issuer{
		linkTemplate: defaultLinkTemplate,
		newToken: func() string {
			return strings.ReplaceAll(uuid.NewString(), "-", "")
		},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(i)
		}
	}
	return i
}

var _ contractx.Issuer = (*Issuer)(nil)

// Issue produces the intent-to-pay artifact. It never blocks on payment
// confirmation; downstream systems flip the order status later.
func (i *Issuer) Issue(ctx context.Context, conversationID string, amount float64) (contractx.PaymentAction, error) {
	if strings.TrimSpace(conversationID) == "" {
		return contractx.PaymentAction{}, fmt.Errorf("%w: conversation id is empty", contractx.ErrValidation)
	}
	if amount < 0 {
		return contractx.PaymentAction{}, fmt.Errorf("%w: amount must be non-negative", contractx.ErrValidation)
	}

	reference := referencePrefix + i.newToken()
	return contractx.PaymentAction{
		Reference: reference,
		Amount:    amount,
		Link:      fmt.Sprintf(i.linkTemplate, reference),
	}, nil
}

// DecorateReply appends the payment link to the model's reply text.
func DecorateReply(reply string, action contractx.PaymentAction) string {
	return reply + "\n\n💳 Secure Link: " + action.Link
}

// ResolveAmount picks the amount from the referenced product's price when
// the decision carries a product id; unknown products resolve to zero so a
// stale reference never blocks checkout.
func ResolveAmount(decision contractx.ModelDecision, inventory []contractx.Product) float64 {
	if decision.ProductID == nil {
		return 0
	}
	for _, p := range inventory {
		if p.ID == *decision.ProductID {
			return p.Price
		}
	}
	return 0
}

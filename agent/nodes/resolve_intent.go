package pipelinenode

import (
	"context"
	"fmt"

	contractx "github.com/boluade/shopmate/agent/contract"
	paymentx "github.com/boluade/shopmate/agent/payment"
)

// ResolveIntent branches on the validated decision. Inquiry and negotiation
// pass through untouched; finalize_payment issues exactly one payment
// reference, appends the payment link to the reply, and persists one
// pending order.
func ResolveIntent(
	ctx context.Context,
	in *GraphState,
	issuer contractx.Issuer,
	orders contractx.OrderStore,
) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	if in.Decision.Intent != contractx.IntentFinalizePayment {
		return in, nil
	}

	amount := paymentx.ResolveAmount(in.Decision, in.Inventory)
	action, err := issuer.Issue(ctx, in.ConversationID, amount)
	if err != nil {
		return nil, fmt.Errorf("%w: issue payment reference: %v", contractx.ErrValidation, err)
	}

	order := contractx.Order{
		ConversationID: in.ConversationID,
		Reference:      action.Reference,
		Amount:         action.Amount,
		Status:         contractx.OrderStatusPending,
		CreatedAt:      in.Now,
	}
	if err := orders.Insert(ctx, order); err != nil {
		return nil, fmt.Errorf("%w: persist order %s: %v", contractx.ErrStoreWrite, action.Reference, err)
	}

	in.Action = &action
	in.Reply = paymentx.DecorateReply(in.Decision.Reply, action)
	return in, nil
}

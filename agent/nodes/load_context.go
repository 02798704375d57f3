package pipelinenode

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	contractx "github.com/boluade/shopmate/agent/contract"
)

// LoadContext reads the inventory snapshot and the bounded recent history.
// Read failures degrade to empty slices; a dead catalog read should produce
// a usable (if uninformed) reply, not a dead conversation.
func LoadContext(
	ctx context.Context,
	in *GraphState,
	inventory contractx.InventoryProvider,
	conversations contractx.ConversationStore,
	historyLimit int,
) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	products, err := inventory.ActiveProducts(ctx)
	if err != nil {
		log.Warn().
			Err(err).
			Str("conversation_id", in.ConversationID).
			Msg("inventory read failed, proceeding with empty catalog")
		products = nil
	}
	in.Inventory = products

	history, err := conversations.Recent(ctx, in.ConversationID, historyLimit)
	if err != nil {
		log.Warn().
			Err(err).
			Str("conversation_id", in.ConversationID).
			Msg("history read failed, proceeding with empty history")
		history = nil
	}
	in.History = history

	return in, nil
}

package pipelinenode

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	contractx "github.com/boluade/shopmate/agent/contract"
)

// PersistReply appends the assistant turn once the reply is final. Only
// successful decisions reach this node, so history never records a fallback
// as if the model had answered.
func PersistReply(
	ctx context.Context,
	in *GraphState,
	conversations contractx.ConversationStore,
) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	err := conversations.Append(ctx, contractx.Turn{
		ConversationID: in.ConversationID,
		Role:           contractx.RoleAssistant,
		Content:        in.Reply,
		CreatedAt:      in.Now,
	})
	if err != nil {
		log.Error().
			Err(err).
			Str("conversation_id", in.ConversationID).
			Msg("persist assistant turn failed")
	}

	return in, nil
}

package pipelinenode

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	contractx "github.com/boluade/shopmate/agent/contract"
)

// PersistInbound appends the user's turn to the conversation log. A write
// failure is logged and tolerated: losing one history entry degrades the
// next prompt, it does not abort this conversation.
func PersistInbound(
	ctx context.Context,
	in *GraphState,
	conversations contractx.ConversationStore,
) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	err := conversations.Append(ctx, contractx.Turn{
		ConversationID: in.ConversationID,
		Role:           contractx.RoleUser,
		Content:        in.Text,
		CreatedAt:      in.Now,
	})
	if err != nil {
		log.Error().
			Err(err).
			Str("conversation_id", in.ConversationID).
			Msg("persist inbound turn failed")
	}

	return in, nil
}

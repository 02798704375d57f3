package pipelinenode

import (
	"context"
	"fmt"

	contractx "github.com/boluade/shopmate/agent/contract"
)

// InvokeModel performs the single reasoning attempt. Any failure here is
// terminal for this message; the orchestrator turns it into the fallback
// reply with zero side effects.
func InvokeModel(
	ctx context.Context,
	in *GraphState,
	reasoner contractx.Reasoner,
) (*GraphState, error) {
	if in == nil || len(in.Turns) == 0 {
		return nil, fmt.Errorf("%w: prompt turns are missing", contractx.ErrValidation)
	}

	decision, err := reasoner.Decide(ctx, in.Turns)
	if err != nil {
		return nil, err
	}

	in.Decision = decision
	in.Reply = decision.Reply
	return in, nil
}

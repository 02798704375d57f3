package pipelinenode

import (
	"fmt"
	"strings"

	contractx "github.com/boluade/shopmate/agent/contract"
)

func FinalizeReply(in *GraphState) (GraphOutput, error) {
	if in == nil {
		return GraphOutput{}, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	reply := strings.TrimSpace(in.Reply)
	if reply == "" {
		return GraphOutput{}, fmt.Errorf("%w: resolved reply is empty", contractx.ErrValidation)
	}

	return GraphOutput{
		Reply:    reply,
		Decision: in.Decision,
		Action:   in.Action,
	}, nil
}

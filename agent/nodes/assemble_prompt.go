package pipelinenode

import (
	"fmt"

	contractx "github.com/boluade/shopmate/agent/contract"
	promptx "github.com/boluade/shopmate/agent/prompt"
)

func AssemblePrompt(in *GraphState, assembler *promptx.Assembler) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	turns, err := assembler.Assemble(in.ConversationID, in.Text, in.Inventory, in.History)
	if err != nil {
		return nil, err
	}
	in.Turns = turns
	return in, nil
}

package prompt

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	contractx "github.com/boluade/shopmate/agent/contract"
)

//go:embed template/persona.txt
var personaRaw string

// DefaultHistoryLimit bounds how many recent turns ride along with the
// system turn on each reasoning call.
const DefaultHistoryLimit = 10

// Assembler builds the ordered turn list handed to the reasoning client:
// one system turn (persona + rules + inventory snapshot) followed by the
// bounded recent history, oldest first, ending with the current user
// message.
type Assembler struct {
	persona      string
	historyLimit int
}

type AssemblerOption func(*Assembler)

func WithHistoryLimit(limit int) AssemblerOption {
	return func(a *Assembler) {
		if limit > 0 {
			a.historyLimit = limit
		}
	}
}

func WithPersona(persona string) AssemblerOption {
	return func(a *Assembler) {
		trimmed := strings.TrimSpace(persona)
		if trimmed != "" {
			a.persona = trimmed
		}
	}
}

func NewAssembler(opts ...AssemblerOption) *Assembler {
	a := &Assembler{
		persona:      strings.TrimSpace(personaRaw),
		historyLimit: DefaultHistoryLimit,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(a)
		}
	}
	return a
}

// Assemble produces the full reasoning context for one inbound message.
// The inventory snapshot is serialized with a stable field order so that
// identical inputs yield a byte-identical system turn.
func (a *Assembler) Assemble(
	conversationID string,
	userMessage string,
	inventory []contractx.Product,
	history []contractx.Turn,
) ([]contractx.Turn, error) {
	userMessage = strings.TrimSpace(userMessage)
	if userMessage == "" {
		return nil, fmt.Errorf("%w: user message is empty", contractx.ErrValidation)
	}

	system, err := a.SystemTurn(conversationID, inventory)
	if err != nil {
		return nil, err
	}

	if len(history) > a.historyLimit {
		history = history[len(history)-a.historyLimit:]
	}

	turns := make([]contractx.Turn, 0, len(history)+2)
	turns = append(turns, system)
	for _, t := range history {
		if t.Role == contractx.RoleSystem {
			continue
		}
		turns = append(turns, t)
	}

	if !endsWithUserMessage(turns, userMessage) {
		turns = append(turns, contractx.Turn{
			ConversationID: conversationID,
			Role:           contractx.RoleUser,
			Content:        userMessage,
		})
	}

	return turns, nil
}

// SystemTurn renders the persona plus the serialized inventory snapshot.
func (a *Assembler) SystemTurn(conversationID string, inventory []contractx.Product) (contractx.Turn, error) {
	if inventory == nil {
		inventory = []contractx.Product{}
	}

	serialized, err := json.Marshal(inventory)
	if err != nil {
		return contractx.Turn{}, fmt.Errorf("%w: serialize inventory: %v", contractx.ErrValidation, err)
	}

	var b strings.Builder
	b.WriteString(a.persona)
	b.WriteString("\n\nINVENTORY:\n")
	b.Write(serialized)

	return contractx.Turn{
		ConversationID: conversationID,
		Role:           contractx.RoleSystem,
		Content:        b.String(),
	}, nil
}

func endsWithUserMessage(turns []contractx.Turn, userMessage string) bool {
	if len(turns) == 0 {
		return false
	}
	last := turns[len(turns)-1]
	return last.Role == contractx.RoleUser && strings.TrimSpace(last.Content) == userMessage
}

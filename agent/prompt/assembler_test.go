package prompt

import (
	"strings"
	"testing"
	"time"

	contractx "github.com/boluade/shopmate/agent/contract"
)

func sampleInventory() []contractx.Product {
	return []contractx.Product{
		{ID: 1, Name: "Phone", Price: 500, Description: "Flagship phone"},
		{ID: 2, Name: "Laptop", Price: 1200, Description: "Workstation"},
	}
}

func sampleHistory(conversationID string, n int) []contractx.Turn {
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	turns := make([]contractx.Turn, 0, n)
	for i := 0; i < n; i++ {
		role := contractx.RoleUser
		if i%2 == 1 {
			role = contractx.RoleAssistant
		}
		turns = append(turns, contractx.Turn{
			ConversationID: conversationID,
			Role:           role,
			Content:        "turn " + string(rune('a'+i)),
			CreatedAt:      base.Add(time.Duration(i) * time.Minute),
		})
	}
	return turns
}

func TestAssembleSystemTurnDeterminism(t *testing.T) {
	t.Parallel()

	a := NewAssembler()
	inventory := sampleInventory()
	history := sampleHistory("c1", 4)

	first, err := a.Assemble("c1", "how much is the phone?", inventory, history)
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}
	second, err := a.Assemble("c1", "how much is the phone?", inventory, history)
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}

	if first[0].Content != second[0].Content {
		t.Fatal("system turn content must be byte-identical for identical inputs")
	}
}

func TestAssembleOrdering(t *testing.T) {
	t.Parallel()

	a := NewAssembler()
	history := sampleHistory("c1", 3)

	turns, err := a.Assemble("c1", "I'll take it", sampleInventory(), history)
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}

	if turns[0].Role != contractx.RoleSystem {
		t.Fatalf("first turn role = %s, want system", turns[0].Role)
	}
	if got := len(turns); got != 5 {
		t.Fatalf("len(turns) = %d, want 5", got)
	}
	for i := 1; i < 4; i++ {
		if turns[i].Content != history[i-1].Content {
			t.Fatalf("turn %d = %q, want %q (history oldest first)", i, turns[i].Content, history[i-1].Content)
		}
	}

	last := turns[len(turns)-1]
	if last.Role != contractx.RoleUser || last.Content != "I'll take it" {
		t.Fatalf("last turn = %+v, want current user message", last)
	}
}

func TestAssembleBoundsHistory(t *testing.T) {
	t.Parallel()

	a := NewAssembler(WithHistoryLimit(4))
	history := sampleHistory("c1", 9)

	turns, err := a.Assemble("c1", "hello", sampleInventory(), history)
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}

	// system + 4 most recent + current message
	if got := len(turns); got != 6 {
		t.Fatalf("len(turns) = %d, want 6", got)
	}
	if turns[1].Content != history[5].Content {
		t.Fatalf("oldest kept turn = %q, want %q", turns[1].Content, history[5].Content)
	}
}

func TestAssembleSkipsDuplicateUserMessage(t *testing.T) {
	t.Parallel()

	a := NewAssembler()
	history := []contractx.Turn{
		{ConversationID: "c1", Role: contractx.RoleUser, Content: "any discounts?"},
	}

	turns, err := a.Assemble("c1", "any discounts?", sampleInventory(), history)
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}

	if got := len(turns); got != 2 {
		t.Fatalf("len(turns) = %d, want 2 (no duplicated trailing user message)", got)
	}
}

func TestAssembleDropsSystemTurnsFromHistory(t *testing.T) {
	t.Parallel()

	a := NewAssembler()
	history := []contractx.Turn{
		{ConversationID: "c1", Role: contractx.RoleSystem, Content: "stale persona"},
		{ConversationID: "c1", Role: contractx.RoleUser, Content: "hi"},
	}

	turns, err := a.Assemble("c1", "hello again", sampleInventory(), history)
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}

	for i, turn := range turns {
		if i > 0 && turn.Role == contractx.RoleSystem {
			t.Fatalf("turn %d is a second system turn", i)
		}
	}
}

func TestAssembleEmptyMessage(t *testing.T) {
	t.Parallel()

	a := NewAssembler()
	if _, err := a.Assemble("c1", "   ", nil, nil); err == nil {
		t.Fatal("expected error for empty user message")
	}
}

func TestSystemTurnIncludesInventoryAndContract(t *testing.T) {
	t.Parallel()

	a := NewAssembler()
	turn, err := a.SystemTurn("c1", sampleInventory())
	if err != nil {
		t.Fatalf("SystemTurn() error = %v", err)
	}

	for _, want := range []string{"INVENTORY:", `"name":"Phone"`, "finalize_payment", "JSON"} {
		if !strings.Contains(turn.Content, want) {
			t.Fatalf("system turn missing %q", want)
		}
	}
}

func TestSystemTurnEmptyInventorySerializesToEmptyArray(t *testing.T) {
	t.Parallel()

	a := NewAssembler()
	turn, err := a.SystemTurn("c1", nil)
	if err != nil {
		t.Fatalf("SystemTurn() error = %v", err)
	}
	if !strings.HasSuffix(turn.Content, "[]") {
		t.Fatalf("empty inventory should serialize to [], got tail %q", turn.Content[len(turn.Content)-8:])
	}
}

// Package channel holds the transport adapters. Each adapter translates its
// native envelope into contract.Inbound at the boundary; the pipeline never
// branches on channel shape.
package channel

import (
	"context"

	contractx "github.com/boluade/shopmate/agent/contract"
)

// Handler is what every adapter drives: one inbound message in, one reply
// out. The orchestrator satisfies this.
type Handler interface {
	HandleMessage(ctx context.Context, in contractx.Inbound) (string, error)
}

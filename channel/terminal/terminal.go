package terminal

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	contractx "github.com/boluade/shopmate/agent/contract"
	channelx "github.com/boluade/shopmate/channel"
)

const exitCommand = "exit"

// Loop is the interactive console channel. One loop serves one
// conversation; the id defaults to "terminal" so local history survives
// restarts in the shared store.
type Loop struct {
	in             io.Reader
	out            io.Writer
	handler        channelx.Handler
	conversationID string
}

type Option func(*Loop)

func WithConversationID(id string) Option {
	return func(l *Loop) {
		trimmed := strings.TrimSpace(id)
		if trimmed != "" {
			l.conversationID = trimmed
		}
	}
}

func NewLoop(in io.Reader, out io.Writer, handler channelx.Handler, opts ...Option) *Loop {
	l := &Loop{
		in:             in,
		out:            out,
		handler:        handler,
		conversationID: string(contractx.ChannelTerminal),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(l)
		}
	}
	return l
}

// Run reads lines until EOF, a context cancellation between turns, or the
// literal "exit" command.
func (l *Loop) Run(ctx context.Context) error {
	fmt.Fprintln(l.out, "💬 BOLU'S SHOP AI (Type 'exit' to quit)")
	fmt.Fprintln(l.out, "---------------------------------------")
	fmt.Fprintln(l.out, "Bot: Welcome to Bolu's Tech Shop! How can I help you today?")

	scanner := bufio.NewScanner(l.in)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		fmt.Fprint(l.out, "You: ")
		if !scanner.Scan() {
			return scanner.Err()
		}

		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		if strings.EqualFold(text, exitCommand) {
			return nil
		}

		reply, err := l.handler.HandleMessage(ctx, contractx.Inbound{
			Channel:        contractx.ChannelTerminal,
			ConversationID: l.conversationID,
			Text:           text,
		})
		if err != nil {
			fmt.Fprintln(l.out, "Bot: [Connection Error] Let me think...")
			continue
		}
		fmt.Fprintf(l.out, "Bot: %s\n", reply)
	}
}

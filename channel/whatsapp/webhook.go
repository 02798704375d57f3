package whatsapp

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	contractx "github.com/boluade/shopmate/agent/contract"
	channelx "github.com/boluade/shopmate/channel"
)

// Webhook handles both halves of the Cloud API contract: the GET
// verification handshake and POST message events.
type Webhook struct {
	verifyToken string
	handler     channelx.Handler
	dispatcher  contractx.Dispatcher
}

func NewWebhook(verifyToken string, handler channelx.Handler, dispatcher contractx.Dispatcher) *Webhook {
	return &Webhook{
		verifyToken: verifyToken,
		handler:     handler,
		dispatcher:  dispatcher,
	}
}

// HandleVerification answers the hub challenge: 200 with the challenge body
// when the mode is "subscribe" and the shared secret matches, 403 otherwise.
func (h *Webhook) HandleVerification(w http.ResponseWriter, r *http.Request) {
	mode := r.URL.Query().Get("hub.mode")
	token := r.URL.Query().Get("hub.verify_token")
	challenge := r.URL.Query().Get("hub.challenge")

	if mode == "subscribe" && h.verifyToken != "" && token == h.verifyToken {
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, challenge)
		return
	}

	http.Error(w, "Forbidden", http.StatusForbidden)
}

func (h *Webhook) HandleInbound(w http.ResponseWriter, r *http.Request) {
	var event WebhookEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ignored"})
		return
	}

	inbound := flatten(event)
	if len(inbound) == 0 {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ignored"})
		return
	}

	ctx := r.Context()
	for _, msg := range inbound {
		reply, err := h.handler.HandleMessage(ctx, msg)
		if err != nil {
			log.Error().Err(err).Str("conversation_id", msg.ConversationID).Msg("whatsapp message handling failed")
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "message handling failed"})
			return
		}
		if err := h.dispatcher.SendText(ctx, msg.ConversationID, reply); err != nil {
			log.Error().Err(err).Str("conversation_id", msg.ConversationID).Msg("whatsapp delivery failed")
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

// flatten walks entry[].changes[].value.messages[] and keeps only text
// messages with a sender and a body.
func flatten(event WebhookEvent) []contractx.Inbound {
	var out []contractx.Inbound
	for _, entry := range event.Entry {
		for _, change := range entry.Changes {
			for _, msg := range change.Value.Messages {
				if msg.Type != "text" || msg.Text == nil {
					continue
				}
				from := strings.TrimSpace(msg.From)
				body := strings.TrimSpace(msg.Text.Body)
				if from == "" || body == "" {
					continue
				}
				out = append(out, contractx.Inbound{
					Channel:        contractx.ChannelWhatsApp,
					ConversationID: from,
					Text:           body,
				})
			}
		}
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

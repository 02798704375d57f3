package telegram

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	contractx "github.com/boluade/shopmate/agent/contract"
	channelx "github.com/boluade/shopmate/channel"
)

// Webhook handles inbound Bot API updates. Non-message updates are
// acknowledged with {"status":"ignored"} so Telegram stops redelivering
// them.
type Webhook struct {
	handler    channelx.Handler
	dispatcher contractx.Dispatcher
}

func NewWebhook(handler channelx.Handler, dispatcher contractx.Dispatcher) *Webhook {
	return &Webhook{
		handler:    handler,
		dispatcher: dispatcher,
	}
}

func (h *Webhook) HandleInbound(w http.ResponseWriter, r *http.Request) {
	var update Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ignored"})
		return
	}

	if update.Message == nil || strings.TrimSpace(update.Message.Text) == "" {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ignored"})
		return
	}

	conversationID := strconv.FormatInt(update.Message.Chat.ID, 10)
	ctx := r.Context()

	if err := h.dispatcher.SendStatus(ctx, conversationID, contractx.StatusTyping); err != nil {
		log.Debug().Err(err).Str("conversation_id", conversationID).Msg("telegram typing status failed")
	}

	reply, err := h.handler.HandleMessage(ctx, contractx.Inbound{
		Channel:        contractx.ChannelTelegram,
		ConversationID: conversationID,
		Text:           update.Message.Text,
	})
	if err != nil {
		log.Error().Err(err).Str("conversation_id", conversationID).Msg("telegram message handling failed")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "message handling failed"})
		return
	}

	// Delivery is best-effort once the decision is committed; a rejected
	// send must not fail the webhook and trigger a replay.
	if err := h.dispatcher.SendText(ctx, conversationID, reply); err != nil {
		log.Error().Err(err).Str("conversation_id", conversationID).Msg("telegram delivery failed")
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

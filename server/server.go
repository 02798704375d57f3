// Package server wires the channel webhooks into one HTTP surface.
package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	telegramx "github.com/boluade/shopmate/channel/telegram"
	whatsappx "github.com/boluade/shopmate/channel/whatsapp"
)

type Config struct {
	Telegram *telegramx.Webhook
	WhatsApp *whatsappx.Webhook
}

// New builds the router. A missing adapter simply leaves its routes
// unmounted, so the server can run with a single channel configured.
func New(cfg Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})

	if cfg.Telegram != nil {
		r.Post("/webhook/telegram", cfg.Telegram.HandleInbound)
	}
	if cfg.WhatsApp != nil {
		r.Get("/webhook/whatsapp", cfg.WhatsApp.HandleVerification)
		r.Post("/webhook/whatsapp", cfg.WhatsApp.HandleInbound)
	}

	return r
}

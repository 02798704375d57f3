package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	orchestratorx "github.com/boluade/shopmate/agent/orchestrator"
	paymentx "github.com/boluade/shopmate/agent/payment"
	reasoningx "github.com/boluade/shopmate/agent/reasoning"
	telegramx "github.com/boluade/shopmate/channel/telegram"
	terminalx "github.com/boluade/shopmate/channel/terminal"
	whatsappx "github.com/boluade/shopmate/channel/whatsapp"
	configx "github.com/boluade/shopmate/pkg/config"
	_ "github.com/boluade/shopmate/pkg/logger/autoload"
	serverx "github.com/boluade/shopmate/server"
	bunstorex "github.com/boluade/shopmate/store/bunstore"
)

type AppConfig struct {
	ListenAddr      string        `envconfig:"LISTEN_ADDR" split_words:"true" default:":8080"`
	FallbackReply   string        `envconfig:"FALLBACK_REPLY" split_words:"true"`
	HistoryLimit    int           `envconfig:"HISTORY_LIMIT" split_words:"true" default:"10"`
	PaymentLink     string        `envconfig:"PAYMENT_LINK_TEMPLATE" split_words:"true"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" split_words:"true" default:"10s"`
}

func main() {
	mode := flag.String("mode", "serve", "run mode: serve (webhook server) or chat (interactive terminal)")
	flag.Parse()

	appCfg := configx.MustNew[AppConfig]("")

	db, err := bunstorex.Open(*configx.MustNew[bunstorex.Config]("DATABASE"))
	if err != nil {
		log.Fatal().Err(err).Msg("open database")
	}
	defer db.Close()

	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := bunstorex.Ping(pingCtx, db); err != nil {
		cancel()
		log.Fatal().Err(err).Msg("database unreachable")
	}
	cancel()

	reasoner, err := reasoningx.NewClient(*configx.MustNew[reasoningx.Config]("GROQ"))
	if err != nil {
		log.Fatal().Err(err).Msg("build reasoning client")
	}

	svc, err := orchestratorx.New(
		orchestratorx.Deps{
			Inventory:     bunstorex.NewProductStore(db),
			Conversations: bunstorex.NewMessageStore(db),
			Orders:        bunstorex.NewOrderStore(db),
			Reasoner:      reasoner,
			Issuer:        paymentx.NewIssuer(paymentx.WithLinkTemplate(appCfg.PaymentLink)),
		},
		orchestratorx.Config{
			FallbackReply: appCfg.FallbackReply,
			HistoryLimit:  appCfg.HistoryLimit,
		},
	)
	if err != nil {
		log.Fatal().Err(err).Msg("build orchestrator")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch *mode {
	case "chat":
		runChat(ctx, svc)
	case "serve":
		runServe(ctx, svc, appCfg)
	default:
		log.Fatal().Str("mode", *mode).Msg("unknown run mode")
	}
}

func runChat(ctx context.Context, svc *orchestratorx.Orchestrator) {
	loop := terminalx.NewLoop(os.Stdin, os.Stdout, svc)
	if err := loop.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal().Err(err).Msg("terminal loop failed")
	}
}

func runServe(ctx context.Context, svc *orchestratorx.Orchestrator, appCfg *AppConfig) {
	var (
		telegramHook *telegramx.Webhook
		whatsappHook *whatsappx.Webhook
	)

	if cfg, err := configx.New[telegramx.Config]("TELEGRAM"); err == nil {
		client, clientErr := telegramx.NewClient(*cfg)
		if clientErr != nil {
			log.Fatal().Err(clientErr).Msg("build telegram client")
		}
		telegramHook = telegramx.NewWebhook(svc, client)
		log.Info().Msg("telegram channel enabled")
	} else {
		log.Info().Err(err).Msg("telegram channel disabled")
	}

	if cfg, err := configx.New[whatsappx.Config]("WHATSAPP"); err == nil {
		client, clientErr := whatsappx.NewClient(*cfg)
		if clientErr != nil {
			log.Fatal().Err(clientErr).Msg("build whatsapp client")
		}
		whatsappHook = whatsappx.NewWebhook(cfg.VerifyToken, svc, client)
		log.Info().Msg("whatsapp channel enabled")
	} else {
		log.Info().Err(err).Msg("whatsapp channel disabled")
	}

	if telegramHook == nil && whatsappHook == nil {
		log.Fatal().Msg("no messaging channel configured; set TELEGRAM_BOT_TOKEN or WHATSAPP_ACCESS_TOKEN")
	}

	srv := &http.Server{
		Addr: appCfg.ListenAddr,
		Handler: serverx.New(serverx.Config{
			Telegram: telegramHook,
			WhatsApp: whatsappHook,
		}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info().Str("addr", appCfg.ListenAddr).Msg("webhook server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("webhook server failed")
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), appCfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown incomplete")
	}
}

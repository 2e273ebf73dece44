package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/oakpay/refundbot/internal/api/router"
	"github.com/oakpay/refundbot/internal/bot"
	appconfig "github.com/oakpay/refundbot/internal/config"
	"github.com/oakpay/refundbot/internal/observability/metrics"
	"github.com/oakpay/refundbot/internal/receipt"
	"github.com/oakpay/refundbot/internal/refund"
	"github.com/oakpay/refundbot/internal/slack"
	"github.com/oakpay/refundbot/pkg/logging"
)

func main() {
	// .env is optional; real deployments inject the environment directly.
	_ = godotenv.Load()

	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting refundbot",
		"env", cfg.Env,
		"port", cfg.Port,
		"slack_mode", cfg.SlackMode,
	)

	slackClient, err := slack.New(slack.Config{
		BaseURL:  cfg.SlackBaseURL,
		BotToken: cfg.SlackBotToken,
		AppToken: cfg.SlackAppToken,
		Logger:   logger,
	})
	if err != nil {
		logger.Error("failed to create slack client", "error", err)
		os.Exit(1)
	}

	refundService := refund.NewService(cfg.StripeSecretKey, logger).
		WithBaseURL(cfg.StripeBaseURL).
		WithTimeout(cfg.StripeTimeout).
		WithDryRun(cfg.StripeDryRun)

	botMetrics := metrics.NewBotMetrics(nil)
	formatter := receipt.NewFormatter(refundService.TestMode())
	app := bot.New(slackClient, refundService, formatter, logger, botMetrics)

	var webhooks *slack.WebhookHandler
	if cfg.SlackMode == "http" {
		webhooks = slack.NewWebhookHandler(
			cfg.SlackSigningSecret,
			app.HandleCallbackEvent,
			app.HandleSlashCommand,
			app.HandleInteraction,
			logger,
		)
	}

	r := router.New(&router.Config{
		Logger:         logger,
		SlackWebhooks:  webhooks,
		MetricsHandler: promhttp.Handler(),
		BotMetrics:     botMetrics,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.SlackMode != "http" {
		socket := slack.NewSocketClient(slackClient, app.HandleEnvelope, logger)
		go func() {
			if err := socket.Run(ctx); err != nil && ctx.Err() == nil {
				logger.Error("socket mode terminated", "error", err)
			}
		}()
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

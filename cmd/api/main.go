// Package main is the entry point for the chat gateway.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/activemirror/beacon-chat/internal/config"
	"github.com/activemirror/beacon-chat/internal/handler"
	"github.com/activemirror/beacon-chat/internal/llm"
	natsclient "github.com/activemirror/beacon-chat/internal/nats"
	"github.com/activemirror/beacon-chat/internal/ratelimit"
	"github.com/activemirror/beacon-chat/internal/service"
	"github.com/activemirror/beacon-chat/internal/validation"
	"github.com/activemirror/beacon-chat/pkg/logger"
	"github.com/activemirror/beacon-chat/pkg/tracing"
)

func main() {
	secretsFile := os.Getenv("SECRETS_FILE")
	if secretsFile == "" {
		secretsFile = config.DefaultSecretsFile()
	}
	secretsErr := config.LoadSecrets(secretsFile)

	cfg := config.Load()

	log, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if secretsErr != nil {
		log.Warn("secrets file not loaded", zap.Error(secretsErr))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.TracingEnabled {
		tp, err := tracing.InitTracer(ctx, "beacon-chat", cfg.TracingEndpoint)
		if err != nil {
			log.Warn("failed to initialize tracing", zap.Error(err))
		} else {
			defer func() { _ = tracing.Shutdown(context.Background(), tp) }()
		}
	}

	systemPrompt, err := cfg.ReadSystemPrompt(service.DefaultSystemPrompt)
	if err != nil {
		log.Fatal("failed to load system prompt", zap.Error(err))
	}

	// Operator notifications are optional; the gateway runs without them.
	var notifier service.Notifier = service.NopNotifier{}
	var events handler.ConnectionChecker
	if cfg.NATSURL != "" {
		natsClient, err := natsclient.Connect(ctx, natsclient.Config{
			URL:      cfg.NATSURL,
			CAFile:   cfg.NATSCAFile,
			CertFile: cfg.NATSCertFile,
			KeyFile:  cfg.NATSKeyFile,
			Token:    cfg.NATSToken,
		}, log)
		if err != nil {
			log.Warn("operator notifications disabled", zap.Error(err))
		} else {
			defer natsClient.Close()
			if err := natsclient.EnsureStream(ctx, natsClient.JetStream(), cfg.NATSSubject); err != nil {
				log.Warn("failed to ensure events stream", zap.Error(err))
			}
			notifier = natsclient.NewEventNotifier(natsClient.JetStream(), cfg.NATSSubject)
			events = natsClient
		}
	}

	limiter := ratelimit.NewLimiter(ratelimit.Config{
		PerMinute:     cfg.RateLimitPerMinute,
		PerHour:       cfg.RateLimitPerHour,
		MaxIdentities: cfg.MaxIdentities,
	}, log)
	go limiter.Run(ctx, cfg.IdleSweepInterval)

	cascade := llm.NewCascade(log, llm.DefaultChain(cfg.Chain())...)
	log.Info("provider chain", zap.Strings("chain", cfg.ChainReport()))

	chatSvc := service.NewChatService(
		limiter,
		validation.NewNormalizer(cfg.MaxSessionMessages, cfg.MaxInputLength),
		cascade,
		notifier,
		systemPrompt,
		log,
	)

	var diagnostics *handler.DiagnosticsHandler
	if cfg.OperatorJWTSecret != "" {
		diagnostics = handler.NewDiagnosticsHandler(chatSvc, log)
	}

	router := handler.NewRouter(handler.RouterConfig{
		Chat:              handler.NewChatHandler(chatSvc, log),
		Health:            handler.NewHealthHandler(chatSvc, events),
		Diagnostics:       diagnostics,
		AllowedOrigins:    cfg.AllowedOrigins,
		ProbeLimit:        cfg.HealthRateLimit,
		ProbeWindow:       cfg.HealthRateLimitSpan,
		OperatorJWTSecret: cfg.OperatorJWTSecret,
		Logger:            log,
	})

	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  cfg.ServerReadTimeout,
		WriteTimeout: cfg.ServerWriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info("server listening", zap.String("port", cfg.ServerPort))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}

	log.Info("server stopped")
}

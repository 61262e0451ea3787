package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/devashram/callseva/internal/config"
	"github.com/devashram/callseva/internal/handler"
	"github.com/devashram/callseva/internal/handler/voice"
	"github.com/devashram/callseva/internal/observability/metrics"
	"github.com/devashram/callseva/internal/service/assistant"
	"github.com/devashram/callseva/internal/service/booking"
	"github.com/devashram/callseva/internal/service/dialogue"
	"github.com/devashram/callseva/internal/service/speech"
	"github.com/devashram/callseva/internal/session"
	"github.com/devashram/callseva/pkg/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		logging.Default().Warn("no .env file found, using system environment", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		logging.Default().Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.LogLevel)

	registry := prometheus.NewRegistry()
	callMetrics := metrics.NewCallMetrics(registry)

	sessions := newSessionStore(cfg.Session, logger)

	var languageModel dialogue.LanguageModel
	if cfg.AI.Enabled() {
		assistantSvc, err := assistant.NewService(ctx, cfg.AI, time.Duration(cfg.Dialogue.ModelTimeoutSeconds)*time.Second)
		if err != nil {
			logger.Warn("assistant model unavailable, every call will be escalated", "error", err)
		} else {
			languageModel = assistantSvc
			logger.Info("assistant model initialized", "model", cfg.AI.Model)
		}
	} else {
		logger.Warn("ark credentials not configured, every call will be escalated")
	}

	var tts *speech.Service
	if cfg.Speech.Enabled {
		tts = speech.NewService(cfg.Speech, logger)
		logger.Info("speech synthesis enabled", "voice", cfg.Speech.Voice)
	} else {
		logger.Info("speech synthesis not configured, using vendor voice")
	}

	sink := booking.NewDeskNotifier(cfg.Booking.DeskWebhookURL, logger)
	policy := dialogue.NewPolicy(dialogue.MaxTransferAttempts)
	engine := dialogue.NewEngine(languageModel, sink, policy, cfg.Dialogue.HistoryLimit, callMetrics, logger)

	voiceHandler := voice.New(sessions, engine, tts, cfg.Telephony, callMetrics, logger)
	router := handler.NewRouter(voiceHandler, registry)

	startServer(ctx, cfg.Server, router, logger)
}

func newSessionStore(cfg config.SessionConfig, logger *logging.Logger) session.Store {
	ttl := time.Duration(cfg.TTLMinutes) * time.Minute
	if cfg.RedisAddr != "" {
		logger.Info("using redis session store", "addr", cfg.RedisAddr)
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		return session.NewRedisStore(rdb, ttl)
	}
	logger.Info("using in-memory session store")
	return session.NewMemoryStore(ttl)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler, logger *logging.Logger) {
	srv := &http.Server{
		Addr:              serverCfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	logger.Info("callseva listening", "addr", serverCfg.Addr)
	if err := runServer(ctx, srv); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

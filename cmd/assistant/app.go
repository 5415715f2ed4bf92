package main

import (
	"context"
	"fmt"

	"github.com/habitcards/assistant/internal/backend"
	"github.com/habitcards/assistant/internal/capture"
	"github.com/habitcards/assistant/internal/config"
	"github.com/habitcards/assistant/internal/engine"
	"github.com/habitcards/assistant/internal/logger"
	"github.com/habitcards/assistant/internal/mirror"
	"github.com/habitcards/assistant/internal/parse"
	"github.com/habitcards/assistant/internal/queue"
	"github.com/habitcards/assistant/internal/store"
	"github.com/habitcards/assistant/internal/workers"
	"go.uber.org/zap"
)

// app wires the engine and its collaborators for the CLI commands. The mirror
// queue is in-process; a RabbitMQ URL switches it to the broker so a separate
// worker can drain it instead.
type app struct {
	cfg      *config.Config
	logger   *zap.Logger
	store    *store.Gateway
	queue    queue.JobQueue
	client   *backend.Client
	engine   *engine.Engine
	shutdown context.CancelFunc
}

func newApp(debug bool, rec capture.Recognizer, progress engine.ProgressStrategy) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	zapLogger, err := logger.NewDevelopmentLogger(cfg.DebugMode || debug)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	gw, err := store.Open(cfg.StoreDriver, cfg.DSN(), zapLogger)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())

	var jobQueue queue.JobQueue
	if cfg.RabbitMQURL != "" {
		jobQueue, err = queue.NewRabbitMQQueue(cfg.RabbitMQURL)
		if err != nil {
			cancel()
			_ = gw.Close()
			return nil, fmt.Errorf("connect rabbitmq: %w", err)
		}
	} else {
		jobQueue = queue.NewMemoryQueue()
	}

	client := backend.NewClient(cfg.BackendURL, cfg.BackendAPIKey, backend.DefaultTimeout, zapLogger)

	tiers := []parse.Tier{parse.NewBackendTier(client)}
	if cfg.OpenAIKey != "" {
		tiers = append(tiers, parse.NewGenerativeTierWithLogger(
			cfg.OpenAIKey, cfg.AIBaseURL, cfg.AIModel, zapLogger, cfg.DebugMode || debug,
		))
	}
	tiers = append(tiers, parse.NewLocalTier())

	eng := engine.New(engine.Deps{
		Session:  capture.NewSession(rec, zapLogger),
		Resolver: parse.NewResolver(zapLogger, tiers...),
		Store:    gw,
		Mirror:   mirror.NewGateway(jobQueue, zapLogger),
		Progress: progress,
		Logger:   zapLogger,
	})

	// With the in-process queue the mirror consumer runs alongside the
	// engine; pushes only happen when a backend is configured.
	if cfg.RabbitMQURL == "" && client.Configured() {
		mirrorer := workers.NewMirrorer(jobQueue, client, zapLogger)
		go func() {
			if err := mirrorer.Run(ctx, 1); err != nil {
				zapLogger.Warn("mirror_consumer_stopped", zap.Error(err))
			}
		}()
	}

	return &app{
		cfg:      cfg,
		logger:   zapLogger,
		store:    gw,
		queue:    jobQueue,
		client:   client,
		engine:   eng,
		shutdown: cancel,
	}, nil
}

func (a *app) Close() {
	a.shutdown()
	if err := a.queue.Close(); err != nil {
		a.logger.Warn("failed_to_close_queue", zap.Error(err))
	}
	if err := a.store.Close(); err != nil {
		a.logger.Warn("failed_to_close_store", zap.Error(err))
	}
	_ = logger.Sync(a.logger)
}

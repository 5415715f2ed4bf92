package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/habitcards/assistant/internal/backend"
	"github.com/habitcards/assistant/internal/config"
	"github.com/habitcards/assistant/internal/logger"
	"github.com/habitcards/assistant/internal/queue"
	"github.com/habitcards/assistant/internal/workers"
	"go.uber.org/zap"
)

func main() {
	debugFlag := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	cfg, err := config.LoadWorker()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	debugMode := cfg.WorkerDebugMode || *debugFlag

	zapLogger, err := logger.NewProductionLogger(debugMode)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() {
		_ = logger.Sync(zapLogger)
	}()

	zapLogger.Info("starting_mirror_worker",
		zap.Bool("debug_mode", debugMode),
		zap.String("backend_url", cfg.BackendURL),
		zap.Int("prefetch", cfg.RabbitMQPrefetch),
	)

	jobQueue, err := queue.NewRabbitMQQueue(cfg.RabbitMQURL)
	if err != nil {
		zapLogger.Fatal("failed_to_connect_to_rabbitmq", zap.Error(err))
	}
	defer func() {
		if err := jobQueue.Close(); err != nil {
			zapLogger.Warn("failed_to_close_rabbitmq_connection", zap.Error(err))
		}
	}()
	zapLogger.Info("connected_to_rabbitmq")

	client := backend.NewClient(cfg.BackendURL, cfg.BackendAPIKey, backend.DefaultTimeout, zapLogger)
	mirrorer := workers.NewMirrorer(jobQueue, client, zapLogger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	done := make(chan error, 1)
	go func() {
		done <- mirrorer.Run(ctx, cfg.RabbitMQPrefetch)
	}()

	select {
	case <-sigChan:
		zapLogger.Info("shutdown_signal_received")
		cancel()
		select {
		case <-done:
		case <-time.After(10 * time.Second):
			zapLogger.Warn("worker_shutdown_timed_out")
		}
	case err := <-done:
		if err != nil {
			zapLogger.Fatal("worker_stopped_with_error", zap.Error(err))
		}
	}

	zapLogger.Info("worker_stopped")
}

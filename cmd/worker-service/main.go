package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cuongbtq/solosphere-be/internal/config"
	"github.com/cuongbtq/solosphere-be/internal/worker"
	workerstorage "github.com/cuongbtq/solosphere-be/internal/worker/storage"
	"github.com/cuongbtq/solosphere-be/shared/logger"
	"github.com/cuongbtq/solosphere-be/shared/postgresql"
	"github.com/cuongbtq/solosphere-be/shared/rabbitmq"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables or flags")
	}

	// Parse command-line flags
	defaultConfigPath := os.Getenv("WORKER_SERVICE_CONFIG_PATH")
	if defaultConfigPath == "" {
		defaultConfigPath = "configs/worker-service/config.yaml"
	}
	configPath := flag.String("config", defaultConfigPath, "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.ValidateWorkerConfig(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	// Initialize logger
	appLogger, err := logger.New(&logger.Config{
		Level:        cfg.Logging.Level,
		Format:       cfg.Logging.Format,
		Output:       cfg.Logging.Output,
		EnableSource: cfg.Logging.EnableCaller,
		TimeFormat:   time.RFC3339,
		NoColor:      cfg.Logging.NoColor,
		Service:      cfg.App.Name,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	workerID := newWorkerID()
	workerLogger := appLogger.WithAttrs(slog.String("worker_id", workerID))

	workerLogger.Info("Starting worker service",
		slog.String("app", cfg.App.Name),
		slog.String("version", cfg.App.Version),
		slog.String("environment", cfg.App.Environment),
	)

	// Initialize PostgreSQL client
	dbClient, err := postgresql.NewClient(cfg.Database.PostgreSQL(), workerLogger.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer dbClient.Close()

	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	if err := dbClient.HealthCheck(startupCtx); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}

	if cfg.Database.AutoMigrate {
		if err := dbClient.Migrate(startupCtx, workerstorage.Schema); err != nil {
			return fmt.Errorf("failed to apply activity schema: %w", err)
		}
		workerLogger.Info("Activity schema applied")
	}

	workerLogger.Info("Database connection established")

	// Initialize RabbitMQ client
	rabbitClient, err := rabbitmq.NewClient(cfg.RabbitMQ.Client(), workerLogger.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize RabbitMQ: %w", err)
	}
	defer rabbitClient.Close()

	workerLogger.Info("RabbitMQ connection established",
		slog.String("queue", cfg.RabbitMQ.Queue.Name),
		slog.Int("prefetch", cfg.RabbitMQ.Consumer.PrefetchCount),
	)

	// Create worker instance
	workerInstance := worker.NewWorker(&worker.Config{
		Logger:         workerLogger.Logger,
		Store:          workerstorage.NewStorage(dbClient.GetDB(), workerLogger.Logger),
		Source:         rabbitClient,
		WorkerID:       workerID,
		QueueName:      cfg.RabbitMQ.Queue.Name,
		Concurrency:    cfg.Worker.Concurrency,
		ProcessTimeout: cfg.Worker.ProcessTimeout,
	})

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start worker in a goroutine
	errChan := make(chan error, 1)
	go func() {
		errChan <- workerInstance.Start(ctx)
	}()

	workerLogger.Info("Worker service started successfully")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		workerLogger.Info("Received signal, shutting down gracefully",
			slog.String("signal", sig.String()),
		)
	case err := <-errChan:
		if err == nil {
			err = errors.New("delivery channel closed by broker")
		}
		workerLogger.Error("Worker error",
			slog.Any("error", err),
		)
		workerInstance.Stop()
		return err
	}

	// Cancel context to stop worker
	cancel()

	// Give worker time to shutdown gracefully
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Worker.ShutdownTimeout)
	defer shutdownCancel()

	// Stop worker
	done := make(chan struct{})
	go func() {
		workerInstance.Stop()
		close(done)
	}()

	select {
	case <-done:
		workerLogger.Info("Worker stopped gracefully")
	case <-shutdownCtx.Done():
		workerLogger.Warn("Worker shutdown timeout exceeded, forcing exit")
	}

	workerLogger.Info("Worker service shutdown complete")
	return nil
}

// newWorkerID combines the host name with a short random suffix
func newWorkerID() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "worker"
	}
	return fmt.Sprintf("%s-%s", host, uuid.NewString()[:8])
}

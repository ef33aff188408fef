package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cuongbtq/solosphere-be/internal/api/auth"
	"github.com/cuongbtq/solosphere-be/internal/api/handler"
	"github.com/cuongbtq/solosphere-be/internal/api/router"
	"github.com/cuongbtq/solosphere-be/internal/api/storage"
	"github.com/cuongbtq/solosphere-be/internal/api/storage/memory"
	"github.com/cuongbtq/solosphere-be/internal/api/storage/mongostore"
	"github.com/cuongbtq/solosphere-be/internal/config"
	"github.com/cuongbtq/solosphere-be/internal/events"
	"github.com/cuongbtq/solosphere-be/shared/logger"
	"github.com/cuongbtq/solosphere-be/shared/mongodb"
	"github.com/cuongbtq/solosphere-be/shared/postgresql"
	"github.com/cuongbtq/solosphere-be/shared/rabbitmq"
	"github.com/gin-gonic/gin"
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
	defaultConfigPath := os.Getenv("API_SERVICE_CONFIG_PATH")
	if defaultConfigPath == "" {
		defaultConfigPath = "configs/api-service/config.yaml"
	}
	configPath := flag.String("config", defaultConfigPath, "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.ValidateAPIConfig(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	// Initialize logger
	appLogger, err := initLogger(&cfg.Logging, cfg.App.Name)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	appLogger.Info("Starting API service",
		slog.String("app", cfg.App.Name),
		slog.String("version", cfg.App.Version),
		slog.String("environment", cfg.App.Environment),
		slog.String("database_driver", cfg.Database.Driver),
	)

	// Initialize the job/bid store
	store, closeStore, err := initStore(&cfg.Database, appLogger.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize store: %w", err)
	}
	defer closeStore()

	appLogger.Info("Store ready", slog.String("driver", cfg.Database.Driver))

	// Initialize event publisher
	var publisher events.Publisher = events.NopPublisher{}
	if cfg.RabbitMQ.Enabled {
		rabbitClient, err := rabbitmq.NewClient(cfg.RabbitMQ.Client(), appLogger.Logger)
		if err != nil {
			return fmt.Errorf("failed to initialize RabbitMQ: %w", err)
		}
		defer rabbitClient.Close()

		publisher = events.NewAMQPPublisher(rabbitClient, appLogger.Logger)
		appLogger.Info("RabbitMQ connection established",
			slog.String("exchange", cfg.RabbitMQ.Exchange.Name),
		)
	} else {
		appLogger.Info("RabbitMQ disabled, marketplace events are not published")
	}

	if !cfg.Auth.EnforceJobOwnership {
		appLogger.Warn("Job ownership is not enforced, PUT and DELETE /job/:id accept any caller")
	}

	// Initialize router
	deps := &handler.Dependencies{
		Logger:              appLogger.Logger,
		Store:               store,
		Tokens:              auth.NewTokenIssuer(cfg.Auth.TokenSecret, cfg.Auth.TokenTTL),
		Cookies:             auth.NewCookieConfig(cfg.Auth.CookieName, cfg.Auth.CookieDomain, cfg.App.IsProduction()),
		Publisher:           publisher,
		ServiceName:         cfg.App.Name,
		EnforceJobOwnership: cfg.Auth.EnforceJobOwnership,
	}
	r := initRouter(cfg, deps)

	// Create HTTP server
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	appLogger.Info("Starting HTTP server",
		slog.String("address", addr),
		slog.Duration("read_timeout", cfg.Server.ReadTimeout),
		slog.Duration("write_timeout", cfg.Server.WriteTimeout),
		slog.Any("allowed_origins", cfg.CORS.AllowedOrigins),
	)

	serverErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	// Wait for interrupt signal or a listener failure
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		appLogger.Error("Server failed to start", slog.Any("error", err))
		return err
	case sig := <-quit:
		appLogger.Info("Shutting down server...", slog.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Error("Server forced to shutdown",
			slog.Any("error", err),
		)
		return err
	}

	appLogger.Info("Server shutdown complete")
	return nil
}

// initLogger initializes and configures the application logger
func initLogger(cfg *config.LoggingConfig, service string) (*logger.Logger, error) {
	loggerCfg := &logger.Config{
		Level:        cfg.Level,
		Format:       cfg.Format,
		Output:       cfg.Output,
		EnableSource: cfg.EnableCaller,
		TimeFormat:   time.RFC3339,
		NoColor:      cfg.NoColor,
		Service:      service,
	}

	return logger.New(loggerCfg)
}

// initStore opens the configured backend and returns it with its cleanup func
func initStore(cfg *config.DatabaseConfig, logger *slog.Logger) (storage.Store, func(), error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	switch cfg.Driver {
	case config.DriverPostgres:
		client, err := postgresql.NewClient(cfg.PostgreSQL(), logger)
		if err != nil {
			return nil, nil, err
		}

		if cfg.AutoMigrate {
			if err := client.Migrate(ctx, storage.Schema); err != nil {
				client.Close()
				return nil, nil, err
			}
			logger.Info("Job and bid schema applied")
		}

		return storage.NewStorage(client.GetDB(), logger), func() { client.Close() }, nil

	case config.DriverMongoDB:
		client, err := mongodb.NewClient(cfg.MongoDB(), logger)
		if err != nil {
			return nil, nil, err
		}

		store := mongostore.New(client.Database(), logger)
		if cfg.AutoMigrate {
			if err := store.EnsureIndexes(ctx); err != nil {
				client.Close()
				return nil, nil, err
			}
		}

		return store, func() { client.Close() }, nil

	case config.DriverMemory:
		logger.Warn("Using the in-memory store, data is lost on restart")
		return memory.New(), func() {}, nil

	default:
		return nil, nil, fmt.Errorf("unknown database driver: %q", cfg.Driver)
	}
}

// initRouter initializes the Gin router with all routes and middleware
func initRouter(cfg *config.Config, deps *handler.Dependencies) *gin.Engine {
	// Set Gin mode based on environment
	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	return router.SetupRouter(deps, cfg.CORS.AllowedOrigins)
}

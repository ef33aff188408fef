package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cuongbtq/solosphere-be/internal/events"
	"github.com/cuongbtq/solosphere-be/internal/worker/domain"
	amqp "github.com/rabbitmq/amqp091-go"
)

// ActivityRecorder persists activity events
type ActivityRecorder interface {
	RecordActivity(ctx context.Context, e events.Event) (string, error)
}

// DeliverySource hands out the deliveries of the activity queue
type DeliverySource interface {
	Consume(consumerTag string) (<-chan amqp.Delivery, error)
}

// Config holds worker configuration
type Config struct {
	Logger         *slog.Logger
	Store          ActivityRecorder
	Source         DeliverySource
	WorkerID       string
	QueueName      string
	Concurrency    int
	ProcessTimeout time.Duration
}

// Worker consumes marketplace events and records them in the activity log
type Worker struct {
	logger         *slog.Logger
	store          ActivityRecorder
	source         DeliverySource
	workerID       string
	queueName      string
	concurrency    int
	processTimeout time.Duration
	jobsChan       chan *domain.ActivityMessage
	wg             sync.WaitGroup
	stopChan       chan struct{}
	stopOnce       sync.Once
}

// NewWorker creates a new worker instance
func NewWorker(cfg *Config) *Worker {
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}
	timeout := cfg.ProcessTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Worker{
		logger:         cfg.Logger,
		store:          cfg.Store,
		source:         cfg.Source,
		workerID:       cfg.WorkerID,
		queueName:      cfg.QueueName,
		concurrency:    concurrency,
		processTimeout: timeout,
		jobsChan:       make(chan *domain.ActivityMessage, concurrency),
		stopChan:       make(chan struct{}),
	}
}

// Start subscribes to the queue, spawns the pool and blocks until ctx is
// canceled or the delivery channel closes
func (w *Worker) Start(ctx context.Context) error {
	w.logger.Info("Starting worker",
		slog.String("worker_id", w.workerID),
		slog.Int("concurrency", w.concurrency),
		slog.Duration("process_timeout", w.processTimeout),
	)

	deliveries, err := w.setupConsumer()
	if err != nil {
		return fmt.Errorf("failed to set up consumer: %w", err)
	}

	w.spawnWorkerPool(ctx)
	w.startMessageDispatcher(ctx, deliveries)

	w.logger.Info("Worker dispatcher finished",
		slog.String("worker_id", w.workerID),
	)
	return nil
}

// Stop gracefully stops the worker and waits for in-flight messages
func (w *Worker) Stop() {
	w.stopOnce.Do(func() {
		w.logger.Info("Stopping worker...")
		close(w.stopChan)
		w.wg.Wait()
		w.logger.Info("Worker stopped")
	})
}

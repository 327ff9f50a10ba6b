package events

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Errors returned by Dispatcher.EmitEvent.
var (
	ErrDispatcherStopped = errors.New("event dispatcher is stopped")
	ErrQueueFull         = errors.New("event queue is full")
)

// DispatcherConfig holds configuration options for the dispatcher.
type DispatcherConfig struct {
	// QueueSize bounds the number of events waiting for delivery.
	QueueSize int
	// WorkerCount is the number of goroutines delivering events.
	WorkerCount int
	// HandlerTimeout bounds the delivery of one event to all handlers.
	HandlerTimeout time.Duration
}

// DefaultDispatcherConfig returns a DispatcherConfig with reasonable defaults.
func DefaultDispatcherConfig() DispatcherConfig {
	return DispatcherConfig{
		QueueSize:      256,
		WorkerCount:    2,
		HandlerTimeout: 5 * time.Second,
	}
}

// Dispatcher is an EventEmitter that never blocks the caller. Events are
// queued and delivered to the registered handlers by a pool of workers.
// When the queue is full the event is dropped.
type Dispatcher struct {
	queue   chan *Event
	fanout  *InMemoryEventEmitter
	config  DispatcherConfig
	logger  *slog.Logger
	wg      sync.WaitGroup
	mu      sync.RWMutex
	closed  bool
	started bool
}

var _ EventEmitter = (*Dispatcher)(nil)

// NewDispatcher creates a dispatcher. Call Start to begin delivery.
func NewDispatcher(config DispatcherConfig, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	defaults := DefaultDispatcherConfig()
	if config.QueueSize <= 0 {
		config.QueueSize = defaults.QueueSize
	}
	if config.WorkerCount <= 0 {
		logger.Warn("invalid worker count specified, using default",
			"specified_count", config.WorkerCount,
			"default_count", defaults.WorkerCount)
		config.WorkerCount = defaults.WorkerCount
	}
	if config.HandlerTimeout <= 0 {
		config.HandlerTimeout = defaults.HandlerTimeout
	}

	return &Dispatcher{
		queue:  make(chan *Event, config.QueueSize),
		fanout: NewInMemoryEventEmitter(logger),
		config: config,
		logger: logger.With("component", "event_dispatcher"),
	}
}

// RegisterHandler adds a handler that receives every dispatched event.
func (d *Dispatcher) RegisterHandler(handler EventHandler) {
	d.fanout.RegisterHandler(handler)
}

// Start launches the worker goroutines. Calling it more than once has no effect.
func (d *Dispatcher) Start() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.started || d.closed {
		return
	}
	d.started = true

	for i := 0; i < d.config.WorkerCount; i++ {
		d.wg.Add(1)
		go d.worker(i)
	}
	d.logger.Info("event dispatcher started",
		"worker_count", d.config.WorkerCount,
		"queue_size", d.config.QueueSize)
}

// EmitEvent enqueues event without blocking.
// It returns ErrQueueFull when the queue has no room and ErrDispatcherStopped
// after Stop.
func (d *Dispatcher) EmitEvent(_ context.Context, event *Event) error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		return ErrDispatcherStopped
	}

	select {
	case d.queue <- event:
		d.logger.Debug("event enqueued",
			"event_id", event.ID,
			"event_name", event.Name,
			"queue_len", len(d.queue))
		return nil
	default:
		d.logger.Warn("event queue full, dropping event",
			"event_id", event.ID,
			"event_name", event.Name,
			"queue_cap", cap(d.queue))
		return fmt.Errorf("%w: queue capacity %d reached", ErrQueueFull, cap(d.queue))
	}
}

// Stop rejects new events and waits until the workers have delivered
// everything already queued, or until ctx is done.
func (d *Dispatcher) Stop(ctx context.Context) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	close(d.queue)
	started := d.started
	d.mu.Unlock()

	if !started {
		if pending := len(d.queue); pending > 0 {
			d.logger.Warn("dispatcher stopped before start, dropping queued events", "count", pending)
		}
		return nil
	}

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		d.logger.Info("event dispatcher stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("event dispatcher did not drain: %w", ctx.Err())
	}
}

func (d *Dispatcher) worker(id int) {
	defer d.wg.Done()
	d.logger.Debug("starting worker", "worker_id", id)

	for event := range d.queue {
		d.deliver(event, id)
	}

	d.logger.Debug("event queue closed, stopping worker", "worker_id", id)
}

func (d *Dispatcher) deliver(event *Event, workerID int) {
	ctx, cancel := context.WithTimeout(context.Background(), d.config.HandlerTimeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("event handler panicked",
				"panic", r,
				"event_id", event.ID,
				"worker_id", workerID)
		}
	}()

	// handler errors are logged by the fan-out
	_ = d.fanout.EmitEvent(ctx, event)
}

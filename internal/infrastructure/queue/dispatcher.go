package queue

import (
	"context"
	"errors"
	"hash/fnv"
	"sync"

	"github.com/rs/zerolog"

	"github.com/deckshop/storefront/internal/core/domain"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
)

// ErrQueueFull is returned by Publish when the target worker's buffer is full.
var ErrQueueFull = errors.New("order event queue is full")

// ErrStopped is returned by Publish after Stop.
var ErrStopped = errors.New("order event dispatcher stopped")

// Handler consumes one order event.
type Handler func(ctx context.Context, event domain.OrderEvent) error

// Dispatcher routes order events to a fixed set of workers using consistent
// hashing on the user id, guaranteeing per-user event ordering.
type Dispatcher struct {
	workers  []chan domain.OrderEvent
	handlers []Handler
	log      zerolog.Logger

	mu      sync.RWMutex
	stopped bool
	wg      sync.WaitGroup
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, log zerolog.Logger, handlers ...Handler) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers:  make([]chan domain.OrderEvent, numWorkers),
		handlers: handlers,
		log:      log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.OrderEvent, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled
// or after Stop has drained their queues.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

// Publish hands the event to the worker responsible for its user. It never
// blocks: a full buffer yields ErrQueueFull so order submission is not held up.
func (d *Dispatcher) Publish(_ context.Context, event domain.OrderEvent) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.stopped {
		return ErrStopped
	}

	select {
	case d.workers[d.shardIndex(event.UserID)] <- event:
		return nil
	default:
		return ErrQueueFull
	}
}

// Stop closes the queues and waits for workers to drain them.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	d.stopped = true
	for _, ch := range d.workers {
		close(ch)
	}
	d.mu.Unlock()
	d.wg.Wait()
}

// shardIndex maps a user id deterministically to a worker index.
func (d *Dispatcher) shardIndex(userID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(userID))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.OrderEvent) {
	defer d.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-ch:
			if !ok {
				return
			}
			for _, h := range d.handlers {
				if err := h(ctx, event); err != nil {
					d.log.Error().Err(err).
						Str("order_id", event.OrderID).
						Int("worker_id", id).
						Msg("order event handler failed")
				}
			}
		}
	}
}

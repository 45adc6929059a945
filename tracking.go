package edureport

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/alnah/go-edureport/internal/api"
)

// Event is a usage analytics record.
type Event = api.Event

// Tracker records usage events with the analytics service.
type Tracker interface {
	Track(ctx context.Context, e Event) error
}

// Dispatcher defaults.
const (
	defaultQueueSize    = 16
	defaultTrackTimeout = 10 * time.Second
)

// Dispatcher sends tracking events in the background. Dispatch never
// blocks the caller and failures are only logged.
type Dispatcher struct {
	tracker Tracker
	timeout time.Duration
	logger  zerolog.Logger

	queue chan dispatchTask
	wg    sync.WaitGroup

	mu     sync.RWMutex
	closed bool
	once   sync.Once
}

type dispatchTask struct {
	ctx   context.Context
	event Event
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithQueueSize bounds the number of pending events.
func WithQueueSize(n int) DispatcherOption {
	return func(d *Dispatcher) {
		if n > 0 {
			d.queue = make(chan dispatchTask, n)
		}
	}
}

// WithTrackTimeout bounds each delivery attempt.
func WithTrackTimeout(t time.Duration) DispatcherOption {
	return func(d *Dispatcher) {
		if t > 0 {
			d.timeout = t
		}
	}
}

// WithDispatcherLogger sets the logger used when an event carries none.
func WithDispatcherLogger(l zerolog.Logger) DispatcherOption {
	return func(d *Dispatcher) { d.logger = l }
}

// NewDispatcher starts a Dispatcher with one delivery worker.
func NewDispatcher(t Tracker, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		tracker: t,
		timeout: defaultTrackTimeout,
		logger:  zerolog.Nop(),
		queue:   make(chan dispatchTask, defaultQueueSize),
	}
	for _, opt := range opts {
		opt(d)
	}

	d.wg.Add(1)
	go d.run()
	return d
}

// Dispatch queues e for delivery. The caller's ctx contributes its values
// (such as the logger) but not its cancellation.
func (d *Dispatcher) Dispatch(ctx context.Context, e Event) error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		return fmt.Errorf("%w: dispatcher closed", ErrTrackingFailure)
	}

	task := dispatchTask{ctx: context.WithoutCancel(ctx), event: e}
	select {
	case d.queue <- task:
		return nil
	default:
		d.loggerFor(ctx).Warn().Str("event_type", e.EventType).Msg("tracking queue full, event dropped")
		return ErrQueueFull
	}
}

// Close stops accepting events and waits for pending ones to be delivered
// or for ctx to expire.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.once.Do(func() {
		d.mu.Lock()
		d.closed = true
		close(d.queue)
		d.mu.Unlock()
	})

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) run() {
	defer d.wg.Done()
	for task := range d.queue {
		d.deliver(task)
	}
}

func (d *Dispatcher) deliver(task dispatchTask) {
	ctx, cancel := context.WithTimeout(task.ctx, d.timeout)
	defer cancel()

	if err := d.tracker.Track(ctx, task.event); err != nil {
		d.loggerFor(ctx).Warn().
			Err(fmt.Errorf("%w: %v", ErrTrackingFailure, err)).
			Str("event_type", task.event.EventType).
			Msg("tracking failed")
		return
	}
	d.loggerFor(ctx).Debug().Str("event_type", task.event.EventType).Msg("tracking delivered")
}

// loggerFor prefers the logger carried by ctx.
func (d *Dispatcher) loggerFor(ctx context.Context) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		return l
	}
	return &d.logger
}

// Package dispatcher routes batch lifecycle events from the runner to the
// handlers that store and report them.
package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// Batch lifecycle commands.
const (
	CommandBatchStart    = ":BATCH:START:"
	CommandGameCompleted = ":GAME:COMPLETED:"
	CommandGameFailed    = ":GAME:FAILED:"
	CommandBatchEnd      = ":BATCH:END:"
)

// Queued is the result of an event accepted by a buffered lane.
const Queued = "queued"

var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrClosed         = errors.New("dispatcher closed")
	ErrQueueFull      = errors.New("queue full")
)

// Event is a batch lifecycle notification. Payload depends on the command:
// *core.Batch for batch start, *core.BatchSummary for batch end,
// *core.GameRecord for a completed game and *core.GameFailure for a failed
// one.
type Event struct {
	Command   string
	BatchID   string
	Index     int
	Payload   any
	Timestamp time.Time
}

// HandlerFunc processes an event and returns a result.
type HandlerFunc func(Event) (any, error)

// Logger is the subset of *slog.Logger the dispatcher writes to.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
}

// Option configures handler registration.
type Option func(*registration)

type registration struct {
	buffer   int
	blocking bool
	logged   bool
}

// Buffered runs the handler on its own goroutine behind a queue of size
// events. Dispatch returns Queued without waiting for the handler.
func Buffered(size int) Option {
	return func(r *registration) { r.buffer = size }
}

// Blocking makes Dispatch wait for room in a full buffer instead of
// rejecting the event.
func Blocking() Option {
	return func(r *registration) { r.blocking = true }
}

// Logged logs each event and its outcome at debug level, failures at error.
func Logged() Option {
	return func(r *registration) { r.logged = true }
}

// lane is the queue and worker of one buffered command.
type lane struct {
	events  chan Event
	pending sync.WaitGroup
}

// Dispatcher routes events to registered handlers.
type Dispatcher struct {
	logger  Logger
	metrics instruments

	mu       sync.RWMutex
	handlers map[string]HandlerFunc
	lanes    map[string]*lane
	closed   bool
	workers  sync.WaitGroup
}

// New creates a Dispatcher. Metrics go to the global OTel meter.
func New(logger Logger) (*Dispatcher, error) {
	d := &Dispatcher{
		logger:   logger,
		handlers: make(map[string]HandlerFunc),
		lanes:    make(map[string]*lane),
	}
	metrics, err := newInstruments(d.depths)
	if err != nil {
		return nil, err
	}
	d.metrics = metrics
	return d, nil
}

func (d *Dispatcher) depths(observe func(string, int)) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for cmd, l := range d.lanes {
		observe(cmd, len(l.events))
	}
}

// Register sets the handler of a command, replacing any earlier one.
func (d *Dispatcher) Register(command string, h HandlerFunc, opts ...Option) {
	var r registration
	for _, opt := range opts {
		opt(&r)
	}

	if r.buffer > 0 {
		h = d.buffered(command, r, h)
	}
	if r.logged {
		h = d.logged(command, h)
	}

	d.mu.Lock()
	d.handlers[command] = h
	d.mu.Unlock()
}

// Dispatch routes an event to its handler, stamping it when no time is set.
func (d *Dispatcher) Dispatch(e Event) (any, error) {
	d.mu.RLock()
	h, ok := d.handlers[e.Command]
	closed := d.closed
	d.mu.RUnlock()

	switch {
	case !ok:
		return nil, fmt.Errorf("%w: %s", ErrUnknownCommand, e.Command)
	case closed:
		return nil, fmt.Errorf("%w: %s", ErrClosed, e.Command)
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	return h(e)
}

// Drain waits until every event already queued for the given commands has
// been handled. Producers of those commands must be stopped first.
// Unbuffered and unknown commands are ignored.
func (d *Dispatcher) Drain(commands ...string) {
	d.mu.RLock()
	lanes := make([]*lane, 0, len(commands))
	for _, c := range commands {
		if l, ok := d.lanes[c]; ok {
			lanes = append(lanes, l)
		}
	}
	d.mu.RUnlock()

	for _, l := range lanes {
		l.pending.Wait()
	}
}

// HasHandler reports whether a handler is registered for the command.
func (d *Dispatcher) HasHandler(command string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.handlers[command]
	return ok
}

// Close rejects further events and waits for every lane to empty.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	for _, l := range d.lanes {
		close(l.events)
	}
	d.mu.Unlock()
	d.workers.Wait()
}

func (d *Dispatcher) buffered(command string, r registration, h HandlerFunc) HandlerFunc {
	l := &lane{events: make(chan Event, r.buffer)}
	d.mu.Lock()
	d.lanes[command] = l
	d.mu.Unlock()

	attr := commandAttr(command)
	ctx := context.Background()

	d.workers.Add(1)
	go func() {
		defer d.workers.Done()
		for e := range l.events {
			if _, err := h(e); err != nil {
				d.metrics.failed.Add(ctx, 1, attr)
				d.logger.Error("buffered event failed", "command", command, "batch", e.BatchID, "index", e.Index, "error", err)
			}
			d.metrics.processed.Add(ctx, 1, attr)
			l.pending.Done()
		}
	}()

	return func(e Event) (any, error) {
		l.pending.Add(1)
		if r.blocking {
			l.events <- e
			return Queued, nil
		}
		select {
		case l.events <- e:
			return Queued, nil
		default:
			l.pending.Done()
			d.metrics.dropped.Add(ctx, 1, attr)
			return nil, fmt.Errorf("%w: %s", ErrQueueFull, command)
		}
	}
}

func (d *Dispatcher) logged(command string, h HandlerFunc) HandlerFunc {
	return func(e Event) (any, error) {
		start := time.Now()
		d.logger.Debug("handling event", "command", command, "batch", e.BatchID, "index", e.Index)

		result, err := h(e)
		if err != nil {
			d.logger.Error("event failed", "command", command, "index", e.Index, "took", time.Since(start), "error", err)
			return result, err
		}
		d.logger.Debug("event handled", "command", command, "index", e.Index, "took", time.Since(start))
		return result, nil
	}
}

// Package batch runs many independent games over a worker pool and reports
// their progress through the dispatcher.
package batch

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/viperball/matchsim/internal/dispatcher"
	"github.com/viperball/matchsim/internal/roster"
	"github.com/viperball/matchsim/internal/sim"
	"github.com/viperball/matchsim/pkg/core"
)

const instrumentationName = "github.com/viperball/matchsim/internal/batch"

var (
	// ErrInvalidConfig is returned before any game runs.
	ErrInvalidConfig = errors.New("invalid batch config")
	// ErrGamePanic wraps a panic recovered from one game.
	ErrGamePanic = errors.New("game panicked")
)

// SimulateFunc plays one game.
type SimulateFunc func(home, away *roster.Team, cfg sim.Config, opts ...sim.Option) (*core.GameResult, error)

// Config describes one batch.
type Config struct {
	Label    string
	Games    int
	Workers  int   // runtime.NumCPU() when 0
	BaseSeed int64 // game i plays with BaseSeed+i; random when 0

	// Sim holds the styles and weather of every game. Its seed is ignored.
	Sim sim.Config

	// KeepResults returns every game result in the report.
	KeepResults bool
}

// Report is what a finished batch returns.
type Report struct {
	Batch    *core.Batch
	Summary  core.BatchSummary
	Failures []core.GameFailure
	Duration time.Duration

	// Results is indexed by game; failed and unscheduled games are nil.
	Results []*core.GameResult
}

// Runner runs batches. One Runner can run several batches in sequence.
type Runner struct {
	logger     *slog.Logger
	dispatcher *dispatcher.Dispatcher
	context    *Context
	simulate   SimulateFunc
	simOptions []sim.Option

	simulated metric.Int64Counter
	failed    metric.Int64Counter
	duration  metric.Float64Histogram
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the runner logger. Games log through it too unless
// WithSimOptions says otherwise.
func WithLogger(l *slog.Logger) Option {
	return func(r *Runner) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithDispatcher publishes batch and game events.
func WithDispatcher(d *dispatcher.Dispatcher) Option {
	return func(r *Runner) { r.dispatcher = d }
}

// WithContext shares the batch progress with a monitor.
func WithContext(c *Context) Option {
	return func(r *Runner) {
		if c != nil {
			r.context = c
		}
	}
}

// WithSimOptions passes options to every game.
func WithSimOptions(opts ...sim.Option) Option {
	return func(r *Runner) { r.simOptions = append(r.simOptions, opts...) }
}

// WithSimulator replaces the game simulator.
func WithSimulator(f SimulateFunc) Option {
	return func(r *Runner) {
		if f != nil {
			r.simulate = f
		}
	}
}

// NewRunner creates a Runner. Metrics use the global OTel meter and are
// no-ops when none is configured.
func NewRunner(opts ...Option) (*Runner, error) {
	r := &Runner{
		logger:   slog.Default(),
		context:  NewContext(),
		simulate: sim.Simulate,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.simOptions = append([]sim.Option{sim.WithLogger(r.logger)}, r.simOptions...)

	m := otel.Meter(instrumentationName)
	var err error
	r.simulated, err = m.Int64Counter(
		"games.simulated",
		metric.WithDescription("Total games simulated to completion"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating simulated counter: %w", err)
	}
	r.failed, err = m.Int64Counter(
		"games.failed",
		metric.WithDescription("Total games that failed"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating failed counter: %w", err)
	}
	r.duration, err = m.Float64Histogram(
		"game.duration",
		metric.WithDescription("Wall time of one game"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating duration histogram: %w", err)
	}
	return r, nil
}

// Context returns the progress shared by this runner.
func (r *Runner) Context() *Context {
	return r.context
}

func (c Config) validate(pairings []Pairing) error {
	switch {
	case c.Games < 1:
		return fmt.Errorf("%w: games %d", ErrInvalidConfig, c.Games)
	case c.Workers < 0:
		return fmt.Errorf("%w: workers %d", ErrInvalidConfig, c.Workers)
	case c.BaseSeed < 0:
		return fmt.Errorf("%w: base seed %d", ErrInvalidConfig, c.BaseSeed)
	case len(pairings) == 0:
		return fmt.Errorf("%w: no pairings", ErrInvalidConfig)
	}
	for i, p := range pairings {
		if p.Home == nil || p.Away == nil {
			return fmt.Errorf("%w: pairing %d has a nil team", ErrInvalidConfig, i)
		}
	}
	return nil
}

// Run plays cfg.Games games. Game i uses pairings[i%len(pairings)]. A game
// that fails or panics is recorded and the batch carries on. Cancelling ctx
// stops scheduling new games; games already started run to the end and the
// partial report is returned with the context error.
func (r *Runner) Run(ctx context.Context, cfg Config, pairings []Pairing) (*Report, error) {
	if err := cfg.validate(pairings); err != nil {
		return nil, err
	}
	workers := cfg.Workers
	if workers == 0 {
		workers = runtime.NumCPU()
	}
	workers = min(workers, cfg.Games)
	base := cfg.BaseSeed
	if base == 0 {
		base = sim.RandomSeed() >> 2
	}

	b := &core.Batch{
		ID:        uuid.NewString(),
		Label:     cfg.Label,
		StartedAt: time.Now().UTC(),
		Games:     cfg.Games,
		BaseSeed:  base,
		Workers:   workers,
	}
	log := r.logger.With("batch", b.ID)
	log.Info("Batch started", "label", b.Label, "games", b.Games, "workers", workers, "baseSeed", base)
	r.context.Start(b)
	r.notify(dispatcher.Event{Command: dispatcher.CommandBatchStart, BatchID: b.ID, Payload: b})

	acc := NewAccumulator(b.ID)
	var results []*core.GameResult
	if cfg.KeepResults {
		results = make([]*core.GameResult, cfg.Games)
	}
	var (
		failuresMu sync.Mutex
		failures   []core.GameFailure
	)

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				res, f := r.play(pairings[i%len(pairings)], cfg.Sim, base+int64(i), b.ID, i, log)
				if f != nil {
					acc.Fail()
					failuresMu.Lock()
					failures = append(failures, *f)
					failuresMu.Unlock()
					continue
				}
				acc.Add(res)
				if results != nil {
					results[i] = res
				}
			}
		}()
	}

	scheduled := 0
schedule:
	for i := 0; i < cfg.Games; i++ {
		if ctx.Err() != nil {
			break
		}
		select {
		case <-ctx.Done():
			break schedule
		case jobs <- i:
			scheduled++
		}
	}
	close(jobs)
	wg.Wait()
	slices.SortFunc(failures, func(a, b core.GameFailure) int { return cmp.Compare(a.Index, b.Index) })

	summary := acc.Summary()
	report := &Report{
		Batch:    b,
		Summary:  summary,
		Failures: failures,
		Results:  results,
		Duration: time.Since(b.StartedAt),
	}
	r.context.Finish()
	r.notify(dispatcher.Event{Command: dispatcher.CommandBatchEnd, BatchID: b.ID, Payload: &summary})
	log.Info("Batch finished",
		"games", summary.Games,
		"failed", summary.Failed,
		"playsPerGame", summary.PlaysPerGame,
		"pointsPerTeam", summary.PointsPerTeam,
		"duration", report.Duration)

	if scheduled < cfg.Games {
		return report, fmt.Errorf("batch %s stopped after %d of %d games: %w", b.ID, scheduled, cfg.Games, ctx.Err())
	}
	return report, nil
}

// play runs one game and publishes its outcome. Exactly one of the results
// is non-nil.
func (r *Runner) play(p Pairing, sc sim.Config, seed int64, batchID string, index int, log *slog.Logger) (*core.GameResult, *core.GameFailure) {
	start := time.Now()
	sc.Seed = seed
	res, err := r.safeSimulate(p, sc)
	elapsed := time.Since(start)
	ctx := context.Background()

	if err != nil {
		log.Error("Game failed",
			"index", index,
			"seed", seed,
			"home", p.Home.Name,
			"away", p.Away.Name,
			"error", err)
		f := &core.GameFailure{
			BatchID:  batchID,
			Index:    index,
			Seed:     seed,
			HomeTeam: p.Home.Name,
			AwayTeam: p.Away.Name,
			Error:    err.Error(),
			Time:     time.Now().UTC(),
		}
		r.failed.Add(ctx, 1)
		r.context.failed()
		r.notify(dispatcher.Event{Command: dispatcher.CommandGameFailed, BatchID: batchID, Index: index, Payload: f})
		return nil, f
	}

	r.simulated.Add(ctx, 1)
	r.duration.Record(ctx, elapsed.Seconds(), metric.WithAttributes(attribute.String("weather", res.Weather)))
	r.context.completed()
	r.notify(dispatcher.Event{
		Command: dispatcher.CommandGameCompleted,
		BatchID: batchID,
		Index:   index,
		Payload: &core.GameRecord{BatchID: batchID, Index: index, Seed: seed, Result: res, Duration: elapsed},
	})
	return res, nil
}

func (r *Runner) safeSimulate(p Pairing, sc sim.Config) (res *core.GameResult, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			res = nil
			err = fmt.Errorf("%w: %v", ErrGamePanic, rec)
		}
	}()
	return r.simulate(p.Home, p.Away, sc, r.simOptions...)
}

func (r *Runner) notify(e dispatcher.Event) {
	if r.dispatcher == nil || !r.dispatcher.HasHandler(e.Command) {
		return
	}
	if _, err := r.dispatcher.Dispatch(e); err != nil {
		r.logger.Warn("Failed to dispatch batch event", "command", e.Command, "batch", e.BatchID, "index", e.Index, "error", err)
	}
}

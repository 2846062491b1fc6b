package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/viperball/matchsim/internal/api"
	"github.com/viperball/matchsim/internal/batch"
	"github.com/viperball/matchsim/internal/config"
	"github.com/viperball/matchsim/internal/dispatcher"
	"github.com/viperball/matchsim/internal/monitor"
	"github.com/viperball/matchsim/internal/roster"
	"github.com/viperball/matchsim/internal/sim"
	"github.com/viperball/matchsim/internal/storage"
	"github.com/viperball/matchsim/internal/worker"
	"github.com/viperball/matchsim/pkg/core"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Pairing schemes accepted by --pairings.
const (
	pairingsRoundRobin = "round-robin"
	pairingsRandom     = "random"
)

// batchOutput is printed when a batch finishes.
type batchOutput struct {
	Batch      *core.Batch        `json:"batch"`
	Summary    core.BatchSummary  `json:"summary"`
	Failures   []core.GameFailure `json:"failures"`
	DurationMs float64            `json:"duration_ms"`
	Storage    worker.Stats       `json:"storage"`
	Files      []string           `json:"files,omitempty"`
}

func batchFlags(fs *pflag.FlagSet) {
	fs.IntP("games", "n", 0, "number of games")
	fs.Int("workers", 0, "games played at once, 0 for one per CPU")
	fs.Int64("base-seed", 0, "game i plays with base-seed+i, 0 for a random base")
	fs.String("roster-dir", "", "directory of roster files")
	fs.String("label", "", "batch label used in file names and metrics")
	fs.String("pairings", pairingsRoundRobin, "round-robin or random")
	fs.String("special-teams", "", "default special teams scheme")
	fs.String("storage", "", "memory, sqlite, postgres, websocket or none")
	fs.String("output-dir", "", "export directory of the memory backend")
	fs.Bool("write-plays", false, "store every play in database and stream backends")
	fs.Bool("compact", false, "print the report on one line")
	simFlags(fs)
}

func runBatch(a *app, fs *pflag.FlagSet, stdout io.Writer) error {
	bc := config.GetBatchConfig()
	teams, err := a.rosters.Dir(bc.RosterDir)
	if err != nil {
		return err
	}
	scheme, _ := fs.GetString("pairings")
	pairings, err := buildPairings(teams, scheme, bc)
	if err != nil {
		return err
	}

	backend, err := createStorageBackend(a, config.GetStorageConfig(), config.GetDBConfig())
	if err != nil {
		return err
	}
	if err := backend.Init(); err != nil {
		return fmt.Errorf("failed to initialize storage backend: %w", err)
	}
	defer func() {
		if err := backend.Close(); err != nil {
			a.logger.Error("Failed to close storage backend", "error", err)
		}
	}()

	d, err := dispatcher.New(a.logger)
	if err != nil {
		return fmt.Errorf("failed to create dispatcher: %w", err)
	}
	defer d.Close()

	wm := worker.NewManager(worker.Dependencies{LogManager: a.slog, Influx: a.influx}, backend)
	wm.RegisterHandlers(d)

	mon := monitor.NewService(monitor.Dependencies{
		DB:            gormDB(backend),
		LogManager:    a.slog,
		BatchContext:  a.batchCtx,
		WorkerManager: wm,
		Influx:        a.influx,
		StatusDir:     viper.GetString("logsDir"),
	})
	if err := mon.Start(); err != nil {
		a.logger.Warn("Status monitor not started", "error", err)
	}
	defer mon.Stop()

	runner, err := batch.NewRunner(
		batch.WithLogger(a.logger),
		batch.WithDispatcher(d),
		batch.WithContext(a.batchCtx),
	)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	report, runErr := runner.Run(ctx, batch.Config{
		Label:    bc.Label,
		Games:    bc.Games,
		Workers:  bc.Workers,
		BaseSeed: bc.BaseSeed,
		Sim:      simConfig(config.GetSimConfig()),
	}, pairings)
	if report == nil {
		return runErr
	}

	out := batchOutput{
		Batch:      report.Batch,
		Summary:    report.Summary,
		Failures:   report.Failures,
		DurationMs: float64(report.Duration.Microseconds()) / 1000,
		Storage:    wm.Stats(),
	}
	if out.Failures == nil {
		out.Failures = []core.GameFailure{}
	}
	if e, ok := backend.(storage.Exportable); ok {
		out.Files = e.ExportedFiles()
	}
	compact, _ := fs.GetBool("compact")
	if err := writeJSON(stdout, out, compact); err != nil {
		return err
	}
	if uc := config.GetUploadConfig(); uc.Enabled && len(out.Files) > 0 {
		uploadFiles(ctx, a, api.New(uc.URL, uc.APIKey), out)
	}

	if n := out.Storage.WriteErrors; n > 0 {
		runErr = errors.Join(runErr, fmt.Errorf("%d results could not be stored", n))
	}
	return runErr
}

// uploadFiles sends the exported files to the results server. Failures are
// logged; the files stay on disk.
func uploadFiles(ctx context.Context, a *app, c *api.Client, out batchOutput) {
	if err := c.Healthcheck(ctx); err != nil {
		a.logger.Warn("Results server unreachable, skipping upload", "error", err)
		return
	}
	meta := api.UploadMetadata{
		BatchID:  out.Batch.ID,
		Label:    out.Batch.Label,
		Games:    out.Summary.Games,
		Failed:   out.Summary.Failed,
		Duration: time.Duration(out.DurationMs * float64(time.Millisecond)),
	}
	for _, f := range out.Files {
		if err := c.Upload(ctx, f, meta); err != nil {
			a.logger.Error("Failed to upload batch file", "file", f, "error", err)
			continue
		}
		a.logger.Info("Uploaded batch file", "file", f)
	}
}

func buildPairings(teams []*roster.Team, scheme string, bc config.BatchConfig) ([]batch.Pairing, error) {
	if len(teams) < 2 {
		return nil, fmt.Errorf("%w: %s holds %d rosters, need 2", errTeams, bc.RosterDir, len(teams))
	}
	switch strings.ToLower(scheme) {
	case pairingsRoundRobin, "":
		return batch.RoundRobin(teams), nil
	case pairingsRandom:
		seed := uint64(bc.BaseSeed)
		if seed == 0 {
			seed = uint64(sim.RandomSeed())
		}
		return batch.RandomPairings(teams, max(bc.Games, 1), rand.New(rand.NewPCG(seed, seed))), nil
	default:
		return nil, fmt.Errorf("unknown pairing scheme %q", scheme)
	}
}

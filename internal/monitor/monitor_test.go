package monitor

import (
	"bytes"
	"context"
	"log/slog"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viperball/matchsim/internal/batch"
	"github.com/viperball/matchsim/internal/database"
	"github.com/viperball/matchsim/internal/model"
	"github.com/viperball/matchsim/internal/roster"
	"github.com/viperball/matchsim/internal/worker"
	"github.com/viperball/matchsim/pkg/core"
)

func TestGetProgramStatus_AfterRun(t *testing.T) {
	bctx := batch.NewContext()
	r, err := batch.NewRunner(
		batch.WithLogger(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))),
		batch.WithContext(bctx),
	)
	require.NoError(t, err)

	teams := []*roster.Team{
		roster.Generate("Harbor", "HAR", rand.New(rand.NewPCG(1, 1))),
		roster.Generate("Riverton", "RIV", rand.New(rand.NewPCG(2, 2))),
	}
	_, err = r.Run(context.Background(), batch.Config{Label: "monitor", Games: 4, Workers: 2, BaseSeed: 50}, batch.RoundRobin(teams))
	require.NoError(t, err)

	s := NewService(Dependencies{BatchContext: bctx, WorkerManager: worker.NewManager(worker.Dependencies{}, nil)})
	start := time.Now()
	_, first := s.GetProgramStatus(start)
	assert.Equal(t, batch.Progress{Total: 4, Completed: 4}, first.Progress)
	assert.Equal(t, "monitor", first.Label)
	assert.Zero(t, first.GamesPerSecond, "no rate without a previous sample")

	lines, second := s.GetProgramStatus(start.Add(2 * time.Second))
	assert.Zero(t, second.GamesPerSecond)
	require.Len(t, lines, 2)
	assert.Equal(t, "monitor: 4/4 games, 0 failed, 0.0 games/s", lines[0])
	assert.Contains(t, lines[1], `"batch_id"`)
}

func TestService_SamplesRunningBatch(t *testing.T) {
	dir := t.TempDir()
	db, err := database.OpenSqlite(filepath.Join(dir, "progress.db"))
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	bctx := batch.NewContext()
	bctx.Start(&core.Batch{ID: "b-mon", Label: "sampled", Games: 10})

	s := NewService(Dependencies{
		DB:           db,
		BatchContext: bctx,
		StatusDir:    dir,
		Interval:     10 * time.Millisecond,
	})
	require.NoError(t, s.Start())
	assert.True(t, s.IsRunning())

	assert.Eventually(t, func() bool {
		_, err := LatestProgress(db, "b-mon")
		return err == nil
	}, 2*time.Second, 10*time.Millisecond)
	s.Stop()
	assert.False(t, s.IsRunning())

	row, err := LatestProgress(db, "b-mon")
	require.NoError(t, err)
	assert.Equal(t, model.BatchProgress{Time: row.Time, BatchID: "b-mon", Total: 10}, row)

	data, err := os.ReadFile(filepath.Join(dir, StatusFileName))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "sampled: 0/10 games"), string(data))
}

func TestService_IdleWritesNothing(t *testing.T) {
	dir := t.TempDir()
	s := NewService(Dependencies{BatchContext: batch.NewContext(), StatusDir: dir, Interval: 5 * time.Millisecond})
	require.NoError(t, s.Start())
	time.Sleep(30 * time.Millisecond)
	s.Stop()

	data, err := os.ReadFile(filepath.Join(dir, StatusFileName))
	require.NoError(t, err)
	assert.Empty(t, data)
}

func TestService_StopWithoutStart(t *testing.T) {
	s := NewService(Dependencies{BatchContext: batch.NewContext()})
	s.Stop()
	assert.False(t, s.IsRunning())
}

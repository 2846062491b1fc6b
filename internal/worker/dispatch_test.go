package worker

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viperball/matchsim/internal/batch"
	"github.com/viperball/matchsim/internal/config"
	"github.com/viperball/matchsim/internal/dispatcher"
	"github.com/viperball/matchsim/internal/influx"
	"github.com/viperball/matchsim/internal/roster"
	"github.com/viperball/matchsim/internal/sim"
	"github.com/viperball/matchsim/internal/storage/memory"
	"github.com/viperball/matchsim/pkg/core"
)

// mockLogger implements dispatcher.Logger for testing
type mockLogger struct {
	mu       sync.Mutex
	messages []string
}

func (l *mockLogger) Debug(msg string, keysAndValues ...any) { l.add(msg) }
func (l *mockLogger) Info(msg string, keysAndValues ...any)  { l.add(msg) }
func (l *mockLogger) Error(msg string, keysAndValues ...any) { l.add(msg) }

func (l *mockLogger) add(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = append(l.messages, msg)
}

// mockBackend implements storage.Backend for testing
type mockBackend struct {
	mu sync.Mutex

	batch        *core.Batch
	games        []*core.GameRecord
	failures     []*core.GameFailure
	summary      *core.BatchSummary
	gamesAtEnd   int
	gameDelay    time.Duration
	recordErr    error
	startBatches int
}

func (b *mockBackend) Init() error  { return nil }
func (b *mockBackend) Close() error { return nil }

func (b *mockBackend) StartBatch(batch *core.Batch) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.batch = batch
	b.startBatches++
	return nil
}

func (b *mockBackend) EndBatch(s *core.BatchSummary) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.summary = s
	b.gamesAtEnd = len(b.games)
	return nil
}

func (b *mockBackend) RecordGame(r *core.GameRecord) error {
	time.Sleep(b.gameDelay)
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.recordErr != nil {
		return b.recordErr
	}
	b.games = append(b.games, r)
	return nil
}

func (b *mockBackend) RecordFailure(f *core.GameFailure) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures = append(b.failures, f)
	return nil
}

func newDispatcher(t *testing.T) *dispatcher.Dispatcher {
	t.Helper()
	d, err := dispatcher.New(&mockLogger{})
	require.NoError(t, err)
	t.Cleanup(d.Close)
	return d
}

func TestRegisterHandlers_AllCommands(t *testing.T) {
	d := newDispatcher(t)
	NewManager(Dependencies{}, &mockBackend{}).RegisterHandlers(d)

	for _, cmd := range []string{
		dispatcher.CommandBatchStart,
		dispatcher.CommandGameCompleted,
		dispatcher.CommandGameFailed,
		dispatcher.CommandBatchEnd,
	} {
		assert.True(t, d.HasHandler(cmd), cmd)
	}
}

func TestBatchEnd_WaitsForQueuedGames(t *testing.T) {
	d := newDispatcher(t)
	backend := &mockBackend{gameDelay: time.Millisecond}
	m := NewManager(Dependencies{}, backend)
	m.RegisterHandlers(d)

	_, err := d.Dispatch(dispatcher.Event{Command: dispatcher.CommandBatchStart, BatchID: "b", Payload: &core.Batch{ID: "b"}})
	require.NoError(t, err)
	for i := range 30 {
		_, err := d.Dispatch(dispatcher.Event{Command: dispatcher.CommandGameCompleted, BatchID: "b", Index: i, Payload: &core.GameRecord{BatchID: "b", Index: i}})
		require.NoError(t, err)
	}
	_, err = d.Dispatch(dispatcher.Event{Command: dispatcher.CommandGameFailed, BatchID: "b", Index: 30, Payload: &core.GameFailure{BatchID: "b", Index: 30}})
	require.NoError(t, err)

	_, err = d.Dispatch(dispatcher.Event{Command: dispatcher.CommandBatchEnd, BatchID: "b", Payload: &core.BatchSummary{BatchID: "b", Games: 30, Failed: 1}})
	require.NoError(t, err)

	backend.mu.Lock()
	defer backend.mu.Unlock()
	assert.Equal(t, 30, backend.gamesAtEnd)
	assert.Len(t, backend.failures, 1)
	assert.Equal(t, 1, backend.startBatches)
	assert.Equal(t, Stats{Games: 30, Failures: 1}, m.Stats())
}

func TestHandlers_BadPayload(t *testing.T) {
	m := NewManager(Dependencies{}, &mockBackend{})

	handlers := map[string]dispatcher.HandlerFunc{
		dispatcher.CommandBatchStart:    m.handleBatchStart,
		dispatcher.CommandGameCompleted: m.handleGameCompleted,
		dispatcher.CommandGameFailed:    m.handleGameFailed,
		dispatcher.CommandBatchEnd:      m.handleBatchEnd,
	}
	for cmd, h := range handlers {
		_, err := h(dispatcher.Event{Command: cmd, Payload: "nope"})
		assert.ErrorIs(t, err, ErrBadPayload, cmd)
	}
}

func TestHandleGameCompleted_CountsWriteErrors(t *testing.T) {
	m := NewManager(Dependencies{}, &mockBackend{recordErr: errors.New("disk full")})

	_, err := m.handleGameCompleted(dispatcher.Event{Payload: &core.GameRecord{Index: 4}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "game 4")
	assert.Equal(t, int64(1), m.Stats().WriteErrors)
}

func TestNewManager_Defaults(t *testing.T) {
	m := NewManager(Dependencies{}, nil)
	_, err := m.handleBatchStart(dispatcher.Event{Payload: &core.Batch{ID: "x"}})
	assert.NoError(t, err)
	assert.Equal(t, 0, m.Pending())
}

func TestHandlers_WriteInfluxPoints(t *testing.T) {
	path := filepath.Join(t.TempDir(), "influx.gz")
	im := influx.NewManager(config.InfluxConfig{Enabled: true, Protocol: "http", Host: "127.0.0.1", Port: "1"}, zerolog.Nop(), path)
	require.NoError(t, im.Connect(context.Background()))

	m := NewManager(Dependencies{Influx: im}, &mockBackend{})
	_, err := m.handleGameCompleted(dispatcher.Event{Timestamp: time.Now(), Payload: &core.GameRecord{BatchID: "b", Result: &core.GameResult{HomeTeam: "H", AwayTeam: "A"}}})
	require.NoError(t, err)
	_, err = m.handleBatchEnd(dispatcher.Event{Payload: &core.BatchSummary{BatchID: "b"}})
	require.NoError(t, err)
	require.NoError(t, im.Close())

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestRunnerToMemoryBackend(t *testing.T) {
	d := newDispatcher(t)
	dir := t.TempDir()
	backend := memory.New(config.MemoryConfig{OutputDir: dir})
	NewManager(Dependencies{}, backend).RegisterHandlers(d)

	teams := make([]*roster.Team, 3)
	for i := range teams {
		teams[i] = roster.Generate(fmt.Sprintf("Team %d", i), fmt.Sprintf("T%d", i), rand.New(rand.NewPCG(uint64(i+1), 7)))
	}

	r, err := batch.NewRunner(
		batch.WithLogger(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))),
		batch.WithDispatcher(d),
	)
	require.NoError(t, err)

	report, err := r.Run(context.Background(), batch.Config{Label: "worker", Games: 6, Workers: 2, BaseSeed: 300, Sim: sim.Config{}}, batch.RoundRobin(teams))
	require.NoError(t, err)
	assert.Equal(t, 6, report.Summary.Games)

	files := backend.ExportedFiles()
	require.Len(t, files, 1)
	assert.Equal(t, dir, filepath.Dir(files[0]))
}

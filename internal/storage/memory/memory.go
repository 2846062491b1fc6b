// internal/storage/memory/memory.go
package memory

import (
	"errors"
	"sync"

	"github.com/viperball/matchsim/internal/config"
	"github.com/viperball/matchsim/pkg/core"
)

// ErrNoBatch is returned when records arrive outside of a batch.
var ErrNoBatch = errors.New("no batch started")

// Backend stores batch results in memory and exports them to JSON
type Backend struct {
	cfg   config.MemoryConfig
	batch *core.Batch

	games    map[int]*core.GameRecord // keyed by game index
	failures []core.GameFailure

	lastExportPath string
	mu             sync.RWMutex
}

// New creates a new memory backend
func New(cfg config.MemoryConfig) *Backend {
	return &Backend{
		cfg:   cfg,
		games: make(map[int]*core.GameRecord),
	}
}

// Init initializes the backend
func (b *Backend) Init() error {
	return nil
}

// Close cleans up resources
func (b *Backend) Close() error {
	return nil
}

// StartBatch begins collecting a new batch
func (b *Backend) StartBatch(batch *core.Batch) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.batch = batch
	b.games = make(map[int]*core.GameRecord)
	b.failures = nil
	return nil
}

// EndBatch writes everything collected since StartBatch and resets the backend
func (b *Backend) EndBatch(s *core.BatchSummary) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.batch == nil {
		return ErrNoBatch
	}
	if err := b.exportJSON(s); err != nil {
		return err
	}
	b.batch = nil
	b.games = make(map[int]*core.GameRecord)
	b.failures = nil
	return nil
}

// RecordGame keeps a completed game
func (b *Backend) RecordGame(r *core.GameRecord) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.batch == nil {
		return ErrNoBatch
	}
	b.games[r.Index] = r
	return nil
}

// RecordFailure keeps a failed game
func (b *Backend) RecordFailure(f *core.GameFailure) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.batch == nil {
		return ErrNoBatch
	}
	b.failures = append(b.failures, *f)
	return nil
}

// GetExportedFilePath returns the path of the last exported file
func (b *Backend) GetExportedFilePath() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lastExportPath
}

// ExportedFiles implements storage.Exportable
func (b *Backend) ExportedFiles() []string {
	if p := b.GetExportedFilePath(); p != "" {
		return []string{p}
	}
	return nil
}

// Games returns how many games the current batch holds
func (b *Backend) Games() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.games)
}

// internal/storage/storage.go
package storage

import "github.com/viperball/matchsim/pkg/core"

// Backend is the interface all storage implementations must satisfy.
// RecordGame and RecordFailure may be called from several goroutines.
type Backend interface {
	// Lifecycle
	Init() error
	Close() error

	// Batch management
	StartBatch(b *core.Batch) error
	EndBatch(s *core.BatchSummary) error

	// Game recording
	RecordGame(r *core.GameRecord) error
	RecordFailure(f *core.GameFailure) error
}

// Exportable is an optional interface for storage backends that write
// result files to disk.
type Exportable interface {
	ExportedFiles() []string
}

// Discard is a Backend that keeps nothing.
type Discard struct{}

func (Discard) Init() error                           { return nil }
func (Discard) Close() error                          { return nil }
func (Discard) StartBatch(*core.Batch) error          { return nil }
func (Discard) EndBatch(*core.BatchSummary) error     { return nil }
func (Discard) RecordGame(*core.GameRecord) error     { return nil }
func (Discard) RecordFailure(*core.GameFailure) error { return nil }

// Package worker connects batch lifecycle events to the storage backend and
// the optional InfluxDB writer.
package worker

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/viperball/matchsim/internal/influx"
	"github.com/viperball/matchsim/internal/logging"
	"github.com/viperball/matchsim/internal/storage"
)

// ErrBadPayload is returned when an event carries the wrong payload type
var ErrBadPayload = errors.New("unexpected event payload")

// Dependencies holds all dependencies for the worker manager
type Dependencies struct {
	LogManager *logging.SlogManager
	Influx     *influx.Manager // nil disables metrics
}

// Manager hands batch events to the storage backend
type Manager struct {
	deps    Dependencies
	backend storage.Backend

	stored     atomic.Int64
	failures   atomic.Int64
	writeFails atomic.Int64
}

// NewManager creates a new worker manager
func NewManager(deps Dependencies, backend storage.Backend) *Manager {
	if deps.LogManager == nil {
		deps.LogManager = logging.NewSlogManager()
	}
	if backend == nil {
		backend = storage.Discard{}
	}
	return &Manager{
		deps:    deps,
		backend: backend,
	}
}

// Stats reports how many games and failures were handed to the backend and
// how many of those writes returned an error.
type Stats struct {
	Games       int64 `json:"games"`
	Failures    int64 `json:"failures"`
	WriteErrors int64 `json:"write_errors"`
}

// Stats returns the running counters.
func (m *Manager) Stats() Stats {
	return Stats{
		Games:       m.stored.Load(),
		Failures:    m.failures.Load(),
		WriteErrors: m.writeFails.Load(),
	}
}

// PendingProvider is an optional interface that backends can implement to
// expose how many rows wait for the next write.
type PendingProvider interface {
	Pending() int
}

// Pending returns the number of queued rows. Returns 0 if the backend
// doesn't queue.
func (m *Manager) Pending() int {
	if p, ok := m.backend.(PendingProvider); ok {
		return p.Pending()
	}
	return 0
}

func payloadError(command string, payload any) error {
	return fmt.Errorf("%w: %s got %T", ErrBadPayload, command, payload)
}

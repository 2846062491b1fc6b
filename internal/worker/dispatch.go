package worker

import (
	"fmt"

	"github.com/viperball/matchsim/internal/dispatcher"
	"github.com/viperball/matchsim/internal/influx"
	"github.com/viperball/matchsim/pkg/core"
)

// Buffer sizes for the game handlers. Games are produced much faster than
// a database can store them, so the producers block when these fill up.
const (
	gameBufferSize    = 1000
	failureBufferSize = 100
)

// RegisterHandlers registers all batch event handlers with the dispatcher.
func (m *Manager) RegisterHandlers(d *dispatcher.Dispatcher) {
	// Batch lifecycle - sync
	d.Register(dispatcher.CommandBatchStart, m.handleBatchStart, dispatcher.Logged())
	d.Register(dispatcher.CommandBatchEnd, func(e dispatcher.Event) (any, error) {
		// every game of the batch must be stored before the summary
		d.Drain(dispatcher.CommandGameCompleted, dispatcher.CommandGameFailed)
		return m.handleBatchEnd(e)
	}, dispatcher.Logged())

	// Games - buffered, never dropped
	d.Register(dispatcher.CommandGameCompleted, m.handleGameCompleted,
		dispatcher.Buffered(gameBufferSize), dispatcher.Blocking(), dispatcher.Logged())
	d.Register(dispatcher.CommandGameFailed, m.handleGameFailed,
		dispatcher.Buffered(failureBufferSize), dispatcher.Blocking(), dispatcher.Logged())
}

func (m *Manager) handleBatchStart(e dispatcher.Event) (any, error) {
	b, ok := e.Payload.(*core.Batch)
	if !ok {
		return nil, payloadError(e.Command, e.Payload)
	}
	if err := m.backend.StartBatch(b); err != nil {
		return nil, fmt.Errorf("failed to start batch %s: %w", b.ID, err)
	}
	return nil, nil
}

func (m *Manager) handleGameCompleted(e dispatcher.Event) (any, error) {
	rec, ok := e.Payload.(*core.GameRecord)
	if !ok {
		return nil, payloadError(e.Command, e.Payload)
	}

	m.stored.Add(1)
	if err := m.backend.RecordGame(rec); err != nil {
		m.writeFails.Add(1)
		return nil, fmt.Errorf("failed to record game %d: %w", rec.Index, err)
	}

	if m.deps.Influx != nil {
		if err := m.deps.Influx.WritePoint(m.deps.Influx.GameBucket(), influx.GamePoint(rec, e.Timestamp)); err != nil {
			m.deps.LogManager.Component("worker").Warn("Failed to write game point", "game", rec.Index, "error", err)
		}
	}
	return nil, nil
}

func (m *Manager) handleGameFailed(e dispatcher.Event) (any, error) {
	f, ok := e.Payload.(*core.GameFailure)
	if !ok {
		return nil, payloadError(e.Command, e.Payload)
	}

	m.failures.Add(1)
	if err := m.backend.RecordFailure(f); err != nil {
		m.writeFails.Add(1)
		return nil, fmt.Errorf("failed to record failure of game %d: %w", f.Index, err)
	}
	return nil, nil
}

func (m *Manager) handleBatchEnd(e dispatcher.Event) (any, error) {
	s, ok := e.Payload.(*core.BatchSummary)
	if !ok {
		return nil, payloadError(e.Command, e.Payload)
	}

	if m.deps.Influx != nil {
		if err := m.deps.Influx.WritePoint(m.deps.Influx.GameBucket(), influx.SummaryPoint(s)); err != nil {
			m.deps.LogManager.Component("worker").Warn("Failed to write summary point", "batch_id", s.BatchID, "error", err)
		}
	}

	if err := m.backend.EndBatch(s); err != nil {
		return nil, fmt.Errorf("failed to end batch %s: %w", s.BatchID, err)
	}
	return nil, nil
}

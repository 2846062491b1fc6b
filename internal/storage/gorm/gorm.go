// Package gormstorage implements the storage.Backend interface on top of GORM
// with internal queues and a background DB writer goroutine.
package gormstorage

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/viperball/matchsim/internal/database"
	"github.com/viperball/matchsim/internal/logging"
	"github.com/viperball/matchsim/internal/model"
	"github.com/viperball/matchsim/internal/model/convert"
	"github.com/viperball/matchsim/internal/queue"
	"github.com/viperball/matchsim/pkg/core"

	"gorm.io/gorm"
)

// ErrNoDB is returned by Init when no connection was injected.
var ErrNoDB = errors.New("no database connection")

// DefaultFlushInterval is how often queued games are written.
const DefaultFlushInterval = 2 * time.Second

// writeChunk is how many rows go into one transaction.
const writeChunk = 50

// Dependencies holds all dependencies for the GORM storage backend.
type Dependencies struct {
	DB            *gorm.DB
	LogManager    *logging.SlogManager
	WritePlays    bool          // store every play, not just drives and player lines
	FlushInterval time.Duration // DefaultFlushInterval when 0
}

// queues holds the write queues for batch DB insertion.
type queues struct {
	Games    *queue.Queue[model.Game]
	Failures *queue.Queue[model.GameFailure]
}

func newQueues() *queues {
	return &queues{
		Games:    queue.New[model.Game](),
		Failures: queue.New[model.GameFailure](),
	}
}

// Backend implements storage.Backend using GORM with queue-based batch writes.
type Backend struct {
	deps     Dependencies
	queues   *queues
	stopChan chan struct{}
	wg       sync.WaitGroup

	// serializes writers so EndBatch sees every game of its batch stored
	writeMu sync.Mutex
}

// New creates a new GORM storage backend.
func New(deps Dependencies) *Backend {
	if deps.LogManager == nil {
		deps.LogManager = logging.NewSlogManager()
	}
	if deps.FlushInterval <= 0 {
		deps.FlushInterval = DefaultFlushInterval
	}
	return &Backend{
		deps:   deps,
		queues: newQueues(),
	}
}

// DB returns the underlying connection.
func (b *Backend) DB() *gorm.DB {
	return b.deps.DB
}

// Init runs schema migration and starts the DB writer goroutine.
func (b *Backend) Init() error {
	if b.deps.DB == nil {
		return ErrNoDB
	}

	b.deps.LogManager.Component("gorm").Info("Migrating schema")
	if err := database.Migrate(b.deps.DB); err != nil {
		return fmt.Errorf("failed to setup DB: %w", err)
	}

	b.stopChan = make(chan struct{})
	b.wg.Add(1)
	go b.writerLoop()
	return nil
}

// Close stops the DB writer goroutine and writes whatever is still queued.
func (b *Backend) Close() error {
	if b.stopChan != nil {
		close(b.stopChan)
		b.wg.Wait()
		b.stopChan = nil
	}
	if b.deps.DB == nil {
		return nil
	}
	return b.Flush()
}

// StartBatch inserts the batch row synchronously so game rows can reference it.
func (b *Backend) StartBatch(batch *core.Batch) error {
	row := convert.CoreToBatch(*batch)
	if err := b.deps.DB.Create(&row).Error; err != nil {
		return fmt.Errorf("failed to insert batch: %w", err)
	}
	return nil
}

// EndBatch writes the remaining queued games and stores the summary.
func (b *Backend) EndBatch(s *core.BatchSummary) error {
	if err := b.Flush(); err != nil {
		return err
	}

	finished := s.FinishedAt
	if finished.IsZero() {
		finished = time.Now()
	}
	err := b.deps.DB.Model(&model.Batch{}).
		Where("id = ?", s.BatchID).
		Updates(map[string]any{
			"finished_at": finished,
			"summary":     convert.SummaryToJSON(*s),
		}).Error
	if err != nil {
		return fmt.Errorf("failed to update batch %s: %w", s.BatchID, err)
	}
	return nil
}

// RecordGame converts a completed game and pushes it to the write queue.
func (b *Backend) RecordGame(r *core.GameRecord) error {
	b.queues.Games.Push(convert.CoreToGame(*r, b.deps.WritePlays))
	return nil
}

// RecordFailure converts a failed game and pushes it to the write queue.
func (b *Backend) RecordFailure(f *core.GameFailure) error {
	b.queues.Failures.Push(convert.CoreToGameFailure(*f))
	return nil
}

// Pending returns how many rows are queued but not yet written.
func (b *Backend) Pending() int {
	return b.queues.Games.Len() + b.queues.Failures.Len()
}

// Written returns how many games have been taken off the queue and stored.
func (b *Backend) Written() uint64 {
	return b.queues.Games.Taken()
}

// Flush drains every queue into the database.
func (b *Backend) Flush() error {
	b.writeMu.Lock()
	defer b.writeMu.Unlock()

	log := b.deps.LogManager.Component("db-writer")
	return errors.Join(
		writeQueue(b.deps.DB, b.queues.Games, "games", log),
		writeQueue(b.deps.DB, b.queues.Failures, "game failures", log),
	)
}

// writeQueue drains a queue into the database in transactions of writeChunk
// rows, one row (with its children) at a time. A failed chunk goes back to
// the front of the queue and stops the drain.
func writeQueue[T any](db *gorm.DB, q *queue.Queue[T], name string, log *slog.Logger) error {
	written := 0
	for {
		items := q.PopN(writeChunk)
		if len(items) == 0 {
			break
		}
		err := db.Transaction(func(tx *gorm.DB) error {
			for i := range items {
				if err := tx.Create(&items[i]).Error; err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			log.Error("Failed to write rows", "table", name, "rows", len(items), "error", err)
			q.Requeue(items...)
			return fmt.Errorf("failed to write %s: %w", name, err)
		}
		written += len(items)
	}
	if written > 0 {
		log.Debug("Wrote rows", "table", name, "rows", written)
	}
	return nil
}

// writerLoop periodically drains queues into the DB.
func (b *Backend) writerLoop() {
	defer b.wg.Done()

	ticker := time.NewTicker(b.deps.FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-b.stopChan:
			return
		case <-ticker.C:
			_ = b.Flush()
		}
	}
}

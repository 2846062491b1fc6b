// Package sqlitestorage implements the storage.Backend interface using an in-memory
// SQLite database with periodic disk dumps via VACUUM INTO.
// It wraps the GORM backend via composition; the SQLite-specific concerns are
// creating the database and dumping it to disk.
package sqlitestorage

import (
	"fmt"
	"time"

	"github.com/viperball/matchsim/internal/database"
	"github.com/viperball/matchsim/internal/logging"
	"github.com/viperball/matchsim/pkg/core"
	gormstorage "github.com/viperball/matchsim/internal/storage/gorm"

	"gorm.io/gorm"
)

// Config holds configuration for the SQLite storage backend.
type Config struct {
	Path         string // database file, in memory when empty
	DumpInterval time.Duration
	DumpPath     string // Path for periodic VACUUM INTO dumps
	WritePlays   bool
}

// Backend wraps the GORM backend for SQLite-specific behavior.
type Backend struct {
	*gormstorage.Backend
	db       *gorm.DB
	cfg      Config
	log      *logging.SlogManager
	stopChan chan struct{}
	done     chan struct{}
}

// New creates a new SQLite storage backend.
func New(cfg Config, logManager *logging.SlogManager) (*Backend, error) {
	db, err := database.OpenSqlite(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to create SQLite DB: %w", err)
	}
	if logManager == nil {
		logManager = logging.NewSlogManager()
	}

	gormBackend := gormstorage.New(gormstorage.Dependencies{
		DB:         db,
		LogManager: logManager,
		WritePlays: cfg.WritePlays,
	})

	return &Backend{
		Backend:  gormBackend,
		db:       db,
		cfg:      cfg,
		log:      logManager,
		stopChan: make(chan struct{}),
	}, nil
}

// Init initializes the embedded GORM backend and starts the dump goroutine.
func (b *Backend) Init() error {
	if err := b.Backend.Init(); err != nil {
		return err
	}

	if b.cfg.DumpPath != "" && b.cfg.DumpInterval > 0 {
		b.done = make(chan struct{})
		go b.dumpLoop()
	}

	return nil
}

// EndBatch stores the summary and dumps the finished batch to disk.
func (b *Backend) EndBatch(s *core.BatchSummary) error {
	if err := b.Backend.EndBatch(s); err != nil {
		return err
	}
	return b.dump()
}

// Close stops the dump goroutine, closes the embedded GORM backend and
// writes a final dump.
func (b *Backend) Close() error {
	close(b.stopChan)
	if b.done != nil {
		<-b.done
	}
	if err := b.Backend.Close(); err != nil {
		return err
	}
	if err := b.dump(); err != nil {
		return err
	}
	sqlDB, err := b.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// dump writes a snapshot when a dump path is configured.
func (b *Backend) dump() error {
	if b.cfg.DumpPath == "" {
		return nil
	}
	start := time.Now()
	if err := database.DumpMemoryDBToDisk(b.db, b.cfg.DumpPath); err != nil {
		b.log.Component("sqlite").Error("Failed to dump database", "path", b.cfg.DumpPath, "error", err)
		return err
	}
	b.log.Component("sqlite").Debug("Dumped database", "path", b.cfg.DumpPath, "took", time.Since(start))
	return nil
}

// dumpLoop periodically dumps the database to disk via VACUUM INTO.
// VACUUM INTO creates a point-in-time snapshot, so no pause mechanism is needed.
func (b *Backend) dumpLoop() {
	defer close(b.done)
	ticker := time.NewTicker(b.cfg.DumpInterval)
	defer ticker.Stop()

	for {
		select {
		case <-b.stopChan:
			return
		case <-ticker.C:
			_ = b.dump()
		}
	}
}

// ExportedFiles implements storage.Exportable
func (b *Backend) ExportedFiles() []string {
	if b.cfg.DumpPath == "" {
		return nil
	}
	return []string{b.cfg.DumpPath}
}

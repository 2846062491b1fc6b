// Package postgres implements the storage.Backend interface on PostgreSQL by
// opening the connection and handing it to the GORM backend.
package postgres

import (
	"fmt"

	"github.com/viperball/matchsim/internal/config"
	"github.com/viperball/matchsim/internal/database"
	"github.com/viperball/matchsim/internal/logging"
	gormstorage "github.com/viperball/matchsim/internal/storage/gorm"

	"gorm.io/gorm"
)

// maxOpenConns bounds the pool; the writer is a single goroutine.
const maxOpenConns = 10

// Opener opens the database; tests replace it.
type Opener func(cfg config.DBConfig) (*gorm.DB, error)

// Backend is the GORM backend bound to a Postgres connection.
type Backend struct {
	*gormstorage.Backend
	cfg        config.DBConfig
	writePlays bool
	log        *logging.SlogManager
	open       Opener
}

// New creates a Postgres backend. The connection is made in Init.
func New(cfg config.DBConfig, writePlays bool, logManager *logging.SlogManager) *Backend {
	if logManager == nil {
		logManager = logging.NewSlogManager()
	}
	return &Backend{
		cfg:        cfg,
		writePlays: writePlays,
		log:        logManager,
		open:       database.OpenPostgres,
	}
}

// WithOpener replaces how the connection is opened.
func (b *Backend) WithOpener(o Opener) *Backend {
	b.open = o
	return b
}

// Init connects, validates the connection and initializes the GORM backend.
func (b *Backend) Init() error {
	db, err := b.open(b.cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to postgres: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to access sql interface: %w", err)
	}
	if err = sqlDB.Ping(); err != nil {
		return fmt.Errorf("failed to validate connection: %w", err)
	}
	sqlDB.SetMaxOpenConns(maxOpenConns)

	b.log.Component("postgres").Info("Connected", "host", b.cfg.Host, "port", b.cfg.Port, "database", b.cfg.Database)
	b.Backend = gormstorage.New(gormstorage.Dependencies{
		DB:         db,
		LogManager: b.log,
		WritePlays: b.writePlays,
	})
	return b.Backend.Init()
}

// Close closes the GORM backend when Init got that far.
func (b *Backend) Close() error {
	if b.Backend == nil {
		return nil
	}
	return b.Backend.Close()
}

package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/viperball/matchsim/internal/config"
	"github.com/viperball/matchsim/internal/database"
	"github.com/viperball/matchsim/internal/logging"
	"github.com/viperball/matchsim/internal/storage"
	"github.com/viperball/matchsim/internal/storage/memory"
	pgstorage "github.com/viperball/matchsim/internal/storage/postgres"
	sqlitestorage "github.com/viperball/matchsim/internal/storage/sqlite"
	wsstorage "github.com/viperball/matchsim/internal/storage/websocket"
	"github.com/viperball/matchsim/pkg/core"

	"gorm.io/gorm"
)

// Storage types accepted by storage.type.
const (
	storageMemory    = "memory"
	storageSQLite    = "sqlite"
	storagePostgres  = "postgres"
	storageWebSocket = "websocket"
	storageNone      = "none"
)

func createStorageBackend(a *app, storageCfg config.StorageConfig, dbCfg config.DBConfig) (storage.Backend, error) {
	switch strings.ToLower(storageCfg.Type) {
	case storagePostgres:
		mgr := database.NewManager(logging.NewZerolog(a.logWriter, a.logLevel, "database"))
		mgr.SqliteFilePath = storageCfg.SQLite.DumpPath
		backend := pgstorage.New(dbCfg, storageCfg.WritePlays, a.slog).WithOpener(managerOpener(mgr))
		a.logger.Info("Postgres storage backend initialized", "host", dbCfg.Host, "database", dbCfg.Database)
		return &fallbackBackend{Backend: backend, mgr: mgr}, nil

	case storageSQLite:
		dumpPath := storageCfg.SQLite.DumpPath
		if dumps, err := database.GetBackupDBPaths(filepath.Dir(dumpPath)); err == nil && len(dumps) > 0 {
			a.logger.Info("Found earlier database dumps", "count", len(dumps), "dir", filepath.Dir(dumpPath))
		}
		backend, err := sqlitestorage.New(sqlitestorage.Config{
			DumpInterval: storageCfg.SQLite.DumpInterval,
			DumpPath:     dumpPath,
			WritePlays:   storageCfg.WritePlays,
		}, a.slog)
		if err != nil {
			return nil, fmt.Errorf("failed to create SQLite backend: %w", err)
		}
		a.logger.Info("SQLite storage backend initialized", "dumpPath", dumpPath)
		return backend, nil

	case storageWebSocket:
		wsURL := httpToWS(storageCfg.WebSocket.URL)
		a.logger.Info("WebSocket storage backend initialized", "url", wsURL)
		return wsstorage.New(wsstorage.Config{
			URL:        wsURL,
			Secret:     storageCfg.WebSocket.Secret,
			WritePlays: storageCfg.WritePlays,
			Logger:     a.logger,
		}), nil

	case storageNone:
		a.logger.Info("Results are not stored")
		return storage.Discard{}, nil

	case storageMemory, "":
		a.logger.Info("Memory storage backend initialized", "outputDir", storageCfg.Memory.OutputDir)
		return memory.New(storageCfg.Memory), nil

	default:
		return nil, fmt.Errorf("unknown storage type %q", storageCfg.Type)
	}
}

// managerOpener connects through the database manager, which falls back to
// an in-memory SQLite database when Postgres is unreachable.
func managerOpener(mgr *database.Manager) pgstorage.Opener {
	return func(cfg config.DBConfig) (*gorm.DB, error) {
		if err := mgr.Connect(cfg); err != nil {
			return nil, err
		}
		return mgr.DB, nil
	}
}

// fallbackBackend dumps each finished batch to disk when the Postgres
// backend ended up on the in-memory fallback.
type fallbackBackend struct {
	*pgstorage.Backend
	mgr *database.Manager
}

func (b *fallbackBackend) EndBatch(s *core.BatchSummary) error {
	if err := b.Backend.EndBatch(s); err != nil {
		return err
	}
	if !b.mgr.ShouldSaveLocal {
		return nil
	}
	return b.mgr.DumpMemoryToDisk()
}

func (b *fallbackBackend) ExportedFiles() []string {
	if !b.mgr.ShouldSaveLocal || b.mgr.SqliteFilePath == "" {
		return nil
	}
	return []string{b.mgr.SqliteFilePath}
}

// gormDB returns the connection behind a database backend, nil otherwise.
func gormDB(b storage.Backend) *gorm.DB {
	if d, ok := b.(interface{ DB() *gorm.DB }); ok {
		return d.DB()
	}
	return nil
}

// httpToWS converts an HTTP(S) URL to a WebSocket URL.
func httpToWS(httpURL string) string {
	s := strings.TrimRight(httpURL, "/")
	s = strings.Replace(s, "https://", "wss://", 1)
	s = strings.Replace(s, "http://", "ws://", 1)
	return s
}

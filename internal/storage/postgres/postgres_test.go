package postgres

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/viperball/matchsim/internal/config"
	"github.com/viperball/matchsim/internal/database"
	"github.com/viperball/matchsim/internal/model"
	"github.com/viperball/matchsim/internal/storage"
	"github.com/viperball/matchsim/pkg/core"
)

var _ storage.Backend = (*Backend)(nil)

func TestInit_ConnectionError(t *testing.T) {
	b := New(config.DBConfig{Host: "127.0.0.1", Port: "1"}, false, nil).
		WithOpener(func(config.DBConfig) (*gorm.DB, error) { return nil, errors.New("refused") })

	err := b.Init()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to connect to postgres")
	assert.NoError(t, b.Close())
}

func TestInit_UnreachableServer(t *testing.T) {
	b := New(config.DBConfig{Host: "127.0.0.1", Port: "1", Username: "u", Password: "p", Database: "d"}, false, nil)
	assert.Error(t, b.Init())
	assert.NoError(t, b.Close())
}

func TestInit_WiresGormBackend(t *testing.T) {
	var db *gorm.DB
	b := New(config.DBConfig{Database: "viperball"}, true, nil).
		WithOpener(func(config.DBConfig) (*gorm.DB, error) {
			var err error
			db, err = database.OpenSqlite(filepath.Join(t.TempDir(), "pg.db"))
			return db, err
		})
	require.NoError(t, b.Init())

	require.NoError(t, b.StartBatch(&core.Batch{ID: "b1", StartedAt: time.Now()}))
	require.NoError(t, b.RecordGame(&core.GameRecord{BatchID: "b1", Result: &core.GameResult{
		HomeTeam: "H", AwayTeam: "A", PlayByPlay: []core.Play{{Number: 1}},
	}}))
	require.NoError(t, b.EndBatch(&core.BatchSummary{BatchID: "b1", Games: 1}))

	var plays int64
	require.NoError(t, db.Model(&model.Play{}).Count(&plays).Error)
	assert.Equal(t, int64(1), plays)
	assert.NoError(t, b.Close())
}

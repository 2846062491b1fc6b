package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTableNames(t *testing.T) {
	tests := []struct {
		name     string
		model    interface{ TableName() string }
		expected string
	}{
		{"SimInfo", &SimInfo{}, "sim_infos"},
		{"BatchProgress", &BatchProgress{}, "batch_progress"},
		{"Batch", &Batch{}, "batches"},
		{"Game", &Game{}, "games"},
		{"GameFailure", &GameFailure{}, "game_failures"},
		{"Drive", &Drive{}, "drives"},
		{"Play", &Play{}, "plays"},
		{"PlayerStat", &PlayerStat{}, "player_stats"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.model.TableName())
		})
	}
}

func TestDatabaseModels_AllHaveTableNames(t *testing.T) {
	for _, m := range DatabaseModels {
		_, ok := m.(interface{ TableName() string })
		assert.True(t, ok, "%T has no TableName", m)
	}
}

package adaptation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viperball/matchsim/pkg/core"
)

func feed(l *Layer, f core.Family, n int, yards int, success bool, start int) int {
	for i := range n {
		l.Observe(Observation{Family: f, Yards: yards, Success: success, Quarter: 1, PlayNumber: start + i})
	}
	return start + n
}

func TestNew_Neutral(t *testing.T) {
	l := New("home_defense", 1, DefaultConfig(), nil)
	for _, f := range core.Families {
		assert.Equal(t, 1.0, l.Coefficient(f))
		assert.False(t, l.Solved(f))
	}
	assert.Equal(t, core.TemperatureNeutral, l.Temperature())
	assert.False(t, l.NoFlyZone())
}

func TestObserve_TightensRepeatedFamily(t *testing.T) {
	log := NewLog()
	l := New("home_defense", 1, DefaultConfig(), log)

	feed(l, core.FamilyRun, 2, 3, false, 1)
	assert.Equal(t, 1.0, l.Suppression(core.FamilyRun))

	feed(l, core.FamilyRun, 4, 3, false, 3)
	assert.InDelta(t, 0.80, l.Suppression(core.FamilyRun), 1e-9)
	assert.True(t, l.Solved(core.FamilyRun))
	assert.InDelta(t, 0.72, l.Coefficient(core.FamilyRun), 1e-9)
	assert.Equal(t, 1.0, l.Suppression(core.FamilyLateral))

	entries := log.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "Q1 #6 home_defense solved run (0.80)", entries[0])
	assert.Equal(t, "Q1 #6 home_defense temperature neutral -> hot", entries[1])
	assert.Equal(t, core.TemperatureHot, l.Temperature())
}

func TestObserve_Floor(t *testing.T) {
	l := New("away_defense", 3, DefaultConfig(), nil)
	feed(l, core.FamilyRun, 60, 2, false, 1)
	assert.InDelta(t, DefaultConfig().Floor, l.Suppression(core.FamilyRun), 1e-9)
}

func TestObserve_DecayAndUnsolve(t *testing.T) {
	log := NewLog()
	l := New("home_defense", 1, DefaultConfig(), log)
	next := feed(l, core.FamilyRun, 8, 3, false, 1)
	require.True(t, l.Solved(core.FamilyRun))

	feed(l, core.FamilyLateral, 40, 6, true, next)
	assert.Greater(t, l.Suppression(core.FamilyRun), 0.9)
	assert.False(t, l.Solved(core.FamilyRun))
	assert.Contains(t, log.Entries(), "Q1 #21 home_defense lost the read on run (0.91)")
}

func TestObserve_ExplosivePlayLoosens(t *testing.T) {
	l := New("home_defense", 1, DefaultConfig(), nil)
	l.Observe(Observation{Family: core.FamilyKickPass, Yards: 30, Success: true})
	assert.InDelta(t, 1.06, l.Suppression(core.FamilyKickPass), 1e-9)

	for range 10 {
		l.Observe(Observation{Family: core.FamilyTrick, Yards: 40, Success: true})
	}
	assert.LessOrEqual(t, l.Suppression(core.FamilyTrick), DefaultConfig().Ceiling)
}

func TestObserve_NoFlyZone(t *testing.T) {
	log := NewLog()
	l := New("away_defense", 1, DefaultConfig(), log)
	feed(l, core.FamilyKickPass, 7, 0, false, 1)
	assert.True(t, l.NoFlyZone())
	assert.Contains(t, log.Entries(), "Q1 #7 away_defense no-fly zone engaged (0.75)")

	feed(l, core.FamilyRun, 40, 4, true, 8)
	assert.False(t, l.NoFlyZone())
}

func TestObserve_TemperatureCold(t *testing.T) {
	l := New("home_defense", 1, DefaultConfig(), nil)
	families := []core.Family{core.FamilyRun, core.FamilyLateral, core.FamilyKickPass}
	for i := range 10 {
		l.Observe(Observation{Family: families[i%3], Yards: 8, Success: true})
	}
	assert.Equal(t, core.TemperatureCold, l.Temperature())
}

func TestSnapshot_Copies(t *testing.T) {
	l := New("home_defense", 1, DefaultConfig(), nil)
	feed(l, core.FamilyRun, 8, 1, false, 1)
	snap := l.Snapshot()
	assert.Equal(t, 0.9, snap.Solved[core.FamilyRun])
	assert.Equal(t, core.TemperatureHot, snap.Temperature)

	snap.Suppression[core.FamilyRun] = 5
	assert.NotEqual(t, 5.0, l.Suppression(core.FamilyRun))
}

func TestLog_Nil(t *testing.T) {
	var lg *Log
	assert.Zero(t, lg.Len())
	assert.Nil(t, lg.Entries())
}

package playcall

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viperball/matchsim/internal/roster"
	"github.com/viperball/matchsim/internal/style"
	"github.com/viperball/matchsim/pkg/core"
)

func neutralInput(down, ytg, fp int) Input {
	return Input{
		Situation: Situation{Down: down, YardsToGo: ytg, FieldPosition: fp},
		Decision:  75,
		Archetype: roster.Neutral,
	}
}

func TestZerobackWeights_Base(t *testing.T) {
	w := ZerobackWeights(neutralInput(1, 20, 50))
	assert.InDelta(t, 0.45, w.Give, 1e-9)
	assert.InDelta(t, 0.25, w.Keep, 1e-9)
	assert.InDelta(t, 0.15, w.Pitch, 1e-9)
	assert.InDelta(t, 0.10, w.Kick, 1e-9)
	assert.InDelta(t, 0.05, w.Lateral, 1e-9)
	assert.InDelta(t, 1.0, w.Sum(), 1e-9)
}

func TestZerobackWeights_DeepOwnTerritoryLongYardage(t *testing.T) {
	w := ZerobackWeights(neutralInput(4, 9, 20))
	p := w.Probability(core.DecisionKick)
	assert.Greater(t, p, baseKick)
	assert.InDelta(t, 0.55/1.40, p, 1e-9)
	assert.Zero(t, w.Lateral)
}

func TestZerobackWeights_ShortYardageLateDown(t *testing.T) {
	w := ZerobackWeights(neutralInput(5, 3, 50))
	assert.InDelta(t, 0.55, w.Give, 1e-9)
	assert.InDelta(t, 0.10, w.Kick, 1e-9)
}

func TestZerobackWeights_DecisionGates(t *testing.T) {
	sharp := neutralInput(1, 10, 30)
	sharp.Decision = 90
	w := ZerobackWeights(sharp)
	assert.InDelta(t, 0.25, w.Pitch, 1e-9)
	// give .45 -.05 -.10
	assert.InDelta(t, 0.30, w.Give, 1e-9)
	// kick .10 +.15
	assert.InDelta(t, 0.25, w.Kick, 1e-9)

	shaky := neutralInput(1, 10, 50)
	shaky.Decision = 60
	w = ZerobackWeights(shaky)
	assert.InDelta(t, 0.13, w.Lateral, 1e-9)
	assert.InDelta(t, 0.40, w.Give, 1e-9)
}

func TestZerobackWeights_KickCap(t *testing.T) {
	in := neutralInput(1, 10, 50)
	in.Archetype.KickFrequency = 10
	w := ZerobackWeights(in)
	assert.InDelta(t, maxKickWeight, w.Kick, 1e-9)
}

func TestZerobackWeights_Archetypes(t *testing.T) {
	in := neutralInput(1, 10, 50)
	in.Archetype = roster.GameManagerZB.Modifiers()
	w := ZerobackWeights(in)
	assert.InDelta(t, 0.60, w.Give, 1e-9)
	assert.InDelta(t, 0.02, w.Lateral, 1e-9)

	in.Archetype = roster.DistributorZB.Modifiers()
	w = ZerobackWeights(in)
	assert.InDelta(t, 0.17, w.Lateral, 1e-9)
	assert.InDelta(t, 0.23, w.Pitch, 1e-9)
	assert.InDelta(t, 0.35, w.Give, 1e-9)
}

func TestZerobackWeights_SuppressionAndFloor(t *testing.T) {
	in := neutralInput(1, 10, 80)
	in.Coefficient = func(f core.Family) float64 {
		if f == core.FamilyRun {
			return 0.5
		}
		return 1
	}
	w := ZerobackWeights(in)
	assert.InDelta(t, 0.225, w.Give, 1e-9)
	assert.InDelta(t, 0.10, w.Lateral, 1e-9)
	// kick .10 -.08
	assert.InDelta(t, 0.02, w.Kick, 1e-9)

	in = neutralInput(1, 10, 10)
	in.Decision = 90
	in.Archetype = roster.DistributorZB.Modifiers()
	w = ZerobackWeights(in)
	for _, d := range core.Decisions {
		assert.GreaterOrEqual(t, w.Of(d), 0.0, string(d))
	}
}

func TestZerobackWeights_StyleScales(t *testing.T) {
	in := neutralInput(1, 10, 50)
	in.Style = style.LateralSpread.Profile()
	w := ZerobackWeights(in)
	assert.InDelta(t, 0.05*2.2, w.Lateral, 1e-9)
}

func TestWeights_NormalizeZero(t *testing.T) {
	n := Weights{}.Normalize()
	assert.Equal(t, 1.0, n.Give)
	assert.Equal(t, core.DecisionGive, Weights{}.pick(0.99))
}

func TestChoose_Distribution(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 1))
	in := neutralInput(4, 9, 20)
	counts := map[core.Decision]int{}
	const n = 20000
	for range n {
		d, _ := Choose(in, rng)
		counts[d]++
	}
	assert.InDelta(t, 0.55/1.40, float64(counts[core.DecisionKick])/n, 0.02)
	assert.Zero(t, counts[core.DecisionLateral])
}

func TestTurnoverRisk(t *testing.T) {
	assert.InDelta(t, 0.02, TurnoverRisk(core.DecisionGive, 75, roster.Neutral, 0), 1e-9)
	assert.InDelta(t, 0.03, TurnoverRisk(core.DecisionGive, 75, roster.Neutral, 0.7), 1e-9)
	assert.InDelta(t, 0.02, TurnoverRisk(core.DecisionGive, 75, roster.Neutral, TiredThreshold), 1e-9)
	assert.InDelta(t, 0.12*0.7, TurnoverRisk(core.DecisionLateral, 90, roster.Neutral, 0), 1e-9)
	assert.InDelta(t, 0.12*1.4, TurnoverRisk(core.DecisionLateral, 60, roster.Neutral, 0), 1e-9)

	arch := roster.Neutral
	arch.TurnoverRate = 3
	assert.InDelta(t, maxTurnoverRisk, TurnoverRisk(core.DecisionLateral, 60, arch, 0.9), 1e-9)
}

func TestTempo(t *testing.T) {
	assert.Equal(t, 1.0, Tempo(roster.Neutral, style.OffenseProfile{}))
	assert.InDelta(t, 1.15, Tempo(roster.Neutral, style.ChainGang.Profile()), 1e-9)
	assert.Equal(t, 1.0, Tempo(roster.Modifiers{}, style.OffenseProfile{}))
}

func TestKickRanges(t *testing.T) {
	assert.Equal(t, 56, SnapKickRange(75))
	assert.Equal(t, 62, PlaceKickRange(75))
}

func TestChooseKickWeights(t *testing.T) {
	tests := []struct {
		name  string
		in    KickInput
		check func(t *testing.T, w KickWeights)
	}{
		{
			name: "snap kick range",
			in:   KickInput{Situation: Situation{Down: 4, YardsToGo: 5, FieldPosition: 75}, Kick: 75},
			check: func(t *testing.T, w KickWeights) {
				assert.InDelta(t, 0.80, w.SnapKick, 1e-9)
				assert.Zero(t, w.Punt)
			},
		},
		{
			name: "place kick range only",
			in:   KickInput{Situation: Situation{Down: 5, YardsToGo: 5, FieldPosition: 50}, Kick: 75},
			check: func(t *testing.T, w KickWeights) {
				assert.Zero(t, w.SnapKick)
				assert.InDelta(t, 0.65, w.PlaceKick, 1e-9)
				assert.InDelta(t, 0.10, w.Punt, 1e-9)
			},
		},
		{
			name: "out of range early down never punts",
			in:   KickInput{Situation: Situation{Down: 1, YardsToGo: 20, FieldPosition: 20}, Kick: 75},
			check: func(t *testing.T, w KickWeights) {
				assert.Zero(t, w.Punt)
				assert.Positive(t, w.KickPass)
			},
		},
		{
			name: "out of range late down punts",
			in:   KickInput{Situation: Situation{Down: 6, YardsToGo: 12, FieldPosition: 20}, Kick: 75},
			check: func(t *testing.T, w KickWeights) {
				assert.InDelta(t, 0.90, w.Punt, 1e-9)
			},
		},
		{
			name: "late down doubles kick passes",
			in:   KickInput{Situation: Situation{Down: 4, YardsToGo: 12, FieldPosition: 20}, Kick: 75},
			check: func(t *testing.T, w KickWeights) {
				assert.InDelta(t, 0.70, w.KickPass, 1e-9)
				assert.Zero(t, w.SnapKick)
			},
		},
		{
			name: "out of range fifth down keeps the ball",
			in:   KickInput{Situation: Situation{Down: 5, YardsToGo: 12, FieldPosition: 30}, Kick: 75},
			check: func(t *testing.T, w KickWeights) {
				assert.Zero(t, w.Punt)
				assert.InDelta(t, 0.70, w.KickPass, 1e-9)
			},
		},
		{
			name: "no fly zone halves kick passes",
			in:   KickInput{Situation: Situation{Down: 1, YardsToGo: 20, FieldPosition: 20}, Kick: 75, NoFlyZone: true},
			check: func(t *testing.T, w KickWeights) {
				assert.InDelta(t, 0.175, w.KickPass, 1e-9)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, ChooseKickWeights(tt.in))
		})
	}
}

func TestChooseKick_OnlyKickPlays(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 3))
	in := KickInput{Situation: Situation{Down: 6, YardsToGo: 12, FieldPosition: 60}, Kick: 80}
	seen := map[core.PlayType]bool{}
	for range 2000 {
		pt := ChooseKick(in, rng)
		require.True(t, pt.IsKick() || pt == core.PlayKickPass, pt)
		seen[pt] = true
	}
	assert.True(t, seen[core.PlayKickPass])
	assert.True(t, seen[core.PlaySnapKick] || seen[core.PlayPlaceKick])
}

func TestDefenseWeights(t *testing.T) {
	w := DefenseWeights(DefenseInput{Situation: Situation{Down: 1, YardsToGo: 20, FieldPosition: 30}})
	assert.InDelta(t, 0.35, w[core.CallDrop], 1e-9)
	assert.InDelta(t, 0.20, w[core.CallStack], 1e-9)

	w = DefenseWeights(DefenseInput{
		Situation:   Situation{Down: 2, YardsToGo: 3, FieldPosition: 30},
		Style:       style.PressureDefense.Profile(),
		Temperature: core.TemperatureHot,
	})
	assert.InDelta(t, 0.40, w[core.CallStack], 1e-9)
	assert.InDelta(t, 0.15*1.8*1.3, w[core.CallBlitz], 1e-9)

	w = DefenseWeights(DefenseInput{Situation: Situation{Down: 1, YardsToGo: 10}, Temperature: core.TemperatureCold})
	assert.InDelta(t, 0.50, w[core.CallBase], 1e-9)
}

func TestChooseDefense_Deterministic(t *testing.T) {
	in := DefenseInput{Situation: Situation{Down: 3, YardsToGo: 8, FieldPosition: 40}}
	a := rand.New(rand.NewPCG(11, 2))
	b := rand.New(rand.NewPCG(11, 2))
	for range 100 {
		assert.Equal(t, ChooseDefense(in, a), ChooseDefense(in, b))
	}
}

// Package playcall decides what the zeroback, the kicker and the defense
// call on each snap.
package playcall

import (
	"math/rand/v2"

	"github.com/viperball/matchsim/internal/roster"
	"github.com/viperball/matchsim/internal/style"
	"github.com/viperball/matchsim/pkg/core"
)

// Base family weights before any adjustment.
const (
	baseGive    = 0.45
	baseKeep    = 0.25
	basePitch   = 0.15
	baseKick    = 0.10
	baseLateral = 0.05

	maxKickWeight = 0.40
)

// Decision rating gates.
const (
	SharpDecision = 85.0
	ShakyDecision = 65.0
)

// Situation is the down, distance and field position of a snap.
type Situation struct {
	Down          int
	YardsToGo     int
	FieldPosition int
}

// Input is everything the zeroback weighs before a snap.
type Input struct {
	Situation
	Decision  float64
	Archetype roster.Modifiers
	Style     style.OffenseProfile

	// Coefficient returns the opposing defense's adaptation coefficient for a
	// family. Nil means no adaptation feedback.
	Coefficient func(core.Family) float64
}

// Weights are the unnormalized family weights.
type Weights struct {
	Give, Keep, Pitch, Kick, Lateral float64
}

// Of returns the weight of one decision.
func (w Weights) Of(d core.Decision) float64 {
	switch d {
	case core.DecisionGive:
		return w.Give
	case core.DecisionKeep:
		return w.Keep
	case core.DecisionPitch:
		return w.Pitch
	case core.DecisionKick:
		return w.Kick
	case core.DecisionLateral:
		return w.Lateral
	default:
		return 0
	}
}

// Sum is the total weight.
func (w Weights) Sum() float64 {
	return w.Give + w.Keep + w.Pitch + w.Kick + w.Lateral
}

// Normalize scales the weights to sum to one. All-zero weights become a
// certain give.
func (w Weights) Normalize() Weights {
	s := w.Sum()
	if s <= 0 {
		return Weights{Give: 1}
	}
	return Weights{
		Give:    w.Give / s,
		Keep:    w.Keep / s,
		Pitch:   w.Pitch / s,
		Kick:    w.Kick / s,
		Lateral: w.Lateral / s,
	}
}

// Probability returns the normalized probability of a decision.
func (w Weights) Probability(d core.Decision) float64 {
	return w.Normalize().Of(d)
}

// pick maps a uniform draw in [0,1) onto the normalized weights.
func (w Weights) pick(u float64) core.Decision {
	n := w.Normalize()
	acc := 0.0
	for _, d := range core.Decisions {
		acc += n.Of(d)
		if u < acc {
			return d
		}
	}
	// Rounding can leave u just above the final sum.
	for i := len(core.Decisions) - 1; i >= 0; i-- {
		if n.Of(core.Decisions[i]) > 0 {
			return core.Decisions[i]
		}
	}
	return core.DecisionGive
}

// ZerobackWeights applies every adjustment to the base weights in order.
func ZerobackWeights(in Input) Weights {
	w := Weights{Give: baseGive, Keep: baseKeep, Pitch: basePitch, Kick: baseKick, Lateral: baseLateral}

	switch {
	case in.Decision >= SharpDecision:
		if in.YardsToGo >= 7 {
			w.Pitch += 0.10
			w.Give -= 0.05
		}
		if in.FieldPosition <= 35 {
			w.Kick += 0.15
			w.Give -= 0.10
		}
	case in.Decision <= ShakyDecision:
		w.Lateral += 0.08
		w.Give -= 0.05
	}

	arch := in.Archetype
	w.Kick = min(w.Kick*arch.KickFrequency, maxKickWeight)

	if arch.Conservative {
		w.Give += 0.15
		w.Lateral -= 0.03
		w.Kick += 0.10
	}
	if arch.LateralTendency > 1.3 {
		w.Lateral += 0.12
		w.Pitch += 0.08
		w.Give -= 0.10
	}

	if in.FieldPosition <= 25 {
		w.Kick += 0.20
		w.Lateral -= 0.05
	} else if in.FieldPosition >= 65 {
		w.Kick -= 0.08
		w.Lateral += 0.05
	}

	if in.Down >= 4 {
		if in.YardsToGo >= 8 {
			w.Kick += 0.25
		} else {
			w.Give += 0.10
		}
	}

	if s := in.Style; s != (style.OffenseProfile{}) {
		w.Give *= s.Give
		w.Keep *= s.Keep
		w.Pitch *= s.Pitch
		w.Kick *= s.Kick
		w.Lateral *= s.Lateral
	}

	if in.Coefficient != nil {
		run := in.Coefficient(core.FamilyRun)
		w.Give *= run
		w.Keep *= run
		w.Pitch *= run
		w.Lateral *= in.Coefficient(core.FamilyLateral)
	}

	w.Give = max(w.Give, 0)
	w.Keep = max(w.Keep, 0)
	w.Pitch = max(w.Pitch, 0)
	w.Kick = max(w.Kick, 0)
	w.Lateral = max(w.Lateral, 0)
	return w
}

// Choose draws the zeroback's decision.
func Choose(in Input, rng *rand.Rand) (core.Decision, Weights) {
	w := ZerobackWeights(in)
	return w.pick(rng.Float64()), w
}

// Base turnover rates per decision.
var baseTurnover = map[core.Decision]float64{
	core.DecisionGive:    0.02,
	core.DecisionKeep:    0.04,
	core.DecisionPitch:   0.06,
	core.DecisionKick:    0.01,
	core.DecisionLateral: 0.12,
}

const (
	maxTurnoverRisk = 0.30
	// TiredThreshold is the carrier fatigue above which ball security suffers.
	TiredThreshold = 0.6
)

// TurnoverRisk is the chance the offense loses the ball on the play.
func TurnoverRisk(d core.Decision, decision float64, arch roster.Modifiers, fatigue float64) float64 {
	risk := baseTurnover[d]
	switch {
	case decision >= SharpDecision:
		risk *= 0.7
	case decision <= ShakyDecision:
		risk *= 1.4
	}
	risk *= arch.TurnoverRate
	if fatigue > TiredThreshold {
		risk *= 1.5
	}
	return min(risk, maxTurnoverRisk)
}

// Tempo is the pace multiplier; play durations are divided by it.
func Tempo(arch roster.Modifiers, s style.OffenseProfile) float64 {
	t := arch.Tempo
	if t <= 0 {
		t = 1
	}
	if s.Tempo > 0 {
		t *= s.Tempo
	}
	return t
}

package playcall

import (
	"math/rand/v2"

	"github.com/viperball/matchsim/internal/style"
	"github.com/viperball/matchsim/pkg/core"
)

// DefenseInput is what the defensive coordinator weighs before a snap.
type DefenseInput struct {
	Situation
	Style       style.DefenseProfile
	Temperature core.Temperature
}

var defensiveCalls = []core.DefensiveCall{core.CallBase, core.CallBlitz, core.CallSpy, core.CallDrop, core.CallStack}

// DefenseWeights returns the weight of each front in call order.
func DefenseWeights(in DefenseInput) map[core.DefensiveCall]float64 {
	blitz := in.Style.Blitz
	if blitz <= 0 {
		blitz = 1
	}
	w := map[core.DefensiveCall]float64{
		core.CallBase:  0.40,
		core.CallBlitz: 0.15 * blitz,
		core.CallSpy:   0.10,
		core.CallDrop:  0.15,
		core.CallStack: 0.20,
	}
	if in.YardsToGo >= 12 {
		w[core.CallDrop] += 0.20
	}
	if in.YardsToGo <= 4 {
		w[core.CallStack] += 0.20
	}
	if in.Down >= 5 {
		w[core.CallBlitz] += 0.05
	}
	switch in.Temperature {
	case core.TemperatureHot:
		w[core.CallBlitz] *= 1.3
	case core.TemperatureCold:
		w[core.CallBase] += 0.10
		w[core.CallDrop] += 0.10
	}
	return w
}

// ChooseDefense draws the defensive front.
func ChooseDefense(in DefenseInput, rng *rand.Rand) core.DefensiveCall {
	w := DefenseWeights(in)
	total := 0.0
	for _, c := range defensiveCalls {
		total += w[c]
	}
	u := rng.Float64() * total
	acc := 0.0
	for _, c := range defensiveCalls {
		acc += w[c]
		if u < acc {
			return c
		}
	}
	return core.CallBase
}

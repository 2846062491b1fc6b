package outcome

import "github.com/viperball/matchsim/pkg/core"

// callEffect is how a defensive front changes each play type.
// Yard fields multiply expected yards; the rest are additive chances.
type callEffect struct {
	Run        float64
	Keep       float64
	Trick      float64
	Lateral    float64
	KickPass   float64
	TFL        float64
	Completion float64
	Sack       float64
	Hurry      float64
	Pick       float64
}

var callEffects = map[core.DefensiveCall]callEffect{
	core.CallBase: {Run: 1, Keep: 1, Trick: 1, Lateral: 1, KickPass: 1},
	core.CallBlitz: {
		Run: 0.92, Keep: 0.9, Trick: 1.15, Lateral: 1.12, KickPass: 1.12,
		TFL: 0.05, Completion: -0.04, Sack: 0.10, Hurry: 0.15,
	},
	core.CallSpy: {
		Run: 0.97, Keep: 0.82, Trick: 0.9, Lateral: 0.95, KickPass: 1,
		TFL: 0.01, Completion: -0.02, Hurry: 0.05,
	},
	core.CallDrop: {
		Run: 1.08, Keep: 1.05, Trick: 1.0, Lateral: 1.04, KickPass: 0.9,
		Completion: -0.08, Pick: 0.01,
	},
	core.CallStack: {
		Run: 0.85, Keep: 0.88, Trick: 1.1, Lateral: 1.05, KickPass: 1.15,
		TFL: 0.04, Completion: 0.05,
	},
}

func effectOf(c core.DefensiveCall) callEffect {
	if e, ok := callEffects[c]; ok {
		return e
	}
	return callEffects[core.CallBase]
}

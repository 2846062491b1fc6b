package playcall

import (
	"math/rand/v2"

	"github.com/viperball/matchsim/internal/style"
	"github.com/viperball/matchsim/pkg/core"
)

// Kick geometry, in yards added to the distance to the goal line.
const (
	SnapKickSetback  = 8
	PlaceKickSetback = 10
)

// puntDown is the only down an offense punts on from out of kicking range.
const puntDown = 6

// SnapKickRange is the longest snap kick a kicker will try.
func SnapKickRange(kick float64) int {
	return int(30 + kick*0.35)
}

// PlaceKickRange is the longest place kick a kicker will try.
func PlaceKickRange(kick float64) int {
	return int(40 + kick*0.3)
}

// KickInput is what the offense weighs once it has decided to kick.
type KickInput struct {
	Situation
	Kick        float64
	Style       style.OffenseProfile
	KickPass    float64 // defense coefficient for kick passes
	NoFlyZone   bool
	ScoreMargin float64 // offense score minus defense score
	Quarter     int
	SecondsLeft int
}

// KickWeights are the unnormalized weights of each kicking play.
type KickWeights struct {
	SnapKick, PlaceKick, Punt, KickPass float64
}

// ChooseKickWeights builds the kick menu for a situation.
func ChooseKickWeights(in KickInput) KickWeights {
	toGoal := 100 - in.FieldPosition
	snapDist := toGoal + SnapKickSetback
	placeDist := toGoal + PlaceKickSetback
	late := in.Down >= 4
	last := in.Down >= 5

	bias := in.Style.KickPassBias
	if bias <= 0 {
		bias = 1
	}
	coef := in.KickPass
	if coef <= 0 {
		coef = 1
	}

	var w KickWeights
	w.KickPass = 0.35 * bias * coef
	if late {
		w.KickPass *= 2
	}
	if in.NoFlyZone {
		w.KickPass *= 0.5
	}

	switch {
	case snapDist <= SnapKickRange(in.Kick):
		w.SnapKick = 0.55
		if late {
			w.SnapKick += 0.25
		}
		if placeDist <= PlaceKickRange(in.Kick) {
			w.PlaceKick = 0.10
			if last {
				w.PlaceKick += 0.15
			}
		}
	case placeDist <= PlaceKickRange(in.Kick):
		w.PlaceKick = 0.40
		if last {
			w.PlaceKick += 0.25
		}
		if last {
			w.Punt = 0.10
		}
	default:
		// Out of range the offense only punts on its final down.
		if in.Down >= puntDown {
			w.Punt = 0.30
			if in.FieldPosition < 50 {
				w.Punt += 0.30
			}
			if last {
				w.Punt *= 1.5
			}
		}
	}

	// Chasing points late: skip the three-pointer and the punt.
	if in.Quarter == 4 && in.SecondsLeft < 300 && in.ScoreMargin < -5 {
		w.Punt *= 0.2
		w.PlaceKick *= 0.5
		w.KickPass *= 1.5
	}
	return w
}

// ChooseKick draws the kicking play.
func ChooseKick(in KickInput, rng *rand.Rand) core.PlayType {
	w := ChooseKickWeights(in)
	total := w.SnapKick + w.PlaceKick + w.Punt + w.KickPass
	if total <= 0 {
		return core.PlayKickPass
	}
	u := rng.Float64() * total
	switch {
	case u < w.SnapKick:
		return core.PlaySnapKick
	case u < w.SnapKick+w.PlaceKick:
		return core.PlayPlaceKick
	case u < w.SnapKick+w.PlaceKick+w.Punt:
		return core.PlayPunt
	default:
		return core.PlayKickPass
	}
}

// Package stats keeps score and turns a game's plays into team and player
// statistics.
package stats

import (
	"errors"
	"fmt"
	"math"

	"github.com/viperball/matchsim/internal/outcome"
	"github.com/viperball/matchsim/pkg/core"
)

// ErrScoreMismatch is returned when running totals and scoring events
// disagree.
var ErrScoreMismatch = errors.New("score does not decompose into scoring events")

// Scoreboard tracks running totals and the events behind them.
type Scoreboard struct {
	home, away             float64
	homeEvents, awayEvents core.ScoreBreakdown
}

// Add credits a scoring event to a side and returns the points.
func (s *Scoreboard) Add(side core.Side, kind outcome.ScoreKind) float64 {
	b, total := &s.homeEvents, &s.home
	if side == core.Away {
		b, total = &s.awayEvents, &s.away
	}
	switch kind {
	case outcome.ScoreTouchdown:
		b.Touchdowns++
	case outcome.ScoreSnapKick:
		b.SnapKicks++
	case outcome.ScorePlaceKick:
		b.PlaceKicks++
	case outcome.ScoreSafety:
		b.Safeties++
	case outcome.ScorePindown:
		b.Pindowns++
	case outcome.ScoreStrike:
		b.Strikes++
	default:
		return 0
	}
	pts := kind.Points()
	*total += pts
	return pts
}

// Score returns a side's running total.
func (s *Scoreboard) Score(side core.Side) float64 {
	if side == core.Away {
		return s.away
	}
	return s.home
}

// Breakdown returns a side's scoring events.
func (s *Scoreboard) Breakdown(side core.Side) core.ScoreBreakdown {
	if side == core.Away {
		return s.awayEvents
	}
	return s.homeEvents
}

// Check verifies that both running totals decompose exactly into their
// scoring events.
func (s *Scoreboard) Check() error {
	for _, side := range []core.Side{core.Home, core.Away} {
		want := s.Breakdown(side).Points()
		if got := s.Score(side); math.Abs(got-want) > 1e-9 {
			return fmt.Errorf("%w: %s has %.1f, events add to %.1f", ErrScoreMismatch, side, got, want)
		}
	}
	return nil
}

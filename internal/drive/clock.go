package drive

import (
	"fmt"
	"math/rand/v2"

	"github.com/viperball/matchsim/pkg/core"
)

// Game length.
const (
	QuarterSeconds  = 900
	Quarters        = 4
	TimeoutsPerHalf = 3
)

// Seconds a kickoff takes off the clock.
const KickoffSeconds = 6

// Clock is the game clock. Time counts down within a quarter.
type Clock struct {
	Quarter   int
	Remaining int
}

// NewClock returns a clock at the opening kickoff.
func NewClock() *Clock {
	return &Clock{Quarter: 1, Remaining: QuarterSeconds}
}

// Tick runs seconds off the clock and reports whether the quarter ran out.
func (c *Clock) Tick(seconds int) (quarterOver bool, err error) {
	if seconds < 0 {
		return false, fmt.Errorf("%w: negative play duration %d", ErrInvariant, seconds)
	}
	if c.Remaining < 0 {
		return false, fmt.Errorf("%w: negative time remaining %d", ErrInvariant, c.Remaining)
	}
	c.Remaining -= seconds
	if c.Remaining <= 0 {
		c.Remaining = 0
		return true, nil
	}
	return false, nil
}

// NextQuarter starts the following quarter. It returns false once the
// fourth quarter has ended.
func (c *Clock) NextQuarter() bool {
	if c.Quarter >= Quarters {
		return false
	}
	c.Quarter++
	c.Remaining = QuarterSeconds
	return true
}

// Expired reports whether regulation is over.
func (c *Clock) Expired() bool {
	return c.Quarter >= Quarters && c.Remaining <= 0
}

// Halftime reports whether the clock sits at the start of the third quarter.
func (c *Clock) Halftime() bool {
	return c.Quarter == 3 && c.Remaining == QuarterSeconds
}

// Elapsed is the number of seconds played.
func (c *Clock) Elapsed() int {
	return (c.Quarter-1)*QuarterSeconds + QuarterSeconds - c.Remaining
}

// Base durations in seconds.
const (
	runSeconds        = 21
	lateralSeconds    = 20
	completionSeconds = 20
	incompleteSeconds = 8
	pickSeconds       = 14
	fieldKickSeconds  = 7
	puntSeconds       = 10
	minPlaySeconds    = 5
	playJitter        = 4
)

// PlayDuration is how long a snap keeps the clock running. Faster tempo
// shortens everything but kicks.
func PlayDuration(t core.PlayType, res core.Result, tempo float64, rng *rand.Rand) int {
	if tempo <= 0 {
		tempo = 1
	}
	var base float64
	switch t {
	case core.PlaySnapKick, core.PlayPlaceKick:
		return fieldKickSeconds
	case core.PlayPunt:
		return puntSeconds
	case core.PlayLateral:
		base = lateralSeconds
	case core.PlayKickPass:
		switch res {
		case core.ResultIncomplete:
			base = incompleteSeconds
		case core.ResultKickPassIntercepted, core.ResultIntReturnTD:
			base = pickSeconds
		default:
			base = completionSeconds
		}
	default:
		base = runSeconds
	}
	d := int(base/tempo) + rng.IntN(2*playJitter+1) - playJitter
	return max(d, minPlaySeconds)
}

// Timeouts tracks how many timeouts each side has left in the half.
type Timeouts struct {
	home, away int
}

// NewTimeouts returns a full set for both sides.
func NewTimeouts() *Timeouts {
	return &Timeouts{home: TimeoutsPerHalf, away: TimeoutsPerHalf}
}

// Use spends one of the side's timeouts if it has any left.
func (t *Timeouts) Use(side core.Side) bool {
	left := &t.home
	if side == core.Away {
		left = &t.away
	}
	if *left == 0 {
		return false
	}
	*left--
	return true
}

// Left returns the number of timeouts a side still has.
func (t *Timeouts) Left(side core.Side) int {
	if side == core.Away {
		return t.away
	}
	return t.home
}

// Reset restores both sides at halftime.
func (t *Timeouts) Reset() {
	t.home, t.away = TimeoutsPerHalf, TimeoutsPerHalf
}

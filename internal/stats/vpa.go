package stats

// Situation is the down, distance and field position of the team with the
// ball.
type Situation struct {
	FieldPosition int
	Down          int
	YardsToGo     int
}

// Expected points baseline coefficients.
const (
	epOwnGoal     = 2.5
	epFieldSpan   = 6.5
	epDownDecay   = 0.06
	epLongYardage = 0.012
	epMax         = 9.0
)

// ExpectedPoints is the league-average value of holding the ball in a
// situation. It rises linearly with field position and falls off with each
// down used and each yard beyond ten still to go.
func ExpectedPoints(s Situation) float64 {
	fp := min(max(s.FieldPosition, 1), 99)
	down := min(max(s.Down, 1), 6)
	ep := epOwnGoal + epFieldSpan*float64(fp)/99
	ep *= 1 - epDownDecay*float64(down-1)
	ep *= 1 - epLongYardage*float64(max(0, s.YardsToGo-10))
	return min(max(ep, 0), epMax)
}

// Next is the situation after a play. Offense is true when the team that
// had the ball at the snap still has it.
type Next struct {
	Situation
	Offense bool
}

// PlayValue is the points added by a play from the offense's view: the
// change in expected points plus the points scored on the play.
func PlayValue(before Situation, next Next, pointsFor, pointsAgainst float64) float64 {
	after := ExpectedPoints(next.Situation)
	if !next.Offense {
		after = -after
	}
	return after + pointsFor - pointsAgainst - ExpectedPoints(before)
}

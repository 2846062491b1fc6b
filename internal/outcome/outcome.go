// Package outcome turns a called play into yards, a result code, turnovers
// and special-teams events.
//
// A Resolver owns no game state beyond the game's random generator and the
// weather. Everything else arrives with each Snap, and the Outcome carries
// enough for the drive machine, the scoreboard and the stats aggregator to
// apply the play without looking back at the resolver.
package outcome

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/viperball/matchsim/internal/playcall"
	"github.com/viperball/matchsim/internal/roster"
	"github.com/viperball/matchsim/internal/style"
	"github.com/viperball/matchsim/pkg/core"
)

// ScoreKind is a scoring event in the fixed point schedule.
type ScoreKind uint8

const (
	ScoreNone ScoreKind = iota
	ScoreTouchdown
	ScoreSnapKick
	ScorePlaceKick
	ScoreSafety
	ScorePindown
	ScoreStrike
)

// Points is the value of the event.
func (k ScoreKind) Points() float64 {
	switch k {
	case ScoreTouchdown:
		return core.PointsTouchdown
	case ScoreSnapKick:
		return core.PointsSnapKick
	case ScorePlaceKick:
		return core.PointsPlaceKick
	case ScoreSafety:
		return core.PointsSafety
	case ScorePindown:
		return core.PointsPindown
	case ScoreStrike:
		return core.PointsStrike
	default:
		return 0
	}
}

// Score is the scoring event of a play, if any. Defense is true when the
// team without the ball at the snap earns the points.
type Score struct {
	Kind    ScoreKind
	Defense bool
}

// Next is what happens to possession after the play.
type Next uint8

const (
	// NextSnap keeps the drive alive; the down machine applies the result.
	NextSnap Next = iota
	// NextTurnover gives the ball to the defense at Spot.
	NextTurnover
	// NextRetain ends the drive but the offense starts a new one at Spot.
	NextRetain
	// NextKickoff ends the drive with a score followed by a kickoff.
	NextKickoff
)

// Snap is the pre-snap picture handed to the resolver.
type Snap struct {
	playcall.Situation
	Decision     core.Decision
	PlayType     core.PlayType
	Call         core.DefensiveCall
	TurnoverRisk float64
	NoFlyZone    bool

	// Coefficient is the defense's adaptation coefficient per family.
	Coefficient func(core.Family) float64

	Offense []*roster.GamePlayer
	Defense []*roster.GamePlayer

	OffenseStyle        style.OffenseProfile
	DefenseStyle        style.DefenseProfile
	OffenseSpecialTeams style.SpecialTeamsProfile
	DefenseSpecialTeams style.SpecialTeamsProfile
}

// Outcome is a resolved play.
type Outcome struct {
	PlayType    core.PlayType
	Family      core.Family
	Result      core.Result
	Yards       int
	Laterals    int
	Description string

	Score      Score
	Next       Next
	Spot       int  // field position of the next possessing team for NextTurnover and NextRetain
	BonusDrive bool // the next drive starts from a recovered punt or kick
	Success    bool

	Carrier *roster.GamePlayer
	Credits []Credit

	Run      *core.RunDetail
	Lateral  *core.LateralDetail
	KickPass *core.KickPassDetail
	Kick     *core.KickDetail
	Punt     *core.PuntDetail
}

// Scoring reports whether the play put points on the board.
func (o *Outcome) Scoring() bool { return o.Score.Kind != ScoreNone }

// Resolver resolves plays for a single game.
type Resolver struct {
	rng     *rand.Rand
	weather style.WeatherProfile
}

// NewResolver binds a resolver to a game's generator and weather.
func NewResolver(rng *rand.Rand, weather style.WeatherProfile) *Resolver {
	if weather == (style.WeatherProfile{}) {
		weather = style.DefaultWeather.Profile()
	}
	return &Resolver{rng: rng, weather: weather}
}

// Resolve dispatches on the play type.
func (r *Resolver) Resolve(s Snap) Outcome {
	var o Outcome
	switch s.PlayType {
	case core.PlayLateral:
		o = r.lateral(s)
	case core.PlayKickPass:
		o = r.kickPass(s)
	case core.PlaySnapKick, core.PlayPlaceKick:
		o = r.fieldKick(s)
	case core.PlayPunt:
		o = r.punt(s)
	case core.PlayTrick:
		o = r.run(s, true)
	default:
		o = r.run(s, false)
	}
	o.PlayType = s.PlayType
	if o.PlayType == "" {
		o.PlayType = core.PlayRun
	}
	o.Spot = clampField(o.Spot)
	return o
}

// FamilyOf maps a play type onto its adaptation family. Scoring kicks and
// punts have none.
func FamilyOf(t core.PlayType) (core.Family, bool) {
	switch t {
	case core.PlayRun:
		return core.FamilyRun, true
	case core.PlayTrick:
		return core.FamilyTrick, true
	case core.PlayLateral:
		return core.FamilyLateral, true
	case core.PlayKickPass:
		return core.FamilyKickPass, true
	default:
		return "", false
	}
}

func (s Snap) coefficient(f core.Family) float64 {
	if s.Coefficient == nil {
		return 1
	}
	return s.Coefficient(f)
}

// advance applies a gain from the line of scrimmage and classifies it.
func advance(sit playcall.Situation, yards int) (int, core.Result) {
	switch {
	case sit.FieldPosition+yards >= 100:
		return 100 - sit.FieldPosition, core.ResultTouchdown
	case sit.FieldPosition+yards <= 0:
		return -sit.FieldPosition, core.ResultSafety
	case yards >= sit.YardsToGo:
		return yards, core.ResultFirstDown
	default:
		return yards, core.ResultGain
	}
}

// settle fills scoring and possession fields from a yardage result.
func settle(o *Outcome) {
	switch o.Result {
	case core.ResultTouchdown:
		o.Score = Score{Kind: ScoreTouchdown}
		o.Next = NextKickoff
	case core.ResultSafety:
		o.Score = Score{Kind: ScoreSafety, Defense: true}
		o.Next = NextKickoff
	}
}

// success is whether the offense won the snap from the defense's view.
func success(sit playcall.Situation, yards int, res core.Result) bool {
	switch res {
	case core.ResultTouchdown, core.ResultFirstDown:
		return true
	case core.ResultGain:
		return yards >= max(4, sit.YardsToGo/3)
	default:
		return false
	}
}

func clampField(fp int) int {
	return min(max(fp, 1), 99)
}

// flip converts a spot measured from the offense's goal into the defense's.
func flip(fp int) int {
	return clampField(100 - fp)
}

func (r *Resolver) chance(p float64) bool {
	return r.rng.Float64() < p
}

func (r *Resolver) normal(mean, sd float64) float64 {
	return mean + r.rng.NormFloat64()*sd
}

func (r *Resolver) exp(mean float64) float64 {
	return r.rng.ExpFloat64() * mean
}

// weighted draws a player with probability proportional to w. It returns nil
// for an empty pool.
func (r *Resolver) weighted(pool []*roster.GamePlayer, w func(roster.Effective) float64) *roster.GamePlayer {
	if len(pool) == 0 {
		return nil
	}
	weights := make([]float64, len(pool))
	total := 0.0
	for i, p := range pool {
		weights[i] = max(w(p.Effective()), 0.01)
		total += weights[i]
	}
	u := r.rng.Float64() * total
	for i, wt := range weights {
		u -= wt
		if u < 0 {
			return pool[i]
		}
	}
	return pool[len(pool)-1]
}

func at(lineup []*roster.GamePlayer, positions ...roster.Position) []*roster.GamePlayer {
	var out []*roster.GamePlayer
	for _, p := range lineup {
		for _, pos := range positions {
			if p.Position == pos {
				out = append(out, p)
				break
			}
		}
	}
	return out
}

func first(lineup []*roster.GamePlayer, positions ...roster.Position) *roster.GamePlayer {
	for _, pos := range positions {
		if ps := at(lineup, pos); len(ps) > 0 {
			return ps[0]
		}
	}
	if len(lineup) > 0 {
		return lineup[0]
	}
	return nil
}

// kicker is the on-field player with the best effective kick rating.
func kicker(lineup []*roster.GamePlayer) *roster.GamePlayer {
	var best *roster.GamePlayer
	for _, p := range lineup {
		if best == nil || p.Effective().Kick > best.Effective().Kick {
			best = p
		}
	}
	return best
}

// defenseQuality is the defensive lineup's tackling strength in [0,1].
func defenseQuality(lineup []*roster.GamePlayer) float64 {
	if len(lineup) == 0 {
		return 0.7
	}
	sum := 0.0
	for _, p := range lineup {
		e := p.Effective()
		sum += e.Tackle*0.5 + e.Speed*0.2 + e.Awareness*0.3
	}
	return sum / float64(len(lineup)) / 100
}

// lineQuality is the offensive line's push in [0,1].
func lineQuality(lineup []*roster.GamePlayer) float64 {
	line := at(lineup, roster.Lineman)
	if len(line) == 0 {
		return 0.7
	}
	sum := 0.0
	for _, p := range line {
		e := p.Effective()
		sum += e.Power*0.7 + e.Awareness*0.3
	}
	return sum / float64(len(line)) / 100
}

func name(p *roster.GamePlayer) string {
	if p == nil {
		return "unknown"
	}
	return p.Name
}

func yardsPhrase(y int) string {
	switch {
	case y == 0:
		return "no gain"
	case y < 0:
		return fmt.Sprintf("a loss of %d", -y)
	case y == 1:
		return "1 yard"
	default:
		return fmt.Sprintf("%d yards", y)
	}
}

func round(v float64) int {
	return int(math.Round(v))
}

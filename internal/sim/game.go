// Package sim runs a complete Viperball game, one snap at a time, and
// assembles the immutable GameResult.
//
// A game owns a single seeded generator and fresh per-game roster overlays,
// so the same teams, styles, weather and seed always produce the same
// play-by-play, no matter how many games run beside it.
package sim

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"

	"github.com/viperball/matchsim/internal/adaptation"
	"github.com/viperball/matchsim/internal/drive"
	"github.com/viperball/matchsim/internal/outcome"
	"github.com/viperball/matchsim/internal/playcall"
	"github.com/viperball/matchsim/internal/roster"
	"github.com/viperball/matchsim/internal/stats"
	"github.com/viperball/matchsim/internal/style"
	"github.com/viperball/matchsim/pkg/core"
)

// ErrInvariant is wrapped by every error that reports an impossible game
// state. Only the game that hit it is affected.
var ErrInvariant = drive.ErrInvariant

// ErrNilTeam is returned when a team is missing.
var ErrNilTeam = errors.New("team is nil")

// Fatigue and recovery tuning.
const (
	snapFatigue    = 0.012
	carrierFatigue = 0.01
	staminaPivot   = 60.0

	quarterRecovery  = 0.25
	halftimeRecovery = 0.5
	timeoutRecovery  = 0.10
	kickoffRecovery  = 0.05

	// Average on-field fatigue at which the offense calls timeout.
	timeoutFatigue = 0.55
	// Snaps a team waits between its own timeouts.
	timeoutGap = 8
)

// Possession-context thresholds for kickoffs.
const (
	deltaMargin   = 18.0
	deltaYards    = 10
	kickoffReturn = 30 // typical start after a kickoff, for play values
)

// maxSnaps guards against a clock that never runs out.
const maxSnaps = 1000

// Recovery event labels stamped on the following play.
const (
	recoveryQuarter  = "quarter_break"
	recoveryHalftime = "halftime"
	recoveryTimeout  = "timeout"
	recoveryKickoff  = "kickoff"
)

type team struct {
	side   core.Side
	roster *roster.GameTeam
	styles teamStyles

	offense style.OffenseProfile
	defense style.DefenseProfile
	special style.SpecialTeamsProfile

	// layer is this team's defense.
	layer       *adaptation.Layer
	lastTimeout int
}

type game struct {
	log     *slog.Logger
	rng     *rand.Rand
	resolve *outcome.Resolver
	weather style.Weather

	home, away *team

	clock    *drive.Clock
	timeouts *drive.Timeouts
	state    drive.State
	drives   drive.Summary
	board    stats.Scoreboard
	agg      *stats.Aggregator
	adaptLog *adaptation.Log

	plays           []core.Play
	openingReceiver core.Side
	recovery        string
	over            bool
}

// Simulate plays one game to the final whistle. Rosters are validated
// first; a malformed roster returns its *roster.LoadError. Hard invariant
// violations return an error wrapping ErrInvariant.
func Simulate(home, away *roster.Team, cfg Config, opts ...Option) (*core.GameResult, error) {
	if home == nil || away == nil {
		return nil, ErrNilTeam
	}
	if err := home.Validate(); err != nil {
		return nil, err
	}
	if err := away.Validate(); err != nil {
		return nil, err
	}
	o := buildOptions(opts)

	seed := cfg.Seed
	if seed == 0 {
		seed = RandomSeed()
	}
	g := newGame(home, away, cfg, seed, o)
	if err := g.play(); err != nil {
		o.logger.Error("Game aborted", "home", home.Name, "away", away.Name, "seed", seed, "error", err)
		return nil, fmt.Errorf("simulate %s at %s (seed %d): %w", away.Name, home.Name, seed, err)
	}
	return g.result(home, away, seed), nil
}

func newGame(home, away *roster.Team, cfg Config, seed int64, o options) *game {
	rng := rand.New(rand.NewPCG(uint64(seed), uint64(seed)^0x9e3779b97f4a7c15))
	weather := resolveWeather(cfg.Weather, o.logger)
	g := &game{
		log:      o.logger,
		rng:      rng,
		resolve:  outcome.NewResolver(rng, weather.Profile()),
		weather:  weather,
		clock:    drive.NewClock(),
		timeouts: drive.NewTimeouts(),
		adaptLog: adaptation.NewLog(),
	}
	g.home = g.newTeam(core.Home, home, cfg, o)
	g.away = g.newTeam(core.Away, away, cfg, o)
	g.agg = stats.NewAggregator(g.home.roster, g.away.roster)
	return g
}

func (g *game) newTeam(side core.Side, t *roster.Team, cfg Config, o options) *team {
	s := resolveStyles(t, cfg, o.logger)
	tm := &team{
		side:        side,
		roster:      roster.NewGameTeam(t),
		styles:      s,
		offense:     s.offense.Profile(),
		defense:     s.defense.Profile(),
		special:     s.special.Profile(),
		lastTimeout: -timeoutGap,
	}
	tm.layer = adaptation.New(string(side)+"_defense", tm.defense.AdaptationRate, o.adaptation, g.adaptLog)
	return tm
}

func (g *game) team(s core.Side) *team {
	if s == core.Away {
		return g.away
	}
	return g.home
}

// play runs the game loop until regulation expires.
func (g *game) play() error {
	g.openingReceiver = core.Home
	if g.rng.IntN(2) == 1 {
		g.openingReceiver = core.Away
	}
	if err := g.kickoff(g.openingReceiver.Opponent()); err != nil {
		return err
	}
	for !g.over {
		if len(g.plays) >= maxSnaps {
			return fmt.Errorf("%w: %d snaps without the clock expiring", ErrInvariant, len(g.plays))
		}
		if err := g.snap(); err != nil {
			return err
		}
	}
	if g.drives.Open() {
		g.closeSeries(g.state.Possession, false)
		g.drives.End(core.DriveStall, 0)
	}
	return g.board.Check()
}

// recover applies a recovery event to both rosters and labels the next play.
func (g *game) recover(amount float64, label string) {
	g.home.roster.Recover(amount)
	g.away.roster.Recover(amount)
	if g.recovery == "" {
		g.recovery = label
	}
}

// kickoff kicks to the opponent of kicking and starts their drive.
func (g *game) kickoff(kicking core.Side) error {
	kick, recv := g.team(kicking), g.team(kicking.Opponent())
	g.recover(kickoffRecovery, recoveryKickoff)

	k := g.resolve.Kickoff(
		kick.roster.Lineup(roster.DefenseFormation),
		recv.roster.Lineup(roster.DefenseFormation),
		kick.special, recv.special,
	)
	g.agg.Kickoff(recv.side, k)
	// A kickoff never runs out a quarter on its own.
	if _, err := g.clock.Tick(min(drive.KickoffSeconds, max(g.clock.Remaining-1, 0))); err != nil {
		return err
	}

	spot := k.Spot
	var flags drive.Flags
	margin := g.board.Score(recv.side) - g.board.Score(kick.side)
	switch {
	case margin <= -deltaMargin:
		flags.Delta = true
		spot += deltaYards
	case margin >= deltaMargin:
		flags.Sacrifice = true
		spot -= deltaYards
	}
	g.log.Debug("Kickoff", "kicking", kick.roster.Team.Name, "spot", spot, "delta", flags.Delta, "sacrifice", flags.Sacrifice)
	return g.startDrive(recv.side, spot, flags)
}

func (g *game) startDrive(side core.Side, fieldPosition int, flags drive.Flags) error {
	g.state = drive.NewState(side, fieldPosition)
	return g.drives.Start(side, g.team(side).roster.Team.Name, g.clock.Quarter, g.state.FieldPosition, flags)
}

// resumeDrive opens a new drive for the same series after a quarter break.
func (g *game) resumeDrive() error {
	return g.drives.Start(g.state.Possession, g.team(g.state.Possession).roster.Team.Name, g.clock.Quarter, g.state.FieldPosition, drive.Flags{})
}

func (g *game) closeSeries(side core.Side, converted bool) {
	g.agg.CloseSeries(side, converted)
}

// call is everything decided before the ball is snapped.
type call struct {
	snap  outcome.Snap
	tempo float64
}

// prepare picks personnel and calls the play for the current state.
func (g *game) prepare(off, def *team) call {
	offLineup := off.roster.Lineup(roster.OffenseFormation)
	defLineup := def.roster.Lineup(roster.DefenseFormation)
	sit := playcall.Situation{Down: g.state.Down, YardsToGo: g.state.YardsToGo, FieldPosition: g.state.FieldPosition}

	zb := firstAt(offLineup, roster.Zeroback)
	arch := zb.Archetype.Modifiers()
	eff := zb.Effective()
	coef := def.layer.Coefficient

	decision, _ := playcall.Choose(playcall.Input{
		Situation:   sit,
		Decision:    eff.Decision,
		Archetype:   arch,
		Style:       off.offense,
		Coefficient: coef,
	}, g.rng)

	var pt core.PlayType
	switch decision {
	case core.DecisionKick:
		g.state.Kicking()
		pt = playcall.ChooseKick(playcall.KickInput{
			Situation:   sit,
			Kick:        bestKick(offLineup),
			Style:       off.offense,
			KickPass:    coef(core.FamilyKickPass),
			NoFlyZone:   def.layer.NoFlyZone(),
			ScoreMargin: g.board.Score(off.side) - g.board.Score(def.side),
			Quarter:     g.clock.Quarter,
			SecondsLeft: g.clock.Remaining,
		}, g.rng)
	case core.DecisionLateral:
		pt = core.PlayLateral
	default:
		pt = core.PlayRun
		if g.rng.Float64() < off.offense.TrickRate {
			pt = core.PlayTrick
		}
	}

	dc := playcall.ChooseDefense(playcall.DefenseInput{
		Situation:   sit,
		Style:       def.defense,
		Temperature: def.layer.Temperature(),
	}, g.rng)

	return call{
		snap: outcome.Snap{
			Situation:           sit,
			Decision:            decision,
			PlayType:            pt,
			Call:                dc,
			TurnoverRisk:        playcall.TurnoverRisk(decision, eff.Decision, arch, zb.Fatigue),
			NoFlyZone:           def.layer.NoFlyZone(),
			Coefficient:         coef,
			Offense:             offLineup,
			Defense:             defLineup,
			OffenseStyle:        off.offense,
			DefenseStyle:        def.defense,
			OffenseSpecialTeams: off.special,
			DefenseSpecialTeams: def.special,
		},
		tempo: playcall.Tempo(arch, off.offense),
	}
}

// timeout lets a tired offense stop the clock.
func (g *game) timeout(off *team, lineup []*roster.GamePlayer) {
	if len(g.plays)-off.lastTimeout < timeoutGap || averageFatigue(lineup) <= timeoutFatigue {
		return
	}
	if !g.timeouts.Use(off.side) {
		return
	}
	off.lastTimeout = len(g.plays)
	g.agg.Timeout(off.side)
	g.recover(timeoutRecovery, recoveryTimeout)
	g.log.Debug("Timeout", "team", off.roster.Team.Name, "quarter", g.clock.Quarter, "left", g.timeouts.Left(off.side))
}

// tire charges one snap of fatigue to everyone on the field.
func (g *game) tire(c call, carrier *roster.GamePlayer) {
	w := g.weather.Profile().Fatigue
	for _, lineup := range [][]*roster.GamePlayer{c.snap.Offense, c.snap.Defense} {
		for _, p := range lineup {
			stamina := 1 + (staminaPivot-p.Effective().Stamina)/100
			p.Tire(snapFatigue * max(stamina, 0.2) * w * c.tempo)
			p.Snaps++
		}
	}
	if carrier != nil {
		carrier.Tire(carrierFatigue)
	}
}

// snap plays one down and moves the game on.
func (g *game) snap() error {
	if err := g.state.Check(); err != nil {
		return err
	}
	off, def := g.team(g.state.Possession), g.team(g.state.Possession.Opponent())
	g.timeout(off, off.roster.Lineup(roster.OffenseFormation))

	c := g.prepare(off, def)
	o := g.resolve.Resolve(c.snap)
	g.tire(c, o.Carrier)

	before := g.state
	p := core.Play{
		Number:        len(g.plays) + 1,
		Quarter:       g.clock.Quarter,
		TimeRemaining: g.clock.Remaining,
		Possession:    off.side,
		Down:          before.Down,
		YardsToGo:     before.YardsToGo,
		FieldPosition: before.FieldPosition,
		Decision:      c.snap.Decision,
		PlayType:      o.PlayType,
		PlayFamily:    familyName(o),
		DefensiveCall: c.snap.Call,
		Description:   o.Description,
		Yards:         o.Yards,
		Result:        o.Result,
		Laterals:      o.Laterals,
		Recovery:      g.recovery,
		Run:           o.Run,
		Lateral:       o.Lateral,
		KickPass:      o.KickPass,
		Kick:          o.Kick,
		Punt:          o.Punt,
	}
	g.recovery = ""
	if !o.PlayType.IsKick() {
		g.agg.Snap(off.side, before.Down)
	}

	var pointsFor, pointsAgainst float64
	scorer := off.side
	if o.Scoring() {
		if o.Score.Defense {
			scorer = def.side
		}
		pts := g.board.Add(scorer, o.Score.Kind)
		if scorer == off.side {
			pointsFor = pts
		} else {
			pointsAgainst = pts
		}
	}

	// Possession after the play.
	var (
		next    stats.Next
		ended   bool
		result  core.DriveResult
		convert bool
	)
	switch o.Next {
	case outcome.NextSnap:
		tod, err := g.state.Apply(o.Result, o.Yards)
		if err != nil {
			return err
		}
		if tod {
			p.Result = core.ResultTurnoverOnDowns
			ended, result = true, core.DriveTurnoverOnDowns
			next = stats.Next{Situation: restart(drive.TurnoverSpot(g.state.FieldPosition))}
		} else {
			next = stats.Next{Situation: stats.Situation{FieldPosition: g.state.FieldPosition, Down: g.state.Down, YardsToGo: g.state.YardsToGo}, Offense: true}
			if o.Result == core.ResultFirstDown {
				g.closeSeries(off.side, true)
			}
		}
	case outcome.NextTurnover:
		next = stats.Next{Situation: restart(o.Spot)}
	case outcome.NextRetain:
		next = stats.Next{Situation: restart(o.Spot), Offense: true}
	case outcome.NextKickoff:
		// The team that gave up the points receives.
		next = stats.Next{Situation: restart(kickoffReturn), Offense: scorer == def.side && o.Score.Kind != outcome.ScoreSafety}
		convert = converted(o, off.side, scorer)
	}
	if o.Next != outcome.NextSnap {
		ended = true
		r, ok := drive.ResultFor(o.Result)
		if !ok {
			return fmt.Errorf("%w: play %d ended the drive with result %q", ErrInvariant, p.Number, o.Result)
		}
		result = r
	}

	p.EPA = round3(stats.PlayValue(stats.Situation{FieldPosition: before.FieldPosition, Down: before.Down, YardsToGo: before.YardsToGo}, next, pointsFor, pointsAgainst))
	p.HomeScore, p.AwayScore = g.board.Score(core.Home), g.board.Score(core.Away)
	p.Fatigue = core.FatigueSnapshot{
		Home: round3(g.home.roster.AverageFatigue()),
		Away: round3(g.away.roster.AverageFatigue()),
	}
	if o.Carrier != nil {
		p.Fatigue.Carrier = round3(o.Carrier.Fatigue)
	}
	g.plays = append(g.plays, p)
	g.agg.Play(&g.plays[len(g.plays)-1], &o)
	g.drives.Play(o.Yards)

	if fam, ok := outcome.FamilyOf(o.PlayType); ok {
		def.layer.Observe(adaptation.Observation{
			Family:     fam,
			Yards:      o.Yards,
			Success:    o.Success,
			Quarter:    p.Quarter,
			PlayNumber: p.Number,
		})
	}

	dur := drive.PlayDuration(o.PlayType, o.Result, c.tempo, g.rng)
	g.agg.Possession(off.side, min(dur, g.clock.Remaining))
	quarterOver, err := g.clock.Tick(dur)
	if err != nil {
		return err
	}

	if ended {
		g.closeSeries(off.side, convert)
		g.drives.End(result, pointsFor)
	}
	if quarterOver {
		return g.endQuarter(ended, o, off, def, scorer)
	}
	if ended {
		return g.nextPossession(o, off, def, scorer)
	}
	return nil
}

// nextPossession starts whatever follows a drive-ending play.
func (g *game) nextPossession(o outcome.Outcome, off, def *team, scorer core.Side) error {
	switch o.Next {
	case outcome.NextTurnover:
		return g.startDrive(def.side, o.Spot, drive.Flags{Bonus: o.BonusDrive})
	case outcome.NextRetain:
		return g.startDrive(off.side, o.Spot, drive.Flags{Bonus: o.BonusDrive})
	case outcome.NextKickoff:
		kicker := scorer
		if o.Score.Kind == outcome.ScoreSafety {
			kicker = off.side
		}
		return g.kickoff(kicker)
	}
	if g.state.Over() {
		// Turnover on downs.
		return g.startDrive(def.side, drive.TurnoverSpot(g.state.FieldPosition), drive.Flags{})
	}
	return nil
}

// endQuarter handles the clock running out on the last play.
func (g *game) endQuarter(ended bool, o outcome.Outcome, off, def *team, scorer core.Side) error {
	quarter := g.clock.Quarter
	if !ended {
		if quarter == 2 || quarter == drive.Quarters {
			g.closeSeries(off.side, false)
		}
		g.drives.End(core.DriveStall, 0)
	}
	if !g.clock.NextQuarter() {
		g.over = true
		return nil
	}
	g.log.Debug("Quarter over", "quarter", quarter, "home", g.board.Score(core.Home), "away", g.board.Score(core.Away))

	if g.clock.Halftime() {
		g.timeouts.Reset()
		g.recover(halftimeRecovery, recoveryHalftime)
		return g.kickoff(g.openingReceiver)
	}
	g.recover(quarterRecovery, recoveryQuarter)
	if !ended {
		// The same team picks up where it left off.
		return g.resumeDrive()
	}
	return g.nextPossession(o, off, def, scorer)
}

func (g *game) result(home, away *roster.Team, seed int64) *core.GameResult {
	drives := g.drives.Drives()
	teamStats, playerStats := g.agg.Finish(&g.board, drives)
	return &core.GameResult{
		HomeTeam:     home.Name,
		AwayTeam:     away.Name,
		FinalScore:   core.FinalScore{Home: g.board.Score(core.Home), Away: g.board.Score(core.Away)},
		Stats:        teamStats,
		PlayByPlay:   g.plays,
		DriveSummary: drives,
		PlayerStats:  playerStats,
		ModifierStack: core.DefenseStacks{
			HomeDefense: g.home.layer.Snapshot(),
			AwayDefense: g.away.layer.Snapshot(),
		},
		AdaptationLog: g.adaptLog.Entries(),
		Weather:       g.weather.String(),
		Seed:          seed,
		Styles: core.StylesBySide{
			Home: g.home.styles.keys(),
			Away: g.away.styles.keys(),
		},
	}
}

func (s teamStyles) keys() core.TeamStyles {
	return core.TeamStyles{Offense: s.offense.String(), Defense: s.defense.String(), SpecialTeams: s.special.String()}
}

// converted reports whether a drive-ending play cashed in the series. Only
// offensive touchdowns and made kicks do; first downs are counted as they
// happen.
func converted(o outcome.Outcome, offense, scorer core.Side) bool {
	if scorer != offense {
		return false
	}
	return o.Result == core.ResultTouchdown || o.Result == core.ResultSuccessfulKick
}

func restart(fieldPosition int) stats.Situation {
	return stats.Situation{FieldPosition: drive.ClampField(fieldPosition), Down: 1, YardsToGo: drive.FirstDownDistance}
}

func familyName(o outcome.Outcome) string {
	if o.Family != "" {
		return string(o.Family)
	}
	return "special_teams"
}

func firstAt(lineup []*roster.GamePlayer, pos roster.Position) *roster.GamePlayer {
	for _, p := range lineup {
		if p.Position == pos {
			return p
		}
	}
	return lineup[0]
}

func bestKick(lineup []*roster.GamePlayer) float64 {
	best := 0.0
	for _, p := range lineup {
		best = max(best, p.Effective().Kick)
	}
	return best
}

func averageFatigue(lineup []*roster.GamePlayer) float64 {
	if len(lineup) == 0 {
		return 0
	}
	sum := 0.0
	for _, p := range lineup {
		sum += p.Fatigue
	}
	return sum / float64(len(lineup))
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

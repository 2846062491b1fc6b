package stats

import (
	"strconv"

	"github.com/viperball/matchsim/internal/outcome"
	"github.com/viperball/matchsim/internal/roster"
	"github.com/viperball/matchsim/pkg/core"
)

// Downs tracked for conversion rates.
var conversionDowns = []int{4, 5, 6}

type series struct {
	reached [7]bool
}

type side struct {
	team    *roster.GameTeam
	stats   core.TeamStats
	players []core.PlayerGameStat
	series  series
	conv    map[int]*core.ConversionStat
}

// Aggregator accumulates team and player statistics over one game.
type Aggregator struct {
	home, away *side
}

// NewAggregator prepares lines for every rostered player of both teams.
func NewAggregator(home, away *roster.GameTeam) *Aggregator {
	return &Aggregator{home: newSide(home), away: newSide(away)}
}

func newSide(t *roster.GameTeam) *side {
	s := &side{
		team:    t,
		players: make([]core.PlayerGameStat, len(t.Players)),
		conv:    make(map[int]*core.ConversionStat, len(conversionDowns)),
	}
	s.stats.Team = t.Team.Name
	for i, p := range t.Players {
		s.players[i] = core.PlayerGameStat{
			Name:      p.Name,
			Number:    p.Number,
			Position:  p.Position.String(),
			Archetype: p.Archetype.String(),
		}
	}
	for _, d := range conversionDowns {
		s.conv[d] = &core.ConversionStat{}
	}
	return s
}

func (a *Aggregator) of(s core.Side) *side {
	if s == core.Away {
		return a.away
	}
	return a.home
}

// Play records an offensive snap. The play must already carry its VPA.
func (a *Aggregator) Play(p *core.Play, o *outcome.Outcome) {
	off, def := a.of(p.Possession), a.of(p.Possession.Opponent())
	t := &off.stats
	t.Plays++
	t.TotalVPA += p.EPA

	switch p.PlayType {
	case core.PlayRun, core.PlayTrick, core.PlayKickPass:
		t.TotalYards += p.Yards
	case core.PlayLateral:
		t.TotalYards += p.Yards
		t.LateralChains++
		t.LateralsThrown += p.Laterals
	}
	if p.Result == core.ResultFirstDown {
		t.FirstDowns++
	}
	switch p.Result {
	case core.ResultFumble, core.ResultChaosRecovery, core.ResultLateralIntercepted,
		core.ResultKickPassIntercepted, core.ResultIntReturnTD:
		t.Turnovers++
	case core.ResultMuffedPunt:
		def.stats.Turnovers++
	}

	involved := make(map[*roster.GamePlayer]bool)
	for _, c := range o.Credits {
		owner := def
		if c.Offense {
			owner = off
		}
		owner.credit(c)
		if !involved[c.Player] {
			involved[c.Player] = true
			line := &owner.players[c.Player.Index]
			line.PlaysInvolved++
			if c.Offense {
				line.VPA += p.EPA
			} else {
				line.VPA -= p.EPA
			}
		}
	}
}

// Kickoff records a kickoff return for the receiving side.
func (a *Aggregator) Kickoff(receiving core.Side, k outcome.Kickoff) {
	rec, kick := a.of(receiving), a.of(receiving.Opponent())
	for _, c := range k.Credits {
		if c.Offense {
			rec.credit(c)
		} else {
			kick.credit(c)
		}
	}
}

// Timeout records a timeout taken by a side.
func (a *Aggregator) Timeout(s core.Side) {
	a.of(s).stats.TimeoutsUsed++
}

// Possession adds seconds of possession to a side.
func (a *Aggregator) Possession(s core.Side, seconds int) {
	a.of(s).stats.TimeOfPossession += seconds
}

// Snap notes that a series reached a down with a non-kicking snap.
func (a *Aggregator) Snap(s core.Side, down int) {
	if down >= 4 && down <= 6 {
		a.of(s).series.reached[down] = true
	}
}

// CloseSeries ends a side's current series. Every tracked down it reached
// counts as an attempt, and as a conversion when the series converted: it
// earned a new set of downs or the offense scored a touchdown or a kick.
func (a *Aggregator) CloseSeries(s core.Side, converted bool) {
	sd := a.of(s)
	for _, d := range conversionDowns {
		if !sd.series.reached[d] {
			continue
		}
		sd.conv[d].Attempts++
		if converted {
			sd.conv[d].Conversions++
		}
	}
	sd.series = series{}
}

func (s *side) credit(c outcome.Credit) {
	line := &s.players[c.Player.Index]
	t := &s.stats
	switch c.Stat {
	case outcome.StatCarry:
		line.Touches++
		line.RushCarries++
		line.RushYards += c.Yards
		t.RushingYards += c.Yards
	case outcome.StatLateralThrown:
		line.LateralsThrown++
	case outcome.StatLateralReceived:
		line.Touches++
		line.LateralsReceived++
		line.LateralYards += c.Yards
		t.LateralYards += c.Yards
	case outcome.StatKickPassAttempt:
		line.KickPassAttempts++
		t.KickPassAttempts++
	case outcome.StatKickPassCompletion:
		line.KickPassCompletions++
		line.KickPassYards += c.Yards
		t.KickPassCompletions++
		t.KickPassYards += c.Yards
	case outcome.StatKickPassTouchdown:
		line.KickPassTouchdowns++
	case outcome.StatKickPassInterception:
		line.KickPassInterceptions++
		t.KickPassInterceptions++
	case outcome.StatReception:
		line.Touches++
		line.Receptions++
		line.ReceivingYards += c.Yards
	case outcome.StatTouchdown:
		line.Touchdowns++
	case outcome.StatFumble:
		line.Fumbles++
		t.Fumbles++
	case outcome.StatFumbleLost:
		line.FumblesLost++
		t.FumblesLost++
	case outcome.StatSnapKickAttempt:
		line.SnapKickAttempts++
		t.SnapKickAttempts++
	case outcome.StatSnapKickMade:
		line.SnapKicksMade++
		t.SnapKicksMade++
	case outcome.StatPlaceKickAttempt:
		line.PlaceKickAttempts++
		t.PlaceKickAttempts++
	case outcome.StatPlaceKickMade:
		line.PlaceKicksMade++
		t.PlaceKicksMade++
	case outcome.StatPunt:
		line.Punts++
		line.PuntYards += c.Yards
		t.Punts++
		t.PuntYards += c.Yards
	case outcome.StatTackle:
		line.Tackles++
	case outcome.StatTackleForLoss:
		line.TacklesForLoss++
	case outcome.StatSack:
		line.Sacks++
	case outcome.StatHurry:
		line.Hurries++
	case outcome.StatInterception:
		line.Interceptions++
	case outcome.StatFumbleRecovery:
		line.FumbleRecoveries++
	case outcome.StatKickBlocked:
		line.KicksBlocked++
	case outcome.StatPuntReturn:
		line.Touches++
		line.PuntReturns++
		line.PuntReturnYards += c.Yards
	case outcome.StatKickReturn:
		line.Touches++
		line.KickReturns++
		line.KickReturnYards += c.Yards
	case outcome.StatReturnTouchdown:
		line.ReturnTouchdowns++
	}
}

// Finish produces the final team and player statistics.
func (a *Aggregator) Finish(board *Scoreboard, drives []core.Drive) (core.TeamStatsBySide, core.PlayerStatsBySide) {
	home := a.home.finish(core.Home, board, drives)
	away := a.away.finish(core.Away, board, drives)
	return core.TeamStatsBySide{Home: home, Away: away},
		core.PlayerStatsBySide{Home: a.home.playerLines(), Away: a.away.playerLines()}
}

func (s *side) finish(who core.Side, board *Scoreboard, drives []core.Drive) core.TeamStats {
	t := s.stats
	t.Score = board.Score(who)
	t.Breakdown = board.Breakdown(who)
	if t.Plays > 0 {
		t.YardsPerPlay = float64(t.TotalYards) / float64(t.Plays)
		t.VPAPerPlay = t.TotalVPA / float64(t.Plays)
	}

	t.DownConversions = make(map[string]core.ConversionStat, len(conversionDowns))
	for _, d := range conversionDowns {
		c := *s.conv[d]
		if c.Attempts > 0 {
			c.Rate = float64(c.Conversions) / float64(c.Attempts)
		}
		t.DownConversions[strconv.Itoa(d)] = c
	}

	t.DriveEfficiency = map[core.DriveBucket]core.BucketSummary{
		core.BucketPenalized: {},
		core.BucketBoosted:   {},
		core.BucketNeutral:   {},
	}
	for _, d := range drives {
		if d.Team != who {
			continue
		}
		b := t.DriveEfficiency[d.Bucket()]
		b.Drives++
		b.Yards += d.Yards
		b.Points += d.Points
		if d.Points > 0 {
			b.Scores++
		}
		t.DriveEfficiency[d.Bucket()] = b
	}
	for k, b := range t.DriveEfficiency {
		if b.Drives > 0 {
			b.YardsPerDrive = float64(b.Yards) / float64(b.Drives)
			b.ScoreRate = float64(b.Scores) / float64(b.Drives)
		}
		t.DriveEfficiency[k] = b
	}
	return t
}

func (s *side) playerLines() []core.PlayerGameStat {
	out := make([]core.PlayerGameStat, len(s.players))
	copy(out, s.players)
	for i, gp := range s.team.Players {
		out[i].Snaps = gp.Snaps
		out[i].Fatigue = gp.Fatigue
	}
	return out
}

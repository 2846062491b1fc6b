package batch

import (
	"math"
	"sync"
	"time"

	"github.com/viperball/matchsim/pkg/core"
)

// Accumulator folds completed games into a batch summary. It keeps no game
// results, only running totals, and is safe for concurrent use.
type Accumulator struct {
	mu sync.Mutex

	batchID   string
	games     int
	failed    int
	plays     int
	points    float64
	homeWins  int
	awayWins  int
	ties      int
	turnovers int
	chains    int
	breakdown core.ScoreBreakdown
	fourth    core.ConversionStat
	buckets   map[core.DriveBucket]core.BucketSummary
}

// NewAccumulator creates an empty accumulator for one batch.
func NewAccumulator(batchID string) *Accumulator {
	return &Accumulator{
		batchID: batchID,
		buckets: make(map[core.DriveBucket]core.BucketSummary, 3),
	}
}

// Add folds one completed game.
func (a *Accumulator) Add(res *core.GameResult) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.games++
	a.plays += len(res.PlayByPlay)
	a.points += res.FinalScore.Home + res.FinalScore.Away
	switch res.Winner() {
	case core.Home:
		a.homeWins++
	case core.Away:
		a.awayWins++
	default:
		a.ties++
	}

	for _, ts := range []core.TeamStats{res.Stats.Home, res.Stats.Away} {
		a.turnovers += ts.Turnovers
		a.chains += ts.LateralChains
		a.breakdown = addBreakdown(a.breakdown, ts.Breakdown)
		if c, ok := ts.DownConversions["4"]; ok {
			a.fourth.Attempts += c.Attempts
			a.fourth.Conversions += c.Conversions
		}
		for bucket, s := range ts.DriveEfficiency {
			acc := a.buckets[bucket]
			acc.Drives += s.Drives
			acc.Yards += s.Yards
			acc.Scores += s.Scores
			acc.Points += s.Points
			a.buckets[bucket] = acc
		}
	}
}

// Fail counts one failed game.
func (a *Accumulator) Fail() {
	a.mu.Lock()
	a.failed++
	a.mu.Unlock()
}

// Games returns the number of completed games so far.
func (a *Accumulator) Games() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.games
}

// Summary returns the totals and rates of the games added so far.
func (a *Accumulator) Summary() core.BatchSummary {
	a.mu.Lock()
	defer a.mu.Unlock()

	s := core.BatchSummary{
		BatchID:         a.batchID,
		Games:           a.games,
		Failed:          a.failed,
		Plays:           a.plays,
		HomeWins:        a.homeWins,
		AwayWins:        a.awayWins,
		Ties:            a.ties,
		Turnovers:       a.turnovers,
		LateralChains:   a.chains,
		Breakdown:       a.breakdown,
		FourthDown:      a.fourth,
		DriveEfficiency: make(map[core.DriveBucket]core.BucketSummary, len(a.buckets)),
		FinishedAt:      time.Now().UTC(),
	}
	if a.games > 0 {
		s.PlaysPerGame = round3(float64(a.plays) / float64(a.games))
		s.PointsPerTeam = round3(a.points / float64(2*a.games))
	}
	if a.fourth.Attempts > 0 {
		s.FourthDown.Rate = round3(float64(a.fourth.Conversions) / float64(a.fourth.Attempts))
	}
	for bucket, b := range a.buckets {
		if b.Drives > 0 {
			b.YardsPerDrive = round3(float64(b.Yards) / float64(b.Drives))
			b.ScoreRate = round3(float64(b.Scores) / float64(b.Drives))
		}
		s.DriveEfficiency[bucket] = b
	}
	return s
}

func addBreakdown(a, b core.ScoreBreakdown) core.ScoreBreakdown {
	a.Touchdowns += b.Touchdowns
	a.SnapKicks += b.SnapKicks
	a.PlaceKicks += b.PlaceKicks
	a.Safeties += b.Safeties
	a.Pindowns += b.Pindowns
	a.Strikes += b.Strikes
	return a
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

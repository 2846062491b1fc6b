package sim

import (
	"bytes"
	"encoding/json"
	"errors"
	"flag"
	"log/slog"
	"math/rand/v2"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viperball/matchsim/internal/drive"
	"github.com/viperball/matchsim/internal/outcome"
	"github.com/viperball/matchsim/internal/roster"
	"github.com/viperball/matchsim/internal/style"
	"github.com/viperball/matchsim/pkg/core"
)

var update = flag.Bool("update", false, "rewrite golden files")

func quiet() Option {
	return WithLogger(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))
}

func fixedTeams() (*roster.Team, *roster.Team) {
	home := roster.Generate("Riverton Rattlers", "RIV", rand.New(rand.NewPCG(101, 1)))
	away := roster.Generate("Lakeside Lancers", "LAK", rand.New(rand.NewPCG(202, 2)))
	return home, away
}

func balanced(seed int64) Config {
	return Config{OffenseStyle: "balanced", DefenseStyle: "base_defense", Weather: "clear", Seed: seed}
}

func TestSimulate_Invariants(t *testing.T) {
	home, away := fixedTeams()
	for _, seed := range []int64{1, 2, 3, 42, 1234} {
		res, err := Simulate(home, away, balanced(seed), quiet())
		require.NoError(t, err, "seed %d", seed)
		require.NotEmpty(t, res.PlayByPlay)

		for _, p := range res.PlayByPlay {
			assert.GreaterOrEqual(t, p.FieldPosition, 1)
			assert.LessOrEqual(t, p.FieldPosition, 99)
			assert.GreaterOrEqual(t, p.Down, 1)
			assert.LessOrEqual(t, p.Down, drive.Downs)
			assert.GreaterOrEqual(t, p.Quarter, 1)
			assert.LessOrEqual(t, p.Quarter, drive.Quarters)
			assert.GreaterOrEqual(t, p.TimeRemaining, 0)

			n := 0
			for _, set := range []bool{p.Run != nil, p.Lateral != nil, p.KickPass != nil, p.Kick != nil, p.Punt != nil} {
				if set {
					n++
				}
			}
			assert.Equal(t, 1, n, "play %d carries one detail", p.Number)
		}

		for _, side := range []core.Side{core.Home, core.Away} {
			ts := res.TeamStats(side)
			assert.InDelta(t, ts.Breakdown.Points(), res.Score(side), 1e-9, "seed %d %s", seed, side)
			assert.Equal(t, res.Score(side), ts.Score)
			for _, k := range []string{"4", "5", "6"} {
				assert.Contains(t, ts.DownConversions, k)
			}
			assert.LessOrEqual(t, ts.TimeoutsUsed, 2*drive.TimeoutsPerHalf)

			bucketDrives := 0
			for _, b := range ts.DriveEfficiency {
				bucketDrives += b.Drives
			}
			teamDrives := 0
			for _, d := range res.DriveSummary {
				if d.Team == side {
					teamDrives++
				}
			}
			assert.Equal(t, teamDrives, bucketDrives)
		}

		last := res.PlayByPlay[len(res.PlayByPlay)-1]
		assert.Equal(t, res.FinalScore.Home, last.HomeScore)
		assert.Equal(t, res.FinalScore.Away, last.AwayScore)

		plays := 0
		for i, d := range res.DriveSummary {
			assert.Equal(t, i+1, d.Number)
			assert.NotEmpty(t, d.Result)
			plays += d.Plays
		}
		assert.Equal(t, len(res.PlayByPlay), plays)

		for _, lines := range [][]core.PlayerGameStat{res.PlayerStats.Home, res.PlayerStats.Away} {
			for _, l := range lines {
				assert.GreaterOrEqual(t, l.Fatigue, 0.0)
				assert.LessOrEqual(t, l.Fatigue, 1.0)
			}
		}
	}
}

func TestSimulate_FatigueOnlyDropsAtRecovery(t *testing.T) {
	home, away := fixedTeams()
	res, err := Simulate(home, away, balanced(7), quiet())
	require.NoError(t, err)

	recoveries := 0
	for i := 1; i < len(res.PlayByPlay); i++ {
		prev, cur := res.PlayByPlay[i-1], res.PlayByPlay[i]
		if cur.Recovery != "" {
			recoveries++
			continue
		}
		assert.GreaterOrEqual(t, cur.Fatigue.Home, prev.Fatigue.Home, "play %d", cur.Number)
		assert.GreaterOrEqual(t, cur.Fatigue.Away, prev.Fatigue.Away, "play %d", cur.Number)
	}
	// At least the opening kickoff and every quarter break.
	assert.GreaterOrEqual(t, recoveries, 3)
	assert.Equal(t, recoveryKickoff, res.PlayByPlay[0].Recovery)
}

func TestSimulate_Deterministic(t *testing.T) {
	home, away := fixedTeams()
	a, err := Simulate(home, away, balanced(99), quiet())
	require.NoError(t, err)
	b, err := Simulate(home, away, balanced(99), quiet())
	require.NoError(t, err)

	ja, err := json.Marshal(a.PlayByPlay)
	require.NoError(t, err)
	jb, err := json.Marshal(b.PlayByPlay)
	require.NoError(t, err)
	assert.Equal(t, string(ja), string(jb))
	assert.Equal(t, a.AdaptationLog, b.AdaptationLog)

	c, err := Simulate(home, away, balanced(100), quiet())
	require.NoError(t, err)
	jc, err := json.Marshal(c.PlayByPlay)
	require.NoError(t, err)
	assert.NotEqual(t, string(ja), string(jc))
}

func TestSimulate_ConcurrentMatchesSequential(t *testing.T) {
	home, away := fixedTeams()
	const games = 6

	sequential := make([][]byte, games)
	for i := range games {
		res, err := Simulate(home, away, balanced(int64(500+i)), quiet())
		require.NoError(t, err)
		sequential[i], err = json.Marshal(res)
		require.NoError(t, err)
	}

	concurrent := make([][]byte, games)
	errs := make([]error, games)
	var wg sync.WaitGroup
	for i := range games {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := Simulate(home, away, balanced(int64(500+i)), quiet())
			if err != nil {
				errs[i] = err
				return
			}
			concurrent[i], errs[i] = json.Marshal(res)
		}()
	}
	wg.Wait()

	for i := range games {
		require.NoError(t, errs[i])
		assert.Equal(t, string(sequential[i]), string(concurrent[i]), "seed %d", 500+i)
	}
}

func TestSimulate_SharedRosterUntouched(t *testing.T) {
	home, away := fixedTeams()
	before, err := json.Marshal(home)
	require.NoError(t, err)
	_, err = Simulate(home, away, balanced(3), quiet())
	require.NoError(t, err)
	after, err := json.Marshal(home)
	require.NoError(t, err)
	assert.Equal(t, string(before), string(after))
}

func TestSimulate_RandomSeed(t *testing.T) {
	home, away := fixedTeams()
	res, err := Simulate(home, away, Config{}, quiet())
	require.NoError(t, err)
	assert.NotZero(t, res.Seed)
	assert.Equal(t, "clear", res.Weather)
	assert.Equal(t, core.TeamStyles{Offense: "balanced", Defense: "base_defense", SpecialTeams: "aces"}, res.Styles.Home)
}

func TestSimulate_RosterErrors(t *testing.T) {
	home, away := fixedTeams()
	_, err := Simulate(nil, away, balanced(1), quiet())
	assert.ErrorIs(t, err, ErrNilTeam)

	broken := *home
	broken.Players = nil
	_, err = Simulate(&broken, away, balanced(1), quiet())
	var le *roster.LoadError
	require.True(t, errors.As(err, &le))
	assert.ErrorIs(t, err, roster.ErrInvalidRoster)
}

func TestResolveStyles(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, nil))

	tm := &roster.Team{Name: "Harbor", DefenseStyle: "swarm"}
	cfg := Config{
		OffenseStyle:   "ground_pound",
		DefenseStyle:   "zone_shell",
		SpecialTeams:   "coffin_corner",
		StyleOverrides: map[string]string{"Harbor": "lateral_spread"},
	}
	s := resolveStyles(tm, cfg, log)
	assert.Equal(t, style.LateralSpread, s.offense)
	assert.Equal(t, style.Swarm, s.defense)
	assert.Equal(t, style.CoffinCorner, s.special)

	cfg.StyleOverrides["Harbor_defense"] = "pressure_defense"
	assert.Equal(t, style.PressureDefense, resolveStyles(tm, cfg, log).defense)
	assert.Empty(t, buf.String())

	lower := Config{StyleOverrides: map[string]string{"harbor": "ground_pound"}}
	assert.Equal(t, style.GroundPound, resolveStyles(tm, lower, log).offense)

	s = resolveStyles(&roster.Team{Name: "Mist"}, Config{OffenseStyle: "air_raid", SpecialTeams: "nope"}, log)
	assert.Equal(t, style.DefaultOffense, s.offense)
	assert.Equal(t, style.DefaultSpecialTeams, s.special)
	assert.Contains(t, buf.String(), "Unknown offense style")
	assert.Contains(t, buf.String(), "level=WARN")

	buf.Reset()
	assert.Equal(t, style.DefaultWeather, resolveWeather("hurricane", log))
	assert.Contains(t, buf.String(), "Unknown weather")
}

func TestEvaluatePlay(t *testing.T) {
	req := EvaluationRequest{Style: "balanced", FieldPosition: 20, Down: 4, YardsToGo: 9, Seed: 11}
	p, err := EvaluatePlay(req, quiet())
	require.NoError(t, err)
	assert.Equal(t, 1, p.Number)
	assert.Equal(t, 4, p.Down)
	assert.Equal(t, 9, p.YardsToGo)
	assert.Equal(t, 20, p.FieldPosition)
	assert.NotEmpty(t, p.Description)

	again, err := EvaluatePlay(req, quiet())
	require.NoError(t, err)
	assert.Equal(t, p, again)

	for _, bad := range []EvaluationRequest{
		{FieldPosition: 0, Down: 1, YardsToGo: 10},
		{FieldPosition: 50, Down: 7, YardsToGo: 10},
		{FieldPosition: 50, Down: 1, YardsToGo: 0},
	} {
		_, err := EvaluatePlay(bad, quiet())
		assert.ErrorIs(t, err, ErrInvalidRequest)
	}
}

func TestEvaluatePlay_KickingSituation(t *testing.T) {
	kicks := 0
	for seed := int64(1); seed <= 300; seed++ {
		p, err := EvaluatePlay(EvaluationRequest{FieldPosition: 20, Down: 4, YardsToGo: 9, Seed: seed}, quiet())
		require.NoError(t, err)
		if p.Decision == core.DecisionKick {
			kicks++
		}
	}
	// Base kick weight is .10 of 1.0; this situation pushes it well past that.
	assert.Greater(t, float64(kicks)/300, 0.2)
}

func TestConverted(t *testing.T) {
	tests := []struct {
		name   string
		result core.Result
		scorer core.Side
		want   bool
	}{
		{"touchdown", core.ResultTouchdown, core.Home, true},
		{"made kick", core.ResultSuccessfulKick, core.Home, true},
		{"missed kick", core.ResultMissedKick, core.Home, false},
		{"punt", core.ResultPunt, core.Home, false},
		{"pick six", core.ResultIntReturnTD, core.Away, false},
		{"safety", core.ResultSafety, core.Away, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, converted(outcome.Outcome{Result: tt.result}, core.Home, tt.scorer))
		})
	}
}

type golden struct {
	FinalScore core.FinalScore     `json:"final_score"`
	Plays      int                 `json:"plays"`
	Drives     int                 `json:"drives"`
	Home       core.ScoreBreakdown `json:"home"`
	Away       core.ScoreBreakdown `json:"away"`
	Opening    []string            `json:"opening"`
}

func TestSimulate_Golden(t *testing.T) {
	home, away := fixedTeams()
	res, err := Simulate(home, away, balanced(42), quiet())
	require.NoError(t, err)

	got := golden{
		FinalScore: res.FinalScore,
		Plays:      len(res.PlayByPlay),
		Drives:     len(res.DriveSummary),
		Home:       res.Stats.Home.Breakdown,
		Away:       res.Stats.Away.Breakdown,
	}
	for _, p := range res.PlayByPlay[:min(10, len(res.PlayByPlay))] {
		got.Opening = append(got.Opening, p.Description)
	}
	data, err := json.MarshalIndent(got, "", "  ")
	require.NoError(t, err)
	data = append(data, '\n')

	path := filepath.Join("testdata", "seed42.golden.json")
	if *update {
		require.NoError(t, os.MkdirAll("testdata", 0o755))
		require.NoError(t, os.WriteFile(path, data, 0o644))
		t.Logf("wrote %s", path)
		return
	}
	want, err := os.ReadFile(path)
	require.NoError(t, err, "golden file missing; regenerate with: go test ./internal/sim -run TestSimulate_Golden -update")
	assert.JSONEq(t, string(want), string(data))
}

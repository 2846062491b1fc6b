package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/viperball/matchsim/internal/cache"
	"github.com/viperball/matchsim/internal/config"
	"github.com/viperball/matchsim/internal/roster"
	"github.com/viperball/matchsim/internal/sim"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// errTeams is returned when the teams of a game cannot be picked.
var errTeams = errors.New("cannot pick teams")

func gameFlags(fs *pflag.FlagSet) {
	fs.String("home", "", "home roster file, or a team name or abbreviation in --roster-dir")
	fs.String("away", "", "away roster file, or a team name or abbreviation in --roster-dir")
	fs.String("roster-dir", "", "directory of roster files")
	fs.String("special-teams", "", "default special teams scheme")
	fs.StringP("out", "o", "", "write the result to this file instead of stdout")
	fs.Bool("compact", false, "print the result on one line")
	simFlags(fs)
}

func runGame(a *app, fs *pflag.FlagSet, stdout io.Writer) error {
	homeRef, _ := fs.GetString("home")
	awayRef, _ := fs.GetString("away")
	home, away, err := pickTeams(a.rosters, homeRef, awayRef, viper.GetString("batch.rosterDir"))
	if err != nil {
		return err
	}

	res, err := sim.Simulate(home, away, simConfig(config.GetSimConfig()), sim.WithLogger(a.logger))
	if err != nil {
		return err
	}
	a.logger.Info("Game finished",
		"home", res.HomeTeam,
		"away", res.AwayTeam,
		"homeScore", res.FinalScore.Home,
		"awayScore", res.FinalScore.Away,
		"plays", len(res.PlayByPlay),
		"seed", res.Seed)

	compact, _ := fs.GetBool("compact")
	out, _ := fs.GetString("out")
	if out == "" {
		return writeJSON(stdout, res, compact)
	}
	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("error creating result file: %w", err)
	}
	if err := writeJSON(f, res, compact); err != nil {
		f.Close()
		return err
	}
	a.logger.Info("Wrote game result", "path", out)
	return f.Close()
}

// pickTeams resolves the home and away references. With neither given, the
// first two rosters of dir play.
func pickTeams(c *cache.RosterCache, homeRef, awayRef, dir string) (*roster.Team, *roster.Team, error) {
	if homeRef == "" && awayRef == "" {
		teams, err := c.Dir(dir)
		if err != nil {
			return nil, nil, err
		}
		if len(teams) < 2 {
			return nil, nil, fmt.Errorf("%w: %s holds %d rosters, need 2", errTeams, dir, len(teams))
		}
		return teams[0], teams[1], nil
	}
	if homeRef == "" || awayRef == "" {
		return nil, nil, fmt.Errorf("%w: give both --home and --away", errTeams)
	}

	home, err := resolveTeam(c, homeRef, dir)
	if err != nil {
		return nil, nil, err
	}
	away, err := resolveTeam(c, awayRef, dir)
	if err != nil {
		return nil, nil, err
	}
	return home, away, nil
}

// resolveTeam reads ref as a roster file, or looks it up by name in dir.
func resolveTeam(c *cache.RosterCache, ref, dir string) (*roster.Team, error) {
	if info, err := os.Stat(ref); err == nil && !info.IsDir() {
		return c.Get(ref)
	}
	if t, ok := c.Find(ref); ok {
		return t, nil
	}
	if _, err := c.Dir(dir); err != nil {
		return nil, fmt.Errorf("%w: %q is not a file and %w", errTeams, ref, err)
	}
	if t, ok := c.Find(ref); ok {
		return t, nil
	}
	return nil, fmt.Errorf("%w: no team %q in %s", errTeams, ref, dir)
}

func simConfig(c config.SimConfig) sim.Config {
	return sim.Config{
		OffenseStyle:   c.OffenseStyle,
		DefenseStyle:   c.DefenseStyle,
		SpecialTeams:   c.SpecialTeams,
		Weather:        c.Weather,
		Seed:           c.Seed,
		StyleOverrides: c.StyleOverrides,
	}
}

func writeJSON(w io.Writer, v any, compact bool) error {
	enc := json.NewEncoder(w)
	if !compact {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("error encoding JSON: %w", err)
	}
	return nil
}

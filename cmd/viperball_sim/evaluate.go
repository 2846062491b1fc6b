package main

import (
	"fmt"
	"io"

	"github.com/viperball/matchsim/internal/config"
	"github.com/viperball/matchsim/internal/sim"

	"github.com/spf13/pflag"
)

func evaluateFlags(fs *pflag.FlagSet) {
	fs.Int("field-position", 25, "yard line of the offense, 1 to 99")
	fs.Int("down", 1, "down, 1 to 6")
	fs.Int("yards-to-go", 20, "yards needed for a first down")
	fs.Int("count", 1, "snaps to resolve, seed+i each; printed one per line")
	simFlags(fs)
}

func runEvaluate(a *app, fs *pflag.FlagSet, stdout io.Writer) error {
	sc := config.GetSimConfig()
	req := sim.EvaluationRequest{
		Style:        sc.OffenseStyle,
		DefenseStyle: sc.DefenseStyle,
		Weather:      sc.Weather,
		Seed:         sc.Seed,
	}
	req.FieldPosition, _ = fs.GetInt("field-position")
	req.Down, _ = fs.GetInt("down")
	req.YardsToGo, _ = fs.GetInt("yards-to-go")
	count, _ := fs.GetInt("count")
	if count < 1 {
		return fmt.Errorf("%w: count %d", sim.ErrInvalidRequest, count)
	}
	if req.Seed == 0 && count > 1 {
		req.Seed = sim.RandomSeed() >> 1
	}

	base := req.Seed
	for i := range count {
		if base != 0 {
			req.Seed = base + int64(i)
		}
		p, err := sim.EvaluatePlay(req, sim.WithLogger(a.logger))
		if err != nil {
			return err
		}
		if err := writeJSON(stdout, p, count > 1); err != nil {
			return err
		}
	}
	return nil
}

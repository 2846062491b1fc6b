package sim

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/viperball/matchsim/internal/drive"
	"github.com/viperball/matchsim/internal/roster"
	"github.com/viperball/matchsim/pkg/core"
)

// ErrInvalidRequest is returned for an evaluation outside the legal range.
var ErrInvalidRequest = errors.New("invalid evaluation request")

// neutralRating is every trait of a neutral player.
const neutralRating = 70

// EvaluationRequest is a single snap to inspect outside of a game.
type EvaluationRequest struct {
	Style         string // offense style key
	DefenseStyle  string
	Weather       string
	FieldPosition int
	Down          int
	YardsToGo     int
	Seed          int64
}

func (r EvaluationRequest) validate() error {
	switch {
	case r.FieldPosition < 1 || r.FieldPosition > 99:
		return fmt.Errorf("%w: field position %d", ErrInvalidRequest, r.FieldPosition)
	case r.Down < 1 || r.Down > drive.Downs:
		return fmt.Errorf("%w: down %d", ErrInvalidRequest, r.Down)
	case r.YardsToGo < 1:
		return fmt.Errorf("%w: yards to go %d", ErrInvalidRequest, r.YardsToGo)
	}
	return nil
}

// EvaluatePlay calls and resolves one snap from the given situation between
// two neutral rosters and returns it as a play-by-play entry.
func EvaluatePlay(req EvaluationRequest, opts ...Option) (core.Play, error) {
	if err := req.validate(); err != nil {
		return core.Play{}, err
	}
	o := buildOptions(opts)
	seed := req.Seed
	if seed == 0 {
		seed = RandomSeed()
	}

	cfg := Config{OffenseStyle: req.Style, DefenseStyle: req.DefenseStyle, Weather: req.Weather, Seed: seed}
	g := newGame(NeutralTeam("Offense", "OFF"), NeutralTeam("Defense", "DEF"), cfg, seed, o)
	if err := g.startDrive(core.Home, req.FieldPosition, drive.Flags{}); err != nil {
		return core.Play{}, err
	}
	g.state.Down = req.Down
	g.state.YardsToGo = req.YardsToGo
	if err := g.snap(); err != nil {
		return core.Play{}, err
	}
	return g.plays[0], nil
}

// NeutralTeam builds a roster of average players with no archetypes.
func NeutralTeam(name, abbreviation string) *roster.Team {
	t := roster.Generate(name, abbreviation, rand.New(rand.NewPCG(0, 0)))
	for i := range t.Players {
		p := &t.Players[i]
		p.Archetype = roster.ArchetypeNone
		p.Traits = roster.Traits{
			Speed: neutralRating, Power: neutralRating, Agility: neutralRating, Stamina: neutralRating,
			Decision: neutralRating, Awareness: neutralRating, Discipline: neutralRating,
			Kick: neutralRating, Hands: neutralRating, Tackle: neutralRating,
		}
	}
	return t
}

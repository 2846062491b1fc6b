package roster

import (
	"errors"
	"fmt"
)

// ErrInvalidRoster is wrapped by every LoadError.
var ErrInvalidRoster = errors.New("invalid roster")

// LoadError reports a roster that cannot be simulated.
type LoadError struct {
	Team   string
	Source string
	Field  string
	Reason string
}

func (e *LoadError) Error() string {
	msg := fmt.Sprintf("roster %q", e.Team)
	if e.Source != "" {
		msg += fmt.Sprintf(" (%s)", e.Source)
	}
	if e.Field != "" {
		msg += ": " + e.Field
	}
	return msg + ": " + e.Reason
}

func (e *LoadError) Unwrap() error {
	return ErrInvalidRoster
}

// Player is an immutable roster entry.
type Player struct {
	Name      string
	Number    int
	Position  Position
	Archetype Archetype
	Traits    Traits
}

// Team is an immutable roster. It is safe to share between concurrent games;
// per-game state lives in GameTeam.
type Team struct {
	Name         string
	Abbreviation string
	Players      []Player

	// Optional style keys; empty means the game configuration decides.
	OffenseStyle string
	DefenseStyle string
	SpecialTeams string
}

// Validate checks that the roster can field both units.
func (t *Team) Validate() error {
	fail := func(field, format string, args ...any) error {
		return &LoadError{Team: t.Name, Field: field, Reason: fmt.Sprintf(format, args...)}
	}

	if t.Name == "" {
		return fail("name", "team name is required")
	}
	if t.Abbreviation == "" {
		return fail("abbreviation", "abbreviation is required")
	}

	counts := make(map[Position]int)
	for i, p := range t.Players {
		field := fmt.Sprintf("players[%d]", i)
		if p.Name == "" {
			return fail(field, "player name is required")
		}
		if p.Position == PositionUnknown || p.Position >= positionCount {
			return fail(field, "player %q has no position", p.Name)
		}
		if p.Archetype >= archetypeCount {
			return fail(field, "player %q has an unknown archetype", p.Name)
		}
		if err := p.Traits.validate(); err != nil {
			return fail(field, "player %q: %v", p.Name, err)
		}
		counts[p.Position]++
	}

	for _, slot := range append(append([]Slot{}, OffenseFormation...), DefenseFormation...) {
		if counts[slot.Position] == 0 {
			return fail("players", "no player at position %s", slot.Position)
		}
	}
	return nil
}

// PlayersAt returns the indexes of players at the position in roster order.
func (t *Team) PlayersAt(p Position) []int {
	var out []int
	for i := range t.Players {
		if t.Players[i].Position == p {
			out = append(out, i)
		}
	}
	return out
}

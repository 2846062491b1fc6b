package roster

import (
	"fmt"
	"math/rand/v2"
)

// depth is how many players Generate creates per position.
var depth = []Slot{
	{Zeroback, 2},
	{Halfback, 2},
	{Wingback, 2},
	{Slotback, 2},
	{Viper, 2},
	{Lineman, 8},
	{DefensiveLine, 7},
	{Linebacker, 5},
	{Keeper, 3},
}

// positionLean shifts generated ratings toward what a position needs.
var positionLean = map[Position]Traits{
	Zeroback:      {Decision: 8, Kick: 10, Hands: 4},
	Halfback:      {Speed: 5, Power: 6, Agility: 5},
	Wingback:      {Speed: 8, Agility: 6, Hands: 4},
	Slotback:      {Agility: 8, Hands: 8},
	Viper:         {Speed: 6, Hands: 8, Agility: 4},
	Lineman:       {Power: 12, Speed: -15, Agility: -10},
	DefensiveLine: {Power: 10, Tackle: 10, Speed: -10},
	Linebacker:    {Tackle: 10, Awareness: 5},
	Keeper:        {Speed: 8, Awareness: 8, Hands: 4},
}

// Generate builds a valid random roster. The same generator state always
// produces the same team.
func Generate(name, abbreviation string, rng *rand.Rand) *Team {
	t := &Team{Name: name, Abbreviation: abbreviation}
	number := 1
	for _, slot := range depth {
		lean := positionLean[slot.Position]
		archetypes := Archetypes(slot.Position)
		for i := 0; i < slot.Count; i++ {
			// Starters are rated higher than depth players.
			base := 74
			if i >= slot.Count/2 && slot.Count > 1 {
				base = 66
			}
			t.Players = append(t.Players, Player{
				Name:      fmt.Sprintf("%s %s%d", abbreviation, slot.Position, i+1),
				Number:    number,
				Position:  slot.Position,
				Archetype: archetypes[rng.IntN(len(archetypes))],
				Traits: Traits{
					Speed:      rating(rng, base+lean.Speed),
					Power:      rating(rng, base+lean.Power),
					Agility:    rating(rng, base+lean.Agility),
					Stamina:    rating(rng, base),
					Decision:   rating(rng, base+lean.Decision),
					Awareness:  rating(rng, base+lean.Awareness),
					Discipline: rating(rng, base),
					Kick:       rating(rng, base-10+lean.Kick),
					Hands:      rating(rng, base+lean.Hands),
					Tackle:     rating(rng, base-6+lean.Tackle),
				},
			})
			number++
		}
	}
	return t
}

func rating(rng *rand.Rand, mean int) int {
	v := mean + int(rng.NormFloat64()*8)
	if v < 30 {
		return 30
	}
	if v > 99 {
		return 99
	}
	return v
}

package batch

import (
	"math/rand/v2"

	"github.com/viperball/matchsim/internal/roster"
)

// Pairing is one home/away matchup.
type Pairing struct {
	Home *roster.Team
	Away *roster.Team
}

// RoundRobin pairs every team with every other team twice, once at home.
func RoundRobin(teams []*roster.Team) []Pairing {
	var out []Pairing
	for i, home := range teams {
		for j, away := range teams {
			if i != j {
				out = append(out, Pairing{Home: home, Away: away})
			}
		}
	}
	return out
}

// RandomPairings draws n matchups of two distinct teams.
func RandomPairings(teams []*roster.Team, n int, rng *rand.Rand) []Pairing {
	if len(teams) < 2 {
		return nil
	}
	out := make([]Pairing, n)
	for i := range out {
		h := rng.IntN(len(teams))
		a := rng.IntN(len(teams) - 1)
		if a >= h {
			a++
		}
		out[i] = Pairing{Home: teams[h], Away: teams[a]}
	}
	return out
}

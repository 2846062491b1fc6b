package roster

// RotationThreshold is the fatigue above which a starter gives way to a
// fresher teammate at the same position.
const RotationThreshold = 0.65

// GamePlayer is the mutable per-game state layered over an immutable Player.
type GamePlayer struct {
	*Player
	Index   int
	Fatigue float64
	Snaps   int
}

// Effective returns the player's fatigue-adjusted ratings.
func (p *GamePlayer) Effective() Effective {
	return p.Traits.Effective(p.Fatigue)
}

// Tire adds fatigue. Negative amounts are ignored so fatigue only drops
// through Recover.
func (p *GamePlayer) Tire(amount float64) {
	if amount <= 0 {
		return
	}
	p.Fatigue = clamp(p.Fatigue+amount, 0, 1)
}

// Recover removes fatigue at a recovery event.
func (p *GamePlayer) Recover(amount float64) {
	if amount <= 0 {
		return
	}
	p.Fatigue = clamp(p.Fatigue-amount, 0, 1)
}

// GameTeam is one team's roster for a single game. Each game builds its own,
// so fatigue and snap counts never leak between games.
type GameTeam struct {
	Team       *Team
	Players    []*GamePlayer
	byPosition map[Position][]*GamePlayer
}

// NewGameTeam builds a fresh overlay with zero fatigue.
func NewGameTeam(t *Team) *GameTeam {
	g := &GameTeam{
		Team:       t,
		Players:    make([]*GamePlayer, len(t.Players)),
		byPosition: make(map[Position][]*GamePlayer),
	}
	for i := range t.Players {
		gp := &GamePlayer{Player: &t.Players[i], Index: i}
		g.Players[i] = gp
		g.byPosition[gp.Position] = append(g.byPosition[gp.Position], gp)
	}
	return g
}

// At returns every player at the position in roster order.
func (g *GameTeam) At(p Position) []*GamePlayer {
	return g.byPosition[p]
}

// Pick selects n players at the position. Players are taken in roster order
// while their fatigue is at or below RotationThreshold; remaining spots go to
// the least fatigued of the rest. If the position has fewer than n players,
// all of them are returned.
func (g *GameTeam) Pick(p Position, n int) []*GamePlayer {
	pool := g.byPosition[p]
	if n >= len(pool) {
		return append([]*GamePlayer(nil), pool...)
	}

	out := make([]*GamePlayer, 0, n)
	used := make([]bool, len(pool))
	for i, gp := range pool {
		if len(out) == n {
			break
		}
		if gp.Fatigue <= RotationThreshold {
			out = append(out, gp)
			used[i] = true
		}
	}
	for len(out) < n {
		best := -1
		for i, gp := range pool {
			if used[i] {
				continue
			}
			if best < 0 || gp.Fatigue < pool[best].Fatigue {
				best = i
			}
		}
		used[best] = true
		out = append(out, pool[best])
	}
	return out
}

// Starter returns the player who would take the single spot at a position.
func (g *GameTeam) Starter(p Position) *GamePlayer {
	picked := g.Pick(p, 1)
	if len(picked) == 0 {
		return nil
	}
	return picked[0]
}

// Lineup picks the players for a formation.
func (g *GameTeam) Lineup(formation []Slot) []*GamePlayer {
	var out []*GamePlayer
	for _, slot := range formation {
		out = append(out, g.Pick(slot.Position, slot.Count)...)
	}
	return out
}

// AverageFatigue is the mean fatigue across the whole roster.
func (g *GameTeam) AverageFatigue() float64 {
	if len(g.Players) == 0 {
		return 0
	}
	var sum float64
	for _, p := range g.Players {
		sum += p.Fatigue
	}
	return sum / float64(len(g.Players))
}

// Recover applies a recovery event to every player.
func (g *GameTeam) Recover(amount float64) {
	for _, p := range g.Players {
		p.Recover(amount)
	}
}

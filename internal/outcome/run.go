package outcome

import (
	"fmt"
	"math"

	"github.com/viperball/matchsim/internal/roster"
	"github.com/viperball/matchsim/pkg/core"
)

// Run model constants.
const (
	giveMean    = 8.0
	keepMean    = 8.5
	pitchMean   = 9.0
	trickMean   = 10.0
	runSpread   = 4.5
	trickSpread = 7.0

	baseTFL         = 0.05
	trickTFL        = 0.05
	breakawayChance = 0.06
	breakawayMean   = 20.0

	// Share of loose balls the defense comes up with.
	defenseRecovery = 0.6
	// Scales how far the talent gap moves expected yards.
	talentLeverage = 1.2
)

func (r *Resolver) run(s Snap, trick bool) Outcome {
	eff := effectOf(s.Call)

	var (
		carrier *roster.GamePlayer
		mean    float64
		mult    float64
		spread  = runSpread
		family  = core.FamilyRun
		verb    string
	)
	switch {
	case trick:
		carrier = first(s.Offense, roster.Viper, roster.Slotback, roster.Wingback)
		mean, mult, spread = trickMean, eff.Trick, trickSpread
		family = core.FamilyTrick
		verb = "takes the Viper reverse"
	case s.Decision == core.DecisionKeep:
		carrier = first(s.Offense, roster.Zeroback)
		mean, mult = keepMean, eff.Keep
		verb = "keeps"
	case s.Decision == core.DecisionPitch:
		flankers := at(s.Offense, roster.Wingback, roster.Slotback)
		if len(flankers) > 0 {
			carrier = flankers[r.rng.IntN(len(flankers))]
		} else {
			carrier = first(s.Offense, roster.Halfback)
		}
		mean, mult = pitchMean, eff.Run
		verb = "takes the pitch"
	default:
		carrier = first(s.Offense, roster.Halfback, roster.Slotback)
		mean, mult = giveMean, eff.Run
		verb = "runs"
	}

	out := Outcome{Family: family, Carrier: carrier}
	var c credits

	e := carrier.Effective()
	arch := carrier.Archetype.Modifiers()
	talent := (e.Speed*0.3+e.Power*0.2+e.Agility*0.3+e.Awareness*0.2)/100*0.7 + lineQuality(s.Offense)*0.3
	mean *= 1 + talentLeverage*(talent-defenseQuality(s.Defense))
	mean *= s.coefficient(family) * mult * arch.Yards
	if stop := s.DefenseStyle.RunStop; stop > 0 {
		mean *= stop
	}

	takeaway := s.DefenseStyle.Takeaway
	if takeaway <= 0 {
		takeaway = 1
	}
	tackler := r.weighted(s.Defense, func(e roster.Effective) float64 { return e.Tackle })

	if r.chance(s.TurnoverRisk * r.weather.Fumble * takeaway) {
		gained := r.bounded(s, round(r.rng.Float64()*max(mean, 1)))
		recoverer := r.weighted(s.Defense, func(e roster.Effective) float64 { return e.Awareness })
		c.off(carrier, StatFumble, 0)
		if r.chance(defenseRecovery) {
			c.off(carrier, StatCarry, gained)
			c.off(carrier, StatFumbleLost, 0)
			c.def(recoverer, StatFumbleRecovery, 0)
			out.Yards = gained
			out.Result = core.ResultFumble
			out.Score = Score{Kind: ScoreStrike, Defense: true}
			out.Next = NextTurnover
			out.Spot = flip(s.FieldPosition + gained)
			out.Run = &core.RunDetail{Carrier: carrier.Name, Fumbled: true, RecoveredBy: recoverer.Name}
			out.Description = fmt.Sprintf("%s %s, fumbles after %s, %s recovers for the strike",
				carrier.Name, verb, yardsPhrase(gained), recoverer.Name)
			out.Credits = c
			return out
		}
		yards, res := advance(s.Situation, gained)
		c.off(carrier, StatCarry, yards)
		out.Yards, out.Result = yards, res
		out.Success = success(s.Situation, yards, res)
		out.Run = &core.RunDetail{Carrier: carrier.Name, Fumbled: true, RecoveredBy: carrier.Name}
		out.Description = fmt.Sprintf("%s %s, fumbles and falls on it for %s", carrier.Name, verb, yardsPhrase(yards))
		settle(&out)
		if res != core.ResultTouchdown {
			c.def(tackler, StatTackle, 0)
		}
		out.Credits = c
		return out
	}

	detail := &core.RunDetail{Carrier: carrier.Name}
	var raw int
	tfl := baseTFL + eff.TFL
	if trick {
		tfl += trickTFL
	}
	if r.chance(tfl) {
		raw = -(1 + r.rng.IntN(4))
	} else {
		raw = max(round(r.normal(mean, spread)), -3)
		if r.chance(breakawayChance * math.Pow(e.Speed/75, 2) * arch.Breakaway) {
			raw = max(raw, 0) + round(r.exp(breakawayMean))
			detail.Breakaway = true
		}
	}

	yards, res := advance(s.Situation, raw)
	out.Yards, out.Result = yards, res
	out.Success = success(s.Situation, yards, res)
	c.off(carrier, StatCarry, yards)
	if res == core.ResultTouchdown {
		c.off(carrier, StatTouchdown, 0)
	} else {
		detail.Tackler = tackler.Name
		c.def(tackler, StatTackle, 0)
		if yards < 0 {
			c.def(tackler, StatTackleForLoss, 0)
		}
	}
	out.Run = detail
	out.Description = runDescription(carrier.Name, verb, yards, res, detail)
	settle(&out)
	out.Credits = c
	return out
}

func runDescription(carrier, verb string, yards int, res core.Result, d *core.RunDetail) string {
	switch res {
	case core.ResultTouchdown:
		if d.Breakaway {
			return fmt.Sprintf("%s %s and breaks free for a %d-yard touchdown", carrier, verb, yards)
		}
		return fmt.Sprintf("%s %s %d yards for a touchdown", carrier, verb, yards)
	case core.ResultSafety:
		return fmt.Sprintf("%s %s and is dropped in the end zone by %s for a safety", carrier, verb, d.Tackler)
	}
	s := fmt.Sprintf("%s %s for %s", carrier, verb, yardsPhrase(yards))
	if d.Breakaway {
		s += " on a breakaway"
	}
	if d.Tackler != "" {
		s += ", tackled by " + d.Tackler
	}
	if res == core.ResultFirstDown {
		s += ", first down"
	}
	return s
}

// bounded keeps a spot inside the field of play.
func (r *Resolver) bounded(s Snap, yards int) int {
	return min(max(yards, 1-s.FieldPosition), 99-s.FieldPosition)
}

// Lateral chain constants.
const (
	minLaterals     = 2
	maxLaterals     = 5
	extraLateral    = 0.35
	lateralMean     = 12.0
	lateralSpread   = 9.0
	lateralTurnover = 0.6 // share of lost chains recovered as loose balls rather than picked off
)

// tossRisk is the chance a single toss in the chain goes wrong. The play's
// turnover risk is quoted for a chain of minLaterals tosses.
func tossRisk(turnoverRisk, weather, takeaway float64) float64 {
	return turnoverRisk * weather * takeaway / minLaterals
}

// badToss draws each of n tosses in order and returns the 1-based index of the
// first one that goes wrong, or 0 when the chain holds.
func (r *Resolver) badToss(n int, risk float64) int {
	for i := 1; i <= n; i++ {
		if r.chance(risk) {
			return i
		}
	}
	return 0
}

func (r *Resolver) lateral(s Snap) Outcome {
	eff := effectOf(s.Call)
	zb := first(s.Offense, roster.Zeroback)
	arch := zb.Archetype.Modifiers()

	n := minLaterals
	for n < maxLaterals && r.chance(extraLateral*arch.LateralTendency) {
		n++
	}

	pool := at(s.Offense, roster.Halfback, roster.Wingback, roster.Slotback, roster.Viper)
	chain := []*roster.GamePlayer{zb}
	for len(chain) <= n {
		holder := chain[len(chain)-1]
		candidates := make([]*roster.GamePlayer, 0, len(pool)+1)
		for _, p := range append(pool, zb) {
			if p != holder {
				candidates = append(candidates, p)
			}
		}
		chain = append(chain, candidates[r.rng.IntN(len(candidates))])
	}

	names := make([]string, len(chain))
	for i, p := range chain {
		names[i] = p.Name
	}

	out := Outcome{Family: core.FamilyLateral}
	var c credits

	takeaway := s.DefenseStyle.Takeaway
	if takeaway <= 0 {
		takeaway = 1
	}
	if lost := r.badToss(n, tossRisk(s.TurnoverRisk, r.weather.LateralRisk, takeaway)); lost > 0 {
		thrower := chain[lost-1]
		gained := r.bounded(s, round(r.normal(2, 4)))
		taker := r.weighted(s.Defense, func(e roster.Effective) float64 { return e.Awareness + e.Hands })
		for i := 0; i < lost-1; i++ {
			c.off(chain[i], StatLateralThrown, 0)
			c.off(chain[i+1], StatLateralReceived, 0)
		}
		out.Carrier = thrower
		out.Laterals = lost - 1
		out.Yards = gained
		out.Next = NextTurnover
		out.Spot = flip(s.FieldPosition + gained)
		detail := &core.LateralDetail{Chain: names[:lost], Completed: lost - 1, LostBy: thrower.Name, TakenBy: taker.Name}
		out.Lateral = detail
		if r.chance(lateralTurnover) {
			c.off(thrower, StatFumble, 0)
			c.off(thrower, StatFumbleLost, 0)
			c.def(taker, StatFumbleRecovery, 0)
			out.Result = core.ResultChaosRecovery
			out.Score = Score{Kind: ScoreStrike, Defense: true}
			out.Description = fmt.Sprintf("Lateral chain breaks down, %s loses it and %s scoops it up for the strike", thrower.Name, taker.Name)
		} else {
			c.def(taker, StatInterception, 0)
			out.Result = core.ResultLateralIntercepted
			out.Description = fmt.Sprintf("%s's lateral is picked off by %s", thrower.Name, taker.Name)
		}
		out.Credits = c
		return out
	}

	talent := 0.0
	for _, p := range chain {
		e := p.Effective()
		talent += (e.Speed*0.35 + e.Agility*0.35 + e.Hands*0.3) / 100
	}
	talent /= float64(len(chain))
	mean := lateralMean * (1 + talentLeverage*(talent-defenseQuality(s.Defense)))
	mean *= s.coefficient(core.FamilyLateral) * eff.Lateral
	if stop := s.DefenseStyle.LateralStop; stop > 0 {
		mean *= stop
	}

	yards, res := advance(s.Situation, round(r.normal(mean, lateralSpread)))
	carrier := chain[len(chain)-1]
	for i := 0; i < n; i++ {
		c.off(chain[i], StatLateralThrown, 0)
		if i+1 < n {
			c.off(chain[i+1], StatLateralReceived, 0)
		}
	}
	c.off(carrier, StatLateralReceived, yards)

	detail := &core.LateralDetail{Chain: names, Completed: n}
	out.Carrier = carrier
	out.Laterals = n
	out.Yards, out.Result = yards, res
	out.Success = success(s.Situation, yards, res)
	if res == core.ResultTouchdown {
		c.off(carrier, StatTouchdown, 0)
		out.Description = fmt.Sprintf("%d-lateral chain, %s carries it home for a %d-yard touchdown", n, carrier.Name, yards)
	} else {
		tackler := r.weighted(s.Defense, func(e roster.Effective) float64 { return e.Tackle + e.Speed })
		detail.Tackler = tackler.Name
		c.def(tackler, StatTackle, 0)
		if yards < 0 {
			c.def(tackler, StatTackleForLoss, 0)
		}
		out.Description = fmt.Sprintf("%d-lateral chain ends with %s for %s", n, carrier.Name, yardsPhrase(yards))
		if res == core.ResultFirstDown {
			out.Description += ", first down"
		}
	}
	out.Lateral = detail
	settle(&out)
	out.Credits = c
	return out
}

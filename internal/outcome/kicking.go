package outcome

import (
	"fmt"

	"github.com/viperball/matchsim/internal/playcall"
	"github.com/viperball/matchsim/internal/roster"
	"github.com/viperball/matchsim/internal/style"
	"github.com/viperball/matchsim/pkg/core"
)

// Kick pass model.
const (
	completionBase   = 0.66
	interceptionBase = 0.035
	noFlyPenalty     = 0.10
	hurryPenalty     = 0.05
	airMean          = 13.0
	airSpread        = 6.0
	minAir           = 4
	yacMean          = 4.0
	intReturnMean    = 8.0
	intReturnTD      = 0.10
	maxPick          = 0.15
)

// Special teams model.
const (
	blockChance     = 0.025
	muffChance      = 0.025
	puntReturnTD    = 0.012
	puntReturnMean  = 9.0
	pindownChance   = 0.5
	touchbackSpot   = 20
	missedKickFloor = 20
	puntMean        = 42.0
	puntSpread      = 7.0
	kickoffStart    = 35.0
	kickoffSpread   = 7.0
	kickoffMinStart = 10
	kickoffMaxStart = 50
	blockedKickSpot = 7
	blockedPuntSpot = 8
	botchedKickSpot = 3
)

func (r *Resolver) kickPass(s Snap) Outcome {
	eff := effectOf(s.Call)
	zb := first(s.Offense, roster.Zeroback)
	receiver := r.weighted(at(s.Offense, roster.Viper, roster.Wingback, roster.Slotback, roster.Halfback),
		func(e roster.Effective) float64 { return e.Hands + e.Speed*0.5 })
	if receiver == nil {
		receiver = zb
	}
	ek, er := zb.Effective(), receiver.Effective()
	coef := s.coefficient(core.FamilyKickPass)

	out := Outcome{Family: core.FamilyKickPass, Carrier: zb}
	var c credits
	detail := &core.KickPassDetail{Kicker: zb.Name, Receiver: receiver.Name}
	out.KickPass = detail

	rushers := at(s.Defense, roster.DefensiveLine, roster.Linebacker)
	if r.chance(eff.Sack) {
		sacker := r.weighted(rushers, func(e roster.Effective) float64 { return e.Tackle + e.Speed })
		yards, res := advance(s.Situation, -(5 + r.rng.IntN(5)))
		detail.Sacked = true
		c.def(sacker, StatSack, 0)
		c.def(sacker, StatTackle, 0)
		c.def(sacker, StatTackleForLoss, 0)
		out.Yards, out.Result = yards, res
		out.Description = fmt.Sprintf("%s is sacked by %s for %s", zb.Name, name(sacker), yardsPhrase(yards))
		if res == core.ResultSafety {
			out.Description += ", safety"
		}
		settle(&out)
		out.Credits = c
		return out
	}

	p := (completionBase + (ek.Kick-70)*0.004 + (er.Hands-70)*0.004) * coef
	p += eff.Completion
	if s.NoFlyZone {
		p -= noFlyPenalty
	}
	if r.chance(eff.Hurry) {
		c.def(r.weighted(rushers, func(e roster.Effective) float64 { return e.Speed }), StatHurry, 0)
		p -= hurryPenalty
	}
	if stop := s.DefenseStyle.KickPassStop; stop > 0 {
		p *= 0.5 + 0.5*stop
	}
	p = min(max(p*r.weather.KickAccuracy, 0.1), 0.9)

	takeaway := s.DefenseStyle.Takeaway
	if takeaway <= 0 {
		takeaway = 1
	}
	pick := interceptionBase + (70-ek.Decision)*0.001 + max(0, 1-coef)*0.05 + eff.Pick + s.TurnoverRisk
	pick = min(max(pick*takeaway, 0.005), maxPick)

	air := min(max(round(r.normal(airMean, airSpread)), minAir), 100-s.FieldPosition)
	detail.AirYards = air
	c.off(zb, StatKickPassAttempt, 0)

	if r.chance(pick) {
		hawk := r.weighted(at(s.Defense, roster.Keeper, roster.Linebacker),
			func(e roster.Effective) float64 { return e.Hands + e.Awareness })
		detail.Interceptor = name(hawk)
		c.off(zb, StatKickPassInterception, 0)
		c.def(hawk, StatInterception, 0)
		out.Result = core.ResultKickPassIntercepted
		if r.chance(intReturnTD) {
			out.Result = core.ResultIntReturnTD
			out.Score = Score{Kind: ScoreTouchdown, Defense: true}
			out.Next = NextKickoff
			detail.ReturnYards = s.FieldPosition + air
			c.def(hawk, StatReturnTouchdown, 0)
			c.def(hawk, StatTouchdown, 0)
			out.Description = fmt.Sprintf("%s's kick pass is intercepted by %s and returned for a touchdown", zb.Name, name(hawk))
			out.Credits = c
			return out
		}
		ret := round(r.exp(intReturnMean))
		detail.ReturnYards = ret
		out.Next = NextTurnover
		out.Spot = min(100-min(s.FieldPosition+air, 99)+ret, 99)
		out.Description = fmt.Sprintf("%s's kick pass for %s is intercepted by %s, returned %s",
			zb.Name, receiver.Name, name(hawk), yardsPhrase(ret))
		out.Credits = c
		return out
	}

	if !r.chance(p) {
		tackler := r.weighted(s.Defense, func(e roster.Effective) float64 { return e.Awareness })
		out.Result = core.ResultIncomplete
		out.Description = fmt.Sprintf("%s's kick pass for %s falls incomplete, broken up by %s", zb.Name, receiver.Name, name(tackler))
		out.Credits = c
		return out
	}

	yacScale := eff.KickPass * (er.Speed / 75)
	if stop := s.DefenseStyle.KickPassStop; stop > 0 {
		yacScale *= stop
	}
	yac := round(r.exp(yacMean * yacScale))
	yards, res := advance(s.Situation, air+yac)
	detail.Complete = true
	detail.YardsAfterCatch = max(yards-air, 0)
	out.Carrier = receiver
	out.Yards, out.Result = yards, res
	out.Success = success(s.Situation, yards, res)
	c.off(zb, StatKickPassCompletion, yards)
	c.off(receiver, StatReception, yards)
	if res == core.ResultTouchdown {
		c.off(zb, StatKickPassTouchdown, 0)
		c.off(receiver, StatTouchdown, 0)
		out.Description = fmt.Sprintf("%s kick pass to %s, %d yards for a touchdown", zb.Name, receiver.Name, yards)
	} else {
		tackler := r.weighted(s.Defense, func(e roster.Effective) float64 { return e.Tackle + e.Speed })
		c.def(tackler, StatTackle, 0)
		out.Description = fmt.Sprintf("%s kick pass complete to %s for %s", zb.Name, receiver.Name, yardsPhrase(yards))
		if res == core.ResultFirstDown {
			out.Description += ", first down"
		}
	}
	settle(&out)
	out.Credits = c
	return out
}

// KickChance is the make probability of a snap or place kick from a field
// position, before weather.
func KickChance(t core.PlayType, fieldPosition int, kick float64) (distance int, p float64) {
	toGoal := 100 - fieldPosition
	if t == core.PlaySnapKick {
		distance = toGoal + playcall.SnapKickSetback
		p = 0.97 - float64(distance-18)*(0.016-kick*0.00012)
	} else {
		distance = toGoal + playcall.PlaceKickSetback
		p = 0.99 - float64(distance-20)*(0.012-kick*0.0001)
	}
	return distance, min(max(p, 0.02), 0.99)
}

// botched handles a mishandled snap or hold on a kicking play.
func (r *Resolver) botched(s Snap, holder *roster.GamePlayer, out *Outcome, c *credits) bool {
	if !r.chance(s.TurnoverRisk * r.weather.Fumble) {
		return false
	}
	recoverer := r.weighted(s.Defense, func(e roster.Effective) float64 { return e.Awareness })
	c.off(holder, StatFumble, 0)
	c.off(holder, StatFumbleLost, 0)
	c.def(recoverer, StatFumbleRecovery, 0)
	out.Carrier = holder
	out.Yards = -min(botchedKickSpot, s.FieldPosition-1)
	out.Result = core.ResultFumble
	out.Score = Score{Kind: ScoreStrike, Defense: true}
	out.Next = NextTurnover
	out.Spot = flip(s.FieldPosition + out.Yards)
	out.Description = fmt.Sprintf("The snap gets away from %s, %s recovers for the strike", holder.Name, name(recoverer))
	out.Credits = *c
	return true
}

func (r *Resolver) fieldKick(s Snap) Outcome {
	k := kicker(s.Offense)
	ek := k.Effective()
	snap := s.PlayType == core.PlaySnapKick
	attempt, made, label, score := StatPlaceKickAttempt, StatPlaceKickMade, "place kick", ScorePlaceKick
	if snap {
		attempt, made, label, score = StatSnapKickAttempt, StatSnapKickMade, "snap kick", ScoreSnapKick
	}

	dist, p := KickChance(s.PlayType, s.FieldPosition, ek.Kick)
	p = min(max(p*r.weather.KickAccuracy, 0.02), 0.99)
	detail := &core.KickDetail{Kicker: k.Name, Distance: dist}
	out := Outcome{Carrier: k, Kick: detail}
	var c credits
	if r.botched(s, k, &out, &c) {
		return out
	}
	c.off(k, attempt, dist)

	blockRate := s.DefenseSpecialTeams.BlockRate
	if blockRate <= 0 {
		blockRate = 1
	}
	if r.chance(blockChance * blockRate) {
		blocker := r.weighted(at(s.Defense, roster.DefensiveLine, roster.Linebacker), func(e roster.Effective) float64 { return e.Speed + e.Power })
		detail.Blocked = true
		detail.BlockedBy = name(blocker)
		c.def(blocker, StatKickBlocked, 0)
		out.Result = core.ResultBlockedKick
		out.Next = NextTurnover
		out.Spot = flip(s.FieldPosition - blockedKickSpot)
		out.BonusDrive = true
		out.Description = fmt.Sprintf("%s's %d-yard %s is blocked by %s", k.Name, dist, label, name(blocker))
		out.Credits = c
		return out
	}

	if r.chance(p) {
		detail.Made = true
		c.off(k, made, dist)
		out.Result = core.ResultSuccessfulKick
		out.Score = Score{Kind: score}
		out.Next = NextKickoff
		out.Description = fmt.Sprintf("%s's %d-yard %s is good", k.Name, dist, label)
		out.Credits = c
		return out
	}

	out.Result = core.ResultMissedKick
	out.Next = NextTurnover
	out.Spot = max(missedKickFloor, 100-s.FieldPosition)
	out.Description = fmt.Sprintf("%s's %d-yard %s is no good", k.Name, dist, label)
	out.Credits = c
	return out
}

func (r *Resolver) punt(s Snap) Outcome {
	k := kicker(s.Offense)
	ek := k.Effective()
	detail := &core.PuntDetail{Punter: k.Name}
	out := Outcome{Carrier: k, Punt: detail}
	var c credits
	if r.botched(s, k, &out, &c) {
		return out
	}
	out.Next = NextTurnover

	blockRate := s.DefenseSpecialTeams.BlockRate
	if blockRate <= 0 {
		blockRate = 1
	}
	if r.chance(blockChance * blockRate) {
		blocker := r.weighted(at(s.Defense, roster.DefensiveLine, roster.Linebacker), func(e roster.Effective) float64 { return e.Speed + e.Power })
		detail.Blocked = true
		c.off(k, StatPunt, 0)
		c.def(blocker, StatKickBlocked, 0)
		out.Result = core.ResultBlockedPunt
		out.Spot = flip(s.FieldPosition - blockedPuntSpot)
		out.BonusDrive = true
		out.Description = fmt.Sprintf("%s's punt is blocked by %s", k.Name, name(blocker))
		out.Credits = c
		return out
	}

	dist := max(round(r.normal(puntMean+(ek.Kick-60)*0.2, puntSpread)*r.weather.KickDistance), 15)
	land := s.FieldPosition + dist
	returner := returnerOf(s.Defense)
	cover := s.OffenseSpecialTeams.Coverage
	if cover <= 0 {
		cover = 1
	}
	boost := s.DefenseSpecialTeams.ReturnBoost
	if boost <= 0 {
		boost = 1
	}

	if land >= 100 {
		dist = 100 - s.FieldPosition
		detail.Distance = dist
		c.off(k, StatPunt, dist)
		out.Spot = touchbackSpot
		pin := s.OffenseSpecialTeams.PindownRate
		if pin <= 0 {
			pin = 1
		}
		if r.chance(pindownChance * pin) {
			detail.Pindown = true
			out.Result = core.ResultPindown
			out.Score = Score{Kind: ScorePindown}
			out.Description = fmt.Sprintf("%s punts %d yards into the end zone, pinned down for a point", k.Name, dist)
		} else {
			detail.Touchback = true
			out.Result = core.ResultPunt
			out.Description = fmt.Sprintf("%s punts %d yards, returned out of the end zone to the %d", k.Name, dist, touchbackSpot)
		}
		out.Credits = c
		return out
	}

	detail.Distance = dist
	c.off(k, StatPunt, dist)
	detail.Returner = name(returner)

	if r.chance(muffChance) {
		recoverer := r.weighted(s.Offense, func(e roster.Effective) float64 { return e.Speed })
		detail.Muffed = true
		c.def(returner, StatFumble, 0)
		c.def(returner, StatFumbleLost, 0)
		c.off(recoverer, StatFumbleRecovery, 0)
		out.Result = core.ResultMuffedPunt
		out.Next = NextRetain
		out.Spot = clampField(land)
		out.BonusDrive = true
		out.Description = fmt.Sprintf("%s punts %d yards, %s muffs it and %s recovers", k.Name, dist, name(returner), name(recoverer))
		out.Credits = c
		return out
	}

	ability := 1.0
	if returner != nil {
		ability = returner.Archetype.Modifiers().ReturnAbility
	}
	if r.chance(puntReturnTD * boost) {
		ret := land
		detail.ReturnYards = ret
		c.def(returner, StatPuntReturn, ret)
		c.def(returner, StatReturnTouchdown, 0)
		c.def(returner, StatTouchdown, 0)
		out.Result = core.ResultPuntReturnTD
		out.Score = Score{Kind: ScoreTouchdown, Defense: true}
		out.Next = NextKickoff
		out.Description = fmt.Sprintf("%s punts %d yards, %s takes it back for a touchdown", k.Name, dist, name(returner))
		out.Credits = c
		return out
	}

	ret := round(r.exp(puntReturnMean * ability * boost / cover))
	spot := min(100-land+ret, 99)
	ret = spot - (100 - land)
	detail.ReturnYards = ret
	c.def(returner, StatPuntReturn, ret)
	tackler := r.weighted(s.Offense, func(e roster.Effective) float64 { return e.Tackle + e.Speed })
	c.off(tackler, StatTackle, 0)
	out.Result = core.ResultPunt
	out.Spot = spot
	out.Description = fmt.Sprintf("%s punts %d yards, %s returns it %s", k.Name, dist, name(returner), yardsPhrase(ret))
	out.Credits = c
	return out
}

// returnerOf picks the fastest keeper, or the fastest player if none.
func returnerOf(lineup []*roster.GamePlayer) *roster.GamePlayer {
	pool := at(lineup, roster.Keeper)
	if len(pool) == 0 {
		pool = lineup
	}
	var best *roster.GamePlayer
	for _, p := range pool {
		if best == nil || p.Effective().Speed > best.Effective().Speed {
			best = p
		}
	}
	return best
}

// Kickoff is a resolved kickoff. Credits mark the receiving team as the
// offense.
type Kickoff struct {
	Spot        int
	Returner    *roster.GamePlayer
	ReturnYards int
	Description string
	Credits     []Credit
}

// Kickoff resolves a kickoff into the receiving team's starting spot.
func (r *Resolver) Kickoff(kicking, receiving []*roster.GamePlayer, kickTeams, returnTeams style.SpecialTeamsProfile) Kickoff {
	returner := returnerOf(receiving)
	mean := kickoffStart
	if returner != nil {
		mean *= 0.8 + 0.2*returner.Archetype.Modifiers().ReturnAbility
	}
	if returnTeams.ReturnBoost > 0 {
		mean *= 0.75 + 0.25*returnTeams.ReturnBoost
	}
	if kickTeams.Coverage > 0 {
		mean /= 0.75 + 0.25*kickTeams.Coverage
	}
	spot := min(max(round(r.normal(mean, kickoffSpread)), kickoffMinStart), kickoffMaxStart)

	var c credits
	c.off(returner, StatKickReturn, spot)
	tackler := r.weighted(kicking, func(e roster.Effective) float64 { return e.Tackle + e.Speed })
	c.def(tackler, StatTackle, 0)
	return Kickoff{
		Spot:        spot,
		Returner:    returner,
		ReturnYards: spot,
		Description: fmt.Sprintf("%s returns the kickoff to the %d", name(returner), spot),
		Credits:     c,
	}
}

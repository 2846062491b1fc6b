package outcome

import "github.com/viperball/matchsim/internal/roster"

// Stat is one countable contribution by a player on a play.
type Stat uint8

const (
	StatCarry Stat = iota
	StatLateralThrown
	StatLateralReceived
	StatKickPassAttempt
	StatKickPassCompletion
	StatKickPassTouchdown
	StatKickPassInterception
	StatReception
	StatTouchdown
	StatFumble
	StatFumbleLost
	StatSnapKickAttempt
	StatSnapKickMade
	StatPlaceKickAttempt
	StatPlaceKickMade
	StatPunt
	StatTackle
	StatTackleForLoss
	StatSack
	StatHurry
	StatInterception
	StatFumbleRecovery
	StatKickBlocked
	StatPuntReturn
	StatKickReturn
	StatReturnTouchdown
)

// Credit attributes a stat to a player. Offense is true when the player was
// on the possessing team at the snap.
type Credit struct {
	Player  *roster.GamePlayer
	Offense bool
	Stat    Stat
	Yards   int
}

type credits []Credit

func (c *credits) off(p *roster.GamePlayer, s Stat, yards int) {
	if p == nil {
		return
	}
	*c = append(*c, Credit{Player: p, Offense: true, Stat: s, Yards: yards})
}

func (c *credits) def(p *roster.GamePlayer, s Stat, yards int) {
	if p == nil {
		return
	}
	*c = append(*c, Credit{Player: p, Offense: false, Stat: s, Yards: yards})
}

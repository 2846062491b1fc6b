// pkg/core/play.go
package core

// Side identifies one of the two teams in a game.
type Side string

const (
	Home Side = "home"
	Away Side = "away"
)

// Opponent returns the other side.
func (s Side) Opponent() Side {
	if s == Home {
		return Away
	}
	return Home
}

// Decision is the zeroback's choice of play family.
type Decision string

const (
	DecisionGive    Decision = "give"
	DecisionKeep    Decision = "keep"
	DecisionPitch   Decision = "pitch"
	DecisionKick    Decision = "kick"
	DecisionLateral Decision = "lateral"
)

// Decisions lists every decision in weight order.
var Decisions = []Decision{DecisionGive, DecisionKeep, DecisionPitch, DecisionKick, DecisionLateral}

// PlayType is the resolved class of a snap.
type PlayType string

const (
	PlayRun       PlayType = "run"
	PlayTrick     PlayType = "trick"
	PlayLateral   PlayType = "lateral"
	PlayKickPass  PlayType = "kick_pass"
	PlaySnapKick  PlayType = "snap_kick"
	PlayPlaceKick PlayType = "place_kick"
	PlayPunt      PlayType = "punt"
)

// IsKick reports whether the play is a scoring kick or a punt.
func (t PlayType) IsKick() bool {
	return t == PlaySnapKick || t == PlayPlaceKick || t == PlayPunt
}

// DefensiveCall is the front the defense shows for a snap.
type DefensiveCall string

const (
	CallBase  DefensiveCall = "base"
	CallBlitz DefensiveCall = "blitz"
	CallSpy   DefensiveCall = "spy"
	CallDrop  DefensiveCall = "drop"
	CallStack DefensiveCall = "stack"
)

// Result is the outcome code stamped on a play.
type Result string

const (
	ResultGain                Result = "gain"
	ResultFirstDown           Result = "first_down"
	ResultIncomplete          Result = "incomplete"
	ResultTouchdown           Result = "touchdown"
	ResultSuccessfulKick      Result = "successful_kick"
	ResultMissedKick          Result = "missed_kick"
	ResultBlockedKick         Result = "blocked_kick"
	ResultPunt                Result = "punt"
	ResultPindown             Result = "pindown"
	ResultBlockedPunt         Result = "blocked_punt"
	ResultMuffedPunt          Result = "muffed_punt"
	ResultPuntReturnTD        Result = "punt_return_td"
	ResultFumble              Result = "fumble"
	ResultChaosRecovery       Result = "chaos_recovery"
	ResultLateralIntercepted  Result = "lateral_intercepted"
	ResultKickPassIntercepted Result = "kick_pass_intercepted"
	ResultIntReturnTD         Result = "int_return_td"
	ResultSafety              Result = "safety"
	ResultTurnoverOnDowns     Result = "turnover_on_downs"
)

// FatigueSnapshot records fatigue right after a play.
// Home and Away are roster-wide averages.
type FatigueSnapshot struct {
	Carrier float64 `json:"carrier"`
	Home    float64 `json:"home"`
	Away    float64 `json:"away"`
}

// Play is one snap in the play-by-play. Down, distance and field position are
// the pre-snap values from the possessing team's perspective. Exactly one of
// the detail pointers is set, matching PlayType.
type Play struct {
	Number        int             `json:"play_number"`
	Quarter       int             `json:"quarter"`
	TimeRemaining int             `json:"time_remaining"`
	Possession    Side            `json:"possession"`
	Down          int             `json:"down"`
	YardsToGo     int             `json:"yards_to_go"`
	FieldPosition int             `json:"field_position"`
	Decision      Decision        `json:"decision"`
	PlayType      PlayType        `json:"play_type"`
	PlayFamily    string          `json:"play_family"`
	DefensiveCall DefensiveCall   `json:"defensive_call"`
	Description   string          `json:"description"`
	Yards         int             `json:"yards"`
	Result        Result          `json:"result"`
	Laterals      int             `json:"laterals"`
	HomeScore     float64         `json:"home_score"`
	AwayScore     float64         `json:"away_score"`
	EPA           float64         `json:"epa"`
	Fatigue       FatigueSnapshot `json:"fatigue"`
	Recovery      string          `json:"recovery,omitempty"`

	Run      *RunDetail      `json:"run,omitempty"`
	Lateral  *LateralDetail  `json:"lateral,omitempty"`
	KickPass *KickPassDetail `json:"kick_pass,omitempty"`
	Kick     *KickDetail     `json:"kick,omitempty"`
	Punt     *PuntDetail     `json:"punt,omitempty"`
}

// RunDetail covers give, keep, pitch and trick plays.
type RunDetail struct {
	Carrier     string `json:"carrier"`
	Tackler     string `json:"tackler,omitempty"`
	Breakaway   bool   `json:"breakaway,omitempty"`
	Fumbled     bool   `json:"fumbled,omitempty"`
	RecoveredBy string `json:"recovered_by,omitempty"`
}

// LateralDetail covers lateral chains.
type LateralDetail struct {
	Chain     []string `json:"chain"`
	Completed int      `json:"completed"`
	Tackler   string   `json:"tackler,omitempty"`
	LostBy    string   `json:"lost_by,omitempty"`
	TakenBy   string   `json:"taken_by,omitempty"`
}

// KickPassDetail covers forward kick passes.
type KickPassDetail struct {
	Kicker          string `json:"kicker"`
	Receiver        string `json:"receiver"`
	Complete        bool   `json:"complete"`
	AirYards        int    `json:"air_yards"`
	YardsAfterCatch int    `json:"yards_after_catch"`
	Sacked          bool   `json:"sacked,omitempty"`
	Interceptor     string `json:"interceptor,omitempty"`
	ReturnYards     int    `json:"return_yards,omitempty"`
}

// KickDetail covers snap kicks and place kicks.
type KickDetail struct {
	Kicker    string `json:"kicker"`
	Distance  int    `json:"distance"`
	Made      bool   `json:"made"`
	Blocked   bool   `json:"blocked,omitempty"`
	BlockedBy string `json:"blocked_by,omitempty"`
}

// PuntDetail covers punts and their returns.
type PuntDetail struct {
	Punter      string `json:"punter"`
	Distance    int    `json:"distance"`
	Returner    string `json:"returner,omitempty"`
	ReturnYards int    `json:"return_yards,omitempty"`
	Blocked     bool   `json:"blocked,omitempty"`
	Muffed      bool   `json:"muffed,omitempty"`
	Touchback   bool   `json:"touchback,omitempty"`
	Pindown     bool   `json:"pindown,omitempty"`
}

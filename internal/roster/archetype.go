package roster

import "strings"

// Archetype is a closed set of player profiles. Every value has an entry in
// the modifier table, so lookups never fall back at runtime.
type Archetype uint8

const (
	ArchetypeNone Archetype = iota

	KickingZB
	RunningZB
	DistributorZB
	DualThreatZB
	GameManagerZB

	ReceivingViper
	PowerViper
	DecoyViper

	SpeedFlanker
	PowerFlanker
	ElusiveFlanker
	ReliableFlanker

	ReturnKeeper
	CoverageKeeper

	archetypeCount
)

// Modifiers tune play calling and outcomes for an archetype. A value of 1.0
// is neutral.
type Modifiers struct {
	KickFrequency   float64
	LateralTendency float64
	TurnoverRate    float64
	Tempo           float64
	Conservative    bool
	Yards           float64
	Breakaway       float64
	ReturnAbility   float64
}

// Neutral is the profile of ArchetypeNone.
var Neutral = Modifiers{
	KickFrequency:   1.0,
	LateralTendency: 1.0,
	TurnoverRate:    1.0,
	Tempo:           1.0,
	Yards:           1.0,
	Breakaway:       1.0,
	ReturnAbility:   1.0,
}

var archetypeKeys = [archetypeCount]string{
	ArchetypeNone:   "none",
	KickingZB:       "kicking_zb",
	RunningZB:       "running_zb",
	DistributorZB:   "distributor_zb",
	DualThreatZB:    "dual_threat_zb",
	GameManagerZB:   "game_manager_zb",
	ReceivingViper:  "receiving_viper",
	PowerViper:      "power_viper",
	DecoyViper:      "decoy_viper",
	SpeedFlanker:    "speed_flanker",
	PowerFlanker:    "power_flanker",
	ElusiveFlanker:  "elusive_flanker",
	ReliableFlanker: "reliable_flanker",
	ReturnKeeper:    "return_keeper",
	CoverageKeeper:  "coverage_keeper",
}

var modifierTable = [archetypeCount]Modifiers{
	ArchetypeNone: Neutral,
	KickingZB: {
		KickFrequency: 1.6, LateralTendency: 0.9, TurnoverRate: 0.9, Tempo: 0.95,
		Yards: 0.95, Breakaway: 0.9, ReturnAbility: 1.0,
	},
	RunningZB: {
		KickFrequency: 0.7, LateralTendency: 1.0, TurnoverRate: 1.05, Tempo: 1.05,
		Yards: 1.08, Breakaway: 1.15, ReturnAbility: 1.0,
	},
	DistributorZB: {
		KickFrequency: 0.9, LateralTendency: 1.4, TurnoverRate: 1.1, Tempo: 1.1,
		Yards: 1.0, Breakaway: 1.0, ReturnAbility: 1.0,
	},
	DualThreatZB: {
		KickFrequency: 1.2, LateralTendency: 1.15, TurnoverRate: 1.0, Tempo: 1.05,
		Yards: 1.04, Breakaway: 1.05, ReturnAbility: 1.0,
	},
	GameManagerZB: {
		KickFrequency: 1.2, LateralTendency: 0.8, TurnoverRate: 0.75, Tempo: 0.9,
		Conservative: true, Yards: 0.97, Breakaway: 0.9, ReturnAbility: 1.0,
	},
	ReceivingViper: {
		KickFrequency: 1.0, LateralTendency: 1.1, TurnoverRate: 0.95, Tempo: 1.0,
		Yards: 1.05, Breakaway: 1.1, ReturnAbility: 1.05,
	},
	PowerViper: {
		KickFrequency: 1.0, LateralTendency: 0.9, TurnoverRate: 0.9, Tempo: 0.95,
		Yards: 1.1, Breakaway: 0.85, ReturnAbility: 0.9,
	},
	DecoyViper: {
		KickFrequency: 1.0, LateralTendency: 1.2, TurnoverRate: 1.05, Tempo: 1.05,
		Yards: 0.95, Breakaway: 1.2, ReturnAbility: 1.0,
	},
	SpeedFlanker: {
		KickFrequency: 1.0, LateralTendency: 1.1, TurnoverRate: 1.1, Tempo: 1.05,
		Yards: 1.0, Breakaway: 1.4, ReturnAbility: 1.2,
	},
	PowerFlanker: {
		KickFrequency: 1.0, LateralTendency: 0.85, TurnoverRate: 0.85, Tempo: 0.95,
		Yards: 1.12, Breakaway: 0.8, ReturnAbility: 0.9,
	},
	ElusiveFlanker: {
		KickFrequency: 1.0, LateralTendency: 1.15, TurnoverRate: 1.0, Tempo: 1.0,
		Yards: 1.05, Breakaway: 1.25, ReturnAbility: 1.15,
	},
	ReliableFlanker: {
		KickFrequency: 1.0, LateralTendency: 1.0, TurnoverRate: 0.7, Tempo: 1.0,
		Yards: 1.0, Breakaway: 0.95, ReturnAbility: 1.0,
	},
	ReturnKeeper: {
		KickFrequency: 1.0, LateralTendency: 1.0, TurnoverRate: 1.0, Tempo: 1.0,
		Yards: 1.0, Breakaway: 1.2, ReturnAbility: 1.35,
	},
	CoverageKeeper: {
		KickFrequency: 1.0, LateralTendency: 1.0, TurnoverRate: 1.0, Tempo: 1.0,
		Yards: 1.0, Breakaway: 1.0, ReturnAbility: 0.9,
	},
}

// String returns the archetype's file key.
func (a Archetype) String() string {
	if a >= archetypeCount {
		return archetypeKeys[ArchetypeNone]
	}
	return archetypeKeys[a]
}

// Modifiers returns the static profile for the archetype.
func (a Archetype) Modifiers() Modifiers {
	if a >= archetypeCount {
		return Neutral
	}
	return modifierTable[a]
}

// ParseArchetype maps a file key to an archetype. An empty key is
// ArchetypeNone; an unknown key reports false.
func ParseArchetype(s string) (Archetype, bool) {
	key := strings.ToLower(strings.TrimSpace(s))
	if key == "" {
		return ArchetypeNone, true
	}
	for a := ArchetypeNone; a < archetypeCount; a++ {
		if archetypeKeys[a] == key {
			return a, true
		}
	}
	return ArchetypeNone, false
}

// Archetypes returns every archetype that fits the position.
func Archetypes(p Position) []Archetype {
	switch p {
	case Zeroback:
		return []Archetype{KickingZB, RunningZB, DistributorZB, DualThreatZB, GameManagerZB}
	case Viper:
		return []Archetype{ReceivingViper, PowerViper, DecoyViper}
	case Halfback, Wingback, Slotback:
		return []Archetype{SpeedFlanker, PowerFlanker, ElusiveFlanker, ReliableFlanker}
	case Keeper:
		return []Archetype{ReturnKeeper, CoverageKeeper}
	default:
		return []Archetype{ArchetypeNone}
	}
}

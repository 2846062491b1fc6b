// Package style holds the closed sets of offensive systems, defensive
// schemes, special-teams schemes and weather, each with a static profile.
package style

import "strings"

// Offense is an offensive system.
type Offense uint8

const (
	Balanced Offense = iota
	GroundPound
	LateralSpread
	BootRaid
	Territorial
	ChainGang
	offenseCount
)

// Defense is a defensive scheme.
type Defense uint8

const (
	BaseDefense Defense = iota
	PressureDefense
	ContainDefense
	ZoneShell
	Swarm
	defenseCount
)

// SpecialTeams is a kicking-game scheme.
type SpecialTeams uint8

const (
	Aces SpecialTeams = iota
	IronCurtain
	LightningReturns
	CoffinCorner
	specialTeamsCount
)

// Weather is the game-day condition.
type Weather uint8

const (
	Clear Weather = iota
	Rain
	Snow
	Wind
	Heat
	Fog
	weatherCount
)

// Defaults used when a key is missing or unknown.
const (
	DefaultOffense      = Balanced
	DefaultDefense      = BaseDefense
	DefaultSpecialTeams = Aces
	DefaultWeather      = Clear
)

// OffenseProfile scales the zeroback's family weights and sets the pace.
type OffenseProfile struct {
	Give, Keep, Pitch, Kick, Lateral float64
	KickPassBias                     float64
	TrickRate                        float64
	Tempo                            float64
}

// DefenseProfile scales opponent yardage per family and sets how the
// defense calls fronts and adapts.
type DefenseProfile struct {
	RunStop        float64
	LateralStop    float64
	KickPassStop   float64
	Blitz          float64
	Takeaway       float64
	AdaptationRate float64
}

// SpecialTeamsProfile tunes the kicking game for the team using it.
type SpecialTeamsProfile struct {
	BlockRate   float64
	ReturnBoost float64
	Coverage    float64
	PindownRate float64
}

// WeatherProfile applies to both teams.
type WeatherProfile struct {
	Fumble       float64
	KickAccuracy float64
	KickDistance float64
	LateralRisk  float64
	Fatigue      float64
}

var offenseKeys = [offenseCount]string{
	Balanced:      "balanced",
	GroundPound:   "ground_pound",
	LateralSpread: "lateral_spread",
	BootRaid:      "boot_raid",
	Territorial:   "territorial",
	ChainGang:     "chain_gang",
}

var offenseProfiles = [offenseCount]OffenseProfile{
	Balanced:      {Give: 1, Keep: 1, Pitch: 1, Kick: 1, Lateral: 1, KickPassBias: 1, TrickRate: 0.03, Tempo: 1},
	GroundPound:   {Give: 1.3, Keep: 1.1, Pitch: 0.8, Kick: 0.8, Lateral: 0.6, KickPassBias: 0.7, TrickRate: 0.02, Tempo: 0.92},
	LateralSpread: {Give: 0.8, Keep: 0.9, Pitch: 1.2, Kick: 0.9, Lateral: 2.2, KickPassBias: 0.9, TrickRate: 0.05, Tempo: 1.08},
	BootRaid:      {Give: 0.85, Keep: 0.9, Pitch: 1.0, Kick: 1.6, Lateral: 0.9, KickPassBias: 1.6, TrickRate: 0.03, Tempo: 1.05},
	Territorial:   {Give: 1.0, Keep: 0.9, Pitch: 0.9, Kick: 1.5, Lateral: 0.7, KickPassBias: 0.6, TrickRate: 0.02, Tempo: 0.95},
	ChainGang:     {Give: 0.9, Keep: 1.0, Pitch: 1.1, Kick: 0.9, Lateral: 1.5, KickPassBias: 1.1, TrickRate: 0.08, Tempo: 1.15},
}

var defenseKeys = [defenseCount]string{
	BaseDefense:     "base_defense",
	PressureDefense: "pressure_defense",
	ContainDefense:  "contain_defense",
	ZoneShell:       "zone_shell",
	Swarm:           "swarm",
}

var defenseProfiles = [defenseCount]DefenseProfile{
	BaseDefense:     {RunStop: 1, LateralStop: 1, KickPassStop: 1, Blitz: 1, Takeaway: 1, AdaptationRate: 1},
	PressureDefense: {RunStop: 0.95, LateralStop: 1.05, KickPassStop: 0.95, Blitz: 1.8, Takeaway: 1.15, AdaptationRate: 0.9},
	ContainDefense:  {RunStop: 0.92, LateralStop: 0.9, KickPassStop: 1.08, Blitz: 0.6, Takeaway: 0.9, AdaptationRate: 1.1},
	ZoneShell:       {RunStop: 1.08, LateralStop: 1.0, KickPassStop: 0.85, Blitz: 0.5, Takeaway: 1.1, AdaptationRate: 1.0},
	Swarm:           {RunStop: 0.97, LateralStop: 0.88, KickPassStop: 1.05, Blitz: 1.2, Takeaway: 1.05, AdaptationRate: 1.3},
}

var specialTeamsKeys = [specialTeamsCount]string{
	Aces:             "aces",
	IronCurtain:      "iron_curtain",
	LightningReturns: "lightning_returns",
	CoffinCorner:     "coffin_corner",
}

var specialTeamsProfiles = [specialTeamsCount]SpecialTeamsProfile{
	Aces:             {BlockRate: 1, ReturnBoost: 1, Coverage: 1, PindownRate: 1},
	IronCurtain:      {BlockRate: 1.8, ReturnBoost: 0.9, Coverage: 1.05, PindownRate: 0.9},
	LightningReturns: {BlockRate: 0.8, ReturnBoost: 1.35, Coverage: 0.95, PindownRate: 0.9},
	CoffinCorner:     {BlockRate: 0.9, ReturnBoost: 0.95, Coverage: 1.15, PindownRate: 1.5},
}

var weatherKeys = [weatherCount]string{
	Clear: "clear",
	Rain:  "rain",
	Snow:  "snow",
	Wind:  "wind",
	Heat:  "heat",
	Fog:   "fog",
}

var weatherProfiles = [weatherCount]WeatherProfile{
	Clear: {Fumble: 1, KickAccuracy: 1, KickDistance: 1, LateralRisk: 1, Fatigue: 1},
	Rain:  {Fumble: 1.4, KickAccuracy: 0.9, KickDistance: 0.93, LateralRisk: 1.35, Fatigue: 1.05},
	Snow:  {Fumble: 1.3, KickAccuracy: 0.85, KickDistance: 0.88, LateralRisk: 1.25, Fatigue: 1.1},
	Wind:  {Fumble: 1.05, KickAccuracy: 0.8, KickDistance: 1.0, LateralRisk: 1.05, Fatigue: 1.0},
	Heat:  {Fumble: 1.1, KickAccuracy: 1.0, KickDistance: 1.03, LateralRisk: 1.05, Fatigue: 1.3},
	Fog:   {Fumble: 1.05, KickAccuracy: 0.92, KickDistance: 1.0, LateralRisk: 1.15, Fatigue: 1.0},
}

func (o Offense) String() string {
	if o >= offenseCount {
		return offenseKeys[DefaultOffense]
	}
	return offenseKeys[o]
}

// Profile returns the static profile of the system.
func (o Offense) Profile() OffenseProfile {
	if o >= offenseCount {
		return offenseProfiles[DefaultOffense]
	}
	return offenseProfiles[o]
}

func (d Defense) String() string {
	if d >= defenseCount {
		return defenseKeys[DefaultDefense]
	}
	return defenseKeys[d]
}

// Profile returns the static profile of the scheme.
func (d Defense) Profile() DefenseProfile {
	if d >= defenseCount {
		return defenseProfiles[DefaultDefense]
	}
	return defenseProfiles[d]
}

func (s SpecialTeams) String() string {
	if s >= specialTeamsCount {
		return specialTeamsKeys[DefaultSpecialTeams]
	}
	return specialTeamsKeys[s]
}

// Profile returns the static profile of the scheme.
func (s SpecialTeams) Profile() SpecialTeamsProfile {
	if s >= specialTeamsCount {
		return specialTeamsProfiles[DefaultSpecialTeams]
	}
	return specialTeamsProfiles[s]
}

func (w Weather) String() string {
	if w >= weatherCount {
		return weatherKeys[DefaultWeather]
	}
	return weatherKeys[w]
}

// Profile returns the static profile of the condition.
func (w Weather) Profile() WeatherProfile {
	if w >= weatherCount {
		return weatherProfiles[DefaultWeather]
	}
	return weatherProfiles[w]
}

// ParseOffense looks up an offensive system by key. Unknown keys return the
// default and false.
func ParseOffense(key string) (Offense, bool) {
	return parse(offenseKeys[:], key, DefaultOffense)
}

// ParseDefense looks up a defensive scheme by key.
func ParseDefense(key string) (Defense, bool) {
	return parse(defenseKeys[:], key, DefaultDefense)
}

// ParseSpecialTeams looks up a special-teams scheme by key.
func ParseSpecialTeams(key string) (SpecialTeams, bool) {
	return parse(specialTeamsKeys[:], key, DefaultSpecialTeams)
}

// ParseWeather looks up a weather condition by key.
func ParseWeather(key string) (Weather, bool) {
	return parse(weatherKeys[:], key, DefaultWeather)
}

// OffenseKeys lists every offensive system key.
func OffenseKeys() []string { return append([]string(nil), offenseKeys[:]...) }

// DefenseKeys lists every defensive scheme key.
func DefenseKeys() []string { return append([]string(nil), defenseKeys[:]...) }

// SpecialTeamsKeys lists every special-teams scheme key.
func SpecialTeamsKeys() []string { return append([]string(nil), specialTeamsKeys[:]...) }

// WeatherKeys lists every weather key.
func WeatherKeys() []string { return append([]string(nil), weatherKeys[:]...) }

func parse[T ~uint8](keys []string, key string, fallback T) (T, bool) {
	k := strings.ToLower(strings.TrimSpace(key))
	for i, name := range keys {
		if name == k {
			return T(i), true
		}
	}
	return fallback, false
}

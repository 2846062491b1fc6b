package roster

import "strings"

// Position is a player's roster slot.
type Position uint8

const (
	PositionUnknown Position = iota
	Zeroback
	Halfback
	Wingback
	Slotback
	Viper
	Lineman
	DefensiveLine
	Linebacker
	Keeper
	positionCount
)

var positionKeys = [positionCount]string{
	PositionUnknown: "",
	Zeroback:        "ZB",
	Halfback:        "HB",
	Wingback:        "WB",
	Slotback:        "SB",
	Viper:           "VP",
	Lineman:         "LN",
	DefensiveLine:   "DL",
	Linebacker:      "LB",
	Keeper:          "KP",
}

var positionNames = map[string]Position{
	"zeroback":       Zeroback,
	"halfback":       Halfback,
	"wingback":       Wingback,
	"slotback":       Slotback,
	"viper":          Viper,
	"lineman":        Lineman,
	"offensive_line": Lineman,
	"defensive_line": DefensiveLine,
	"linebacker":     Linebacker,
	"keeper":         Keeper,
}

// OffenseFormation is the number of players each offensive position puts on
// the field.
var OffenseFormation = []Slot{
	{Zeroback, 1},
	{Halfback, 1},
	{Wingback, 1},
	{Slotback, 1},
	{Viper, 1},
	{Lineman, 6},
}

// DefenseFormation is the number of players each defensive position puts on
// the field.
var DefenseFormation = []Slot{
	{DefensiveLine, 5},
	{Linebacker, 4},
	{Keeper, 2},
}

// Slot is a position and how many players fill it.
type Slot struct {
	Position Position
	Count    int
}

// String returns the short key, e.g. "ZB".
func (p Position) String() string {
	if p >= positionCount {
		return ""
	}
	return positionKeys[p]
}

// IsOffense reports whether the position plays on offense.
func (p Position) IsOffense() bool {
	return p >= Zeroback && p <= Lineman
}

// IsBallCarrier reports whether the position takes handoffs, pitches and laterals.
func (p Position) IsBallCarrier() bool {
	return p >= Halfback && p <= Viper
}

// ParsePosition accepts the short key or the full name, case-insensitively.
func ParsePosition(s string) (Position, bool) {
	key := strings.TrimSpace(s)
	for p := Zeroback; p < positionCount; p++ {
		if strings.EqualFold(positionKeys[p], key) {
			return p, true
		}
	}
	p, ok := positionNames[strings.ToLower(strings.ReplaceAll(key, " ", "_"))]
	return p, ok
}

// pkg/core/modifier.go
package core

// Family is a group of plays the defense adapts to.
type Family string

const (
	FamilyRun      Family = "run"
	FamilyLateral  Family = "lateral"
	FamilyKickPass Family = "kick_pass"
	FamilyTrick    Family = "trick"
)

// Families lists every adaptation family.
var Families = []Family{FamilyRun, FamilyLateral, FamilyKickPass, FamilyTrick}

// Temperature summarizes whether a defense is currently winning.
type Temperature string

const (
	TemperatureCold    Temperature = "cold"
	TemperatureNeutral Temperature = "neutral"
	TemperatureHot     Temperature = "hot"
)

// ModifierStack is a snapshot of one defense's adaptation state.
// Suppression below 1 suppresses a family, above 1 marks it vulnerable.
// Solved maps each solved family to the multiplier applied on top.
type ModifierStack struct {
	Suppression map[Family]float64 `json:"suppression"`
	Temperature Temperature        `json:"temperature"`
	Solved      map[Family]float64 `json:"solved"`
	NoFlyZone   bool               `json:"no_fly_zone"`
}

package roster

import "fmt"

// MaxFatiguePenalty is the number of rating points a fully fatigued player
// loses on traits that take the full penalty.
const MaxFatiguePenalty = 30.0

// Fatigue scaling per trait. Tackle is technique, scaled like agility and
// hands. Power and stamina are not affected.
const (
	agilityFatigueScale    = 0.5
	handsFatigueScale      = 0.5
	awarenessFatigueScale  = 0.7
	disciplineFatigueScale = 0.3
	tackleFatigueScale     = 0.5
)

// Traits are a player's base ratings on a 0-100 scale.
type Traits struct {
	Speed      int `yaml:"speed" json:"speed"`
	Power      int `yaml:"power" json:"power"`
	Agility    int `yaml:"agility" json:"agility"`
	Stamina    int `yaml:"stamina" json:"stamina"`
	Decision   int `yaml:"decision" json:"decision"`
	Awareness  int `yaml:"awareness" json:"awareness"`
	Discipline int `yaml:"discipline" json:"discipline"`
	Kick       int `yaml:"kick" json:"kick"`
	Hands      int `yaml:"hands" json:"hands"`
	Tackle     int `yaml:"tackle" json:"tackle"`
}

// Effective holds fatigue-adjusted ratings.
type Effective struct {
	Speed      float64
	Power      float64
	Agility    float64
	Stamina    float64
	Decision   float64
	Awareness  float64
	Discipline float64
	Kick       float64
	Hands      float64
	Tackle     float64
}

// Effective returns the ratings after the fatigue penalty.
func (t Traits) Effective(fatigue float64) Effective {
	p := clamp(fatigue, 0, 1) * MaxFatiguePenalty
	return Effective{
		Speed:      penalize(t.Speed, p),
		Power:      float64(t.Power),
		Agility:    penalize(t.Agility, p*agilityFatigueScale),
		Stamina:    float64(t.Stamina),
		Decision:   penalize(t.Decision, p),
		Awareness:  penalize(t.Awareness, p*awarenessFatigueScale),
		Discipline: penalize(t.Discipline, p*disciplineFatigueScale),
		Kick:       penalize(t.Kick, p),
		Hands:      penalize(t.Hands, p*handsFatigueScale),
		Tackle:     penalize(t.Tackle, p*tackleFatigueScale),
	}
}

// validate returns the name of the first trait outside [0,100].
func (t Traits) validate() error {
	for _, f := range []struct {
		name  string
		value int
	}{
		{"speed", t.Speed},
		{"power", t.Power},
		{"agility", t.Agility},
		{"stamina", t.Stamina},
		{"decision", t.Decision},
		{"awareness", t.Awareness},
		{"discipline", t.Discipline},
		{"kick", t.Kick},
		{"hands", t.Hands},
		{"tackle", t.Tackle},
	} {
		if f.value < 0 || f.value > 100 {
			return fmt.Errorf("trait %s = %d outside [0,100]", f.name, f.value)
		}
	}
	return nil
}

func penalize(base int, penalty float64) float64 {
	v := float64(base) - penalty
	if v < 0 {
		return 0
	}
	return v
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

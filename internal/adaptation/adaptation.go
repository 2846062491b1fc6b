// Package adaptation tracks how one defense adjusts to the plays it sees.
//
// Each family carries a suppression coefficient. Values below 1 mean the
// defense has the family figured out; values above 1 mean it is vulnerable.
// The layer is fed one Observation per offensive snap and is read through
// Coefficient, Temperature and NoFlyZone.
package adaptation

import (
	"fmt"
	"maps"

	"github.com/viperball/matchsim/pkg/core"
)

// Config holds the tuning knobs of the layer.
type Config struct {
	Window         int     // recent snaps considered for tightening
	MinSightings   int     // sightings within the window before tightening
	ShareThreshold float64 // window share before tightening
	TightenRate    float64
	Floor          float64
	DecayRate      float64 // pull toward 1.0 for families absent from the window
	ExplosiveYards int
	ExplosiveBump  float64
	Ceiling        float64

	SolvedAt         float64
	UnsolvedAt       float64
	SolvedMultiplier float64

	NoFlyOn  float64
	NoFlyOff float64

	TemperatureWindow int
	TemperatureMin    int
	HotAt             float64 // offensive success rate at or below which the defense runs hot
	ColdAt            float64
}

// DefaultConfig returns the calibrated settings.
func DefaultConfig() Config {
	return Config{
		Window:            8,
		MinSightings:      3,
		ShareThreshold:    0.4,
		TightenRate:       0.05,
		Floor:             0.75,
		DecayRate:         0.15,
		ExplosiveYards:    15,
		ExplosiveBump:     0.06,
		Ceiling:           1.25,
		SolvedAt:          0.82,
		UnsolvedAt:        0.9,
		SolvedMultiplier:  0.9,
		NoFlyOn:           0.78,
		NoFlyOff:          0.88,
		TemperatureWindow: 10,
		TemperatureMin:    6,
		HotAt:             0.35,
		ColdAt:            0.6,
	}
}

// Observation is one offensive snap as seen by the defense.
type Observation struct {
	Family     core.Family
	Yards      int
	Success    bool
	Quarter    int
	PlayNumber int
}

// Layer is the adaptation state of one defense. It is not safe for
// concurrent use; each game owns its layers.
type Layer struct {
	name string
	rate float64
	cfg  Config

	window      []core.Family
	outcomes    []bool
	suppression map[core.Family]float64
	solved      map[core.Family]bool
	noFly       bool
	temperature core.Temperature

	log *Log
}

// New creates a layer. Name prefixes every log line, rate scales how quickly
// the defense tightens, and log receives transitions. A nil log discards them.
func New(name string, rate float64, cfg Config, log *Log) *Layer {
	if rate <= 0 {
		rate = 1
	}
	l := &Layer{
		name:        name,
		rate:        rate,
		cfg:         cfg,
		suppression: make(map[core.Family]float64, len(core.Families)),
		solved:      make(map[core.Family]bool, len(core.Families)),
		temperature: core.TemperatureNeutral,
		log:         log,
	}
	for _, f := range core.Families {
		l.suppression[f] = 1.0
	}
	return l
}

// Observe feeds one snap into the layer.
func (l *Layer) Observe(o Observation) {
	l.window = append(l.window, o.Family)
	if len(l.window) > l.cfg.Window {
		l.window = l.window[1:]
	}
	l.outcomes = append(l.outcomes, o.Success)
	if len(l.outcomes) > l.cfg.TemperatureWindow {
		l.outcomes = l.outcomes[1:]
	}

	counts := make(map[core.Family]int, len(core.Families))
	for _, f := range l.window {
		counts[f]++
	}

	for _, f := range core.Families {
		s := l.suppression[f]
		n := counts[f]
		share := float64(n) / float64(len(l.window))
		switch {
		case n >= l.cfg.MinSightings && share >= l.cfg.ShareThreshold:
			s -= l.cfg.TightenRate * l.rate * share
		case n == 0:
			s += (1 - s) * l.cfg.DecayRate
		}
		if f == o.Family && o.Yards >= l.cfg.ExplosiveYards {
			s += l.cfg.ExplosiveBump
		}
		l.suppression[f] = clamp(s, l.cfg.Floor, l.cfg.Ceiling)
	}

	l.updateSolved(o)
	l.updateNoFly(o)
	l.updateTemperature(o)
}

func (l *Layer) updateSolved(o Observation) {
	for _, f := range core.Families {
		s := l.suppression[f]
		switch {
		case !l.solved[f] && s <= l.cfg.SolvedAt:
			l.solved[f] = true
			l.log.add(o, "%s solved %s (%.2f)", l.name, f, s)
		case l.solved[f] && s > l.cfg.UnsolvedAt:
			delete(l.solved, f)
			l.log.add(o, "%s lost the read on %s (%.2f)", l.name, f, s)
		}
	}
}

func (l *Layer) updateNoFly(o Observation) {
	s := l.suppression[core.FamilyKickPass]
	switch {
	case !l.noFly && s <= l.cfg.NoFlyOn:
		l.noFly = true
		l.log.add(o, "%s no-fly zone engaged (%.2f)", l.name, s)
	case l.noFly && s > l.cfg.NoFlyOff:
		l.noFly = false
		l.log.add(o, "%s no-fly zone lifted (%.2f)", l.name, s)
	}
}

func (l *Layer) updateTemperature(o Observation) {
	if len(l.outcomes) < l.cfg.TemperatureMin {
		return
	}
	wins := 0
	for _, ok := range l.outcomes {
		if ok {
			wins++
		}
	}
	rate := float64(wins) / float64(len(l.outcomes))
	next := core.TemperatureNeutral
	switch {
	case rate <= l.cfg.HotAt:
		next = core.TemperatureHot
	case rate >= l.cfg.ColdAt:
		next = core.TemperatureCold
	}
	if next != l.temperature {
		l.log.add(o, "%s temperature %s -> %s", l.name, l.temperature, next)
		l.temperature = next
	}
}

// Suppression returns the raw coefficient of a family.
func (l *Layer) Suppression(f core.Family) float64 {
	if s, ok := l.suppression[f]; ok {
		return s
	}
	return 1.0
}

// Coefficient is the multiplier applied to the offense for a family: the
// suppression coefficient, times the solved multiplier when solved.
func (l *Layer) Coefficient(f core.Family) float64 {
	c := l.Suppression(f)
	if l.solved[f] {
		c *= l.cfg.SolvedMultiplier
	}
	return c
}

// Solved reports whether the defense has solved a family.
func (l *Layer) Solved(f core.Family) bool { return l.solved[f] }

// NoFlyZone reports whether kick passes are being shut down.
func (l *Layer) NoFlyZone() bool { return l.noFly }

// Temperature is the current game temperature from the defense's view.
func (l *Layer) Temperature() core.Temperature { return l.temperature }

// Snapshot copies the state into the public result form.
func (l *Layer) Snapshot() core.ModifierStack {
	solved := make(map[core.Family]float64, len(l.solved))
	for f := range l.solved {
		solved[f] = l.cfg.SolvedMultiplier
	}
	return core.ModifierStack{
		Suppression: maps.Clone(l.suppression),
		Temperature: l.temperature,
		Solved:      solved,
		NoFlyZone:   l.noFly,
	}
}

// Log collects adaptation transitions for a game. Both defenses of a game
// share one log so entries stay in play order.
type Log struct {
	entries []string
}

// NewLog returns an empty log.
func NewLog() *Log { return &Log{} }

func (lg *Log) add(o Observation, format string, args ...any) {
	if lg == nil {
		return
	}
	prefix := fmt.Sprintf("Q%d #%d ", o.Quarter, o.PlayNumber)
	lg.entries = append(lg.entries, prefix+fmt.Sprintf(format, args...))
}

// Entries returns a copy of the log lines.
func (lg *Log) Entries() []string {
	if lg == nil {
		return nil
	}
	return append([]string(nil), lg.entries...)
}

// Len is the number of entries.
func (lg *Log) Len() int {
	if lg == nil {
		return 0
	}
	return len(lg.entries)
}

func clamp(v, lo, hi float64) float64 {
	return max(lo, min(hi, v))
}

package sim

import (
	"crypto/rand"
	"encoding/binary"
	"log/slog"
	"strings"

	"github.com/viperball/matchsim/internal/adaptation"
	"github.com/viperball/matchsim/internal/roster"
	"github.com/viperball/matchsim/internal/style"
)

// Config selects the styles, weather and seed of a game. Empty keys fall
// back to the documented defaults; unknown keys do too, with a warning.
type Config struct {
	OffenseStyle string
	DefenseStyle string
	SpecialTeams string
	Weather      string
	Seed         int64

	// StyleOverrides maps a team name to an offense style and
	// "<team>_defense" to a defense style. Overrides win over the roster's
	// own keys, which win over the fields above.
	StyleOverrides map[string]string
}

// Option customizes a simulation.
type Option func(*options)

type options struct {
	logger     *slog.Logger
	adaptation adaptation.Config
}

// WithLogger sets the logger used for warnings and debug output.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithAdaptation replaces the defensive adaptation settings.
func WithAdaptation(cfg adaptation.Config) Option {
	return func(o *options) { o.adaptation = cfg }
}

func buildOptions(opts []Option) options {
	o := options{logger: slog.Default(), adaptation: adaptation.DefaultConfig()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// teamStyles are the parsed styles one team plays with.
type teamStyles struct {
	offense style.Offense
	defense style.Defense
	special style.SpecialTeams
}

// first returns the first non-empty key.
func first(keys ...string) string {
	for _, k := range keys {
		if k != "" {
			return k
		}
	}
	return ""
}

// override looks a team up by exact name, then case-insensitively since
// configuration files lose the case of map keys.
func override(m map[string]string, key string) string {
	if v, ok := m[key]; ok {
		return v
	}
	for k, v := range m {
		if strings.EqualFold(k, key) {
			return v
		}
	}
	return ""
}

func resolveStyles(t *roster.Team, cfg Config, log *slog.Logger) teamStyles {
	offKey := first(override(cfg.StyleOverrides, t.Name), t.OffenseStyle, cfg.OffenseStyle)
	defKey := first(override(cfg.StyleOverrides, t.Name+"_defense"), t.DefenseStyle, cfg.DefenseStyle)
	stKey := first(t.SpecialTeams, cfg.SpecialTeams)

	var s teamStyles
	var ok bool
	if s.offense, ok = style.ParseOffense(offKey); !ok && offKey != "" {
		log.Warn("Unknown offense style, using default", "team", t.Name, "key", offKey, "default", s.offense.String())
	}
	if s.defense, ok = style.ParseDefense(defKey); !ok && defKey != "" {
		log.Warn("Unknown defense style, using default", "team", t.Name, "key", defKey, "default", s.defense.String())
	}
	if s.special, ok = style.ParseSpecialTeams(stKey); !ok && stKey != "" {
		log.Warn("Unknown special teams scheme, using default", "team", t.Name, "key", stKey, "default", s.special.String())
	}
	return s
}

func resolveWeather(key string, log *slog.Logger) style.Weather {
	w, ok := style.ParseWeather(key)
	if !ok && key != "" {
		log.Warn("Unknown weather, using default", "key", key, "default", w.String())
	}
	return w
}

// RandomSeed returns a positive seed from the operating system's generator.
func RandomSeed() int64 {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return 1
	}
	seed := int64(binary.LittleEndian.Uint64(b[:]) >> 1)
	if seed == 0 {
		return 1
	}
	return seed
}

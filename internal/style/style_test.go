package style

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse_KnownKeys(t *testing.T) {
	for i, key := range OffenseKeys() {
		o, ok := ParseOffense(key)
		assert.True(t, ok, key)
		assert.Equal(t, Offense(i), o)
		assert.Equal(t, key, o.String())
	}
	for i, key := range DefenseKeys() {
		d, ok := ParseDefense(key)
		assert.True(t, ok, key)
		assert.Equal(t, Defense(i), d)
	}
	for i, key := range SpecialTeamsKeys() {
		s, ok := ParseSpecialTeams(key)
		assert.True(t, ok, key)
		assert.Equal(t, SpecialTeams(i), s)
	}
	for i, key := range WeatherKeys() {
		w, ok := ParseWeather(key)
		assert.True(t, ok, key)
		assert.Equal(t, Weather(i), w)
	}
}

func TestParse_UnknownFallsBackToDefault(t *testing.T) {
	o, ok := ParseOffense("air_raid")
	assert.False(t, ok)
	assert.Equal(t, DefaultOffense, o)
	assert.Equal(t, "balanced", o.String())

	d, ok := ParseDefense("")
	assert.False(t, ok)
	assert.Equal(t, "base_defense", d.String())

	s, ok := ParseSpecialTeams("nope")
	assert.False(t, ok)
	assert.Equal(t, "aces", s.String())

	w, ok := ParseWeather("hail")
	assert.False(t, ok)
	assert.Equal(t, "clear", w.String())
}

func TestParse_CaseInsensitive(t *testing.T) {
	o, ok := ParseOffense(" Lateral_Spread ")
	assert.True(t, ok)
	assert.Equal(t, LateralSpread, o)
}

func TestProfiles_Positive(t *testing.T) {
	for o := Balanced; o < offenseCount; o++ {
		p := o.Profile()
		assert.Positive(t, p.Tempo, o.String())
		assert.Positive(t, p.Give+p.Keep+p.Pitch+p.Kick+p.Lateral, o.String())
	}
	for w := Clear; w < weatherCount; w++ {
		p := w.Profile()
		assert.Positive(t, p.KickAccuracy, w.String())
		assert.GreaterOrEqual(t, p.Fumble, 1.0, w.String())
	}
	assert.Equal(t, Balanced.Profile(), Offense(200).Profile())
}

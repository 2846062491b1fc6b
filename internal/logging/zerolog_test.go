package logging

import (
	"bytes"
	"encoding/json"
	"testing"
)

func decode(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to parse log output: %v", err)
	}
	return entry
}

func TestNewZerolog(t *testing.T) {
	var buf bytes.Buffer
	log := NewZerolog(&buf, "warn", "database")

	log.Info().Msg("hidden")
	log.Warn().Str("path", "sim.db").Msg("shown")

	entry := decode(t, &buf)
	if entry["message"] != "shown" {
		t.Errorf("expected message 'shown', got %v", entry["message"])
	}
	if entry["component"] != "database" {
		t.Errorf("expected component 'database', got %v", entry["component"])
	}
	if entry["path"] != "sim.db" {
		t.Errorf("expected path 'sim.db', got %v", entry["path"])
	}
	if _, ok := entry["time"]; !ok {
		t.Errorf("expected a timestamp")
	}
}

func TestNewZerolog_DefaultLevel(t *testing.T) {
	for _, level := range []string{"", "bogus"} {
		var buf bytes.Buffer
		log := NewZerolog(&buf, level, "influx")

		log.Debug().Msg("hidden")
		if buf.Len() != 0 {
			t.Errorf("level %q: expected debug to be filtered, got %q", level, buf.String())
		}
		log.Info().Msg("shown")
		if buf.Len() == 0 {
			t.Errorf("level %q: expected info to pass", level)
		}
	}
}

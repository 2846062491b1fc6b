package roster

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// teamFile is the on-disk roster layout. JSON rosters decode through the same
// path since JSON is valid YAML.
type teamFile struct {
	Name         string       `yaml:"name" json:"name"`
	Abbreviation string       `yaml:"abbreviation" json:"abbreviation"`
	OffenseStyle string       `yaml:"offense_style" json:"offense_style"`
	DefenseStyle string       `yaml:"defense_style" json:"defense_style"`
	SpecialTeams string       `yaml:"special_teams" json:"special_teams"`
	Players      []playerFile `yaml:"players" json:"players"`
}

type playerFile struct {
	Name      string `yaml:"name" json:"name"`
	Number    int    `yaml:"number" json:"number"`
	Position  string `yaml:"position" json:"position"`
	Archetype string `yaml:"archetype" json:"archetype"`
	Traits    Traits `yaml:"traits" json:"traits"`
}

// rosterExtensions are the file types LoadDir picks up.
var rosterExtensions = map[string]bool{".yaml": true, ".yml": true, ".json": true}

// DecodeTeam reads one roster document and validates it.
func DecodeTeam(r io.Reader, source string) (*Team, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f teamFile
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &LoadError{Source: source, Reason: "empty roster file"}
		}
		return nil, &LoadError{Source: source, Reason: fmt.Sprintf("decode: %v", err)}
	}

	t := &Team{
		Name:         f.Name,
		Abbreviation: f.Abbreviation,
		OffenseStyle: f.OffenseStyle,
		DefenseStyle: f.DefenseStyle,
		SpecialTeams: f.SpecialTeams,
		Players:      make([]Player, 0, len(f.Players)),
	}
	for i, pf := range f.Players {
		pos, ok := ParsePosition(pf.Position)
		if !ok {
			return nil, &LoadError{
				Team: f.Name, Source: source, Field: fmt.Sprintf("players[%d].position", i),
				Reason: fmt.Sprintf("unknown position %q", pf.Position),
			}
		}
		arch, ok := ParseArchetype(pf.Archetype)
		if !ok {
			return nil, &LoadError{
				Team: f.Name, Source: source, Field: fmt.Sprintf("players[%d].archetype", i),
				Reason: fmt.Sprintf("unknown archetype %q", pf.Archetype),
			}
		}
		t.Players = append(t.Players, Player{
			Name:      pf.Name,
			Number:    pf.Number,
			Position:  pos,
			Archetype: arch,
			Traits:    pf.Traits,
		})
	}

	if err := t.Validate(); err != nil {
		var le *LoadError
		if errors.As(err, &le) {
			le.Source = source
		}
		return nil, err
	}
	return t, nil
}

// LoadTeamFile reads a YAML or JSON roster file.
func LoadTeamFile(path string) (*Team, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading roster file: %w", err)
	}
	return DecodeTeam(bytes.NewReader(data), filepath.Base(path))
}

// LoadDir reads every roster file in a directory, sorted by file name. The
// first malformed roster aborts the load.
func LoadDir(dir string) ([]*Team, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading roster dir: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || !rosterExtensions[strings.ToLower(filepath.Ext(e.Name()))] {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	teams := make([]*Team, 0, len(names))
	for _, name := range names {
		t, err := LoadTeamFile(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		teams = append(teams, t)
	}
	return teams, nil
}

// EncodeTeam writes a roster in the file layout DecodeTeam reads.
func EncodeTeam(w io.Writer, t *Team) error {
	f := teamFile{
		Name:         t.Name,
		Abbreviation: t.Abbreviation,
		OffenseStyle: t.OffenseStyle,
		DefenseStyle: t.DefenseStyle,
		SpecialTeams: t.SpecialTeams,
	}
	for _, p := range t.Players {
		f.Players = append(f.Players, playerFile{
			Name:      p.Name,
			Number:    p.Number,
			Position:  p.Position.String(),
			Archetype: p.Archetype.String(),
			Traits:    p.Traits,
		})
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(f); err != nil {
		return fmt.Errorf("encoding roster: %w", err)
	}
	return enc.Close()
}

// Package cache keeps parsed rosters in memory so repeated games and
// batches over the same files skip the disk and the validator.
package cache

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/viperball/matchsim/internal/roster"
)

type rosterEntry struct {
	team    *roster.Team
	modTime time.Time
	size    int64
}

// RosterCache caches teams by file path. An entry is reloaded when the file's
// size or modification time changes.
type RosterCache struct {
	m     sync.Mutex
	teams map[string]rosterEntry
	loads int
}

func NewRosterCache() *RosterCache {
	return &RosterCache{
		teams: make(map[string]rosterEntry),
	}
}

func (c *RosterCache) Reset() {
	c.m.Lock()
	defer c.m.Unlock()
	c.teams = make(map[string]rosterEntry)
}

// Loads counts the files read from disk since the cache was created.
func (c *RosterCache) Loads() int {
	c.m.Lock()
	defer c.m.Unlock()
	return c.loads
}

// Len returns the number of cached teams.
func (c *RosterCache) Len() int {
	c.m.Lock()
	defer c.m.Unlock()
	return len(c.teams)
}

// Get returns the roster stored at path, reading it only when it is not
// cached or has changed on disk.
func (c *RosterCache) Get(path string) (*roster.Team, error) {
	key, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving roster path: %w", err)
	}
	info, err := os.Stat(key)
	if err != nil {
		return nil, fmt.Errorf("reading roster file: %w", err)
	}

	c.m.Lock()
	defer c.m.Unlock()
	if e, ok := c.teams[key]; ok && e.size == info.Size() && e.modTime.Equal(info.ModTime()) {
		return e.team, nil
	}

	t, err := roster.LoadTeamFile(key)
	if err != nil {
		return nil, err
	}
	c.loads++
	c.teams[key] = rosterEntry{team: t, modTime: info.ModTime(), size: info.Size()}
	return t, nil
}

// Dir returns every roster in a directory, sorted by file name, the way
// roster.LoadDir reads them.
func (c *RosterCache) Dir(dir string) ([]*roster.Team, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading roster dir: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || !isRosterFile(e.Name()) {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	teams := make([]*roster.Team, 0, len(names))
	for _, name := range names {
		t, err := c.Get(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		teams = append(teams, t)
	}
	return teams, nil
}

// Find looks a cached team up by name or abbreviation, ignoring case.
func (c *RosterCache) Find(name string) (*roster.Team, bool) {
	c.m.Lock()
	defer c.m.Unlock()
	for _, e := range c.teams {
		if strings.EqualFold(e.team.Name, name) || strings.EqualFold(e.team.Abbreviation, name) {
			return e.team, true
		}
	}
	return nil, false
}

func isRosterFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml", ".json":
		return true
	}
	return false
}

// pkg/core/game.go
package core

// FinalScore is the score when the clock expired.
type FinalScore struct {
	Home float64 `json:"home"`
	Away float64 `json:"away"`
}

// TeamStatsBySide holds team statistics for both sides.
type TeamStatsBySide struct {
	Home TeamStats `json:"home"`
	Away TeamStats `json:"away"`
}

// PlayerStatsBySide holds player lines for both sides in roster order.
type PlayerStatsBySide struct {
	Home []PlayerGameStat `json:"home"`
	Away []PlayerGameStat `json:"away"`
}

// DefenseStacks holds the final adaptation state of both defenses.
type DefenseStacks struct {
	HomeDefense ModifierStack `json:"home_defense"`
	AwayDefense ModifierStack `json:"away_defense"`
}

// TeamStyles are the resolved style keys one team played with.
type TeamStyles struct {
	Offense      string `json:"offense"`
	Defense      string `json:"defense"`
	SpecialTeams string `json:"special_teams"`
}

// StylesBySide holds the resolved styles of both teams.
type StylesBySide struct {
	Home TeamStyles `json:"home"`
	Away TeamStyles `json:"away"`
}

// GameResult is the complete, immutable record of one simulated game.
type GameResult struct {
	HomeTeam      string            `json:"home_team"`
	AwayTeam      string            `json:"away_team"`
	FinalScore    FinalScore        `json:"final_score"`
	Stats         TeamStatsBySide   `json:"stats"`
	PlayByPlay    []Play            `json:"play_by_play"`
	DriveSummary  []Drive           `json:"drive_summary"`
	PlayerStats   PlayerStatsBySide `json:"player_stats"`
	ModifierStack DefenseStacks     `json:"modifier_stack"`
	AdaptationLog []string          `json:"adaptation_log"`
	Weather       string            `json:"weather"`
	Seed          int64             `json:"seed"`
	Styles        StylesBySide      `json:"styles"`
}

// Score returns the final score of one side.
func (g *GameResult) Score(s Side) float64 {
	if s == Home {
		return g.FinalScore.Home
	}
	return g.FinalScore.Away
}

// TeamStats returns the statistics of one side.
func (g *GameResult) TeamStats(s Side) TeamStats {
	if s == Home {
		return g.Stats.Home
	}
	return g.Stats.Away
}

// Winner returns the winning side, or "" for a tie.
func (g *GameResult) Winner() Side {
	switch {
	case g.FinalScore.Home > g.FinalScore.Away:
		return Home
	case g.FinalScore.Away > g.FinalScore.Home:
		return Away
	default:
		return ""
	}
}

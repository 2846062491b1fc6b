// Package convert provides functions to convert between GORM models and core models
package convert

import (
	"encoding/json"
	"time"

	"github.com/viperball/matchsim/internal/model"
	"github.com/viperball/matchsim/pkg/core"
	"gorm.io/datatypes"
)

// playDetail holds whichever detail a play carries under its own key.
type playDetail struct {
	Run      *core.RunDetail      `json:"run,omitempty"`
	Lateral  *core.LateralDetail  `json:"lateral,omitempty"`
	KickPass *core.KickPassDetail `json:"kick_pass,omitempty"`
	Kick     *core.KickDetail     `json:"kick,omitempty"`
	Punt     *core.PuntDetail     `json:"punt,omitempty"`
}

// toJSON marshals v for a jsonb column, falling back to the column default.
func toJSON(v any, fallback string) datatypes.JSON {
	data, err := json.Marshal(v)
	if err != nil || string(data) == "null" {
		return datatypes.JSON(fallback)
	}
	return datatypes.JSON(data)
}

// CoreToBatch converts a core.Batch to a GORM model.Batch.
func CoreToBatch(b core.Batch) model.Batch {
	return model.Batch{
		ID:        b.ID,
		Label:     b.Label,
		StartedAt: b.StartedAt,
		Games:     b.Games,
		BaseSeed:  b.BaseSeed,
		Workers:   b.Workers,
		Summary:   datatypes.JSON("{}"),
	}
}

// SummaryToJSON encodes a finished batch summary for model.Batch.Summary.
func SummaryToJSON(s core.BatchSummary) datatypes.JSON {
	return toJSON(s, "{}")
}

// CoreToGameFailure converts a core.GameFailure to a GORM model.GameFailure.
func CoreToGameFailure(f core.GameFailure) model.GameFailure {
	return model.GameFailure{
		BatchID:  f.BatchID,
		Index:    f.Index,
		Seed:     f.Seed,
		HomeTeam: f.HomeTeam,
		AwayTeam: f.AwayTeam,
		Error:    f.Error,
		Time:     f.Time,
	}
}

// CoreToGame converts a completed game to a GORM model.Game with its drives
// and player lines attached. Plays are only attached when withPlays is set.
func CoreToGame(r core.GameRecord, withPlays bool) model.Game {
	res := r.Result
	if res == nil {
		return model.Game{BatchID: r.BatchID, Index: r.Index, Seed: r.Seed}
	}

	g := model.Game{
		BatchID:       r.BatchID,
		Index:         r.Index,
		Seed:          r.Seed,
		HomeTeam:      res.HomeTeam,
		AwayTeam:      res.AwayTeam,
		HomeScore:     res.FinalScore.Home,
		AwayScore:     res.FinalScore.Away,
		Weather:       res.Weather,
		PlayCount:     len(res.PlayByPlay),
		DurationMs:    float64(r.Duration.Microseconds()) / 1000,
		Styles:        toJSON(res.Styles, "{}"),
		HomeStats:     toJSON(res.Stats.Home, "{}"),
		AwayStats:     toJSON(res.Stats.Away, "{}"),
		ModifierStack: toJSON(res.ModifierStack, "{}"),
		AdaptationLog: toJSON(res.AdaptationLog, "[]"),
		CreatedAt:     time.Now(),
		Drives:        make([]model.Drive, 0, len(res.DriveSummary)),
		PlayerStats:   make([]model.PlayerStat, 0, len(res.PlayerStats.Home)+len(res.PlayerStats.Away)),
	}

	for _, d := range res.DriveSummary {
		g.Drives = append(g.Drives, CoreToDrive(d))
	}
	for _, p := range res.PlayerStats.Home {
		g.PlayerStats = append(g.PlayerStats, CoreToPlayerStat(core.Home, p))
	}
	for _, p := range res.PlayerStats.Away {
		g.PlayerStats = append(g.PlayerStats, CoreToPlayerStat(core.Away, p))
	}
	if withPlays {
		g.Plays = make([]model.Play, 0, len(res.PlayByPlay))
		for _, p := range res.PlayByPlay {
			g.Plays = append(g.Plays, CoreToPlay(p))
		}
	}
	return g
}

// CoreToDrive converts a core.Drive to a GORM model.Drive.
func CoreToDrive(d core.Drive) model.Drive {
	return model.Drive{
		Number:             d.Number,
		Team:               string(d.Team),
		TeamName:           d.TeamName,
		Quarter:            d.Quarter,
		StartFieldPosition: d.StartFieldPosition,
		Plays:              d.Plays,
		Yards:              d.Yards,
		Result:             string(d.Result),
		Points:             d.Points,
		BonusDrive:         d.BonusDrive,
		SacrificeDrive:     d.SacrificeDrive,
		DeltaDrive:         d.DeltaDrive,
	}
}

// CoreToPlay converts a core.Play to a GORM model.Play.
func CoreToPlay(p core.Play) model.Play {
	return model.Play{
		Number:        p.Number,
		Quarter:       p.Quarter,
		TimeRemaining: p.TimeRemaining,
		Possession:    string(p.Possession),
		Down:          p.Down,
		YardsToGo:     p.YardsToGo,
		FieldPosition: p.FieldPosition,
		Decision:      string(p.Decision),
		PlayType:      string(p.PlayType),
		PlayFamily:    p.PlayFamily,
		DefensiveCall: string(p.DefensiveCall),
		Description:   p.Description,
		Yards:         p.Yards,
		Result:        string(p.Result),
		Laterals:      p.Laterals,
		HomeScore:     p.HomeScore,
		AwayScore:     p.AwayScore,
		EPA:           p.EPA,
		Recovery:      p.Recovery,
		Fatigue:       toJSON(p.Fatigue, "{}"),
		Detail: toJSON(playDetail{
			Run:      p.Run,
			Lateral:  p.Lateral,
			KickPass: p.KickPass,
			Kick:     p.Kick,
			Punt:     p.Punt,
		}, "{}"),
	}
}

// CoreToPlayerStat converts one player line to a GORM model.PlayerStat.
func CoreToPlayerStat(side core.Side, p core.PlayerGameStat) model.PlayerStat {
	return model.PlayerStat{
		Side:          string(side),
		Name:          p.Name,
		Number:        p.Number,
		Position:      p.Position,
		Archetype:     p.Archetype,
		Snaps:         p.Snaps,
		Fatigue:       p.Fatigue,
		Touches:       p.Touches,
		Touchdowns:    p.Touchdowns,
		VPA:           p.VPA,
		PlaysInvolved: p.PlaysInvolved,
		Line:          toJSON(p, "{}"),
	}
}

// CoreToBatchProgress builds a progress sample.
func CoreToBatchProgress(batchID string, total, completed, failed int, rate float64, at time.Time) model.BatchProgress {
	return model.BatchProgress{
		Time:           at,
		BatchID:        batchID,
		Total:          total,
		Completed:      completed,
		Failed:         failed,
		GamesPerSecond: rate,
	}
}

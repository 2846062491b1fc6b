package convert

import (
	"cmp"
	"encoding/json"
	"slices"

	"github.com/viperball/matchsim/internal/model"
	"github.com/viperball/matchsim/pkg/core"
)

// fromJSON decodes a jsonb column, ignoring empty values.
func fromJSON(data []byte, v any) {
	if len(data) == 0 {
		return
	}
	_ = json.Unmarshal(data, v)
}

// BatchToCore converts a GORM Batch to a core.Batch.
func BatchToCore(b model.Batch) core.Batch {
	return core.Batch{
		ID:        b.ID,
		Label:     b.Label,
		StartedAt: b.StartedAt,
		Games:     b.Games,
		BaseSeed:  b.BaseSeed,
		Workers:   b.Workers,
	}
}

// SummaryToCore decodes the stored summary of a batch. ok is false for a
// batch that never finished.
func SummaryToCore(b model.Batch) (s core.BatchSummary, ok bool) {
	if b.FinishedAt == nil {
		return s, false
	}
	fromJSON(b.Summary, &s)
	return s, true
}

// GameFailureToCore converts a GORM GameFailure to a core.GameFailure.
func GameFailureToCore(f model.GameFailure) core.GameFailure {
	return core.GameFailure{
		BatchID:  f.BatchID,
		Index:    f.Index,
		Seed:     f.Seed,
		HomeTeam: f.HomeTeam,
		AwayTeam: f.AwayTeam,
		Error:    f.Error,
		Time:     f.Time,
	}
}

// GameToCore rebuilds a game result from a GORM Game and its preloaded
// children. Children are ordered by their number, not by row id.
func GameToCore(g model.Game) core.GameResult {
	res := core.GameResult{
		HomeTeam:      g.HomeTeam,
		AwayTeam:      g.AwayTeam,
		FinalScore:    core.FinalScore{Home: g.HomeScore, Away: g.AwayScore},
		Weather:       g.Weather,
		Seed:          g.Seed,
		PlayByPlay:    make([]core.Play, 0, len(g.Plays)),
		DriveSummary:  make([]core.Drive, 0, len(g.Drives)),
		AdaptationLog: []string{},
	}
	fromJSON(g.Styles, &res.Styles)
	fromJSON(g.HomeStats, &res.Stats.Home)
	fromJSON(g.AwayStats, &res.Stats.Away)
	fromJSON(g.ModifierStack, &res.ModifierStack)
	fromJSON(g.AdaptationLog, &res.AdaptationLog)

	for _, p := range g.Plays {
		res.PlayByPlay = append(res.PlayByPlay, PlayToCore(p))
	}
	slices.SortFunc(res.PlayByPlay, func(a, b core.Play) int { return cmp.Compare(a.Number, b.Number) })

	for _, d := range g.Drives {
		res.DriveSummary = append(res.DriveSummary, DriveToCore(d))
	}
	slices.SortFunc(res.DriveSummary, func(a, b core.Drive) int { return cmp.Compare(a.Number, b.Number) })

	for _, p := range g.PlayerStats {
		line := PlayerStatToCore(p)
		if core.Side(p.Side) == core.Home {
			res.PlayerStats.Home = append(res.PlayerStats.Home, line)
		} else {
			res.PlayerStats.Away = append(res.PlayerStats.Away, line)
		}
	}
	return res
}

// DriveToCore converts a GORM Drive to a core.Drive.
func DriveToCore(d model.Drive) core.Drive {
	return core.Drive{
		Number:             d.Number,
		Team:               core.Side(d.Team),
		TeamName:           d.TeamName,
		Quarter:            d.Quarter,
		StartFieldPosition: d.StartFieldPosition,
		Plays:              d.Plays,
		Yards:              d.Yards,
		Result:             core.DriveResult(d.Result),
		Points:             d.Points,
		BonusDrive:         d.BonusDrive,
		SacrificeDrive:     d.SacrificeDrive,
		DeltaDrive:         d.DeltaDrive,
	}
}

// PlayToCore converts a GORM Play to a core.Play.
func PlayToCore(p model.Play) core.Play {
	out := core.Play{
		Number:        p.Number,
		Quarter:       p.Quarter,
		TimeRemaining: p.TimeRemaining,
		Possession:    core.Side(p.Possession),
		Down:          p.Down,
		YardsToGo:     p.YardsToGo,
		FieldPosition: p.FieldPosition,
		Decision:      core.Decision(p.Decision),
		PlayType:      core.PlayType(p.PlayType),
		PlayFamily:    p.PlayFamily,
		DefensiveCall: core.DefensiveCall(p.DefensiveCall),
		Description:   p.Description,
		Yards:         p.Yards,
		Result:        core.Result(p.Result),
		Laterals:      p.Laterals,
		HomeScore:     p.HomeScore,
		AwayScore:     p.AwayScore,
		EPA:           p.EPA,
		Recovery:      p.Recovery,
	}
	fromJSON(p.Fatigue, &out.Fatigue)

	var d playDetail
	fromJSON(p.Detail, &d)
	out.Run, out.Lateral, out.KickPass, out.Kick, out.Punt = d.Run, d.Lateral, d.KickPass, d.Kick, d.Punt
	return out
}

// PlayerStatToCore converts a GORM PlayerStat back to the full stat line.
// Indexed columns win over the stored line.
func PlayerStatToCore(p model.PlayerStat) core.PlayerGameStat {
	var line core.PlayerGameStat
	fromJSON(p.Line, &line)
	line.Name = p.Name
	line.Number = p.Number
	line.Position = p.Position
	line.Archetype = p.Archetype
	line.Snaps = p.Snaps
	line.Fatigue = p.Fatigue
	line.Touches = p.Touches
	line.Touchdowns = p.Touchdowns
	line.VPA = p.VPA
	line.PlaysInvolved = p.PlaysInvolved
	return line
}

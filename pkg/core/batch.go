// pkg/core/batch.go
package core

import "time"

// Batch describes a run of many simulated games.
type Batch struct {
	ID        string    `json:"id"`
	Label     string    `json:"label"`
	StartedAt time.Time `json:"started_at"`
	Games     int       `json:"games"`
	BaseSeed  int64     `json:"base_seed"`
	Workers   int       `json:"workers"`
}

// GameRecord is a completed game of a batch.
type GameRecord struct {
	BatchID  string        `json:"batch_id"`
	Index    int           `json:"index"`
	Seed     int64         `json:"seed"`
	Result   *GameResult   `json:"result"`
	Duration time.Duration `json:"duration"`
}

// GameFailure records a game that could not be completed.
type GameFailure struct {
	BatchID  string    `json:"batch_id"`
	Index    int       `json:"index"`
	Seed     int64     `json:"seed"`
	HomeTeam string    `json:"home_team"`
	AwayTeam string    `json:"away_team"`
	Error    string    `json:"error"`
	Time     time.Time `json:"time"`
}

// BatchSummary aggregates every completed game of a batch.
type BatchSummary struct {
	BatchID         string                        `json:"batch_id"`
	Games           int                           `json:"games"`
	Failed          int                           `json:"failed"`
	Plays           int                           `json:"plays"`
	PlaysPerGame    float64                       `json:"plays_per_game"`
	PointsPerTeam   float64                       `json:"points_per_team"`
	HomeWins        int                           `json:"home_wins"`
	AwayWins        int                           `json:"away_wins"`
	Ties            int                           `json:"ties"`
	Turnovers       int                           `json:"turnovers"`
	LateralChains   int                           `json:"lateral_chains"`
	Breakdown       ScoreBreakdown                `json:"score_breakdown"`
	FourthDown      ConversionStat                `json:"fourth_down"`
	DriveEfficiency map[DriveBucket]BucketSummary `json:"drive_efficiency"`
	FinishedAt      time.Time                     `json:"finished_at"`
}

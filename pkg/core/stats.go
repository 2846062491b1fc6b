// pkg/core/stats.go
package core

// Point values for each scoring event.
const (
	PointsTouchdown = 9.0
	PointsSnapKick  = 5.0
	PointsPlaceKick = 3.0
	PointsSafety    = 2.0
	PointsPindown   = 1.0
	PointsStrike    = 0.5
)

// ScoreBreakdown counts the scoring events credited to one team.
// Safeties are the ones earned, i.e. conceded by the opponent.
type ScoreBreakdown struct {
	Touchdowns int `json:"touchdowns"`
	SnapKicks  int `json:"snap_kicks"`
	PlaceKicks int `json:"place_kicks"`
	Safeties   int `json:"safeties"`
	Pindowns   int `json:"pindowns"`
	Strikes    int `json:"strikes"`
}

// Points returns the score implied by the breakdown.
func (b ScoreBreakdown) Points() float64 {
	return PointsTouchdown*float64(b.Touchdowns) +
		PointsSnapKick*float64(b.SnapKicks) +
		PointsPlaceKick*float64(b.PlaceKicks) +
		PointsSafety*float64(b.Safeties) +
		PointsPindown*float64(b.Pindowns) +
		PointsStrike*float64(b.Strikes)
}

// ConversionStat counts series that reached a down with the ball in play and
// how many of them went on to convert. A series converts on a new set of downs
// or when the offense ends it with a touchdown or a made kick.
type ConversionStat struct {
	Attempts    int     `json:"attempts"`
	Conversions int     `json:"conversions"`
	Rate        float64 `json:"rate"`
}

// BucketSummary aggregates the drives of one bucket.
type BucketSummary struct {
	Drives        int     `json:"drives"`
	Yards         int     `json:"yards"`
	Scores        int     `json:"scores"`
	Points        float64 `json:"points"`
	YardsPerDrive float64 `json:"yards_per_drive"`
	ScoreRate     float64 `json:"score_rate"`
}

// TeamStats are one team's aggregate statistics.
type TeamStats struct {
	Team                  string                        `json:"team"`
	Score                 float64                       `json:"score"`
	Breakdown             ScoreBreakdown                `json:"score_breakdown"`
	Plays                 int                           `json:"plays"`
	TotalYards            int                           `json:"total_yards"`
	RushingYards          int                           `json:"rushing_yards"`
	LateralYards          int                           `json:"lateral_yards"`
	KickPassYards         int                           `json:"kick_pass_yards"`
	YardsPerPlay          float64                       `json:"yards_per_play"`
	FirstDowns            int                           `json:"first_downs"`
	Fumbles               int                           `json:"fumbles"`
	FumblesLost           int                           `json:"fumbles_lost"`
	Turnovers             int                           `json:"turnovers"`
	LateralChains         int                           `json:"lateral_chains"`
	LateralsThrown        int                           `json:"laterals_thrown"`
	KickPassAttempts      int                           `json:"kick_pass_attempts"`
	KickPassCompletions   int                           `json:"kick_pass_completions"`
	KickPassInterceptions int                           `json:"kick_pass_interceptions"`
	SnapKickAttempts      int                           `json:"snap_kick_attempts"`
	SnapKicksMade         int                           `json:"snap_kicks_made"`
	PlaceKickAttempts     int                           `json:"place_kick_attempts"`
	PlaceKicksMade        int                           `json:"place_kicks_made"`
	Punts                 int                           `json:"punts"`
	PuntYards             int                           `json:"punt_yards"`
	TimeoutsUsed          int                           `json:"timeouts_used"`
	TimeOfPossession      int                           `json:"time_of_possession"`
	DownConversions       map[string]ConversionStat     `json:"down_conversions"`
	TotalVPA              float64                       `json:"total_vpa"`
	VPAPerPlay            float64                       `json:"vpa_per_play"`
	DriveEfficiency       map[DriveBucket]BucketSummary `json:"drive_efficiency"`
}

// PlayerGameStat is one player's line for a game.
type PlayerGameStat struct {
	Name      string  `json:"name"`
	Number    int     `json:"number"`
	Position  string  `json:"position"`
	Archetype string  `json:"archetype"`
	Snaps     int     `json:"snaps"`
	Fatigue   float64 `json:"fatigue"`

	Touches               int `json:"touches"`
	RushCarries           int `json:"rush_carries"`
	RushYards             int `json:"rush_yards"`
	LateralsThrown        int `json:"laterals_thrown"`
	LateralsReceived      int `json:"laterals_received"`
	LateralYards          int `json:"lateral_yards"`
	KickPassAttempts      int `json:"kick_pass_attempts"`
	KickPassCompletions   int `json:"kick_pass_completions"`
	KickPassYards         int `json:"kick_pass_yards"`
	KickPassTouchdowns    int `json:"kick_pass_touchdowns"`
	KickPassInterceptions int `json:"kick_pass_interceptions"`
	Receptions            int `json:"receptions"`
	ReceivingYards        int `json:"receiving_yards"`
	Touchdowns            int `json:"touchdowns"`
	Fumbles               int `json:"fumbles"`
	FumblesLost           int `json:"fumbles_lost"`

	SnapKickAttempts  int `json:"snap_kick_attempts"`
	SnapKicksMade     int `json:"snap_kicks_made"`
	PlaceKickAttempts int `json:"place_kick_attempts"`
	PlaceKicksMade    int `json:"place_kicks_made"`
	Punts             int `json:"punts"`
	PuntYards         int `json:"punt_yards"`

	Tackles          int `json:"tackles"`
	TacklesForLoss   int `json:"tackles_for_loss"`
	Sacks            int `json:"sacks"`
	Hurries          int `json:"hurries"`
	Interceptions    int `json:"interceptions"`
	FumbleRecoveries int `json:"fumble_recoveries"`
	KicksBlocked     int `json:"kicks_blocked"`

	KickReturns      int `json:"kick_returns"`
	KickReturnYards  int `json:"kick_return_yards"`
	PuntReturns      int `json:"punt_returns"`
	PuntReturnYards  int `json:"punt_return_yards"`
	ReturnTouchdowns int `json:"return_touchdowns"`

	VPA           float64 `json:"vpa"`
	PlaysInvolved int     `json:"plays_involved"`
}

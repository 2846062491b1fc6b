package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

////////////////////////
// DATABASE STRUCTURES //
////////////////////////

// DatabaseModels is a list of all the structs exported here which represent tables in the database schema
var DatabaseModels = []interface{}{
	&SimInfo{},
	&Batch{},
	&Game{},
	&GameFailure{},
	&Drive{},
	&Play{},
	&PlayerStat{},
	&BatchProgress{},
}

////////////////////////
// SYSTEM MODELS
////////////////////////

// SimInfo identifies the schema and the engine that wrote it
type SimInfo struct {
	gorm.Model
	Application   string `json:"application" gorm:"size:127"`
	SchemaVersion int    `json:"schemaVersion"`
}

func (*SimInfo) TableName() string {
	return "sim_infos"
}

// BatchProgress is a periodic progress sample written by the monitor
type BatchProgress struct {
	Time           time.Time `json:"time" gorm:"index:idx_batchprogress_time"`
	BatchID        string    `json:"batchId" gorm:"size:36;index:idx_batchprogress_batch_id"`
	Total          int       `json:"total"`
	Completed      int       `json:"completed"`
	Failed         int       `json:"failed"`
	GamesPerSecond float64   `json:"gamesPerSecond"` // since the previous sample
}

func (*BatchProgress) TableName() string {
	return "batch_progress"
}

////////////////////////
// BATCH MODELS
////////////////////////

// Batch is one run of many games
type Batch struct {
	ID         string         `json:"id" gorm:"primarykey;size:36"`
	Label      string         `json:"label" gorm:"size:200"`
	StartedAt  time.Time      `json:"startedAt" gorm:"index:idx_batch_started_at"`
	FinishedAt *time.Time     `json:"finishedAt"`
	Games      int            `json:"games"`
	BaseSeed   int64          `json:"baseSeed"`
	Workers    int            `json:"workers"`
	Summary    datatypes.JSON `json:"summary" gorm:"type:jsonb;default:'{}'"` // BatchSummary once finished

	GameList []Game        `json:"-" gorm:"foreignkey:BatchID"`
	Failures []GameFailure `json:"-" gorm:"foreignkey:BatchID"`
}

func (*Batch) TableName() string {
	return "batches"
}

// Game is the header row of one completed game
type Game struct {
	ID            uint           `json:"id" gorm:"primarykey;autoIncrement;"`
	BatchID       string         `json:"batchId" gorm:"size:36;index:idx_game_batch_id"`
	Index         int            `json:"index" gorm:"column:game_index"`
	Seed          int64          `json:"seed" gorm:"index:idx_game_seed"`
	HomeTeam      string         `json:"homeTeam" gorm:"size:127"`
	AwayTeam      string         `json:"awayTeam" gorm:"size:127"`
	HomeScore     float64        `json:"homeScore"`
	AwayScore     float64        `json:"awayScore"`
	Weather       string         `json:"weather" gorm:"size:32"`
	PlayCount     int            `json:"playCount"`
	DurationMs    float64        `json:"durationMs"`
	Styles        datatypes.JSON `json:"styles" gorm:"type:jsonb;default:'{}'"`
	HomeStats     datatypes.JSON `json:"homeStats" gorm:"type:jsonb;default:'{}'"`
	AwayStats     datatypes.JSON `json:"awayStats" gorm:"type:jsonb;default:'{}'"`
	ModifierStack datatypes.JSON `json:"modifierStack" gorm:"type:jsonb;default:'{}'"`
	AdaptationLog datatypes.JSON `json:"adaptationLog" gorm:"type:jsonb;default:'[]'"`
	CreatedAt     time.Time      `json:"createdAt"`

	Plays       []Play       `json:"-" gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;foreignkey:GameID"`
	Drives      []Drive      `json:"-" gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;foreignkey:GameID"`
	PlayerStats []PlayerStat `json:"-" gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;foreignkey:GameID"`
}

func (*Game) TableName() string {
	return "games"
}

// GameFailure is a game of a batch that did not complete
type GameFailure struct {
	ID       uint      `json:"id" gorm:"primarykey;autoIncrement;"`
	BatchID  string    `json:"batchId" gorm:"size:36;index:idx_gamefailure_batch_id"`
	Index    int       `json:"index" gorm:"column:game_index"`
	Seed     int64     `json:"seed"`
	HomeTeam string    `json:"homeTeam" gorm:"size:127"`
	AwayTeam string    `json:"awayTeam" gorm:"size:127"`
	Error    string    `json:"error"`
	Time     time.Time `json:"time"`
}

func (*GameFailure) TableName() string {
	return "game_failures"
}

////////////////////////
// GAME DETAIL MODELS
////////////////////////

// Drive is one possession of a stored game
type Drive struct {
	ID                 uint    `json:"id" gorm:"primarykey;autoIncrement;"`
	GameID             uint    `json:"gameId" gorm:"index:idx_drive_game_id"`
	Number             int     `json:"number"`
	Team               string  `json:"team" gorm:"size:8"`
	TeamName           string  `json:"teamName" gorm:"size:127"`
	Quarter            int     `json:"quarter"`
	StartFieldPosition int     `json:"startFieldPosition"`
	Plays              int     `json:"plays"`
	Yards              int     `json:"yards"`
	Result             string  `json:"result" gorm:"size:32;index:idx_drive_result"`
	Points             float64 `json:"points"`
	BonusDrive         bool    `json:"bonusDrive"`
	SacrificeDrive     bool    `json:"sacrificeDrive"`
	DeltaDrive         bool    `json:"deltaDrive"`
}

func (*Drive) TableName() string {
	return "drives"
}

// Play is one row of a stored play-by-play
type Play struct {
	ID            uint           `json:"id" gorm:"primarykey;autoIncrement;"`
	GameID        uint           `json:"gameId" gorm:"index:idx_play_game_id"`
	Number        int            `json:"number"`
	Quarter       int            `json:"quarter"`
	TimeRemaining int            `json:"timeRemaining"`
	Possession    string         `json:"possession" gorm:"size:8"`
	Down          int            `json:"down"`
	YardsToGo     int            `json:"yardsToGo"`
	FieldPosition int            `json:"fieldPosition"`
	Decision      string         `json:"decision" gorm:"size:16"`
	PlayType      string         `json:"playType" gorm:"size:16;index:idx_play_type"`
	PlayFamily    string         `json:"playFamily" gorm:"size:32"`
	DefensiveCall string         `json:"defensiveCall" gorm:"size:16"`
	Description   string         `json:"description"`
	Yards         int            `json:"yards"`
	Result        string         `json:"result" gorm:"size:32;index:idx_play_result"`
	Laterals      int            `json:"laterals"`
	HomeScore     float64        `json:"homeScore"`
	AwayScore     float64        `json:"awayScore"`
	EPA           float64        `json:"epa"`
	Recovery      string         `json:"recovery" gorm:"size:16"`
	Fatigue       datatypes.JSON `json:"fatigue" gorm:"type:jsonb;default:'{}'"`
	Detail        datatypes.JSON `json:"detail" gorm:"type:jsonb;default:'{}'"` // the one play-type detail
}

func (*Play) TableName() string {
	return "plays"
}

// PlayerStat is one player line of a stored game
type PlayerStat struct {
	ID            uint           `json:"id" gorm:"primarykey;autoIncrement;"`
	GameID        uint           `json:"gameId" gorm:"index:idx_playerstat_game_id"`
	Side          string         `json:"side" gorm:"size:8"`
	Name          string         `json:"name" gorm:"size:127;index:idx_playerstat_name"`
	Number        int            `json:"number"`
	Position      string         `json:"position" gorm:"size:32"`
	Archetype     string         `json:"archetype" gorm:"size:32"`
	Snaps         int            `json:"snaps"`
	Fatigue       float64        `json:"fatigue"`
	Touches       int            `json:"touches"`
	Touchdowns    int            `json:"touchdowns"`
	VPA           float64        `json:"vpa"`
	PlaysInvolved int            `json:"playsInvolved"`
	Line          datatypes.JSON `json:"line" gorm:"type:jsonb;default:'{}'"` // full stat line
}

func (*PlayerStat) TableName() string {
	return "player_stats"
}

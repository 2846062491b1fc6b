// pkg/core/drive.go
package core

// DriveResult is how a possession ended.
type DriveResult string

const (
	DriveTouchdown           DriveResult = "touchdown"
	DriveSuccessfulKick      DriveResult = "successful_kick"
	DriveFumble              DriveResult = "fumble"
	DriveTurnoverOnDowns     DriveResult = "turnover_on_downs"
	DrivePunt                DriveResult = "punt"
	DriveMissedKick          DriveResult = "missed_kick"
	DriveStall               DriveResult = "stall"
	DrivePindown             DriveResult = "pindown"
	DriveSafety              DriveResult = "safety"
	DriveBlockedPunt         DriveResult = "blocked_punt"
	DriveMuffedPunt          DriveResult = "muffed_punt"
	DriveBlockedKick         DriveResult = "blocked_kick"
	DrivePuntReturnTD        DriveResult = "punt_return_td"
	DriveChaosRecovery       DriveResult = "chaos_recovery"
	DriveLateralIntercepted  DriveResult = "lateral_intercepted"
	DriveKickPassIntercepted DriveResult = "kick_pass_intercepted"
	DriveIntReturnTD         DriveResult = "int_return_td"
)

// DriveBucket groups drives by possession context.
type DriveBucket string

const (
	BucketPenalized DriveBucket = "penalized"
	BucketBoosted   DriveBucket = "boosted"
	BucketNeutral   DriveBucket = "neutral"
)

// Drive is one possession.
type Drive struct {
	Number             int         `json:"drive_number"`
	Team               Side        `json:"team"`
	TeamName           string      `json:"team_name"`
	Quarter            int         `json:"quarter"`
	StartFieldPosition int         `json:"start_yard_line"`
	Plays              int         `json:"plays"`
	Yards              int         `json:"yards"`
	Result             DriveResult `json:"result"`
	Points             float64     `json:"points"`
	BonusDrive         bool        `json:"bonus_drive"`
	SacrificeDrive     bool        `json:"sacrifice_drive"`
	DeltaDrive         bool        `json:"delta_drive"`
}

// Bucket classifies the drive for efficiency reporting. A sacrifice drive is
// penalized even when another flag is also set.
func (d Drive) Bucket() DriveBucket {
	switch {
	case d.SacrificeDrive:
		return BucketPenalized
	case d.DeltaDrive || d.BonusDrive:
		return BucketBoosted
	default:
		return BucketNeutral
	}
}

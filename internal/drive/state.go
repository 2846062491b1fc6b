// Package drive owns the down-and-distance state machine, the game clock and
// the drive summary.
package drive

import (
	"errors"
	"fmt"

	"github.com/viperball/matchsim/pkg/core"
)

// ErrInvariant marks a state the machine can never legally reach.
var ErrInvariant = errors.New("invariant violation")

// The 6-down/20-yard rule set.
const (
	Downs             = 6
	FirstDownDistance = 20
)

// Phase is where a series stands.
type Phase uint8

const (
	PhaseFirstDown Phase = iota
	PhaseMidDrive
	PhaseLateDown
	PhaseKickingDecision
	PhaseDriveOver
)

var phaseNames = [...]string{
	PhaseFirstDown:       "first_down",
	PhaseMidDrive:        "mid_drive",
	PhaseLateDown:        "late_down",
	PhaseKickingDecision: "kicking_decision",
	PhaseDriveOver:       "drive_over",
}

func (p Phase) String() string {
	if int(p) < len(phaseNames) {
		return phaseNames[p]
	}
	return fmt.Sprintf("phase(%d)", uint8(p))
}

// State is the possessing team's down, distance and field position.
type State struct {
	Possession    core.Side
	Down          int
	YardsToGo     int
	FieldPosition int
	Phase         Phase
}

// NewState starts a possession at a field position.
func NewState(side core.Side, fieldPosition int) State {
	s := State{Possession: side, FieldPosition: ClampField(fieldPosition)}
	s.reset()
	return s
}

func (s *State) reset() {
	s.Down = 1
	s.YardsToGo = FirstDownDistance
	s.Phase = PhaseFirstDown
}

// phaseFor maps a live down onto its phase.
func phaseFor(down int) Phase {
	switch {
	case down <= 1:
		return PhaseFirstDown
	case down <= 3:
		return PhaseMidDrive
	default:
		return PhaseLateDown
	}
}

// Check reports an ErrInvariant if the state is outside the legal range.
func (s State) Check() error {
	if s.Down < 1 || s.Down > Downs {
		return fmt.Errorf("%w: down %d", ErrInvariant, s.Down)
	}
	if s.FieldPosition < 1 || s.FieldPosition > 99 {
		return fmt.Errorf("%w: field position %d", ErrInvariant, s.FieldPosition)
	}
	if s.YardsToGo < 1 {
		return fmt.Errorf("%w: yards to go %d", ErrInvariant, s.YardsToGo)
	}
	return nil
}

// Kicking marks the series as being in a kicking decision.
func (s *State) Kicking() {
	if s.Phase != PhaseDriveOver {
		s.Phase = PhaseKickingDecision
	}
}

// Apply advances the machine with a play that kept the ball with the
// offense. Results other than gain, first_down and incomplete end the drive.
// It returns true when the offense failed on its last down.
func (s *State) Apply(res core.Result, yards int) (turnoverOnDowns bool, err error) {
	if err := s.Check(); err != nil {
		return false, err
	}
	switch res {
	case core.ResultFirstDown:
		s.FieldPosition = ClampField(s.FieldPosition + yards)
		s.reset()
	case core.ResultGain, core.ResultIncomplete:
		s.FieldPosition = ClampField(s.FieldPosition + yards)
		s.YardsToGo = max(s.YardsToGo-yards, 1)
		s.Down++
		if s.Down > Downs {
			s.Down = Downs
			s.Phase = PhaseDriveOver
			return true, nil
		}
		s.Phase = phaseFor(s.Down)
	default:
		s.Phase = PhaseDriveOver
	}
	return false, nil
}

// Over reports whether the drive has ended.
func (s State) Over() bool { return s.Phase == PhaseDriveOver }

// ClampField keeps a field position inside [1,99].
func ClampField(fp int) int {
	return min(max(fp, 1), 99)
}

// TurnoverSpot is where the defense takes over after a failed series.
func TurnoverSpot(fieldPosition int) int {
	return ClampField(100 - fieldPosition)
}

// ResultFor maps a drive-ending play result onto a drive result.
func ResultFor(res core.Result) (core.DriveResult, bool) {
	switch res {
	case core.ResultTouchdown:
		return core.DriveTouchdown, true
	case core.ResultSuccessfulKick:
		return core.DriveSuccessfulKick, true
	case core.ResultMissedKick:
		return core.DriveMissedKick, true
	case core.ResultBlockedKick:
		return core.DriveBlockedKick, true
	case core.ResultPunt:
		return core.DrivePunt, true
	case core.ResultPindown:
		return core.DrivePindown, true
	case core.ResultBlockedPunt:
		return core.DriveBlockedPunt, true
	case core.ResultMuffedPunt:
		return core.DriveMuffedPunt, true
	case core.ResultPuntReturnTD:
		return core.DrivePuntReturnTD, true
	case core.ResultFumble:
		return core.DriveFumble, true
	case core.ResultChaosRecovery:
		return core.DriveChaosRecovery, true
	case core.ResultLateralIntercepted:
		return core.DriveLateralIntercepted, true
	case core.ResultKickPassIntercepted:
		return core.DriveKickPassIntercepted, true
	case core.ResultIntReturnTD:
		return core.DriveIntReturnTD, true
	case core.ResultSafety:
		return core.DriveSafety, true
	case core.ResultTurnoverOnDowns:
		return core.DriveTurnoverOnDowns, true
	default:
		return "", false
	}
}

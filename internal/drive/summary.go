package drive

import (
	"fmt"

	"github.com/viperball/matchsim/pkg/core"
)

// Flags mark the possession context a drive started in.
type Flags struct {
	Bonus     bool
	Sacrifice bool
	Delta     bool
}

// Summary builds the ordered drive summary of a game.
type Summary struct {
	drives  []core.Drive
	current *core.Drive
}

// Start opens a drive. Any drive still open is an invariant violation.
func (s *Summary) Start(team core.Side, teamName string, quarter, fieldPosition int, f Flags) error {
	if s.current != nil {
		return fmt.Errorf("%w: drive %d still open", ErrInvariant, s.current.Number)
	}
	s.current = &core.Drive{
		Number:             len(s.drives) + 1,
		Team:               team,
		TeamName:           teamName,
		Quarter:            quarter,
		StartFieldPosition: fieldPosition,
		BonusDrive:         f.Bonus,
		SacrificeDrive:     f.Sacrifice,
		DeltaDrive:         f.Delta,
	}
	return nil
}

// Open reports whether a drive is in progress.
func (s *Summary) Open() bool { return s.current != nil }

// Current returns the drive in progress, or nil.
func (s *Summary) Current() *core.Drive { return s.current }

// Play adds one snap to the open drive.
func (s *Summary) Play(yards int) {
	if s.current == nil {
		return
	}
	s.current.Plays++
	s.current.Yards += yards
}

// End closes the open drive with its result and the points the driving team
// scored on it.
func (s *Summary) End(result core.DriveResult, points float64) {
	if s.current == nil {
		return
	}
	s.current.Result = result
	s.current.Points = points
	s.drives = append(s.drives, *s.current)
	s.current = nil
}

// Drives returns the closed drives in order.
func (s *Summary) Drives() []core.Drive {
	return append([]core.Drive(nil), s.drives...)
}

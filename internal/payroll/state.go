package payroll

import "github.com/joseph-ayodele/fieldops/internal/common"

// State is an employee's position in the clock cycle.
type State string

const (
	ClockedOut State = "CLOCKED_OUT"
	ClockedIn  State = "CLOCKED_IN"
)

// Transition rejections. Both are conflicts.
var (
	ErrAlreadyClockedIn = common.ConflictError("already clocked in")
	ErrNotClockedIn     = common.ConflictError("not clocked in")
)

// StateOf derives the state from whether an open entry exists.
func StateOf(hasOpenEntry bool) State {
	if hasOpenEntry {
		return ClockedIn
	}
	return ClockedOut
}

// CanClockIn returns a ConflictError unless the employee is clocked out.
func CanClockIn(s State) error {
	if s == ClockedIn {
		return ErrAlreadyClockedIn
	}
	return nil
}

// CanClockOut returns a ConflictError unless the employee is clocked in.
func CanClockOut(s State) error {
	if s != ClockedIn {
		return ErrNotClockedIn
	}
	return nil
}

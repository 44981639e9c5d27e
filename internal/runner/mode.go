package runner

// Mode controls whether the test and submit steps execute. Derived once from
// CLI flags, immutable for the run.
type Mode int

const (
	// ModeNormal runs the connection test and submits only if it passed
	ModeNormal Mode = iota
	// ModeTestOnly runs the connection test and never submits
	ModeTestOnly
	// ModeSkipTest submits without testing, for hardware without a test
	// affordance
	ModeSkipTest
)

func (m Mode) String() string {
	switch m {
	case ModeTestOnly:
		return "test-only"
	case ModeSkipTest:
		return "skip-test"
	default:
		return "normal"
	}
}

package interview

// State is a step of the interview lifecycle.
type State string

const (
	StateIdle         State = "idle"
	StateInitializing State = "initializing"
	StateActive       State = "active"
	StateEnding       State = "ending"
	StateTerminated   State = "terminated"
	StateError        State = "error"
)

// Outcome tells the page what to do after Start.
type Outcome int

const (
	// OutcomeActive means the call is live and can be rendered.
	OutcomeActive Outcome = iota
	// OutcomePending means setup or shutdown is still in flight.
	OutcomePending
	// OutcomeRedirectToIntake means there is nothing to interview on.
	OutcomeRedirectToIntake
	// OutcomeFailed means setup failed; the user returns to intake with a notice.
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeActive:
		return "active"
	case OutcomePending:
		return "pending"
	case OutcomeRedirectToIntake:
		return "redirect-to-intake"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

package register

// Status is the outcome of the latest submission. After a submission settles
// at most one field is set.
type Status struct {
	Error   string
	Success string
}

// Settled reports whether exactly one outcome is recorded.
func (s Status) Settled() bool {
	return (s.Error == "") != (s.Success == "")
}

// Phase is a step of a submission.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseValidating
	PhaseRejected
	PhaseCreating
	PhaseFailed
	PhaseCreated
	PhaseVerifying
	PhaseNaming
	PhaseDone
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseValidating:
		return "validating"
	case PhaseRejected:
		return "rejected"
	case PhaseCreating:
		return "creating"
	case PhaseFailed:
		return "failed"
	case PhaseCreated:
		return "created"
	case PhaseVerifying:
		return "verifying"
	case PhaseNaming:
		return "naming"
	case PhaseDone:
		return "done"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transition follows p.
func (p Phase) Terminal() bool {
	return p == PhaseRejected || p == PhaseFailed || p == PhaseDone
}

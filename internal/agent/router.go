package agent

// Phase is a state of the extraction network.
type Phase string

const (
	PhaseRouting    Phase = "ROUTING"
	PhaseScanning   Phase = "SCANNING"
	PhasePersisting Phase = "PERSISTING"
	PhaseDone       Phase = "DONE"
)

// Snapshot is what the router sees before each step.
type Snapshot struct {
	Saved     bool
	ReceiptID string
	HasScan   bool
}

// Next decides which phase runs next. Once the completion flag is set it
// always returns PhaseDone.
func Next(s Snapshot) Phase {
	switch {
	case s.Saved:
		return PhaseDone
	case !s.HasScan:
		return PhaseScanning
	default:
		return PhasePersisting
	}
}

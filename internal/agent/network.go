// Package agent implements the two-agent extraction network: a scanning agent
// that turns a receipt PDF into JSON and a database agent that persists it,
// coordinated by a pure router over per-run state.
package agent

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"receiptly/internal/workflow"
)

// Request identifies the receipt a run works on.
type Request struct {
	URL       string
	ReceiptID uuid.UUID
}

// Result is the output of one agent invocation.
type Result struct {
	Agent  string `json:"agent"`
	Output any    `json:"output"`
}

// RunContext is shared by the agents of one network run.
type RunContext struct {
	Instruction string
	Request     Request
	State       *State
	Step        workflow.Step
	History     []Result
}

// LatestScan returns the most recent scan produced in this run.
func (rc *RunContext) LatestScan() *ScanResult {
	for i := len(rc.History) - 1; i >= 0; i-- {
		if scan, ok := rc.History[i].Output.(*ScanResult); ok && scan != nil {
			return scan
		}
	}
	return nil
}

// Snapshot builds the router input from the current state and history.
func (rc *RunContext) Snapshot() Snapshot {
	id, saved := rc.State.Saved()
	return Snapshot{Saved: saved, ReceiptID: id, HasScan: rc.LatestScan() != nil}
}

// Agent is one participant in the network.
type Agent interface {
	Name() string
	Run(ctx context.Context, rc *RunContext) (any, error)
}

// Network routes between the scanning and database agents until the receipt is saved.
type Network struct {
	scanning   Agent
	persisting Agent
	logger     *zap.Logger
}

// NewNetwork creates a Network.
func NewNetwork(scanning, persisting Agent, logger *zap.Logger) *Network {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Network{scanning: scanning, persisting: persisting, logger: logger}
}

// Run drives the network for one receipt. It returns when the router reaches
// PhaseDone or when a step fails, including the host running out of step budget.
func (n *Network) Run(ctx context.Context, step workflow.Step, req Request) (*RunContext, error) {
	rc := &RunContext{
		Instruction: BuildInstruction(req),
		Request:     req,
		State:       NewState(),
		Step:        step,
	}
	log := n.logger.With(zap.String("receipt_id", req.ReceiptID.String()))

	for {
		phase := Next(rc.Snapshot())
		log.Debug("network routed", zap.String("phase", string(phase)), zap.Int("turn", len(rc.History)))

		var agent Agent
		switch phase {
		case PhaseDone:
			return rc, nil
		case PhaseScanning:
			agent = n.scanning
		case PhasePersisting:
			agent = n.persisting
		default:
			return rc, fmt.Errorf("router returned unexpected phase %q", phase)
		}

		out, err := step.Run(ctx, "agent:"+agent.Name(), func(ctx context.Context) (any, error) {
			return agent.Run(ctx, rc)
		})
		if err != nil {
			return rc, err
		}
		rc.History = append(rc.History, Result{Agent: agent.Name(), Output: out})
	}
}

package dialogue

import "github.com/devashram/callseva/internal/model/call"

// MaxTransferAttempts bounds how often a single call may be handed toward the
// front desk before the assistant gives up.
const MaxTransferAttempts = 3

// Action is the escalation policy's verdict for one escalation request.
type Action string

const (
	// ActionTransfer dials the operator with a bounded ring timeout.
	ActionTransfer Action = "transfer"
	// ActionDecline tells the caller the operator is unavailable; the call
	// proceeds toward its end and is never silently retried.
	ActionDecline Action = "decline"
)

// Policy decides between transferring and declining. It is deterministic,
// consults no external services, and its only side effect is bumping the
// attempt counter on the call state. Attempts never reset within a call.
type Policy struct {
	maxAttempts int
}

// NewPolicy creates an escalation policy. A non-positive limit falls back to
// MaxTransferAttempts.
func NewPolicy(maxAttempts int) *Policy {
	if maxAttempts <= 0 {
		maxAttempts = MaxTransferAttempts
	}
	return &Policy{maxAttempts: maxAttempts}
}

// Decide increments the call's transfer attempt counter and returns the
// action for this escalation.
func (p *Policy) Decide(state *call.State) Action {
	state.TransferAttempts++
	if state.TransferAttempts >= p.maxAttempts {
		return ActionDecline
	}
	return ActionTransfer
}

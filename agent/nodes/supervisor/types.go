package supervisornode

import (
	"errors"
	"time"

	contractx "github.com/kritsadaw/tripdesk/agent/contract"
	statex "github.com/kritsadaw/tripdesk/agent/state"
)

var (
	ErrInvalidUtterance = errors.New("utterance is empty")
	ErrNilSession       = errors.New("session state is required")
	ErrNoDecision       = errors.New("routing decision is missing")
)

// Supervisor-authored turn texts. Deterministic on purpose: the state machine
// stays correct and testable regardless of model output quality.
const (
	WelcomeText       = "I can help you book flights and cabs. Would you like to book a flight or a cab?"
	ClarificationText = "I can help you book flights and cabs! Please specify if you'd like to book a flight or a cab/taxi."
	StopText          = "Booking process stopped. How can I assist you further?"
	ThankYouText      = "Thank you for using our travel booking service! Have a great trip!"
	CompletedText     = "Both flight and cab bookings are complete! Would you like to start a new booking?"
)

// DecisionKind says what this turn does.
type DecisionKind string

const (
	// DecideEmit appends supervisor turns only; no agent is invoked.
	DecideEmit DecisionKind = "emit"
	// DecideInvoke routes the turn to one task agent.
	DecideInvoke DecisionKind = "invoke"
	// DecideReset replaces the whole session.
	DecideReset DecisionKind = "reset"
)

// Decision is the routing outcome for one user turn, computed before any
// side effect so it can be tested as a pure function of (state, utterance).
type Decision struct {
	Kind DecisionKind

	// Invoke fields.
	Leg     statex.Leg
	Handoff string // synthetic supervisor turn seeding cross-leg context

	// Emit fields.
	Emit []string

	// State to settle into when no agent result overrides it.
	NextDialogue statex.DialogueState
	NextActive   statex.Leg

	// DeclinedLeg marks a cross-sell decline for the completed leg.
	DeclinedLeg statex.Leg
	// ClearDeclinedLeg lifts a decline flag on a fresh trigger of the
	// complementary leg.
	ClearDeclinedLeg statex.Leg
}

type GraphInput struct {
	Session   *statex.SessionState
	Utterance string
}

type GraphOutput struct {
	// Turns are the supervisor/agent turns appended during this invocation,
	// in append order, for the driver to render.
	Turns []statex.Turn
}

type GraphState struct {
	Utterance string
	Now       time.Time
	CallID    string

	Session  *statex.SessionState
	Decision Decision

	HandoffTurn *statex.Turn
	AgentResp   contractx.TurnResponse
	Invoked     bool

	Appended []statex.Turn
}

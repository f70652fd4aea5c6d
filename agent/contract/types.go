package contract

import (
	statex "github.com/kritsadaw/tripdesk/agent/state"
)

// TurnRequest is what the supervisor hands a task agent for one user turn.
type TurnRequest struct {
	// Context is the bounded trailing slice of the transcript, including any
	// synthesized handoff turn. The agent reads it only to build its prompt.
	Context []statex.Turn `json:"context"`
	// Utterance is the raw user input for this turn.
	Utterance string `json:"utterance"`
	// Record is a copy of the agent's current booking record. The agent
	// returns its updated copy; the supervisor owns applying it.
	Record statex.BookingRecord `json:"record"`
	// CallID identifies this agent invocation for turn idempotency keys.
	CallID string `json:"call_id"`
}

// TurnResponse is the agent's result for one turn.
type TurnResponse struct {
	Reply  string               `json:"reply"`
	Record statex.BookingRecord `json:"record"`
	// Final is set when the agent saw the completion sentinel and the booking
	// is done.
	Final bool `json:"final"`
	// Recovered is set when the completion call failed and Reply is the
	// local-recovery apology. Record is the request record untouched.
	Recovered bool `json:"recovered"`
}

package supervisornode

import (
	"context"
	"fmt"

	contractx "github.com/kritsadaw/tripdesk/agent/contract"
	statex "github.com/kritsadaw/tripdesk/agent/state"
)

// contextWindow is the bounded transcript suffix handed to a task agent.
const contextWindow = 5

// DispatchAgent invokes the routed task agent with the trailing context plus
// any synthesized handoff turn. Transient completion failures never surface
// here: the agent contract recovers them into an apology response.
func DispatchAgent(ctx context.Context, in *GraphState, registry contractx.Registry) (*GraphState, error) {
	if in == nil || in.Session == nil {
		return nil, ErrNilSession
	}
	if in.Decision.Kind != DecideInvoke {
		return nil, fmt.Errorf("%w: dispatch without invoke decision", ErrNoDecision)
	}

	leg := in.Decision.Leg
	agent := agentFor(registry, leg)
	if agent == nil {
		return nil, fmt.Errorf("%w: no agent for leg %q", contractx.ErrValidation, leg)
	}

	turnContext := in.Session.Log.Tail(contextWindow)
	if in.Decision.Handoff != "" {
		handoff := statex.NewTurn(statex.SpeakerSupervisor, in.Decision.Handoff, in.CallID, in.Now)
		in.HandoffTurn = &handoff
		turnContext = append(append([]statex.Turn{}, turnContext...), handoff)
	}

	resp, err := agent.HandleTurn(ctx, contractx.TurnRequest{
		Context:   turnContext,
		Utterance: in.Utterance,
		Record:    *in.Session.Ledger.Record(leg),
		CallID:    in.CallID,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s agent: %v", contractx.ErrModelInvoke, leg, err)
	}

	in.AgentResp = resp
	in.Invoked = true
	return in, nil
}

func agentFor(registry contractx.Registry, leg statex.Leg) contractx.TaskAgent {
	switch leg {
	case statex.LegFlight:
		return registry.Flight()
	case statex.LegCab:
		return registry.Cab()
	default:
		return nil
	}
}

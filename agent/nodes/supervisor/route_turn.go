package supervisornode

import (
	"fmt"

	routex "github.com/kritsadaw/tripdesk/agent/route"
	statex "github.com/kritsadaw/tripdesk/agent/state"
)

// RouteTurn computes the routing decision for this turn. Pure with respect to
// the session: it reads state and the utterance and mutates nothing.
func RouteTurn(in *GraphState) (*GraphState, error) {
	if in == nil || in.Session == nil {
		return nil, ErrNilSession
	}

	in.Decision = decide(in.Session, in.Utterance)
	return in, nil
}

func decide(s *statex.SessionState, utterance string) Decision {
	// The kill switch outranks every other match, in every state.
	if routex.IsStop(utterance) {
		return Decision{
			Kind:         DecideEmit,
			Emit:         []string{StopText},
			NextDialogue: statex.DialogueIdle,
			NextActive:   statex.LegNone,
		}
	}

	// "New booking" is a driver command in any state, not just after
	// completion. The already-booked reply invites it mid-session.
	if routex.IsNewBooking(utterance) {
		return Decision{Kind: DecideReset}
	}

	switch s.Dialogue {
	case statex.DialogueCompleted:
		return Decision{
			Kind:         DecideEmit,
			Emit:         []string{CompletedText},
			NextDialogue: statex.DialogueCompleted,
			NextActive:   statex.LegNone,
		}

	case statex.DialogueAwaitingCrossSell:
		completed := s.ActiveAgent
		if routex.IsAffirmative(utterance) {
			target := completed.Other()
			return Decision{
				Kind:         DecideInvoke,
				Leg:          target,
				Handoff:      handoffText(target, *s.Ledger.Record(completed), utterance),
				NextDialogue: statex.RoutingState(target),
				NextActive:   target,
			}
		}
		return Decision{
			Kind:         DecideEmit,
			Emit:         []string{ThankYouText},
			NextDialogue: statex.DialogueIdle,
			NextActive:   statex.LegNone,
			DeclinedLeg:  completed,
		}

	case statex.DialogueRoutingFlight, statex.DialogueRoutingCab:
		leg := s.ActiveAgent
		return Decision{
			Kind:         DecideInvoke,
			Leg:          leg,
			NextDialogue: statex.RoutingState(leg),
			NextActive:   leg,
		}
	}

	// Idle.
	leg, ok := routex.Classify(utterance)
	if !ok {
		return Decision{
			Kind:         DecideEmit,
			Emit:         []string{ClarificationText},
			NextDialogue: statex.DialogueIdle,
			NextActive:   statex.LegNone,
		}
	}

	if s.Ledger.IsComplete(leg) {
		// Booked is sticky; rebooking needs a full reset.
		return Decision{
			Kind: DecideEmit,
			Emit: []string{fmt.Sprintf(
				"Your %s is already booked. Would you like to book a %s instead, or start a new booking?",
				leg, leg.Other(),
			)},
			NextDialogue: statex.DialogueIdle,
			NextActive:   statex.LegNone,
		}
	}

	d := Decision{
		Kind:         DecideInvoke,
		Leg:          leg,
		NextDialogue: statex.RoutingState(leg),
		NextActive:   leg,
	}
	if other := leg.Other(); s.Ledger.IsComplete(other) {
		// Prior completed leg seeds the new agent's context. A fresh trigger
		// also retires any earlier cross-sell decline for that leg.
		d.Handoff = handoffText(leg, *s.Ledger.Record(other), utterance)
		d.ClearDeclinedLeg = other
	}
	return d
}

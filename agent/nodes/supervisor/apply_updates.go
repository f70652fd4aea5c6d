package supervisornode

import (
	"github.com/rs/zerolog/log"

	statex "github.com/kritsadaw/tripdesk/agent/state"
)

// ApplyUpdates commits the turn: transcript appends, ledger mutation, and the
// dialogue-state transition. All session writes for a turn happen here (and
// in the user-turn append), keeping the exactly-once logging contract in one
// place.
func ApplyUpdates(in *GraphState) (*GraphState, error) {
	if in == nil || in.Session == nil {
		return nil, ErrNilSession
	}

	s := in.Session
	switch in.Decision.Kind {
	case DecideReset:
		s.Reset(in.Now)
		appendTurn(in, statex.NewTurn(statex.SpeakerSupervisor, WelcomeText, in.CallID, in.Now))
		return in, nil

	case DecideEmit:
		for _, text := range in.Decision.Emit {
			appendTurn(in, statex.NewTurn(statex.SpeakerSupervisor, text, in.CallID, in.Now))
		}
		if in.Decision.DeclinedLeg.Valid() {
			s.MarkDeclined(in.Decision.DeclinedLeg)
		}
		settle(in, in.Decision.NextDialogue, in.Decision.NextActive)
		return in, nil

	case DecideInvoke:
		if !in.Invoked {
			return nil, ErrNoDecision
		}
		return applyAgentResult(in)
	}

	return nil, ErrNoDecision
}

func applyAgentResult(in *GraphState) (*GraphState, error) {
	s := in.Session
	leg := in.Decision.Leg
	resp := in.AgentResp

	if in.Decision.ClearDeclinedLeg.Valid() {
		s.ClearDeclined(in.Decision.ClearDeclinedLeg)
	}
	if in.HandoffTurn != nil {
		appendTurn(in, *in.HandoffTurn)
	}
	appendTurn(in, statex.NewTurn(statex.AgentSpeaker(leg), resp.Reply, in.CallID, in.Now))

	if resp.Recovered {
		// Transient completion failure: no ledger mutation, state unchanged
		// beyond the routing the turn already established.
		settle(in, in.Decision.NextDialogue, in.Decision.NextActive)
		return in, nil
	}

	if resp.Final && s.Ledger.IsComplete(leg) {
		// Duplicate completion signal. Suppress the second completion turn;
		// the ledger stays as it is.
		log.Debug().Str("leg", string(leg)).Msg("suppressing duplicate completion signal")
		settle(in, statex.DialogueIdle, statex.LegNone)
		return in, nil
	}

	if !s.Ledger.IsComplete(leg) {
		record := resp.Record
		if !resp.Final && record.Status == statex.BookingBooked {
			// Booked comes only from an explicit completion signal.
			record.Status = statex.BookingInProgress
		}
		*s.Ledger.Record(leg) = record
	}

	if !resp.Final {
		settle(in, in.Decision.NextDialogue, in.Decision.NextActive)
		return in, nil
	}

	if !s.Ledger.IsComplete(leg) {
		// Final without a booked record is a malformed completion signal. No
		// cross-sell offer for a leg the ledger does not show as booked.
		log.Warn().Str("leg", string(leg)).Msg("final response without booked record")
		settle(in, statex.DialogueIdle, statex.LegNone)
		return in, nil
	}

	switch {
	case s.Ledger.AllComplete():
		appendTurn(in, statex.NewTurn(statex.SpeakerSupervisor, CompletedText, in.CallID, in.Now))
		settle(in, statex.DialogueCompleted, statex.LegNone)
	case shouldCrossSell(s, leg):
		prompt := crossSellPrompt(leg, *s.Ledger.Record(leg))
		appendTurn(in, statex.NewTurn(statex.SpeakerSupervisor, prompt, in.CallID, in.Now))
		settle(in, statex.DialogueAwaitingCrossSell, leg)
	default:
		settle(in, statex.DialogueIdle, statex.LegNone)
	}
	return in, nil
}

func settle(in *GraphState, dialogue statex.DialogueState, active statex.Leg) {
	in.Session.Dialogue = dialogue
	in.Session.ActiveAgent = active
	in.Session.Touch(in.Now)
}

func appendTurn(in *GraphState, t statex.Turn) {
	if in.Session.Log.Append(t) {
		in.Appended = append(in.Appended, t)
	}
}

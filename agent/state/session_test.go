package state

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestConversationLogAppendDedup(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)
	var log ConversationLog

	turn := NewTurn(SpeakerFlightAgent, "Where to?", "call-1", now)
	if !log.Append(turn) {
		t.Fatalf("first append must succeed")
	}
	if log.Append(turn) {
		t.Fatalf("identical keyed turn must be dropped")
	}
	if log.Len() != 1 {
		t.Fatalf("log length = %d, want 1", log.Len())
	}

	// Same text from a different call is a new turn.
	if !log.Append(NewTurn(SpeakerFlightAgent, "Where to?", "call-2", now)) {
		t.Fatalf("different call id must append")
	}
	if log.Len() != 2 {
		t.Fatalf("log length = %d, want 2", log.Len())
	}
}

func TestConversationLogAppendUnkeyedNeverDropped(t *testing.T) {
	t.Parallel()

	var log ConversationLog
	user := Turn{Speaker: SpeakerUser, Text: "yes", Timestamp: time.Now()}
	if !log.Append(user) || !log.Append(user) {
		t.Fatalf("unkeyed turns must always append")
	}
	if log.Len() != 2 {
		t.Fatalf("log length = %d, want 2", log.Len())
	}
}

func TestConversationLogTail(t *testing.T) {
	t.Parallel()

	var log ConversationLog
	for _, text := range []string{"a", "b", "c"} {
		log.Append(Turn{Speaker: SpeakerUser, Text: text, Timestamp: time.Now()})
	}

	if got := log.Tail(0); got != nil {
		t.Fatalf("Tail(0) = %v, want nil", got)
	}
	if got := log.Tail(2); len(got) != 2 || got[0].Text != "b" || got[1].Text != "c" {
		t.Fatalf("Tail(2) = %v", got)
	}
	if got := log.Tail(10); len(got) != 3 {
		t.Fatalf("Tail(10) length = %d, want 3", len(got))
	}
}

func TestBookingLedgerBookedIsSticky(t *testing.T) {
	t.Parallel()

	ledger := NewBookingLedger()
	ledger.SetStatus(LegFlight, BookingInProgress)
	ledger.SetStatus(LegFlight, BookingBooked)
	ledger.SetStatus(LegFlight, BookingInProgress)

	if got := ledger.Flight.Status; got != BookingBooked {
		t.Fatalf("flight status = %s, booked must be sticky", got)
	}
	if ledger.AllComplete() {
		t.Fatalf("cab is not booked, AllComplete must be false")
	}

	ledger.SetStatus(LegCab, BookingBooked)
	if !ledger.AllComplete() {
		t.Fatalf("both booked, AllComplete must be true")
	}
}

func TestBookingRecordDetails(t *testing.T) {
	t.Parallel()

	ledger := NewBookingLedger()
	ledger.SetDetails(LegCab, map[string]string{"pickup": "airport", "pickup_time": "10:30"})
	ledger.SetDetails(LegCab, map[string]string{"pickup_time": "11:00"})

	if got := ledger.Cab.Detail("pickup"); got != "airport" {
		t.Fatalf("pickup = %q, want airport", got)
	}
	if got := ledger.Cab.Detail("pickup_time"); got != "11:00" {
		t.Fatalf("merge must overwrite, pickup_time = %q", got)
	}
	if got := ledger.Cab.Detail("missing"); got != "" {
		t.Fatalf("missing detail = %q, want empty", got)
	}
}

func TestSessionStateResetKeepsID(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)
	s := NewSessionState("session-1", now)
	s.Log.Append(Turn{Speaker: SpeakerUser, Text: "hello", Timestamp: now})
	s.Ledger.SetStatus(LegFlight, BookingBooked)
	s.Dialogue = DialogueCompleted
	s.MarkDeclined(LegFlight)
	s.PendingInput = "new booking"

	s.Reset(now.Add(time.Minute))

	if s.SessionID != "session-1" {
		t.Fatalf("session id = %q, must survive reset", s.SessionID)
	}
	if s.Log.Len() != 0 {
		t.Fatalf("log length = %d, want 0", s.Log.Len())
	}
	if s.Ledger.Flight.Status != BookingNotStarted {
		t.Fatalf("flight status = %s, want not_started", s.Ledger.Flight.Status)
	}
	if s.Dialogue != DialogueIdle || s.ActiveAgent != LegNone {
		t.Fatalf("reset must settle idle, got %s/%s", s.Dialogue, s.ActiveAgent)
	}
	if s.Declined(LegFlight) {
		t.Fatalf("decline flags must not survive reset")
	}
	if s.PendingInput != "" {
		t.Fatalf("pending input must be cleared")
	}
}

func TestSessionStateValidate(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()

	tests := []struct {
		name    string
		mutate  func(*SessionState)
		wantErr error
	}{
		{
			name:   "fresh session is valid",
			mutate: func(s *SessionState) {},
		},
		{
			name:    "empty session id",
			mutate:  func(s *SessionState) { s.SessionID = "  " },
			wantErr: ErrInvalidSession,
		},
		{
			name:    "unknown dialogue state",
			mutate:  func(s *SessionState) { s.Dialogue = "sleeping" },
			wantErr: ErrMalformedSession,
		},
		{
			name:    "unknown active agent",
			mutate:  func(s *SessionState) { s.ActiveAgent = "train" },
			wantErr: ErrMalformedSession,
		},
		{
			name: "routing without matching active agent",
			mutate: func(s *SessionState) {
				s.Dialogue = DialogueRoutingFlight
				s.ActiveAgent = LegCab
			},
			wantErr: ErrMalformedSession,
		},
		{
			name: "awaiting cross-sell without completed agent",
			mutate: func(s *SessionState) {
				s.Dialogue = DialogueAwaitingCrossSell
			},
			wantErr: ErrMalformedSession,
		},
		{
			name: "awaiting cross-sell is consistent",
			mutate: func(s *SessionState) {
				s.Dialogue = DialogueAwaitingCrossSell
				s.ActiveAgent = LegFlight
			},
		},
		{
			name: "turn with empty speaker",
			mutate: func(s *SessionState) {
				s.Log.Append(Turn{Text: "ghost", Timestamp: now})
			},
			wantErr: ErrMalformedSession,
		},
		{
			name: "routing cab is consistent",
			mutate: func(s *SessionState) {
				s.Dialogue = DialogueRoutingCab
				s.ActiveAgent = LegCab
			},
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			s := NewSessionState("session-1", now)
			tc.mutate(s)

			err := s.Validate()
			if tc.wantErr == nil {
				if err != nil {
					t.Fatalf("Validate() error = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("Validate() error = %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestSessionStateJSONRoundTrip(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)
	s := NewSessionState("session-1", now)
	s.Log.Append(NewTurn(SpeakerSupervisor, "Would you like to book a flight or a cab?", "call-1", now))
	s.Ledger.SetStatus(LegFlight, BookingBooked)
	s.Ledger.SetDetails(LegFlight, map[string]string{"summary": "AI-302"})
	s.Dialogue = DialogueAwaitingCrossSell
	s.ActiveAgent = LegFlight
	s.MarkDeclined(LegCab)

	raw, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var out SessionState
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if err := out.Validate(); err != nil {
		t.Fatalf("round-tripped state invalid: %v", err)
	}
	if !out.Ledger.Flight.Booked() {
		t.Fatalf("flight booked flag lost")
	}
	if got := out.Ledger.Flight.Detail("summary"); got != "AI-302" {
		t.Fatalf("summary = %q, want AI-302", got)
	}
	if !out.Declined(LegCab) {
		t.Fatalf("decline flag lost")
	}
	if out.Log.Len() != 1 || out.Log.Turns[0].Key == "" {
		t.Fatalf("turn key lost: %#v", out.Log.Turns)
	}
}

func TestLegOther(t *testing.T) {
	t.Parallel()

	if LegFlight.Other() != LegCab || LegCab.Other() != LegFlight {
		t.Fatalf("Other() must swap the legs")
	}
	if LegNone.Other() != LegNone {
		t.Fatalf("Other() of none must be none")
	}
	if LegNone.Valid() {
		t.Fatalf("none must not be a valid leg")
	}
}

func TestAgentSpeaker(t *testing.T) {
	t.Parallel()

	if AgentSpeaker(LegFlight) != SpeakerFlightAgent {
		t.Fatalf("flight leg must map to flight_agent")
	}
	if AgentSpeaker(LegCab) != SpeakerCabAgent {
		t.Fatalf("cab leg must map to cab_agent")
	}
}

package state

import (
	"errors"
	"fmt"
	"hash/fnv"
	"strings"
	"time"
)

// Leg is one of the two booking types the system handles. Closed set.
type Leg string

const (
	LegNone   Leg = ""
	LegFlight Leg = "flight"
	LegCab    Leg = "cab"
)

// Other returns the complementary leg.
func (l Leg) Other() Leg {
	switch l {
	case LegFlight:
		return LegCab
	case LegCab:
		return LegFlight
	default:
		return LegNone
	}
}

func (l Leg) Valid() bool {
	return l == LegFlight || l == LegCab
}

// Speaker tags who produced a turn.
type Speaker string

const (
	SpeakerUser        Speaker = "user"
	SpeakerSupervisor  Speaker = "supervisor"
	SpeakerFlightAgent Speaker = "flight_agent"
	SpeakerCabAgent    Speaker = "cab_agent"
)

// AgentSpeaker maps a leg to the speaker tag of its task agent.
func AgentSpeaker(leg Leg) Speaker {
	if leg == LegCab {
		return SpeakerCabAgent
	}
	return SpeakerFlightAgent
}

// BookingStatus is the lifecycle of one leg's booking.
type BookingStatus string

const (
	BookingNotStarted          BookingStatus = "not_started"
	BookingInProgress          BookingStatus = "in_progress"
	BookingPendingConfirmation BookingStatus = "pending_confirmation"
	BookingBooked              BookingStatus = "booked"
)

// DialogueState is the supervisor's routing state.
type DialogueState string

const (
	DialogueIdle              DialogueState = "idle"
	DialogueRoutingFlight     DialogueState = "routing_flight"
	DialogueRoutingCab        DialogueState = "routing_cab"
	DialogueAwaitingCrossSell DialogueState = "awaiting_cross_sell"
	DialogueCompleted         DialogueState = "completed"
)

// RoutingState returns the dialogue state for a leg being actively routed.
func RoutingState(leg Leg) DialogueState {
	if leg == LegCab {
		return DialogueRoutingCab
	}
	return DialogueRoutingFlight
}

/* --------------------------------- Turn --------------------------------- */

// Turn is one utterance in the transcript. Immutable once appended.
type Turn struct {
	Speaker   Speaker   `json:"speaker"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
	// Key is the per-turn idempotency key derived from
	// (speaker, text, triggering call id). Empty for turns that cannot be
	// produced twice by one controller invocation (e.g. user input).
	Key string `json:"key,omitempty"`
}

// NewTurn builds a turn with its idempotency key.
func NewTurn(speaker Speaker, text string, callID string, now time.Time) Turn {
	return Turn{
		Speaker:   speaker,
		Text:      text,
		Timestamp: now.UTC(),
		Key:       turnKey(speaker, text, callID),
	}
}

func turnKey(speaker Speaker, text, callID string) string {
	h := fnv.New64a()
	h.Write([]byte(speaker))
	h.Write([]byte{0})
	h.Write([]byte(text))
	h.Write([]byte{0})
	h.Write([]byte(callID))
	return fmt.Sprintf("%x", h.Sum64())
}

/* ----------------------------- ConversationLog --------------------------- */

// ConversationLog is the append-only transcript. Insertion order is the
// context-window order.
type ConversationLog struct {
	Turns []Turn `json:"turns"`
}

// Append adds a turn. A turn whose key matches the previously appended key is
// dropped, so a retried agent call cannot double-log its reply. Reports
// whether the turn was appended.
func (l *ConversationLog) Append(t Turn) bool {
	if t.Key != "" && len(l.Turns) > 0 && l.Turns[len(l.Turns)-1].Key == t.Key {
		return false
	}
	l.Turns = append(l.Turns, t)
	return true
}

func (l *ConversationLog) Len() int {
	return len(l.Turns)
}

// Tail returns the last n turns in order. The returned slice aliases the log;
// callers must not mutate it.
func (l *ConversationLog) Tail(n int) []Turn {
	if n <= 0 || len(l.Turns) == 0 {
		return nil
	}
	if n >= len(l.Turns) {
		return l.Turns
	}
	return l.Turns[len(l.Turns)-n:]
}

// Last returns the most recent turn, if any.
func (l *ConversationLog) Last() (Turn, bool) {
	if len(l.Turns) == 0 {
		return Turn{}, false
	}
	return l.Turns[len(l.Turns)-1], true
}

/* ------------------------------ BookingLedger ---------------------------- */

// BookingRecord is one leg's booking state. The owning task agent is the only
// component that moves status to Booked; the supervisor never fabricates it.
type BookingRecord struct {
	Status  BookingStatus     `json:"status"`
	Details map[string]string `json:"details,omitempty"`
}

func NewBookingRecord() BookingRecord {
	return BookingRecord{Status: BookingNotStarted}
}

func (r *BookingRecord) SetDetail(key, val string) {
	if r.Details == nil {
		r.Details = make(map[string]string, 4)
	}
	r.Details[key] = val
}

func (r BookingRecord) Detail(key string) string {
	return r.Details[key]
}

func (r BookingRecord) Booked() bool {
	return r.Status == BookingBooked
}

// BookingLedger holds the two leg records. Flight and Cab are the only legs;
// lookups for anything else fall back to the flight record rather than
// panicking, but Valid legs are enforced at the routing layer.
type BookingLedger struct {
	Flight BookingRecord `json:"flight"`
	Cab    BookingRecord `json:"cab"`
}

func NewBookingLedger() BookingLedger {
	return BookingLedger{
		Flight: NewBookingRecord(),
		Cab:    NewBookingRecord(),
	}
}

// Record returns a pointer to the record for the leg.
func (b *BookingLedger) Record(leg Leg) *BookingRecord {
	if leg == LegCab {
		return &b.Cab
	}
	return &b.Flight
}

// SetStatus moves a leg's status. Booked is sticky: once set it is never
// overwritten except through a full session reset.
func (b *BookingLedger) SetStatus(leg Leg, status BookingStatus) {
	rec := b.Record(leg)
	if rec.Booked() {
		return
	}
	rec.Status = status
}

// SetDetails merges detail fields into a leg's record.
func (b *BookingLedger) SetDetails(leg Leg, details map[string]string) {
	rec := b.Record(leg)
	for k, v := range details {
		rec.SetDetail(k, v)
	}
}

func (b *BookingLedger) IsComplete(leg Leg) bool {
	return b.Record(leg).Booked()
}

func (b *BookingLedger) AllComplete() bool {
	return b.Flight.Booked() && b.Cab.Booked()
}

/* ------------------------------ SessionState ----------------------------- */

var (
	ErrNilSessionState  = errors.New("session state is nil")
	ErrInvalidSession   = errors.New("session id is empty")
	ErrMalformedSession = errors.New("session state malformed")
)

// SessionState is the root aggregate for one user session. The supervisor is
// the sole mutator; the driver reads it for rendering and writes
// PendingInput only.
type SessionState struct {
	SessionID string `json:"session_id"`

	Log    ConversationLog `json:"log"`
	Ledger BookingLedger   `json:"ledger"`

	Dialogue    DialogueState `json:"dialogue"`
	ActiveAgent Leg           `json:"active_agent,omitempty"`

	// CrossSellDeclined marks, per completed leg, that the user declined the
	// follow-up offer. One-shot: cleared on reset or when the other leg is
	// later started through a fresh trigger.
	CrossSellDeclined map[Leg]bool `json:"cross_sell_declined,omitempty"`

	PendingInput string    `json:"pending_input,omitempty"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func NewSessionState(sessionID string, now time.Time) *SessionState {
	return &SessionState{
		SessionID: sessionID,
		Ledger:    NewBookingLedger(),
		Dialogue:  DialogueIdle,
		UpdatedAt: now.UTC(),
	}
}

func (s *SessionState) Touch(now time.Time) {
	s.UpdatedAt = now.UTC()
}

// Reset replaces the whole session content in place: fresh log, fresh ledger,
// no active agent. The session id survives.
func (s *SessionState) Reset(now time.Time) {
	s.Log = ConversationLog{}
	s.Ledger = NewBookingLedger()
	s.Dialogue = DialogueIdle
	s.ActiveAgent = LegNone
	s.CrossSellDeclined = nil
	s.PendingInput = ""
	s.Touch(now)
}

// MarkDeclined records a declined cross-sell offer for the completed leg.
func (s *SessionState) MarkDeclined(completedLeg Leg) {
	if !completedLeg.Valid() {
		return
	}
	if s.CrossSellDeclined == nil {
		s.CrossSellDeclined = make(map[Leg]bool, 2)
	}
	s.CrossSellDeclined[completedLeg] = true
}

// ClearDeclined lifts the decline flag once the other leg is started through
// a fresh trigger.
func (s *SessionState) ClearDeclined(completedLeg Leg) {
	delete(s.CrossSellDeclined, completedLeg)
}

func (s *SessionState) Declined(completedLeg Leg) bool {
	return s.CrossSellDeclined[completedLeg]
}

// Validate fails fast on a malformed aggregate. The supervisor refuses the
// turn rather than silently defaulting.
func (s *SessionState) Validate() error {
	if s == nil {
		return ErrNilSessionState
	}
	if strings.TrimSpace(s.SessionID) == "" {
		return ErrInvalidSession
	}
	switch s.Dialogue {
	case DialogueIdle, DialogueRoutingFlight, DialogueRoutingCab,
		DialogueAwaitingCrossSell, DialogueCompleted:
	default:
		return fmt.Errorf("%w: unknown dialogue state %q", ErrMalformedSession, s.Dialogue)
	}
	if s.ActiveAgent != LegNone && !s.ActiveAgent.Valid() {
		return fmt.Errorf("%w: unknown active agent %q", ErrMalformedSession, s.ActiveAgent)
	}
	switch s.Dialogue {
	case DialogueRoutingFlight:
		if s.ActiveAgent != LegFlight {
			return fmt.Errorf("%w: routing flight without flight agent active", ErrMalformedSession)
		}
	case DialogueRoutingCab:
		if s.ActiveAgent != LegCab {
			return fmt.Errorf("%w: routing cab without cab agent active", ErrMalformedSession)
		}
	case DialogueAwaitingCrossSell:
		// ActiveAgent names the completed leg here; without it an acceptance
		// has no complementary leg to route to.
		if !s.ActiveAgent.Valid() {
			return fmt.Errorf("%w: awaiting cross-sell without a completed agent", ErrMalformedSession)
		}
	}
	for _, t := range s.Log.Turns {
		if t.Speaker == "" {
			return fmt.Errorf("%w: turn with empty speaker", ErrMalformedSession)
		}
	}
	return nil
}

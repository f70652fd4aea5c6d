package supervisornode

import (
	"fmt"

	statex "github.com/kritsadaw/tripdesk/agent/state"
)

// shouldCrossSell gates the complementary-leg offer: it fires only on the
// turn a leg completes, only while the other leg is unbooked, and never after
// the user already declined for this completion.
func shouldCrossSell(s *statex.SessionState, completed statex.Leg) bool {
	if !completed.Valid() {
		return false
	}
	if s.Ledger.IsComplete(completed.Other()) {
		return false
	}
	return !s.Declined(completed)
}

func detailOr(rec statex.BookingRecord, key, fallback string) string {
	if v := rec.Detail(key); v != "" {
		return v
	}
	return fallback
}

// crossSellPrompt phrases the follow-up offer from the completed leg's
// recorded details, falling back to generic phrasing when fields are absent.
func crossSellPrompt(completed statex.Leg, rec statex.BookingRecord) string {
	if completed == statex.LegFlight {
		return fmt.Sprintf(
			"Your flight from %s to %s on %s at %s is booked. Would you like to book a cab to the departure airport or from the arrival airport to complete your travel plans?",
			detailOr(rec, "origin", "your departure city"),
			detailOr(rec, "destination", "your destination"),
			detailOr(rec, "date", "your travel date"),
			detailOr(rec, "time", "your travel time"),
		)
	}
	return fmt.Sprintf(
		"Your cab from %s at %s is booked. Would you like to book a flight that aligns with your cab schedule?",
		detailOr(rec, "pickup", "your pickup location"),
		detailOr(rec, "pickup_time", "your pickup time"),
	)
}

// handoffText is the one cross-agent information channel: a synthetic
// supervisor turn bridging the completed leg's details into the next agent's
// prompt context. Agents never read each other's booking record directly.
func handoffText(target statex.Leg, completedRec statex.BookingRecord, utterance string) string {
	completed := target.Other()
	summary := completedRec.Detail("summary")
	if summary == "" {
		summary = fmt.Sprintf("%s booked based on user preferences", completed)
	}

	if target == statex.LegCab {
		return fmt.Sprintf(
			"The user wants to book a cab: %q. They have just completed a flight booking. Here are the details:\n\n%s\n\n"+
				"Please assist the user in booking a cab based on this flight information. "+
				"For example, suggest a cab to the departure airport a few hours before the flight, "+
				"or a cab from the arrival airport after landing, or both.",
			utterance, summary,
		)
	}
	return fmt.Sprintf(
		"The user wants to book a flight: %q. They have just completed a cab booking. Here are the details:\n\n%s\n\n"+
			"Please assist the user in booking a flight based on this cab information. "+
			"For example, suggest a flight that aligns with the cab's pickup or drop-off location and time.",
		utterance, summary,
	)
}

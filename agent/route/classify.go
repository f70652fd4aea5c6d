// Package route holds the pure utterance predicates the supervisor routes on.
// Keyword matching is deliberate: this layer is the seam where a real intent
// classifier could be swapped in without touching the state machine.
package route

import (
	"strings"

	statex "github.com/kritsadaw/tripdesk/agent/state"
)

var (
	flightKeywords = []string{"flight", "plane", "air ticket", "fly"}
	cabKeywords    = []string{"cab", "taxi", "ride", "airport drop", "uber", "lyft"}
)

// Classify maps an utterance to a booking leg by case-insensitive substring
// match. Reports false when neither keyword set matches.
func Classify(utterance string) (statex.Leg, bool) {
	lowered := strings.ToLower(utterance)
	for _, kw := range flightKeywords {
		if strings.Contains(lowered, kw) {
			return statex.LegFlight, true
		}
	}
	for _, kw := range cabKeywords {
		if strings.Contains(lowered, kw) {
			return statex.LegCab, true
		}
	}
	return statex.LegNone, false
}

// IsStop recognizes the universal abort. Checked before any leg keywords.
func IsStop(utterance string) bool {
	return strings.Contains(strings.ToLower(utterance), "stop")
}

// IsAffirmative recognizes acceptance of the cross-sell offer.
func IsAffirmative(utterance string) bool {
	return strings.Contains(strings.ToLower(utterance), "yes")
}

// IsNewBooking recognizes the driver's start-over action.
func IsNewBooking(utterance string) bool {
	return strings.Contains(strings.ToLower(utterance), "new booking")
}

package route

import (
	"testing"

	statex "github.com/kritsadaw/tripdesk/agent/state"
)

func TestClassify(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name      string
		utterance string
		wantLeg   statex.Leg
		wantOK    bool
	}{
		{"flight keyword", "I want to book a flight", statex.LegFlight, true},
		{"plane keyword uppercase", "Get me on a PLANE tomorrow", statex.LegFlight, true},
		{"air ticket phrase", "need an air ticket to Pune", statex.LegFlight, true},
		{"fly keyword", "I'd like to fly to Goa", statex.LegFlight, true},
		{"cab keyword", "book a cab please", statex.LegCab, true},
		{"taxi keyword", "can I get a Taxi", statex.LegCab, true},
		{"uber keyword", "call an uber", statex.LegCab, true},
		{"airport drop phrase", "I need an airport drop", statex.LegCab, true},
		{"flight wins over cab", "flight first, then a cab", statex.LegFlight, true},
		{"no match", "hello there", statex.LegNone, false},
		{"empty", "", statex.LegNone, false},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			leg, ok := Classify(tc.utterance)
			if leg != tc.wantLeg || ok != tc.wantOK {
				t.Fatalf("Classify(%q) = (%q, %v), want (%q, %v)", tc.utterance, leg, ok, tc.wantLeg, tc.wantOK)
			}
		})
	}
}

func TestIsStop(t *testing.T) {
	t.Parallel()

	if !IsStop("please STOP now") {
		t.Fatal("expected stop match")
	}
	if IsStop("keep going") {
		t.Fatal("unexpected stop match")
	}
}

func TestIsAffirmative(t *testing.T) {
	t.Parallel()

	if !IsAffirmative("Yes, book it") {
		t.Fatal("expected affirmative match")
	}
	if IsAffirmative("no thanks") {
		t.Fatal("unexpected affirmative match")
	}
}

func TestIsNewBooking(t *testing.T) {
	t.Parallel()

	if !IsNewBooking("start New Booking") {
		t.Fatal("expected new booking match")
	}
	if IsNewBooking("new cab") {
		t.Fatal("unexpected new booking match")
	}
}

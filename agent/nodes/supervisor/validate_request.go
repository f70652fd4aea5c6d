package supervisornode

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	statex "github.com/kritsadaw/tripdesk/agent/state"
)

// ValidateRequest fails fast on a malformed aggregate or empty input, then
// appends the user turn. The controller owns every transcript append, so one
// controller invocation logs the user exactly once no matter what happens
// downstream.
func ValidateRequest(in GraphInput, nowFn func() time.Time) (*GraphState, error) {
	if in.Session == nil {
		return nil, ErrNilSession
	}
	if err := in.Session.Validate(); err != nil {
		return nil, fmt.Errorf("refusing turn: %w", err)
	}

	utterance := strings.TrimSpace(in.Utterance)
	if utterance == "" {
		return nil, ErrInvalidUtterance
	}

	now := nowFn().UTC()
	in.Session.Log.Append(statex.Turn{
		Speaker:   statex.SpeakerUser,
		Text:      utterance,
		Timestamp: now,
	})
	in.Session.PendingInput = ""

	return &GraphState{
		Utterance: utterance,
		Now:       now,
		CallID:    uuid.NewString(),
		Session:   in.Session,
	}, nil
}

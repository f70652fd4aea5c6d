package booking

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog/log"

	contractx "github.com/kritsadaw/tripdesk/agent/contract"
	statex "github.com/kritsadaw/tripdesk/agent/state"
)

// CompletionSentinel is the literal token the role templates instruct the
// model to append when a booking is finalized. It is the only structured
// signal extracted from model output.
const CompletionSentinel = "BOOKING_COMPLETE"

// apologyReply surfaces a transient completion failure to the user. The
// session stays where it was; the user retries by sending another utterance.
const apologyReply = "Sorry, I encountered an error. Please try again."

// replyInvoker is the slice of compose.Runnable the agent needs. Narrowed so
// tests can fake the model call.
type replyInvoker interface {
	Invoke(ctx context.Context, input map[string]any, opts ...compose.Option) (*schema.Message, error)
}

type taskAgent struct {
	leg    statex.Leg
	runner replyInvoker
}

func newTaskAgent(leg statex.Leg, runner replyInvoker) (*taskAgent, error) {
	if !leg.Valid() {
		return nil, fmt.Errorf("%w: unknown booking leg %q", contractx.ErrValidation, leg)
	}
	if runner == nil {
		return nil, fmt.Errorf("%w: reply runner is required", contractx.ErrValidation)
	}
	return &taskAgent{leg: leg, runner: runner}, nil
}

// HandleTurn produces one reply for one routed user turn. Completion failures
// are recovered locally: the apology reply comes back with the record
// untouched and Final unset.
func (a *taskAgent) HandleTurn(ctx context.Context, req contractx.TurnRequest) (contractx.TurnResponse, error) {
	input := renderInput(req.Context, req.Utterance)

	msg, err := a.runner.Invoke(ctx, map[string]any{"input": input})
	if err != nil {
		log.Warn().Err(err).Str("leg", string(a.leg)).Msg("completion call failed, recovering locally")
		return recovered(req), nil
	}
	if msg == nil || strings.TrimSpace(msg.Content) == "" {
		log.Warn().Str("leg", string(a.leg)).Msg("completion returned empty content, recovering locally")
		return recovered(req), nil
	}

	raw := strings.TrimSpace(msg.Content)
	record := req.Record

	if strings.Contains(raw, CompletionSentinel) {
		reply := strings.TrimSpace(strings.ReplaceAll(raw, CompletionSentinel, ""))
		if reply == "" {
			reply = fmt.Sprintf("Your %s has been booked successfully!", a.leg)
		}
		record.Status = statex.BookingBooked
		record.SetDetail("summary", reply)
		return contractx.TurnResponse{
			Reply:  reply,
			Record: record,
			Final:  true,
		}, nil
	}

	record.Status = statex.BookingInProgress
	if a.leg == statex.LegCab && strings.Contains(strings.ToLower(raw), "confirm") {
		// The cab flow recaps and waits for an explicit confirmation before
		// the sentinel appears.
		record.Status = statex.BookingPendingConfirmation
	}

	return contractx.TurnResponse{
		Reply:  raw,
		Record: record,
	}, nil
}

func recovered(req contractx.TurnRequest) contractx.TurnResponse {
	return contractx.TurnResponse{
		Reply:     apologyReply,
		Record:    req.Record,
		Recovered: true,
	}
}

// renderInput lays out the trailing transcript and the fresh utterance the
// same way for both legs: speaker-tagged lines, blank-line separated.
func renderInput(turns []statex.Turn, utterance string) string {
	var b strings.Builder
	b.WriteString("Conversation history:\n")
	for _, t := range turns {
		fmt.Fprintf(&b, "[%s] %s\n\n", t.Speaker, t.Text)
	}
	b.WriteString("User: ")
	b.WriteString(utterance)
	return b.String()
}

package supervisor

import (
	"context"
	"errors"
	"time"

	"github.com/cloudwego/eino/compose"

	contractx "github.com/kritsadaw/tripdesk/agent/contract"
	nodex "github.com/kritsadaw/tripdesk/agent/nodes/supervisor"
	statex "github.com/kritsadaw/tripdesk/agent/state"
)

var (
	ErrInvalidUtterance = nodex.ErrInvalidUtterance
	ErrNilSession       = nodex.ErrNilSession
)

// Supervisor is the dialogue controller: it owns routing, cross-agent context
// handoff, cross-sell prompting, and every session mutation. One invocation
// processes exactly one user turn, synchronously; callers must not run
// concurrent turns against the same session.
type Supervisor struct {
	agents contractx.Registry

	graphRunner compose.Runnable[nodex.GraphInput, nodex.GraphOutput]

	now func() time.Time
}

func New(agents contractx.Registry) (*Supervisor, error) {
	if agents == nil {
		return nil, errors.New("agent registry is required")
	}

	s := &Supervisor{
		agents: agents,
		now:    time.Now,
	}

	graphRunner, err := s.compileHandleTurnGraph(context.Background())
	if err != nil {
		return nil, err
	}
	s.graphRunner = graphRunner

	return s, nil
}

// HandleTurn routes one user utterance through the state machine, mutating
// the session in place. It returns the turns appended during this
// invocation, in order, for the driver to render.
func (s *Supervisor) HandleTurn(ctx context.Context, session *statex.SessionState, utterance string) ([]statex.Turn, error) {
	out, err := s.graphRunner.Invoke(ctx, nodex.GraphInput{
		Session:   session,
		Utterance: utterance,
	})
	if err != nil {
		return nil, err
	}
	return out.Turns, nil
}

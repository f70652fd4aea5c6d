package contract

import "context"

// TaskAgent handles one routed turn for its booking leg.
type TaskAgent interface {
	HandleTurn(ctx context.Context, req TurnRequest) (TurnResponse, error)
}

// Registry resolves the task agents the supervisor routes to.
type Registry interface {
	Flight() TaskAgent
	Cab() TaskAgent
}

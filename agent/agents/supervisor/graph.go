package supervisor

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/compose"

	nodex "github.com/kritsadaw/tripdesk/agent/nodes/supervisor"
)

func (s *Supervisor) compileHandleTurnGraph(
	ctx context.Context,
) (compose.Runnable[nodex.GraphInput, nodex.GraphOutput], error) {
	graph := compose.NewGraph[nodex.GraphInput, nodex.GraphOutput]()

	if err := graph.AddLambdaNode("validate_request",
		compose.InvokableLambda(func(ctx context.Context, in nodex.GraphInput) (*nodex.GraphState, error) {
			return nodex.ValidateRequest(in, s.now)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node validate_request: %w", err)
	}

	if err := graph.AddLambdaNode("route_turn",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.RouteTurn(in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node route_turn: %w", err)
	}

	if err := graph.AddLambdaNode("agent_path",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (nodex.GraphOutput, error) {
			st, err := nodex.DispatchAgent(ctx, in, s.agents)
			if err != nil {
				return nodex.GraphOutput{}, err
			}
			st, err = nodex.ApplyUpdates(st)
			if err != nil {
				return nodex.GraphOutput{}, err
			}
			return nodex.FinalizeReply(st)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node agent_path: %w", err)
	}

	if err := graph.AddLambdaNode("supervisor_path",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (nodex.GraphOutput, error) {
			st, err := nodex.ApplyUpdates(in)
			if err != nil {
				return nodex.GraphOutput{}, err
			}
			return nodex.FinalizeReply(st)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node supervisor_path: %w", err)
	}

	branch := compose.NewGraphBranch(
		func(ctx context.Context, in *nodex.GraphState) (string, error) {
			if in == nil {
				return "", nodex.ErrNilSession
			}
			if in.Decision.Kind == nodex.DecideInvoke {
				return "agent_path", nil
			}
			return "supervisor_path", nil
		},
		map[string]bool{
			"agent_path":      true,
			"supervisor_path": true,
		},
	)

	if err := graph.AddEdge(compose.START, "validate_request"); err != nil {
		return nil, fmt.Errorf("add edge start->validate_request: %w", err)
	}
	if err := graph.AddEdge("validate_request", "route_turn"); err != nil {
		return nil, fmt.Errorf("add edge validate_request->route_turn: %w", err)
	}
	if err := graph.AddBranch("route_turn", branch); err != nil {
		return nil, fmt.Errorf("add routing branch: %w", err)
	}
	if err := graph.AddEdge("agent_path", compose.END); err != nil {
		return nil, fmt.Errorf("add edge agent_path->end: %w", err)
	}
	if err := graph.AddEdge("supervisor_path", compose.END); err != nil {
		return nil, fmt.Errorf("add edge supervisor_path->end: %w", err)
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName("supervisor.handle_turn"))
	if err != nil {
		return nil, fmt.Errorf("compile supervisor graph: %w", err)
	}
	return runner, nil
}

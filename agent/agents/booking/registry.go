package booking

import (
	"context"
	"fmt"

	contractx "github.com/kritsadaw/tripdesk/agent/contract"
	llmx "github.com/kritsadaw/tripdesk/agent/llm"
	promptx "github.com/kritsadaw/tripdesk/agent/prompt"
	statex "github.com/kritsadaw/tripdesk/agent/state"
)

type registryImpl struct {
	flight contractx.TaskAgent
	cab    contractx.TaskAgent
}

func (r *registryImpl) Flight() contractx.TaskAgent {
	return r.flight
}

func (r *registryImpl) Cab() contractx.TaskAgent {
	return r.cab
}

// NewRegistry builds the two task agents over their compiled reply graphs.
func NewRegistry(ctx context.Context, cfg llmx.Config) (contractx.Registry, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	prompts := promptx.LoadPromptSet()
	if prompts.Flight == "" || prompts.Cab == "" {
		return nil, contractx.ErrPromptMissing
	}

	flight, err := buildAgent(ctx, cfg, statex.LegFlight, prompts.Flight)
	if err != nil {
		return nil, err
	}
	cab, err := buildAgent(ctx, cfg, statex.LegCab, prompts.Cab)
	if err != nil {
		return nil, err
	}

	return &registryImpl{flight: flight, cab: cab}, nil
}

func buildAgent(ctx context.Context, cfg llmx.Config, leg statex.Leg, systemPrompt string) (contractx.TaskAgent, error) {
	modelCfg := cfg.GroqFor(leg)
	chatModel, err := modelCfg.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: create %s model: %v", contractx.ErrModelInvoke, leg, err)
	}

	runner, err := compileReplyGraph(ctx, chatModel, systemPrompt, fmt.Sprintf("booking.%s_reply_graph", leg))
	if err != nil {
		return nil, fmt.Errorf("%w: compile %s reply graph: %v", contractx.ErrModelInvoke, leg, err)
	}

	return newTaskAgent(leg, runner)
}

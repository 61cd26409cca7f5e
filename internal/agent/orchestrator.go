// Package agent implements the bounded tool-calling orchestrator: agent
// selection (explicit or keyword-routed), skill injection, and the
// think-act-observe loop over a configured provider and tool registry.
package agent

import (
	"context"
	"fmt"

	"github.com/qscuio/qubot/internal/domain"
)

// Orchestrator selects an agent for a message and runs it to completion.
type Orchestrator struct {
	agents *Registry
	loop   *Loop
}

// NewOrchestrator ties an agent registry to the loop that executes runs.
func NewOrchestrator(agents *Registry, loop *Loop) *Orchestrator {
	return &Orchestrator{agents: agents, loop: loop}
}

// Run executes the named agent (or the default agent if name is empty)
// against message.
func (o *Orchestrator) Run(ctx context.Context, name string, req RunRequest) (*domain.AgentResponse, error) {
	a, ok := o.agents.Get(name)
	if !ok {
		return &domain.AgentResponse{
			Content:  fmt.Sprintf("agent %q not found", name),
			Metadata: map[string]interface{}{"error": "agent_not_found"},
		}, nil
	}

	skillCtx := buildSkillContext(o.agents.Skills(), req.Message)

	result, err := o.loop.Run(ctx, a, skillCtx, req)
	if err != nil {
		return &domain.AgentResponse{
			Content:  fmt.Sprintf("agent execution failed: %v", err),
			Metadata: map[string]interface{}{"error": err.Error()},
		}, nil
	}
	return &result.Response, nil
}

// RunWithRouting picks an agent by keyword routing on the message text
// before running it.
func (o *Orchestrator) RunWithRouting(ctx context.Context, req RunRequest) (*domain.AgentResponse, error) {
	return o.Run(ctx, RouteMessage(req.Message), req)
}

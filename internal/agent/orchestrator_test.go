package agent

import (
	"context"
	"testing"

	"github.com/qscuio/qubot/internal/domain"
	"github.com/qscuio/qubot/internal/providers"
	"github.com/qscuio/qubot/internal/tools"
)

func TestOrchestrator_Run_UnknownAgent(t *testing.T) {
	provider := &scriptedProvider{responses: []providers.ChatResponse{{Content: "unused"}}}
	reg := &Registry{agents: map[string]domain.Agent{}, defName: "chat"} // no agents registered at all
	loop := NewLoop(provider, tools.NewRegistry(), nil)
	orch := NewOrchestrator(reg, loop)

	resp, err := orch.Run(context.Background(), "nonexistent", RunRequest{Message: "hi"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if resp.Metadata["error"] != "agent_not_found" {
		t.Errorf("expected agent_not_found error, got %v", resp.Metadata)
	}
}

func TestOrchestrator_Run_DefaultAgentFallback(t *testing.T) {
	provider := &scriptedProvider{responses: []providers.ChatResponse{{Content: "chat reply"}}}
	reg := NewRegistry()
	loop := NewLoop(provider, tools.NewRegistry(), nil)
	orch := NewOrchestrator(reg, loop)

	resp, err := orch.Run(context.Background(), "", RunRequest{Message: "hello"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if resp.Content != "chat reply" {
		t.Errorf("Content = %q, want %q", resp.Content, "chat reply")
	}
}

func TestOrchestrator_RunWithRouting_RoutesToCodeAgent(t *testing.T) {
	provider := &scriptedProvider{responses: []providers.ChatResponse{{Content: "fixed the bug"}}}
	reg := NewRegistry()
	loop := NewLoop(provider, tools.NewRegistry(), nil)
	orch := NewOrchestrator(reg, loop)

	resp, err := orch.RunWithRouting(context.Background(), RunRequest{Message: "there's a bug in this function"})
	if err != nil {
		t.Fatalf("RunWithRouting: %v", err)
	}
	if resp.Content != "fixed the bug" {
		t.Errorf("Content = %q, want %q", resp.Content, "fixed the bug")
	}
}

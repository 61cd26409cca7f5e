package agent

import (
	"context"
	"testing"

	"github.com/qscuio/qubot/internal/domain"
	"github.com/qscuio/qubot/internal/providers"
	"github.com/qscuio/qubot/internal/tools"
)

// scriptedProvider returns one ChatResponse per call, in order, looping on
// the last response once exhausted.
type scriptedProvider struct {
	responses []providers.ChatResponse
	calls     int
}

func (p *scriptedProvider) Chat(ctx context.Context, req providers.ChatRequest) (*providers.ChatResponse, error) {
	i := p.calls
	if i >= len(p.responses) {
		i = len(p.responses) - 1
	}
	p.calls++
	resp := p.responses[i]
	return &resp, nil
}

func (p *scriptedProvider) ChatStream(ctx context.Context, req providers.ChatRequest, onChunk func(providers.StreamChunk)) (*providers.ChatResponse, error) {
	return p.Chat(ctx, req)
}

func (p *scriptedProvider) DefaultModel() string { return "test-model" }
func (p *scriptedProvider) Name() string         { return "test" }

type echoTool struct{ calls int }

func (t *echoTool) Name() string        { return "echo" }
func (t *echoTool) Description() string { return "echoes its input" }
func (t *echoTool) Parameters() map[string]interface{} {
	return map[string]interface{}{"type": "object"}
}
func (t *echoTool) Execute(ctx context.Context, args map[string]interface{}) *tools.Result {
	t.calls++
	return tools.NewResult("echoed")
}

func testAgent(maxCalls int, allowParallel bool) domain.Agent {
	return domain.Agent{
		Name: "test",
		Settings: domain.AgentSettings{
			Name:          "test",
			SystemPrompt:  "you are a test agent",
			Tools:         []string{"echo"},
			MaxToolCalls:  maxCalls,
			AllowParallel: allowParallel,
		},
	}
}

func TestLoop_Run_NoToolCalls(t *testing.T) {
	provider := &scriptedProvider{responses: []providers.ChatResponse{
		{Content: "hello there"},
	}}
	reg := tools.NewRegistry()
	reg.Register(&echoTool{})
	loop := NewLoop(provider, reg, nil)

	result, err := loop.Run(context.Background(), testAgent(5, false), "", RunRequest{Message: "hi"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Response.Content != "hello there" {
		t.Errorf("Content = %q, want %q", result.Response.Content, "hello there")
	}
	if len(result.Response.ToolCalls) != 0 {
		t.Errorf("ToolCalls = %d, want 0", len(result.Response.ToolCalls))
	}
	if result.Iterations != 1 {
		t.Errorf("Iterations = %d, want 1", result.Iterations)
	}
}

func TestLoop_Run_ExecutesToolThenFinishes(t *testing.T) {
	provider := &scriptedProvider{responses: []providers.ChatResponse{
		{ToolCalls: []providers.ToolCall{{ID: "1", Name: "echo", Arguments: map[string]interface{}{}}}},
		{Content: "done"},
	}}
	echo := &echoTool{}
	reg := tools.NewRegistry()
	reg.Register(echo)
	loop := NewLoop(provider, reg, nil)

	result, err := loop.Run(context.Background(), testAgent(5, false), "", RunRequest{Message: "use the tool"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if echo.calls != 1 {
		t.Errorf("tool calls = %d, want 1", echo.calls)
	}
	if result.Response.Content != "done" {
		t.Errorf("Content = %q, want %q", result.Response.Content, "done")
	}
	if len(result.Response.ToolCalls) != 1 {
		t.Errorf("ToolCalls = %d, want 1", len(result.Response.ToolCalls))
	}
	if len(result.Response.ToolResults) != 1 {
		t.Errorf("ToolResults = %d, want 1", len(result.Response.ToolResults))
	}
	if result.Response.Metadata != nil {
		t.Errorf("Metadata = %v, want nil", result.Response.Metadata)
	}
}

func TestLoop_Run_MaxCallsReached(t *testing.T) {
	// Every response keeps requesting the same tool call, never finishing.
	toolCall := providers.ToolCall{ID: "1", Name: "echo", Arguments: map[string]interface{}{}}
	provider := &scriptedProvider{responses: []providers.ChatResponse{
		{ToolCalls: []providers.ToolCall{toolCall}},
	}}
	reg := tools.NewRegistry()
	reg.Register(&echoTool{})
	loop := NewLoop(provider, reg, nil)

	result, err := loop.Run(context.Background(), testAgent(3, false), "", RunRequest{Message: "loop forever"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Iterations != 3 {
		t.Errorf("Iterations = %d, want 3", result.Iterations)
	}
	if result.Response.Metadata["max_calls_reached"] != true {
		t.Errorf("expected max_calls_reached=true, got %v", result.Response.Metadata)
	}
}

func TestLoop_Run_ParallelToolCallsPreserveOrder(t *testing.T) {
	calls := []providers.ToolCall{
		{ID: "1", Name: "echo", Arguments: map[string]interface{}{"n": 1}},
		{ID: "2", Name: "echo", Arguments: map[string]interface{}{"n": 2}},
		{ID: "3", Name: "echo", Arguments: map[string]interface{}{"n": 3}},
	}
	provider := &scriptedProvider{responses: []providers.ChatResponse{
		{ToolCalls: calls},
		{Content: "done"},
	}}
	reg := tools.NewRegistry()
	reg.Register(&echoTool{})
	loop := NewLoop(provider, reg, nil)

	result, err := loop.Run(context.Background(), testAgent(5, true), "", RunRequest{Message: "parallel please"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(result.Response.ToolCalls) != 3 {
		t.Errorf("ToolCalls = %d, want 3", len(result.Response.ToolCalls))
	}
	if len(result.Response.ToolResults) != 3 {
		t.Errorf("ToolResults = %d, want 3", len(result.Response.ToolResults))
	}
}

func TestLoop_Run_UnknownToolReturnsErrorMessageNotFailure(t *testing.T) {
	provider := &scriptedProvider{responses: []providers.ChatResponse{
		{ToolCalls: []providers.ToolCall{{ID: "1", Name: "does_not_exist", Arguments: map[string]interface{}{}}}},
		{Content: "handled the missing tool"},
	}}
	reg := tools.NewRegistry() // no tools registered
	loop := NewLoop(provider, reg, nil)

	result, err := loop.Run(context.Background(), testAgent(5, false), "", RunRequest{Message: "call a missing tool"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Response.Content != "handled the missing tool" {
		t.Errorf("Content = %q, want %q", result.Response.Content, "handled the missing tool")
	}
}

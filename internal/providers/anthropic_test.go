package providers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNewAnthropicProvider_Defaults(t *testing.T) {
	p := NewAnthropicProvider("key")
	if p.Name() != "anthropic" {
		t.Errorf("Name() = %q, want anthropic", p.Name())
	}
	if p.DefaultModel() != defaultClaudeModel {
		t.Errorf("DefaultModel() = %q, want %q", p.DefaultModel(), defaultClaudeModel)
	}
	if p.baseURL != anthropicAPIBase {
		t.Errorf("baseURL = %q, want %q", p.baseURL, anthropicAPIBase)
	}
}

func TestNewAnthropicProvider_WithOptions(t *testing.T) {
	p := NewAnthropicProvider("key",
		WithAnthropicModel("claude-custom"),
		WithAnthropicBaseURL("https://proxy.example.com/v1/"),
	)
	if p.DefaultModel() != "claude-custom" {
		t.Errorf("DefaultModel() = %q, want claude-custom", p.DefaultModel())
	}
	if p.baseURL != "https://proxy.example.com/v1" {
		t.Errorf("baseURL = %q, want trimmed trailing slash", p.baseURL)
	}
}

func TestWithAnthropicBaseURL_EmptyKeepsDefault(t *testing.T) {
	p := NewAnthropicProvider("key", WithAnthropicBaseURL(""))
	if p.baseURL != anthropicAPIBase {
		t.Errorf("baseURL = %q, want default preserved on empty override", p.baseURL)
	}
}

func TestAnthropicThinkingBudget(t *testing.T) {
	tests := map[string]int{"low": 4096, "medium": 10000, "high": 32000, "unknown": 10000}
	for level, want := range tests {
		if got := anthropicThinkingBudget(level); got != want {
			t.Errorf("anthropicThinkingBudget(%q) = %d, want %d", level, got, want)
		}
	}
}

func TestAnthropicProvider_Chat_Success(t *testing.T) {
	var gotVersion, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotVersion = r.Header.Get("anthropic-version")
		gotAuth = r.Header.Get("x-api-key")
		json.NewEncoder(w).Encode(anthropicResponse{
			Content:    []anthropicContentBlock{{Type: "text", Text: "hi there"}},
			StopReason: "end_turn",
			Usage:      anthropicUsage{InputTokens: 10, OutputTokens: 5},
		})
	}))
	defer srv.Close()

	p := NewAnthropicProvider("secret-key", WithAnthropicBaseURL(srv.URL))
	resp, err := p.Chat(context.Background(), ChatRequest{Messages: []Message{{Role: "user", Content: "hi"}}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Content != "hi there" {
		t.Errorf("Content = %q, want %q", resp.Content, "hi there")
	}
	if resp.FinishReason != "stop" {
		t.Errorf("FinishReason = %q, want stop", resp.FinishReason)
	}
	if resp.Usage.TotalTokens != 15 {
		t.Errorf("Usage.TotalTokens = %d, want 15", resp.Usage.TotalTokens)
	}
	if gotVersion != anthropicAPIVersion {
		t.Errorf("anthropic-version header = %q, want %q", gotVersion, anthropicAPIVersion)
	}
	if gotAuth != "secret-key" {
		t.Errorf("x-api-key header = %q, want secret-key", gotAuth)
	}
}

func TestAnthropicProvider_ParseResponse_ToolUseSetsFinishReason(t *testing.T) {
	p := NewAnthropicProvider("key")
	resp := p.parseResponse(&anthropicResponse{
		Content: []anthropicContentBlock{
			{Type: "tool_use", ID: "call1", Name: "search", Input: json.RawMessage(`{"query":"go"}`)},
		},
		StopReason: "tool_use",
		Usage:      anthropicUsage{InputTokens: 20, OutputTokens: 8},
	})
	if resp.FinishReason != "tool_calls" {
		t.Errorf("FinishReason = %q, want tool_calls", resp.FinishReason)
	}
	if len(resp.ToolCalls) != 1 || resp.ToolCalls[0].Name != "search" {
		t.Fatalf("unexpected ToolCalls: %+v", resp.ToolCalls)
	}
	if resp.ToolCalls[0].Arguments["query"] != "go" {
		t.Errorf("Arguments[query] = %v, want go", resp.ToolCalls[0].Arguments["query"])
	}
	if resp.RawAssistantContent == nil {
		t.Error("expected RawAssistantContent to be preserved when tool calls are present")
	}
}

func TestAnthropicProvider_ParseResponse_MaxTokensSetsLengthFinishReason(t *testing.T) {
	p := NewAnthropicProvider("key")
	resp := p.parseResponse(&anthropicResponse{StopReason: "max_tokens"})
	if resp.FinishReason != "length" {
		t.Errorf("FinishReason = %q, want length", resp.FinishReason)
	}
}

func TestAnthropicProvider_ParseResponse_ThinkingAccumulatesTokenEstimate(t *testing.T) {
	p := NewAnthropicProvider("key")
	resp := p.parseResponse(&anthropicResponse{
		Content:    []anthropicContentBlock{{Type: "thinking", Thinking: "abcdefgh"}}, // 8 chars
		StopReason: "end_turn",
	})
	if resp.Thinking != "abcdefgh" {
		t.Errorf("Thinking = %q, want abcdefgh", resp.Thinking)
	}
	if resp.Usage.ThinkingTokens != 2 {
		t.Errorf("ThinkingTokens = %d, want 2 (8 chars / 4)", resp.Usage.ThinkingTokens)
	}
}

func TestAnthropicProvider_BuildRequestBody_ThinkingDisablesTemperature(t *testing.T) {
	p := NewAnthropicProvider("key")
	body := p.buildRequestBody(p.DefaultModel(), ChatRequest{
		Messages: []Message{{Role: "user", Content: "hi"}},
		Options: map[string]interface{}{
			OptTemperature:   0.7,
			OptThinkingLevel: "medium",
		},
	}, false)
	if _, ok := body["temperature"]; ok {
		t.Error("expected temperature to be removed when thinking is enabled")
	}
	thinking, ok := body["thinking"].(map[string]interface{})
	if !ok {
		t.Fatal("expected a thinking block in the request body")
	}
	if thinking["budget_tokens"] != 10000 {
		t.Errorf("budget_tokens = %v, want 10000", thinking["budget_tokens"])
	}
}

func TestAnthropicProvider_BuildRequestBody_SystemMessagesSeparated(t *testing.T) {
	p := NewAnthropicProvider("key")
	body := p.buildRequestBody(p.DefaultModel(), ChatRequest{
		Messages: []Message{
			{Role: "system", Content: "be helpful"},
			{Role: "user", Content: "hi"},
		},
	}, false)
	system, ok := body["system"].([]map[string]interface{})
	if !ok || len(system) != 1 {
		t.Fatalf("expected one system block, got %v", body["system"])
	}
	messages := body["messages"].([]map[string]interface{})
	if len(messages) != 1 || messages[0]["role"] != "user" {
		t.Errorf("expected only the user message in messages, got %+v", messages)
	}
	if _, ok := system[len(system)-1]["cache_control"]; !ok {
		t.Error("expected last system block to carry a cache_control breakpoint")
	}
	if _, ok := body["cache_control"]; ok {
		t.Error("did not expect a top-level cache_control key")
	}
}

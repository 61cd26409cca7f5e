package providers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNewDashScopeProvider_Defaults(t *testing.T) {
	p := NewDashScopeProvider("key", "", "")
	if p.APIBase() != dashscopeDefaultBase {
		t.Errorf("APIBase() = %q, want default dashscope base", p.APIBase())
	}
	if p.DefaultModel() != dashscopeDefaultModel {
		t.Errorf("DefaultModel() = %q, want %q", p.DefaultModel(), dashscopeDefaultModel)
	}
	if p.Name() != "dashscope" {
		t.Errorf("Name() = %q, want dashscope", p.Name())
	}
}

func TestDashScopeThinkingBudget(t *testing.T) {
	tests := map[string]int{"low": 4096, "medium": 16384, "high": 32768, "unknown": 16384}
	for level, want := range tests {
		if got := dashscopeThinkingBudget(level); got != want {
			t.Errorf("dashscopeThinkingBudget(%q) = %d, want %d", level, got, want)
		}
	}
}

func TestDashScopeProvider_ChatStream_ToolsFallBackToNonStreaming(t *testing.T) {
	var gotStream bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]interface{}
		json.NewDecoder(r.Body).Decode(&body)
		gotStream, _ = body["stream"].(bool)
		json.NewEncoder(w).Encode(openAIResponse{
			Choices: []openAIChoice{{Message: openAIMessage{Content: "answer"}, FinishReason: "stop"}},
		})
	}))
	defer srv.Close()

	p := NewDashScopeProvider("key", srv.URL, "qwen3-max")
	var chunks []StreamChunk
	resp, err := p.ChatStream(context.Background(), ChatRequest{
		Messages: []Message{{Role: "user", Content: "hi"}},
		Tools:    []ToolDefinition{{Type: "function", Function: ToolFunctionSchema{Name: "search"}}},
	}, func(c StreamChunk) { chunks = append(chunks, c) })
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Content != "answer" {
		t.Errorf("Content = %q, want answer", resp.Content)
	}
	if gotStream {
		t.Error("expected the fallback request to be non-streaming when tools are present")
	}
	if len(chunks) == 0 || !chunks[len(chunks)-1].Done {
		t.Errorf("expected a final Done chunk to be synthesized, got %+v", chunks)
	}
}

func TestDashScopeProvider_ChatStream_MapsThinkingLevelToBudget(t *testing.T) {
	var gotOptions map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]interface{}
		json.NewDecoder(r.Body).Decode(&body)
		gotOptions = body
		json.NewEncoder(w).Encode(openAIResponse{Choices: []openAIChoice{{FinishReason: "stop"}}})
	}))
	defer srv.Close()

	p := NewDashScopeProvider("key", srv.URL, "qwen3-max")
	_, err := p.ChatStream(context.Background(), ChatRequest{
		Messages: []Message{{Role: "user", Content: "hi"}},
		Tools:    []ToolDefinition{{Type: "function", Function: ToolFunctionSchema{Name: "search"}}},
		Options:  map[string]interface{}{OptThinkingLevel: "high"},
	}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotOptions[OptEnableThinking] != true {
		t.Errorf("enable_thinking = %v, want true", gotOptions[OptEnableThinking])
	}
	if gotOptions[OptThinkingBudget] != float64(32768) {
		t.Errorf("thinking_budget = %v, want 32768", gotOptions[OptThinkingBudget])
	}
}

package providers

import "testing"

func TestCollapseToolCallsWithoutSig_NoToolCalls(t *testing.T) {
	msgs := []Message{{Role: "user", Content: "hi"}, {Role: "assistant", Content: "hello"}}
	got := collapseToolCallsWithoutSig(msgs)
	if len(got) != 2 {
		t.Fatalf("len(got) = %d, want 2 (unchanged)", len(got))
	}
}

func TestCollapseToolCallsWithoutSig_KeepsSignedToolCalls(t *testing.T) {
	msgs := []Message{
		{Role: "user", Content: "search go"},
		{Role: "assistant", ToolCalls: []ToolCall{{ID: "1", Name: "search", Metadata: map[string]string{"thought_signature": "sig"}}}},
		{Role: "tool", ToolCallID: "1", Content: "result"},
	}
	got := collapseToolCallsWithoutSig(msgs)
	if len(got) != 3 {
		t.Fatalf("expected signed tool-call cycle to be preserved unchanged, got %d messages", len(got))
	}
}

func TestCollapseToolCallsWithoutSig_DropsUnsignedCycleKeepingContent(t *testing.T) {
	msgs := []Message{
		{Role: "user", Content: "search go"},
		{
			Role:    "assistant",
			Content: "let me check",
			ToolCalls: []ToolCall{
				{ID: "1", Name: "search"}, // no thought_signature
			},
		},
		{Role: "tool", ToolCallID: "1", Content: "result"},
		{Role: "assistant", Content: "here's what I found"},
	}
	got := collapseToolCallsWithoutSig(msgs)
	if len(got) != 3 {
		t.Fatalf("len(got) = %d, want 3 (user, collapsed assistant text, final assistant)", len(got))
	}
	if got[1].Role != "assistant" || got[1].Content != "let me check" || len(got[1].ToolCalls) != 0 {
		t.Errorf("got[1] = %+v, want collapsed assistant message with only text content", got[1])
	}
	for _, m := range got {
		if m.Role == "tool" {
			t.Error("expected orphaned tool-result message to be dropped")
		}
	}
}

func TestCollapseToolCallsWithoutSig_DropsUnsignedCycleWithNoAssistantText(t *testing.T) {
	msgs := []Message{
		{Role: "user", Content: "search go"},
		{Role: "assistant", ToolCalls: []ToolCall{{ID: "1", Name: "search"}}},
		{Role: "tool", ToolCallID: "1", Content: "result"},
	}
	got := collapseToolCallsWithoutSig(msgs)
	if len(got) != 1 {
		t.Fatalf("len(got) = %d, want 1 (assistant message fully dropped, no text to keep)", len(got))
	}
	if got[0].Role != "user" {
		t.Errorf("got[0].Role = %q, want user", got[0].Role)
	}
}

func TestCollapseToolCallsWithoutSig_MultipleCallsOneUnsignedCollapsesAll(t *testing.T) {
	msgs := []Message{
		{
			Role: "assistant",
			ToolCalls: []ToolCall{
				{ID: "1", Name: "search", Metadata: map[string]string{"thought_signature": "sig"}},
				{ID: "2", Name: "fetch"}, // unsigned
			},
		},
		{Role: "tool", ToolCallID: "1", Content: "result1"},
		{Role: "tool", ToolCallID: "2", Content: "result2"},
	}
	got := collapseToolCallsWithoutSig(msgs)
	if len(got) != 0 {
		t.Fatalf("expected the whole cycle (both calls) to collapse since one call lacks a signature, got %+v", got)
	}
}

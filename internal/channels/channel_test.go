package channels

import (
	"context"
	"testing"
	"time"

	"github.com/qscuio/qubot/internal/bus"
)

func TestIsInternalChannel(t *testing.T) {
	if !IsInternalChannel("cli") {
		t.Error("expected cli to be internal")
	}
	if IsInternalChannel("telegram") {
		t.Error("expected telegram to not be internal")
	}
}

func TestBaseChannel_IsAllowed_EmptyAllowList(t *testing.T) {
	c := NewBaseChannel("test", bus.NewMessageBus(), nil)
	if !c.IsAllowed("anyone") {
		t.Error("expected empty allow-list to permit everyone")
	}
}

func TestBaseChannel_IsAllowed(t *testing.T) {
	tests := []struct {
		name      string
		allowList []string
		senderID  string
		want      bool
	}{
		{"exact id match", []string{"123"}, "123", true},
		{"id not in list", []string{"123"}, "456", false},
		{"at-prefixed username matches bare", []string{"@alice"}, "alice", true},
		{"compound sender id matches by id part", []string{"123"}, "123|alice", true},
		{"compound sender id matches by username part", []string{"alice"}, "123|alice", true},
		{"compound allowed entry matches id", []string{"123|alice"}, "123", true},
		{"compound allowed entry matches username", []string{"123|alice"}, "alice", true},
		{"no match", []string{"123", "@bob"}, "alice", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewBaseChannel("test", bus.NewMessageBus(), tt.allowList)
			if got := c.IsAllowed(tt.senderID); got != tt.want {
				t.Errorf("IsAllowed(%q) with allowList=%v = %v, want %v", tt.senderID, tt.allowList, got, tt.want)
			}
		})
	}
}

func TestBaseChannel_HasAllowList(t *testing.T) {
	c1 := NewBaseChannel("test", bus.NewMessageBus(), nil)
	if c1.HasAllowList() {
		t.Error("expected no allow-list")
	}
	c2 := NewBaseChannel("test", bus.NewMessageBus(), []string{"123"})
	if !c2.HasAllowList() {
		t.Error("expected allow-list to be present")
	}
}

func TestBaseChannel_HandleMessage_FiltersDisallowedSender(t *testing.T) {
	b := bus.NewMessageBus()
	c := NewBaseChannel("test", b, []string{"123"})

	c.HandleMessage(bus.InboundMessage{SenderID: "999", Content: "blocked"})
	c.HandleMessage(bus.InboundMessage{SenderID: "123", Content: "allowed"})

	got, ok := b.ConsumeInbound(context.Background())
	if !ok {
		t.Fatal("expected one message to pass the allow-list")
	}
	if got.Content != "allowed" {
		t.Errorf("Content = %q, want %q", got.Content, "allowed")
	}
	if got.Channel != "test" {
		t.Errorf("Channel = %q, want %q", got.Channel, "test")
	}

	timeoutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if _, ok := b.ConsumeInbound(timeoutCtx); ok {
		t.Error("expected no further messages")
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("short", 10); got != "short" {
		t.Errorf("Truncate = %q, want %q", got, "short")
	}
	if got := Truncate("this is a long string", 7); got != "this is..." {
		t.Errorf("Truncate = %q, want %q", got, "this is...")
	}
}

package bus

import (
	"context"
	"reflect"
	"testing"
	"time"
)

func TestMessageBus_InboundRoundtrip(t *testing.T) {
	b := NewMessageBus()
	want := InboundMessage{Channel: "telegram", ChatID: "1", Content: "hello"}
	b.PublishInbound(want)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	got, ok := b.ConsumeInbound(ctx)
	if !ok {
		t.Fatal("expected a message, got none")
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestMessageBus_OutboundRoundtrip(t *testing.T) {
	b := NewMessageBus()
	want := OutboundMessage{Channel: "telegram", ChatID: "1", Content: "reply"}
	b.PublishOutbound(want)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	got, ok := b.SubscribeOutbound(ctx)
	if !ok {
		t.Fatal("expected a message, got none")
	}
	if got.Channel != want.Channel || got.ChatID != want.ChatID || got.Content != want.Content {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestMessageBus_ConsumeInbound_ContextCancelled(t *testing.T) {
	b := NewMessageBus()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, ok := b.ConsumeInbound(ctx)
	if ok {
		t.Error("expected ok=false after context cancellation")
	}
}

package outs

import (
	"context"
	"testing"

	"alertBot/internal/domain"
)

type recordingTransport struct {
	name     string
	sent     []string
	forwards int
}

func (r *recordingTransport) SendMessage(_ context.Context, _ domain.Platform, _ int64, text string) error {
	r.sent = append(r.sent, text)
	return nil
}

func (r *recordingTransport) ForwardMessage(context.Context, domain.Platform, int64, int64, int64) error {
	r.forwards++
	return nil
}

func (r *recordingTransport) ResolveChannel(context.Context, domain.Platform, string) (int64, error) {
	return -100, nil
}

func TestMultiSender_RoutesByPlatform(t *testing.T) {
	t.Parallel()
	ms := NewMultiSender()
	operator := &recordingTransport{name: "operator"}
	ms.Register(domain.PlatformTelegram, operator)

	ctx := context.Background()
	if err := ms.SendMessage(ctx, domain.PlatformTelegram, 1, "hi"); err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	if err := ms.ForwardMessage(ctx, domain.PlatformTelegram, 1, 2, 3); err != nil {
		t.Fatalf("ForwardMessage: %v", err)
	}
	if id, err := ms.ResolveChannel(ctx, domain.PlatformTelegram, "@news"); err != nil || id != -100 {
		t.Fatalf("ResolveChannel = %d, %v", id, err)
	}
	if len(operator.sent) != 1 || operator.forwards != 1 {
		t.Errorf("sent=%d forwards=%d", len(operator.sent), operator.forwards)
	}

	if err := ms.SendMessage(ctx, domain.Platform("other"), 1, "hi"); err == nil {
		t.Error("expected error for unregistered platform")
	}
}

func TestMultiSender_ForwarderOverride(t *testing.T) {
	t.Parallel()
	ms := NewMultiSender()
	operator := &recordingTransport{name: "operator"}
	listener := &recordingTransport{name: "listener"}
	ms.Register(domain.PlatformTelegram, operator)
	ms.RegisterForwarder(domain.PlatformTelegram, listener)

	_ = ms.ForwardMessage(context.Background(), domain.PlatformTelegram, 1, 2, 3)
	if listener.forwards != 1 || operator.forwards != 0 {
		t.Errorf("listener=%d operator=%d, want forward on listener", listener.forwards, operator.forwards)
	}

	ms.Unregister(domain.PlatformTelegram)
	if err := ms.ForwardMessage(context.Background(), domain.PlatformTelegram, 1, 2, 3); err == nil {
		t.Error("expected error after Unregister")
	}
}

func TestMultiSender_Nil(t *testing.T) {
	t.Parallel()
	var ms *MultiSender
	if err := ms.SendMessage(context.Background(), domain.PlatformTelegram, 1, "x"); err == nil {
		t.Error("expected error from nil sender")
	}
}

package events

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestBus_PublishSubscribe(t *testing.T) {
	t.Parallel()
	b := NewBus(zerolog.Nop())
	ch, unsubscribe := b.Subscribe(TopicForwardMatched)
	defer unsubscribe()

	b.Publish(TopicForwardMatched, "hello")
	b.Publish(TopicConfigChanged, "ignored")

	select {
	case got := <-ch:
		if got != "hello" {
			t.Errorf("got %v, want hello", got)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}
	select {
	case got := <-ch:
		t.Errorf("unexpected event from another topic: %v", got)
	default:
	}
}

func TestBus_DropsWhenFull(t *testing.T) {
	t.Parallel()
	b := NewBus(zerolog.Nop())
	_, unsubscribe := b.Subscribe(TopicForwardFailed)
	defer unsubscribe()

	for i := 0; i < defaultBufferSize+5; i++ {
		b.Publish(TopicForwardFailed, i)
	}
	if got := b.Dropped(TopicForwardFailed); got != 5 {
		t.Errorf("Dropped = %d, want 5", got)
	}
}

func TestBus_UnsubscribeClosesChannel(t *testing.T) {
	t.Parallel()
	b := NewBus(zerolog.Nop())
	ch, unsubscribe := b.Subscribe(TopicCommandHandled)
	unsubscribe()
	unsubscribe()
	if _, ok := <-ch; ok {
		t.Error("channel should be closed after unsubscribe")
	}
	b.Publish(TopicCommandHandled, "nobody listens")
}

func TestBus_CloseThenUnsubscribe(t *testing.T) {
	t.Parallel()
	b := NewBus(zerolog.Nop())
	ch, unsubscribe := b.Subscribe(TopicConfigChanged)
	b.Close()
	unsubscribe()
	if _, ok := <-ch; ok {
		t.Error("channel should be closed after Close")
	}
	late, _ := b.Subscribe(TopicConfigChanged)
	if _, ok := <-late; ok {
		t.Error("subscribing to a closed bus should return a closed channel")
	}
}

func TestPreview(t *testing.T) {
	t.Parallel()
	short := "short text"
	if got := Preview(short); got != short {
		t.Errorf("Preview(%q) = %q", short, got)
	}
	long := make([]rune, 100)
	for i := range long {
		long[i] = 'é'
	}
	got := []rune(Preview(string(long)))
	if len(got) != previewLength+3 {
		t.Errorf("Preview length = %d, want %d", len(got), previewLength+3)
	}
}

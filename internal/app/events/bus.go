package events

import (
	"sync"

	"github.com/rs/zerolog"
)

const (
	TopicForwardMatched = "forward:matched"
	TopicForwardFailed  = "forward:failed"
	TopicConfigChanged  = "config:changed"
	TopicCommandHandled = "command:handled"

	defaultBufferSize = 128
)

// Topics lists every topic the runtime publishes on.
var Topics = []string{
	TopicForwardMatched,
	TopicForwardFailed,
	TopicConfigChanged,
	TopicCommandHandled,
}

type Bus struct {
	mu        sync.RWMutex
	subs      map[string]map[int]chan any
	nextSubID int
	closed    bool
	log       zerolog.Logger

	dropMu     sync.Mutex
	dropCounts map[string]uint64
}

func NewBus(log zerolog.Logger) *Bus {
	return &Bus{
		subs:       make(map[string]map[int]chan any),
		dropCounts: make(map[string]uint64),
		log:        log.With().Str("component", "events").Logger(),
	}
}

// Publish never blocks: a subscriber whose buffer is full misses the event.
// Sends happen under the read lock so unsubscribe cannot close a channel
// mid-send.
func (b *Bus) Publish(topic string, payload any) {
	if b == nil || topic == "" {
		return
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return
	}
	for _, ch := range b.subs[topic] {
		select {
		case ch <- payload:
		default:
			b.recordDrop(topic)
		}
	}
}

func (b *Bus) Subscribe(topic string) (<-chan any, func()) {
	ch := make(chan any, defaultBufferSize)

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	if b.subs[topic] == nil {
		b.subs[topic] = make(map[int]chan any)
	}
	id := b.nextSubID
	b.nextSubID++
	b.subs[topic][id] = ch
	b.mu.Unlock()

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			subs, ok := b.subs[topic]
			if !ok {
				return
			}
			if _, ok := subs[id]; !ok {
				return
			}
			delete(subs, id)
			if len(subs) == 0 {
				delete(b.subs, topic)
			}
			close(ch)
		})
	}

	return ch, unsubscribe
}

// Close drops every subscription and closes their channels.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for topic, subs := range b.subs {
		for id, ch := range subs {
			close(ch)
			delete(subs, id)
		}
		delete(b.subs, topic)
	}
}

func (b *Bus) Dropped(topic string) uint64 {
	b.dropMu.Lock()
	defer b.dropMu.Unlock()
	return b.dropCounts[topic]
}

func (b *Bus) recordDrop(topic string) {
	b.dropMu.Lock()
	defer b.dropMu.Unlock()
	b.dropCounts[topic]++
	if b.dropCounts[topic]%100 == 1 {
		b.log.Warn().Str("topic", topic).Uint64("total_drops", b.dropCounts[topic]).Msg("dropping events")
	}
}

package outs

import (
	"context"
	"fmt"
	"sync"

	"alertBot/internal/domain"
)

// MultiSender routes outgoing calls to the session registered for the
// message's platform. Forwarding can be routed to a different session than
// replies, which is how a listener bot with access to the source channels
// forwards while the operator bot answers commands.
type MultiSender struct {
	mu         sync.RWMutex
	transports map[domain.Platform]domain.Transport
	forwarders map[domain.Platform]domain.MessageForwarder
}

func NewMultiSender() *MultiSender {
	return &MultiSender{
		transports: make(map[domain.Platform]domain.Transport),
		forwarders: make(map[domain.Platform]domain.MessageForwarder),
	}
}

func (m *MultiSender) Register(platform domain.Platform, transport domain.Transport) {
	if m == nil || transport == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transports[platform] = transport
}

// RegisterForwarder overrides the session used by ForwardMessage.
func (m *MultiSender) RegisterForwarder(platform domain.Platform, fwd domain.MessageForwarder) {
	if m == nil || fwd == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.forwarders[platform] = fwd
}

func (m *MultiSender) Unregister(platform domain.Platform) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.transports, platform)
	delete(m.forwarders, platform)
}

func (m *MultiSender) SendMessage(ctx context.Context, platform domain.Platform, chatID int64, text string) error {
	t, err := m.transport(platform)
	if err != nil {
		return err
	}
	return t.SendMessage(ctx, platform, chatID, text)
}

func (m *MultiSender) ForwardMessage(ctx context.Context, platform domain.Platform, toChatID, fromChatID, messageID int64) error {
	if m == nil {
		return fmt.Errorf("outs: no multi sender configured")
	}
	m.mu.RLock()
	fwd, ok := m.forwarders[platform]
	m.mu.RUnlock()
	if ok {
		return fwd.ForwardMessage(ctx, platform, toChatID, fromChatID, messageID)
	}

	t, err := m.transport(platform)
	if err != nil {
		return err
	}
	return t.ForwardMessage(ctx, platform, toChatID, fromChatID, messageID)
}

func (m *MultiSender) ResolveChannel(ctx context.Context, platform domain.Platform, name string) (int64, error) {
	t, err := m.transport(platform)
	if err != nil {
		return 0, err
	}
	return t.ResolveChannel(ctx, platform, name)
}

func (m *MultiSender) transport(platform domain.Platform) (domain.Transport, error) {
	if m == nil {
		return nil, fmt.Errorf("outs: no multi sender configured")
	}
	m.mu.RLock()
	t, ok := m.transports[platform]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("outs: no transport registered for platform %s", platform)
	}
	return t, nil
}

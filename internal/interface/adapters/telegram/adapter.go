// Package telegramadapter is a Bot API session: it long-polls getUpdates,
// hands messages to a handler in arrival order, and implements the outgoing
// ports (send, forward, resolve).
package telegramadapter

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"alertBot/internal/domain"
)

const (
	minBackoff = time.Second
	maxBackoff = 30 * time.Second
)

type Config struct {
	Token       string
	BaseURL     string
	PollTimeout time.Duration
	HTTPClient  *http.Client
	// Name tells sessions apart in logs ("operator", "listener").
	Name   string
	Logger zerolog.Logger
}

type MessageHandler func(ctx context.Context, msg domain.Message) error

type Adapter struct {
	cfg Config
	api *botAPI
	log zerolog.Logger

	mu      sync.RWMutex
	handler MessageHandler
	me      *tgUser
}

func NewAdapter(cfg Config) *Adapter {
	name := cfg.Name
	if name == "" {
		name = "telegram"
	}
	return &Adapter{
		cfg: cfg,
		api: newBotAPI(cfg.HTTPClient, cfg.BaseURL, cfg.Token),
		log: cfg.Logger.With().Str("component", "telegram").Str("session", name).Logger(),
	}
}

func (a *Adapter) SetHandler(h MessageHandler) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.handler = h
}

// Username is the bot's @username, known once Start has authenticated.
func (a *Adapter) Username() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.me == nil {
		return ""
	}
	return a.me.Username
}

// Start blocks until ctx is done or the session fails for good. Rejected
// tokens are wrapped in domain.ErrTransportFatal; other errors are retried
// with backoff.
func (a *Adapter) Start(ctx context.Context) error {
	if strings.TrimSpace(a.cfg.Token) == "" {
		return fmt.Errorf("%w: telegram: empty bot token", domain.ErrTransportFatal)
	}

	me, err := a.api.getMe(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: telegram: getMe: %w", domain.ErrTransportFatal, err)
	}
	a.mu.Lock()
	a.me = me
	a.mu.Unlock()
	a.log.Info().Str("username", me.Username).Int64("bot_id", me.ID).Msg("telegram session connected")

	var offset int64
	backoff := minBackoff
	for {
		updates, next, err := a.api.getUpdates(ctx, offset, a.cfg.PollTimeout)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if isFatal(err) {
				return fmt.Errorf("%w: %w", domain.ErrTransportFatal, err)
			}
			a.log.Warn().Err(err).Dur("backoff", backoff).Msg("getUpdates failed")
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
			backoff = min(backoff*2, maxBackoff)
			continue
		}
		backoff = minBackoff
		offset = next

		for _, u := range updates {
			msg, ok := mapUpdateToDomain(u)
			if !ok {
				continue
			}
			a.dispatch(ctx, msg)
		}
	}
}

func (a *Adapter) dispatch(ctx context.Context, msg domain.Message) {
	a.mu.RLock()
	handler := a.handler
	a.mu.RUnlock()
	if handler == nil {
		return
	}
	if err := handler(ctx, msg); err != nil {
		a.log.Error().Err(err).Int64("chat_id", msg.ChatID).Int64("message_id", msg.ID).Msg("handler failed")
	}
}

func (a *Adapter) SendMessage(ctx context.Context, platform domain.Platform, chatID int64, text string) error {
	if platform != domain.PlatformTelegram {
		return fmt.Errorf("telegram adapter does not support platform %s", platform)
	}
	return a.api.sendMessage(ctx, chatID, text)
}

func (a *Adapter) ForwardMessage(ctx context.Context, platform domain.Platform, toChatID, fromChatID, messageID int64) error {
	if platform != domain.PlatformTelegram {
		return fmt.Errorf("telegram adapter does not support platform %s", platform)
	}
	if toChatID == 0 {
		return errors.New("telegram: no destination channel configured")
	}
	return a.api.forwardMessage(ctx, toChatID, fromChatID, messageID)
}

// ResolveChannel accepts "@name", "name", "t.me/name" links and numeric ids.
func (a *Adapter) ResolveChannel(ctx context.Context, platform domain.Platform, name string) (int64, error) {
	if platform != domain.PlatformTelegram {
		return 0, fmt.Errorf("telegram adapter does not support platform %s", platform)
	}
	ref, err := normalizeChatRef(name)
	if err != nil {
		return 0, err
	}
	chat, err := a.api.getChat(ctx, ref)
	if err != nil {
		return 0, err
	}
	return chat.ID, nil
}

// normalizeChatRef returns an int64 for numeric ids and "@name" otherwise.
func normalizeChatRef(name string) (any, error) {
	ref := strings.TrimSpace(name)
	for _, prefix := range []string{"https://", "http://", "www."} {
		ref = strings.TrimPrefix(ref, prefix)
	}
	for _, prefix := range []string{"t.me/", "telegram.me/"} {
		ref = strings.TrimPrefix(ref, prefix)
	}
	ref = strings.TrimSuffix(ref, "/")
	if ref == "" || ref == "@" {
		return nil, fmt.Errorf("telegram: empty channel name %q", name)
	}
	if id, err := strconv.ParseInt(ref, 10, 64); err == nil {
		return id, nil
	}
	if !strings.HasPrefix(ref, "@") {
		ref = "@" + ref
	}
	return ref, nil
}

// mapUpdateToDomain keeps new messages and channel posts. Edits are skipped
// so an edited post is not evaluated twice.
func mapUpdateToDomain(u update) (domain.Message, bool) {
	m := u.ChannelPost
	isChannelPost := m != nil
	if m == nil {
		m = u.Message
	}
	if m == nil || m.Chat == nil {
		return domain.Message{}, false
	}

	text := m.Text
	if text == "" {
		text = m.Caption
	}

	msg := domain.Message{
		Platform:      domain.PlatformTelegram,
		ID:            m.MessageID,
		ChatID:        m.Chat.ID,
		ChatTitle:     m.Chat.Title,
		ChatUsername:  m.Chat.Username,
		Text:          text,
		IsPrivate:     m.Chat.Type == "private",
		IsChannelPost: isChannelPost,
	}
	if m.From != nil {
		msg.UserID = m.From.ID
		msg.Username = m.From.Username
	}
	return msg, true
}

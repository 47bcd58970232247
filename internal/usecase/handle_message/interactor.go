// Package handle_message dispatches inbound messages: commands typed in the
// control chat go to the command router, everything else to the forwarder.
package handle_message

import (
	"context"
	"strings"
	"sync/atomic"

	"alertBot/internal/domain"
	"alertBot/internal/usecase/forwarding"
)

const commandPrefix = "/"

type CommandRouter interface {
	Handle(ctx context.Context, msg domain.Message, out domain.OutgoingMessagePort) error
}

type MessageForwarder interface {
	Handle(ctx context.Context, msg domain.Message) forwarding.Result
}

type Interactor struct {
	router    CommandRouter
	forwarder MessageForwarder
	out       domain.OutgoingMessagePort
	control   atomic.Int64
}

func NewInteractor(out domain.OutgoingMessagePort, router CommandRouter, forwarder MessageForwarder, controlChatID int64) *Interactor {
	uc := &Interactor{
		router:    router,
		forwarder: forwarder,
		out:       out,
	}
	uc.control.Store(controlChatID)
	return uc
}

// SetControlChat updates the chat commands are accepted from, once a
// "@username" control group has been resolved to its id.
func (uc *Interactor) SetControlChat(chatID int64) {
	uc.control.Store(chatID)
}

func (uc *Interactor) ControlChat() int64 {
	return uc.control.Load()
}

func (uc *Interactor) Handle(ctx context.Context, msg domain.Message) error {
	if uc.isCommand(msg) {
		return uc.router.Handle(ctx, msg, uc.out)
	}
	uc.forwarder.Handle(ctx, msg)
	return nil
}

// HandleSource is the handler of a listener-only session: it never runs
// commands, so the control chat is answered by exactly one bot.
func (uc *Interactor) HandleSource(ctx context.Context, msg domain.Message) error {
	uc.forwarder.Handle(ctx, msg)
	return nil
}

func (uc *Interactor) isCommand(msg domain.Message) bool {
	control := uc.control.Load()
	if control == 0 || msg.ChatID != control {
		return false
	}
	return strings.HasPrefix(strings.TrimSpace(msg.Text), commandPrefix)
}

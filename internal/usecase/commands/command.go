package commands

import (
	"context"

	"alertBot/internal/domain"
)

type Command interface {
	Name() string
	Aliases() []string
	Handle(ctx context.Context, c *Context) error
}

type Context struct {
	Message domain.Message
	Out     domain.OutgoingMessagePort

	// Raw is the full command text without the prefix; Args are its
	// whitespace separated fields after the command name.
	Raw  string
	Args []string
}

func (c *Context) Reply(ctx context.Context, text string) error {
	return c.Out.SendMessage(ctx, c.Message.Platform, c.Message.ChatID, text)
}

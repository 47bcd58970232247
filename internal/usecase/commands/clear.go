package commands

import (
	"context"

	"github.com/rs/zerolog"

	"alertBot/internal/domain"
)

type ClearCommand struct {
	store ConfigStore
	log   zerolog.Logger
}

func NewClearCommand(store ConfigStore, log zerolog.Logger) *ClearCommand {
	return &ClearCommand{store: store, log: log}
}

func (c *ClearCommand) Name() string {
	return "clear"
}

func (c *ClearCommand) Aliases() []string {
	return []string{}
}

func (c *ClearCommand) Handle(ctx context.Context, cmdCtx *Context) error {
	_, err := c.store.Apply(ctx, func(cfg *domain.Configuration) error {
		cfg.SourceChannels = []int64{}
		cfg.SourceChannelNames = []string{}
		cfg.Keywords = []string{}
		return nil
	})
	if err != nil {
		return replyApplyError(ctx, cmdCtx, err)
	}
	c.log.Info().Msg("channels and keywords cleared")
	return cmdCtx.Reply(ctx, replyCleared)
}

package commands

import (
	"context"

	"github.com/rs/zerolog"

	"alertBot/internal/domain"
)

// RunStateCommand implements /start and /stop.
type RunStateCommand struct {
	name    string
	running bool
	reply   string
	store   ConfigStore
	log     zerolog.Logger
}

func NewStartCommand(store ConfigStore, log zerolog.Logger) *RunStateCommand {
	return &RunStateCommand{name: "start", running: true, reply: replyStarted, store: store, log: log}
}

func NewStopCommand(store ConfigStore, log zerolog.Logger) *RunStateCommand {
	return &RunStateCommand{name: "stop", running: false, reply: replyStopped, store: store, log: log}
}

func (c *RunStateCommand) Name() string {
	return c.name
}

func (c *RunStateCommand) Aliases() []string {
	return []string{}
}

func (c *RunStateCommand) Handle(ctx context.Context, cmdCtx *Context) error {
	_, err := c.store.Apply(ctx, func(cfg *domain.Configuration) error {
		cfg.IsRunning = c.running
		return nil
	})
	if err != nil {
		return replyApplyError(ctx, cmdCtx, err)
	}

	c.log.Info().Bool("running", c.running).Int64("user_id", cmdCtx.Message.UserID).Msg("monitoring state changed")
	return cmdCtx.Reply(ctx, c.reply)
}

package commands

import "context"

type StatusCommand struct {
	store ConfigStore
}

func NewStatusCommand(store ConfigStore) *StatusCommand {
	return &StatusCommand{store: store}
}

func (c *StatusCommand) Name() string {
	return "status"
}

func (c *StatusCommand) Aliases() []string {
	return []string{}
}

func (c *StatusCommand) Handle(ctx context.Context, cmdCtx *Context) error {
	if c.store.Snapshot().IsRunning {
		return cmdCtx.Reply(ctx, replyStatusRunning)
	}
	return cmdCtx.Reply(ctx, replyStatusStopped)
}

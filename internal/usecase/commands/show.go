package commands

import (
	"context"
	"fmt"
	"strings"
)

type ShowCommand struct {
	store ConfigStore
}

func NewShowCommand(store ConfigStore) *ShowCommand {
	return &ShowCommand{store: store}
}

func (c *ShowCommand) Name() string {
	return "show"
}

func (c *ShowCommand) Aliases() []string {
	return []string{}
}

func (c *ShowCommand) Handle(ctx context.Context, cmdCtx *Context) error {
	cfg := c.store.Snapshot()
	return cmdCtx.Reply(ctx, fmt.Sprintf(replyShowFmt, joinOrNone(cfg.SourceChannelNames), joinOrNone(cfg.Keywords)))
}

func joinOrNone(values []string) string {
	if len(values) == 0 {
		return noneSet
	}
	return strings.Join(values, ", ")
}

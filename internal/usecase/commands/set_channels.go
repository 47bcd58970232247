package commands

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/rs/zerolog"

	"alertBot/internal/domain"
)

type SetChannelsCommand struct {
	store    ConfigStore
	resolver domain.ChannelResolver
	log      zerolog.Logger
}

func NewSetChannelsCommand(store ConfigStore, resolver domain.ChannelResolver, log zerolog.Logger) *SetChannelsCommand {
	return &SetChannelsCommand{store: store, resolver: resolver, log: log}
}

func (c *SetChannelsCommand) Name() string {
	return "setchannels"
}

func (c *SetChannelsCommand) Aliases() []string {
	return []string{}
}

// Handle resolves every name independently. A name that fails is reported on
// its own and left out of the id list, while the name list keeps everything
// the operator typed, so the two lists may no longer line up.
func (c *SetChannelsCommand) Handle(ctx context.Context, cmdCtx *Context) error {
	if !c.store.Snapshot().IsRunning {
		return cmdCtx.Reply(ctx, replyStartFirst)
	}

	names := cmdCtx.Args
	if len(names) == 0 {
		return cmdCtx.Reply(ctx, replySetChannelsUsage)
	}

	ids := make([]int64, 0, len(names))
	for _, name := range names {
		id, err := c.resolver.ResolveChannel(ctx, cmdCtx.Message.Platform, name)
		if err != nil {
			rerr := &domain.ResolutionError{Name: name, Err: err}
			c.log.Warn().Err(rerr).Str("channel", name).Msg("failed to resolve channel")
			if replyErr := cmdCtx.Reply(ctx, fmt.Sprintf(replyResolveFailedFmt, name, err)); replyErr != nil {
				c.log.Error().Err(replyErr).Msg("failed to report resolution failure")
			}
			continue
		}
		c.log.Info().Str("channel", name).Int64("channel_id", id).Msg("resolved channel")
		ids = append(ids, id)
	}

	_, err := c.store.Apply(ctx, func(cfg *domain.Configuration) error {
		cfg.SourceChannelNames = slices.Clone(names)
		cfg.SourceChannels = ids
		return nil
	})
	if err != nil {
		return replyApplyError(ctx, cmdCtx, err)
	}

	return cmdCtx.Reply(ctx, fmt.Sprintf(replyMonitoringFmt, strings.Join(names, ", ")))
}

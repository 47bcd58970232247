package commands

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/rs/zerolog"

	"alertBot/internal/domain"
)

// Either quote character opens or closes a keyword.
var quotedKeyword = regexp.MustCompile(`['"](.+?)['"]`)

// ParseKeywords extracts the quoted keywords of a /setkeywords line.
func ParseKeywords(raw string) []string {
	matches := quotedKeyword.FindAllStringSubmatch(raw, -1)
	keywords := make([]string, 0, len(matches))
	for _, m := range matches {
		keywords = append(keywords, m[1])
	}
	return keywords
}

type SetKeywordsCommand struct {
	store ConfigStore
	log   zerolog.Logger
}

func NewSetKeywordsCommand(store ConfigStore, log zerolog.Logger) *SetKeywordsCommand {
	return &SetKeywordsCommand{store: store, log: log}
}

func (c *SetKeywordsCommand) Name() string {
	return "setkeywords"
}

func (c *SetKeywordsCommand) Aliases() []string {
	return []string{}
}

// Handle checks its preconditions inside Apply so a concurrent /stop or
// /clear cannot slip in between the check and the write.
func (c *SetKeywordsCommand) Handle(ctx context.Context, cmdCtx *Context) error {
	keywords := ParseKeywords(cmdCtx.Raw)

	var guidance string
	_, err := c.store.Apply(ctx, func(cfg *domain.Configuration) error {
		switch {
		case !cfg.IsRunning:
			guidance = replyStartFirst
			return domain.ErrPreconditionUnmet
		case len(cfg.SourceChannels) == 0:
			guidance = replySetChannelsFirst
			return domain.ErrPreconditionUnmet
		case len(keywords) == 0:
			guidance = replyNoKeywords
			return domain.ErrMalformedArgument
		}
		cfg.Keywords = keywords
		return nil
	})
	if errors.Is(err, domain.ErrPreconditionUnmet) || errors.Is(err, domain.ErrMalformedArgument) {
		return cmdCtx.Reply(ctx, guidance)
	}
	if err != nil {
		return replyApplyError(ctx, cmdCtx, err)
	}

	c.log.Info().Strs("keywords", keywords).Msg("keywords updated")
	return cmdCtx.Reply(ctx, fmt.Sprintf(replyKeywordsSetFmt, strings.Join(keywords, ", ")))
}

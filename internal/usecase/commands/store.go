package commands

import (
	"context"
	"errors"
	"fmt"

	"alertBot/internal/domain"
)

// ConfigStore is the part of settings.Store the commands mutate.
type ConfigStore interface {
	Snapshot() domain.Configuration
	Apply(ctx context.Context, mutate func(cfg *domain.Configuration) error) (domain.Configuration, error)
}

// replyApplyError answers a failed Apply. Persistence failures are reported
// to the operator and returned; anything else is returned as is.
func replyApplyError(ctx context.Context, cmdCtx *Context, err error) error {
	if errors.Is(err, domain.ErrPersistence) {
		if replyErr := cmdCtx.Reply(ctx, fmt.Sprintf(replySaveFailedFmt, err)); replyErr != nil {
			return errors.Join(err, replyErr)
		}
	}
	return err
}

package commands

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"alertBot/internal/app/events"
	"alertBot/internal/domain"
)

// AdminChecker reports whether a sender may issue commands.
type AdminChecker interface {
	Snapshot() domain.Configuration
}

type Publisher interface {
	Publish(topic string, payload any)
}

type Router struct {
	prefix   string
	cmdIndex map[string]Command
	admins   AdminChecker
	bus      Publisher
	log      zerolog.Logger
}

func NewRouter(prefix string, admins AdminChecker, bus Publisher, log zerolog.Logger) *Router {
	return &Router{
		prefix:   prefix,
		cmdIndex: make(map[string]Command),
		admins:   admins,
		bus:      bus,
		log:      log.With().Str("component", "commands").Logger(),
	}
}

func (r *Router) Register(cmd Command) {
	r.cmdIndex[strings.ToLower(cmd.Name())] = cmd
	for _, alias := range cmd.Aliases() {
		r.cmdIndex[strings.ToLower(alias)] = cmd
	}
}

// Handle runs the command in msg. Text that is not a known command is ignored
// without a reply. Known commands from non-admins get a denial and nothing
// else happens.
func (r *Router) Handle(ctx context.Context, msg domain.Message, out domain.OutgoingMessagePort) error {
	text := strings.TrimSpace(msg.Text)
	if text == "" {
		return nil
	}

	if !strings.HasPrefix(text, r.prefix) {
		return nil
	}

	withoutPrefix := strings.TrimPrefix(text, r.prefix)
	parts := strings.Fields(withoutPrefix)
	if len(parts) == 0 {
		return nil
	}

	cmdName := commandName(parts[0])
	args := parts[1:]

	cmd, ok := r.cmdIndex[cmdName]
	if !ok {
		return nil
	}

	if !r.admins.Snapshot().IsAdmin(msg.UserID) {
		r.log.Warn().
			Err(domain.ErrAuthorizationDenied).
			Str("command", cmdName).
			Int64("user_id", msg.UserID).
			Str("username", msg.Username).
			Msg("command denied")
		r.publish(cmdName, msg, "denied")
		return out.SendMessage(ctx, msg.Platform, msg.ChatID, replyNotAuthorized)
	}

	ctxCmd := &Context{
		Message: msg,
		Out:     out,
		Raw:     withoutPrefix,
		Args:    args,
	}

	r.log.Info().Str("command", cmdName).Int64("user_id", msg.UserID).Msg("handling command")
	err := cmd.Handle(ctx, ctxCmd)
	outcome := "ok"
	if err != nil {
		outcome = "error"
		r.log.Error().Err(err).Str("command", cmdName).Msg("command failed")
	}
	r.publish(cmdName, msg, outcome)
	return err
}

func (r *Router) publish(name string, msg domain.Message, outcome string) {
	if r.bus == nil {
		return
	}
	r.bus.Publish(events.TopicCommandHandled, events.CommandDTO{
		Name:    name,
		UserID:  msg.UserID,
		ChatID:  msg.ChatID,
		Outcome: outcome,
	})
}

// commandName lower-cases the first field and drops a "@botname" suffix, as
// Telegram appends it to commands picked from the menu in groups.
func commandName(field string) string {
	name, _, _ := strings.Cut(field, "@")
	return strings.ToLower(name)
}

package commands

import "alertBot/internal/domain"

// CommandDescriptor describes a built-in command for the status API.
type CommandDescriptor struct {
	Name          string `json:"name"`
	Description   string `json:"description"`
	Usage         string `json:"usage"`
	Preconditions string `json:"preconditions,omitempty"`
	Mutates       bool   `json:"mutates"`
}

// BuiltinCommandCatalog lists every command the control chat understands.
func BuiltinCommandCatalog() []CommandDescriptor {
	return []CommandDescriptor{
		{
			Name:        "start",
			Description: "Resume monitoring of the source channels.",
			Usage:       "/start",
			Mutates:     true,
		},
		{
			Name:        "stop",
			Description: "Pause monitoring; messages are dropped until /start.",
			Usage:       "/stop",
			Mutates:     true,
		},
		{
			Name:          "setchannels",
			Description:   "Replace the monitored channels. Names that fail to resolve are reported one by one.",
			Usage:         "/setchannels <channel1> <channel2> ...",
			Preconditions: "service running",
			Mutates:       true,
		},
		{
			Name:          "setkeywords",
			Description:   "Replace the keywords. Use * as a wildcard or AB&&CD for adjacent pairs.",
			Usage:         "/setkeywords 'KEY1' \"KEY2\" ...",
			Preconditions: "service running, source channels set",
			Mutates:       true,
		},
		{
			Name:        "clear",
			Description: "Remove all channels and keywords.",
			Usage:       "/clear",
			Mutates:     true,
		},
		{
			Name:        "show",
			Description: "List the monitored channels and keywords.",
			Usage:       "/show",
		},
		{
			Name:        "status",
			Description: "Report whether monitoring is running.",
			Usage:       "/status",
		},
	}
}

// RegisterBuiltins wires every built-in command into r.
func RegisterBuiltins(r *Router, store ConfigStore, resolver domain.ChannelResolver) {
	log := r.log
	r.Register(NewStartCommand(store, log))
	r.Register(NewStopCommand(store, log))
	r.Register(NewSetChannelsCommand(store, resolver, log))
	r.Register(NewSetKeywordsCommand(store, log))
	r.Register(NewClearCommand(store, log))
	r.Register(NewShowCommand(store))
	r.Register(NewStatusCommand(store))
}

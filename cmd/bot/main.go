package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"alertBot/internal/app/runtime"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "alertbot: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var opts runtime.Options

	flagSet := pflag.NewFlagSet("alertbot", pflag.ContinueOnError)
	flagSet.StringVar(&opts.EnvFile, "env-file", "", "load environment variables from this file (default: .env if present)")
	flagSet.StringVar(&opts.ConfigPath, "config", "", "JSON configuration file (overrides TELEGRAM_ALERTING_BOT_CONFIG_PATH)")
	flagSet.StringVar(&opts.LogPath, "log", "", "log file (overrides TELEGRAM_ALERTING_BOT_LOG)")
	flagSet.StringVar(&opts.LogLevel, "log-level", "", "trace, debug, info, warn or error (overrides LOG_LEVEL)")
	flagSet.StringVar(&opts.Backend, "backend", "", "configuration backend: json or sqlite (overrides CONFIG_BACKEND)")
	flagSet.BoolP("help", "h", false, "show help")

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			printHelp(flagSet)
			return nil
		}
		return err
	}
	if help, _ := flagSet.GetBool("help"); help {
		printHelp(flagSet)
		return nil
	}
	if args := flagSet.Args(); len(args) > 0 {
		return fmt.Errorf("unexpected argument: %s", args[0])
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt, err := runtime.Start(ctx, opts)
	if err != nil {
		return err
	}
	log := rt.Logger()

	var fatal error
	select {
	case <-ctx.Done():
		log.Info().Msg("signal received")
	case fatal = <-rt.Fatal():
		log.Error().Err(fatal).Msg("transport failed, exiting")
	}

	if err := rt.Stop(); err != nil {
		return err
	}
	return fatal
}

func printHelp(flagSet *pflag.FlagSet) {
	fmt.Fprintf(os.Stderr, `alertbot forwards messages from watched Telegram channels that match
operator keywords to a destination channel. Admins configure it with
commands in the control group (/start, /stop, /setchannels, /setkeywords,
/clear, /show, /status).

Settings come from the environment or a .env file: TELEGRAM_BOT_TOKEN,
CONTROL_GROUP, DESTINATION_CHANNEL and ADMINS are the usual ones. Flags
override the environment.

Usage:
  alertbot [flags]

Flags:
%s`, flagSet.FlagUsages())
}

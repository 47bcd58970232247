package runtime

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"alertBot/internal/app"
	"alertBot/internal/app/events"
	"alertBot/internal/domain"
	"alertBot/internal/infrastructure/config"
	"alertBot/internal/infrastructure/logging"
	"alertBot/internal/infrastructure/persistence/jsonfile"
	sqlitestorage "alertBot/internal/infrastructure/persistence/sqlite"
	telegramadapter "alertBot/internal/interface/adapters/telegram"
	ws "alertBot/internal/interface/api/ws"
	"alertBot/internal/interface/outs"
	"alertBot/internal/usecase/commands"
	"alertBot/internal/usecase/dedup"
	"alertBot/internal/usecase/forwarding"
	"alertBot/internal/usecase/handle_message"
	"alertBot/internal/usecase/notifications"
	"alertBot/internal/usecase/settings"
)

const (
	commandPrefix = "/"

	sessionOperator = "operator"
	sessionListener = "listener"

	startupMessage  = "✅ AlertBot is online."
	shutdownMessage = "🛑 AlertBot is shutting down."

	shutdownTimeout = 5 * time.Second

	controlRetryMin = 5 * time.Second
	controlRetryMax = 5 * time.Minute
)

// Options override values from the environment when non-empty.
type Options struct {
	EnvFile    string
	ConfigPath string
	LogPath    string
	LogLevel   string
	Backend    string
}

type Runtime struct {
	ctx    context.Context
	cancel context.CancelFunc
	cfg    *config.Config
	log    zerolog.Logger

	bus        *events.Bus
	settings   *settings.Store
	notifier   *notifications.Notifier
	interactor *handle_message.Interactor
	sessions   *app.SessionManager
	wsServer   *ws.Server
	closers    []io.Closer

	wg       sync.WaitGroup
	stopOnce sync.Once
	started  bool
}

func Start(ctx context.Context, opts Options) (*Runtime, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.Load(opts.EnvFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	applyOverrides(cfg, opts)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log, logCloser, err := logging.New(logging.Options{FilePath: cfg.LogPath, Level: cfg.LogLevel})
	if err != nil {
		return nil, err
	}

	runtimeCtx, cancel := context.WithCancel(ctx)
	run := &Runtime{
		ctx:     runtimeCtx,
		cancel:  cancel,
		cfg:     cfg,
		log:     log,
		closers: []io.Closer{logCloser},
	}
	if err := run.build(); err != nil {
		log.Error().Err(err).Msg("startup failed")
		cancel()
		run.closeAll()
		return nil, err
	}

	run.started = true
	log.Info().Strs("sessions", run.sessions.Running()).Msg("alertbot started")
	run.notify(runtimeCtx, domain.NotificationStartup, startupMessage)
	return run, nil
}

func (r *Runtime) build() error {
	ctx, cfg, log := r.ctx, r.cfg, r.log

	repo, notifRepo, err := r.openRepository()
	if err != nil {
		return err
	}

	r.bus = events.NewBus(log)

	store, err := settings.NewStore(ctx, repo, settings.Options{Logger: log, Bus: r.bus})
	if err != nil {
		return err
	}
	r.settings = store
	r.mergeEnvironment()

	operator := telegramadapter.NewAdapter(telegramadapter.Config{
		Token:       cfg.BotToken,
		BaseURL:     cfg.APIURL,
		PollTimeout: cfg.PollTimeout,
		Name:        sessionOperator,
		Logger:      log,
	})
	multiOut := outs.NewMultiSender()
	multiOut.Register(domain.PlatformTelegram, operator)

	var listener *telegramadapter.Adapter
	if cfg.ListenerToken != "" {
		listener = telegramadapter.NewAdapter(telegramadapter.Config{
			Token:       cfg.ListenerToken,
			BaseURL:     cfg.APIURL,
			PollTimeout: cfg.PollTimeout,
			Name:        sessionListener,
			Logger:      log,
		})
		multiOut.RegisterForwarder(domain.PlatformTelegram, listener)
	}

	// Until an "@username" control group resolves, commands are not accepted
	// and operator notifications are only logged.
	controlChat, err := resolveControlChat(ctx, multiOut, cfg.ControlGroup)
	if err != nil {
		log.Warn().Err(err).Msg("control chat not resolved yet, retrying in background")
	} else {
		log.Info().Int64("control_chat", controlChat).Msg("control chat resolved")
	}

	r.notifier = notifications.NewNotifier(notifications.Config{
		Out:           multiOut,
		Platform:      domain.PlatformTelegram,
		ControlChatID: controlChat,
		Repo:          notifRepo,
		Bus:           r.bus,
		Logger:        log,
	})

	router := commands.NewRouter(commandPrefix, store, r.bus, log)
	commands.RegisterBuiltins(router, store, multiOut)

	forwarder := forwarding.NewForwarder(forwarding.Config{
		Settings: store,
		Seen:     dedup.NewCache(dedup.DefaultCapacity),
		Out:      multiOut,
		Notifier: r.notifier,
		Bus:      r.bus,
		Logger:   log,
	})

	r.interactor = handle_message.NewInteractor(multiOut, router, forwarder, controlChat)
	operator.SetHandler(r.interactor.Handle)

	r.sessions = app.NewSessionManager(ctx, log)
	if err := r.sessions.Run(sessionOperator, operator); err != nil {
		return err
	}
	if listener != nil {
		listener.SetHandler(r.interactor.HandleSource)
		if err := r.sessions.Run(sessionListener, listener); err != nil {
			return err
		}
	}

	if controlChat == 0 {
		r.wg.Add(1)
		go func() {
			defer r.wg.Done()
			r.awaitControlChat(multiOut)
		}()
	}

	if cfg.WSAddr != "" {
		wsCfg := ws.Config{
			Addr:      cfg.WSAddr,
			Bus:       r.bus,
			Logger:    log,
			Settings:  store,
			Commands:  commands.BuiltinCommandCatalog(),
			StartedAt: time.Now(),
		}
		if notifRepo != nil {
			wsCfg.Notifications = notifRepo
		}
		r.wsServer = ws.NewServer(wsCfg)
		r.wg.Add(1)
		go func() {
			defer r.wg.Done()
			if err := r.wsServer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error().Err(err).Msg("status api stopped")
			}
		}()
	}
	return nil
}

// openRepository returns the configuration repository and, for sqlite, the
// notification log stored next to it.
func (r *Runtime) openRepository() (domain.ConfigRepository, domain.NotificationRepository, error) {
	switch r.cfg.Backend {
	case config.BackendSQLite:
		store, err := sqlitestorage.NewStore(r.cfg.DBPath)
		if err != nil {
			return nil, nil, err
		}
		r.closers = append(r.closers, store)
		r.log.Info().Str("path", r.cfg.DBPath).Msg("using sqlite configuration store")
		return store, store, nil
	default:
		store, err := jsonfile.NewStore(r.cfg.ConfigPath)
		if err != nil {
			return nil, nil, err
		}
		r.log.Info().Str("path", store.Path()).Msg("using json configuration file")
		return store, nil, nil
	}
}

// mergeEnvironment applies DESTINATION_CHANNEL and adds ADMINS to the stored
// configuration. A failed save is logged; the merged values stay in memory.
func (r *Runtime) mergeEnvironment() {
	dest, admins := r.cfg.DestinationChannel, r.cfg.Admins
	if dest != 0 || len(admins) > 0 {
		_, err := r.settings.Apply(r.ctx, func(c *domain.Configuration) error {
			if dest != 0 {
				c.DestinationChannel = dest
			}
			c.Admins = append(c.Admins, admins...)
			return nil
		})
		if err != nil {
			r.log.Warn().Err(err).Msg("could not persist environment overrides")
		}
	}

	snap := r.settings.Snapshot()
	if snap.DestinationChannel == 0 {
		r.log.Warn().Msg("no destination channel configured; matches cannot be forwarded")
	}
	if len(snap.Admins) == 0 {
		r.log.Warn().Msg("no admins configured; every command will be denied")
	}
}

// resolveControlChat accepts a numeric chat id or a name the transport can
// resolve.
func resolveControlChat(ctx context.Context, resolver domain.ChannelResolver, raw string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return id, nil
	}
	id, err := resolver.ResolveChannel(ctx, domain.PlatformTelegram, raw)
	if err != nil {
		return 0, fmt.Errorf("resolve CONTROL_GROUP %q: %w", raw, err)
	}
	return id, nil
}

// awaitControlChat keeps resolving CONTROL_GROUP until it succeeds or the
// runtime stops.
func (r *Runtime) awaitControlChat(resolver domain.ChannelResolver) {
	backoff := controlRetryMin
	for {
		select {
		case <-r.ctx.Done():
			return
		case <-time.After(backoff):
		}
		id, err := resolveControlChat(r.ctx, resolver, r.cfg.ControlGroup)
		if err != nil {
			if r.ctx.Err() != nil {
				return
			}
			r.log.Warn().Err(err).Dur("backoff", backoff).Msg("control chat still unresolved")
			backoff = min(backoff*2, controlRetryMax)
			continue
		}
		r.interactor.SetControlChat(id)
		r.notifier.SetControlChat(id)
		r.log.Info().Int64("control_chat", id).Msg("control chat resolved")
		return
	}
}

func applyOverrides(cfg *config.Config, opts Options) {
	if opts.ConfigPath != "" {
		cfg.ConfigPath = opts.ConfigPath
	}
	if opts.LogPath != "" {
		cfg.LogPath = opts.LogPath
	}
	if opts.LogLevel != "" {
		cfg.LogLevel = opts.LogLevel
	}
	if opts.Backend != "" {
		cfg.Backend = strings.ToLower(opts.Backend)
	}
}

// notify is best effort: failures are logged only.
func (r *Runtime) notify(ctx context.Context, kind domain.NotificationType, text string) {
	if r.notifier == nil {
		return
	}
	err := r.notifier.Notify(ctx, &domain.Notification{Type: kind, Message: text})
	if err != nil {
		r.log.Warn().Err(err).Str("type", string(kind)).Msg("operator notification failed")
	}
}

// Fatal yields the first transport session failure. The caller is expected
// to Stop the runtime and exit.
func (r *Runtime) Fatal() <-chan error {
	if r == nil || r.sessions == nil {
		return nil
	}
	return r.sessions.Fatal()
}

// Stop sends the shutdown notification, stops every session and closes the
// stores and the log file.
func (r *Runtime) Stop() error {
	if r == nil || !r.started {
		return nil
	}
	r.stopOnce.Do(func() {
		r.log.Info().Msg("alertbot shutting down")

		notifyCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		r.notify(notifyCtx, domain.NotificationShutdown, shutdownMessage)
		cancel()

		r.cancel()
		r.sessions.Shutdown()
		r.wg.Wait()
		r.bus.Close()
		r.log.Info().Msg("alertbot stopped")
		r.closeAll()
	})
	return nil
}

func (r *Runtime) closeAll() {
	// Reverse order so the log file closes last.
	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i].Close(); err != nil {
			r.log.Warn().Err(err).Msg("close failed")
		}
	}
	r.closers = nil
}

func (r *Runtime) Logger() zerolog.Logger {
	return r.log
}

func (r *Runtime) Settings() *settings.Store {
	return r.settings
}

func (r *Runtime) Bus() *events.Bus {
	return r.bus
}

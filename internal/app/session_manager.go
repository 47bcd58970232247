package app

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/rs/zerolog"
)

// Session is a long-running transport connection, such as one bot token's
// update loop. Start blocks until ctx ends or the session fails.
type Session interface {
	Start(ctx context.Context) error
}

// SessionManager runs transport sessions side by side and reports the first
// one that stops on its own.
type SessionManager struct {
	ctx context.Context
	log zerolog.Logger

	mu       sync.Mutex
	sessions map[string]context.CancelFunc
	wg       sync.WaitGroup

	fatal     chan error
	fatalOnce sync.Once
}

func NewSessionManager(ctx context.Context, log zerolog.Logger) *SessionManager {
	if ctx == nil {
		ctx = context.Background()
	}
	return &SessionManager{
		ctx:      ctx,
		log:      log.With().Str("component", "sessions").Logger(),
		sessions: make(map[string]context.CancelFunc),
		fatal:    make(chan error, 1),
	}
}

// Run starts s under name. A name can only run once at a time.
func (m *SessionManager) Run(name string, s Session) error {
	if s == nil {
		return fmt.Errorf("sessions: nil session %q", name)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[name]; ok {
		return fmt.Errorf("sessions: %q already running", name)
	}

	ctx, cancel := context.WithCancel(m.ctx)
	m.sessions[name] = cancel
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		m.log.Info().Str("session", name).Msg("session starting")
		err := s.Start(ctx)

		m.mu.Lock()
		delete(m.sessions, name)
		m.mu.Unlock()

		// A session that stops while its context is still live has failed,
		// even if it returned no error.
		if ctx.Err() != nil && (err == nil || errors.Is(err, context.Canceled)) {
			m.log.Info().Str("session", name).Msg("session stopped")
			return
		}
		if err == nil {
			err = errors.New("session ended unexpectedly")
		}
		m.log.Error().Err(err).Str("session", name).Msg("session failed")
		m.reportFatal(fmt.Errorf("session %s: %w", name, err))
	}()
	m.log.Debug().Str("session", name).Msg("session registered")
	return nil
}

// Fatal yields the first session failure.
func (m *SessionManager) Fatal() <-chan error {
	return m.fatal
}

func (m *SessionManager) Running() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	names := make([]string, 0, len(m.sessions))
	for name := range m.sessions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Shutdown cancels every session and waits for them to return.
func (m *SessionManager) Shutdown() {
	m.mu.Lock()
	for _, cancel := range m.sessions {
		cancel()
	}
	m.mu.Unlock()
	m.wg.Wait()
}

func (m *SessionManager) reportFatal(err error) {
	m.fatalOnce.Do(func() {
		m.fatal <- err
	})
}

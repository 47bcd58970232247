// Package settings holds the live filter configuration. Reads are lock-free
// snapshots; writes are serialized and persisted one at a time.
package settings

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"alertBot/internal/app/events"
	"alertBot/internal/domain"
)

type Publisher interface {
	Publish(topic string, payload any)
}

type Options struct {
	Logger zerolog.Logger
	Bus    Publisher
}

type Store struct {
	repo    domain.ConfigRepository
	bus     Publisher
	log     zerolog.Logger
	current atomic.Pointer[domain.Configuration]

	writeMu sync.Mutex
}

// NewStore loads the configuration once. A repository with nothing stored
// yields domain.DefaultConfiguration.
func NewStore(ctx context.Context, repo domain.ConfigRepository, opts Options) (*Store, error) {
	if repo == nil {
		return nil, errors.New("settings: nil repository")
	}
	s := &Store{
		repo: repo,
		bus:  opts.Bus,
		log:  opts.Logger.With().Str("component", "settings").Logger(),
	}

	loaded, err := repo.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("settings: load: %w", err)
	}
	cfg := domain.DefaultConfiguration()
	if loaded != nil {
		cfg = loaded.Clone()
	}
	cfg.Normalize()
	s.current.Store(&cfg)

	s.log.Info().
		Bool("running", cfg.IsRunning).
		Int("sources", len(cfg.SourceChannels)).
		Int("keywords", len(cfg.Keywords)).
		Int("admins", len(cfg.Admins)).
		Msg("configuration loaded")
	return s, nil
}

// Snapshot returns a copy of the current configuration. It may miss a
// mutation that is being applied concurrently.
func (s *Store) Snapshot() domain.Configuration {
	return s.current.Load().Clone()
}

// Apply runs mutate on a copy of the configuration. If mutate fails nothing
// changes. Otherwise the new state becomes visible to readers and is then
// persisted; a persistence failure is returned but the in-memory state is not
// rolled back.
func (s *Store) Apply(ctx context.Context, mutate func(cfg *domain.Configuration) error) (domain.Configuration, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	next := s.current.Load().Clone()
	if err := mutate(&next); err != nil {
		return s.current.Load().Clone(), err
	}
	next.Normalize()
	s.current.Store(&next)

	saved := next.Clone()
	if err := s.repo.Save(ctx, &saved); err != nil {
		s.log.Error().Err(err).Msg("failed to persist configuration")
		return next.Clone(), fmt.Errorf("%w: %w", domain.ErrPersistence, err)
	}

	if s.bus != nil {
		s.bus.Publish(events.TopicConfigChanged, events.NewConfigDTO(next))
	}
	return next.Clone(), nil
}

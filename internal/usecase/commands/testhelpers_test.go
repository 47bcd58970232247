package commands

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"alertBot/internal/domain"
	"alertBot/internal/usecase/settings"
)

const (
	testAdminID   int64 = 1001
	testControlID int64 = -100500
)

// fakeOut records every message the commands send.
type fakeOut struct {
	mu   sync.Mutex
	sent []string
}

func (f *fakeOut) SendMessage(_ context.Context, _ domain.Platform, _ int64, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, text)
	return nil
}

func (f *fakeOut) Sent() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.sent...)
}

// fakeResolver maps names to ids; names in failing return an error.
type fakeResolver struct {
	ids     map[string]int64
	failing map[string]error
	calls   []string
}

func (f *fakeResolver) ResolveChannel(_ context.Context, _ domain.Platform, name string) (int64, error) {
	f.calls = append(f.calls, name)
	if err, ok := f.failing[name]; ok {
		return 0, err
	}
	if id, ok := f.ids[name]; ok {
		return id, nil
	}
	return 0, errors.New("not found")
}

type memRepo struct {
	mu      sync.Mutex
	stored  *domain.Configuration
	saves   int
	saveErr error
}

func (r *memRepo) Load(context.Context) (*domain.Configuration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stored == nil {
		return nil, nil
	}
	cfg := r.stored.Clone()
	return &cfg, nil
}

func (r *memRepo) Save(_ context.Context, cfg *domain.Configuration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saves++
	if r.saveErr != nil {
		return r.saveErr
	}
	c := cfg.Clone()
	r.stored = &c
	return nil
}

type harness struct {
	router   *Router
	store    *settings.Store
	repo     *memRepo
	out      *fakeOut
	resolver *fakeResolver
}

func newHarness(t *testing.T, initial domain.Configuration) *harness {
	t.Helper()
	if len(initial.Admins) == 0 {
		initial.Admins = []int64{testAdminID}
	}
	repo := &memRepo{stored: &initial}
	store, err := settings.NewStore(context.Background(), repo, settings.Options{Logger: zerolog.Nop()})
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	resolver := &fakeResolver{ids: map[string]int64{}, failing: map[string]error{}}
	router := NewRouter("/", store, nil, zerolog.Nop())
	RegisterBuiltins(router, store, resolver)
	return &harness{router: router, store: store, repo: repo, out: &fakeOut{}, resolver: resolver}
}

func (h *harness) send(t *testing.T, userID int64, text string) error {
	t.Helper()
	return h.router.Handle(context.Background(), domain.Message{
		Platform: domain.PlatformTelegram,
		ID:       1,
		ChatID:   testControlID,
		UserID:   userID,
		Text:     text,
	}, h.out)
}

func (h *harness) admin(t *testing.T, text string) {
	t.Helper()
	if err := h.send(t, testAdminID, text); err != nil {
		t.Fatalf("%s: %v", text, err)
	}
}

func (h *harness) lastReply(t *testing.T) string {
	t.Helper()
	sent := h.out.Sent()
	if len(sent) == 0 {
		t.Fatal("no reply sent")
	}
	return sent[len(sent)-1]
}

func runningConfig() domain.Configuration {
	cfg := domain.DefaultConfiguration()
	cfg.IsRunning = true
	return cfg
}

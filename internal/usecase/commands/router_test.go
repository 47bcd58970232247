package commands

import (
	"slices"
	"testing"

	"github.com/rs/zerolog"

	"alertBot/internal/app/events"
)

func TestRouter_IgnoresUnknownAndPlainText(t *testing.T) {
	t.Parallel()
	h := newHarness(t, runningConfig())
	for _, text := range []string{"", "hello", "/", "/unknown", "/startnow", "  not a /start"} {
		if err := h.send(t, testAdminID, text); err != nil {
			t.Errorf("%q: %v", text, err)
		}
	}
	if sent := h.out.Sent(); len(sent) != 0 {
		t.Errorf("expected no replies, got %v", sent)
	}
}

func TestRouter_CommandNameNormalization(t *testing.T) {
	t.Parallel()
	h := newHarness(t, runningConfig())

	h.admin(t, "/STATUS")
	if got := h.lastReply(t); got != replyStatusRunning {
		t.Errorf("/STATUS reply = %q", got)
	}
	h.admin(t, "/status@alert_bot")
	if got := h.lastReply(t); got != replyStatusRunning {
		t.Errorf("/status@alert_bot reply = %q", got)
	}
}

func TestRouter_NonAdminNeverMutates(t *testing.T) {
	t.Parallel()
	initial := runningConfig()
	initial.SourceChannels = []int64{-1001}
	initial.SourceChannelNames = []string{"@news"}
	initial.Keywords = []string{"ALERT*"}

	commands := []string{
		"/start",
		"/stop",
		"/setchannels @a @b",
		"/setkeywords 'X' 'Y'",
		"/clear",
		"/show",
		"/status",
	}
	for _, text := range commands {
		text := text
		t.Run(text, func(t *testing.T) {
			t.Parallel()
			h := newHarness(t, initial)
			h.resolver.ids["@a"] = -1
			h.resolver.ids["@b"] = -2

			if err := h.send(t, 4242, text); err != nil {
				t.Fatalf("send: %v", err)
			}

			cfg := h.store.Snapshot()
			if !cfg.IsRunning ||
				!slices.Equal(cfg.Keywords, initial.Keywords) ||
				!slices.Equal(cfg.SourceChannels, initial.SourceChannels) {
				t.Errorf("state changed by non-admin: %+v", cfg)
			}
			if h.repo.saves != 0 {
				t.Errorf("non-admin command persisted %d times", h.repo.saves)
			}
			if len(h.resolver.calls) != 0 {
				t.Errorf("non-admin command resolved channels: %v", h.resolver.calls)
			}
			if got := h.lastReply(t); got != replyNotAuthorized {
				t.Errorf("reply = %q, want denial", got)
			}
		})
	}
}

func TestRouter_NonAdminUnknownCommandIsSilent(t *testing.T) {
	t.Parallel()
	h := newHarness(t, runningConfig())
	if err := h.send(t, 4242, "/whatever"); err != nil {
		t.Fatal(err)
	}
	if sent := h.out.Sent(); len(sent) != 0 {
		t.Errorf("unknown command from non-admin should be ignored, got %v", sent)
	}
}

func TestRouter_PublishesCommandEvents(t *testing.T) {
	t.Parallel()
	bus := events.NewBus(zerolog.Nop())
	ch, unsubscribe := bus.Subscribe(events.TopicCommandHandled)
	defer unsubscribe()

	h := newHarness(t, runningConfig())
	h.router.bus = bus

	h.admin(t, "/status")
	if err := h.send(t, 7, "/stop"); err != nil {
		t.Fatal(err)
	}

	want := []events.CommandDTO{
		{Name: "status", UserID: testAdminID, ChatID: testControlID, Outcome: "ok"},
		{Name: "stop", UserID: 7, ChatID: testControlID, Outcome: "denied"},
	}
	for _, w := range want {
		select {
		case got := <-ch:
			if got != w {
				t.Errorf("event = %+v, want %+v", got, w)
			}
		default:
			t.Fatalf("missing event %+v", w)
		}
	}
}

func TestRouter_ZeroSenderIsNotAdmin(t *testing.T) {
	t.Parallel()
	initial := runningConfig()
	initial.Admins = []int64{0, testAdminID}
	h := newHarness(t, initial)
	if err := h.send(t, 0, "/stop"); err != nil {
		t.Fatal(err)
	}
	if !h.store.Snapshot().IsRunning {
		t.Error("a message without a sender must not be treated as admin")
	}
}

func TestCatalogMatchesRegisteredCommands(t *testing.T) {
	t.Parallel()
	h := newHarness(t, runningConfig())
	for _, d := range BuiltinCommandCatalog() {
		if _, ok := h.router.cmdIndex[d.Name]; !ok {
			t.Errorf("catalog lists %q but it is not registered", d.Name)
		}
	}
	if len(h.router.cmdIndex) != len(BuiltinCommandCatalog()) {
		t.Errorf("registered %d commands, catalog has %d", len(h.router.cmdIndex), len(BuiltinCommandCatalog()))
	}
}

package commands

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"testing"

	"alertBot/internal/domain"
)

func TestStartStop(t *testing.T) {
	t.Parallel()
	h := newHarness(t, runningConfig())

	h.admin(t, "/stop")
	if h.store.Snapshot().IsRunning {
		t.Error("/stop did not stop")
	}
	if h.lastReply(t) != replyStopped {
		t.Errorf("reply = %q", h.lastReply(t))
	}
	if h.repo.stored.IsRunning {
		t.Error("/stop was not persisted")
	}

	h.admin(t, "/start")
	if !h.store.Snapshot().IsRunning || !h.repo.stored.IsRunning {
		t.Error("/start did not start or was not persisted")
	}
	if h.lastReply(t) != replyStarted {
		t.Errorf("reply = %q", h.lastReply(t))
	}
}

func TestSetChannels_RequiresRunning(t *testing.T) {
	t.Parallel()
	cfg := runningConfig()
	cfg.IsRunning = false
	h := newHarness(t, cfg)
	h.resolver.ids["@a"] = -1

	h.admin(t, "/setchannels @a")
	if got := h.lastReply(t); got != replyStartFirst {
		t.Errorf("reply = %q, want start-first guidance", got)
	}
	if len(h.store.Snapshot().SourceChannels) != 0 || h.repo.saves != 0 {
		t.Error("/setchannels mutated state while stopped")
	}
}

func TestSetChannels_Usage(t *testing.T) {
	t.Parallel()
	h := newHarness(t, runningConfig())
	h.admin(t, "/setchannels")
	if got := h.lastReply(t); got != replySetChannelsUsage {
		t.Errorf("reply = %q, want usage", got)
	}
	if h.repo.saves != 0 {
		t.Error("usage error persisted")
	}
}

func TestSetChannels_PartialFailure(t *testing.T) {
	t.Parallel()
	h := newHarness(t, runningConfig())
	h.resolver.ids["a"] = -1001
	h.resolver.ids["c"] = -1003
	h.resolver.failing["b"] = errors.New("username not occupied")

	h.admin(t, "/setchannels a b c")

	cfg := h.store.Snapshot()
	if !slices.Equal(cfg.SourceChannelNames, []string{"a", "b", "c"}) {
		t.Errorf("names = %v, want [a b c]", cfg.SourceChannelNames)
	}
	if !slices.Equal(cfg.SourceChannels, []int64{-1001, -1003}) {
		t.Errorf("channels = %v, want ids of a and c", cfg.SourceChannels)
	}
	if !slices.Equal(h.resolver.calls, []string{"a", "b", "c"}) {
		t.Errorf("resolution must continue past failures, calls = %v", h.resolver.calls)
	}

	sent := h.out.Sent()
	if len(sent) != 2 {
		t.Fatalf("replies = %v, want failure + summary", sent)
	}
	if want := fmt.Sprintf(replyResolveFailedFmt, "b", "username not occupied"); sent[0] != want {
		t.Errorf("failure reply = %q, want %q", sent[0], want)
	}
	if sent[1] != fmt.Sprintf(replyMonitoringFmt, "a, b, c") {
		t.Errorf("summary reply = %q", sent[1])
	}
	if h.repo.stored == nil || !slices.Equal(h.repo.stored.SourceChannels, []int64{-1001, -1003}) {
		t.Error("resolved channels were not persisted")
	}
}

func TestSetChannels_ReplacesPrevious(t *testing.T) {
	t.Parallel()
	cfg := runningConfig()
	cfg.SourceChannels = []int64{-9}
	cfg.SourceChannelNames = []string{"old"}
	h := newHarness(t, cfg)
	h.resolver.ids["new"] = -10

	h.admin(t, "/setchannels new")

	got := h.store.Snapshot()
	if !slices.Equal(got.SourceChannels, []int64{-10}) || !slices.Equal(got.SourceChannelNames, []string{"new"}) {
		t.Errorf("channels not replaced: %+v", got)
	}
}

func TestSetKeywords_RequiresRunning(t *testing.T) {
	t.Parallel()
	cfg := runningConfig()
	cfg.IsRunning = false
	cfg.SourceChannels = []int64{-1}
	cfg.Keywords = []string{"OLD"}
	h := newHarness(t, cfg)

	h.admin(t, "/setkeywords 'NEW'")

	if got := h.lastReply(t); got != replyStartFirst {
		t.Errorf("reply = %q, want start-first guidance", got)
	}
	if kw := h.store.Snapshot().Keywords; !slices.Equal(kw, []string{"OLD"}) {
		t.Errorf("keywords mutated while stopped: %v", kw)
	}
	if h.repo.saves != 0 {
		t.Error("rejected /setkeywords persisted")
	}
}

func TestSetKeywords_RequiresChannels(t *testing.T) {
	t.Parallel()
	h := newHarness(t, runningConfig())
	h.admin(t, "/setkeywords 'NEW'")
	if got := h.lastReply(t); got != replySetChannelsFirst {
		t.Errorf("reply = %q, want set-channels guidance", got)
	}
	if len(h.store.Snapshot().Keywords) != 0 {
		t.Error("keywords set without channels")
	}
}

func TestSetKeywords_NoQuotedKeywords(t *testing.T) {
	t.Parallel()
	cfg := runningConfig()
	cfg.SourceChannels = []int64{-1}
	h := newHarness(t, cfg)

	h.admin(t, "/setkeywords ALERT other")
	if got := h.lastReply(t); got != replyNoKeywords {
		t.Errorf("reply = %q, want quoting guidance", got)
	}
	if !strings.Contains(replyNoKeywords, `'KEY1'`) || !strings.Contains(replyNoKeywords, `"KEY1"`) {
		t.Error("guidance must restate the quoting syntax")
	}
}

func TestSetKeywords_Success(t *testing.T) {
	t.Parallel()
	cfg := runningConfig()
	cfg.SourceChannels = []int64{-1}
	h := newHarness(t, cfg)

	h.admin(t, `/setkeywords 'BTC*USD' "AB&&CD" 'big news'`)

	want := []string{"BTC*USD", "AB&&CD", "big news"}
	if got := h.store.Snapshot().Keywords; !slices.Equal(got, want) {
		t.Errorf("keywords = %v, want %v", got, want)
	}
	if got := h.lastReply(t); got != fmt.Sprintf(replyKeywordsSetFmt, "BTC*USD, AB&&CD, big news") {
		t.Errorf("reply = %q", got)
	}
	if h.repo.stored == nil || !slices.Equal(h.repo.stored.Keywords, want) {
		t.Error("keywords were not persisted")
	}
}

func TestParseKeywords(t *testing.T) {
	t.Parallel()
	tests := []struct {
		raw  string
		want []string
	}{
		{`setkeywords 'A' "B"`, []string{"A", "B"}},
		{`setkeywords 'mixed"`, []string{"mixed"}},
		{`setkeywords ''`, []string{}},
		{`setkeywords none`, []string{}},
		{`setkeywords 'two words' 'x*y'`, []string{"two words", "x*y"}},
	}
	for _, tt := range tests {
		if got := ParseKeywords(tt.raw); !slices.Equal(got, tt.want) {
			t.Errorf("ParseKeywords(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestClearThenShow(t *testing.T) {
	t.Parallel()
	cfg := runningConfig()
	cfg.SourceChannels = []int64{-1}
	cfg.SourceChannelNames = []string{"@news"}
	cfg.Keywords = []string{"ALERT"}
	h := newHarness(t, cfg)

	h.admin(t, "/clear")
	if got := h.lastReply(t); got != replyCleared {
		t.Errorf("clear reply = %q", got)
	}
	h.admin(t, "/show")
	if got, want := h.lastReply(t), fmt.Sprintf(replyShowFmt, noneSet, noneSet); got != want {
		t.Errorf("show reply = %q, want %q", got, want)
	}

	stored := h.repo.stored
	if len(stored.SourceChannels) != 0 || len(stored.SourceChannelNames) != 0 || len(stored.Keywords) != 0 {
		t.Errorf("clear not persisted: %+v", stored)
	}
	if !stored.IsRunning {
		t.Error("/clear must not touch the run state")
	}
}

func TestShow_ListsConfiguration(t *testing.T) {
	t.Parallel()
	cfg := runningConfig()
	cfg.SourceChannelNames = []string{"@a", "@b"}
	cfg.Keywords = []string{"X*", "AB&&CD"}
	h := newHarness(t, cfg)

	h.admin(t, "/show")
	if got, want := h.lastReply(t), fmt.Sprintf(replyShowFmt, "@a, @b", "X*, AB&&CD"); got != want {
		t.Errorf("reply = %q, want %q", got, want)
	}
	if h.repo.saves != 0 {
		t.Error("/show must not persist")
	}
}

func TestStatus(t *testing.T) {
	t.Parallel()
	h := newHarness(t, runningConfig())
	h.admin(t, "/status")
	if got := h.lastReply(t); got != replyStatusRunning {
		t.Errorf("reply = %q", got)
	}
	h.admin(t, "/stop")
	h.admin(t, "/status")
	if got := h.lastReply(t); got != replyStatusStopped {
		t.Errorf("reply = %q", got)
	}
}

func TestMutatingCommand_SaveFailure(t *testing.T) {
	t.Parallel()
	h := newHarness(t, runningConfig())
	h.repo.saveErr = errors.New("disk full")

	err := h.send(t, testAdminID, "/stop")
	if !errors.Is(err, domain.ErrPersistence) {
		t.Fatalf("err = %v, want ErrPersistence", err)
	}
	if got := h.lastReply(t); !strings.HasPrefix(got, "⚠️ Could not save configuration") {
		t.Errorf("reply = %q", got)
	}
}

package sqlite

import (
	"context"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"alertBot/internal/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(filepath.Join(t.TempDir(), "nested", "alertbot.db"))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestStore_LoadEmpty(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)
	cfg, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg != nil {
		t.Errorf("Load on empty db = %+v, want nil", cfg)
	}
}

func TestStore_SaveAndLoad(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)
	ctx := context.Background()

	want := &domain.Configuration{
		IsRunning:          false,
		SourceChannels:     []int64{-1001, -1003},
		SourceChannelNames: []string{"a", "b", "c"},
		Keywords:           []string{"BTC*", "AB&&CD"},
		Admins:             []int64{42},
		DestinationChannel: -2002,
	}
	if err := store.Save(ctx, want); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := store.Load(ctx)
	if err != nil || got == nil {
		t.Fatalf("Load = %v, %v", got, err)
	}
	if got.IsRunning != want.IsRunning || got.DestinationChannel != want.DestinationChannel {
		t.Errorf("scalars = %+v", got)
	}
	if !slices.Equal(got.SourceChannels, want.SourceChannels) ||
		!slices.Equal(got.SourceChannelNames, want.SourceChannelNames) ||
		!slices.Equal(got.Keywords, want.Keywords) ||
		!slices.Equal(got.Admins, want.Admins) {
		t.Errorf("lists = %+v", got)
	}

	want.Keywords = []string{}
	if err := store.Save(ctx, want); err != nil {
		t.Fatalf("second Save: %v", err)
	}
	got, _ = store.Load(ctx)
	if len(got.Keywords) != 0 {
		t.Errorf("keywords after overwrite = %v", got.Keywords)
	}
}

func TestStore_Notifications(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	for i := 0; i < 3; i++ {
		_, err := store.SaveNotification(ctx, &domain.Notification{
			Type:      domain.NotificationForwardFailure,
			Platform:  domain.PlatformTelegram,
			SourceID:  -1001,
			MessageID: int64(i + 1),
			Message:   "forward failed",
			Metadata:  map[string]string{"keyword": "BTC*"},
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("SaveNotification: %v", err)
		}
	}

	list, err := store.ListNotifications(ctx, 2)
	if err != nil {
		t.Fatalf("ListNotifications: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("len = %d, want 2", len(list))
	}
	if list[0].MessageID != 3 || list[1].MessageID != 2 {
		t.Errorf("order = %d, %d; want newest first", list[0].MessageID, list[1].MessageID)
	}
	if list[0].SourceID != -1001 || list[0].Metadata["keyword"] != "BTC*" || list[0].Type != domain.NotificationForwardFailure {
		t.Errorf("record = %+v", list[0])
	}

	if _, err := store.SaveNotification(ctx, nil); err == nil {
		t.Error("expected error for nil notification")
	}
}

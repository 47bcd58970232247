package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"alertBot/internal/domain"
)

// Store keeps the filter configuration in the settings table, one JSON value
// per field, and an append-only log of operator notifications.
type Store struct {
	db *sql.DB
}

func NewStore(dbPath string) (*Store, error) {
	if dbPath == "" {
		return nil, fmt.Errorf("sqlite: empty db path")
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("sqlite: creating dir: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}

	db.SetMaxOpenConns(1)

	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func migrate(db *sql.DB) error {
	const settingsTable = `
CREATE TABLE IF NOT EXISTS settings (
	key TEXT PRIMARY KEY,
	value TEXT,
	updated_at TIMESTAMP NOT NULL
);`

	if _, err := db.Exec(settingsTable); err != nil {
		return fmt.Errorf("sqlite: migrate settings: %w", err)
	}

	const notificationsTable = `
CREATE TABLE IF NOT EXISTS notifications (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	type TEXT NOT NULL,
	platform TEXT,
	source_id INTEGER,
	message_id INTEGER,
	message TEXT,
	metadata TEXT,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_notifications_created_at ON notifications(created_at DESC);`

	if _, err := db.Exec(notificationsTable); err != nil {
		return fmt.Errorf("sqlite: migrate notifications: %w", err)
	}

	return nil
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// ----- Configuration -----

const (
	keyIsRunning          = "is_running"
	keySourceChannels     = "source_channels"
	keySourceChannelNames = "source_channel_names"
	keyKeywords           = "keywords"
	keyAdmins             = "admins"
	keyDestinationChannel = "destination_channel"
)

// Load returns nil, nil when no configuration has been saved yet. Missing
// keys keep their defaults.
func (s *Store) Load(ctx context.Context) (*domain.Configuration, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM settings;`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: load settings: %w", err)
	}
	defer rows.Close()

	cfg := domain.DefaultConfiguration()
	found := false
	for rows.Next() {
		var key string
		var value sql.NullString
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("sqlite: scan setting: %w", err)
		}
		target := settingTarget(&cfg, key)
		if target == nil || !value.Valid {
			continue
		}
		if err := json.Unmarshal([]byte(value.String), target); err != nil {
			return nil, fmt.Errorf("sqlite: decode setting %s: %w", key, err)
		}
		found = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: load settings rows: %w", err)
	}
	if !found {
		return nil, nil
	}
	cfg.Normalize()
	return &cfg, nil
}

// Save writes every field in one transaction.
func (s *Store) Save(ctx context.Context, cfg *domain.Configuration) error {
	if cfg == nil {
		return fmt.Errorf("sqlite: configuration nil")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: begin: %w", err)
	}
	defer tx.Rollback()

	const stmt = `
INSERT INTO settings (key, value, updated_at)
VALUES (?, ?, ?)
ON CONFLICT(key) DO UPDATE SET
	value=excluded.value,
	updated_at=excluded.updated_at;
`

	now := time.Now().UTC()
	values := map[string]any{
		keyIsRunning:          cfg.IsRunning,
		keySourceChannels:     cfg.SourceChannels,
		keySourceChannelNames: cfg.SourceChannelNames,
		keyKeywords:           cfg.Keywords,
		keyAdmins:             cfg.Admins,
		keyDestinationChannel: cfg.DestinationChannel,
	}
	for key, value := range values {
		encoded, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("sqlite: encode setting %s: %w", key, err)
		}
		if _, err := tx.ExecContext(ctx, stmt, key, string(encoded), now); err != nil {
			return fmt.Errorf("sqlite: upsert setting %s: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: commit settings: %w", err)
	}
	return nil
}

func settingTarget(cfg *domain.Configuration, key string) any {
	switch key {
	case keyIsRunning:
		return &cfg.IsRunning
	case keySourceChannels:
		return &cfg.SourceChannels
	case keySourceChannelNames:
		return &cfg.SourceChannelNames
	case keyKeywords:
		return &cfg.Keywords
	case keyAdmins:
		return &cfg.Admins
	case keyDestinationChannel:
		return &cfg.DestinationChannel
	default:
		return nil
	}
}

var _ domain.ConfigRepository = (*Store)(nil)

// ----- Notifications -----

func (s *Store) SaveNotification(ctx context.Context, notification *domain.Notification) (*domain.Notification, error) {
	if notification == nil {
		return nil, fmt.Errorf("sqlite: notification nil")
	}

	now := time.Now().UTC()
	if notification.CreatedAt.IsZero() {
		notification.CreatedAt = now
	}

	const stmt = `
INSERT INTO notifications (type, platform, source_id, message_id, message, metadata, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?);
`

	res, err := s.db.ExecContext(
		ctx,
		stmt,
		string(notification.Type),
		string(notification.Platform),
		notification.SourceID,
		notification.MessageID,
		notification.Message,
		encodeMetadata(notification.Metadata),
		notification.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: save notification: %w", err)
	}

	if id, err := res.LastInsertId(); err == nil {
		notification.ID = id
	}

	return notification, nil
}

func (s *Store) ListNotifications(ctx context.Context, limit int) ([]*domain.Notification, error) {
	if limit <= 0 {
		limit = 50
	}
	const query = `
SELECT id, type, platform, source_id, message_id, message, metadata, created_at
FROM notifications
ORDER BY created_at DESC, id DESC
LIMIT ?;
`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list notifications: %w", err)
	}
	defer rows.Close()

	var out []*domain.Notification
	for rows.Next() {
		var (
			record                 domain.Notification
			notificationType, plat sql.NullString
			sourceID, messageID    sql.NullInt64
			message, metadata      sql.NullString
			createdAt              sql.NullTime
		)

		if err := rows.Scan(
			&record.ID,
			&notificationType,
			&plat,
			&sourceID,
			&messageID,
			&message,
			&metadata,
			&createdAt,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scan notification: %w", err)
		}

		record.Type = domain.NotificationType(notificationType.String)
		record.Platform = domain.Platform(plat.String)
		record.SourceID = sourceID.Int64
		record.MessageID = messageID.Int64
		record.Message = message.String
		record.Metadata = decodeMetadata(metadata.String)
		record.CreatedAt = createdAt.Time

		out = append(out, &record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: list notifications rows: %w", err)
	}

	return out, nil
}

var _ domain.NotificationRepository = (*Store)(nil)

func encodeMetadata(data map[string]string) interface{} {
	if len(data) == 0 {
		return nil
	}
	encoded, err := json.Marshal(data)
	if err != nil {
		return nil
	}
	return string(encoded)
}

func decodeMetadata(raw string) map[string]string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	var metadata map[string]string
	if err := json.Unmarshal([]byte(raw), &metadata); err != nil {
		return nil
	}
	return metadata
}

package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"alertBot/internal/app/events"
	"alertBot/internal/domain"
	"alertBot/internal/usecase/commands"
)

const (
	defaultNotificationLimit = 50
	maxNotificationLimit     = 500
)

type Config struct {
	Addr   string
	Bus    Subscriber
	Logger zerolog.Logger

	Settings      ConfigSource
	Notifications NotificationLister
	Commands      []commands.CommandDescriptor
	// StartedAt is reported as the service start time; zero means now.
	StartedAt time.Time
}

type ConfigSource interface {
	Snapshot() domain.Configuration
}

type NotificationLister interface {
	ListNotifications(ctx context.Context, limit int) ([]*domain.Notification, error)
}

type apiHandlers struct {
	settings      ConfigSource
	notifications NotificationLister
	commands      []commands.CommandDescriptor
	startedAt     time.Time
	clientCount   func() int
}

func newAPIHandlers(cfg Config, clientCount func() int) *apiHandlers {
	started := cfg.StartedAt
	if started.IsZero() {
		started = time.Now()
	}
	return &apiHandlers{
		settings:      cfg.Settings,
		notifications: cfg.Notifications,
		commands:      cfg.Commands,
		startedAt:     started,
		clientCount:   clientCount,
	}
}

func (a *apiHandlers) register(mux *http.ServeMux) {
	if a.settings != nil {
		mux.HandleFunc("/api/status", a.handleStatus)
		mux.HandleFunc("/api/config", a.handleConfig)
	}
	if a.notifications != nil {
		mux.HandleFunc("/api/notifications", a.handleNotifications)
	}
	if len(a.commands) > 0 {
		mux.HandleFunc("/api/commands", a.handleCommands)
	}
}

func setCORSHeaders(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	w.Header().Set("Access-Control-Allow-Methods", "GET,OPTIONS")
}

type statusResponse struct {
	Running            bool   `json:"running"`
	Status             string `json:"status"`
	SourceChannels     int    `json:"source_channels"`
	Keywords           int    `json:"keywords"`
	DestinationChannel int64  `json:"destination_channel"`
	StartedAt          string `json:"started_at"`
	UptimeSeconds      int64  `json:"uptime_seconds"`
	Clients            int    `json:"ws_clients"`
}

func (a *apiHandlers) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	cfg := a.settings.Snapshot()
	status := "stopped"
	if cfg.IsRunning {
		status = "running"
	}
	resp := statusResponse{
		Running:            cfg.IsRunning,
		Status:             status,
		SourceChannels:     len(cfg.SourceChannels),
		Keywords:           len(cfg.Keywords),
		DestinationChannel: cfg.DestinationChannel,
		StartedAt:          a.startedAt.UTC().Format(time.RFC3339),
		UptimeSeconds:      int64(time.Since(a.startedAt).Seconds()),
	}
	if a.clientCount != nil {
		resp.Clients = a.clientCount()
	}
	writeJSON(w, http.StatusOK, resp)
}

func (a *apiHandlers) handleConfig(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, events.NewConfigDTO(a.settings.Snapshot()))
}

type notificationDTO struct {
	ID        int64             `json:"id"`
	Type      string            `json:"type"`
	Platform  string            `json:"platform,omitempty"`
	SourceID  int64             `json:"source_id,omitempty"`
	MessageID int64             `json:"message_id,omitempty"`
	Message   string            `json:"message"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	CreatedAt string            `json:"created_at"`
}

func (a *apiHandlers) handleNotifications(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	limit := defaultNotificationLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, maxNotificationLimit)
	}

	list, err := a.notifications.ListNotifications(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	out := make([]notificationDTO, 0, len(list))
	for _, n := range list {
		out = append(out, notificationDTO{
			ID:        n.ID,
			Type:      string(n.Type),
			Platform:  string(n.Platform),
			SourceID:  n.SourceID,
			MessageID: n.MessageID,
			Message:   n.Message,
			Metadata:  n.Metadata,
			CreatedAt: n.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (a *apiHandlers) handleCommands(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, a.commands)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

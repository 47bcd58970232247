package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"

	defaultAPIURL      = "https://api.telegram.org"
	defaultLogPath     = "./alertbotlogs.log"
	defaultConfigPath  = "./config.json"
	defaultDBPath      = "data/alertbot.db"
	defaultWSAddr      = "127.0.0.1:8080"
	defaultLogLevel    = "info"
	defaultPollTimeout = 30 * time.Second
)

type Config struct {
	BotToken      string
	ListenerToken string
	APIURL        string

	DestinationChannel int64
	// ControlGroup is a numeric chat id or an "@username" resolved at startup.
	ControlGroup string
	Admins       []int64

	LogPath    string
	LogLevel   string
	ConfigPath string
	Backend    string
	DBPath     string
	WSAddr     string

	PollTimeout time.Duration
}

// Load reads envFile (".env" when empty; a missing file is not an error) and
// then the process environment.
func Load(envFile string) (*Config, error) {
	if envFile == "" {
		_ = godotenv.Load()
	} else if err := godotenv.Load(envFile); err != nil {
		return nil, fmt.Errorf("config: load %s: %w", envFile, err)
	}

	cfg := &Config{
		BotToken:      strings.TrimSpace(os.Getenv("TELEGRAM_BOT_TOKEN")),
		ListenerToken: strings.TrimSpace(os.Getenv("TELEGRAM_LISTENER_TOKEN")),
		APIURL:        envOr("TELEGRAM_API_URL", defaultAPIURL),
		ControlGroup:  strings.TrimSpace(os.Getenv("CONTROL_GROUP")),
		LogPath:       envOr("TELEGRAM_ALERTING_BOT_LOG", defaultLogPath),
		LogLevel:      envOr("LOG_LEVEL", defaultLogLevel),
		ConfigPath:    envOr("TELEGRAM_ALERTING_BOT_CONFIG_PATH", defaultConfigPath),
		Backend:       strings.ToLower(envOr("CONFIG_BACKEND", BackendJSON)),
		DBPath:        envOr("DATABASE_PATH", defaultDBPath),
		PollTimeout:   defaultPollTimeout,
	}

	// An explicitly empty CHAT_WS_ADDR disables the status API.
	if addr, ok := os.LookupEnv("CHAT_WS_ADDR"); ok {
		cfg.WSAddr = strings.TrimSpace(addr)
	} else {
		cfg.WSAddr = defaultWSAddr
	}

	var errs []error
	if raw := strings.TrimSpace(os.Getenv("DESTINATION_CHANNEL")); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("DESTINATION_CHANNEL: %w", err))
		}
		cfg.DestinationChannel = id
	}
	admins, err := ParseIDList(os.Getenv("ADMINS"))
	if err != nil {
		errs = append(errs, fmt.Errorf("ADMINS: %w", err))
	}
	cfg.Admins = admins
	if raw := strings.TrimSpace(os.Getenv("POLL_TIMEOUT")); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			errs = append(errs, fmt.Errorf("POLL_TIMEOUT: %w", err))
		}
		cfg.PollTimeout = d
	}

	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// Validate is called after command line overrides are applied.
func (c *Config) Validate() error {
	var errs []error
	if c.BotToken == "" {
		errs = append(errs, errors.New("TELEGRAM_BOT_TOKEN is required"))
	}
	if c.ControlGroup == "" {
		errs = append(errs, errors.New("CONTROL_GROUP is required"))
	}
	switch c.Backend {
	case BackendJSON:
		if c.ConfigPath == "" {
			errs = append(errs, errors.New("config path is required for the json backend"))
		}
	case BackendSQLite:
		if c.DBPath == "" {
			errs = append(errs, errors.New("DATABASE_PATH is required for the sqlite backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown CONFIG_BACKEND %q (want %s or %s)", c.Backend, BackendJSON, BackendSQLite))
	}
	if c.PollTimeout <= 0 {
		errs = append(errs, errors.New("POLL_TIMEOUT must be positive"))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// ParseIDList parses comma or whitespace separated numeric ids.
func ParseIDList(raw string) ([]int64, error) {
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n'
	})
	ids := make([]int64, 0, len(fields))
	for _, f := range fields {
		id, err := strconv.ParseInt(f, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid id %q", f)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

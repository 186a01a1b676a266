package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/amishk599/jobdesk/internal/listing"
)

const (
	// DefaultPath is used when neither --config nor JOBDESK_CONFIG is set.
	DefaultPath = "jobdesk.yaml"

	envConfigPath = "JOBDESK_CONFIG"
	envAPIURL     = "JOBDESK_API_URL"

	slackWebhookPrefix = "https://hooks.slack.com/"
)

// Config is the root configuration for jobdesk.
type Config struct {
	API          APIConfig
	Session      SessionConfig
	UI           UIConfig
	OTP          OTPConfig
	Alerts       AlertsConfig
	Notification NotificationConfig
}

// APIConfig points the client at the platform's REST API.
type APIConfig struct {
	BaseURL    string
	Timeout    time.Duration
	Retries    int           // extra attempts for idempotent requests
	RetryDelay time.Duration // base backoff between attempts
}

// SessionConfig locates the local sqlite file holding the session.
type SessionConfig struct {
	Path string
}

type UIConfig struct {
	PageSize        int
	RevalidateAfter time.Duration // cached lists older than this are refetched
}

type OTPConfig struct {
	ResendCooldown time.Duration
}

// AlertsConfig controls the saved-search poller.
type AlertsConfig struct {
	Interval time.Duration
	MinDelay time.Duration // minimum gap between two search requests
	Searches []SearchConfig
}

// Enabled returns the searches that should be polled.
func (a AlertsConfig) Enabled() []SearchConfig {
	var out []SearchConfig
	for _, s := range a.Searches {
		if s.Enabled {
			out = append(out, s)
		}
	}
	return out
}

// SearchConfig is one saved job search.
type SearchConfig struct {
	Name             string `yaml:"name"`
	Enabled          bool   `yaml:"enabled"`
	listing.JobQuery `yaml:",inline"`
}

// NotificationConfig controls which notifier is used and its settings.
type NotificationConfig struct {
	Type       string `yaml:"type"`        // "log" or "slack"
	WebhookURL string `yaml:"webhook_url"` // required if type is "slack"
}

// rawConfig is used for YAML unmarshaling (snake_case fields and duration as string).
type rawConfig struct {
	API struct {
		BaseURL    string `yaml:"base_url"`
		Timeout    string `yaml:"timeout"`
		Retries    *int   `yaml:"retries"`
		RetryDelay string `yaml:"retry_delay"`
	} `yaml:"api"`
	Session struct {
		Path string `yaml:"path"`
	} `yaml:"session"`
	UI struct {
		PageSize        int    `yaml:"page_size"`
		RevalidateAfter string `yaml:"revalidate_after"`
	} `yaml:"ui"`
	OTP struct {
		ResendCooldown string `yaml:"resend_cooldown"`
	} `yaml:"otp"`
	Alerts struct {
		Interval string         `yaml:"interval"`
		MinDelay string         `yaml:"min_delay"`
		Searches []SearchConfig `yaml:"searches"`
	} `yaml:"alerts"`
	Notification NotificationConfig `yaml:"notification"`
}

// LoadEnv reads a .env file in the working directory if there is one.
// Variables already set in the environment win.
func LoadEnv() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}
	return nil
}

// Path picks the config file: the flag value, then $JOBDESK_CONFIG, then
// ./jobdesk.yaml if it exists. An empty result means defaults only.
func Path(flag string) string {
	if flag != "" {
		return flag
	}
	if p := os.Getenv(envConfigPath); p != "" {
		return p
	}
	if _, err := os.Stat(DefaultPath); err == nil {
		return DefaultPath
	}
	return ""
}

// Load reads and parses the YAML config file at path, validates it, and
// returns Config. An empty path skips the file and uses defaults and the
// environment.
func Load(path string) (*Config, error) {
	var raw rawConfig
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}

		// Expand environment variables
		expanded := os.ExpandEnv(string(data))

		if err := yaml.Unmarshal([]byte(expanded), &raw); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg := &Config{
		API: APIConfig{
			BaseURL: raw.API.BaseURL,
			Retries: 2,
		},
		Session: SessionConfig{Path: raw.Session.Path},
		UI:      UIConfig{PageSize: raw.UI.PageSize},
		Alerts:  AlertsConfig{Searches: raw.Alerts.Searches},
		Notification: NotificationConfig{
			Type:       raw.Notification.Type,
			WebhookURL: raw.Notification.WebhookURL,
		},
	}
	if u := os.Getenv(envAPIURL); u != "" {
		cfg.API.BaseURL = u
	}
	if raw.API.Retries != nil {
		cfg.API.Retries = *raw.API.Retries
	}
	if cfg.Session.Path == "" {
		cfg.Session.Path = "jobdesk.db"
	}
	if cfg.UI.PageSize == 0 {
		cfg.UI.PageSize = 20
	}
	if cfg.Notification.Type == "" {
		cfg.Notification.Type = "log"
	}

	durations := []struct {
		key  string
		raw  string
		def  time.Duration
		dest *time.Duration
	}{
		{"api.timeout", raw.API.Timeout, 30 * time.Second, &cfg.API.Timeout},
		{"api.retry_delay", raw.API.RetryDelay, time.Second, &cfg.API.RetryDelay},
		{"ui.revalidate_after", raw.UI.RevalidateAfter, 30 * time.Second, &cfg.UI.RevalidateAfter},
		{"otp.resend_cooldown", raw.OTP.ResendCooldown, 60 * time.Second, &cfg.OTP.ResendCooldown},
		{"alerts.interval", raw.Alerts.Interval, 15 * time.Minute, &cfg.Alerts.Interval},
		{"alerts.min_delay", raw.Alerts.MinDelay, 2 * time.Second, &cfg.Alerts.MinDelay},
	}
	for _, d := range durations {
		if d.raw == "" {
			*d.dest = d.def
			continue
		}
		v, err := time.ParseDuration(d.raw)
		if err != nil {
			return nil, fmt.Errorf("parse %s %q: %w", d.key, d.raw, err)
		}
		*d.dest = v
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func validate(cfg *Config) error {
	if cfg.API.BaseURL == "" {
		return fmt.Errorf("api.base_url is required (or set %s)", envAPIURL)
	}
	u, err := url.Parse(cfg.API.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("api.base_url must be an absolute http(s) URL, got %q", cfg.API.BaseURL)
	}
	if cfg.API.Retries < 0 {
		return fmt.Errorf("api.retries must not be negative, got %d", cfg.API.Retries)
	}

	positive := map[string]time.Duration{
		"api.timeout":         cfg.API.Timeout,
		"api.retry_delay":     cfg.API.RetryDelay,
		"ui.revalidate_after": cfg.UI.RevalidateAfter,
		"otp.resend_cooldown": cfg.OTP.ResendCooldown,
		"alerts.interval":     cfg.Alerts.Interval,
		"alerts.min_delay":    cfg.Alerts.MinDelay,
	}
	for key, d := range positive {
		if d <= 0 {
			return fmt.Errorf("%s must be positive, got %v", key, d)
		}
	}

	if cfg.UI.PageSize < 1 || cfg.UI.PageSize > 100 {
		return fmt.Errorf("ui.page_size must be between 1 and 100, got %d", cfg.UI.PageSize)
	}

	names := make(map[string]bool)
	for i, s := range cfg.Alerts.Searches {
		if s.Name == "" {
			return fmt.Errorf("alerts.searches[%d].name is required", i)
		}
		if names[s.Name] {
			return fmt.Errorf("alerts.searches: duplicate name %q", s.Name)
		}
		names[s.Name] = true
	}

	switch cfg.Notification.Type {
	case "log":
	case "slack":
		if cfg.Notification.WebhookURL == "" {
			return fmt.Errorf("notification.webhook_url is required when type is \"slack\"")
		}
		if !strings.HasPrefix(cfg.Notification.WebhookURL, slackWebhookPrefix) {
			return fmt.Errorf("notification.webhook_url must start with %s", slackWebhookPrefix)
		}
	default:
		return fmt.Errorf("notification.type must be \"log\" or \"slack\", got %q", cfg.Notification.Type)
	}

	return nil
}

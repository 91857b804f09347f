package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App          AppConfig
	Database     DatabaseConfig
	Log          LogConfig
	Vendor       VendorConfig
	Sync         SyncConfig
	Notification NotificationConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// DatabaseConfig holds SQLite database settings
type DatabaseConfig struct {
	// Path is the SQLite database file path (":memory:" for tests)
	Path string
	// BusyTimeoutMS is the SQLite busy timeout in milliseconds
	BusyTimeoutMS int
}

// DSN returns the SQLite connection string
func (d *DatabaseConfig) DSN() string {
	if d.Path == ":memory:" {
		return ":memory:"
	}
	return fmt.Sprintf("file:%s?_busy_timeout=%d", d.Path, d.BusyTimeoutMS)
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// VendorConfig holds seller API settings
type VendorConfig struct {
	APIBaseURL     string
	TokenURL       string
	ClientID       string
	ClientSecret   string
	AccessToken    string // optional static token; bypasses OAuth when set
	TimeoutSeconds int
}

// SyncConfig holds polling and retry settings
type SyncConfig struct {
	// PollInterval is the time between scheduled sync cycles
	PollInterval time.Duration
	// LookbackWindow is how far back each cycle fetches
	LookbackWindow time.Duration
	// MaxChunkSpan is the vendor's maximum time range per request
	MaxChunkSpan time.Duration
	// CycleTimeout bounds one full sync cycle
	CycleTimeout time.Duration
	// Cooldown is the sleep after an unexpected cycle failure
	Cooldown time.Duration
	// RetryMaxAttempts is the per-window attempt budget for transient errors
	RetryMaxAttempts int
	// RetryBackoff is the backoff schedule between retries
	RetryBackoff []time.Duration
}

// NotificationConfig holds notification channel settings
type NotificationConfig struct {
	DesktopEnabled bool
	// DesktopCommand is the notifier binary (default notify-send)
	DesktopCommand string
	WebhookEnabled bool
	WebhookURL     string
	// WebhookColor is the accent color sent with webhook messages
	WebhookColor          string
	WebhookTimeoutSeconds int
}

// Load loads configuration from TOML file and environment variables.
// Priority (highest to lowest):
// 1. Environment variables with ORDERWATCH_ prefix
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	v.SetEnvPrefix("ORDERWATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Database: DatabaseConfig{
			Path:          v.GetString("database.path"),
			BusyTimeoutMS: v.GetInt("database.busy_timeout_ms"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		Vendor: VendorConfig{
			APIBaseURL:     v.GetString("vendor.api_base_url"),
			TokenURL:       v.GetString("vendor.token_url"),
			ClientID:       v.GetString("vendor.client_id"),
			ClientSecret:   v.GetString("vendor.client_secret"),
			AccessToken:    v.GetString("vendor.access_token"),
			TimeoutSeconds: v.GetInt("vendor.timeout_seconds"),
		},
		Sync: SyncConfig{
			PollInterval:     v.GetDuration("sync.poll_interval"),
			LookbackWindow:   v.GetDuration("sync.lookback_window"),
			MaxChunkSpan:     v.GetDuration("sync.max_chunk_span"),
			CycleTimeout:     v.GetDuration("sync.cycle_timeout"),
			Cooldown:         v.GetDuration("sync.cooldown"),
			RetryMaxAttempts: v.GetInt("sync.retry_max_attempts"),
			RetryBackoff:     parseDurations(v.GetStringSlice("sync.retry_backoff")),
		},
		Notification: NotificationConfig{
			DesktopEnabled:        v.GetBool("notification.desktop_enabled"),
			DesktopCommand:        v.GetString("notification.desktop_command"),
			WebhookEnabled:        v.GetBool("notification.webhook_enabled"),
			WebhookURL:            v.GetString("notification.webhook_url"),
			WebhookColor:          v.GetString("notification.webhook_color"),
			WebhookTimeoutSeconds: v.GetInt("notification.webhook_timeout_seconds"),
		},
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// parseDurations converts config strings like "1s" into durations,
// skipping entries that do not parse
func parseDurations(values []string) []time.Duration {
	durations := make([]time.Duration, 0, len(values))
	for _, value := range values {
		if d, err := time.ParseDuration(value); err == nil && d >= 0 {
			durations = append(durations, d)
		}
	}
	return durations
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "orderwatch"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8090"
	}
	if cfg.Database.Path == "" {
		cfg.Database.Path = "orderwatch.db"
	}
	if cfg.Database.BusyTimeoutMS == 0 {
		cfg.Database.BusyTimeoutMS = 5000
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.Vendor.TimeoutSeconds == 0 {
		cfg.Vendor.TimeoutSeconds = 30
	}
	if cfg.Sync.PollInterval == 0 {
		cfg.Sync.PollInterval = 5 * time.Minute
	}
	if cfg.Sync.LookbackWindow == 0 {
		cfg.Sync.LookbackWindow = 72 * time.Hour
	}
	if cfg.Sync.MaxChunkSpan == 0 {
		cfg.Sync.MaxChunkSpan = 24 * time.Hour
	}
	if cfg.Sync.CycleTimeout == 0 {
		cfg.Sync.CycleTimeout = 10 * time.Minute
	}
	if cfg.Sync.Cooldown == 0 {
		cfg.Sync.Cooldown = 30 * time.Second
	}
	if cfg.Sync.RetryMaxAttempts == 0 {
		cfg.Sync.RetryMaxAttempts = 3
	}
	if len(cfg.Sync.RetryBackoff) == 0 {
		cfg.Sync.RetryBackoff = []time.Duration{time.Second, 3 * time.Second, 10 * time.Second}
	}
	if cfg.Notification.DesktopCommand == "" {
		cfg.Notification.DesktopCommand = "notify-send"
	}
	if cfg.Notification.WebhookColor == "" {
		cfg.Notification.WebhookColor = "#2eccfa"
	}
	if cfg.Notification.WebhookTimeoutSeconds == 0 {
		cfg.Notification.WebhookTimeoutSeconds = 10
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	if c.Sync.PollInterval < time.Second {
		return fmt.Errorf("sync.poll_interval must be at least 1s")
	}
	if c.Sync.MaxChunkSpan <= 0 {
		return fmt.Errorf("sync.max_chunk_span must be positive")
	}
	if c.Sync.LookbackWindow <= 0 {
		return fmt.Errorf("sync.lookback_window must be positive")
	}
	if c.Sync.RetryMaxAttempts < 1 {
		return fmt.Errorf("sync.retry_max_attempts must be at least 1")
	}
	if c.Notification.WebhookEnabled && c.Notification.WebhookURL == "" {
		return fmt.Errorf("notification.webhook_url is required when the webhook channel is enabled")
	}
	if c.App.Env == "production" {
		if c.Vendor.ClientID == "" && c.Vendor.AccessToken == "" {
			return fmt.Errorf("vendor.client_id or vendor.access_token is required in production")
		}
		if c.Vendor.ClientID != "" && c.Vendor.ClientSecret == "" {
			return fmt.Errorf("vendor.client_secret is required in production")
		}
	}
	return nil
}

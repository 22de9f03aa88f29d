package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Log       LogConfig
	HTTP      HTTPConfig
	Zid       ZidConfig
	Scheduler SchedulerConfig
	Webhook   WebhookConfig
	Telemetry TelemetryConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // in minutes
	ConnMaxIdleTime int // in minutes
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	MaxHeaderBytes int
	MaxBodySize    int64
	TrustedProxies []string
	// RateLimitRequests allows this many requests per client per window.
	RateLimitRequests int
	RateLimitWindow   time.Duration
	// WebhookRateLimitRequests bounds deliveries accepted on the public
	// webhook endpoint per source per window.
	WebhookRateLimitRequests int
	WebhookRateLimitWindow   time.Duration
}

// ZidConfig holds Zid API client settings
type ZidConfig struct {
	RequestTimeout time.Duration
	MaxPages       int
	// LockTimeout is how long an import lock may be held before the
	// janitor resets it as stale.
	LockTimeout time.Duration
}

// SchedulerConfig holds background job configuration
type SchedulerConfig struct {
	Enabled bool
	// QueueInterval is how often pending queues are picked up.
	QueueInterval time.Duration
	// QueuesPerRun caps how many queues one tick processes.
	QueuesPerRun int
	// ImportInterval is how often remote orders and products are pulled.
	ImportInterval time.Duration
	// CatalogInterval is how often the catalog mirrors are refreshed.
	CatalogInterval time.Duration
	// CleanupInterval is how often the queue janitor runs.
	CleanupInterval time.Duration
	// EmptyQueueRetention is how long empty queues are kept.
	EmptyQueueRetention time.Duration
	// DoneQueueRetention is how long fully processed queues are kept.
	DoneQueueRetention time.Duration
	// SyncLogRetention is how long stock sync logs are kept.
	SyncLogRetention time.Duration
}

// WebhookConfig holds inbound webhook settings
type WebhookConfig struct {
	// BaseURL is the externally reachable root used when registering
	// webhook targets with the platform.
	BaseURL string
	// DedupTTL is how long processed event ids are remembered.
	DedupTTL time.Duration
}

// TelemetryConfig holds database tracing configuration
type TelemetryConfig struct {
	DBTraceEnabled bool // attach the otelgorm plugin to the DB handle
}

// Load loads configuration from TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with ZIDSYNC_ prefix (e.g., ZIDSYNC_DATABASE_PASSWORD)
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

	v.SetEnvPrefix("ZIDSYNC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("database.host"),
			Port:            v.GetInt("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			DBName:          v.GetString("database.dbname"),
			SSLMode:         v.GetString("database.sslmode"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetInt("database.conn_max_lifetime"),
			ConnMaxIdleTime: v.GetInt("database.conn_max_idle_time"),
		},
		Redis: RedisConfig{
			Enabled:  v.GetBool("redis.enabled"),
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:              v.GetDuration("http.read_timeout"),
			WriteTimeout:             v.GetDuration("http.write_timeout"),
			IdleTimeout:              v.GetDuration("http.idle_timeout"),
			MaxHeaderBytes:           v.GetInt("http.max_header_bytes"),
			MaxBodySize:              v.GetInt64("http.max_body_size"),
			TrustedProxies:           v.GetStringSlice("http.trusted_proxies"),
			RateLimitRequests:        v.GetInt("http.rate_limit_requests"),
			RateLimitWindow:          v.GetDuration("http.rate_limit_window"),
			WebhookRateLimitRequests: v.GetInt("http.webhook_rate_limit_requests"),
			WebhookRateLimitWindow:   v.GetDuration("http.webhook_rate_limit_window"),
		},
		Zid: ZidConfig{
			RequestTimeout: v.GetDuration("zid.request_timeout"),
			MaxPages:       v.GetInt("zid.max_pages"),
			LockTimeout:    v.GetDuration("zid.lock_timeout"),
		},
		Scheduler: SchedulerConfig{
			Enabled:             v.GetBool("scheduler.enabled"),
			QueueInterval:       v.GetDuration("scheduler.queue_interval"),
			QueuesPerRun:        v.GetInt("scheduler.queues_per_run"),
			ImportInterval:      v.GetDuration("scheduler.import_interval"),
			CatalogInterval:     v.GetDuration("scheduler.catalog_interval"),
			CleanupInterval:     v.GetDuration("scheduler.cleanup_interval"),
			EmptyQueueRetention: v.GetDuration("scheduler.empty_queue_retention"),
			DoneQueueRetention:  v.GetDuration("scheduler.done_queue_retention"),
			SyncLogRetention:    v.GetDuration("scheduler.sync_log_retention"),
		},
		Webhook: WebhookConfig{
			BaseURL:  v.GetString("webhook.base_url"),
			DedupTTL: v.GetDuration("webhook.dedup_ttl"),
		},
		Telemetry: TelemetryConfig{
			DBTraceEnabled: v.GetBool("telemetry.db_trace_enabled"),
		},
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "zidsync"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "postgres"
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = "zidsync"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 25
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 60
	}
	if cfg.Database.ConnMaxIdleTime == 0 {
		cfg.Database.ConnMaxIdleTime = 30
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
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
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		cfg.HTTP.WriteTimeout = 15 * time.Second
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.MaxHeaderBytes == 0 {
		cfg.HTTP.MaxHeaderBytes = 1 << 20 // 1MB
	}
	if cfg.HTTP.RateLimitRequests == 0 {
		cfg.HTTP.RateLimitRequests = 300
	}
	if cfg.HTTP.RateLimitWindow == 0 {
		cfg.HTTP.RateLimitWindow = time.Minute
	}
	if cfg.HTTP.WebhookRateLimitRequests == 0 {
		cfg.HTTP.WebhookRateLimitRequests = 120
	}
	if cfg.HTTP.WebhookRateLimitWindow == 0 {
		cfg.HTTP.WebhookRateLimitWindow = time.Minute
	}
	if cfg.HTTP.MaxBodySize == 0 {
		cfg.HTTP.MaxBodySize = 10 << 20 // 10MB
	}
	if cfg.Zid.RequestTimeout == 0 {
		cfg.Zid.RequestTimeout = 30 * time.Second
	}
	if cfg.Zid.MaxPages == 0 {
		cfg.Zid.MaxPages = 200
	}
	if cfg.Zid.LockTimeout == 0 {
		cfg.Zid.LockTimeout = time.Hour
	}
	if cfg.Scheduler.QueueInterval == 0 {
		cfg.Scheduler.QueueInterval = time.Minute
	}
	if cfg.Scheduler.QueuesPerRun == 0 {
		cfg.Scheduler.QueuesPerRun = 10
	}
	if cfg.Scheduler.ImportInterval == 0 {
		cfg.Scheduler.ImportInterval = 15 * time.Minute
	}
	if cfg.Scheduler.CatalogInterval == 0 {
		cfg.Scheduler.CatalogInterval = 6 * time.Hour
	}
	if cfg.Scheduler.CleanupInterval == 0 {
		cfg.Scheduler.CleanupInterval = time.Hour
	}
	if cfg.Scheduler.EmptyQueueRetention == 0 {
		cfg.Scheduler.EmptyQueueRetention = 24 * time.Hour
	}
	if cfg.Scheduler.DoneQueueRetention == 0 {
		cfg.Scheduler.DoneQueueRetention = 7 * 24 * time.Hour
	}
	if cfg.Scheduler.SyncLogRetention == 0 {
		cfg.Scheduler.SyncLogRetention = 30 * 24 * time.Hour
	}
	if cfg.Webhook.DedupTTL == 0 {
		cfg.Webhook.DedupTTL = 24 * time.Hour
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	if c.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("database.max_open_conns must be positive")
	}
	if c.Database.MaxIdleConns < 0 {
		return fmt.Errorf("database.max_idle_conns cannot be negative")
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)",
			c.Database.MaxIdleConns, c.Database.MaxOpenConns)
	}
	if c.Scheduler.QueuesPerRun < 1 {
		return fmt.Errorf("scheduler.queues_per_run must be at least 1")
	}

	if c.App.Env == "production" {
		if c.Database.Password == "" {
			return fmt.Errorf("database.password is required in production")
		}
		if c.Database.SSLMode == "disable" {
			return fmt.Errorf("database.sslmode cannot be 'disable' in production")
		}
		if c.Webhook.BaseURL == "" {
			return fmt.Errorf("webhook.base_url is required in production")
		}
	}

	if c.Webhook.BaseURL != "" {
		if _, err := url.ParseRequestURI(c.Webhook.BaseURL); err != nil {
			return fmt.Errorf("webhook.base_url is not a valid URL: %w", err)
		}
	}

	return nil
}

// DSN returns the database connection string with properly escaped values
func (d *DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.DBName,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}

// Addr returns the Redis address in host:port form
func (r *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

package config

import "time"

// Config represents the complete application configuration
type Config struct {
	Environment string           `mapstructure:"environment"`
	Server      ServerConfig     `mapstructure:"server"`
	Database    DatabaseConfig   `mapstructure:"database"`
	Auth        AuthConfig       `mapstructure:"auth"`
	Processing  ProcessingConfig `mapstructure:"processing"`
	Video       VideoConfig      `mapstructure:"video"`
	Captions    CaptionsConfig   `mapstructure:"captions"`
	Translate   TranslateConfig  `mapstructure:"translate"`
	Storage     StorageConfig    `mapstructure:"storage"`
	Email       EmailConfig      `mapstructure:"email"`
	Payments    PaymentsConfig   `mapstructure:"payments"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	MaxHeaderBytes  int           `mapstructure:"max_header_bytes"`
}

// DatabaseConfig contains database settings
type DatabaseConfig struct {
	Path    string `mapstructure:"path"`
	Verbose bool   `mapstructure:"verbose"`
}

// AuthConfig contains JWT settings
type AuthConfig struct {
	JWTSecret string        `mapstructure:"jwt_secret"`
	TokenTTL  time.Duration `mapstructure:"token_ttl"`
	Issuer    string        `mapstructure:"issuer"`
}

// ProcessingConfig contains background job settings
type ProcessingConfig struct {
	Workers          int           `mapstructure:"workers"`
	PollInterval     time.Duration `mapstructure:"poll_interval"`
	RetryAttempts    int           `mapstructure:"retry_attempts"`
	JobRetentionDays int           `mapstructure:"job_retention_days"`
	EmbeddedWorkers  bool          `mapstructure:"embedded_workers"`
}

// VideoConfig contains video provider API settings
type VideoConfig struct {
	BaseURL           string        `mapstructure:"base_url"`
	StreamBaseURL     string        `mapstructure:"stream_base_url"`
	APIToken          string        `mapstructure:"api_token"`
	WebhookSecret     string        `mapstructure:"webhook_secret"`
	Timeout           time.Duration `mapstructure:"timeout"`
	TrackPollInterval time.Duration `mapstructure:"track_poll_interval"`
	TrackPollAttempts int           `mapstructure:"track_poll_attempts"`
}

// CaptionsConfig contains caption pipeline settings
type CaptionsConfig struct {
	TargetLanguages []string `mapstructure:"target_languages"`
	SourceLanguage  string   `mapstructure:"source_language"`
	Bucket          string   `mapstructure:"bucket"`
}

// TranslateConfig contains translation provider settings
type TranslateConfig struct {
	BaseURL   string        `mapstructure:"base_url"`
	APIKey    string        `mapstructure:"api_key"`
	Timeout   time.Duration `mapstructure:"timeout"`
	BatchSize int           `mapstructure:"batch_size"`
}

// StorageConfig contains object storage settings
type StorageConfig struct {
	BaseURL    string `mapstructure:"base_url"`
	ServiceKey string `mapstructure:"service_key"`
}

// EmailConfig contains transactional email settings
type EmailConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	APIKey  string        `mapstructure:"api_key"`
	From    string        `mapstructure:"from"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// PaymentsConfig contains payment provider settings
type PaymentsConfig struct {
	WebhookSecret string `mapstructure:"webhook_secret"`
}

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/spf13/viper"
)

var (
	once    sync.Once
	initErr error
)

// Init initializes the configuration system
// This should be called once at application startup
func Init() error {
	once.Do(func() {
		// Set default values
		setDefaults()

		// Set up environment variable reading for overrides
		viper.SetEnvPrefix("READYLAB")
		viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		viper.AutomaticEnv()

		// Load config from fixed location (cleaned for safety)
		configPath := filepath.Clean("./config/settings.yaml")
		viper.SetConfigFile(configPath)

		// Try to read the config file
		if err := viper.ReadInConfig(); err != nil {
			// If the config file doesn't exist, just use defaults and env vars
			if !os.IsNotExist(err) {
				initErr = fmt.Errorf("error reading config file %s: %w", configPath, err)
				return
			}
			// Config file doesn't exist, which is fine - we'll use defaults
		}

		// Validate the configuration
		if err := validate(); err != nil {
			initErr = fmt.Errorf("invalid configuration: %w", err)
		}
	})

	return initErr
}

// GetConfig returns the current configuration as a struct
// Init() must be called before using this
func GetConfig() (*Config, error) {
	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	return &config, nil
}

// Get returns a config value by key using Viper directly
func Get(key string) any {
	return viper.Get(key)
}

// GetString returns a string config value
func GetString(key string) string {
	return viper.GetString(key)
}

// GetInt returns an int config value
func GetInt(key string) int {
	return viper.GetInt(key)
}

// GetBool returns a bool config value
func GetBool(key string) bool {
	return viper.GetBool(key)
}

// GetDuration returns a time.Duration config value
func GetDuration(key string) time.Duration {
	return viper.GetDuration(key)
}

// GetStringSlice returns a string slice config value
func GetStringSlice(key string) []string {
	return viper.GetStringSlice(key)
}

// validate validates the configuration using Viper values
func validate() error {
	port := viper.GetInt("server.port")
	if port <= 0 || port > 65535 {
		return fmt.Errorf("invalid server port: %d", port)
	}

	dbPath := viper.GetString("database.path")
	if dbPath == "" {
		// Database is optional, so we don't return an error
		// but we log a warning
		fmt.Println("Warning: No database path configured")
	}

	// Validate secrets aren't using placeholder values
	if err := validateSecrets(); err != nil {
		return err
	}

	// Auto-correct invalid worker count
	if viper.GetInt("processing.workers") <= 0 {
		viper.Set("processing.workers", 2)
	}

	// Auto-correct empty caption language list
	if len(viper.GetStringSlice("captions.target_languages")) == 0 {
		viper.Set("captions.target_languages", []string{"es"})
	}

	return nil
}

// validateSecrets validates that secrets are not using placeholder values
func validateSecrets() error {
	// Check for production environment
	env := viper.GetString("environment")
	isProduction := env == "production" || env == "prod"

	// List of placeholder values that shouldn't be used
	placeholders := []string{
		"YOUR_KEY_HERE",
		"YOUR_SECRET_HERE",
		"YOUR_API_KEY",
		"YOUR_API_SECRET",
		"changeme",
		"CHANGEME",
		"",
	}

	// Check video provider credentials
	videoToken := viper.GetString("video.api_token")
	webhookSecret := viper.GetString("video.webhook_secret")

	for _, placeholder := range placeholders {
		if videoToken == placeholder || webhookSecret == placeholder {
			if isProduction {
				return fmt.Errorf("invalid video provider credentials: cannot use placeholder values in production")
			}
			fmt.Println("Warning: video provider credentials are using placeholder values")
			break
		}
	}

	// Check payments webhook secret
	paymentsSecret := viper.GetString("payments.webhook_secret")
	for _, placeholder := range placeholders {
		if paymentsSecret == placeholder {
			if isProduction {
				return fmt.Errorf("invalid payments webhook secret: cannot use placeholder values in production")
			}
			fmt.Println("Warning: payments webhook secret is using a placeholder value")
			break
		}
	}

	// Check JWT secret
	jwtSecret := viper.GetString("auth.jwt_secret")
	for _, placeholder := range placeholders {
		if jwtSecret == placeholder {
			if isProduction {
				return fmt.Errorf("invalid JWT secret: cannot use placeholder values in production")
			}
			fmt.Println("Warning: JWT secret is using a placeholder value - this is insecure!")
			break
		}
	}

	return nil
}

// Validate validates a Config struct (for testing)
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Processing.Workers <= 0 {
		c.Processing.Workers = 2
	}

	if len(c.Captions.TargetLanguages) == 0 {
		c.Captions.TargetLanguages = []string{"es"}
	}

	return nil
}

// setDefaults sets default configuration values
func setDefaults() {
	// Environment defaults
	viper.SetDefault("environment", "development")

	// Server defaults
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", 30*time.Second)
	viper.SetDefault("server.write_timeout", 30*time.Second)
	viper.SetDefault("server.shutdown_timeout", 10*time.Second)
	viper.SetDefault("server.max_header_bytes", 1048576)

	// Database defaults
	viper.SetDefault("database.path", "./data/readylab.db")
	viper.SetDefault("database.verbose", false)

	// Auth defaults
	viper.SetDefault("auth.jwt_secret", "")
	viper.SetDefault("auth.token_ttl", 24*time.Hour)
	viper.SetDefault("auth.issuer", "readylab-api")

	// Processing defaults
	viper.SetDefault("processing.workers", 2)
	viper.SetDefault("processing.poll_interval", 5*time.Second)
	viper.SetDefault("processing.retry_attempts", 3)
	viper.SetDefault("processing.job_retention_days", 30)
	viper.SetDefault("processing.embedded_workers", true)

	// Video provider defaults
	viper.SetDefault("video.base_url", "https://api.video.example.com/v1")
	viper.SetDefault("video.stream_base_url", "https://stream.video.example.com")
	viper.SetDefault("video.api_token", "")
	viper.SetDefault("video.webhook_secret", "")
	viper.SetDefault("video.timeout", 15*time.Second)
	viper.SetDefault("video.track_poll_interval", 10*time.Second)
	viper.SetDefault("video.track_poll_attempts", 30)

	// Caption pipeline defaults
	viper.SetDefault("captions.target_languages", []string{"es"})
	viper.SetDefault("captions.source_language", "en")
	viper.SetDefault("captions.bucket", "captions")

	// Translation provider defaults
	viper.SetDefault("translate.base_url", "https://translate.example.com")
	viper.SetDefault("translate.api_key", "")
	viper.SetDefault("translate.timeout", 30*time.Second)
	viper.SetDefault("translate.batch_size", 50)

	// Object storage defaults
	viper.SetDefault("storage.base_url", "")
	viper.SetDefault("storage.service_key", "")

	// Email provider defaults
	viper.SetDefault("email.base_url", "https://api.resend.example.com")
	viper.SetDefault("email.api_key", "")
	viper.SetDefault("email.from", "The Ready Lab <no-reply@thereadylab.example.com>")
	viper.SetDefault("email.timeout", 10*time.Second)

	// Payments defaults
	viper.SetDefault("payments.webhook_secret", "")
}

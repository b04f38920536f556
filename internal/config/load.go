package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable, e.g. SCRY_DATABASE_URL.
const EnvPrefix = "SCRY"

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.shutdown_timeout_seconds", 10)
	v.SetDefault("server.metrics_enabled", true)

	v.SetDefault("database.driver", DriverPostgres)
	v.SetDefault("database.url", "")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 25)
	v.SetDefault("database.conn_max_lifetime_minutes", 5)

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.token_lifetime_minutes", 60)

	v.SetDefault("llm.gemini_api_key", "")
	v.SetDefault("llm.model_name", "gemini-2.0-flash")
	v.SetDefault("llm.temperature", 0.2)
	v.SetDefault("llm.timeout_seconds", 15)
	v.SetDefault("llm.max_retries", 3)
	v.SetDefault("llm.retry_delay_ms", 500)

	v.SetDefault("learning.struggling_ratio", 0.5)
	v.SetDefault("learning.anti_repeat_minutes", 5)
	v.SetDefault("learning.recent_review_window", 10)
	v.SetDefault("learning.random_seed", 0)

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.lock_ttl_seconds", 30)
}

// Load configuration from environment variables and optionally a config.yaml
// in the working directory. Environment variables take precedence over values
// from the file. Returns a populated Config or an error if loading or
// validation fails.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks cfg against its struct tags and the cross-section rules.
func Validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	if err := validateLockLease(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

// validateLockLease makes sure a Redis lease outlives semantic grading, which
// runs while the lock is held. The LLM timeout bounds the whole call,
// retries included.
func validateLockLease(cfg *Config) error {
	if cfg.Redis.Addr == "" || cfg.LLM.GeminiAPIKey == "" {
		return nil
	}
	if cfg.LLM.TimeoutSeconds <= 0 {
		return errors.New("llm.timeout_seconds must be set when the redis lock is enabled")
	}
	if cfg.Redis.LockTTLSeconds <= cfg.LLM.TimeoutSeconds {
		return fmt.Errorf("redis.lock_ttl_seconds (%d) must exceed llm.timeout_seconds (%d)",
			cfg.Redis.LockTTLSeconds, cfg.LLM.TimeoutSeconds)
	}
	return nil
}

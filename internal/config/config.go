package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth" validate:"required"`
	LLM      LLMConfig      `mapstructure:"llm"`
	Learning LearningConfig `mapstructure:"learning" validate:"required"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port                   int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel               string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	ShutdownTimeoutSeconds int    `mapstructure:"shutdown_timeout_seconds" validate:"gte=0"`
	MetricsEnabled         bool   `mapstructure:"metrics_enabled"`
}

// Supported storage drivers.
const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// DatabaseConfig contains all database-related configuration settings.
// The memory driver keeps everything in process and needs no URL.
type DatabaseConfig struct {
	Driver          string `mapstructure:"driver" validate:"required,oneof=postgres memory"`
	URL             string `mapstructure:"url" validate:"required_if=Driver postgres,omitempty,url"`
	MaxOpenConns    int    `mapstructure:"max_open_conns" validate:"gte=0"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns" validate:"gte=0"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime_minutes" validate:"gte=0"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret            string `mapstructure:"jwt_secret" validate:"required,min=32"`
	TokenLifetimeMinutes int    `mapstructure:"token_lifetime_minutes" validate:"gt=0"`
}

// LLMConfig configures the Gemini semantic grader. Without an API key the
// offline keyword grader is used.
type LLMConfig struct {
	GeminiAPIKey   string  `mapstructure:"gemini_api_key"`
	ModelName      string  `mapstructure:"model_name" validate:"required_with=GeminiAPIKey"`
	Temperature    float32 `mapstructure:"temperature" validate:"gte=0,lte=2"`
	TimeoutSeconds int     `mapstructure:"timeout_seconds" validate:"gte=0"`
	MaxRetries     int     `mapstructure:"max_retries" validate:"gte=0,lte=10"`
	RetryDelayMS   int     `mapstructure:"retry_delay_ms" validate:"gte=0"`
}

// LearningConfig tunes card selection and topic aggregation.
type LearningConfig struct {
	// StrugglingRatio is the probability of drawing the topic from the
	// struggling pool rather than uniformly.
	StrugglingRatio    float64 `mapstructure:"struggling_ratio" validate:"gte=0,lte=1"`
	AntiRepeatMinutes  int     `mapstructure:"anti_repeat_minutes" validate:"gte=0"`
	RecentReviewWindow int     `mapstructure:"recent_review_window" validate:"gt=0"`
	// RandomSeed seeds the selector; 0 seeds from the clock.
	RandomSeed int64 `mapstructure:"random_seed"`
}

// RedisConfig enables the distributed submission lock when Addr is set.
type RedisConfig struct {
	Addr           string `mapstructure:"addr" validate:"omitempty,hostname_port"`
	Password       string `mapstructure:"password"`
	DB             int    `mapstructure:"db" validate:"gte=0"`
	LockTTLSeconds int    `mapstructure:"lock_ttl_seconds" validate:"gt=0"`
}

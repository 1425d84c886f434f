package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

var ErrMissingEnvironmentVariables = errors.New("missing required environment variables")

// DefaultResetSecret is used when SIMPLE_RESET_SECRET is not set.
const DefaultResetSecret = "change-this-secret"

// Config holds application configuration loaded from files and environment variables.
type Config struct {
	Env      string   `mapstructure:"env"` // current application environment (local, dev, production etc)
	HTTP     HTTP     `mapstructure:"http"`
	DB       DB       `mapstructure:"database"`
	Redis    Redis    `mapstructure:"redis"`
	Auth     Auth     `mapstructure:"auth"`
	Reset    Reset    `mapstructure:"reset"`
	Telegram Telegram `mapstructure:"telegram"`
}

// HTTP contains API server parameters.
type HTTP struct {
	Addr            string        `mapstructure:"addr"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	AllowedOrigin   string        `mapstructure:"allowed_origin"`
	AuthRateLimit   float64       `mapstructure:"auth_rate_limit"` // sign-in/sign-up requests per second per client
	AuthRateBurst   int           `mapstructure:"auth_rate_burst"`
}

// DB contains database-related configuration parameters.
type DB struct {
	URL             string        `mapstructure:"-"`                 // database connection string loaded from environment
	MaxConnections  int32         `mapstructure:"max_connections"`   // maximum number of open connections in the pool
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"` // maximum lifetime of a single connection
}

// Redis configures the optional catalog cache. An empty Addr disables it.
type Redis struct {
	Addr       string        `mapstructure:"addr"`
	Password   string        `mapstructure:"password"`
	DB         int           `mapstructure:"db"`
	CatalogTTL time.Duration `mapstructure:"catalog_ttl"`
}

// Auth configures the identity provider.
type Auth struct {
	SessionTTL        time.Duration `mapstructure:"session_ttl"`
	MaxUsers          int64         `mapstructure:"max_users"`
	ProfileAttempts   int           `mapstructure:"profile_attempts"`
	ProfileRetryDelay time.Duration `mapstructure:"profile_retry_delay"`
}

// Reset configures the monthly reset.
type Reset struct {
	Secret          string `mapstructure:"-"` // shared secret loaded from environment
	ScheduleEnabled bool   `mapstructure:"schedule_enabled"`
	Cron            string `mapstructure:"cron"`
	Timezone        string `mapstructure:"timezone"`
}

// Telegram configures the optional reset notifier. An empty token disables it.
type Telegram struct {
	Token  string `mapstructure:"-"`
	ChatID int64  `mapstructure:"chat_id"`
}

// DSN returns the database connection string if it is configured.
func (db DB) DSN() (string, error) {
	if db.URL == "" {
		return "", ErrMissingEnvironmentVariables
	}
	return db.URL, nil
}

// UsesDefaultSecret reports whether the reset secret was left at its default.
func (r Reset) UsesDefaultSecret() bool {
	return r.Secret == DefaultResetSecret
}

// Load reads configuration from config files and environment variables.
func Load() (*Config, error) {
	// A local .env is optional; real environment variables win.
	_ = godotenv.Load()

	// Initialize Viper instance and base config options.
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")

	setDefaults(v)

	// Configure environment variable handling and key mapping.
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_")) // map nested keys to ENV style names
	v.AutomaticEnv()

	// Bind explicit environment variables to configuration keys.
	_ = v.BindEnv("database_url", "DATABASE_URL")
	_ = v.BindEnv("reset_secret", "SIMPLE_RESET_SECRET")
	_ = v.BindEnv("telegram_api_token", "TELEGRAM_API_TOKEN")
	_ = v.BindEnv("env", "APP_ENV")

	// Try to read configuration file if present.
	if err := v.ReadInConfig(); err != nil {
		var fileLookupErr viper.ConfigFileNotFoundError
		if !errors.As(err, &fileLookupErr) {
			return nil, fmt.Errorf("error loading config file: %w", err)
		}
	}

	return build(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "local")

	v.SetDefault("http.addr", ":8080")
	v.SetDefault("http.read_timeout", "10s")
	v.SetDefault("http.write_timeout", "10s")
	v.SetDefault("http.shutdown_timeout", "10s")
	v.SetDefault("http.allowed_origin", "*")
	v.SetDefault("http.auth_rate_limit", 1.0)
	v.SetDefault("http.auth_rate_burst", 5)

	v.SetDefault("database.max_connections", 20)
	v.SetDefault("database.max_conn_lifetime", "30s")

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.catalog_ttl", "1h")

	v.SetDefault("auth.session_ttl", "168h")
	v.SetDefault("auth.max_users", 200)
	v.SetDefault("auth.profile_attempts", 3)
	v.SetDefault("auth.profile_retry_delay", "1s")

	v.SetDefault("reset.schedule_enabled", false)
	v.SetDefault("reset.cron", "0 0 1 * *")
	v.SetDefault("reset.timezone", "UTC")

	v.SetDefault("telegram.chat_id", 0)
}

func build(v *viper.Viper) (*Config, error) {
	// Unmarshal configuration into strongly typed struct.
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	// Load sensitive values from environment variables.
	cfg.DB.URL = v.GetString("database_url")
	if cfg.DB.URL == "" {
		return nil, ErrMissingEnvironmentVariables
	}

	cfg.Reset.Secret = v.GetString("reset_secret")
	if cfg.Reset.Secret == "" {
		cfg.Reset.Secret = DefaultResetSecret
	}

	cfg.Telegram.Token = v.GetString("telegram_api_token")

	return &cfg, nil
}

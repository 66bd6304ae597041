package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/Veraticus/caixa/internal/common"
	"github.com/Veraticus/caixa/internal/service"
)

// Default settings.
const (
	DefaultDatabasePath = "$HOME/.local/share/caixa/caixa.db"
	DefaultServerAddr   = ":3000"
	DefaultExchange     = "caixa.events"
)

// Config is the resolved application configuration.
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	Events   EventsConfig
	Logging  LoggingConfig
}

// DatabaseConfig locates the SQLite file.
type DatabaseConfig struct {
	Path string
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Addr            string
	ShutdownTimeout time.Duration
}

// EventsConfig points at the AMQP broker. An empty URL disables events.
type EventsConfig struct {
	URL      string
	Exchange string
	Retry    service.RetryOptions
}

// Enabled reports whether a broker is configured.
func (e EventsConfig) Enabled() bool {
	return e.URL != ""
}

// LoggingConfig selects the slog level and handler.
type LoggingConfig struct {
	Level  string
	Format string
}

// SetDefaults registers the default of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("database.path", DefaultDatabasePath)
	v.SetDefault("server.addr", DefaultServerAddr)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("events.url", "")
	v.SetDefault("events.exchange", DefaultExchange)
	v.SetDefault("events.retry.max_attempts", 5)
	v.SetDefault("events.retry.initial_delay", 500*time.Millisecond)
	v.SetDefault("events.retry.max_delay", 10*time.Second)
	v.SetDefault("events.retry.multiplier", 2.0)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
}

// LoadEnvFiles reads .env style files into the process environment without
// overriding variables that are already set. Missing files are ignored.
func LoadEnvFiles(files ...string) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		_ = godotenv.Load(f)
	}
}

// BindEnv makes every key readable from CAIXA_* variables, e.g.
// CAIXA_DATABASE_PATH for database.path.
func BindEnv(v *viper.Viper) {
	v.SetEnvPrefix("CAIXA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// Load resolves the configuration from v.
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Database: DatabaseConfig{
			Path: ExpandPath(v.GetString("database.path")),
		},
		Server: ServerConfig{
			Addr:            v.GetString("server.addr"),
			ShutdownTimeout: v.GetDuration("server.shutdown_timeout"),
		},
		Events: EventsConfig{
			URL:      v.GetString("events.url"),
			Exchange: v.GetString("events.exchange"),
			Retry: service.RetryOptions{
				MaxAttempts:  v.GetInt("events.retry.max_attempts"),
				InitialDelay: v.GetDuration("events.retry.initial_delay"),
				MaxDelay:     v.GetDuration("events.retry.max_delay"),
				Multiplier:   v.GetFloat64("events.retry.multiplier"),
			},
		},
		Logging: LoggingConfig{
			Level:  v.GetString("logging.level"),
			Format: v.GetString("logging.format"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return fmt.Errorf("%w: database.path", common.ErrMissingConfig)
	}
	if c.Server.Addr == "" {
		return fmt.Errorf("%w: server.addr", common.ErrMissingConfig)
	}
	if c.Server.ShutdownTimeout < 0 {
		return fmt.Errorf("%w: server.shutdown_timeout must not be negative", common.ErrInvalidConfig)
	}
	if c.Events.Enabled() {
		if c.Events.Exchange == "" {
			return fmt.Errorf("%w: events.exchange", common.ErrMissingConfig)
		}
		if !strings.HasPrefix(c.Events.URL, "amqp://") && !strings.HasPrefix(c.Events.URL, "amqps://") {
			return fmt.Errorf("%w: events.url must use amqp:// or amqps://", common.ErrInvalidConfig)
		}
		if c.Events.Retry.MaxAttempts < 1 {
			return fmt.Errorf("%w: events.retry.max_attempts must be at least 1", common.ErrInvalidConfig)
		}
	}
	if _, err := common.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("%w: %w", common.ErrInvalidConfig, err)
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("%w: invalid log format %q", common.ErrInvalidConfig, c.Logging.Format)
	}
	return nil
}

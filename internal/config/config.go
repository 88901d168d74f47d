package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Storage backends selectable with STORAGE.
const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

// Config holds the application configuration.
type Config struct {
	DatabaseURL string        `mapstructure:"DATABASE_URL"`
	JWTSecret   string        `mapstructure:"JWT_SECRET"`
	JWTTTL      time.Duration `mapstructure:"JWT_TTL"`
	Port        int           `mapstructure:"PORT"`
	GinMode     string        `mapstructure:"GIN_MODE"`
	Storage     string        `mapstructure:"STORAGE"`

	LogLevel string `mapstructure:"LOG_LEVEL"`
	LogJSON  bool   `mapstructure:"LOG_JSON"`

	StreamHeartbeat    time.Duration `mapstructure:"STREAM_HEARTBEAT"`
	StreamBuffer       int           `mapstructure:"STREAM_BUFFER"`
	StreamInitialCount int           `mapstructure:"STREAM_INITIAL_COUNT"`
	TopicTimeout       time.Duration `mapstructure:"TOPIC_TIMEOUT"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("JWT_TTL", 7*24*time.Hour)
	v.SetDefault("PORT", 8080)
	v.SetDefault("GIN_MODE", "debug")
	v.SetDefault("STORAGE", StoragePostgres)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_JSON", false)
	v.SetDefault("STREAM_HEARTBEAT", 10*time.Second)
	v.SetDefault("STREAM_BUFFER", 64)
	v.SetDefault("STREAM_INITIAL_COUNT", 100)
	v.SetDefault("TOPIC_TIMEOUT", 5*time.Second)
}

// LoadConfig loads the configuration from a .env file and environment variables.
// Each dir is searched for the .env file; the working directory is used when
// none is given.
func LoadConfig(dirs ...string) (*Config, error) {
	v := viper.New()
	if len(dirs) == 0 {
		dirs = []string{"."}
	}
	for _, d := range dirs {
		v.AddConfigPath(d)
	}
	v.SetConfigName(".env")
	v.SetConfigType("env")
	setDefaults(v)

	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading .env: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports settings the server cannot start with.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET must be set")
	}
	switch c.Storage {
	case StoragePostgres:
		if c.DatabaseURL == "" {
			return errors.New("DATABASE_URL must be set when STORAGE=postgres")
		}
	case StorageMemory:
	default:
		return fmt.Errorf("unknown STORAGE %q", c.Storage)
	}
	if c.StreamHeartbeat <= 0 {
		return errors.New("STREAM_HEARTBEAT must be positive")
	}
	if c.StreamBuffer < 2 {
		return errors.New("STREAM_BUFFER must be at least 2")
	}
	if c.StreamInitialCount <= 0 {
		return errors.New("STREAM_INITIAL_COUNT must be positive")
	}
	return nil
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

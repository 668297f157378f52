package config

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"

	"github.com/usermgmt/admin-console/internal/pkg/validation"
)

// Store drivers.
const (
	StoreMemory = "memory"
	StoreFile   = "file"
	StoreRedis  = "redis"
	StoreMongo  = "mongo"
)

type Config struct {
	Env      string `env:"CONSOLE_ENV, default=development"`
	LogLevel string `env:"LOG_LEVEL,   default=info"`
	Addr     string `env:"CONSOLE_ADDR, default=:8080" validate:"required"`

	API   APIConfig
	Store StoreConfig
	Redis RedisConfig
	Mongo MongoConfig
}

// APIConfig points at the user-management backend.
type APIConfig struct {
	URL         string        `env:"API_URL,      default=http://localhost:8081" validate:"required,url"`
	Timeout     time.Duration `env:"API_TIMEOUT,  default=30s"                   validate:"gt=0"`
	TokenHeader string        `env:"TOKEN_HEADER, default=Jwt-Token"             validate:"required"`
}

type StoreConfig struct {
	Driver string `env:"STORE_DRIVER, default=file" validate:"oneof=memory file redis mongo"`
	Path   string `env:"STORE_PATH,   default=.console-session.json"`
	Secret string `env:"STORE_SECRET"`
}

type RedisConfig struct {
	Addr   string `env:"REDIS_ADDR,   default=localhost:6379"`
	DB     int    `env:"REDIS_DB,     default=0"`
	Prefix string `env:"REDIS_PREFIX, default=console:"`
}

type MongoConfig struct {
	URI        string `env:"MONGO_URI,        default=mongodb://localhost:27017"`
	Database   string `env:"MONGO_DB,         default=user_console"`
	Collection string `env:"MONGO_COLLECTION, default=session_store"`
}

// Load reads configuration from environment variables using go-envconfig
// and validates the result.
func Load(ctx context.Context) (*Config, error) {
	return LoadFrom(ctx, envconfig.OsLookuper())
}

// LoadFrom is Load over an arbitrary variable source.
func LoadFrom(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	cfg.API.URL = strings.TrimRight(cfg.API.URL, "/")
	cfg.Store.Driver = strings.ToLower(cfg.Store.Driver)

	if err := validation.Struct(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if cfg.Store.Driver == StoreFile && cfg.Store.Path == "" {
		return nil, fmt.Errorf("config: STORE_PATH is required for the file store")
	}
	return &cfg, nil
}

// IsDevelopment reports whether logs should be human readable.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development" || c.Env == "dev" || c.Env == "local"
}

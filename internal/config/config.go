// Package config loads service configuration from defaults, an optional
// config.yaml, a .env file and the environment, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DefaultJWTSecret is only acceptable outside production.
const DefaultJWTSecret = "dev-secret-change-me-please"

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	App       AppConfig
	Log       LogConfig
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Auth      AuthConfig
	Cache     CacheConfig
	Cart      CartConfig
	RateLimit RateLimitConfig
	Storage   StorageConfig
}

type AppConfig struct {
	Env string
}

type LogConfig struct {
	Level string
}

type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	CORSOrigins  []string
}

type DatabaseConfig struct {
	URL           string
	Migrate       bool
	NotifyChannel string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type AuthConfig struct {
	JWTSecret  string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// CacheConfig selects the local cache backend: badger, redis or memory.
// An empty Path keeps badger in memory.
type CacheConfig struct {
	Driver string
	Path   string
	TTL    time.Duration
}

type CartConfig struct {
	StockCheck  string
	SessionIdle time.Duration
}

type RateLimitConfig struct {
	RPS   float64
	Burst int
}

// StorageConfig selects postgres or memory repositories.
type StorageConfig struct {
	Driver string
}

var (
	ErrDefaultSecretInProduction = errors.New("auth.jwt_secret must be set in production")
	ErrUnknownDriver             = errors.New("unknown driver")
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.env", EnvDevelopment)
	v.SetDefault("log.level", "info")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "0s")
	v.SetDefault("server.idle_timeout", "60s")
	v.SetDefault("server.cors_origins", "*")
	v.SetDefault("database.url", "")
	v.SetDefault("database.migrate", true)
	v.SetDefault("database.notify_channel", "shop_changes")
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("auth.jwt_secret", DefaultJWTSecret)
	v.SetDefault("auth.access_ttl", "15m")
	v.SetDefault("auth.refresh_ttl", "720h")
	v.SetDefault("cache.driver", "badger")
	v.SetDefault("cache.path", "")
	v.SetDefault("cache.ttl", "24h")
	v.SetDefault("cart.stock_check", "remaining")
	v.SetDefault("cart.session_idle", "30m")
	v.SetDefault("ratelimit.rps", 10.0)
	v.SetDefault("ratelimit.burst", 20)
	v.SetDefault("storage.driver", "memory")
}

// Load reads configuration. envFile may be empty; a missing file is ignored.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		_ = godotenv.Load(envFile)
	}

	v := viper.New()
	setDefaults(v)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	cfg := &Config{
		App: AppConfig{Env: strings.ToLower(v.GetString("app.env"))},
		Log: LogConfig{Level: v.GetString("log.level")},
		Server: ServerConfig{
			Port:         v.GetString("server.port"),
			ReadTimeout:  v.GetDuration("server.read_timeout"),
			WriteTimeout: v.GetDuration("server.write_timeout"),
			IdleTimeout:  v.GetDuration("server.idle_timeout"),
			CORSOrigins:  splitList(v.GetString("server.cors_origins")),
		},
		Database: DatabaseConfig{
			URL:           v.GetString("database.url"),
			Migrate:       v.GetBool("database.migrate"),
			NotifyChannel: v.GetString("database.notify_channel"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("redis.addr"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Auth: AuthConfig{
			JWTSecret:  v.GetString("auth.jwt_secret"),
			AccessTTL:  v.GetDuration("auth.access_ttl"),
			RefreshTTL: v.GetDuration("auth.refresh_ttl"),
		},
		Cache: CacheConfig{
			Driver: strings.ToLower(v.GetString("cache.driver")),
			Path:   v.GetString("cache.path"),
			TTL:    v.GetDuration("cache.ttl"),
		},
		Cart: CartConfig{
			StockCheck:  v.GetString("cart.stock_check"),
			SessionIdle: v.GetDuration("cart.session_idle"),
		},
		RateLimit: RateLimitConfig{
			RPS:   v.GetFloat64("ratelimit.rps"),
			Burst: v.GetInt("ratelimit.burst"),
		},
		Storage: StorageConfig{Driver: strings.ToLower(v.GetString("storage.driver"))},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	if c.IsProduction() && c.Auth.JWTSecret == DefaultJWTSecret {
		return ErrDefaultSecretInProduction
	}
	switch c.Storage.Driver {
	case "memory":
	case "postgres":
		if c.Database.URL == "" {
			return errors.New("database.url is required for the postgres storage driver")
		}
	default:
		return fmt.Errorf("%w: storage.driver %q", ErrUnknownDriver, c.Storage.Driver)
	}
	switch c.Cache.Driver {
	case "badger", "memory":
	case "redis":
		if c.Redis.Addr == "" {
			return errors.New("redis.addr is required for the redis cache driver")
		}
	default:
		return fmt.Errorf("%w: cache.driver %q", ErrUnknownDriver, c.Cache.Driver)
	}
	if c.Auth.AccessTTL <= 0 || c.Auth.RefreshTTL <= 0 {
		return errors.New("auth token lifetimes must be positive")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.App.Env == EnvProduction
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return ":" + c.Server.Port
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

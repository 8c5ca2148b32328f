package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/dshills/poaudit/internal/logger"
	"github.com/dshills/poaudit/internal/policy"
)

// EnvPrefix prefixes every environment override, e.g. POAUDIT_REDIS_URL.
const EnvPrefix = "POAUDIT"

// Config is the process configuration shared by the CLI and the server.
type Config struct {
	LogLevel    string         `mapstructure:"log_level"`
	Policy      string         `mapstructure:"policy"`
	CatalogFile string         `mapstructure:"catalog_file"`
	ContextFile string         `mapstructure:"context_file"`
	Server      ServerConfig   `mapstructure:"server"`
	Postgres    PostgresConfig `mapstructure:"postgres"`
	Redis       RedisConfig    `mapstructure:"redis"`
}

// ServerConfig configures the HTTP adapter.
type ServerConfig struct {
	Addr         string        `mapstructure:"addr"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// PostgresConfig configures the database context source. An empty DSN
// disables it.
type PostgresConfig struct {
	DSN         string        `mapstructure:"dsn"`
	LoadTimeout time.Duration `mapstructure:"load_timeout"`
}

// RedisConfig configures the context cache. An empty URL disables it.
type RedisConfig struct {
	URL string        `mapstructure:"url"`
	Key string        `mapstructure:"key"`
	TTL time.Duration `mapstructure:"ttl"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "info")
	v.SetDefault("policy", "standard")
	v.SetDefault("catalog_file", "")
	v.SetDefault("context_file", "")
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 10*time.Second)
	v.SetDefault("postgres.dsn", "")
	v.SetDefault("postgres.load_timeout", 5*time.Second)
	v.SetDefault("redis.url", "")
	v.SetDefault("redis.key", "poaudit:context")
	v.SetDefault("redis.ttl", 5*time.Minute)
}

// Load reads configuration from an optional YAML file and POAUDIT_*
// environment variables. Environment values win over the file.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config failed: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config failed: %w", err)
	}

	return &cfg, nil
}

// Validate checks values that would otherwise fail late.
func (c *Config) Validate() error {
	if !logger.ValidLevel(c.LogLevel) {
		return fmt.Errorf("log_level %q must be one of debug, info, warn, error", c.LogLevel)
	}
	if _, err := policy.Get(c.Policy); err != nil {
		return err
	}
	if c.Server.ReadTimeout <= 0 || c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server timeouts must be positive")
	}
	if c.Postgres.DSN != "" && c.Postgres.LoadTimeout <= 0 {
		return fmt.Errorf("postgres.load_timeout must be positive")
	}
	if c.Redis.URL != "" {
		if c.Postgres.DSN == "" {
			return fmt.Errorf("redis.url requires postgres.dsn: the cache fronts the database source")
		}
		if c.Redis.Key == "" {
			return fmt.Errorf("redis.key is required")
		}
		if c.Redis.TTL <= 0 {
			return fmt.Errorf("redis.ttl must be positive")
		}
	}
	return nil
}

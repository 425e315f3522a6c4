package config

import (
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the gateway.
type Config struct {
	Server   ServerConfig
	Upstream UpstreamConfig
	Redis    RedisConfig
}

type ServerConfig struct {
	Port         int           `mapstructure:"PORT"`
	ReadTimeout  time.Duration `mapstructure:"READ_TIMEOUT"`
	WriteTimeout time.Duration `mapstructure:"WRITE_TIMEOUT"`
	RateLimit    int           `mapstructure:"RATE_LIMIT"`
	GinMode      string        `mapstructure:"GIN_MODE"`
}

type UpstreamConfig struct {
	// BaseURL is the upstream CAD API root, e.g. "https://cad.onshape.com/api".
	BaseURL string        `mapstructure:"API_URL"`
	Timeout time.Duration `mapstructure:"UPSTREAM_TIMEOUT"`
}

type RedisConfig struct {
	// URL selects the shared Redis job store; empty keeps the default
	// in-process store.
	URL string `mapstructure:"REDIS_URL"`
}

// Load reads configuration from environment variables and .env file.
func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	// Set defaults
	viper.SetDefault("PORT", 8080)
	viper.SetDefault("READ_TIMEOUT", "10s")
	viper.SetDefault("WRITE_TIMEOUT", "60s")
	viper.SetDefault("RATE_LIMIT", 100)
	viper.SetDefault("GIN_MODE", "debug")
	viper.SetDefault("API_URL", "https://cad.onshape.com/api")
	viper.SetDefault("UPSTREAM_TIMEOUT", "30s")
	viper.SetDefault("REDIS_URL", "")

	// Attempt to read .env file (non-fatal if missing)
	_ = viper.ReadInConfig()

	cfg := &Config{}
	cfg.Server.Port = viper.GetInt("PORT")
	cfg.Server.ReadTimeout = viper.GetDuration("READ_TIMEOUT")
	cfg.Server.WriteTimeout = viper.GetDuration("WRITE_TIMEOUT")
	cfg.Server.RateLimit = viper.GetInt("RATE_LIMIT")
	cfg.Server.GinMode = viper.GetString("GIN_MODE")
	cfg.Upstream.BaseURL = viper.GetString("API_URL")
	cfg.Upstream.Timeout = viper.GetDuration("UPSTREAM_TIMEOUT")
	cfg.Redis.URL = viper.GetString("REDIS_URL")

	return cfg, nil
}

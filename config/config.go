package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the service
type Config struct {
	General   GeneralConfig   `mapstructure:"general"`
	Server    ServerConfig    `mapstructure:"server"`
	Session   SessionConfig   `mapstructure:"session"`
	Search    SearchConfig    `mapstructure:"search"`
	Fetch     FetchConfig     `mapstructure:"fetch"`
	LLM       LLMConfig       `mapstructure:"llm"`
	Reports   ReportsConfig   `mapstructure:"reports"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// GeneralConfig contains general application settings
type GeneralConfig struct {
	Debug    bool   `mapstructure:"debug"`
	LogLevel string `mapstructure:"log_level"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Address string `mapstructure:"address"`
}

// SessionConfig controls guest session issuance and rate limiting
type SessionConfig struct {
	Store      string        `mapstructure:"store"` // memory, redis
	TTL        time.Duration `mapstructure:"ttl"`
	RateLimit  int           `mapstructure:"rate_limit"`
	RateWindow time.Duration `mapstructure:"rate_window"`
}

// SearchConfig selects and tunes the news search provider
type SearchConfig struct {
	Provider   string        `mapstructure:"provider"` // googlenews, brave
	APIKey     string        `mapstructure:"api_key"`
	MaxResults int           `mapstructure:"max_results"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

// FetchConfig tunes the page fetcher
type FetchConfig struct {
	Type       string        `mapstructure:"type"` // http, chromedp
	Timeout    time.Duration `mapstructure:"timeout"`
	MaxTargets int           `mapstructure:"max_targets"`
	MaxChars   int           `mapstructure:"max_chars"`
}

// LLMConfig contains the LLM provider configuration
type LLMConfig struct {
	Provider    string        `mapstructure:"provider"` // openai
	APIKey      string        `mapstructure:"api_key"`
	Model       string        `mapstructure:"model"`
	Temperature float64       `mapstructure:"temperature"`
	MaxTokens   int           `mapstructure:"max_tokens"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// ReportsConfig controls best-effort report persistence. An empty Dir
// disables the file write entirely.
type ReportsConfig struct {
	Dir string `mapstructure:"dir"`
}

// RedisConfig contains redis connection settings for the redis session store
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// TelemetryConfig contains monitoring settings
type TelemetryConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// LoadConfig loads config from file, with environment overrides (TRADEOPS_*)
func LoadConfig(path string) *Config {
	viper.SetConfigName("config")
	viper.SetConfigType("json")

	// env-only keys need a default registered or AutomaticEnv will not
	// surface them through Unmarshal
	viper.SetDefault("general.debug", false)
	viper.SetDefault("search.api_key", "")
	viper.SetDefault("llm.api_key", "")
	viper.SetDefault("reports.dir", "")
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)

	viper.SetDefault("general.log_level", "info")
	viper.SetDefault("server.address", ":10010")
	viper.SetDefault("session.store", "memory")
	viper.SetDefault("session.ttl", time.Hour)
	viper.SetDefault("session.rate_limit", 1)
	viper.SetDefault("session.rate_window", 60*time.Second)
	viper.SetDefault("search.provider", "googlenews")
	viper.SetDefault("search.max_results", 6)
	viper.SetDefault("search.timeout", 10*time.Second)
	viper.SetDefault("fetch.type", "http")
	viper.SetDefault("fetch.timeout", 10*time.Second)
	viper.SetDefault("fetch.max_targets", 5)
	viper.SetDefault("fetch.max_chars", 2000)
	viper.SetDefault("llm.provider", "openai")
	viper.SetDefault("llm.model", "gpt-4o-mini")
	viper.SetDefault("llm.temperature", 0.2)
	viper.SetDefault("llm.max_tokens", 1200)
	viper.SetDefault("llm.timeout", 30*time.Second)
	viper.SetDefault("redis.addr", "localhost:6379")
	viper.SetDefault("telemetry.enabled", true)

	if path == "" {
		viper.AddConfigPath("./config")
		viper.AddConfigPath(".")
		exe, _ := os.Executable()
		exeDir := filepath.Dir(exe)
		viper.AddConfigPath(exeDir)
		viper.AddConfigPath(filepath.Join(exeDir, ".."))
	} else {
		viper.SetConfigFile(path)
	}

	viper.SetEnvPrefix("TRADEOPS")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		// every key has a default, so a missing file is not fatal
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			panic(fmt.Errorf("fatal error config file: %w", err))
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		panic(fmt.Errorf("fatal error unmarshalling config: %w", err))
	}
	return &cfg
}

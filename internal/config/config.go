// Package config loads service configuration from defaults, an optional
// YAML file, and DEEP_RESEARCH_-prefixed environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config carries every tunable the service reads at startup. Per-request
// inputs (topic, credentials, model overrides) never live here.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Pipeline PipelineConfig `mapstructure:"pipeline"`
	Planner  PlannerConfig  `mapstructure:"planner"`
	Search   SearchConfig   `mapstructure:"search"`
	Defaults DefaultsConfig `mapstructure:"defaults"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
	// RequestTimeout caps the total duration of one research stream.
	// Expiry is a transport-level failure, not a pipeline one.
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

type PipelineConfig struct {
	// StreamDelay is the pause applied after each emitted event so the
	// consuming client is not overwhelmed.
	StreamDelay time.Duration `mapstructure:"stream_delay"`
}

type PlannerConfig struct {
	MaxAttempts int           `mapstructure:"max_attempts"`
	RetryDelay  time.Duration `mapstructure:"retry_delay"`
}

type SearchConfig struct {
	MaxResults int `mapstructure:"max_results"`
}

type DefaultsConfig struct {
	Provider       string `mapstructure:"provider"`
	ThinkingModel  string `mapstructure:"thinking_model"`
	TaskModel      string `mapstructure:"task_model"`
	SearchProvider string `mapstructure:"search_provider"`
}

type LogConfig struct {
	Format string `mapstructure:"format"`
	Level  string `mapstructure:"level"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.request_timeout", 120*time.Second)
	v.SetDefault("pipeline.stream_delay", 100*time.Millisecond)
	v.SetDefault("planner.max_attempts", 3)
	v.SetDefault("planner.retry_delay", 20*time.Second)
	v.SetDefault("search.max_results", 5)
	v.SetDefault("defaults.provider", "google")
	v.SetDefault("defaults.thinking_model", "gemini-1.5-flash")
	v.SetDefault("defaults.task_model", "gemini-1.5-flash")
	v.SetDefault("defaults.search_provider", "tavily")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.level", "info")
}

// Load reads configuration. cfgFile may be empty, in which case only
// defaults and environment variables apply. A missing default config file
// is not an error; an unreadable explicit one is.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("DEEP_RESEARCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", cfgFile, err)
		}
	} else {
		v.SetConfigName("deep-research")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/deep-research")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

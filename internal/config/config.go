// Package config loads server configuration from a YAML file, the
// environment, and defaults, in that order of increasing precedence for the
// environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the full server configuration.
type Config struct {
	Server struct {
		Addr string `mapstructure:"addr"`
	} `mapstructure:"server"`

	LLM struct {
		BaseURL     string  `mapstructure:"base_url"`
		APIKey      string  `mapstructure:"api_key"`
		Model       string  `mapstructure:"model"`
		MaxTokens   int     `mapstructure:"max_tokens"`
		Temperature float64 `mapstructure:"temperature"`
	} `mapstructure:"llm"`

	Database struct {
		DSN string `mapstructure:"dsn"`
	} `mapstructure:"database"`

	Geocoding struct {
		APIKey string `mapstructure:"api_key"`
	} `mapstructure:"geocoding"`

	Chat struct {
		StreamTimeout time.Duration `mapstructure:"stream_timeout"`
		ToolTimeout   time.Duration `mapstructure:"tool_timeout"`
	} `mapstructure:"chat"`

	OptionsFile string `mapstructure:"options_file"`
}

// Load reads configuration. path may be empty, in which case the loader
// looks for schoolfinder.yaml in the working directory and /etc/schoolfinder
// and is content with finding nothing. String values may embed ${VAR}
// references, expanded from the environment after parsing.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("llm.base_url", "https://api.openai.com/v1")
	v.SetDefault("llm.model", "gpt-4o")
	v.SetDefault("llm.max_tokens", 2048)
	v.SetDefault("llm.temperature", 0.7)
	v.SetDefault("chat.stream_timeout", 2*time.Minute)
	v.SetDefault("chat.tool_timeout", 30*time.Second)

	v.SetEnvPrefix("SCHOOLFINDER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("schoolfinder")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/schoolfinder")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("reading config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	cfg.expandEnv()
	return &cfg, nil
}

// expandEnv substitutes ${VAR} references in the credential-bearing fields,
// so secrets can live in the environment while the file stays committable.
func (c *Config) expandEnv() {
	expand := func(s *string) {
		*s = os.Expand(*s, func(key string) string {
			return os.Getenv(key)
		})
	}
	expand(&c.LLM.BaseURL)
	expand(&c.LLM.APIKey)
	expand(&c.Database.DSN)
	expand(&c.Geocoding.APIKey)
}

// Validate reports missing required settings for the serve path.
func (c *Config) Validate() error {
	if c.LLM.APIKey == "" {
		return errors.New("llm.api_key is required")
	}
	if c.Database.DSN == "" {
		return errors.New("database.dsn is required")
	}
	if c.Geocoding.APIKey == "" {
		return errors.New("geocoding.api_key is required")
	}
	return nil
}

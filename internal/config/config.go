package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// The values are read by Viper from a config file or environment variables.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	Assistant AssistantConfig `mapstructure:"assistant"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Log       LogConfig       `mapstructure:"log"`
}

type ServerConfig struct {
	Address string `mapstructure:"address"`
}

type DatabaseConfig struct {
	URI  string `mapstructure:"uri"`
	Name string `mapstructure:"name"`
}

// JWTConfig defines JWT specific configuration.
type JWTConfig struct {
	Secret     string        `mapstructure:"secret"`
	Expiration time.Duration `mapstructure:"expiration"`
}

// AssistantConfig configures the text-generation backend. Timeout bounds the
// whole generation round-trip; exceeding it is a failure, never a retry.
type AssistantConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	APIKey  string        `mapstructure:"api_key"`
	Model   string        `mapstructure:"model"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// CacheConfig tunes the client session cache behavior.
type CacheConfig struct {
	StalenessWindow time.Duration `mapstructure:"staleness_window"`
	AutosaveDelay   time.Duration `mapstructure:"autosave_delay"`
}

type LogConfig struct {
	Mode string `mapstructure:"mode"`
}

const (
	minAssistantTimeout = 20 * time.Second
	maxAssistantTimeout = 60 * time.Second
)

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.AutomaticEnv()
	// Nested keys map to env vars: database.uri -> DATABASE_URI
	viper.SetEnvKeyReplacer(strings.NewReplacer(`.`, `_`))

	viper.SetDefault("server.address", ":8080")
	viper.SetDefault("database.uri", "mongodb://localhost:27017")
	viper.SetDefault("database.name", "helf")
	viper.SetDefault("jwt.expiration", "24h")
	viper.SetDefault("assistant.base_url", "https://api.openai.com/v1")
	viper.SetDefault("assistant.model", "gpt-4o-mini")
	viper.SetDefault("assistant.timeout", "30s")
	viper.SetDefault("cache.staleness_window", "60s")
	viper.SetDefault("cache.autosave_delay", "3s")
	viper.SetDefault("log.mode", "dev")

	err = viper.ReadInConfig()
	// A missing config file is fine; env vars and defaults still apply.
	if _, ok := err.(viper.ConfigFileNotFoundError); ok {
		err = nil
	} else if err != nil {
		return
	}

	err = viper.Unmarshal(&config)
	if err != nil {
		return
	}

	if config.Assistant.Timeout < minAssistantTimeout || config.Assistant.Timeout > maxAssistantTimeout {
		return config, fmt.Errorf("assistant.timeout %s outside allowed range [%s, %s]",
			config.Assistant.Timeout, minAssistantTimeout, maxAssistantTimeout)
	}

	return config, nil
}

// Package config provides configuration loading for the vendora CLI and TUI.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// DefaultAPIURL is used when neither the config file nor the environment set one.
const DefaultAPIURL = "http://localhost:5000/api"

// Config holds all configuration for the application.
type Config struct {
	API     APIConfig     `mapstructure:"api"`
	Session SessionConfig `mapstructure:"session"`
	Log     LogConfig     `mapstructure:"log"`
	UI      UIConfig      `mapstructure:"ui"`

	// Token overrides the stored session token (VENDORA_TOKEN).
	Token string `mapstructure:"token"`
}

// APIConfig holds backend connection settings.
type APIConfig struct {
	URL     string        `mapstructure:"url" validate:"required,url"`
	Timeout time.Duration `mapstructure:"timeout" validate:"gt=0"`
}

// SessionConfig holds session persistence settings.
type SessionConfig struct {
	File    string        `mapstructure:"file" validate:"required"`
	MaxIdle time.Duration `mapstructure:"max_idle" validate:"gte=0"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level string `mapstructure:"level" validate:"oneof=trace debug info warn warning error"`
	File  string `mapstructure:"file"`
}

// UIConfig holds terminal UI settings.
type UIConfig struct {
	SearchDebounce time.Duration `mapstructure:"search_debounce" validate:"gte=0"`
	PageSize       int           `mapstructure:"page_size" validate:"min=1,max=100"`
}

// Dir returns ~/.vendora, the home of the config, session and log files.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("config.Dir: %w", err)
	}
	return filepath.Join(home, ".vendora"), nil
}

// Load reads configuration from file and environment variables. An empty
// path searches ~/.vendora/config.yaml; a missing file is not an error.
func Load(path string) (*Config, error) {
	dir, err := Dir()
	if err != nil {
		return nil, err
	}

	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(dir)
	}

	v.SetEnvPrefix("VENDORA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v, dir)

	// The web dashboard's variable is honored when VENDORA_API_URL is unset.
	_ = v.BindEnv("api.url", "VENDORA_API_URL", "VITE_API_BASE_URL")
	_ = v.BindEnv("token", "VENDORA_TOKEN")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !(path == "" && os.IsNotExist(err)) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.API.URL = strings.TrimRight(strings.TrimSpace(cfg.API.URL), "/")
	cfg.Log.Level = strings.ToLower(cfg.Log.Level)

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// setDefaults configures default values for all settings.
func setDefaults(v *viper.Viper, dir string) {
	v.SetDefault("api.url", DefaultAPIURL)
	v.SetDefault("api.timeout", "30s")

	v.SetDefault("session.file", filepath.Join(dir, "session.json"))
	v.SetDefault("session.max_idle", "168h")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", filepath.Join(dir, "vendora.log"))

	v.SetDefault("ui.search_debounce", "300ms")
	v.SetDefault("ui.page_size", 10)
}

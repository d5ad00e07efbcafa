package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Service ServiceConfig `mapstructure:"service"`
	Log     LogConfig     `mapstructure:"log"`
	UI      UIConfig      `mapstructure:"ui"`
}

// ServiceConfig points at the inventory/forecasting service.
type ServiceConfig struct {
	BaseURL    string `mapstructure:"base_url"`
	TimeoutSec int    `mapstructure:"timeout_sec"`
}

// LogConfig holds logging settings. The TUI owns stdout, so logs go to a file.
type LogConfig struct {
	Path  string `mapstructure:"path"`
	Level string `mapstructure:"level"`
}

// UIConfig holds dashboard defaults.
type UIConfig struct {
	HistoryDays       int `mapstructure:"history_days"`
	ForecastDays      int `mapstructure:"forecast_days"`
	AutoReturnDelayMS int `mapstructure:"auto_return_delay_ms"`
}

// Load reads configuration from file and env. Env var overrides use prefix STOCKDECK_.
func Load() (Config, error) {
	v := viper.New()

	// default values
	v.SetDefault("service.base_url", "http://127.0.0.1:8000")
	v.SetDefault("service.timeout_sec", 15)
	v.SetDefault("log.path", filepath.Join(os.Getenv("HOME"), ".local", "state", "stockdeck", "stockdeck.log"))
	v.SetDefault("log.level", "info")
	v.SetDefault("ui.history_days", 30)
	v.SetDefault("ui.forecast_days", 7)
	v.SetDefault("ui.auto_return_delay_ms", 1500)

	v.SetConfigType("toml")

	cfgPath := os.Getenv("STOCKDECK_CONFIG")
	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.AddConfigPath(filepath.Join(os.Getenv("HOME"), ".config", "stockdeck"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("STOCKDECK")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// read config file if present
	_ = v.ReadInConfig()

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c Config) validate() error {
	if strings.TrimSpace(c.Service.BaseURL) == "" {
		return fmt.Errorf("service.base_url must not be empty")
	}
	if c.Service.TimeoutSec <= 0 {
		return fmt.Errorf("service.timeout_sec must be positive, got %d", c.Service.TimeoutSec)
	}
	if !ValidHistoryWindow(c.UI.HistoryDays) {
		return fmt.Errorf("ui.history_days must be one of 7, 30, 90, got %d", c.UI.HistoryDays)
	}
	if !ValidForecastWindow(c.UI.ForecastDays) {
		return fmt.Errorf("ui.forecast_days must be one of 7, 14, 30, got %d", c.UI.ForecastDays)
	}
	return nil
}

// ValidHistoryWindow reports whether days is a selectable history window.
func ValidHistoryWindow(days int) bool {
	return days == 7 || days == 30 || days == 90
}

// ValidForecastWindow reports whether days is a selectable forecast window.
func ValidForecastWindow(days int) bool {
	return days == 7 || days == 14 || days == 30
}

// HistoryWindows lists the selectable history window sizes in display order.
func HistoryWindows() []int { return []int{7, 30, 90} }

// ForecastWindows lists the selectable forecast window sizes.
func ForecastWindows() []int { return []int{7, 14, 30} }

// Package config loads the tracker's settings from an optional yaml file and the environment
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/damon-houk/freight-ops-tracker/internal/infrastructure/logger"
	"gopkg.in/yaml.v3"
)

// Env keys
const (
	EnvConfigPath     = "TRACKER_CONFIG"
	EnvAddr           = "TRACKER_ADDR"
	EnvDataDir        = "TRACKER_DATA_DIR"
	EnvLogLevel       = "TRACKER_LOG_LEVEL"
	EnvTRMBaseURL     = "TRACKER_TRM_BASE_URL"
	EnvTRMTimeout     = "TRACKER_TRM_TIMEOUT"
	EnvAlignOverrides = "TRACKER_ALIGN_OVERRIDES"
)

// Config is the full server configuration
type Config struct {
	Addr     string        `yaml:"addr"`
	DataDir  string        `yaml:"data_dir"`
	LogLevel string        `yaml:"log_level"`
	TRM      TRMConfig     `yaml:"trm"`
	Advisor  AdvisorConfig `yaml:"advisor"`
	Server   ServerConfig  `yaml:"server"`
}

// TRMConfig configures the official rate source
type TRMConfig struct {
	BaseURL    string        `yaml:"base_url"`
	Timeout    time.Duration `yaml:"timeout"`
	MaxRetries int           `yaml:"max_retries"`
	Backoff    time.Duration `yaml:"backoff"`
}

// AdvisorConfig configures the invoicing-day advisor
type AdvisorConfig struct {
	// AlignOverrides applies manual TRM values only to the calendar days they were typed for
	AlignOverrides bool `yaml:"align_overrides"`
}

// ServerConfig holds the HTTP server timeouts
type ServerConfig struct {
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// Load builds the configuration from the environment, then overlays the yaml
// file named by TRACKER_CONFIG when set
func Load() (Config, error) {
	cfg := Config{
		Addr:     getenvDefault(EnvAddr, ":8080"),
		DataDir:  getenvDefault(EnvDataDir, "data"),
		LogLevel: getenvDefault(EnvLogLevel, "info"),
		TRM: TRMConfig{
			BaseURL:    getenvDefault(EnvTRMBaseURL, "https://www.datos.gov.co"),
			Timeout:    getenvDurationDefault(EnvTRMTimeout, 10*time.Second),
			MaxRetries: 3,
			Backoff:    time.Second,
		},
		Advisor: AdvisorConfig{
			AlignOverrides: getenvBoolDefault(EnvAlignOverrides, false),
		},
		Server: ServerConfig{
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
	}

	if path := os.Getenv(EnvConfigPath); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	return cfg, cfg.Validate()
}

// Validate reports every invalid setting at once
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Addr) == "" {
		errs = append(errs, errors.New("addr is required"))
	}
	if strings.TrimSpace(c.DataDir) == "" {
		errs = append(errs, errors.New("data_dir is required"))
	}
	if _, err := logger.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	if !strings.HasPrefix(c.TRM.BaseURL, "http://") && !strings.HasPrefix(c.TRM.BaseURL, "https://") {
		errs = append(errs, fmt.Errorf("trm.base_url must be an http(s) URL, got %q", c.TRM.BaseURL))
	}
	if c.TRM.Timeout <= 0 {
		errs = append(errs, errors.New("trm.timeout must be positive"))
	}
	if c.TRM.MaxRetries < 1 {
		errs = append(errs, errors.New("trm.max_retries must be at least 1"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// Level returns the parsed log level; Validate has already rejected bad values
func (c Config) Level() logger.Level {
	l, err := logger.ParseLevel(c.LogLevel)
	if err != nil {
		return logger.InfoLevel
	}
	return l
}

func getenvDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvDurationDefault(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getenvBoolDefault(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config is the chronicled service configuration. Values come from the YAML
// file, then environment overrides, then flags.
type Config struct {
	Addr           string  `yaml:"addr"`
	StaticDir      string  `yaml:"static_dir"`
	CacheDir       string  `yaml:"cache_dir"`
	Model          string  `yaml:"model"`
	LogLevel       string  `yaml:"log_level"`
	RateLimit      float64 `yaml:"rate_limit"`
	RateBurst      int     `yaml:"rate_burst"`
	MaxUploadBytes int64   `yaml:"max_upload_bytes"`

	// APIKey is environment-only, never read from the config file.
	APIKey string `yaml:"-"`
}

func defaultConfig() Config {
	return Config{
		Addr:           ":8000",
		StaticDir:      "static",
		CacheDir:       "data/results",
		Model:          "gpt-5-mini",
		LogLevel:       "info",
		RateLimit:      5,
		RateBurst:      10,
		MaxUploadBytes: 32 << 20,
	}
}

// loadConfig reads the optional YAML file and applies CHRONICLED_* env
// overrides on top of the defaults.
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()

	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("loadConfig: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("loadConfig: parse %s: %w", path, err)
		}
	}

	if v := os.Getenv("CHRONICLED_ADDR"); v != "" {
		cfg.Addr = v
	}
	if v := os.Getenv("CHRONICLED_STATIC_DIR"); v != "" {
		cfg.StaticDir = v
	}
	if v := os.Getenv("CHRONICLED_CACHE_DIR"); v != "" {
		cfg.CacheDir = v
	}
	if v := os.Getenv("CHRONICLED_MODEL"); v != "" {
		cfg.Model = v
	}
	if v := os.Getenv("CHRONICLED_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("CHRONICLED_MAX_UPLOAD_BYTES"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return Config{}, fmt.Errorf("loadConfig: CHRONICLED_MAX_UPLOAD_BYTES: %w", err)
		}
		cfg.MaxUploadBytes = n
	}
	cfg.APIKey = os.Getenv("OPENAI_API_KEY")

	return cfg, nil
}

func (c Config) Validate() error {
	if c.Addr == "" {
		return errors.New("addr must not be empty")
	}
	if c.Model == "" {
		return errors.New("model must not be empty")
	}
	if c.APIKey == "" {
		return errors.New("missing OPENAI_API_KEY")
	}
	if c.RateLimit <= 0 {
		return errors.New("rate_limit must be > 0")
	}
	if c.RateBurst <= 0 {
		return errors.New("rate_burst must be > 0")
	}
	if c.MaxUploadBytes <= 0 {
		return errors.New("max_upload_bytes must be > 0")
	}
	return nil
}

package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the full service configuration. It is built once at startup
// and passed by reference into the endpoint layer and the PDF generator.
type Config struct {
	Server ServerConfig `yaml:"server"`
	Logger LoggerConfig `yaml:"logger"`
	PDF    PDFConfig    `yaml:"pdf"`
	Cache  CacheConfig  `yaml:"cache"`
	Limits LimitsConfig `yaml:"limits"`
}

type ServerConfig struct {
	Host    string `yaml:"host"`
	Port    string `yaml:"port"`
	Prefork bool   `yaml:"prefork"`
}

type LoggerConfig struct {
	File       string `yaml:"file"`
	Level      string `yaml:"level"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

type PDFConfig struct {
	ChromePath         string `yaml:"chrome_path"`
	ChromeNoSandbox    bool   `yaml:"chrome_no_sandbox"`
	ChromeSkipDownload bool   `yaml:"chrome_skip_download"`
	MaxAttempts        int    `yaml:"max_attempts"`
	SettleDelayMS      int    `yaml:"settle_delay_ms"`
	RetryDelayMS       int    `yaml:"retry_delay_ms"`
	TimeoutSecs        int    `yaml:"timeout_secs"`
	MaxConcurrent      int    `yaml:"max_concurrent"`
}

type CacheConfig struct {
	PDFCacheEnabled bool   `yaml:"pdf_cache_enabled"`
	PDFCacheTTLSecs int    `yaml:"pdf_cache_ttl_secs"`
	RedisHost       string `yaml:"redis_host"`
	PDFCacheDB      int    `yaml:"redis_pdf_db"`
}

type LimitsConfig struct {
	MaxBodyBytes int `yaml:"max_body_bytes"`
}

// Defaults returns the baseline configuration used when no config file is
// present. The settle and retry delays are latency heuristics, not
// correctness guarantees; tune them per deployment.
func Defaults() Config {
	return Config{
		Server: ServerConfig{
			Port: ":1234",
		},
		Logger: LoggerConfig{
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 14,
		},
		PDF: PDFConfig{
			MaxAttempts:   2,
			SettleDelayMS: 2000,
			RetryDelayMS:  2000,
			TimeoutSecs:   30,
		},
		Cache: CacheConfig{
			PDFCacheTTLSecs: 24 * 60 * 60,
			RedisHost:       "127.0.0.1:6379",
			PDFCacheDB:      1,
		},
		Limits: LimitsConfig{
			MaxBodyBytes: 50 * 1024 * 1024,
		},
	}
}

// Load reads the YAML config file referenced by CONFIG_PATH (falling back to
// ./config.yaml), applies it over the defaults and then applies environment
// overrides. A missing file is not an error: the defaults are used as-is.
func Load() (Config, error) {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "config.yaml"
	}

	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		}
	} else if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}

	applyEnvOverrides(&cfg)
	normalize(&cfg)
	return cfg, nil
}

// applyEnvOverrides handles the common container env vars.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("PORT"); v != "" {
		cfg.Server.Port = v
	}
	if v := os.Getenv("CHROME_BIN"); v != "" {
		cfg.PDF.ChromePath = v
	}
}

func normalize(cfg *Config) {
	if cfg.Server.Port != "" && !strings.HasPrefix(cfg.Server.Port, ":") {
		cfg.Server.Port = ":" + cfg.Server.Port
	}
	if cfg.PDF.MaxAttempts <= 0 {
		cfg.PDF.MaxAttempts = 2
	}
	if cfg.PDF.TimeoutSecs <= 0 {
		cfg.PDF.TimeoutSecs = 30
	}
	if cfg.Limits.MaxBodyBytes <= 0 {
		cfg.Limits.MaxBodyBytes = 50 * 1024 * 1024
	}
}

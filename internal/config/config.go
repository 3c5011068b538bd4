// Package config holds the desk settings shared by the CLI and the web
// front end, resolved through viper from flags, CONGVAN_* environment
// variables and an optional config file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable name
const EnvPrefix = "CONGVAN"

// Config is the decoded configuration
type Config struct {
	APIURL          string        `mapstructure:"api-url"`
	DebugLevel      string        `mapstructure:"debug-level"`
	Timeout         time.Duration `mapstructure:"timeout"`
	PageSize        int           `mapstructure:"page-size"`
	SearchPageSize  int           `mapstructure:"search-page-size"`
	LoadSize        int           `mapstructure:"load-size"`
	Highlight       time.Duration `mapstructure:"highlight"`
	LogLevel        string        `mapstructure:"log-level"`
	Format          string        `mapstructure:"format"`
	Addr            string        `mapstructure:"addr"`
	SessionTTL      time.Duration `mapstructure:"session-ttl"`
	DownloadWorkers int           `mapstructure:"download-workers"`
}

// Defaults lists every key with its default value
var Defaults = map[string]any{
	"api-url":          "http://localhost:3000/api",
	"debug-level":      "minimal",
	"timeout":          30 * time.Second,
	"page-size":        3,
	"search-page-size": 3,
	"load-size":        1000,
	"highlight":        3 * time.Second,
	"log-level":        "warn",
	"format":           "table",
	"addr":             ":8080",
	"session-ttl":      30 * time.Minute,
	"download-workers": 4,
}

// PageSizes are the page sizes offered by the tables
var PageSizes = []int{3, 25, 50, 100}

// Formats are the accepted CLI output formats
var Formats = []string{"table", "json", "yaml", "csv"}

var logLevels = []string{"debug", "info", "warn", "error"}

// Setup configures v with defaults, environment binding and config file
// discovery. A missing config file is not an error; a malformed one is.
func Setup(v *viper.Viper) error {
	for key, value := range Defaults {
		v.SetDefault(key, value)
	}

	if configFile := os.Getenv(EnvPrefix + "_CONFIG"); configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("congvan")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.congvan")
		v.AddConfigPath("/etc/congvan")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}
	return nil
}

// Load decodes and validates the configuration held by v
func Load(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks value ranges and enumerations
func (c Config) Validate() error {
	u, err := url.Parse(c.APIURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid api-url %q: expected an http(s) URL", c.APIURL)
	}
	if c.DebugLevel == "" {
		return fmt.Errorf("debug-level must not be empty")
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative")
	}
	for name, n := range map[string]int{
		"page-size":        c.PageSize,
		"search-page-size": c.SearchPageSize,
		"load-size":        c.LoadSize,
		"download-workers": c.DownloadWorkers,
	} {
		if n < 1 {
			return fmt.Errorf("%s must be at least 1, got %d", name, n)
		}
	}
	if c.Highlight <= 0 {
		return fmt.Errorf("highlight must be positive")
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("session-ttl must be positive")
	}
	if !contains(logLevels, c.LogLevel) {
		return fmt.Errorf("invalid log-level %q: expected one of %s", c.LogLevel, strings.Join(logLevels, ", "))
	}
	if !contains(Formats, c.Format) {
		return fmt.Errorf("invalid format %q: expected one of %s", c.Format, strings.Join(Formats, ", "))
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

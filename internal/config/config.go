// Package config provides configuration management for the listing scanner.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Defaults for a run without a configuration file.
const (
	DefaultListingURL   = "https://habr.com/ru/articles/"
	DefaultOrigin       = "https://habr.com"
	DefaultBrowser      = "chrome"
	DefaultOS           = "lin"
	DefaultTimeoutSec   = 30
	DefaultBufferSizeKb = 4096
)

// Missing field policies.
const (
	PolicySkip = "skip"
	PolicyFail = "fail"
)

// Output formats.
const (
	FormatText  = "text"
	FormatTable = "table"
	FormatJSON  = "json"
)

// Environment variables read by ApplyEnv.
const (
	EnvSearchWords = "HABRSCAN_SEARCH_WORDS"
	EnvBrowser     = "HABRSCAN_BROWSER"
	EnvOS          = "HABRSCAN_OS"
	EnvLogLevel    = "HABRSCAN_LOG_LEVEL"
	EnvTimeoutSec  = "HABRSCAN_TIMEOUT_SEC"
	EnvURL         = "HABRSCAN_URL"
)

// Configuration validation errors.
var (
	ErrMissingURL        = errors.New("source.url is required")
	ErrInvalidURL        = errors.New("source.url must be an absolute http(s) URL")
	ErrInvalidOrigin     = errors.New("source.origin must be an absolute http(s) URL without a path")
	ErrMissingBrowser    = errors.New("request.browser is required")
	ErrMissingOS         = errors.New("request.os is required")
	ErrInvalidTimeout    = errors.New("request.timeout_sec must be at least 1")
	ErrInvalidBufferSize = errors.New("request.buffer_size_kb must be at least 1")
	ErrInvalidPolicy     = errors.New("extraction.on_missing_field must be 'skip' or 'fail'")
	ErrInvalidFormat     = errors.New("output.format must be one of: text, table, json")
	ErrInvalidLogLevel   = errors.New("logging.level must be one of: debug, info, warn, error")
	ErrInvalidEnvValue   = errors.New("invalid environment value")
)

// Config represents the complete scanner configuration.
type Config struct {
	Scanner ScannerConfig `yaml:"scanner"`
}

// ScannerConfig contains the pipeline settings.
type ScannerConfig struct {
	Source     SourceConfig     `yaml:"source"`
	Request    RequestConfig    `yaml:"request"`
	Search     SearchConfig     `yaml:"search"`
	Extraction ExtractionConfig `yaml:"extraction"`
	Output     OutputConfig     `yaml:"output"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// SourceConfig points at the listing page.
type SourceConfig struct {
	URL    string `yaml:"url"`
	Origin string `yaml:"origin"`
}

// RequestConfig defines how the listing page is requested.
type RequestConfig struct {
	Browser      string `yaml:"browser"`
	OS           string `yaml:"os"`
	TimeoutSec   int    `yaml:"timeout_sec"`
	BufferSizeKb int    `yaml:"buffer_size_kb"`
}

// SearchConfig holds the search words and matching options.
type SearchConfig struct {
	Words               []string `yaml:"words"`
	CaseSensitiveAuthor bool     `yaml:"case_sensitive_author"`
}

// ExtractionConfig defines what happens when a snippet lacks a field.
type ExtractionConfig struct {
	OnMissingField string `yaml:"on_missing_field"`
}

// OutputConfig defines how matches are printed.
type OutputConfig struct {
	Format string `yaml:"format"`
}

// LoggingConfig defines logging behavior.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		Scanner: ScannerConfig{
			Source: SourceConfig{
				URL:    DefaultListingURL,
				Origin: DefaultOrigin,
			},
			Request: RequestConfig{
				Browser:      DefaultBrowser,
				OS:           DefaultOS,
				TimeoutSec:   DefaultTimeoutSec,
				BufferSizeKb: DefaultBufferSizeKb,
			},
			Search: SearchConfig{
				Words:               []string{},
				CaseSensitiveAuthor: true,
			},
			Extraction: ExtractionConfig{OnMissingField: PolicySkip},
			Output:     OutputConfig{Format: FormatText},
			Logging:    LoggingConfig{Level: "info"},
		},
	}
}

// LoadConfig loads configuration from YAML file on top of the defaults.
// The result is not validated; call Validate once every override is applied.
func LoadConfig(filepath string) (*Config, error) {
	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	return cfg, nil
}

// LoadDotEnv loads variables from the given .env files into the process
// environment. Missing files are ignored; existing variables win.
func LoadDotEnv(files ...string) error {
	var existing []string

	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			existing = append(existing, f)
		}
	}

	if len(existing) == 0 {
		return nil
	}

	if err := godotenv.Load(existing...); err != nil {
		return fmt.Errorf("failed to load env file: %w", err)
	}

	return nil
}

// ApplyEnv overrides configuration values from HABRSCAN_* variables.
func (c *Config) ApplyEnv() error {
	if v, ok := os.LookupEnv(EnvSearchWords); ok {
		c.Scanner.Search.Words = SplitWords(v)
	}

	if v := os.Getenv(EnvBrowser); v != "" {
		c.Scanner.Request.Browser = v
	}

	if v := os.Getenv(EnvOS); v != "" {
		c.Scanner.Request.OS = v
	}

	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Scanner.Logging.Level = strings.ToLower(v)
	}

	if v := os.Getenv(EnvURL); v != "" {
		c.Scanner.Source.URL = v
	}

	if v := os.Getenv(EnvTimeoutSec); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q", ErrInvalidEnvValue, EnvTimeoutSec, v)
		}

		c.Scanner.Request.TimeoutSec = n
	}

	return nil
}

// SplitWords splits a comma separated list, dropping empty entries.
// Words are kept as given; no case folding is applied.
func SplitWords(list string) []string {
	words := []string{}

	for w := range strings.SplitSeq(list, ",") {
		w = strings.TrimSpace(w)
		if w != "" {
			words = append(words, w)
		}
	}

	return words
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	src := c.Scanner.Source
	if src.URL == "" {
		return ErrMissingURL
	}

	if !isHTTPURL(src.URL) {
		return fmt.Errorf("%w: %q", ErrInvalidURL, src.URL)
	}

	if !isHTTPURL(src.Origin) || strings.Trim(mustPath(src.Origin), "/") != "" {
		return fmt.Errorf("%w: %q", ErrInvalidOrigin, src.Origin)
	}

	req := c.Scanner.Request
	if req.Browser == "" {
		return ErrMissingBrowser
	}

	if req.OS == "" {
		return ErrMissingOS
	}

	if req.TimeoutSec < 1 {
		return ErrInvalidTimeout
	}

	if req.BufferSizeKb < 1 {
		return ErrInvalidBufferSize
	}

	if !slices.Contains([]string{PolicySkip, PolicyFail}, c.Scanner.Extraction.OnMissingField) {
		return ErrInvalidPolicy
	}

	if !slices.Contains([]string{FormatText, FormatTable, FormatJSON}, c.Scanner.Output.Format) {
		return ErrInvalidFormat
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Scanner.Logging.Level] {
		return ErrInvalidLogLevel
	}

	return nil
}

// GetTimeout returns the request timeout duration.
func (rc *RequestConfig) GetTimeout() time.Duration {
	return time.Duration(rc.TimeoutSec) * time.Second
}

// String returns a string representation of the config.
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{URL: %s, Browser: %s/%s, Words: %d, Format: %s}",
		c.Scanner.Source.URL,
		c.Scanner.Request.Browser,
		c.Scanner.Request.OS,
		len(c.Scanner.Search.Words),
		c.Scanner.Output.Format,
	)
}

func isHTTPURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}

	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func mustPath(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}

	return u.Path
}

// Package config provides configuration management for the shipscan pipeline.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"gopkg.in/yaml.v3"
)

// Items number policies applied below the value threshold.
const (
	ItemsPolicyOverride = "override"
	ItemsPolicyFill     = "fill"
)

// Configuration validation errors.
var (
	ErrInvalidDelimiter         = errors.New("input.delimiter must be a single character")
	ErrInvalidHSPrefix          = errors.New("validation.hs_code_prefix must be digits")
	ErrInvalidHSLength          = errors.New("validation.hs_code_length must be >= len(hs_code_prefix)")
	ErrInvalidThreshold         = errors.New("validation.items_threshold must be positive")
	ErrInvalidItemsPolicy       = errors.New("validation.items_policy must be 'override' or 'fill'")
	ErrNoDateLayouts            = errors.New("validation.date_layouts must not be empty")
	ErrInvalidCountryAlias      = errors.New("country.aliases values must be two-letter codes")
	ErrInvalidCacheSize         = errors.New("country.cache_size must be non-negative")
	ErrInvalidBaseURL           = errors.New("scraper.base_url must be an absolute http(s) URL")
	ErrInvalidLinesStride       = errors.New("scraper.lines_stride must be at least 1")
	ErrInvalidRate              = errors.New("scraper.requests_per_second must be non-negative")
	ErrInvalidBufferSize        = errors.New("scraper.buffer_size_kb must be at least 1")
	ErrInvalidMaxAttempts       = errors.New("retry.max_attempts must be at least 1")
	ErrInvalidInitialDelay      = errors.New("retry.initial_delay_ms must be non-negative")
	ErrInvalidBackoffMultiplier = errors.New("retry.backoff_multiplier must be >= 1.0")
	ErrInvalidTimeout           = errors.New("retry.timeout_sec must be at least 1")
	ErrInvalidLogLevel          = errors.New("logging.level must be one of: debug, info, warn, error")
	ErrInvalidLogFormat         = errors.New("logging.format must be 'text' or 'json'")
)

var digitsPattern = regexp.MustCompile(`^\d+$`)

// Config represents the complete pipeline configuration.
type Config struct {
	Input      InputConfig      `yaml:"input"`
	Validation ValidationConfig `yaml:"validation"`
	Country    CountryConfig    `yaml:"country"`
	Scraper    ScraperConfig    `yaml:"scraper"`
	Output     OutputConfig     `yaml:"output"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// InputConfig describes the trades file.
type InputConfig struct {
	HeaderAliases map[string]string `yaml:"header_aliases"`
	Path          string            `yaml:"path"`
	Delimiter     string            `yaml:"delimiter"`
	NullTokens    []string          `yaml:"null_tokens"`
}

// ValidationConfig holds the normalization business rules.
type ValidationConfig struct {
	HSCodePrefix   string   `yaml:"hs_code_prefix"`
	ItemsPolicy    string   `yaml:"items_policy"`
	DateLayouts    []string `yaml:"date_layouts"`
	HSCodeLength   int      `yaml:"hs_code_length"`
	ItemsThreshold float64  `yaml:"items_threshold"`
}

// CountryConfig configures country name resolution.
type CountryConfig struct {
	Aliases   map[string]string `yaml:"aliases"`
	CacheSize int               `yaml:"cache_size"`
}

// ScraperConfig configures the seaport website crawler.
type ScraperConfig struct {
	BaseURL           string      `yaml:"base_url"`
	IndexPath         string      `yaml:"index_path"`
	UserAgent         string      `yaml:"user_agent"`
	ImportClass       string      `yaml:"import_class"`
	ExportClass       string      `yaml:"export_class"`
	Retry             RetryPolicy `yaml:"retry"`
	LinesStride       int         `yaml:"lines_stride"`
	BufferSizeKb      int         `yaml:"buffer_size_kb"`
	Burst             int         `yaml:"burst"`
	RequestsPerSecond float64     `yaml:"requests_per_second"`
}

// RetryPolicy defines retry behavior.
type RetryPolicy struct {
	MaxAttempts       int     `yaml:"max_attempts"`
	InitialDelayMs    int     `yaml:"initial_delay_ms"`
	MaxDelayMs        int     `yaml:"max_delay_ms"`
	BackoffMultiplier float64 `yaml:"backoff_multiplier"`
	TimeoutSec        int     `yaml:"timeout_sec"`
}

// OutputConfig defines export targets. Empty paths disable the target.
type OutputConfig struct {
	PortsCSV   string `yaml:"ports_csv"`
	SQLitePath string `yaml:"sqlite_path"`
	XLSXPath   string `yaml:"xlsx_path"`
}

// LoggingConfig defines logging behavior.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// DefaultDateLayouts are tried in order when parsing the date column.
var DefaultDateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006/01/02",
	"01/02/2006",
	"01-02-2006",
	"Jan 2, 2006",
	"2 Jan 2006",
	"20060102",
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Input: InputConfig{
			Path:      "trades.csv",
			Delimiter: ";",
			HeaderAliases: map[string]string{
				"destination_country,": "destination_country",
			},
			NullTokens: []string{"", "NA", "N/A", "NaN", "nan", "NULL", "null", "None", "<NA>", "#N/A"},
		},
		Validation: ValidationConfig{
			HSCodePrefix:   "870423",
			HSCodeLength:   8,
			ItemsThreshold: 80000.00,
			ItemsPolicy:    ItemsPolicyOverride,
			DateLayouts:    append([]string(nil), DefaultDateLayouts...),
		},
		Country: CountryConfig{
			CacheSize: 256,
		},
		Scraper: ScraperConfig{
			BaseURL:           "https://www.cogoport.com",
			IndexPath:         "/en-IN/knowledge-center/resources/port-info",
			UserAgent:         "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
			ImportClass:       "styles_info__gszri",
			ExportClass:       "styles_info__SMa4k",
			LinesStride:       5,
			BufferSizeKb:      4096,
			RequestsPerSecond: 2,
			Burst:             1,
			Retry: RetryPolicy{
				MaxAttempts:       3,
				InitialDelayMs:    500,
				MaxDelayMs:        30000,
				BackoffMultiplier: 2.0,
				TimeoutSec:        30,
			},
		},
		Output: OutputConfig{
			PortsCSV: "ports_info.csv",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// LoadConfig loads configuration from a YAML file layered over Default.
func LoadConfig(filepath string) (*Config, error) {
	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// LoadOrDefault loads filepath, or returns Default when filepath is empty.
func LoadOrDefault(filepath string) (*Config, error) {
	if filepath == "" {
		return Default(), nil
	}

	return LoadConfig(filepath)
}

// SaveConfig saves configuration to YAML file.
func (c *Config) SaveConfig(filepath string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filepath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if utf8.RuneCountInString(c.Input.Delimiter) != 1 {
		return ErrInvalidDelimiter
	}

	v := c.Validation
	if !digitsPattern.MatchString(v.HSCodePrefix) {
		return ErrInvalidHSPrefix
	}

	if v.HSCodeLength < len(v.HSCodePrefix) {
		return ErrInvalidHSLength
	}

	if v.ItemsThreshold <= 0 {
		return ErrInvalidThreshold
	}

	if v.ItemsPolicy != ItemsPolicyOverride && v.ItemsPolicy != ItemsPolicyFill {
		return ErrInvalidItemsPolicy
	}

	if len(v.DateLayouts) == 0 {
		return ErrNoDateLayouts
	}

	for name, code := range c.Country.Aliases {
		if len(code) != 2 || strings.ToUpper(code) != code {
			return fmt.Errorf("%w: %q -> %q", ErrInvalidCountryAlias, name, code)
		}
	}

	if c.Country.CacheSize < 0 {
		return ErrInvalidCacheSize
	}

	if err := c.Scraper.validate(); err != nil {
		return err
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return ErrInvalidLogLevel
	}

	if c.Logging.Format != "text" && c.Logging.Format != "json" {
		return ErrInvalidLogFormat
	}

	return nil
}

func (s *ScraperConfig) validate() error {
	u, err := url.Parse(s.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ErrInvalidBaseURL
	}

	if s.LinesStride < 1 {
		return ErrInvalidLinesStride
	}

	if s.RequestsPerSecond < 0 {
		return ErrInvalidRate
	}

	if s.BufferSizeKb < 1 {
		return ErrInvalidBufferSize
	}

	return s.Retry.Validate()
}

// Validate checks the retry policy bounds.
func (rp *RetryPolicy) Validate() error {
	if rp.MaxAttempts < 1 {
		return ErrInvalidMaxAttempts
	}

	if rp.InitialDelayMs < 0 {
		return ErrInvalidInitialDelay
	}

	if rp.BackoffMultiplier < 1.0 {
		return ErrInvalidBackoffMultiplier
	}

	if rp.TimeoutSec < 1 {
		return ErrInvalidTimeout
	}

	return nil
}

// GetRetryDelay calculates exponential backoff delay for attempt number.
func (rp *RetryPolicy) GetRetryDelay(attempt int) time.Duration {
	if attempt <= 1 {
		return 0
	}

	delayMs := float64(rp.InitialDelayMs)
	for i := 1; i < attempt; i++ {
		delayMs *= rp.BackoffMultiplier
	}

	// Cap at max delay
	if int(delayMs) > rp.MaxDelayMs {
		delayMs = float64(rp.MaxDelayMs)
	}

	return time.Duration(int(delayMs)) * time.Millisecond
}

// GetTimeout returns the timeout duration.
func (rp *RetryPolicy) GetTimeout() time.Duration {
	return time.Duration(rp.TimeoutSec) * time.Second
}

// IndexURL returns the absolute URL of the port-info index page.
func (s *ScraperConfig) IndexURL() string {
	return strings.TrimRight(s.BaseURL, "/") + s.IndexPath
}

// String returns a string representation of the config.
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{Input: %s, HSPrefix: %s, Threshold: %.2f, Scraper: %s}",
		c.Input.Path,
		c.Validation.HSCodePrefix,
		c.Validation.ItemsThreshold,
		c.Scraper.BaseURL,
	)
}

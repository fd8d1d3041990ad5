// Package config holds the runtime configuration for the Form D puller.
// Values come from environment variables, optionally overridden by a YAML
// config file and an HJSON industry-exclusion list.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	hjson "github.com/hjson/hjson-go/v4"
	"gopkg.in/yaml.v2"
)

const (
	// DefaultMinOffering / DefaultMaxOffering bound the target funding range.
	DefaultMinOffering int64 = 2_000_000
	DefaultMaxOffering int64 = 6_000_000

	// DefaultLookbackDays is how far back a run searches for new filings.
	DefaultLookbackDays = 1

	// DefaultUserAgent identifies us to SEC EDGAR. SEC rejects requests
	// without a contact in the User-Agent, so runs should set SEC_USER_AGENT.
	DefaultUserAgent = "formdwatch/1.0 (contact@example.com)"
)

// DefaultExcludedIndustries lists the Form D industry groups that are never
// forwarded downstream (funds, real estate, extractives - not operating
// companies raising a round).
var DefaultExcludedIndustries = []string{
	"Pooled Investment Fund",
	"Hedge Fund",
	"Private Equity Fund",
	"Venture Capital Fund",
	"Real Estate",
	"REITS & Finance",
	"Banking & Financial Services",
	"Insurance",
	"Oil & Gas",
	"Mining",
}

// Config carries every tunable of a pipeline run.
type Config struct {
	WebhookURL         string   `yaml:"webhook_url"`
	MinOffering        int64    `yaml:"min_offering"`
	MaxOffering        int64    `yaml:"max_offering"`
	UserAgent          string   `yaml:"user_agent"`
	LookbackDays       int      `yaml:"lookback_days"`
	OutputDir          string   `yaml:"output_dir"`
	LogLevel           string   `yaml:"log_level"`
	ExcludedIndustries []string `yaml:"excluded_industries"`
}

// Default returns a Config with the documented fallback values.
func Default() Config {
	return Config{
		MinOffering:        DefaultMinOffering,
		MaxOffering:        DefaultMaxOffering,
		UserAgent:          DefaultUserAgent,
		LookbackDays:       DefaultLookbackDays,
		OutputDir:          ".",
		LogLevel:           "info",
		ExcludedIndustries: append([]string(nil), DefaultExcludedIndustries...),
	}
}

// FromEnv builds a Config from environment variables, starting from Default.
// Recognized variables: WEBHOOK_URL, MIN_OFFERING, MAX_OFFERING,
// SEC_USER_AGENT, LOOKBACK_DAYS, OUTPUT_DIR, LOG_LEVEL.
func FromEnv() Config {
	cfg := Default()

	if v := os.Getenv("WEBHOOK_URL"); v != "" {
		cfg.WebhookURL = v
	}
	if v := os.Getenv("MIN_OFFERING"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.MinOffering = n
		}
	}
	if v := os.Getenv("MAX_OFFERING"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.MaxOffering = n
		}
	}
	if v := os.Getenv("SEC_USER_AGENT"); v != "" {
		cfg.UserAgent = v
	}
	if v := os.Getenv("LOOKBACK_DAYS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.LookbackDays = n
		}
	}
	if v := os.Getenv("OUTPUT_DIR"); v != "" {
		cfg.OutputDir = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}

	return cfg
}

// Load builds the effective Config: env values, then the optional YAML file
// named by CONFIG_FILE, then the optional HJSON exclusion list named by
// EXCLUDED_INDUSTRIES_FILE.
func Load() (Config, error) {
	cfg := FromEnv()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.ApplyFile(path); err != nil {
			return cfg, err
		}
	}
	if path := os.Getenv("EXCLUDED_INDUSTRIES_FILE"); path != "" {
		excluded, err := LoadExclusions(path)
		if err != nil {
			return cfg, err
		}
		cfg.ExcludedIndustries = excluded
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// ApplyFile overlays values from a YAML config file. Zero-valued fields in
// the file leave the current value untouched.
func (c *Config) ApplyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var file Config
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if file.WebhookURL != "" {
		c.WebhookURL = file.WebhookURL
	}
	if file.MinOffering != 0 {
		c.MinOffering = file.MinOffering
	}
	if file.MaxOffering != 0 {
		c.MaxOffering = file.MaxOffering
	}
	if file.UserAgent != "" {
		c.UserAgent = file.UserAgent
	}
	if file.LookbackDays != 0 {
		c.LookbackDays = file.LookbackDays
	}
	if file.OutputDir != "" {
		c.OutputDir = file.OutputDir
	}
	if file.LogLevel != "" {
		c.LogLevel = file.LogLevel
	}
	if len(file.ExcludedIndustries) > 0 {
		c.ExcludedIndustries = file.ExcludedIndustries
	}
	return nil
}

// LoadExclusions reads an industry-exclusion list from an HJSON file.
// HJSON so the list can carry comments explaining each entry. The file is
// either a bare array of strings or an object with an "excluded" key.
func LoadExclusions(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read exclusion file %s: %w", path, err)
	}

	var raw interface{}
	if err := hjson.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse exclusion file %s: %w", path, err)
	}

	var items []interface{}
	switch v := raw.(type) {
	case []interface{}:
		items = v
	case map[string]interface{}:
		list, ok := v["excluded"].([]interface{})
		if !ok {
			return nil, fmt.Errorf("exclusion file %s: expected an \"excluded\" array", path)
		}
		items = list
	default:
		return nil, fmt.Errorf("exclusion file %s: expected an array or object", path)
	}

	excluded := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("exclusion file %s: non-string entry %v", path, item)
		}
		if s = strings.TrimSpace(s); s != "" {
			excluded = append(excluded, s)
		}
	}
	return excluded, nil
}

// Validate checks invariants the pipeline relies on.
func (c Config) Validate() error {
	if c.MinOffering < 0 || c.MaxOffering < 0 {
		return fmt.Errorf("offering bounds must be non-negative (min=%d max=%d)", c.MinOffering, c.MaxOffering)
	}
	if c.MinOffering > c.MaxOffering {
		return fmt.Errorf("min offering %d exceeds max offering %d", c.MinOffering, c.MaxOffering)
	}
	if c.LookbackDays < 1 {
		return fmt.Errorf("lookback days must be >= 1, got %d", c.LookbackDays)
	}
	if strings.TrimSpace(c.UserAgent) == "" {
		return fmt.Errorf("user agent must not be empty; SEC requires an identifying contact")
	}
	return nil
}

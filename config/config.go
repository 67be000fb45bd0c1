package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix namespaces every environment override.
const EnvPrefix = "SCRAPER"

// TargetURL is the Shopee search sorted by sales volume.
const TargetURL = "https://shopee.com.br/search?keyword=a&sortBy=sales"

// Config holds scraper configuration.
type Config struct {
	TargetURL    string
	WaitFor      string
	CacheMode    string
	Timeout      time.Duration
	// Limit caps the products reported. The run reports 10; SCRAPER_LIMIT
	// widens or narrows that cut-off for ad hoc runs.
	Limit        int
	Headless     bool
	BrowserBin   string
	UserAgent    string
	OutputFormat string // text or json
	SchemaFile   string
	MetricsFile  string
	Verbose      bool
}

// DefaultConfig returns the settings for the one-shot Shopee run.
func DefaultConfig() *Config {
	return &Config{
		TargetURL:    TargetURL,
		WaitFor:      "css=div[data-sqe='item']",
		CacheMode:    "bypass",
		Timeout:      60 * time.Second,
		Limit:        10,
		Headless:     true,
		BrowserBin:   "",
		UserAgent:    "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/117.0.0.0 Safari/537.36",
		OutputFormat: "text",
		Verbose:      false,
	}
}

// Load applies SCRAPER_* environment overrides on top of the defaults.
// The target URL, readiness condition and cache mode are not overridable.
func Load() (*Config, error) {
	cfg := DefaultConfig()

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	v.SetDefault("timeout", cfg.Timeout.String())
	v.SetDefault("limit", cfg.Limit)
	v.SetDefault("headless", cfg.Headless)
	v.SetDefault("browser_bin", cfg.BrowserBin)
	v.SetDefault("user_agent", cfg.UserAgent)
	v.SetDefault("format", cfg.OutputFormat)
	v.SetDefault("schema", cfg.SchemaFile)
	v.SetDefault("metrics_file", cfg.MetricsFile)
	v.SetDefault("verbose", cfg.Verbose)

	timeout, err := durationValue(v, "timeout")
	if err != nil {
		return nil, err
	}
	limit, err := intValue(v, "limit")
	if err != nil {
		return nil, err
	}

	cfg.Timeout = timeout
	cfg.Limit = limit
	cfg.Headless = v.GetBool("headless")
	cfg.BrowserBin = v.GetString("browser_bin")
	cfg.UserAgent = v.GetString("user_agent")
	cfg.OutputFormat = strings.ToLower(strings.TrimSpace(v.GetString("format")))
	cfg.SchemaFile = v.GetString("schema")
	cfg.MetricsFile = v.GetString("metrics_file")
	cfg.Verbose = v.GetBool("verbose")

	return cfg, nil
}

// Validate ensures all configuration values are coherent.
func (c *Config) Validate() error {
	if c.TargetURL == "" {
		return fmt.Errorf("target URL cannot be empty")
	}

	parsedURL, err := url.Parse(c.TargetURL)
	if err != nil {
		return fmt.Errorf("invalid target URL: %w", err)
	}
	if parsedURL.Host == "" {
		return fmt.Errorf("target URL must include a host")
	}

	if strings.TrimSpace(c.WaitFor) == "" {
		return fmt.Errorf("wait condition cannot be empty")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	// any positive SCRAPER_LIMIT is accepted, not only the default 10
	if c.Limit <= 0 {
		return fmt.Errorf("limit must be positive")
	}
	if c.OutputFormat != "text" && c.OutputFormat != "json" {
		return fmt.Errorf("output format must be text or json")
	}
	if c.UserAgent == "" {
		return fmt.Errorf("user agent cannot be empty")
	}

	return nil
}

// durationValue accepts Go durations ("45s") or bare seconds ("45").
func durationValue(v *viper.Viper, key string) (time.Duration, error) {
	raw := strings.TrimSpace(v.GetString(key))
	if d, err := time.ParseDuration(raw); err == nil {
		return d, nil
	}
	seconds, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s_%s %q: want a duration like 45s", EnvPrefix, strings.ToUpper(key), raw)
	}
	return time.Duration(seconds) * time.Second, nil
}

func intValue(v *viper.Viper, key string) (int, error) {
	raw := strings.TrimSpace(v.GetString(key))
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s_%s %q: want an integer", EnvPrefix, strings.ToUpper(key), raw)
	}
	return n, nil
}

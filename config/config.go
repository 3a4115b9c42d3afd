package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable read by Load.
const EnvPrefix = "STEAM"

// Config holds client and CLI configuration.
type Config struct {
	CatalogURL   string
	DetailURL    string
	UserAgent    string
	Timeout      time.Duration
	MaxBodySize  int // bytes, 0 means unlimited
	Language     string
	CountryCode  string
	Details      bool
	OutputFile   string
	OutputFormat string // csv, json, or dual
	Verbose      bool
	MetricsAddr  string
}

// DefaultConfig returns defaults pointing at the public Steam endpoints.
func DefaultConfig() *Config {
	return &Config{
		CatalogURL:   "https://api.steampowered.com/ISteamApps/GetAppList/v2/",
		DetailURL:    "https://store.steampowered.com/api/appdetails",
		UserAgent:    "go-steam-search/1.0 (+https://github.com/aluiziolira/go-steam-search)",
		Timeout:      60 * time.Second,
		MaxBodySize:  0,
		OutputFormat: "csv",
	}
}

// Load returns DefaultConfig overlaid with any STEAM_* environment variables.
func Load() (*Config, error) {
	cfg := DefaultConfig()

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	v.SetDefault("catalog_url", cfg.CatalogURL)
	v.SetDefault("detail_url", cfg.DetailURL)
	v.SetDefault("user_agent", cfg.UserAgent)
	v.SetDefault("timeout", cfg.Timeout)
	v.SetDefault("max_body_size", cfg.MaxBodySize)
	v.SetDefault("language", cfg.Language)
	v.SetDefault("country", cfg.CountryCode)
	v.SetDefault("output", cfg.OutputFile)
	v.SetDefault("format", cfg.OutputFormat)
	v.SetDefault("metrics_addr", cfg.MetricsAddr)

	timeout, err := cast.ToDurationE(v.Get("timeout"))
	if err != nil {
		return nil, fmt.Errorf("invalid %s_TIMEOUT: %w", EnvPrefix, err)
	}
	maxBody, err := cast.ToIntE(v.Get("max_body_size"))
	if err != nil {
		return nil, fmt.Errorf("invalid %s_MAX_BODY_SIZE: %w", EnvPrefix, err)
	}

	cfg.CatalogURL = v.GetString("catalog_url")
	cfg.DetailURL = v.GetString("detail_url")
	cfg.UserAgent = v.GetString("user_agent")
	cfg.Timeout = timeout
	cfg.MaxBodySize = maxBody
	cfg.Language = v.GetString("language")
	cfg.CountryCode = v.GetString("country")
	cfg.OutputFile = v.GetString("output")
	cfg.OutputFormat = strings.ToLower(v.GetString("format"))
	cfg.MetricsAddr = v.GetString("metrics_addr")
	return cfg, nil
}

// Validate ensures all configuration values are coherent.
func (c *Config) Validate() error {
	if err := validateURL("catalog URL", c.CatalogURL); err != nil {
		return err
	}
	if err := validateURL("detail URL", c.DetailURL); err != nil {
		return err
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.MaxBodySize < 0 {
		return fmt.Errorf("max body size cannot be negative")
	}
	if c.OutputFormat != "csv" && c.OutputFormat != "json" && c.OutputFormat != "dual" {
		return fmt.Errorf("output format must be csv, json, or dual")
	}
	if c.UserAgent == "" {
		return fmt.Errorf("user agent cannot be empty")
	}
	return nil
}

// Hosts returns the distinct hosts of the catalog and detail endpoints.
func (c *Config) Hosts() []string {
	var hosts []string
	for _, raw := range []string{c.CatalogURL, c.DetailURL} {
		u, err := url.Parse(raw)
		if err != nil || u.Host == "" {
			continue
		}
		host := u.Hostname()
		dup := false
		for _, h := range hosts {
			if h == host {
				dup = true
				break
			}
		}
		if !dup {
			hosts = append(hosts, host)
		}
	}
	return hosts
}

func validateURL(name, raw string) error {
	if raw == "" {
		return fmt.Errorf("%s cannot be empty", name)
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", name, err)
	}
	if parsed.Host == "" {
		return fmt.Errorf("%s must include a host", name)
	}
	return nil
}

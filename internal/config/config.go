// Package config loads layered settings: defaults, YAML file, ZDGUIDE_*
// environment, then command-line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"zdguide/internal/ports"
)

// EnvPrefix prefixes every environment override, e.g. ZDGUIDE_ZENDESK_API_TOKEN
const EnvPrefix = "ZDGUIDE"

// Config is the resolved process configuration
type Config struct {
	Zendesk ZendeskConfig
	Sync    SyncConfig
	Store   StoreConfig
	Site    SiteConfig
	HTTP    HTTPConfig
	Admin   AdminConfig
	Log     LogConfig
}

type ZendeskConfig struct {
	Subdomain string
	Email     string
	APIToken  string
	Timeout   time.Duration
	MaxPages  int
	PerPage   int
	BaseURL   string // optional host override
}

type SyncConfig struct {
	FetchConcurrency int
}

type StoreConfig struct {
	Path string
}

type SiteConfig struct {
	BaseURL string
}

type HTTPConfig struct {
	Addr string
}

type AdminConfig struct {
	Token       string
	NonceSecret string
	NonceTTL    time.Duration
}

type LogConfig struct {
	Level string
	File  string
}

// Credentials returns the help-center credentials
func (c *Config) Credentials() ports.Credentials {
	return ports.Credentials{
		Subdomain: c.Zendesk.Subdomain,
		Email:     c.Zendesk.Email,
		APIToken:  c.Zendesk.APIToken,
	}
}

// New returns a viper instance with defaults and environment binding applied
func New() *viper.Viper {
	v := viper.New()

	v.SetDefault("zendesk.subdomain", "")
	v.SetDefault("zendesk.email", "")
	v.SetDefault("zendesk.api_token", "")
	v.SetDefault("zendesk.timeout", 30*time.Second)
	v.SetDefault("zendesk.max_pages", 1)
	v.SetDefault("zendesk.per_page", 100)
	v.SetDefault("zendesk.base_url", "")
	v.SetDefault("sync.fetch_concurrency", 1)
	v.SetDefault("store.path", filepath.Join(dataHome(), "zdguide", "zdguide.db"))
	v.SetDefault("site.base_url", "")
	v.SetDefault("http.addr", "127.0.0.1:8080")
	v.SetDefault("admin.token", "")
	v.SetDefault("admin.nonce_secret", "")
	v.SetDefault("admin.nonce_ttl", 12*time.Hour)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// FlagKeys maps config keys to the command-line flags that override them
var FlagKeys = map[string]string{
	"store.path":             "store",
	"sync.fetch_concurrency": "concurrency",
	"site.base_url":          "site-url",
	"http.addr":              "addr",
	"log.level":              "log-level",
	"log.file":               "log-file",
}

// BindFlags makes the flags named in FlagKeys the highest-priority layer.
// Flags absent from flags are skipped; unset flags leave lower layers alone.
func BindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	for key, name := range FlagKeys {
		f := flags.Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("bind flag --%s: %w", name, err)
		}
	}
	return nil
}

// Load reads configFile (or the default location when empty) into v and
// resolves the result. A missing file is not an error.
func Load(v *viper.Viper, configFile string) (*Config, error) {
	v.SetConfigType("yaml")
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigFile(DefaultConfigPath())
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg := &Config{
		Zendesk: ZendeskConfig{
			Subdomain: strings.TrimSpace(v.GetString("zendesk.subdomain")),
			Email:     strings.TrimSpace(v.GetString("zendesk.email")),
			APIToken:  strings.TrimSpace(v.GetString("zendesk.api_token")),
			Timeout:   v.GetDuration("zendesk.timeout"),
			MaxPages:  v.GetInt("zendesk.max_pages"),
			PerPage:   v.GetInt("zendesk.per_page"),
			BaseURL:   v.GetString("zendesk.base_url"),
		},
		Sync:  SyncConfig{FetchConcurrency: v.GetInt("sync.fetch_concurrency")},
		Store: StoreConfig{Path: v.GetString("store.path")},
		Site:  SiteConfig{BaseURL: v.GetString("site.base_url")},
		HTTP:  HTTPConfig{Addr: v.GetString("http.addr")},
		Admin: AdminConfig{
			Token:       v.GetString("admin.token"),
			NonceSecret: v.GetString("admin.nonce_secret"),
			NonceTTL:    v.GetDuration("admin.nonce_ttl"),
		},
		Log: LogConfig{
			Level: v.GetString("log.level"),
			File:  v.GetString("log.file"),
		},
	}

	if cfg.Zendesk.MaxPages < 0 {
		return nil, fmt.Errorf("zendesk.max_pages must be >= 0, got %d", cfg.Zendesk.MaxPages)
	}
	if cfg.Sync.FetchConcurrency < 1 {
		cfg.Sync.FetchConcurrency = 1
	}
	return cfg, nil
}

// DefaultConfigPath returns $XDG_CONFIG_HOME/zdguide/config.yaml
func DefaultConfigPath() string {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, _ := os.UserHomeDir()
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "zdguide", "config.yaml")
}

func dataHome() string {
	if base := os.Getenv("XDG_DATA_HOME"); base != "" {
		return base
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share")
}

package site

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/eringen/opengraph"
)

// SiteConfig holds all configuration for a site.
type SiteConfig struct {
	Name        string `yaml:"name"`        // Site name, og:site_name (default "Blog")
	URL         string `yaml:"url"`         // Canonical URL (default "http://localhost:3000")
	Description string `yaml:"description"` // Site tagline, default og:description

	Thumbnails   bool     `yaml:"thumbnails"`    // Theme shows post thumbnails; enables the og:image default
	SummaryWords int      `yaml:"summary_words"` // Word limit of generated descriptions (default 55)
	Shortcodes   []string `yaml:"shortcodes"`    // Shortcode tags stripped from post bodies

	// OpenGraph holds site-wide property values (location, contact, ...)
	// keyed by property name. Values saved from the admin take precedence.
	OpenGraph map[string]string `yaml:"opengraph"`

	Addr         string `yaml:"addr"`          // Listen address (default ":3000")
	DatabasePath string `yaml:"database_path"` // SQLite path (default "data/site.db")

	AdminPassword string `yaml:"admin_password"` // Required: admin login password
	SessionSecret string `yaml:"session_secret"` // Required: session encryption secret
	CookieSecure  bool   `yaml:"cookie_secure"`  // Set true for HTTPS

	PostCacheTTL time.Duration `yaml:"post_cache_ttl"` // Post cache TTL (default 5min)
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "Blog"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.DatabasePath == "" {
		c.DatabasePath = "data/site.db"
	}
	if c.SummaryWords <= 0 {
		c.SummaryWords = opengraph.DefaultSummaryWords
	}
	if c.PostCacheTTL == 0 {
		c.PostCacheTTL = 5 * time.Minute
	}
}

// LoadConfig reads a YAML config file, if path is set, and applies
// environment overrides on top of it.
func LoadConfig(path string) (SiteConfig, error) {
	var cfg SiteConfig
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("site: read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("site: parse config %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return cfg, err
	}
	if len(cfg.OpenGraph) > 0 {
		values := make(map[string]string, len(cfg.OpenGraph))
		for name, v := range cfg.OpenGraph {
			p, ok := opengraph.ParseProperty(name)
			if !ok {
				return cfg, fmt.Errorf("site: config: unknown opengraph property %q", name)
			}
			values[string(p)] = v
		}
		cfg.OpenGraph = values
	}
	return cfg, nil
}

func (c *SiteConfig) applyEnv() error {
	c.Name = EnvOr("SITE_NAME", c.Name)
	c.URL = EnvOr("SITE_URL", c.URL)
	c.Description = EnvOr("SITE_DESCRIPTION", c.Description)
	c.Addr = EnvOr("ADDR", c.Addr)
	c.DatabasePath = EnvOr("DATABASE_PATH", c.DatabasePath)
	c.AdminPassword = EnvOr("ADMIN_PASSWORD", c.AdminPassword)
	c.SessionSecret = EnvOr("SESSION_SECRET", c.SessionSecret)
	if v := os.Getenv("COOKIE_SECURE"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("site: COOKIE_SECURE: %w", err)
		}
		c.CookieSecure = b
	}
	if v := os.Getenv("OG_THUMBNAILS"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("site: OG_THUMBNAILS: %w", err)
		}
		c.Thumbnails = b
	}
	if v := os.Getenv("OG_SHORTCODES"); v != "" {
		c.Shortcodes = FilterEmpty(strings.Split(v, ","))
	}
	return nil
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback receives the App before the server starts.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithProvider registers a provider for p after the site's own providers.
func WithProvider(p opengraph.Property, fn opengraph.ProviderFunc, opts ...opengraph.ProviderOption) Option {
	return func(a *App) {
		a.Resolver.Register(p, fn, opts...)
	}
}

// WithMetadataFilter registers a whole-map metadata filter.
func WithMetadataFilter(fn opengraph.FilterFunc, opts ...opengraph.ProviderOption) Option {
	return func(a *App) {
		a.Resolver.RegisterFilter(fn, opts...)
	}
}

// WithViews replaces the built-in views. Nil fields keep the defaults.
func WithViews(v ViewFuncs) Option {
	return func(a *App) {
		a.Views = a.Views.merge(v)
	}
}

// EnvOr returns the value of the environment variable key, or fallback if empty.
func EnvOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

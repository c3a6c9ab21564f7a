package site

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "site.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfigFile(t *testing.T) {
	path := writeConfig(t, `
name: Example Blog
url: https://example.com
description: Notes on things
thumbnails: true
summary_words: 30
shortcodes: [gallery, caption]
post_cache_ttl: 90s
opengraph:
  locality: Berlin
  og:email: hi@example.com
`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Name != "Example Blog" || cfg.URL != "https://example.com" || cfg.Description != "Notes on things" {
		t.Errorf("site fields = %q %q %q", cfg.Name, cfg.URL, cfg.Description)
	}
	if !cfg.Thumbnails || cfg.SummaryWords != 30 {
		t.Errorf("Thumbnails = %v, SummaryWords = %d", cfg.Thumbnails, cfg.SummaryWords)
	}
	if len(cfg.Shortcodes) != 2 || cfg.Shortcodes[1] != "caption" {
		t.Errorf("Shortcodes = %v", cfg.Shortcodes)
	}
	if cfg.PostCacheTTL != 90*time.Second {
		t.Errorf("PostCacheTTL = %v, want 90s", cfg.PostCacheTTL)
	}
	if cfg.OpenGraph["locality"] != "Berlin" || cfg.OpenGraph["email"] != "hi@example.com" {
		t.Errorf("OpenGraph = %v", cfg.OpenGraph)
	}
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	path := writeConfig(t, "name: From File\n")
	t.Setenv("SITE_NAME", "From Env")
	t.Setenv("OG_THUMBNAILS", "true")
	t.Setenv("OG_SHORTCODES", "gallery, ,embed")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Name != "From Env" {
		t.Errorf("Name = %q, want %q", cfg.Name, "From Env")
	}
	if !cfg.Thumbnails {
		t.Error("Thumbnails should be enabled from env")
	}
	if len(cfg.Shortcodes) != 2 || cfg.Shortcodes[1] != "embed" {
		t.Errorf("Shortcodes = %v", cfg.Shortcodes)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		env  map[string]string
		want string
	}{
		{name: "bad yaml", body: "name: [", want: "parse config"},
		{name: "unknown property", body: "opengraph:\n  author: me\n", want: `unknown opengraph property "author"`},
		{name: "bad bool", body: "", env: map[string]string{"COOKIE_SECURE": "maybe"}, want: "COOKIE_SECURE"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := LoadConfig(writeConfig(t, tt.body))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("LoadConfig error = %v, want containing %q", err, tt.want)
			}
		})
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestSetDefaults(t *testing.T) {
	var cfg SiteConfig
	cfg.setDefaults()
	if cfg.Name != "Blog" || cfg.URL != "http://localhost:3000" || cfg.Addr != ":3000" {
		t.Errorf("defaults = %q %q %q", cfg.Name, cfg.URL, cfg.Addr)
	}
	if cfg.SummaryWords != 55 || cfg.PostCacheTTL != 5*time.Minute {
		t.Errorf("SummaryWords = %d, PostCacheTTL = %v", cfg.SummaryWords, cfg.PostCacheTTL)
	}
}

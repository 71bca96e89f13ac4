package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/dgallion1/docshell/internal/fetch"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix of environment variable overrides.
const EnvPrefix = "DOCSHELL_"

type Config struct {
	Port string `yaml:"port" koanf:"port"`

	// Content root: a local directory or an http(s) base URL.
	ContentRoot string `yaml:"content_root" koanf:"content_root"`

	// Manifest candidates, tried in order relative to the content root.
	SectionCandidates []string `yaml:"section_candidates" koanf:"section_candidates"`
	PageCandidates    []string `yaml:"page_candidates" koanf:"page_candidates"`

	FetchTimeout time.Duration `yaml:"fetch_timeout" koanf:"fetch_timeout"`

	// Auth for admin endpoints; empty disables them.
	APIKey string `yaml:"api_key" koanf:"api_key"`

	// CORS
	AllowedOrigins []string `yaml:"allowed_origins" koanf:"allowed_origins"`

	// Live reload
	LiveReload    bool          `yaml:"live_reload" koanf:"live_reload"`
	WatchIgnore   []string      `yaml:"watch_ignore" koanf:"watch_ignore"`
	WatchDebounce time.Duration `yaml:"watch_debounce" koanf:"watch_debounce"`

	NoContentMessage string `yaml:"no_content_message" koanf:"no_content_message"`

	// PDF
	PDFFallbackPdftotext bool `yaml:"pdf_fallback_pdftotext" koanf:"pdf_fallback_pdftotext"`

	LogLevel    string        `yaml:"log_level" koanf:"log_level"`
	StatsWindow time.Duration `yaml:"stats_window" koanf:"stats_window"`
}

// Default returns a Config with the built-in defaults.
func Default() Config {
	return Config{
		Port:              "8090",
		ContentRoot:       "site",
		SectionCandidates: []string{"assets/sections.json", "sections.json"},
		PageCandidates:    []string{"assets/modules.json", "modules.json"},
		FetchTimeout:      10 * time.Second,
		AllowedOrigins:    []string{"http://localhost:*", "http://127.0.0.1:*"},
		LiveReload:        true,
		WatchIgnore:       []string{".git/**", "**/*.swp", "**/*~", "**/.#*"},
		WatchDebounce:     200 * time.Millisecond,
		NoContentMessage:  "No content",

		PDFFallbackPdftotext: true,

		LogLevel:    "info",
		StatsWindow: time.Hour,
	}
}

// Load reads the YAML file at path (when present), then overlays
// DOCSHELL_* environment variables. An empty path skips the file.
func Load(path string) (Config, error) {
	k := koanf.New(".")
	cfg := Default()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return Config{}, fmt.Errorf("reading config %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return Config{}, fmt.Errorf("accessing config %s: %w", path, err)
		}
	}

	// DOCSHELL_CONTENT_ROOT -> content_root, etc.
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil); err != nil {
		return Config{}, fmt.Errorf("loading env overrides: %w", err)
	}

	// Lists are replaced, not merged element-wise; empty ones get their
	// defaults back below.
	cfg.SectionCandidates, cfg.PageCandidates = nil, nil
	cfg.AllowedOrigins, cfg.WatchIgnore = nil, nil

	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}

	cfg.SectionCandidates = splitList(cfg.SectionCandidates)
	cfg.PageCandidates = splitList(cfg.PageCandidates)
	cfg.AllowedOrigins = splitList(cfg.AllowedOrigins)
	cfg.WatchIgnore = splitList(cfg.WatchIgnore)

	def := Default()
	if cfg.Port == "" {
		cfg.Port = def.Port
	}
	if len(cfg.SectionCandidates) == 0 {
		cfg.SectionCandidates = def.SectionCandidates
	}
	if len(cfg.PageCandidates) == 0 {
		cfg.PageCandidates = def.PageCandidates
	}
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = def.AllowedOrigins
	}
	if len(cfg.WatchIgnore) == 0 {
		cfg.WatchIgnore = def.WatchIgnore
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = def.FetchTimeout
	}
	if cfg.WatchDebounce <= 0 {
		cfg.WatchDebounce = def.WatchDebounce
	}
	if cfg.NoContentMessage == "" {
		cfg.NoContentMessage = def.NoContentMessage
	}
	if cfg.StatsWindow <= 0 {
		cfg.StatsWindow = def.StatsWindow
	}

	return cfg, nil
}

// Save writes the configuration as YAML.
func (c Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

func (c Config) Validate() error {
	if c.ContentRoot == "" {
		return fmt.Errorf("content_root is required")
	}
	if c.Port == "" {
		return fmt.Errorf("port is required")
	}
	if len(c.SectionCandidates) == 0 || len(c.PageCandidates) == 0 {
		return fmt.Errorf("manifest candidates must not be empty")
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// RemoteContent reports whether the content root is an http(s) URL.
func (c Config) RemoteContent() bool {
	return fetch.IsRemote(c.ContentRoot)
}

// SlogLevel maps LogLevel onto a slog.Level, defaulting to info.
func (c Config) SlogLevel() slog.Level {
	lvl, err := parseLevel(c.LogLevel)
	if err != nil {
		return slog.LevelInfo
	}
	return lvl
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("invalid log_level %q: must be one of debug, info, warn, error", s)
}

// splitList expands comma-separated entries, which is how lists arrive
// from environment variables.
func splitList(in []string) []string {
	var out []string
	for _, v := range in {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// Package config loads and writes the sfh configuration file.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	// MinThreads and MaxThreads bound max_threads.
	MinThreads = 1
	MaxThreads = 50

	// DefaultThreads is used when max_threads is not set
	DefaultThreads = 10

	// DefaultRefreshInterval is the dashboard redraw interval
	DefaultRefreshInterval = 250 * time.Millisecond

	// DefaultRetentionDays for the events log
	DefaultRetentionDays = 30
)

// Config represents the main configuration
type Config struct {
	Theme                string `toml:"theme"`
	AutoFetchNewest      bool   `toml:"auto_fetch_newest"`    // Fetch online HoF backup during login
	AutoPoll             bool   `toml:"auto_poll"`            // Keep characters logged in
	MaxThreads           int    `toml:"max_threads"`          // Concurrent worker bound
	ShowCrawlingRestrict bool   `toml:"show_crawling_restrict"`
	ShowClassIcons       bool   `toml:"show_class_icons"`
	CheckUpdates         bool   `toml:"check_updates"`
	IgnoredVersion       string `toml:"ignored_version"` // Release the update banner stays quiet about

	Dashboard DashboardConfig `toml:"dashboard"`
	Crawl     CrawlConfig     `toml:"crawl"`
	Events    EventsConfig    `toml:"events"`
	Accounts  []AccountEntry  `toml:"accounts"`
}

// DashboardConfig holds TUI settings
type DashboardConfig struct {
	RefreshInterval Duration `toml:"refresh_interval"`
	Icons           string   `toml:"icons"` // "auto", "nerd", "unicode" or "ascii"
}

// CrawlConfig holds crawl persistence settings
type CrawlConfig struct {
	StateDir string `toml:"state_dir"`
}

// EventsConfig controls the JSONL event log
type EventsConfig struct {
	Enabled       bool   `toml:"enabled"`
	Path          string `toml:"path"`
	RetentionDays int    `toml:"retention_days"`
}

// AccountEntry is one saved character login
type AccountEntry struct {
	Name   string `toml:"name"`
	Server string `toml:"server"`
}

// Duration is a time.Duration that reads and writes as "250ms" in TOML.
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(strings.TrimSpace(string(b)))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", string(b), err)
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// DefaultPath returns the default config file path
func DefaultPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "sfh", "config.toml")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "sfh", "config.toml")
}

// StateHome returns sfh's directory under the XDG state home.
func StateHome() string {
	if xdg := os.Getenv("XDG_STATE_HOME"); xdg != "" {
		return filepath.Join(xdg, "sfh")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "state", "sfh")
}

// DefaultStateDir returns where crawl snapshots are kept
func DefaultStateDir() string {
	return filepath.Join(StateHome(), "crawl")
}

// LogPath returns the file the dashboard logs to while it owns the terminal.
func LogPath() string {
	return filepath.Join(StateHome(), "sfh.log")
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Theme:           "Dark",
		AutoFetchNewest: true,
		AutoPoll:        false,
		MaxThreads:      DefaultThreads,
		ShowClassIcons:  true,
		CheckUpdates:    true,
		Dashboard: DashboardConfig{
			RefreshInterval: Duration{DefaultRefreshInterval},
			Icons:           "auto",
		},
		Crawl: CrawlConfig{
			StateDir: DefaultStateDir(),
		},
		Events: EventsConfig{
			Enabled:       true,
			Path:          "~/.local/state/sfh/events.jsonl",
			RetentionDays: DefaultRetentionDays,
		},
	}
}

// Load reads the config at path (DefaultPath when empty), fills unset fields
// from Default and applies environment overrides. A missing file is returned
// as an error matching fs.ErrNotExist.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return nil, fmt.Errorf("parsing config: unknown keys: %s", strings.Join(keys, ", "))
	}

	// Zero values that can't be meant literally fall back to defaults
	defaults := Default()
	if cfg.Theme == "" {
		cfg.Theme = defaults.Theme
	}
	if cfg.MaxThreads == 0 {
		cfg.MaxThreads = defaults.MaxThreads
	}
	if cfg.Dashboard.RefreshInterval.Duration <= 0 {
		cfg.Dashboard.RefreshInterval = defaults.Dashboard.RefreshInterval
	}
	if cfg.Dashboard.Icons == "" {
		cfg.Dashboard.Icons = defaults.Dashboard.Icons
	}
	if cfg.Crawl.StateDir == "" {
		cfg.Crawl.StateDir = defaults.Crawl.StateDir
	}
	if cfg.Events.Path == "" {
		cfg.Events.Path = defaults.Events.Path
	}
	if cfg.Events.RetentionDays == 0 {
		cfg.Events.RetentionDays = defaults.Events.RetentionDays
	}

	cfg.ApplyEnv()
	cfg.MaxThreads = ClampThreads(cfg.MaxThreads)
	cfg.Crawl.StateDir = ExpandHome(cfg.Crawl.StateDir)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOrDefault behaves like Load but returns Default when the file does not
// exist.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		cfg = Default()
		cfg.ApplyEnv()
		cfg.MaxThreads = ClampThreads(cfg.MaxThreads)
		return cfg, cfg.Validate()
	}
	return cfg, err
}

// ApplyEnv applies SFH_THEME, SFH_MAX_THREADS and SFH_AUTO_POLL.
func (c *Config) ApplyEnv() {
	if theme := os.Getenv("SFH_THEME"); theme != "" {
		c.Theme = theme
	}
	if threads := os.Getenv("SFH_MAX_THREADS"); threads != "" {
		if n, err := strconv.Atoi(threads); err == nil {
			c.MaxThreads = n
		}
	}
	if poll := os.Getenv("SFH_AUTO_POLL"); poll != "" {
		c.AutoPoll = poll == "1" || poll == "true"
	}
}

// ClampThreads limits n to [MinThreads, MaxThreads].
func ClampThreads(n int) int {
	if n < MinThreads {
		return MinThreads
	}
	if n > MaxThreads {
		return MaxThreads
	}
	return n
}

// Validate checks values that cannot be repaired silently.
func (c *Config) Validate() error {
	if _, ok := LookupTheme(c.Theme); !ok {
		return fmt.Errorf("unknown theme %q (available: %s)", c.Theme, strings.Join(ThemeNames(), ", "))
	}
	switch c.Dashboard.Icons {
	case "auto", "nerd", "unicode", "ascii":
	default:
		return fmt.Errorf("dashboard.icons must be auto, nerd, unicode or ascii, got %q", c.Dashboard.Icons)
	}
	if c.Events.RetentionDays < 0 {
		return fmt.Errorf("events.retention_days must not be negative")
	}
	for i, a := range c.Accounts {
		if strings.TrimSpace(a.Name) == "" || strings.TrimSpace(a.Server) == "" {
			return fmt.Errorf("accounts[%d]: name and server are required", i)
		}
	}
	return nil
}

// ExpandHome expands a leading ~ to the user's home directory.
func ExpandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

// CreateDefault writes the default config to path (DefaultPath when empty).
// It refuses to overwrite an existing file.
func CreateDefault(path string) (string, error) {
	if path == "" {
		path = DefaultPath()
	}

	if _, err := os.Stat(path); err == nil {
		return "", fmt.Errorf("config file already exists: %s", path)
	}
	if err := Save(path, Default()); err != nil {
		return "", err
	}
	return path, nil
}

// Save writes cfg to path atomically.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".config-*.toml")
	if err != nil {
		return fmt.Errorf("creating temp config: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if err := Print(cfg, tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp config: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("replacing config: %w", err)
	}
	return nil
}

// Print writes config to a writer in TOML format
func Print(cfg *Config, w io.Writer) error {
	fmt.Fprintln(w, "# sfh configuration")
	fmt.Fprintln(w, "# Environment variables: SFH_THEME, SFH_MAX_THREADS, SFH_AUTO_POLL")
	fmt.Fprintln(w)

	fmt.Fprintf(w, "# One of: %s\n", strings.Join(ThemeNames(), ", "))
	fmt.Fprintf(w, "theme = %q\n", cfg.Theme)
	fmt.Fprintf(w, "auto_fetch_newest = %t\n", cfg.AutoFetchNewest)
	fmt.Fprintf(w, "auto_poll = %t\n", cfg.AutoPoll)
	fmt.Fprintf(w, "max_threads = %d  # %d-%d\n", cfg.MaxThreads, MinThreads, MaxThreads)
	fmt.Fprintf(w, "show_crawling_restrict = %t\n", cfg.ShowCrawlingRestrict)
	fmt.Fprintf(w, "show_class_icons = %t\n", cfg.ShowClassIcons)
	fmt.Fprintf(w, "check_updates = %t\n", cfg.CheckUpdates)
	if cfg.IgnoredVersion != "" {
		fmt.Fprintf(w, "ignored_version = %q\n", cfg.IgnoredVersion)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "[dashboard]")
	fmt.Fprintf(w, "refresh_interval = %q\n", cfg.Dashboard.RefreshInterval.Duration.String())
	fmt.Fprintf(w, "icons = %q\n", cfg.Dashboard.Icons)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "[crawl]")
	fmt.Fprintln(w, "# Crawl progress snapshots, one file per server")
	fmt.Fprintf(w, "state_dir = %q\n", cfg.Crawl.StateDir)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "[events]")
	fmt.Fprintf(w, "enabled = %t\n", cfg.Events.Enabled)
	fmt.Fprintf(w, "path = %q\n", cfg.Events.Path)
	fmt.Fprintf(w, "retention_days = %d\n", cfg.Events.RetentionDays)

	for _, a := range cfg.Accounts {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "[[accounts]]")
		fmt.Fprintf(w, "name = %q\n", a.Name)
		if _, err := fmt.Fprintf(w, "server = %q\n", a.Server); err != nil {
			return err
		}
	}
	return nil
}

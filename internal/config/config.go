// Package config holds the read-only knobs consumed by the usage engine:
// cache TTL, optional daily budget, credential path override, and the
// tracked workspaces. Stored as a JSON settings file under the user
// config directory.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

type Config struct {
	// ClaudeDir overrides the CLI data directory (default ~/.claude).
	ClaudeDir string `json:"claude_dir,omitempty"`

	// CredentialsPath overrides the OAuth credential file location.
	CredentialsPath string `json:"credentials_path,omitempty"`

	// CacheTTLSeconds is how long a quota cache entry stays fresh.
	CacheTTLSeconds int `json:"cache_ttl_seconds"`

	// RefreshIntervalSeconds drives the timer-based refresh loop.
	RefreshIntervalSeconds int `json:"refresh_interval_seconds"`

	// DailyBudgetUSD enables budget forecasting when set.
	DailyBudgetUSD *float64 `json:"daily_budget_usd,omitempty"`

	// HeatmapDays is the daily-series window of the activity heatmap.
	HeatmapDays int `json:"heatmap_days"`

	// Workspaces are the project paths to break costs down for.
	Workspaces []string `json:"workspaces,omitempty"`
}

func DefaultConfig() Config {
	return Config{
		CacheTTLSeconds:        300,
		RefreshIntervalSeconds: 60,
		HeatmapDays:            90,
	}
}

func ConfigDir() string {
	if runtime.GOOS == "windows" {
		return filepath.Join(os.Getenv("APPDATA"), "claudewatch")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "claudewatch")
}

func ConfigPath() string {
	return filepath.Join(ConfigDir(), "settings.json")
}

func Load() (Config, error) {
	return LoadFrom(ConfigPath())
}

func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := json.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("parsing config %s: %w", path, err)
	}

	if cfg.CacheTTLSeconds <= 0 {
		cfg.CacheTTLSeconds = 300
	}
	if cfg.RefreshIntervalSeconds <= 0 {
		cfg.RefreshIntervalSeconds = 60
	}
	if cfg.HeatmapDays <= 0 {
		cfg.HeatmapDays = 90
	}

	return cfg, nil
}

func Save(cfg Config) error {
	return SaveTo(ConfigPath(), cfg)
}

func SaveTo(path string, cfg Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// ResolvedClaudeDir returns the effective CLI data directory.
func (c Config) ResolvedClaudeDir() string {
	if c.ClaudeDir != "" {
		return c.ClaudeDir
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".claude")
}

// LogRoot returns the conversation-log root below the data directory.
func (c Config) LogRoot() string {
	return filepath.Join(c.ResolvedClaudeDir(), "projects")
}

// ResolvedCredentialsPath returns the effective credential file location.
func (c Config) ResolvedCredentialsPath() string {
	if c.CredentialsPath != "" {
		return c.CredentialsPath
	}
	return filepath.Join(c.ResolvedClaudeDir(), ".credentials.json")
}

// QuotaCachePath returns where the quota snapshot cache lives.
func (c Config) QuotaCachePath() string {
	return filepath.Join(c.ResolvedClaudeDir(), "claudewatch-quota-cache.json")
}

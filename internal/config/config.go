// Package config handles configuration loading from files, defaults, and environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/javiermolinar/stint/internal/scheduler"
	"github.com/javiermolinar/stint/internal/task"
)

// Config holds the application configuration.
type Config struct {
	Schedule ScheduleConfig `toml:"schedule"`
	LLM      LLMConfig      `toml:"llm"`
	Storage  StorageConfig  `toml:"storage"`
	Calendar CalendarConfig `toml:"calendar"`
	Log      LogConfig      `toml:"log"`
}

// ScheduleConfig holds the work window and horizon.
type ScheduleConfig struct {
	WorkStart      string `toml:"work_start"`       // e.g., "09:00"
	WorkEnd        string `toml:"work_end"`         // e.g., "18:00"
	DaysToSchedule int    `toml:"days_to_schedule"` // horizon length
}

// LLMConfig holds LLM provider settings.
type LLMConfig struct {
	Provider   string `toml:"provider"`    // "copilot", "ollama", "lmstudio", "openai"
	Model      string `toml:"model"`       // e.g., "gpt-4o"
	BaseURL    string `toml:"base_url"`    // empty uses the provider default
	MaxRetries int    `toml:"max_retries"` // validation retries for extraction
}

// StorageConfig holds database settings.
type StorageConfig struct {
	DBPath string `toml:"db_path"`
}

// CalendarConfig points at an iCalendar file or URL with busy time.
type CalendarConfig struct {
	Source string `toml:"source"` // empty disables calendar constraints
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `toml:"level"` // "debug", "info", "warn", "error"
	Dir   string `toml:"dir"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Schedule: ScheduleConfig{
			WorkStart:      "09:00",
			WorkEnd:        "18:00",
			DaysToSchedule: 7,
		},
		LLM: LLMConfig{
			Provider:   "copilot",
			Model:      "gpt-4o",
			MaxRetries: 2,
		},
		Storage: StorageConfig{
			DBPath: dataPath("stint.db"),
		},
		Log: LogConfig{
			Level: "warn",
			Dir:   dataPath("logs"),
		},
	}
}

// dataPath returns a path under the user's data directory.
func dataPath(name string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return name
	}
	return filepath.Join(home, ".local", "share", "stint", name)
}

// DefaultConfigPath returns the default config file path.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.toml"
	}
	return filepath.Join(home, ".config", "stint", "config.toml")
}

// Load loads configuration from the default path, merging with defaults and env vars.
func Load() (*Config, error) {
	return LoadFrom(DefaultConfigPath())
}

// LoadFrom loads configuration from the specified path.
// It starts with defaults, overlays file config if it exists, then applies env overrides.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()

	if err := loadFromFile(path, cfg); err != nil {
		return nil, err
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	cfg.Storage.DBPath = expandPath(cfg.Storage.DBPath)
	cfg.Log.Dir = expandPath(cfg.Log.Dir)
	if !isURL(cfg.Calendar.Source) {
		cfg.Calendar.Source = expandPath(cfg.Calendar.Source)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// loadFromFile loads config from a file if it exists.
func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading config file: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides to the config.
// Environment variables take precedence over file config.
func applyEnvOverrides(cfg *Config) error {
	overrides := []struct {
		key   string
		field *string
	}{
		{"STINT_WORK_START", &cfg.Schedule.WorkStart},
		{"STINT_WORK_END", &cfg.Schedule.WorkEnd},
		{"STINT_LLM_PROVIDER", &cfg.LLM.Provider},
		{"STINT_LLM_MODEL", &cfg.LLM.Model},
		{"STINT_LLM_BASE_URL", &cfg.LLM.BaseURL},
		{"STINT_DB_PATH", &cfg.Storage.DBPath},
		{"STINT_CALENDAR_SOURCE", &cfg.Calendar.Source},
		{"STINT_LOG_LEVEL", &cfg.Log.Level},
	}
	for _, o := range overrides {
		if v := os.Getenv(o.key); v != "" {
			*o.field = v
		}
	}

	if v := os.Getenv("STINT_DAYS"); v != "" {
		days, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parsing STINT_DAYS: %w", err)
		}
		cfg.Schedule.DaysToSchedule = days
	}
	return nil
}

// expandPath expands ~ to the user's home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if err := validateTime(c.Schedule.WorkStart, "work_start"); err != nil {
		return err
	}
	if err := validateTime(c.Schedule.WorkEnd, "work_end"); err != nil {
		return err
	}
	if task.TimeToMinutes(c.Schedule.WorkStart) >= task.TimeToMinutes(c.Schedule.WorkEnd) {
		return errors.New("work_start must be before work_end")
	}
	if c.Schedule.DaysToSchedule <= 0 {
		return fmt.Errorf("days_to_schedule must be positive, got %d", c.Schedule.DaysToSchedule)
	}
	if c.LLM.MaxRetries < 0 {
		return fmt.Errorf("max_retries must not be negative, got %d", c.LLM.MaxRetries)
	}
	if c.Storage.DBPath == "" {
		return errors.New("db_path must be set")
	}
	switch strings.ToLower(c.Log.Level) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s", c.Log.Level)
	}
	return nil
}

// validateTime checks if a time string is in HH:MM format.
func validateTime(t, field string) error {
	if err := task.ValidateClock(t); err != nil {
		return fmt.Errorf("%s must be in HH:MM format, got %q", field, t)
	}
	return nil
}

// SchedulerSettings returns the engine settings for a horizon starting on base.
func (c *Config) SchedulerSettings(base time.Time) scheduler.Settings {
	return scheduler.Settings{
		WorkStart:      c.Schedule.WorkStart,
		WorkEnd:        c.Schedule.WorkEnd,
		DaysToSchedule: c.Schedule.DaysToSchedule,
		BaseDate:       task.TruncateToDay(base),
	}
}

// HasCalendar returns true if a calendar source is configured.
func (c *Config) HasCalendar() bool {
	return strings.TrimSpace(c.Calendar.Source) != ""
}

// Save writes the configuration to the default path.
func (c *Config) Save() error {
	return c.SaveTo(DefaultConfigPath())
}

// SaveTo writes the configuration to the specified path.
func (c *Config) SaveTo(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

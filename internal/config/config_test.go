package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Schedule.WorkStart != "09:00" {
		t.Errorf("expected work_start 09:00, got %s", cfg.Schedule.WorkStart)
	}
	if cfg.Schedule.WorkEnd != "18:00" {
		t.Errorf("expected work_end 18:00, got %s", cfg.Schedule.WorkEnd)
	}
	if cfg.Schedule.DaysToSchedule != 7 {
		t.Errorf("expected 7 days, got %d", cfg.Schedule.DaysToSchedule)
	}
	if cfg.LLM.Provider != "copilot" {
		t.Errorf("expected provider copilot, got %s", cfg.LLM.Provider)
	}
	if cfg.LLM.Model != "gpt-4o" {
		t.Errorf("expected model gpt-4o, got %s", cfg.LLM.Model)
	}
	if cfg.LLM.MaxRetries != 2 {
		t.Errorf("expected max_retries 2, got %d", cfg.LLM.MaxRetries)
	}
	if cfg.HasCalendar() {
		t.Error("expected no calendar by default")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should be valid: %v", err)
	}
}

func TestLoadFrom_FileNotExists(t *testing.T) {
	cfg, err := LoadFrom("/nonexistent/path/config.toml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Schedule.WorkStart != "09:00" {
		t.Errorf("expected default work_start, got %s", cfg.Schedule.WorkStart)
	}
}

func TestLoadFrom_ValidFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.toml")

	content := `
[schedule]
work_start = "08:00"
work_end = "16:00"
days_to_schedule = 3

[llm]
provider = "ollama"
model = "llama3"
base_url = "http://localhost:11435"
max_retries = 4

[storage]
db_path = "/tmp/test.db"

[calendar]
source = "https://example.com/work.ics"

[log]
level = "debug"
dir = "/tmp/stint-logs"
`
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := LoadFrom(configPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Schedule.WorkStart != "08:00" {
		t.Errorf("expected work_start 08:00, got %s", cfg.Schedule.WorkStart)
	}
	if cfg.Schedule.WorkEnd != "16:00" {
		t.Errorf("expected work_end 16:00, got %s", cfg.Schedule.WorkEnd)
	}
	if cfg.Schedule.DaysToSchedule != 3 {
		t.Errorf("expected 3 days, got %d", cfg.Schedule.DaysToSchedule)
	}
	if cfg.LLM.Provider != "ollama" || cfg.LLM.Model != "llama3" {
		t.Errorf("unexpected llm config: %+v", cfg.LLM)
	}
	if cfg.LLM.MaxRetries != 4 {
		t.Errorf("expected max_retries 4, got %d", cfg.LLM.MaxRetries)
	}
	if cfg.Storage.DBPath != "/tmp/test.db" {
		t.Errorf("expected db_path /tmp/test.db, got %s", cfg.Storage.DBPath)
	}
	if cfg.Calendar.Source != "https://example.com/work.ics" {
		t.Errorf("expected calendar URL untouched, got %s", cfg.Calendar.Source)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Dir != "/tmp/stint-logs" {
		t.Errorf("unexpected log config: %+v", cfg.Log)
	}
}

func TestLoadFrom_InvalidFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(configPath, []byte("[schedule\nwork_start ="), 0o644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	if _, err := LoadFrom(configPath); err == nil {
		t.Error("expected parse error")
	}
}

func TestLoadFrom_EnvOverrides(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.toml")

	content := `
[schedule]
work_start = "08:00"
work_end = "16:00"

[storage]
db_path = "/tmp/test.db"
`
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	t.Setenv("STINT_WORK_START", "10:00")
	t.Setenv("STINT_DAYS", "5")
	t.Setenv("STINT_LLM_MODEL", "gpt-4o-mini")
	t.Setenv("STINT_LLM_BASE_URL", "http://localhost:11436")
	t.Setenv("STINT_CALENDAR_SOURCE", "/tmp/cal.ics")
	t.Setenv("STINT_LOG_LEVEL", "info")

	cfg, err := LoadFrom(configPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Schedule.WorkStart != "10:00" {
		t.Errorf("expected work_start 10:00 from env, got %s", cfg.Schedule.WorkStart)
	}
	if cfg.Schedule.WorkEnd != "16:00" {
		t.Errorf("expected work_end 16:00 from file, got %s", cfg.Schedule.WorkEnd)
	}
	if cfg.Schedule.DaysToSchedule != 5 {
		t.Errorf("expected 5 days from env, got %d", cfg.Schedule.DaysToSchedule)
	}
	if cfg.LLM.Model != "gpt-4o-mini" {
		t.Errorf("expected model gpt-4o-mini from env, got %s", cfg.LLM.Model)
	}
	if cfg.LLM.BaseURL != "http://localhost:11436" {
		t.Errorf("expected base_url from env, got %s", cfg.LLM.BaseURL)
	}
	if cfg.Calendar.Source != "/tmp/cal.ics" {
		t.Errorf("expected calendar source from env, got %s", cfg.Calendar.Source)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("expected log level info from env, got %s", cfg.Log.Level)
	}
}

func TestLoadFrom_InvalidDaysEnv(t *testing.T) {
	t.Setenv("STINT_DAYS", "a week")
	if _, err := LoadFrom(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Error("expected error for non-numeric STINT_DAYS")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"missing leading zero", func(c *Config) { c.Schedule.WorkStart = "9:00" }, true},
		{"hour out of range", func(c *Config) { c.Schedule.WorkEnd = "24:30" }, true},
		{"start after end", func(c *Config) { c.Schedule.WorkStart, c.Schedule.WorkEnd = "18:00", "09:00" }, true},
		{"start equals end", func(c *Config) { c.Schedule.WorkEnd = "09:00" }, true},
		{"zero days", func(c *Config) { c.Schedule.DaysToSchedule = 0 }, true},
		{"negative retries", func(c *Config) { c.LLM.MaxRetries = -1 }, true},
		{"empty db path", func(c *Config) { c.Storage.DBPath = "" }, true},
		{"bad log level", func(c *Config) { c.Log.Level = "loud" }, true},
		{"upper-case log level", func(c *Config) { c.Log.Level = "DEBUG" }, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tc.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestSchedulerSettings(t *testing.T) {
	cfg := Default()
	cfg.Schedule.DaysToSchedule = 3

	now := time.Date(2026, 2, 20, 14, 45, 0, 0, time.UTC)
	s := cfg.SchedulerSettings(now)

	if s.WorkStart != "09:00" || s.WorkEnd != "18:00" || s.DaysToSchedule != 3 {
		t.Errorf("unexpected settings: %+v", s)
	}
	if !s.BaseDate.Equal(time.Date(2026, 2, 20, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("BaseDate = %v, want midnight of the same day", s.BaseDate)
	}
	if err := s.Validate(); err != nil {
		t.Errorf("settings should be valid: %v", err)
	}
}

func TestExpandPath(t *testing.T) {
	home, _ := os.UserHomeDir()

	tests := []struct {
		input string
		want  string
	}{
		{"~/test.db", filepath.Join(home, "test.db")},
		{"/absolute/path.db", "/absolute/path.db"},
		{"relative/path.db", "relative/path.db"},
	}

	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			got := expandPath(tc.input)
			if got != tc.want {
				t.Errorf("expandPath(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}

func TestSaveAndLoad(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "nested", "config.toml")

	cfg := Default()
	cfg.Schedule.WorkStart = "07:30"
	cfg.Schedule.DaysToSchedule = 10
	cfg.Calendar.Source = filepath.Join(tmpDir, "cal.ics")
	cfg.Storage.DBPath = filepath.Join(tmpDir, "stint.db")

	if err := cfg.SaveTo(configPath); err != nil {
		t.Fatalf("SaveTo failed: %v", err)
	}

	loaded, err := LoadFrom(configPath)
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}

	if loaded.Schedule.WorkStart != "07:30" {
		t.Errorf("expected work_start 07:30, got %s", loaded.Schedule.WorkStart)
	}
	if loaded.Schedule.DaysToSchedule != 10 {
		t.Errorf("expected 10 days, got %d", loaded.Schedule.DaysToSchedule)
	}
	if loaded.Calendar.Source != cfg.Calendar.Source {
		t.Errorf("expected calendar %s, got %s", cfg.Calendar.Source, loaded.Calendar.Source)
	}
	if loaded.Storage.DBPath != cfg.Storage.DBPath {
		t.Errorf("expected db_path %s, got %s", cfg.Storage.DBPath, loaded.Storage.DBPath)
	}
}

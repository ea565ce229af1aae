package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const fullYAML = `
database:
  driver: mysql
  host: 10.0.0.5
  port: 3307
  name: resourcepro_prod
  user: analytics

dashboard:
  port: 9090

schedule:
  daily: "30 2 * * *"
  backfill_days: 3

forecast:
  days_ahead: 14
  enhance: true
  gemini_model: gemini-1.5-pro
  benchmarks:
    Developer: 85
    Designer: 75

notify:
  overallocation_threshold: 110
  slack:
    channel: C0123
  discord:
    channel: "998877"
`

const minimalYAML = `
database:
  driver: sqlite
`

func TestParse_FullConfig(t *testing.T) {
	t.Setenv(EnvDBPassword, "s3cret")
	t.Setenv(EnvSlackBotToken, "xoxb-test")
	t.Setenv(EnvDiscordBotToken, "")
	t.Setenv(EnvGeminiAPIKey, "g-key")

	cfg, err := Parse([]byte(fullYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Database.Driver != DriverMySQL {
		t.Errorf("Database.Driver = %q, want %q", cfg.Database.Driver, DriverMySQL)
	}
	if cfg.Database.Host != "10.0.0.5" {
		t.Errorf("Database.Host = %q, want %q", cfg.Database.Host, "10.0.0.5")
	}
	if cfg.Database.Port != 3307 {
		t.Errorf("Database.Port = %d, want 3307", cfg.Database.Port)
	}
	if cfg.Database.User != "analytics" {
		t.Errorf("Database.User = %q, want analytics", cfg.Database.User)
	}
	if cfg.Database.Password != "s3cret" {
		t.Errorf("Database.Password = %q, want value from %s", cfg.Database.Password, EnvDBPassword)
	}
	if cfg.Dashboard.Port != 9090 {
		t.Errorf("Dashboard.Port = %d, want 9090", cfg.Dashboard.Port)
	}
	if cfg.Schedule.Daily != "30 2 * * *" {
		t.Errorf("Schedule.Daily = %q", cfg.Schedule.Daily)
	}
	if cfg.Schedule.BackfillDays != 3 {
		t.Errorf("Schedule.BackfillDays = %d, want 3", cfg.Schedule.BackfillDays)
	}
	if cfg.Forecast.DaysAhead != 14 {
		t.Errorf("Forecast.DaysAhead = %d, want 14", cfg.Forecast.DaysAhead)
	}
	if !cfg.Forecast.Enhance {
		t.Error("Forecast.Enhance = false, want true")
	}
	if cfg.Forecast.Benchmarks["Developer"] != 85 {
		t.Errorf("Benchmarks[Developer] = %v, want 85", cfg.Forecast.Benchmarks["Developer"])
	}
	if cfg.Forecast.GeminiKey != "g-key" {
		t.Errorf("Forecast.GeminiKey = %q, want g-key", cfg.Forecast.GeminiKey)
	}
	if !cfg.Notify.Slack.Enabled() {
		t.Error("Slack should be enabled with channel and token")
	}
	if cfg.Notify.Discord.Enabled() {
		t.Error("Discord should be disabled without a token")
	}
	if cfg.Notify.OverallocationThreshold != 110 {
		t.Errorf("OverallocationThreshold = %v, want 110", cfg.Notify.OverallocationThreshold)
	}
}

func TestParse_MinimalConfigDefaults(t *testing.T) {
	cfg, err := Parse([]byte(minimalYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Database.Path != "resourcepro.db" {
		t.Errorf("Database.Path = %q, want resourcepro.db", cfg.Database.Path)
	}
	if cfg.Dashboard.Port != 8080 {
		t.Errorf("Dashboard.Port = %d, want 8080", cfg.Dashboard.Port)
	}
	if cfg.Schedule.Daily != "0 1 * * *" {
		t.Errorf("Schedule.Daily = %q, want %q", cfg.Schedule.Daily, "0 1 * * *")
	}
	if cfg.Schedule.BackfillDays != 1 {
		t.Errorf("Schedule.BackfillDays = %d, want 1", cfg.Schedule.BackfillDays)
	}
	if cfg.Forecast.DaysAhead != 30 {
		t.Errorf("Forecast.DaysAhead = %d, want 30", cfg.Forecast.DaysAhead)
	}
	if cfg.Forecast.GeminiModel == "" {
		t.Error("Forecast.GeminiModel should have a default")
	}
	if cfg.Notify.OverallocationThreshold != 100 {
		t.Errorf("OverallocationThreshold = %v, want 100", cfg.Notify.OverallocationThreshold)
	}
}

func TestParse_EmptyDocumentUsesSQLite(t *testing.T) {
	cfg, err := Parse([]byte(""))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Database.Driver != DriverSQLite {
		t.Errorf("Driver = %q, want sqlite", cfg.Database.Driver)
	}
}

func TestParse_DriverDefaults(t *testing.T) {
	tests := []struct {
		driver   string
		wantPort int
		wantUser string
	}{
		{"mysql", 3306, "root"},
		{"postgres", 5432, "postgres"},
		{"POSTGRES", 5432, "postgres"},
	}
	for _, tt := range tests {
		t.Run(tt.driver, func(t *testing.T) {
			cfg, err := Parse([]byte("database:\n  driver: " + tt.driver + "\n"))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if cfg.Database.Port != tt.wantPort {
				t.Errorf("Port = %d, want %d", cfg.Database.Port, tt.wantPort)
			}
			if cfg.Database.User != tt.wantUser {
				t.Errorf("User = %q, want %q", cfg.Database.User, tt.wantUser)
			}
		})
	}
}

func TestParse_ValidationErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"unknown driver", "database:\n  driver: oracle\n", "database.driver"},
		{"bad port", "dashboard:\n  port: 70000\n", "dashboard.port"},
		{"negative horizon", "forecast:\n  days_ahead: -1\n", "forecast.days_ahead"},
		{"benchmark over 100", "forecast:\n  benchmarks:\n    Developer: 120\n", "forecast.benchmarks[Developer]"},
		{"negative backfill", "schedule:\n  backfill_days: -2\n", "schedule.backfill_days"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %q, want to contain %q", err.Error(), tt.want)
			}
		})
	}
}

func TestParse_InvalidYAML(t *testing.T) {
	_, err := Parse([]byte("database: [unclosed"))
	if err == nil {
		t.Fatal("expected parse error")
	}
	if !strings.Contains(err.Error(), "config: parse") {
		t.Errorf("error = %q, want config: parse prefix", err.Error())
	}
}

func TestLoad_FileNotFound(t *testing.T) {
	_, err := Load("/nonexistent/resourcepro.yaml")
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if !strings.Contains(err.Error(), "config: read") {
		t.Errorf("error = %q, want config: read prefix", err.Error())
	}
}

func TestLoad_FromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "resourcepro.yaml")
	if err := os.WriteFile(path, []byte(fullYAML), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Database.Name != "resourcepro_prod" {
		t.Errorf("Database.Name = %q, want resourcepro_prod", cfg.Database.Name)
	}
}

func TestLoadEnv_ReadsDotEnvWithoutOverriding(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	content := "RP_TEST_FROM_FILE=file\nRP_TEST_PRESET=file\n"
	if err := os.WriteFile(envPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("RP_TEST_PRESET", "process")
	t.Setenv("RP_TEST_FROM_FILE", "")
	os.Unsetenv("RP_TEST_FROM_FILE")

	if err := LoadEnv(envPath); err != nil {
		t.Fatalf("LoadEnv: %v", err)
	}
	if got := os.Getenv("RP_TEST_FROM_FILE"); got != "file" {
		t.Errorf("RP_TEST_FROM_FILE = %q, want file", got)
	}
	if got := os.Getenv("RP_TEST_PRESET"); got != "process" {
		t.Errorf("RP_TEST_PRESET = %q, want process (existing env wins)", got)
	}
}

func TestLoadEnv_MissingFileIsNotError(t *testing.T) {
	if err := LoadEnv(filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Errorf("LoadEnv on missing file: %v", err)
	}
}

// Package config provides YAML-based configuration loading for ResourcePro.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment variables holding secrets. They never live in the YAML file.
const (
	EnvGeminiAPIKey    = "GEMINI_API_KEY"
	EnvSlackBotToken   = "SLACK_BOT_TOKEN"
	EnvDiscordBotToken = "DISCORD_BOT_TOKEN"
	EnvDBPassword      = "RP_DB_PASSWORD"
)

// Supported database drivers.
const (
	DriverSQLite   = "sqlite"
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
)

// Config is the top-level ResourcePro configuration, loaded from resourcepro.yaml.
type Config struct {
	Database  DatabaseConfig  `yaml:"database"`
	Dashboard DashboardConfig `yaml:"dashboard"`
	Schedule  ScheduleConfig  `yaml:"schedule"`
	Forecast  ForecastConfig  `yaml:"forecast"`
	Notify    NotifyConfig    `yaml:"notify"`
}

// DatabaseConfig selects the GORM driver and its connection settings.
type DatabaseConfig struct {
	Driver   string `yaml:"driver"`
	Path     string `yaml:"path"` // sqlite only
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"-"`
}

// DashboardConfig holds settings for the HTTP API.
type DashboardConfig struct {
	Port int `yaml:"port"`
}

// ScheduleConfig holds the cron expression for the daily jobs.
type ScheduleConfig struct {
	Daily        string `yaml:"daily"`
	BackfillDays int    `yaml:"backfill_days"`
}

// ForecastConfig controls demand forecasting.
type ForecastConfig struct {
	DaysAhead   int                `yaml:"days_ahead"`
	Benchmarks  map[string]float64 `yaml:"benchmarks"`
	Enhance     bool               `yaml:"enhance"`
	GeminiModel string             `yaml:"gemini_model"`
	GeminiKey   string             `yaml:"-"`
}

// NotifyConfig defines where digests are posted.
type NotifyConfig struct {
	Slack                   ChannelConfig `yaml:"slack"`
	Discord                 ChannelConfig `yaml:"discord"`
	OverallocationThreshold float64       `yaml:"overallocation_threshold"`
}

// ChannelConfig is a chat channel target. Token is read from the environment.
type ChannelConfig struct {
	Channel string `yaml:"channel"`
	Token   string `yaml:"-"`
}

// Enabled reports whether the channel has both a target and a token.
func (c ChannelConfig) Enabled() bool {
	return c.Channel != "" && c.Token != ""
}

// Load reads a YAML config file from path and returns a validated Config.
// A .env file next to the working directory is loaded first when present.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := LoadEnv(); err != nil {
		return nil, err
	}
	return Parse(data)
}

// LoadEnv loads .env into the process environment. A missing file is not an error,
// and variables already set win over the file.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); os.IsNotExist(err) {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("config: load env %s: %w", f, err)
		}
	}
	return nil
}

// Parse unmarshals YAML bytes into a validated Config.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	cfg.applyDefaults()
	cfg.applyEnv()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyDefaults fills in derived and default values.
func (c *Config) applyDefaults() {
	if c.Database.Driver == "" {
		c.Database.Driver = DriverSQLite
	}
	c.Database.Driver = strings.ToLower(c.Database.Driver)
	switch c.Database.Driver {
	case DriverSQLite:
		if c.Database.Path == "" {
			c.Database.Path = "resourcepro.db"
		}
	case DriverMySQL:
		if c.Database.Port == 0 {
			c.Database.Port = 3306
		}
		if c.Database.User == "" {
			c.Database.User = "root"
		}
	case DriverPostgres:
		if c.Database.Port == 0 {
			c.Database.Port = 5432
		}
		if c.Database.User == "" {
			c.Database.User = "postgres"
		}
	}
	if c.Database.Host == "" {
		c.Database.Host = "127.0.0.1"
	}
	if c.Database.Name == "" {
		c.Database.Name = "resourcepro"
	}
	if c.Dashboard.Port == 0 {
		c.Dashboard.Port = 8080
	}
	if c.Schedule.Daily == "" {
		c.Schedule.Daily = "0 1 * * *"
	}
	if c.Schedule.BackfillDays == 0 {
		c.Schedule.BackfillDays = 1
	}
	if c.Forecast.DaysAhead == 0 {
		c.Forecast.DaysAhead = 30
	}
	if c.Forecast.GeminiModel == "" {
		c.Forecast.GeminiModel = "gemini-2.0-flash"
	}
	if c.Notify.OverallocationThreshold == 0 {
		c.Notify.OverallocationThreshold = 100
	}
}

// applyEnv copies secrets from the environment.
func (c *Config) applyEnv() {
	c.Database.Password = os.Getenv(EnvDBPassword)
	c.Forecast.GeminiKey = os.Getenv(EnvGeminiAPIKey)
	c.Notify.Slack.Token = os.Getenv(EnvSlackBotToken)
	c.Notify.Discord.Token = os.Getenv(EnvDiscordBotToken)
}

// validate checks that all required fields are present and consistent.
func (c *Config) validate() error {
	var errs []string
	switch c.Database.Driver {
	case DriverSQLite, DriverMySQL, DriverPostgres:
	default:
		errs = append(errs, fmt.Sprintf("database.driver %q is not one of sqlite, mysql, postgres", c.Database.Driver))
	}
	if c.Dashboard.Port < 0 || c.Dashboard.Port > 65535 {
		errs = append(errs, fmt.Sprintf("dashboard.port %d is out of range", c.Dashboard.Port))
	}
	if c.Schedule.BackfillDays < 0 {
		errs = append(errs, "schedule.backfill_days must not be negative")
	}
	if c.Forecast.DaysAhead < 0 {
		errs = append(errs, "forecast.days_ahead must not be negative")
	}
	for role, pct := range c.Forecast.Benchmarks {
		if pct <= 0 || pct > 100 {
			errs = append(errs, fmt.Sprintf("forecast.benchmarks[%s] must be in (0, 100]", role))
		}
	}
	if c.Notify.OverallocationThreshold < 0 {
		errs = append(errs, "notify.overallocation_threshold must not be negative")
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. DAILY_HARMONY_FORTUNE_API_KEY
const EnvPrefix = "DAILY_HARMONY"

// Config represents application configuration
type Config struct {
	Storage  StorageConfig  `mapstructure:"storage"`
	Calendar CalendarConfig `mapstructure:"calendar"`
	Fortune  FortuneConfig  `mapstructure:"fortune"`
	Daemon   DaemonConfig   `mapstructure:"daemon"`
	Server   ServerConfig   `mapstructure:"server"`
	Log      LogConfig      `mapstructure:"log"`
}

// StorageConfig selects where memos and the profile are kept
type StorageConfig struct {
	Type       string `mapstructure:"type"` // "file" or "sqlite"
	Dir        string `mapstructure:"dir"`
	SQLitePath string `mapstructure:"sqlite_path"`
}

// CalendarConfig represents calendar configuration
type CalendarConfig struct {
	Timezone      string `mapstructure:"timezone"`
	WeekStart     string `mapstructure:"week_start"`     // "sunday" or "monday"
	OverridesFile string `mapstructure:"overrides_file"` // optional YAML holiday overrides
}

// FortuneConfig represents the daily fortune API configuration
type FortuneConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
	Model   string `mapstructure:"model"`
	Timeout string `mapstructure:"timeout"`
}

// DaemonConfig represents reminder daemon configuration
type DaemonConfig struct {
	Schedule string `mapstructure:"schedule"` // cron expression for reminder scans
	LogFile  string `mapstructure:"log_file"`
	LogLevel string `mapstructure:"log_level"`
}

// ServerConfig represents HTTP API configuration
type ServerConfig struct {
	Listen string `mapstructure:"listen"`
}

// LogConfig represents CLI logging configuration
type LogConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

// Default returns the configuration used when no file is present
func Default() *Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return &Config{
		Storage: StorageConfig{
			Type: "file",
			Dir:  home + "/.daily-harmony/data",
		},
		Calendar: CalendarConfig{
			Timezone:  "Asia/Seoul",
			WeekStart: "sunday",
		},
		Fortune: FortuneConfig{
			Timeout: "30s",
		},
		Daemon: DaemonConfig{
			Schedule: "* * * * *",
			LogLevel: "info",
		},
		Server: ServerConfig{
			Listen: "127.0.0.1:8080",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from file.
// A missing file is not an error when no explicit path was given; defaults and
// environment variables still apply.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.daily-harmony")
		v.AddConfigPath("/etc/daily-harmony")
	}

	setDefaults(v)

	// Read environment variables
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	config.ExpandEnvVars()

	// Validate config
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("storage.type", d.Storage.Type)
	v.SetDefault("storage.dir", d.Storage.Dir)
	v.SetDefault("storage.sqlite_path", "")
	v.SetDefault("calendar.timezone", d.Calendar.Timezone)
	v.SetDefault("calendar.week_start", d.Calendar.WeekStart)
	v.SetDefault("calendar.overrides_file", "")
	v.SetDefault("fortune.api_key", "")
	v.SetDefault("fortune.base_url", "")
	v.SetDefault("fortune.model", "")
	v.SetDefault("fortune.timeout", d.Fortune.Timeout)
	v.SetDefault("daemon.schedule", d.Daemon.Schedule)
	v.SetDefault("daemon.log_file", "")
	v.SetDefault("daemon.log_level", d.Daemon.LogLevel)
	v.SetDefault("server.listen", d.Server.Listen)
	v.SetDefault("log.file", "")
	v.SetDefault("log.level", d.Log.Level)
}

// Validate validates the configuration
func (c *Config) Validate() error {
	// Validate Storage config
	switch c.Storage.Type {
	case "", "file":
		if c.Storage.Dir == "" {
			return fmt.Errorf("storage.dir is required for file storage")
		}
	case "sqlite":
		if c.Storage.SQLitePath == "" && c.Storage.Dir == "" {
			return fmt.Errorf("storage.sqlite_path or storage.dir is required for sqlite storage")
		}
	default:
		return fmt.Errorf("storage.type must be 'file' or 'sqlite', got '%s'", c.Storage.Type)
	}

	// Validate Calendar config
	if c.Calendar.Timezone != "" {
		if _, err := time.LoadLocation(c.Calendar.Timezone); err != nil {
			return fmt.Errorf("calendar.timezone is invalid: %w", err)
		}
	}
	switch strings.ToLower(c.Calendar.WeekStart) {
	case "", "sunday", "monday":
	default:
		return fmt.Errorf("calendar.week_start must be 'sunday' or 'monday', got '%s'", c.Calendar.WeekStart)
	}

	if c.Daemon.Schedule == "" {
		return fmt.Errorf("daemon.schedule is required")
	}

	return nil
}

// GetSQLitePath returns the database path, defaulting to a file inside storage.dir
func (c *StorageConfig) GetSQLitePath() string {
	if c.SQLitePath != "" {
		return c.SQLitePath
	}
	return strings.TrimRight(c.Dir, "/") + "/daily-harmony.db"
}

// GetLocation returns the calendar timezone. Default: Asia/Seoul, falling back to KST
func (c *CalendarConfig) GetLocation() *time.Location {
	name := c.Timezone
	if name == "" {
		name = "Asia/Seoul"
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.FixedZone("KST", 9*60*60)
	}
	return loc
}

// GetWeekStart returns the first weekday of calendar grids
func (c *CalendarConfig) GetWeekStart() time.Weekday {
	if strings.EqualFold(c.WeekStart, "monday") {
		return time.Monday
	}
	return time.Sunday
}

// GetTimeout returns the fortune request timeout
func (c *FortuneConfig) GetTimeout() time.Duration {
	if c.Timeout == "" {
		return 30 * time.Second
	}
	duration, err := time.ParseDuration(c.Timeout)
	if err != nil || duration <= 0 {
		return 30 * time.Second
	}
	return duration
}

// ExpandEnvVars expands environment variables in config strings
func (c *Config) ExpandEnvVars() {
	c.Fortune.APIKey = os.ExpandEnv(c.Fortune.APIKey)
	if c.Fortune.APIKey == "" {
		c.Fortune.APIKey = os.Getenv("GEMINI_API_KEY")
	}
	c.Storage.Dir = os.ExpandEnv(c.Storage.Dir)
	c.Storage.SQLitePath = os.ExpandEnv(c.Storage.SQLitePath)
	c.Calendar.OverridesFile = os.ExpandEnv(c.Calendar.OverridesFile)
	c.Daemon.LogFile = os.ExpandEnv(c.Daemon.LogFile)
	c.Log.File = os.ExpandEnv(c.Log.File)
}

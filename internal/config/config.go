// Package config provides configuration management using Viper.
package config

import (
	"fmt"
	"log"
	"path/filepath"
	"sync"

	"github.com/spf13/viper"
)

// Environment types
const (
	Development = "development"
	Production  = "production"
	Test        = "test"
)

// LogLevel represents the logging level for the application
type LogLevel string

// Available log levels
const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// Config holds all configuration parameters for the application
type Config struct {
	// Application settings
	AppName     string   `mapstructure:"appname"`
	AppPort     string   `mapstructure:"appport"`
	Environment string   `mapstructure:"environment"`
	LogLevel    LogLevel `mapstructure:"loglevel"`

	// File paths
	DataDirectory   string `mapstructure:"datadir"`
	StoragePath     string `mapstructure:"storagepath"`
	FunnelRulesPath string `mapstructure:"funnelrulespath"`

	// Logging settings
	LogsDirectory    string `mapstructure:"logsdir"`
	LogsMaxSizeInMb  int    `mapstructure:"logsmaxsizeinmb"`
	LogsMaxBackups   int    `mapstructure:"logsmaxbackups"`
	LogsMaxAgeInDays int    `mapstructure:"logsmaxageindays"`

	// Aggregation settings
	WorkerCount int `mapstructure:"workercount"`
}

var (
	cfg  *Config
	once sync.Once
)

// GetConfig returns the application configuration
func GetConfig() *Config {
	once.Do(func() {
		v := viper.New()

		// Set defaults
		v.SetDefault("appname", "shoplens")
		v.SetDefault("appport", "3000")
		v.SetDefault("environment", Development)
		v.SetDefault("loglevel", string(LogLevelDebug))
		v.SetDefault("datadir", "data")
		v.SetDefault("storagepath", "storage")
		v.SetDefault("funnelrulespath", "")
		v.SetDefault("logsdir", "logs")
		v.SetDefault("logsmaxsizeinmb", 20)
		v.SetDefault("logsmaxbackups", 10)
		v.SetDefault("logsmaxageindays", 30)
		v.SetDefault("workercount", 4)

		// Bind environment variables
		v.BindEnv("appname", "SHOPLENS_APP_NAME")
		v.BindEnv("appport", "SHOPLENS_APP_PORT")
		v.BindEnv("environment", "SHOPLENS_ENV")
		v.BindEnv("loglevel", "SHOPLENS_LOG_LEVEL")
		v.BindEnv("datadir", "SHOPLENS_DATA_DIR")
		v.BindEnv("storagepath", "SHOPLENS_STORAGE_PATH")
		v.BindEnv("funnelrulespath", "SHOPLENS_FUNNEL_RULES_PATH")
		v.BindEnv("logsdir", "SHOPLENS_LOGS_DIR")
		v.BindEnv("logsmaxsizeinmb", "SHOPLENS_LOGS_MAX_SIZE_IN_MB")
		v.BindEnv("logsmaxbackups", "SHOPLENS_LOGS_MAX_BACKUPS")
		v.BindEnv("logsmaxageindays", "SHOPLENS_LOGS_MAX_AGE_IN_DAYS")
		v.BindEnv("workercount", "SHOPLENS_WORKER_COUNT")

		cfg = &Config{}
		if err := v.Unmarshal(cfg); err != nil {
			log.Fatalf("config: failed to unmarshal configuration: %v", err)
		}

		if err := cfg.validate(); err != nil {
			log.Fatalf("config: invalid configuration: %v", err)
		}
	})
	return cfg
}

// validate checks the configuration for errors
func (c *Config) validate() error {
	validEnvs := map[string]bool{
		Development: true,
		Production:  true,
		Test:        true,
	}
	if !validEnvs[c.Environment] {
		return fmt.Errorf("invalid environment: %s", c.Environment)
	}

	if c.WorkerCount < 1 {
		return fmt.Errorf("invalid worker count: %d", c.WorkerCount)
	}

	return nil
}

// GetDatabasePath returns the sqlite file used for aggregate exports
func (c *Config) GetDatabasePath() string {
	return filepath.Join(c.StoragePath, fmt.Sprintf("%s-%s.db", c.AppName, c.Environment))
}

// IsDevelopment returns true if the environment is development
func (c *Config) IsDevelopment() bool {
	return c.Environment == Development
}

// IsProduction returns true if the environment is production
func (c *Config) IsProduction() bool {
	return c.Environment == Production
}

// IsTest returns true if the environment is test
func (c *Config) IsTest() bool {
	return c.Environment == Test
}

package model

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// DatabaseConfig holds settings for the local SQLite store.
type DatabaseConfig struct {
	// Path is the SQLite database file location.
	Path string `mapstructure:"path" yaml:"path"`
}

// AccountingConfig holds the constants of the value formula.
//
// FallbackBaseRate substitutes for a missing or non-positive per-user
// base value so reports never run a zero rate through the formula.
type AccountingConfig struct {
	Workdays         int     `mapstructure:"workdays" yaml:"workdays"`
	HoursPerDay      float64 `mapstructure:"hours_per_day" yaml:"hours_per_day"`
	FallbackBaseRate float64 `mapstructure:"fallback_base_rate" yaml:"fallback_base_rate"`
}

// WorkbookConfig describes the geometry of the external month-per-sheet
// workbook. The data region is fixed by the file's layout: description
// and activity-type columns, a bounded row window, and one column per
// day of month starting at DayBaseColumn.
type WorkbookConfig struct {
	Path              string `mapstructure:"path" yaml:"path"`
	DescriptionColumn string `mapstructure:"description_column" yaml:"description_column"`
	TypeColumn        string `mapstructure:"type_column" yaml:"type_column"`
	DayBaseColumn     string `mapstructure:"day_base_column" yaml:"day_base_column"`
	StartRow          int    `mapstructure:"start_row" yaml:"start_row"`
	MaxRows           int    `mapstructure:"max_rows" yaml:"max_rows"`

	// PasswordKey is the keyring entry holding the sheet protection
	// password. The password itself never lives in the config file.
	PasswordKey string `mapstructure:"password_key" yaml:"password_key"`
}

// ObserverConfig holds settings for the lock-state observer.
type ObserverConfig struct {
	PollIntervalSec int `mapstructure:"poll_interval_sec" yaml:"poll_interval_sec"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	Database   DatabaseConfig   `mapstructure:"database" yaml:"database"`
	Accounting AccountingConfig `mapstructure:"accounting" yaml:"accounting"`
	Workbook   WorkbookConfig   `mapstructure:"workbook" yaml:"workbook"`
	Observer   ObserverConfig   `mapstructure:"observer" yaml:"observer"`
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/chronos/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(home, ".config", "chronos", "config.yaml")
}

// defaultDatabasePath returns ~/.local/share/chronos/chronos.db.
func defaultDatabasePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "chronos.db")
	}
	return filepath.Join(home, ".local", "share", "chronos", "chronos.db")
}

// defaultAppConfig returns a sensible default configuration.
func defaultAppConfig() *AppConfig {
	return &AppConfig{
		Database: DatabaseConfig{
			Path: defaultDatabasePath(),
		},
		Accounting: AccountingConfig{
			Workdays:         21,
			HoursPerDay:      8.8,
			FallbackBaseRate: 50,
		},
		Workbook: WorkbookConfig{
			DescriptionColumn: "B",
			TypeColumn:        "C",
			DayBaseColumn:     "D",
			StartRow:          13,
			MaxRows:           100,
			PasswordKey:       "workbook-password",
		},
		Observer: ObserverConfig{
			PollIntervalSec: 2,
		},
	}
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// If the file does not exist, it returns a default configuration.
func LoadConfig(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	// Set defaults so missing keys resolve to sensible values.
	v.SetDefault("database.path", defaultDatabasePath())
	v.SetDefault("accounting.workdays", 21)
	v.SetDefault("accounting.hours_per_day", 8.8)
	v.SetDefault("accounting.fallback_base_rate", 50)
	v.SetDefault("workbook.description_column", "B")
	v.SetDefault("workbook.type_column", "C")
	v.SetDefault("workbook.day_base_column", "D")
	v.SetDefault("workbook.start_row", 13)
	v.SetDefault("workbook.max_rows", 100)
	v.SetDefault("workbook.password_key", "workbook-password")
	v.SetDefault("observer.poll_interval_sec", 2)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(*os.PathError); ok {
			return defaultAppConfig(), nil
		}
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return defaultAppConfig(), nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := defaultAppConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	return cfg, nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("database", cfg.Database)
	v.Set("accounting", cfg.Accounting)
	v.Set("workbook", cfg.Workbook)
	v.Set("observer", cfg.Observer)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}

// Package config manages accentd configuration loading and watching.
// Files may be TOML, JSON or YAML (selected by extension); a missing
// file yields the built-in defaults. The Loader watches the file with
// fsnotify and reports changes to the caller.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"unicode/utf16"
)

// CurrentVersion is the config schema version written by this build.
const CurrentVersion = 1

// tooltipMaxUnits is the capacity of the tray tooltip in UTF-16 code
// units, excluding the nul terminator.
const tooltipMaxUnits = 127

// Config is the complete accentd configuration.
type Config struct {
	Version int           `toml:"version" json:"version" yaml:"version"`
	Tray    TrayConfig    `toml:"tray" json:"tray" yaml:"tray"`
	Logging LoggingConfig `toml:"logging" json:"logging" yaml:"logging"`
}

// TrayConfig configures the notification-area icon.
type TrayConfig struct {
	// Tooltip is the hover text on the tray icon. At most 127 UTF-16
	// code units; longer values are rejected by Validate.
	Tooltip string `toml:"tooltip" json:"tooltip" yaml:"tooltip"`

	// IconPath is an optional .ico file to use instead of the stock
	// application icon.
	IconPath string `toml:"icon_path" json:"icon_path" yaml:"icon_path"`
}

// LoggingConfig configures the structured logger.
type LoggingConfig struct {
	Level      string `toml:"level" json:"level" yaml:"level"`
	Format     string `toml:"format" json:"format" yaml:"format"`
	Output     string `toml:"output" json:"output" yaml:"output"`
	FilePath   string `toml:"file_path" json:"file_path" yaml:"file_path"`
	MaxSizeMB  int64  `toml:"max_size_mb" json:"max_size_mb" yaml:"max_size_mb"`
	MaxAgeDays int    `toml:"max_age_days" json:"max_age_days" yaml:"max_age_days"`
	MaxBackups int    `toml:"max_backups" json:"max_backups" yaml:"max_backups"`
	Compress   bool   `toml:"compress" json:"compress" yaml:"compress"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		Version: CurrentVersion,
		Tray: TrayConfig{
			Tooltip: "Italian accents (Ctrl+Alt+vowel)",
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "text",
			Output:     "stderr",
			MaxSizeMB:  10,
			MaxAgeDays: 30,
			MaxBackups: 3,
			Compress:   true,
		},
	}
}

// ConfigPath returns the default per-user configuration file path.
func ConfigPath() string {
	switch runtime.GOOS {
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData == "" {
			homeDir, _ := os.UserHomeDir()
			appData = filepath.Join(homeDir, "AppData", "Roaming")
		}
		return filepath.Join(appData, "accentd", "config.toml")
	case "darwin":
		homeDir, _ := os.UserHomeDir()
		return filepath.Join(homeDir, "Library", "Application Support", "accentd", "config.toml")
	default:
		configHome := os.Getenv("XDG_CONFIG_HOME")
		if configHome == "" {
			homeDir, _ := os.UserHomeDir()
			configHome = filepath.Join(homeDir, ".config")
		}
		return filepath.Join(configHome, "accentd", "config.toml")
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.Version <= 0 {
		return fmt.Errorf("config: version must be positive, got %d", c.Version)
	}
	if c.Version > CurrentVersion {
		return fmt.Errorf("config: version %d is newer than supported version %d", c.Version, CurrentVersion)
	}

	if c.Tray.Tooltip == "" {
		return fmt.Errorf("config: tray tooltip must not be empty")
	}
	if n := len(utf16.Encode([]rune(c.Tray.Tooltip))); n > tooltipMaxUnits {
		return fmt.Errorf("config: tray tooltip is %d UTF-16 units, limit is %d", n, tooltipMaxUnits)
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("config: unknown log level %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("config: unknown log format %q", c.Logging.Format)
	}
	switch c.Logging.Output {
	case "", "stderr", "file", "both":
	default:
		return fmt.Errorf("config: unknown log output %q", c.Logging.Output)
	}
	if c.Logging.MaxSizeMB < 0 {
		return fmt.Errorf("config: max_size_mb must not be negative")
	}
	if c.Logging.MaxAgeDays < 0 {
		return fmt.Errorf("config: max_age_days must not be negative")
	}
	if c.Logging.MaxBackups < 0 {
		return fmt.Errorf("config: max_backups must not be negative")
	}
	return nil
}

// ApplyEnvOverrides overlays ACCENTD_* environment variables onto the
// configuration. Overrides are applied before validation.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("ACCENTD_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("ACCENTD_LOG_OUTPUT"); v != "" {
		c.Logging.Output = v
	}
	if v := os.Getenv("ACCENTD_LOG_FORMAT"); v != "" {
		c.Logging.Format = v
	}
	if v := os.Getenv("ACCENTD_TRAY_TOOLTIP"); v != "" {
		c.Tray.Tooltip = v
	}
	if v := os.Getenv("ACCENTD_TRAY_ICON"); v != "" {
		c.Tray.IconPath = v
	}
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

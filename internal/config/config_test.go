package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, CurrentVersion, cfg.Version)
	assert.NotEmpty(t, cfg.Tray.Tooltip)
}

func TestLoadTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
version = 1

[tray]
tooltip = "custom tooltip"

[logging]
level = "debug"
format = "json"
output = "stderr"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := NewLoader(path).Load()
	require.NoError(t, err)
	assert.Equal(t, "custom tooltip", cfg.Tray.Tooltip)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
version: 1
tray:
  tooltip: yaml tooltip
logging:
  level: warn
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := NewLoader(path).Load()
	require.NoError(t, err)
	assert.Equal(t, "yaml tooltip", cfg.Tray.Tooltip)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestLoadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	content := `{"version": 1, "tray": {"tooltip": "json tooltip"}}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := NewLoader(path).Load()
	require.NoError(t, err)
	assert.Equal(t, "json tooltip", cfg.Tray.Tooltip)
	// Unspecified sections keep their defaults.
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "does-not-exist.toml")

	cfg, err := NewLoader(path).Load()
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Tray.Tooltip, cfg.Tray.Tooltip)
}

func TestLoadMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("not [valid toml"), 0o644))

	_, err := NewLoader(path).Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse")
}

func TestValidateTooltip(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Tray.Tooltip = ""
	require.Error(t, cfg.Validate())

	// 127 ASCII characters is exactly the limit.
	cfg.Tray.Tooltip = strings.Repeat("a", 127)
	require.NoError(t, cfg.Validate())

	cfg.Tray.Tooltip = strings.Repeat("a", 128)
	require.Error(t, cfg.Validate())

	// Supplementary-plane characters take two UTF-16 units each, so 64
	// of them exceed the limit at only 64 runes.
	cfg.Tray.Tooltip = strings.Repeat("\U0001D11E", 64)
	require.Error(t, cfg.Validate())
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero version", func(c *Config) { c.Version = 0 }},
		{"future version", func(c *Config) { c.Version = CurrentVersion + 1 }},
		{"bad level", func(c *Config) { c.Logging.Level = "verbose" }},
		{"bad format", func(c *Config) { c.Logging.Format = "xml" }},
		{"bad output", func(c *Config) { c.Logging.Output = "syslog" }},
		{"negative size", func(c *Config) { c.Logging.MaxSizeMB = -1 }},
		{"negative age", func(c *Config) { c.Logging.MaxAgeDays = -1 }},
		{"negative backups", func(c *Config) { c.Logging.MaxBackups = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("ACCENTD_LOG_LEVEL", "debug")
	t.Setenv("ACCENTD_TRAY_TOOLTIP", "from env")

	cfg := DefaultConfig()
	cfg.ApplyEnvOverrides()
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "from env", cfg.Tray.Tooltip)
}

func TestEnvOverridesAppliedOnLoad(t *testing.T) {
	t.Setenv("ACCENTD_LOG_LEVEL", "nonsense")

	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, SaveConfig(DefaultConfig(), path))

	// Overrides land before validation, so a bad one fails the load.
	_, err := NewLoader(path).Load()
	require.Error(t, err)
}

func TestLoadOrCreate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.toml")

	loader, created, err := LoadOrCreate(path)
	require.NoError(t, err)
	defer loader.Close()
	assert.True(t, created)

	_, err = os.Stat(path)
	require.NoError(t, err)

	// The second run finds the file.
	loader2, created2, err := LoadOrCreate(path)
	require.NoError(t, err)
	defer loader2.Close()
	assert.False(t, created2)
	assert.Equal(t, DefaultConfig().Tray.Tooltip, loader2.Current().Tray.Tooltip)
}

func TestWatchReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, SaveConfig(DefaultConfig(), path))

	loader := NewLoader(path)
	_, err := loader.Load()
	require.NoError(t, err)
	defer loader.Close()

	changed := make(chan *Config, 1)
	require.NoError(t, loader.Watch(func(cfg *Config) {
		select {
		case changed <- cfg:
		default:
		}
	}))

	updated := DefaultConfig()
	updated.Tray.Tooltip = "updated tooltip"
	require.NoError(t, SaveConfig(updated, path))

	select {
	case cfg := <-changed:
		assert.Equal(t, "updated tooltip", cfg.Tray.Tooltip)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for reload")
	}

	assert.Equal(t, "updated tooltip", loader.Current().Tray.Tooltip)
}

func TestWatchInvalidReloadKeepsPrevious(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, SaveConfig(DefaultConfig(), path))

	loader := NewLoader(path)
	_, err := loader.Load()
	require.NoError(t, err)
	defer loader.Close()

	require.NoError(t, loader.Watch(func(*Config) {
		t.Error("onChange called for an invalid config")
	}))

	require.NoError(t, os.WriteFile(path, []byte("not [valid toml"), 0o644))

	select {
	case err := <-loader.Errors():
		assert.Contains(t, err.Error(), "reload")
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for reload error")
	}

	assert.Equal(t, DefaultConfig().Tray.Tooltip, loader.Current().Tray.Tooltip)
}

func TestSaveConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg := DefaultConfig()
	cfg.Tray.Tooltip = "round trip"
	cfg.Logging.Level = "debug"
	require.NoError(t, SaveConfig(cfg, path))

	loaded, err := NewLoader(path).Load()
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

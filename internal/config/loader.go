package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"
)

// debounceDelay coalesces the burst of fsnotify events most editors
// produce for a single save.
const debounceDelay = 100 * time.Millisecond

// Loader loads a configuration file and optionally watches it for
// changes.
type Loader struct {
	path string

	mu      sync.RWMutex
	current *Config

	watcher  *fsnotify.Watcher
	onChange func(*Config)
	errors   chan error
	done     chan struct{}
	closeOne sync.Once
}

// NewLoader creates a loader for the given path. An empty path means
// the platform default location.
func NewLoader(path string) *Loader {
	if path == "" {
		path = ConfigPath()
	}
	return &Loader{
		path:   path,
		errors: make(chan error, 8),
		done:   make(chan struct{}),
	}
}

// Path returns the configuration file path in use.
func (l *Loader) Path() string {
	return l.path
}

// Load reads the file, applies environment overrides and validates.
// A missing file yields the defaults.
func (l *Loader) Load() (*Config, error) {
	cfg, err := loadFromFile(l.path)
	if err != nil {
		return nil, err
	}

	cfg.ApplyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	l.mu.Lock()
	l.current = cfg
	l.mu.Unlock()
	return cfg.Clone(), nil
}

// Current returns the most recently loaded configuration.
func (l *Loader) Current() *Config {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if l.current == nil {
		return DefaultConfig()
	}
	return l.current.Clone()
}

// Watch starts watching the file's directory and calls onChange with
// the reloaded configuration after each valid change. Invalid reloads
// are reported on Errors and the previous configuration stays active.
func (l *Loader) Watch(onChange func(*Config)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("config: create watcher: %w", err)
	}

	// Watch the directory, not the file: editors replace files on
	// save and a file watch dies with the old inode.
	dir := filepath.Dir(l.path)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return fmt.Errorf("config: watch %s: %w", dir, err)
	}

	l.watcher = watcher
	l.onChange = onChange
	go l.watchLoop()
	return nil
}

func (l *Loader) watchLoop() {
	base := filepath.Base(l.path)
	var timer *time.Timer

	for {
		select {
		case <-l.done:
			return

		case ev, ok := <-l.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(ev.Name) != base {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debounceDelay, l.reload)

		case err, ok := <-l.watcher.Errors:
			if !ok {
				return
			}
			l.reportError(fmt.Errorf("config: watcher: %w", err))
		}
	}
}

func (l *Loader) reload() {
	cfg, err := l.Load()
	if err != nil {
		l.reportError(fmt.Errorf("config: reload: %w", err))
		return
	}
	if l.onChange != nil {
		l.onChange(cfg)
	}
}

func (l *Loader) reportError(err error) {
	select {
	case l.errors <- err:
	default:
	}
}

// Errors returns the channel watch failures are reported on.
func (l *Loader) Errors() <-chan error {
	return l.errors
}

// Close stops the watcher. Safe to call more than once.
func (l *Loader) Close() error {
	var err error
	l.closeOne.Do(func() {
		close(l.done)
		if l.watcher != nil {
			err = l.watcher.Close()
		}
	})
	return err
}

// loadFromFile reads and decodes a configuration file by extension.
// A missing file returns the defaults.
func loadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	cfg := DefaultConfig()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		err = toml.Unmarshal(data, cfg)
	case ".json":
		err = json.Unmarshal(data, cfg)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	default:
		// Unknown extension: try TOML first, then the others.
		if err = toml.Unmarshal(data, cfg); err != nil {
			cfg = DefaultConfig()
			if jsonErr := json.Unmarshal(data, cfg); jsonErr == nil {
				err = nil
			} else {
				cfg = DefaultConfig()
				err = yaml.Unmarshal(data, cfg)
			}
		}
	}
	if err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

// SaveConfig writes cfg to path as TOML, creating parent directories.
func SaveConfig(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("config: create directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("config: create %s: %w", path, err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return fmt.Errorf("config: encode: %w", err)
	}
	return nil
}

// LoadOrCreate loads the configuration at path, writing the defaults
// there first when the file does not exist. The second return reports
// whether a new file was created.
func LoadOrCreate(path string) (*Loader, bool, error) {
	l := NewLoader(path)

	created := false
	if _, err := os.Stat(l.path); os.IsNotExist(err) {
		if err := SaveConfig(DefaultConfig(), l.path); err != nil {
			return nil, false, err
		}
		created = true
	}

	if _, err := l.Load(); err != nil {
		return nil, created, err
	}
	return l, created, nil
}

// Command accentd is a small Windows resident utility that turns
// Ctrl+Alt+vowel chords into the corresponding Italian grave-accented
// vowels (è à ì ò ù) by injecting synthetic keystrokes into whatever
// application has focus. It lives in the notification area; its tray
// menu's Exit entry is the only way to stop it.
package main

import (
	"flag"
	"fmt"
	"os"

	"accentd/internal/config"
	"accentd/internal/logging"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "path to configuration file (default: per-user location)")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("accentd %s\n", version)
		return 0
	}

	loader, created, err := config.LoadOrCreate(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "accentd: %v\n", err)
		return 1
	}
	defer loader.Close()

	cfg := loader.Current()

	log, err := newLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "accentd: %v\n", err)
		return 1
	}
	defer log.Close()
	logging.SetDefault(log)

	if created {
		log.Info("wrote default configuration", "path", loader.Path())
	}
	log.Info("starting", "version", version, "config", loader.Path())

	return runMain(loader, cfg, log)
}

// newLogger builds the logger from the loaded configuration. Level and
// format strings were validated at load time.
func newLogger(cfg *config.Config) (*logging.Logger, error) {
	level, err := logging.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return nil, err
	}
	format, err := logging.ParseFormat(cfg.Logging.Format)
	if err != nil {
		return nil, err
	}

	lc := logging.DefaultConfig()
	lc.Level = level
	lc.Format = format
	if cfg.Logging.Output != "" {
		lc.Output = cfg.Logging.Output
	}
	if cfg.Logging.FilePath != "" {
		lc.FilePath = cfg.Logging.FilePath
	}
	lc.MaxSize = cfg.Logging.MaxSizeMB
	lc.MaxAge = cfg.Logging.MaxAgeDays
	lc.MaxBackups = cfg.Logging.MaxBackups
	lc.Compress = cfg.Logging.Compress
	return logging.New(lc)
}

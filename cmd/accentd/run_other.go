//go:build !windows

package main

import (
	"fmt"
	"os"

	"accentd/internal/config"
	"accentd/internal/logging"
)

func runMain(*config.Loader, *config.Config, *logging.Logger) int {
	fmt.Fprintln(os.Stderr, "accentd: global hotkeys and the notification area require Windows")
	return 1
}

//go:build !windows

package tray

import "errors"

// ErrUnsupported is returned on platforms without a Windows
// notification area.
var ErrUnsupported = errors.New("tray: notification-area icon not supported on this platform")

// NotifyIcon is a stub on non-Windows platforms.
type NotifyIcon struct{}

// New returns a Presence whose operations fail with ErrUnsupported.
func New(string) *NotifyIcon { return &NotifyIcon{} }

func (*NotifyIcon) Show(uintptr, string) error          { return ErrUnsupported }
func (*NotifyIcon) UpdateTooltip(uintptr, string) error { return ErrUnsupported }

func (*NotifyIcon) OpenContextMenu(uintptr) (Command, error) {
	return CommandNone, ErrUnsupported
}

func (*NotifyIcon) Hide(uintptr) {}

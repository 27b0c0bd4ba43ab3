//go:build windows

package keymap

import (
	"accentd/internal/winapi"
)

// SystemRegistrar registers hotkeys with the Windows global-hotkey
// subsystem. The OS enforces exclusivity: registering a combination
// another process (or another id) already owns fails.
type SystemRegistrar struct{}

func (SystemRegistrar) Register(hwnd uintptr, b Binding) error {
	return winapi.RegisterHotKey(hwnd, int32(b.ID), uint32(b.Mods), b.Key)
}

func (SystemRegistrar) Unregister(hwnd uintptr, id int) error {
	return winapi.UnregisterHotKey(hwnd, int32(id))
}

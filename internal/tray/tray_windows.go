//go:build windows

package tray

import (
	"errors"
	"fmt"
	"unicode/utf16"
	"unsafe"

	"golang.org/x/sys/windows"

	"accentd/internal/winapi"
)

// NotifyIcon is the Shell_NotifyIconW-backed Presence implementation.
type NotifyIcon struct {
	iconPath string
	icon     windows.Handle
	added    bool
}

// New returns a tray icon that loads its image from iconPath, falling
// back to the stock application icon when the path is empty or the
// file cannot be loaded.
func New(iconPath string) *NotifyIcon {
	return &NotifyIcon{iconPath: iconPath}
}

func (n *NotifyIcon) data(hwnd uintptr) winapi.NOTIFYICONDATA {
	var nid winapi.NOTIFYICONDATA
	nid.Size = uint32(unsafe.Sizeof(nid))
	nid.Wnd = windows.Handle(hwnd)
	nid.ID = IconID
	return nid
}

func setTooltip(nid *winapi.NOTIFYICONDATA, text string) {
	units := utf16.Encode([]rune(text))
	if len(units) > TooltipLimit-1 {
		units = units[:TooltipLimit-1]
	}
	copy(nid.Tip[:], units)
	nid.Tip[len(units)] = 0
}

// Show adds the icon. Failure is fatal to the caller: without the
// icon there is no way to reach the Exit command.
func (n *NotifyIcon) Show(hwnd uintptr, tooltip string) error {
	n.icon = n.loadIcon()

	nid := n.data(hwnd)
	nid.Flags = winapi.NIF_MESSAGE | winapi.NIF_ICON | winapi.NIF_TIP
	nid.CallbackMessage = CallbackMessage
	nid.Icon = n.icon
	setTooltip(&nid, tooltip)

	if !winapi.ShellNotifyIcon(winapi.NIM_ADD, &nid) {
		return errors.New("tray: Shell_NotifyIconW(NIM_ADD) failed")
	}
	n.added = true
	return nil
}

// loadIcon is best-effort: the configured .ico file when one is set,
// otherwise the stock application icon.
func (n *NotifyIcon) loadIcon() windows.Handle {
	if n.iconPath != "" {
		if h, err := winapi.LoadIconFile(n.iconPath); err == nil {
			return h
		}
	}
	return winapi.LoadStockIcon(winapi.IDI_APPLICATION)
}

// UpdateTooltip modifies the tooltip text. Callers treat failure as
// non-critical.
func (n *NotifyIcon) UpdateTooltip(hwnd uintptr, tooltip string) error {
	nid := n.data(hwnd)
	nid.Flags = winapi.NIF_TIP
	setTooltip(&nid, tooltip)

	if !winapi.ShellNotifyIcon(winapi.NIM_MODIFY, &nid) {
		return errors.New("tray: Shell_NotifyIconW(NIM_MODIFY) failed")
	}
	return nil
}

// OpenContextMenu builds the transient menu, shows it at the cursor
// and blocks until the user picks an entry or dismisses it. The menu
// handle is destroyed on every return path.
func (n *NotifyIcon) OpenContextMenu(hwnd uintptr) (Command, error) {
	menu, err := winapi.CreatePopupMenu()
	if err != nil {
		return CommandNone, fmt.Errorf("tray: CreatePopupMenu: %w", err)
	}
	defer winapi.DestroyMenu(menu)

	label, err := windows.UTF16PtrFromString("Exit")
	if err != nil {
		return CommandNone, err
	}
	if err := winapi.AppendMenu(menu, winapi.MF_STRING, uintptr(CommandExit), label); err != nil {
		return CommandNone, fmt.Errorf("tray: AppendMenuW: %w", err)
	}
	winapi.SetMenuDefaultItem(menu, uint32(CommandExit))

	// The owning window must be foreground or the menu will not
	// dismiss when the user clicks elsewhere.
	winapi.SetForegroundWindow(hwnd)

	pt := winapi.GetCursorPos()
	flags := uint32(winapi.TPM_LEFTALIGN | winapi.TPM_BOTTOMALIGN |
		winapi.TPM_RIGHTBUTTON | winapi.TPM_RETURNCMD)
	selected := winapi.TrackPopupMenu(menu, flags, pt.X, pt.Y, hwnd)

	return Command(selected), nil
}

// Hide removes the icon. Idempotent: calling it when the icon is
// absent does nothing.
func (n *NotifyIcon) Hide(hwnd uintptr) {
	if !n.added {
		return
	}
	nid := n.data(hwnd)
	winapi.ShellNotifyIcon(winapi.NIM_DELETE, &nid)
	if n.icon != 0 {
		winapi.DestroyIcon(n.icon)
		n.icon = 0
	}
	n.added = false
}

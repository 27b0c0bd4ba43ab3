// Package tray manages the persistent notification-area icon and its
// transient context menu. The icon is the only user-visible surface of
// the process and its "Exit" entry the only way to stop it, so adding
// the icon is a hard requirement while tooltip updates stay
// best-effort.
package tray

// Command identifies a context-menu entry. Values land in the low
// word of WM_COMMAND, so they stay within uint16 range.
type Command uint16

const (
	// CommandNone means the menu was dismissed without a selection.
	CommandNone Command = 0

	// CommandExit is the single menu entry: quit the process.
	CommandExit Command = 1000
)

// CallbackMessage is the application-defined message (WM_USER+1) the
// shell delivers tray events through; it is registered with the icon
// and routed by the window procedure.
const CallbackMessage uint32 = 0x0400 + 1

// CallbackRightUp is the WM_RBUTTONUP sub-event code carried in the
// callback's lParam: the right-click-release gesture that opens the
// context menu.
const CallbackRightUp uint32 = 0x0205

// IconID is the icon identifier registered with the shell. At most
// one icon per window is active, and id 1 is reserved for it.
const IconID = 1

// TooltipLimit is the capacity of the icon's tooltip field in UTF-16
// code units, nul terminator included. Longer text is truncated.
const TooltipLimit = 128

// Presence is the tray-icon lifecycle. Show is called exactly once
// after the owning window exists, Hide once during teardown (extra
// calls are no-ops). OpenContextMenu blocks the calling thread until
// the user selects an entry or dismisses the menu; the menu object
// never outlives the call.
type Presence interface {
	Show(hwnd uintptr, tooltip string) error
	UpdateTooltip(hwnd uintptr, tooltip string) error
	OpenContextMenu(hwnd uintptr) (Command, error)
	Hide(hwnd uintptr)
}

// Package dispatch is the single-threaded router at the center of the
// program: every OS notification the hidden window receives is
// translated into a tagged Message and handed to the Dispatcher,
// which invokes the hotkey table, the input injector or the tray
// controller and decides when the message loop should stop.
//
// The Dispatcher owns no long-lived state of its own. It runs on the
// message-loop thread only, so its collaborators need no locking; the
// only blocking call it makes is the modal context menu, which
// suspends the one thread until the user is done, as the OS's
// synchronous menu contract expects.
package dispatch

import (
	"fmt"
	"log/slog"

	"accentd/internal/inject"
	"accentd/internal/keymap"
	"accentd/internal/tray"
)

// Window-message numbers the dispatcher routes. The values are the
// WinUser.h constants; keeping them here lets the routing logic be
// exercised on any platform.
const (
	wmDestroy = 0x0002
	wmCommand = 0x0111
	wmHotkey  = 0x0312

	// WMReload (WM_APP+1) is posted by the lifecycle shell when the
	// configuration file changes on disk, so the change is applied on
	// the loop thread instead of the watcher goroutine.
	WMReload uint32 = 0x8000 + 1
)

// Kind tags a Message.
type Kind int

const (
	// KindHotkey: a registered global hotkey fired.
	KindHotkey Kind = iota
	// KindTray: the notification-area icon delivered a sub-event.
	KindTray
	// KindCommand: a menu command was selected.
	KindCommand
	// KindDestroy: the window is being torn down.
	KindDestroy
	// KindReload: the configuration file changed.
	KindReload
)

// Message is one OS notification, carrying only the fields relevant
// to its kind.
type Message struct {
	Kind Kind

	// HotkeyID identifies the binding that fired (KindHotkey).
	HotkeyID int

	// TrayEvent is the sub-event code from the tray callback
	// (KindTray).
	TrayEvent uint32

	// Command is the selected menu command (KindCommand).
	Command tray.Command
}

// Translate maps a raw window-procedure triplet onto a Message.
// Messages the dispatcher does not route report ok=false and fall
// through to default OS handling.
func Translate(msg uint32, wparam, lparam uintptr) (Message, bool) {
	switch msg {
	case wmHotkey:
		return Message{Kind: KindHotkey, HotkeyID: int(wparam)}, true
	case tray.CallbackMessage:
		return Message{Kind: KindTray, TrayEvent: uint32(lparam)}, true
	case wmCommand:
		return Message{Kind: KindCommand, Command: tray.Command(wparam & 0xFFFF)}, true
	case wmDestroy:
		return Message{Kind: KindDestroy}, true
	case WMReload:
		return Message{Kind: KindReload}, true
	}
	return Message{}, false
}

// Dispatcher routes messages to its collaborators. All fields except
// Reload and Log must be set.
type Dispatcher struct {
	Keys     *keymap.Table
	Injector inject.Injector
	Tray     tray.Presence

	// PostQuit places the quit sentinel in the message queue.
	PostQuit func(code int32)

	// Fatal reports an unrecoverable runtime error (the visible
	// failure surface) and arranges process exit.
	Fatal func(err error)

	// Reload re-applies the configuration; nil when hot reload is
	// not active.
	Reload func()

	Log *slog.Logger
}

// Handle routes one message. It reports whether the message was
// consumed; unconsumed messages go to the default OS handler.
func (d *Dispatcher) Handle(hwnd uintptr, m Message) bool {
	switch m.Kind {
	case KindHotkey:
		ch, ok := d.Keys.Lookup(m.HotkeyID)
		if !ok {
			d.logger().Debug("hotkey fired with no binding", "id", m.HotkeyID)
			return true
		}
		if err := d.Injector.Inject(ch); err != nil {
			// Swallowing this would make every future keypress
			// succeed-or-fail unpredictably.
			d.Fatal(fmt.Errorf("dispatch: inject %q: %w", ch, err))
			return true
		}
		d.logger().Debug("injected", "id", m.HotkeyID, "char", string(ch))
		return true

	case KindTray:
		if m.TrayEvent != tray.CallbackRightUp {
			return true
		}
		cmd, err := d.Tray.OpenContextMenu(hwnd)
		if err != nil {
			d.Fatal(fmt.Errorf("dispatch: context menu: %w", err))
			return true
		}
		if cmd == tray.CommandExit {
			d.PostQuit(0)
		}
		return true

	case KindCommand:
		if m.Command == tray.CommandExit {
			d.PostQuit(0)
			return true
		}
		return false

	case KindDestroy:
		d.Tray.Hide(hwnd)
		d.PostQuit(0)
		return true

	case KindReload:
		if d.Reload != nil {
			d.Reload()
		}
		return true
	}
	return false
}

func (d *Dispatcher) logger() *slog.Logger {
	if d.Log != nil {
		return d.Log
	}
	return slog.Default()
}

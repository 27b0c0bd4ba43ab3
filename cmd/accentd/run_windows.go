//go:build windows

package main

import (
	"fmt"
	"runtime"
	"unsafe"

	"golang.org/x/sys/windows"

	"accentd/internal/config"
	"accentd/internal/dispatch"
	"accentd/internal/inject"
	"accentd/internal/keymap"
	"accentd/internal/logging"
	"accentd/internal/tray"
	"accentd/internal/winapi"
)

const (
	className  = "AccentdHotkeyWindow"
	windowName = "accentd"
)

// active is the dispatcher the window procedure routes to. It is only
// touched from the message-loop thread, which LockOSThread pins for
// the life of runMain; it is cleared before teardown so late messages
// fall through to the default handler.
var active *dispatch.Dispatcher

// NewCallback requires every parameter to be uintptr-sized.
func wndProc(hwnd, msg, wparam, lparam uintptr) uintptr {
	if active != nil {
		if m, ok := dispatch.Translate(uint32(msg), wparam, lparam); ok {
			if active.Handle(hwnd, m) {
				return 0
			}
		}
	}
	return winapi.DefWindowProc(hwnd, uint32(msg), wparam, lparam)
}

// runMain owns the whole Windows lifecycle: hidden window, hotkey
// registration, tray icon, message loop, teardown. Everything runs on
// one OS thread; hotkeys and the window procedure are bound to the
// thread that created them.
func runMain(loader *config.Loader, cfg *config.Config, log *logging.Logger) int {
	runtime.LockOSThread()

	// Startup failures surface in a message box: the process has no
	// console to print to when launched from the shell.
	fail := func(err error) int {
		log.Error("startup failed", "error", err)
		winapi.MessageBox(0, err.Error(), "accentd", winapi.MB_OK|winapi.MB_ICONERROR)
		return 1
	}

	instance, err := winapi.GetModuleHandle()
	if err != nil {
		return fail(fmt.Errorf("GetModuleHandleW: %w", err))
	}

	clsName, err := windows.UTF16PtrFromString(className)
	if err != nil {
		return fail(err)
	}
	wndName, err := windows.UTF16PtrFromString(windowName)
	if err != nil {
		return fail(err)
	}

	wc := winapi.WNDCLASSEX{
		WndProc:   windows.NewCallback(wndProc),
		Instance:  instance,
		ClassName: clsName,
	}
	wc.Size = uint32(unsafe.Sizeof(wc))
	if _, err := winapi.RegisterClassEx(&wc); err != nil {
		return fail(fmt.Errorf("RegisterClassExW: %w", err))
	}
	defer winapi.UnregisterClass(clsName, instance)

	// Message-only would also work, but a plain hidden tool window
	// keeps the tray callback and TrackPopupMenu happy.
	hwnd, err := winapi.CreateWindowEx(winapi.WS_EX_TOOLWINDOW, clsName, wndName, 0, instance)
	if err != nil {
		return fail(fmt.Errorf("CreateWindowExW: %w", err))
	}
	defer winapi.DestroyWindow(hwnd)
	defer func() { active = nil }()

	table, err := keymap.NewTable(keymap.DefaultBindings())
	if err != nil {
		return fail(err)
	}

	// UnregisterAll is deferred before RegisterAll so a partial
	// registration is still released on the failure path.
	reg := keymap.SystemRegistrar{}
	defer table.UnregisterAll(hwnd, reg)
	if err := table.RegisterAll(hwnd, reg); err != nil {
		return fail(err)
	}
	log.Info("hotkeys registered", "count", table.Len())

	icon := tray.New(cfg.Tray.IconPath)
	if err := icon.Show(hwnd, cfg.Tray.Tooltip); err != nil {
		return fail(err)
	}
	defer icon.Hide(hwnd)

	exitCode := 0
	fatal := func(err error) {
		log.Error("fatal error", "error", err)
		winapi.MessageBox(0, err.Error(), "accentd", winapi.MB_OK|winapi.MB_ICONERROR)
		exitCode = 1
		// Quit through the queue so the deferred teardown runs.
		winapi.PostQuitMessage(1)
	}

	d := &dispatch.Dispatcher{
		Keys:     table,
		Injector: inject.New(),
		Tray:     icon,
		PostQuit: winapi.PostQuitMessage,
		Fatal:    fatal,
		Log:      log.Logger,
		Reload: func() {
			applyConfig(loader.Current(), hwnd, icon, log)
		},
	}
	active = d

	// Config changes are posted to the queue so they are applied on
	// this thread, between messages, never concurrently with them.
	if err := loader.Watch(func(*config.Config) {
		winapi.PostMessage(hwnd, dispatch.WMReload, 0, 0)
	}); err != nil {
		log.Warn("configuration watching unavailable", "error", err)
	}
	go func() {
		for err := range loader.Errors() {
			log.Warn("configuration reload failed", "error", err)
		}
	}()

	log.Info("ready", "tooltip", cfg.Tray.Tooltip)

	var msg winapi.MSG
	for {
		r := winapi.GetMessage(&msg)
		if r == 0 {
			break
		}
		if r == -1 {
			fatal(fmt.Errorf("GetMessageW failed"))
			break
		}
		winapi.TranslateMessage(&msg)
		winapi.DispatchMessage(&msg)
	}

	log.Info("exiting", "code", exitCode)
	return exitCode
}

// applyConfig applies a reloaded configuration on the loop thread.
// Tooltip and log level are the only runtime-changeable settings; the
// hotkey table is fixed for the process lifetime.
func applyConfig(cfg *config.Config, hwnd uintptr, icon *tray.NotifyIcon, log *logging.Logger) {
	if err := icon.UpdateTooltip(hwnd, cfg.Tray.Tooltip); err != nil {
		log.Debug("tooltip update failed", "error", err)
	}
	if level, err := logging.ParseLevel(cfg.Logging.Level); err == nil {
		log.SetLevel(level)
	}
	log.Info("configuration reloaded")
}

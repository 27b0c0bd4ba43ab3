//go:build windows

// Package winapi consolidates the user32/shell32/kernel32 entry points
// the rest of the program needs: window-class and window management,
// the message pump, global hotkeys, synthetic input, the notification
// area and popup menus. Everything is loaded lazily so a missing
// export surfaces on first use, not at startup.
package winapi

import (
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	user32   = windows.NewLazySystemDLL("user32.dll")
	shell32  = windows.NewLazySystemDLL("shell32.dll")
	kernel32 = windows.NewLazySystemDLL("kernel32.dll")

	procRegisterClassExW    = user32.NewProc("RegisterClassExW")
	procUnregisterClassW    = user32.NewProc("UnregisterClassW")
	procCreateWindowExW     = user32.NewProc("CreateWindowExW")
	procDestroyWindow       = user32.NewProc("DestroyWindow")
	procDefWindowProcW      = user32.NewProc("DefWindowProcW")
	procGetMessageW         = user32.NewProc("GetMessageW")
	procTranslateMessage    = user32.NewProc("TranslateMessage")
	procDispatchMessageW    = user32.NewProc("DispatchMessageW")
	procPostMessageW        = user32.NewProc("PostMessageW")
	procPostQuitMessage     = user32.NewProc("PostQuitMessage")
	procRegisterHotKey      = user32.NewProc("RegisterHotKey")
	procUnregisterHotKey    = user32.NewProc("UnregisterHotKey")
	procSendInput           = user32.NewProc("SendInput")
	procCreatePopupMenu     = user32.NewProc("CreatePopupMenu")
	procAppendMenuW         = user32.NewProc("AppendMenuW")
	procSetMenuDefaultItem  = user32.NewProc("SetMenuDefaultItem")
	procTrackPopupMenu      = user32.NewProc("TrackPopupMenu")
	procDestroyMenu         = user32.NewProc("DestroyMenu")
	procGetCursorPos        = user32.NewProc("GetCursorPos")
	procSetForegroundWindow = user32.NewProc("SetForegroundWindow")
	procLoadImageW          = user32.NewProc("LoadImageW")
	procLoadIconW           = user32.NewProc("LoadIconW")
	procDestroyIcon         = user32.NewProc("DestroyIcon")
	procMessageBoxW         = user32.NewProc("MessageBoxW")

	procShellNotifyIconW = shell32.NewProc("Shell_NotifyIconW")

	procGetModuleHandleW = kernel32.NewProc("GetModuleHandleW")
)

// Window messages and styles.
const (
	WM_DESTROY = 0x0002
	WM_COMMAND = 0x0111
	WM_HOTKEY  = 0x0312
	WM_USER    = 0x0400
	WM_APP     = 0x8000

	WS_EX_TOOLWINDOW = 0x00000080
)

// Shell_NotifyIconW operations and flags.
const (
	NIM_ADD    = 0x00000000
	NIM_MODIFY = 0x00000001
	NIM_DELETE = 0x00000002

	NIF_MESSAGE = 0x00000001
	NIF_ICON    = 0x00000002
	NIF_TIP     = 0x00000004
)

// Menu construction and TrackPopupMenu flags.
const (
	MF_STRING = 0x00000000

	TPM_LEFTALIGN   = 0x0000
	TPM_BOTTOMALIGN = 0x0020
	TPM_RIGHTBUTTON = 0x0002
	TPM_RETURNCMD   = 0x0100
)

// Icon loading.
const (
	IMAGE_ICON      = 1
	LR_LOADFROMFILE = 0x00000010
	LR_DEFAULTSIZE  = 0x00000040

	IDI_APPLICATION = 32512
)

// MessageBoxW flags.
const (
	MB_OK        = 0x00000000
	MB_ICONERROR = 0x00000010
)

// SendInput event types and flags.
const (
	INPUT_KEYBOARD = 1

	KEYEVENTF_KEYUP   = 0x0002
	KEYEVENTF_UNICODE = 0x0004
)

type WNDCLASSEX struct {
	Size       uint32
	Style      uint32
	WndProc    uintptr
	ClsExtra   int32
	WndExtra   int32
	Instance   windows.Handle
	Icon       windows.Handle
	Cursor     windows.Handle
	Background windows.Handle
	MenuName   *uint16
	ClassName  *uint16
	IconSm     windows.Handle
}

type POINT struct {
	X int32
	Y int32
}

type MSG struct {
	Wnd     windows.Handle
	Message uint32
	WParam  uintptr
	LParam  uintptr
	Time    uint32
	Pt      POINT
}

type NOTIFYICONDATA struct {
	Size            uint32
	Wnd             windows.Handle
	ID              uint32
	Flags           uint32
	CallbackMessage uint32
	Icon            windows.Handle
	Tip             [128]uint16
	State           uint32
	StateMask       uint32
	Info            [256]uint16
	TimeoutVersion  uint32
	InfoTitle       [64]uint16
	InfoFlags       uint32
	GuidItem        windows.GUID
	BalloonIcon     windows.Handle
}

type KEYBDINPUT struct {
	Vk        uint16
	Scan      uint16
	Flags     uint32
	Time      uint32
	ExtraInfo uintptr
}

// INPUT mirrors the Win32 INPUT struct for keyboard events on 64-bit
// Windows: the union is aligned to 8 bytes and padded to the size of
// its largest member (MOUSEINPUT).
type INPUT struct {
	Type uint32
	_    uint32
	Ki   KEYBDINPUT
	_    uint64
}

// GetModuleHandle returns the handle of the current module.
func GetModuleHandle() (windows.Handle, error) {
	h, _, err := procGetModuleHandleW.Call(0)
	if h == 0 {
		return 0, err
	}
	return windows.Handle(h), nil
}

// RegisterClassEx registers a window class, returning its atom.
func RegisterClassEx(wc *WNDCLASSEX) (uint16, error) {
	atom, _, err := procRegisterClassExW.Call(uintptr(unsafe.Pointer(wc)))
	if atom == 0 {
		return 0, err
	}
	return uint16(atom), nil
}

// UnregisterClass releases a window class. Teardown only; errors are
// ignored because the process is exiting.
func UnregisterClass(className *uint16, instance windows.Handle) {
	procUnregisterClassW.Call(uintptr(unsafe.Pointer(className)), uintptr(instance))
}

// CreateWindowEx creates a window and returns its handle.
func CreateWindowEx(exStyle uint32, className, windowName *uint16, style uint32, instance windows.Handle) (uintptr, error) {
	hwnd, _, err := procCreateWindowExW.Call(
		uintptr(exStyle),
		uintptr(unsafe.Pointer(className)),
		uintptr(unsafe.Pointer(windowName)),
		uintptr(style),
		0, 0, 0, 0,
		0, 0, uintptr(instance), 0,
	)
	if hwnd == 0 {
		return 0, err
	}
	return hwnd, nil
}

// DestroyWindow destroys a window, delivering WM_DESTROY to its
// window procedure before returning.
func DestroyWindow(hwnd uintptr) {
	procDestroyWindow.Call(hwnd)
}

// DefWindowProc forwards an unhandled message to the default handler.
func DefWindowProc(hwnd uintptr, msg uint32, wparam, lparam uintptr) uintptr {
	r, _, _ := procDefWindowProcW.Call(hwnd, uintptr(msg), wparam, lparam)
	return r
}

// GetMessage blocks for the next queued message. Returns 0 on
// WM_QUIT, -1 on error, anything else for a retrieved message.
func GetMessage(m *MSG) int32 {
	r, _, _ := procGetMessageW.Call(uintptr(unsafe.Pointer(m)), 0, 0, 0)
	return int32(r)
}

func TranslateMessage(m *MSG) {
	procTranslateMessage.Call(uintptr(unsafe.Pointer(m)))
}

func DispatchMessage(m *MSG) {
	procDispatchMessageW.Call(uintptr(unsafe.Pointer(m)))
}

// PostMessage queues a message for the window. Safe to call from any
// thread; this is how background goroutines hand work to the loop.
func PostMessage(hwnd uintptr, msg uint32, wparam, lparam uintptr) bool {
	r, _, _ := procPostMessageW.Call(hwnd, uintptr(msg), wparam, lparam)
	return r != 0
}

// PostQuitMessage places the quit sentinel in the queue. Messages
// posted before it are drained first (the queue is FIFO).
func PostQuitMessage(code int32) {
	procPostQuitMessage.Call(uintptr(code))
}

// RegisterHotKey claims a system-wide modifier+key combination for
// the window under the given id. Fails if any process already owns
// the combination.
func RegisterHotKey(hwnd uintptr, id int32, mods, vk uint32) error {
	r, _, err := procRegisterHotKey.Call(hwnd, uintptr(id), uintptr(mods), uintptr(vk))
	if r == 0 {
		return err
	}
	return nil
}

// UnregisterHotKey releases a hotkey id. Releasing an id that was
// never registered fails benignly.
func UnregisterHotKey(hwnd uintptr, id int32) error {
	r, _, err := procUnregisterHotKey.Call(hwnd, uintptr(id))
	if r == 0 {
		return err
	}
	return nil
}

// SendInput submits a batch of synthetic input events atomically and
// returns how many the OS accepted. Zero means the whole batch was
// rejected; err then carries the OS error.
func SendInput(inputs []INPUT) (uint32, error) {
	if len(inputs) == 0 {
		return 0, nil
	}
	n, _, err := procSendInput.Call(
		uintptr(len(inputs)),
		uintptr(unsafe.Pointer(&inputs[0])),
		unsafe.Sizeof(inputs[0]),
	)
	if n == 0 {
		return 0, err
	}
	return uint32(n), nil
}

// CreatePopupMenu creates an empty popup menu. The caller owns the
// handle and must release it with DestroyMenu.
func CreatePopupMenu() (windows.Handle, error) {
	h, _, err := procCreatePopupMenu.Call()
	if h == 0 {
		return 0, err
	}
	return windows.Handle(h), nil
}

// AppendMenu appends one entry to a menu.
func AppendMenu(menu windows.Handle, flags uintptr, id uintptr, label *uint16) error {
	r, _, err := procAppendMenuW.Call(uintptr(menu), flags, id, uintptr(unsafe.Pointer(label)))
	if r == 0 {
		return err
	}
	return nil
}

// SetMenuDefaultItem marks the entry with the given command id as the
// default (emphasized) item.
func SetMenuDefaultItem(menu windows.Handle, id uint32) {
	procSetMenuDefaultItem.Call(uintptr(menu), uintptr(id), 0)
}

// TrackPopupMenu shows the menu at (x, y) and blocks until the user
// selects an entry or dismisses the menu. With TPM_RETURNCMD the
// selected command id comes back as the return value, 0 on dismissal.
func TrackPopupMenu(menu windows.Handle, flags uint32, x, y int32, hwnd uintptr) int32 {
	r, _, _ := procTrackPopupMenu.Call(
		uintptr(menu),
		uintptr(flags),
		uintptr(x), uintptr(y),
		0,
		hwnd,
		0,
	)
	return int32(r)
}

// DestroyMenu releases a menu created with CreatePopupMenu.
// TrackPopupMenu does not destroy it.
func DestroyMenu(menu windows.Handle) {
	procDestroyMenu.Call(uintptr(menu))
}

// GetCursorPos returns the current pointer position in screen
// coordinates.
func GetCursorPos() POINT {
	var pt POINT
	procGetCursorPos.Call(uintptr(unsafe.Pointer(&pt)))
	return pt
}

// SetForegroundWindow brings the window to the foreground.
func SetForegroundWindow(hwnd uintptr) bool {
	r, _, _ := procSetForegroundWindow.Call(hwnd)
	return r != 0
}

// LoadIconFile loads an icon from a .ico file.
func LoadIconFile(path string) (windows.Handle, error) {
	p, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return 0, err
	}
	h, _, callErr := procLoadImageW.Call(
		0,
		uintptr(unsafe.Pointer(p)),
		IMAGE_ICON,
		0, 0,
		LR_LOADFROMFILE|LR_DEFAULTSIZE,
	)
	if h == 0 {
		return 0, callErr
	}
	return windows.Handle(h), nil
}

// LoadStockIcon loads one of the predefined system icons, e.g.
// IDI_APPLICATION.
func LoadStockIcon(id uintptr) windows.Handle {
	h, _, _ := procLoadIconW.Call(0, id)
	return windows.Handle(h)
}

// DestroyIcon releases an icon loaded with LoadIconFile.
func DestroyIcon(icon windows.Handle) {
	procDestroyIcon.Call(uintptr(icon))
}

// ShellNotifyIcon adds, modifies or deletes the notification-area
// icon described by nid.
func ShellNotifyIcon(op uint32, nid *NOTIFYICONDATA) bool {
	r, _, _ := procShellNotifyIconW.Call(uintptr(op), uintptr(unsafe.Pointer(nid)))
	return r != 0
}

// MessageBox shows a modal message box with a single OK button. This
// is the user-visible surface for fatal errors.
func MessageBox(hwnd uintptr, text, caption string, flags uint32) {
	t, err := windows.UTF16PtrFromString(text)
	if err != nil {
		return
	}
	c, err := windows.UTF16PtrFromString(caption)
	if err != nil {
		return
	}
	procMessageBoxW.Call(hwnd, uintptr(unsafe.Pointer(t)), uintptr(unsafe.Pointer(c)), uintptr(flags))
}

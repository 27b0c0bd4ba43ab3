package dispatch

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"accentd/internal/keymap"
	"accentd/internal/tray"
)

type fakeInjector struct {
	injected []rune
	err      error
}

func (f *fakeInjector) Inject(ch rune) error {
	if f.err != nil {
		return f.err
	}
	f.injected = append(f.injected, ch)
	return nil
}

type fakeTray struct {
	menuOpens int
	menuCmd   tray.Command
	menuErr   error
	hides     int
}

func (f *fakeTray) Show(uintptr, string) error          { return nil }
func (f *fakeTray) UpdateTooltip(uintptr, string) error { return nil }

func (f *fakeTray) OpenContextMenu(uintptr) (tray.Command, error) {
	f.menuOpens++
	return f.menuCmd, f.menuErr
}

func (f *fakeTray) Hide(uintptr) { f.hides++ }

type harness struct {
	d        *Dispatcher
	injector *fakeInjector
	tray     *fakeTray
	quits    []int32
	fatals   []error
	reloads  int
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	table, err := keymap.NewTable(keymap.DefaultBindings())
	require.NoError(t, err)

	h := &harness{
		injector: &fakeInjector{},
		tray:     &fakeTray{},
	}
	h.d = &Dispatcher{
		Keys:     table,
		Injector: h.injector,
		Tray:     h.tray,
		PostQuit: func(code int32) { h.quits = append(h.quits, code) },
		Fatal:    func(err error) { h.fatals = append(h.fatals, err) },
		Reload:   func() { h.reloads++ },
	}
	return h
}

func TestHotkeyInjectsBoundCharacter(t *testing.T) {
	h := newHarness(t)

	m, ok := Translate(wmHotkey, 1, 0)
	require.True(t, ok)
	assert.True(t, h.d.Handle(0, m))

	assert.Equal(t, []rune{'è'}, h.injector.injected)
	assert.Empty(t, h.fatals)
	assert.Empty(t, h.quits)
}

func TestHotkeyUnknownIDIsConsumed(t *testing.T) {
	h := newHarness(t)

	assert.True(t, h.d.Handle(0, Message{Kind: KindHotkey, HotkeyID: 42}))
	assert.Empty(t, h.injector.injected)
	assert.Empty(t, h.fatals)
}

func TestHotkeyInjectionFailureIsFatal(t *testing.T) {
	h := newHarness(t)
	h.injector.err = errors.New("input blocked")

	assert.True(t, h.d.Handle(0, Message{Kind: KindHotkey, HotkeyID: 1}))
	require.Len(t, h.fatals, 1)
	assert.Contains(t, h.fatals[0].Error(), "input blocked")
}

func TestTrayRightUpExitQuitsOnce(t *testing.T) {
	h := newHarness(t)
	h.tray.menuCmd = tray.CommandExit

	m, ok := Translate(tray.CallbackMessage, 0, uintptr(tray.CallbackRightUp))
	require.True(t, ok)
	assert.True(t, h.d.Handle(0, m))

	assert.Equal(t, 1, h.tray.menuOpens)
	assert.Equal(t, []int32{0}, h.quits)

	// Teardown destroys the window; the destroy notification hides
	// the icon exactly once.
	assert.True(t, h.d.Handle(0, Message{Kind: KindDestroy}))
	assert.Equal(t, 1, h.tray.hides)
}

func TestTrayMenuDismissalDoesNotQuit(t *testing.T) {
	h := newHarness(t)
	h.tray.menuCmd = tray.CommandNone

	assert.True(t, h.d.Handle(0, Message{Kind: KindTray, TrayEvent: tray.CallbackRightUp}))
	assert.Equal(t, 1, h.tray.menuOpens)
	assert.Empty(t, h.quits)
	assert.Empty(t, h.fatals)
}

func TestTrayOtherEventsDoNotOpenMenu(t *testing.T) {
	h := newHarness(t)

	// WM_RBUTTONDOWN, WM_LBUTTONUP, WM_MOUSEMOVE.
	for _, ev := range []uint32{0x0204, 0x0202, 0x0200} {
		assert.True(t, h.d.Handle(0, Message{Kind: KindTray, TrayEvent: ev}))
	}
	assert.Zero(t, h.tray.menuOpens)
}

func TestTrayMenuErrorIsFatal(t *testing.T) {
	h := newHarness(t)
	h.tray.menuErr = errors.New("CreatePopupMenu failed")

	assert.True(t, h.d.Handle(0, Message{Kind: KindTray, TrayEvent: tray.CallbackRightUp}))
	require.Len(t, h.fatals, 1)
	assert.Empty(t, h.quits)
}

func TestCommandExit(t *testing.T) {
	h := newHarness(t)

	assert.True(t, h.d.Handle(0, Message{Kind: KindCommand, Command: tray.CommandExit}))
	assert.Equal(t, []int32{0}, h.quits)
}

func TestCommandUnknownFallsThrough(t *testing.T) {
	h := newHarness(t)

	assert.False(t, h.d.Handle(0, Message{Kind: KindCommand, Command: 7}))
	assert.Empty(t, h.quits)
}

func TestDestroyHidesIconAndQuits(t *testing.T) {
	h := newHarness(t)

	assert.True(t, h.d.Handle(0, Message{Kind: KindDestroy}))
	assert.Equal(t, 1, h.tray.hides)
	assert.Equal(t, []int32{0}, h.quits)
}

func TestReload(t *testing.T) {
	h := newHarness(t)

	assert.True(t, h.d.Handle(0, Message{Kind: KindReload}))
	assert.Equal(t, 1, h.reloads)
}

func TestReloadNilCallback(t *testing.T) {
	h := newHarness(t)
	h.d.Reload = nil

	assert.True(t, h.d.Handle(0, Message{Kind: KindReload}))
}

func TestTranslate(t *testing.T) {
	tests := []struct {
		name   string
		msg    uint32
		wparam uintptr
		lparam uintptr
		want   Message
		ok     bool
	}{
		{"hotkey", wmHotkey, 3, 0, Message{Kind: KindHotkey, HotkeyID: 3}, true},
		{"tray callback", tray.CallbackMessage, 1, 0x0205, Message{Kind: KindTray, TrayEvent: 0x0205}, true},
		{"command", wmCommand, 1000, 0, Message{Kind: KindCommand, Command: tray.CommandExit}, true},
		{"command masks high word", wmCommand, 0x000103E8, 0, Message{Kind: KindCommand, Command: tray.CommandExit}, true},
		{"destroy", wmDestroy, 0, 0, Message{Kind: KindDestroy}, true},
		{"reload", WMReload, 0, 0, Message{Kind: KindReload}, true},
		{"unrouted", 0x000F, 0, 0, Message{}, false}, // WM_PAINT
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Translate(tt.msg, tt.wparam, tt.lparam)
			assert.Equal(t, tt.ok, ok)
			if ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

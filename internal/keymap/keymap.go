// Package keymap holds the fixed hotkey table: which modifier+key
// combinations are claimed as system-wide hotkeys and which character
// each one produces.
//
// The table is built once at startup and is immutable for the process
// lifetime. Registration with the OS happens through the Registrar
// interface so the registration and teardown logic can be exercised
// without a real window handle.
package keymap

import (
	"fmt"
	"strings"
)

// Modifier is a set of hotkey modifier keys, using the MOD_* values
// from WinUser.h so it can be passed straight to RegisterHotKey.
type Modifier uint32

const (
	ModAlt     Modifier = 0x0001
	ModControl Modifier = 0x0002
	ModShift   Modifier = 0x0004
	ModWin     Modifier = 0x0008
)

// String renders the set in the conventional Ctrl+Alt+Shift+Win order.
func (m Modifier) String() string {
	var parts []string
	if m&ModControl != 0 {
		parts = append(parts, "Ctrl")
	}
	if m&ModAlt != 0 {
		parts = append(parts, "Alt")
	}
	if m&ModShift != 0 {
		parts = append(parts, "Shift")
	}
	if m&ModWin != 0 {
		parts = append(parts, "Win")
	}
	if len(parts) == 0 {
		return "(none)"
	}
	return strings.Join(parts, "+")
}

// Virtual-key codes for the bound letters (WinUser.h values; for
// letters the code equals the uppercase ASCII character).
const (
	vkA = 0x41
	vkE = 0x45
	vkI = 0x49
	vkO = 0x4F
	vkU = 0x55
)

// Binding maps one global hotkey to one output character.
type Binding struct {
	// ID identifies the binding in WM_HOTKEY notifications. Unique
	// and stable for the process lifetime.
	ID int

	// Mods and Key are the combination claimed with the OS.
	Mods Modifier
	Key  uint32

	// Output is the Unicode scalar value typed when the hotkey fires.
	Output rune
}

// String names the combination the way it is shown to the user,
// e.g. "Ctrl+Alt+E".
func (b Binding) String() string {
	return fmt.Sprintf("%s+%c", b.Mods, rune(b.Key))
}

// DefaultBindings returns the built-in table: Ctrl+Alt plus a vowel
// types the corresponding Italian accented vowel.
func DefaultBindings() []Binding {
	return []Binding{
		{ID: 1, Mods: ModControl | ModAlt, Key: vkE, Output: 'è'},
		{ID: 2, Mods: ModControl | ModAlt, Key: vkA, Output: 'à'},
		{ID: 3, Mods: ModControl | ModAlt, Key: vkI, Output: 'ì'},
		{ID: 4, Mods: ModControl | ModAlt, Key: vkO, Output: 'ò'},
		{ID: 5, Mods: ModControl | ModAlt, Key: vkU, Output: 'ù'},
	}
}

// Table is an immutable hotkey table with id lookup.
type Table struct {
	order []Binding
	byID  map[int]Binding
}

// NewTable validates the bindings and builds the table. Ids must be
// unique, and no two bindings may claim the same (modifiers, key)
// combination; the OS would reject the second registration anyway,
// but catching it here names the conflict before any registration
// happens.
func NewTable(bindings []Binding) (*Table, error) {
	t := &Table{
		order: make([]Binding, len(bindings)),
		byID:  make(map[int]Binding, len(bindings)),
	}
	copy(t.order, bindings)

	type chord struct {
		mods Modifier
		key  uint32
	}
	seen := make(map[chord]Binding, len(bindings))

	for _, b := range t.order {
		if _, dup := t.byID[b.ID]; dup {
			return nil, fmt.Errorf("keymap: duplicate binding id %d", b.ID)
		}
		c := chord{b.Mods, b.Key}
		if prev, dup := seen[c]; dup {
			return nil, fmt.Errorf("keymap: %s bound twice (ids %d and %d)", b, prev.ID, b.ID)
		}
		t.byID[b.ID] = b
		seen[c] = b
	}
	return t, nil
}

// Lookup returns the output character for a hotkey id. It is total:
// an unknown id simply reports no binding.
func (t *Table) Lookup(id int) (rune, bool) {
	b, ok := t.byID[id]
	if !ok {
		return 0, false
	}
	return b.Output, true
}

// Bindings returns the table entries in registration order.
func (t *Table) Bindings() []Binding {
	out := make([]Binding, len(t.order))
	copy(out, t.order)
	return out
}

// Len returns the number of bindings.
func (t *Table) Len() int { return len(t.order) }

// Registrar claims and releases system-wide hotkeys for a window.
// The production implementation wraps RegisterHotKey/UnregisterHotKey;
// tests substitute a fake.
type Registrar interface {
	Register(hwnd uintptr, b Binding) error
	Unregister(hwnd uintptr, id int) error
}

// RegisterAll registers every binding in table order and stops at the
// first failure. It performs no rollback: ownership of rollback
// belongs to the shutdown path, which calls UnregisterAll regardless
// of how far registration got. Any failure here is a setup error and
// fatal to the caller; a process with only some of its hotkeys bound
// is worse than one that refuses to start.
func (t *Table) RegisterAll(hwnd uintptr, r Registrar) error {
	for _, b := range t.order {
		if err := r.Register(hwnd, b); err != nil {
			return fmt.Errorf("keymap: register %s: %w", b, err)
		}
	}
	return nil
}

// UnregisterAll releases every binding id, ignoring individual
// failures. Unregistering an id that was never registered is a no-op,
// so this is safe to call after a partial RegisterAll and safe to
// call more than once.
func (t *Table) UnregisterAll(hwnd uintptr, r Registrar) {
	for _, b := range t.order {
		_ = r.Unregister(hwnd, b.ID)
	}
}

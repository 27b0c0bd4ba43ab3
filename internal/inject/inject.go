// Package inject synthesizes keyboard input for a single Unicode
// character, independent of the physical keyboard layout.
//
// A character becomes one "key down" and one "key up" event per UTF-16
// code unit, tagged as Unicode text rather than a virtual key. The
// whole sequence is submitted to the OS as a single batch so no other
// input can interleave between press and release. Characters outside
// the Basic Multilingual Plane are supported: both surrogate units'
// down/up pairs travel in the same batch.
package inject

import (
	"errors"
	"fmt"
	"unicode/utf16"
	"unicode/utf8"
)

// ErrInvalidRune is returned for values that are not valid Unicode
// scalar values (surrogate halves, out-of-range runes).
var ErrInvalidRune = errors.New("inject: not a valid Unicode scalar value")

// RejectedError indicates the OS input subsystem refused the synthetic
// batch, e.g. because a UIPI/input-protection policy blocked it. The
// caller treats this as fatal: a hotkey utility whose keystrokes
// silently vanish is worse than one that stops with a visible error.
type RejectedError struct {
	// Code is the OS error code reported for the rejection.
	Code uint32
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("inject: synthetic input rejected by the OS (error %d)", e.Code)
}

// KeyEvent is one synthetic keyboard event carrying a UTF-16 code unit.
type KeyEvent struct {
	Unit uint16
	Up   bool
}

// Sequence builds the ordered down/up events for one character. For a
// BMP character that is exactly one pair; for a supplementary-plane
// character it is the high surrogate's pair followed by the low
// surrogate's pair.
func Sequence(ch rune) ([]KeyEvent, error) {
	if !utf8.ValidRune(ch) {
		return nil, ErrInvalidRune
	}
	units := utf16.Encode([]rune{ch})
	events := make([]KeyEvent, 0, 2*len(units))
	for _, u := range units {
		events = append(events,
			KeyEvent{Unit: u},
			KeyEvent{Unit: u, Up: true},
		)
	}
	return events, nil
}

// Injector submits one character's worth of synthetic input.
type Injector interface {
	Inject(ch rune) error
}

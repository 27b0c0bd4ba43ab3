//go:build windows

package inject

import (
	"errors"
	"syscall"

	"accentd/internal/winapi"
)

// sendInputInjector submits events through SendInput with
// KEYEVENTF_UNICODE, which downstream applications process exactly
// like hardware keystrokes.
type sendInputInjector struct{}

// New returns the SendInput-backed injector.
func New() Injector {
	return sendInputInjector{}
}

func (sendInputInjector) Inject(ch rune) error {
	events, err := Sequence(ch)
	if err != nil {
		return err
	}

	inputs := make([]winapi.INPUT, len(events))
	for i, e := range events {
		flags := uint32(winapi.KEYEVENTF_UNICODE)
		if e.Up {
			flags |= winapi.KEYEVENTF_KEYUP
		}
		inputs[i] = winapi.INPUT{
			Type: winapi.INPUT_KEYBOARD,
			Ki: winapi.KEYBDINPUT{
				Scan:  e.Unit,
				Flags: flags,
			},
		}
	}

	n, err := winapi.SendInput(inputs)
	if n == 0 {
		var errno syscall.Errno
		if errors.As(err, &errno) {
			return &RejectedError{Code: uint32(errno)}
		}
		return &RejectedError{}
	}
	return nil
}

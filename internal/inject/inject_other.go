//go:build !windows

package inject

import "errors"

// ErrUnsupported is returned on platforms without the Windows
// low-level input subsystem.
var ErrUnsupported = errors.New("inject: synthetic input not supported on this platform")

type unsupportedInjector struct{}

// New returns an Injector that always fails on this platform.
func New() Injector {
	return unsupportedInjector{}
}

func (unsupportedInjector) Inject(rune) error {
	return ErrUnsupported
}

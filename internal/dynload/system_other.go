//go:build !((darwin || freebsd || linux) && !android) && !windows

package dynload

import (
	"errors"
	"runtime"
)

var errUnsupported = errors.New("dynamic loading is not supported on " + runtime.GOOS)

type systemOpener struct{}

// System returns a loader that always fails on this platform.
func System() Opener {
	return systemOpener{}
}

func (systemOpener) Open(string) (uintptr, error) {
	return 0, errUnsupported
}

func (systemOpener) Lookup(uintptr, string) (uintptr, error) {
	return 0, errUnsupported
}

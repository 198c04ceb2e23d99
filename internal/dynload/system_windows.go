//go:build windows

package dynload

import "golang.org/x/sys/windows"

type systemOpener struct{}

// System returns the LoadLibrary-based loader.
func System() Opener {
	return systemOpener{}
}

func (systemOpener) Open(path string) (uintptr, error) {
	handle, err := windows.LoadLibrary(path)
	if err != nil {
		return 0, err
	}

	return uintptr(handle), nil
}

func (systemOpener) Lookup(handle uintptr, symbol string) (uintptr, error) {
	return windows.GetProcAddress(windows.Handle(handle), symbol)
}

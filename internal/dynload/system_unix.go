//go:build (darwin || freebsd || linux) && !android

package dynload

import "github.com/ebitengine/purego"

type systemOpener struct{}

// System returns the dlopen-based loader.
func System() Opener {
	return systemOpener{}
}

func (systemOpener) Open(path string) (uintptr, error) {
	return purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_GLOBAL)
}

func (systemOpener) Lookup(handle uintptr, symbol string) (uintptr, error) {
	return purego.Dlsym(handle, symbol)
}

// Package platform maps the running operating system to the file extension
// its dynamic loader expects for shared libraries.
package platform

import (
	"runtime"
	"strings"
)

// Platform identifies an operating system and CPU architecture pair.
type Platform struct {
	// OS is a GOOS value such as "linux" or "windows".
	OS string
	// Arch is a GOARCH value such as "amd64".
	Arch string
}

// Current returns the platform the binary was built for.
func Current() Platform {
	return Platform{
		OS:   runtime.GOOS,
		Arch: runtime.GOARCH,
	}
}

// Extension returns the shared library extension, including the leading dot.
func (p Platform) Extension() string {
	switch strings.ToLower(p.OS) {
	case "windows":
		return ".dll"
	case "darwin", "ios":
		return ".dylib"
	default:
		return ".so"
	}
}

// String renders the platform as "os/arch".
func (p Platform) String() string {
	return p.OS + "/" + p.Arch
}

// NormalizeExtension makes sure a configured extension starts with a dot.
// An empty value stays empty.
func NormalizeExtension(ext string) string {
	ext = strings.TrimSpace(ext)
	if ext == "" || strings.HasPrefix(ext, ".") {
		return ext
	}

	return "." + ext
}

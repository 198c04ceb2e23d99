// Package bundle embeds the native libraries shipped with the nativeload CLI.
package bundle

import (
	"embed"
	"io/fs"
)

//go:embed native
var files embed.FS

// FS returns the embedded bundle. Libraries live under "native/".
func FS() fs.FS {
	return files
}

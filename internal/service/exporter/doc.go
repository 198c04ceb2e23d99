// Package exporter implements the export command: it installs a bundled
// library at a stable path so it can be inspected or preloaded by other tools.
//
// The file is replaced atomically with go-update, which refuses to swap it in
// unless the written bytes match the SHA-512 checksum of the bundled resource.
// The installed file is then compared byte for byte with the bundle.
package exporter

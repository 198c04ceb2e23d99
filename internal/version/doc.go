// Package version exposes build metadata for the nativeload binary.
//
// Version, Commit and BuildTime are injected at build time via Go ldflags.
package version

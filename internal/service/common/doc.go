// Package common holds the setup shared by the CLI commands.
//
// It loads the YAML configuration, applies command line overrides and the
// log level, picks the embedded bundle or a directory on disk and builds the
// nativeload.Loader the commands run against.
//
//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

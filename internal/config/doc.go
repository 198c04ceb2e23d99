// Package config defines the loader settings and helpers to load, validate
// and save them in YAML format.
//
// Every field is optional: Validate fills in defaults for the bundle
// namespace, scratch file prefix, digest algorithm and log level, and leaves
// the scratch directory and library extension to be derived at runtime.
package config

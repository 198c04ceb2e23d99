//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/oshokin/nativeload"
	"github.com/oshokin/nativeload/internal/bundle"
	"github.com/oshokin/nativeload/internal/config"
	"github.com/oshokin/nativeload/internal/logger"
)

var (
	// errInvalidLogLevel is returned for an unknown --log-level value.
	errInvalidLogLevel = errors.New("invalid log level")
	// errNameRequired is returned when no library name was given.
	errNameRequired = errors.New("library name must be provided")
)

// Options are the inputs every command accepts.
type Options struct {
	// ConfigPath is the optional path to the settings YAML file.
	ConfigPath string
	// ResourcesDir replaces the embedded bundle with a directory.
	ResourcesDir string
	// LogLevel overrides the configured log level.
	LogLevel string
	// Out receives command results. Defaults to os.Stdout.
	Out io.Writer
}

// Env is the state shared by a single command execution.
type Env struct {
	// Config is the validated configuration.
	Config *config.Config
	// Resources is the bundle libraries are read from.
	Resources fs.FS
	// Loader runs the extraction pipeline over Resources.
	Loader *nativeload.Loader
	// Out receives command results.
	Out io.Writer
}

// Setup loads configuration, applies the log level and builds the loader.
func Setup(ctx context.Context, opts *Options) (*Env, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}

	if opts.ResourcesDir != "" {
		cfg.ResourcesDir = opts.ResourcesDir
	}

	if opts.LogLevel != "" {
		cfg.LogLevel = opts.LogLevel
	}

	level, ok := logger.ParseLogLevel(cfg.LogLevel)
	if !ok {
		return nil, fmt.Errorf("%q: %w", cfg.LogLevel, errInvalidLogLevel)
	}

	logger.SetLevel(level)

	resources := bundle.FS()
	if cfg.ResourcesDir != "" {
		resources = os.DirFS(cfg.ResourcesDir)
	}

	loader, err := nativeload.New(nativeload.WithResources(resources), nativeload.FromConfig(cfg))
	if err != nil {
		return nil, err
	}

	out := opts.Out
	if out == nil {
		out = os.Stdout
	}

	logger.DebugKV(ctx, "Environment ready",
		"namespace", cfg.Namespace,
		"extension", cfg.LibraryExtension(),
		"resources_dir", cfg.ResourcesDir)

	return &Env{
		Config:    cfg,
		Resources: resources,
		Loader:    loader,
		Out:       out,
	}, nil
}

// ValidateName trims a library name and rejects empty ones.
func ValidateName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", errNameRequired
	}

	return name, nil
}

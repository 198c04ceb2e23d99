package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/oshokin/nativeload/internal/digest"
	"github.com/oshokin/nativeload/internal/logger"
	"github.com/oshokin/nativeload/internal/platform"
)

// Config holds the settings shared by the facade and the CLI.
type Config struct {
	// Namespace is the directory inside the bundle holding native libraries.
	Namespace string `yaml:"namespace"`
	// FilePrefix starts every scratch file name.
	FilePrefix string `yaml:"file_prefix"`
	// ScratchDir receives extracted libraries. Empty means the OS temp directory.
	ScratchDir string `yaml:"scratch_dir,omitempty"`
	// Extension overrides the platform library extension (".so", ".dylib", ".dll").
	Extension string `yaml:"extension,omitempty"`
	// Digest names the algorithm used to fingerprint extracted bytes.
	Digest string `yaml:"digest"`
	// LogLevel is one of debug, info, warn or error.
	LogLevel string `yaml:"log_level"`
	// ResourcesDir replaces the embedded bundle with a directory on disk.
	ResourcesDir string `yaml:"resources_dir,omitempty"`
}

const (
	// DefaultConfigFilename is looked up in the working directory.
	DefaultConfigFilename = "nativeload.yaml"

	// DefaultNamespace is the bundle directory holding native libraries.
	DefaultNamespace = "native"

	// DefaultFilePrefix starts every scratch file name.
	DefaultFilePrefix = "nativeload"

	// DefaultLogLevel is used when none is configured.
	DefaultLogLevel = "info"

	// DefaultFilePermissions is the mode of saved configuration files.
	DefaultFilePermissions = 0o600
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errInvalidLogLevel is returned for unknown log levels.
	errInvalidLogLevel = errors.New("invalid log level")
	// errInvalidPrefix is returned when the prefix would escape the scratch directory.
	errInvalidPrefix = errors.New("file prefix must not contain path separators")
)

// New returns a configuration populated with defaults.
func New() *Config {
	cfg := new(Config)
	_ = Validate(cfg)

	return cfg
}

// Load reads configuration from path and validates it.
// If path is empty the default file name is used; a missing default file
// yields the defaults instead of an error.
func Load(path string) (*Config, error) {
	optional := path == ""
	if optional {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if optional && errors.Is(err, os.ErrNotExist) {
			return New(), nil
		}

		return nil, fmt.Errorf("read settings: %w", err)
	}

	var cfg Config
	if err = yaml.Unmarshal(contents, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err = Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes cfg to path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	if err = os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate checks cfg and fills in defaults.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	cfg.Namespace = strings.Trim(strings.TrimSpace(cfg.Namespace), "/")
	if cfg.Namespace == "" {
		cfg.Namespace = DefaultNamespace
	}

	cfg.FilePrefix = strings.TrimSpace(cfg.FilePrefix)
	if cfg.FilePrefix == "" {
		cfg.FilePrefix = DefaultFilePrefix
	}

	if strings.ContainsAny(cfg.FilePrefix, `/\`) {
		return fmt.Errorf("%q: %w", cfg.FilePrefix, errInvalidPrefix)
	}

	cfg.Extension = platform.NormalizeExtension(cfg.Extension)

	alg, err := digest.Parse(cfg.Digest)
	if err != nil {
		return fmt.Errorf("invalid digest: %w", err)
	}

	cfg.Digest = string(alg)

	if cfg.LogLevel == "" {
		cfg.LogLevel = DefaultLogLevel
	}

	if _, ok := logger.ParseLogLevel(cfg.LogLevel); !ok {
		return fmt.Errorf("%q: %w", cfg.LogLevel, errInvalidLogLevel)
	}

	return nil
}

// LibraryExtension returns the configured extension or the one of the current platform.
func (c *Config) LibraryExtension() string {
	if c.Extension != "" {
		return c.Extension
	}

	return platform.Current().Extension()
}

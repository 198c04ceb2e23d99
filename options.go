package nativeload

import (
	"io/fs"
	"os"

	"github.com/oshokin/nativeload/internal/cleanup"
	"github.com/oshokin/nativeload/internal/config"
	"github.com/oshokin/nativeload/internal/digest"
	"github.com/oshokin/nativeload/internal/dynload"
	"github.com/oshokin/nativeload/internal/platform"
)

// Types shared with the internal packages.
type (
	// Opener is the raw OS dynamic loader. Tests substitute their own.
	Opener = dynload.Opener
	// Platform selects the library extension.
	Platform = platform.Platform
	// Algorithm names a digest function such as "md5" or "blake3".
	Algorithm = digest.Algorithm
	// CleanupRegistry collects scratch files to delete on shutdown.
	CleanupRegistry = cleanup.Registry
	// Config is the YAML configuration understood by FromConfig.
	Config = config.Config
)

// NewCleanupRegistry returns an empty registry for WithCleanup.
func NewCleanupRegistry() *CleanupRegistry {
	return cleanup.NewRegistry()
}

// LoadConfig reads and validates a YAML configuration file.
func LoadConfig(path string) (*Config, error) {
	return config.Load(path)
}

// Option configures a Loader.
type Option func(*settings)

type settings struct {
	resources  fs.FS
	namespace  string
	extension  string
	scratchDir string
	prefix     string
	digest     digest.Algorithm
	opener     Opener
	cleanup    *cleanup.Registry
}

func defaultSettings() *settings {
	return &settings{
		namespace: config.DefaultNamespace,
		extension: platform.Current().Extension(),
		prefix:    config.DefaultFilePrefix,
		digest:    digest.Default,
		cleanup:   cleanup.Default,
	}
}

// WithResources sets the bundle holding the native libraries.
func WithResources(fsys fs.FS) Option {
	return func(s *settings) {
		s.resources = fsys
	}
}

// WithNamespace sets the bundle directory that holds the libraries.
func WithNamespace(namespace string) Option {
	return func(s *settings) {
		s.namespace = namespace
	}
}

// WithExtension overrides the platform library extension.
func WithExtension(ext string) Option {
	return func(s *settings) {
		if ext = platform.NormalizeExtension(ext); ext != "" {
			s.extension = ext
		}
	}
}

// WithPlatform derives the library extension from p.
func WithPlatform(p Platform) Option {
	return func(s *settings) {
		s.extension = p.Extension()
	}
}

// WithScratchDir sets where libraries are extracted. Defaults to the OS temp directory.
func WithScratchDir(dir string) Option {
	return func(s *settings) {
		s.scratchDir = dir
	}
}

// WithFilePrefix sets the first part of every scratch file name.
func WithFilePrefix(prefix string) Option {
	return func(s *settings) {
		if prefix != "" {
			s.prefix = prefix
		}
	}
}

// WithDigest selects the algorithm used to fingerprint extracted bytes.
func WithDigest(alg Algorithm) Option {
	return func(s *settings) {
		s.digest = alg
	}
}

// WithOpener replaces the OS loader.
func WithOpener(opener Opener) Option {
	return func(s *settings) {
		s.opener = opener
	}
}

// WithCleanup sets the registry scratch files are scheduled on.
func WithCleanup(registry *CleanupRegistry) Option {
	return func(s *settings) {
		if registry != nil {
			s.cleanup = registry
		}
	}
}

// FromConfig applies a validated configuration. A non-empty ResourcesDir
// replaces any bundle set before.
func FromConfig(cfg *Config) Option {
	return func(s *settings) {
		if cfg == nil {
			return
		}

		s.namespace = cfg.Namespace
		s.extension = cfg.LibraryExtension()
		s.scratchDir = cfg.ScratchDir
		s.prefix = cfg.FilePrefix
		s.digest = digest.Algorithm(cfg.Digest)

		if cfg.ResourcesDir != "" {
			s.resources = os.DirFS(cfg.ResourcesDir)
		}
	}
}

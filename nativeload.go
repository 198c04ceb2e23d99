package nativeload

import (
	"context"
	"fmt"

	"github.com/oshokin/nativeload/internal/digest"
	"github.com/oshokin/nativeload/internal/dynload"
	"github.com/oshokin/nativeload/internal/extractor"
	"github.com/oshokin/nativeload/internal/logger"
	"github.com/oshokin/nativeload/internal/resource"
)

// Library is a native library extracted from the bundle and mapped into the process.
type Library struct {
	// Name is the logical name passed to LoadLibrary.
	Name string
	// Resource is the path of the library inside the bundle.
	Resource string
	// Path is the verified scratch copy handed to the OS loader.
	Path string
	// Size is the library size in bytes.
	Size int64
	// Digest is the hex fingerprint of the extracted bytes, if a digest is configured.
	Digest string

	lib *dynload.Library
}

// Handle returns the OS loader handle.
func (l *Library) Handle() uintptr {
	return l.lib.Handle
}

// Lookup resolves an exported symbol.
func (l *Library) Lookup(symbol string) (uintptr, error) {
	return l.lib.Lookup(symbol)
}

// Loader runs the locate, extract, verify and load pipeline.
// It is safe for concurrent use.
type Loader struct {
	settings  *settings
	locator   *resource.Locator
	extractor *extractor.Extractor
	dynload   *dynload.Loader
}

// New builds a Loader. It fails only for invalid options such as an unknown digest.
func New(opts ...Option) (*Loader, error) {
	s := defaultSettings()
	for _, opt := range opts {
		opt(s)
	}

	locator := resource.NewLocator(s.resources)

	ex, err := extractor.New(locator, extractor.Options{
		ScratchDir: s.scratchDir,
		Prefix:     s.prefix,
		Extension:  s.extension,
		Digest:     s.digest,
		Cleanup:    s.cleanup,
	})
	if err != nil {
		return nil, fmt.Errorf("configure extractor: %w", err)
	}

	return &Loader{
		settings:  s,
		locator:   locator,
		extractor: ex,
		dynload:   dynload.New(s.opener),
	}, nil
}

// ResourcePath returns where the library called name is expected inside the bundle.
func (l *Loader) ResourcePath(name string) (string, error) {
	p, err := resource.Path(l.settings.namespace, name, l.settings.extension)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrResourceNotFound, err)
	}

	return p, nil
}

// LoadLibrary extracts the library called name for the configured platform
// and loads it. On failure the returned *Error names the failing stage; it
// matches ErrNativeLibraryNotFound or ErrNativeLibraryLoadFailed, and the
// stage error (ErrResourceNotFound, ErrExtractionIO, ErrExtractionCorrupted
// or ErrLinkage) is in its chain.
func (l *Loader) LoadLibrary(ctx context.Context, name string) (*Library, error) {
	ctx = logger.WithKV(logger.WithName(ctx, "nativeload"), "library", name)

	resourcePath, err := l.ResourcePath(name)
	if err != nil {
		return nil, l.fail(ctx, &Error{Stage: StageLocate, Name: name, Err: err})
	}

	if !l.locator.Exists(resourcePath) {
		err = fmt.Errorf("%s: %w", resourcePath, ErrResourceNotFound)
		return nil, l.fail(ctx, &Error{Stage: StageLocate, Name: name, Path: resourcePath, Err: err})
	}

	file, err := l.extractor.Extract(ctx, resourcePath)
	if err != nil {
		return nil, l.fail(ctx, &Error{Stage: StageExtract, Name: name, Path: resourcePath, Err: err})
	}

	lib, err := l.dynload.Load(ctx, file.Path)
	if err != nil {
		return nil, l.fail(ctx, &Error{Stage: StageLoad, Name: name, Path: file.Path, Err: err})
	}

	logger.InfoKV(ctx, "Native library loaded", "path", file.Path, "bytes", file.Size)

	return &Library{
		Name:     name,
		Resource: resourcePath,
		Path:     file.Path,
		Size:     file.Size,
		Digest:   digest.String(file.Digest),
		lib:      lib,
	}, nil
}

func (l *Loader) fail(ctx context.Context, err *Error) error {
	logger.WarnKV(ctx, "Native library not loaded", "stage", err.Stage, "error", err.Err)
	return err
}

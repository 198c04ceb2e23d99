package extractor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/oshokin/nativeload/internal/cleanup"
	"github.com/oshokin/nativeload/internal/digest"
	"github.com/oshokin/nativeload/internal/logger"
	"github.com/oshokin/nativeload/internal/resource"
	"github.com/oshokin/nativeload/internal/stream"
)

const (
	// ChunkSize is the size of a single copy step.
	ChunkSize = 8 << 10

	// DefaultPrefix starts every scratch file name.
	DefaultPrefix = "nativeload"

	// LoadableMode lets the dynamic loader read and map the file.
	LoadableMode os.FileMode = 0o755

	// createMode is used while the file is being written.
	createMode os.FileMode = 0o600
)

var (
	// ErrIO is returned when the copy into the scratch file fails.
	ErrIO = errors.New("extraction i/o failure")
	// ErrCorrupted is returned when the scratch file differs from the bundled resource.
	ErrCorrupted = errors.New("extracted file does not match the bundled resource")
)

// Options configure an Extractor. Zero values select defaults.
type Options struct {
	// ScratchDir receives the extracted files. Defaults to os.TempDir().
	ScratchDir string
	// Prefix starts every file name. Defaults to DefaultPrefix.
	Prefix string
	// Extension ends every file name, dot included.
	Extension string
	// Digest, when set, is computed over the copied bytes for diagnostics.
	Digest digest.Algorithm
	// Cleanup receives every created file. Defaults to cleanup.Default.
	Cleanup *cleanup.Registry
}

// File describes a verified scratch copy.
type File struct {
	// Path is the absolute location of the copy.
	Path string
	// Size is the number of bytes written.
	Size int64
	// Algorithm names the digest in Digest, if any.
	Algorithm digest.Algorithm
	// Digest of the copied bytes. Empty when Options.Digest is unset.
	Digest []byte
}

// writeTarget is the destination of a copy.
type writeTarget interface {
	io.Writer
	Close() error
}

// Extractor produces verified scratch copies of bundled resources.
type Extractor struct {
	locator *resource.Locator
	opts    Options

	// openTarget creates the scratch file exclusively.
	openTarget func(path string) (writeTarget, error)
}

// New validates opts and returns an Extractor reading from locator.
func New(locator *resource.Locator, opts Options) (*Extractor, error) {
	if opts.Digest != "" {
		if _, err := digest.New(opts.Digest); err != nil {
			return nil, err
		}
	}

	if opts.ScratchDir == "" {
		opts.ScratchDir = os.TempDir()
	}

	dir, err := filepath.Abs(opts.ScratchDir)
	if err != nil {
		return nil, fmt.Errorf("resolve scratch directory: %w", err)
	}

	opts.ScratchDir = dir

	if opts.Prefix == "" {
		opts.Prefix = DefaultPrefix
	}

	if opts.Cleanup == nil {
		opts.Cleanup = cleanup.Default
	}

	return &Extractor{
		locator:    locator,
		opts:       opts,
		openTarget: openExclusive,
	}, nil
}

// Extract copies the resource at resourcePath into a new scratch file,
// makes it loadable and verifies it. The file is registered for cleanup as
// soon as it exists, whatever the outcome. A failed extraction never leaves a
// file behind that could be mistaken for a good one.
func (e *Extractor) Extract(ctx context.Context, resourcePath string) (*File, error) {
	src, err := e.locator.Open(resourcePath)
	if err != nil {
		return nil, err
	}

	target, err := e.targetPath()
	if err != nil {
		_ = src.Close()
		return nil, err
	}

	dst, err := e.openTarget(target)
	if err != nil {
		_ = src.Close()
		return nil, fmt.Errorf("create %s: %w: %w", target, ErrIO, err)
	}

	e.opts.Cleanup.Register(target)

	logger.DebugKV(ctx, "Extracting resource", "resource", resourcePath, "target", target)

	file, copyErr := e.copy(src, dst)
	closeErr := errors.Join(dst.Close(), src.Close())

	if copyErr == nil && closeErr != nil {
		copyErr = fmt.Errorf("close streams: %w", closeErr)
	}

	if copyErr != nil {
		_ = os.Remove(target)
		return nil, fmt.Errorf("copy %s to %s: %w: %w", resourcePath, target, ErrIO, copyErr)
	}

	file.Path = target

	if err = makeLoadable(target); err != nil {
		_ = os.Remove(target)
		return nil, fmt.Errorf("set permissions on %s: %w: %w", target, ErrIO, err)
	}

	if err = e.verify(resourcePath, target); err != nil {
		_ = os.Remove(target)
		return nil, err
	}

	logger.DebugKV(ctx, "Resource extracted",
		"target", target,
		"bytes", file.Size,
		"digest", digest.String(file.Digest))

	return file, nil
}

// targetPath returns a fresh, collision-free scratch file name.
func (e *Extractor) targetPath() (string, error) {
	token, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("generate scratch file name: %w: %w", ErrIO, err)
	}

	name := e.opts.Prefix + "-" + token.String() + e.opts.Extension

	return filepath.Join(e.opts.ScratchDir, name), nil
}

// copy moves src into dst in ChunkSize steps, hashing on the side.
func (e *Extractor) copy(src io.Reader, dst io.Writer) (*File, error) {
	file := &File{Algorithm: e.opts.Digest}

	sink := io.Discard
	if e.opts.Digest != "" {
		h, err := digest.New(e.opts.Digest)
		if err != nil {
			return nil, err
		}

		sink = h

		defer func() {
			file.Digest = h.Sum(nil)
		}()
	}

	buf := make([]byte, ChunkSize)

	for {
		n, readErr := src.Read(buf)
		if n > 0 {
			written, writeErr := dst.Write(buf[:n])
			if writeErr != nil {
				return nil, fmt.Errorf("write: %w", writeErr)
			}

			if written != n {
				return nil, io.ErrShortWrite
			}

			_, _ = sink.Write(buf[:n])
			file.Size += int64(n)
		}

		if errors.Is(readErr, io.EOF) {
			return file, nil
		}

		if readErr != nil {
			return nil, fmt.Errorf("read: %w", readErr)
		}
	}
}

// verify re-reads the bundle and the scratch copy and compares them.
func (e *Extractor) verify(resourcePath, target string) error {
	src, err := e.locator.Open(resourcePath)
	if err != nil {
		return fmt.Errorf("reopen %s: %w: %w", resourcePath, ErrIO, err)
	}
	defer src.Close()

	extracted, err := os.Open(target) //nolint:gosec // Path is generated by targetPath.
	if err != nil {
		return fmt.Errorf("reopen %s: %w: %w", target, ErrIO, err)
	}
	defer extracted.Close()

	equal, err := stream.Equal(src, extracted)
	if err != nil {
		return fmt.Errorf("verify %s: %w: %w", target, ErrIO, err)
	}

	if !equal {
		return fmt.Errorf("%s: %w", target, ErrCorrupted)
	}

	return nil
}

func openExclusive(path string) (writeTarget, error) {
	return os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, createMode) //nolint:gosec // Generated path.
}

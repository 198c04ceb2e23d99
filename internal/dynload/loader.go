// Package dynload hands verified files to the operating system's dynamic
// loader.
//
// Loader calls are not assumed to be reentrant, so every Open issued through
// this package runs under a single process-wide mutex, no matter how many
// Loader values exist. Extraction is not covered by the lock.
package dynload

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/oshokin/nativeload/internal/logger"
)

// ErrLinkage is returned whenever a library could not be loaded.
var ErrLinkage = errors.New("dynamic linkage failure")

// loadMu serializes calls into the OS loader.
//
//nolint:gochecknoglobals // The critical section is process-wide.
var loadMu sync.Mutex

// Opener is the raw OS loader.
type Opener interface {
	// Open maps the library at path into the process and returns its handle.
	Open(path string) (uintptr, error)
	// Lookup resolves an exported symbol in an opened library.
	Lookup(handle uintptr, symbol string) (uintptr, error)
}

// Library is a library mapped into the process.
type Library struct {
	// Path is the file the library was loaded from.
	Path string
	// Handle is the loader handle.
	Handle uintptr

	opener Opener
}

// Lookup returns the address of an exported symbol.
func (l *Library) Lookup(symbol string) (uintptr, error) {
	addr, err := l.opener.Lookup(l.Handle, symbol)
	if err != nil {
		return 0, fmt.Errorf("lookup %s in %s: %w", symbol, l.Path, err)
	}

	return addr, nil
}

// Loader loads libraries through an Opener.
type Loader struct {
	opener Opener
}

// New returns a Loader using opener, or the system loader when opener is nil.
func New(opener Opener) *Loader {
	if opener == nil {
		opener = System()
	}

	return &Loader{opener: opener}
}

// Load maps the library at path. path must be absolute and must exist.
// Panics raised by the opener are converted into errors.
func (l *Loader) Load(ctx context.Context, path string) (*Library, error) {
	if !filepath.IsAbs(path) {
		return nil, fmt.Errorf("%s is not absolute: %w", path, ErrLinkage)
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w: %w", path, ErrLinkage, err)
	}

	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%s is not a regular file: %w", path, ErrLinkage)
	}

	handle, err := l.open(path)
	if err != nil {
		logger.DebugKV(ctx, "Loader rejected library", "path", path, "error", err)
		return nil, fmt.Errorf("load %s: %w: %w", path, ErrLinkage, err)
	}

	logger.DebugKV(ctx, "Library loaded", "path", path, "handle", handle)

	return &Library{
		Path:   path,
		Handle: handle,
		opener: l.opener,
	}, nil
}

func (l *Loader) open(path string) (handle uintptr, err error) {
	loadMu.Lock()
	defer loadMu.Unlock()

	defer func() {
		if r := recover(); r != nil {
			handle = 0
			err = fmt.Errorf("loader panicked: %v", r)
		}
	}()

	handle, err = l.opener.Open(path)
	if err == nil && handle == 0 {
		err = errNilHandle
	}

	return handle, err
}

var errNilHandle = errors.New("loader returned a nil handle")

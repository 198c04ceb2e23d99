package nativeload

import (
	"context"
	"errors"
	"sync"

	"github.com/oshokin/nativeload/internal/cleanup"
)

var errNoDefault = errors.New("no default loader configured, call SetDefault first")

var (
	defaultMu     sync.RWMutex
	defaultLoader *Loader
)

// SetDefault installs the loader used by the package-level LoadLibrary.
func SetDefault(l *Loader) {
	defaultMu.Lock()
	defer defaultMu.Unlock()

	defaultLoader = l
}

// LoadLibrary loads name through the default loader.
func LoadLibrary(ctx context.Context, name string) (*Library, error) {
	defaultMu.RLock()
	l := defaultLoader
	defaultMu.RUnlock()

	if l == nil {
		return nil, &Error{Stage: StageLocate, Name: name, Err: errNoDefault}
	}

	return l.LoadLibrary(ctx, name)
}

// Cleanup deletes the scratch files registered on the default registry and
// reports how many were removed. Call it on shutdown; failures are ignored.
func Cleanup(ctx context.Context) int {
	return cleanup.Default.Run(ctx)
}

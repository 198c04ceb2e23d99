// Package cleanup keeps a list of scratch files to delete on shutdown.
//
// Go has no delete-on-exit facility, so the host runs the registry from its
// shutdown path. Deletion is best effort: failures are logged at debug level
// and never reported, and files leak if the process dies abnormally.
package cleanup

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"sync"

	"github.com/oshokin/nativeload/internal/logger"
)

// Registry collects paths scheduled for deletion.
type Registry struct {
	mu    sync.Mutex
	paths []string
	seen  map[string]struct{}
}

// Default is the process-wide registry used when no other is configured.
//
//nolint:gochecknoglobals // Mirrors a runtime-wide delete-on-exit list.
var Default = NewRegistry()

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{seen: make(map[string]struct{})}
}

// Register schedules path for deletion. Registering the same path twice is a no-op.
func (r *Registry) Register(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.seen[path]; ok {
		return
	}

	r.seen[path] = struct{}{}
	r.paths = append(r.paths, path)
}

// Len returns the number of pending paths.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.paths)
}

// Run deletes every pending path in reverse registration order and empties the registry.
// It returns how many files were actually removed.
func (r *Registry) Run(ctx context.Context) int {
	r.mu.Lock()
	paths := r.paths
	r.paths = nil
	r.seen = make(map[string]struct{})
	r.mu.Unlock()

	removed := 0

	for i := len(paths) - 1; i >= 0; i-- {
		err := os.Remove(paths[i])

		switch {
		case err == nil:
			removed++
		case errors.Is(err, fs.ErrNotExist):
		default:
			// Windows refuses to delete a DLL that is still mapped.
			logger.DebugKV(ctx, "Scratch file left behind", "path", paths[i], "error", err)
		}
	}

	return removed
}

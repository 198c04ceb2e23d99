// Package resource resolves bundled native libraries inside an fs.FS.
//
// Production binaries hand it an embed.FS; tests and the CLI --resources flag
// use fstest.MapFS or os.DirFS. The locator only answers whether an exact path
// exists and opens it. Choosing the platform is the caller's job.
package resource

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"
)

var (
	// ErrNotFound is returned when no regular file exists at the requested path.
	ErrNotFound = errors.New("resource not found")
	// ErrInvalidName is returned for names that are not a single path element.
	ErrInvalidName = errors.New("invalid resource name")
)

// Locator looks up resources in a read-only file system.
type Locator struct {
	fsys fs.FS
}

// NewLocator wraps fsys.
func NewLocator(fsys fs.FS) *Locator {
	return &Locator{fsys: fsys}
}

// Path builds "<namespace>/<name><ext>".
// The namespace may be empty or nested ("native/linux_amd64").
func Path(namespace, name, ext string) (string, error) {
	if name == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return "", fmt.Errorf("%q: %w", name, ErrInvalidName)
	}

	p := path.Join(strings.Trim(namespace, "/"), name+ext)
	if !fs.ValidPath(p) {
		return "", fmt.Errorf("%q: %w", p, ErrInvalidName)
	}

	return p, nil
}

// Exists reports whether a regular file is present at p.
func (l *Locator) Exists(p string) bool {
	if l == nil || l.fsys == nil {
		return false
	}

	info, err := fs.Stat(l.fsys, p)
	if err != nil {
		return false
	}

	return info.Mode().IsRegular()
}

// Open returns the resource at p for reading. The caller closes it.
func (l *Locator) Open(p string) (fs.File, error) {
	if !l.Exists(p) {
		return nil, fmt.Errorf("%s: %w", p, ErrNotFound)
	}

	f, err := l.fsys.Open(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", p, ErrNotFound)
		}

		return nil, fmt.Errorf("open %s: %w", p, err)
	}

	return f, nil
}

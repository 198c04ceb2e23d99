// Package bundletest provides in-memory bundles and a recording dynamic
// loader for tests of the extraction and load pipeline.
package bundletest

import (
	"bytes"
	"errors"
	"io"
	"io/fs"
	"sync"
	"sync/atomic"
	"testing/fstest"
	"testing/iotest"
	"time"
)

// ErrDiskFull is the failure injected by FS.FailAfter.
var ErrDiskFull = errors.New("no space left on device")

// Sequence returns n bytes counting up from 1: 0x01, 0x02, ...
func Sequence(n int) []byte {
	data := make([]byte, n)
	for i := range data {
		data[i] = byte(i + 1)
	}

	return data
}

// FS wraps fstest.MapFS with fault injection.
type FS struct {
	fstest.MapFS

	// FailAfter, when positive, makes every read fail with ErrDiskFull once
	// that many bytes have been served from a file.
	FailAfter int
	// Tamper, when set, rewrites file contents for every open after the first.
	Tamper func([]byte) []byte

	opens atomic.Int32
}

// New returns an FS holding a single file.
func New(path string, data []byte) *FS {
	return &FS{MapFS: fstest.MapFS{path: {Data: data, Mode: 0o644}}}
}

// Opens reports how many times Open succeeded.
func (f *FS) Opens() int {
	return int(f.opens.Load())
}

// Open implements fs.FS.
func (f *FS) Open(name string) (fs.File, error) {
	file, err := f.MapFS.Open(name)
	if err != nil {
		return nil, err
	}

	n := f.opens.Add(1)

	entry, ok := f.MapFS[name]
	if !ok || entry.Mode.IsDir() {
		return file, nil
	}

	data := entry.Data
	if f.Tamper != nil && n > 1 {
		data = f.Tamper(bytes.Clone(data))
	}

	var r io.Reader = bytes.NewReader(data)
	if f.FailAfter > 0 {
		r = io.MultiReader(io.LimitReader(r, int64(f.FailAfter)), iotest.ErrReader(ErrDiskFull))
	}

	return &faultFile{File: file, r: r}, nil
}

type faultFile struct {
	fs.File

	r io.Reader
}

func (f *faultFile) Read(p []byte) (int, error) {
	return f.r.Read(p)
}

// Opener is a dynamic loader double that records every call.
type Opener struct {
	// Err, when set, is returned by Open.
	Err error
	// Panic, when set, makes Open panic with this value.
	Panic any
	// Delay is slept inside Open to widen race windows.
	Delay time.Duration

	mu       sync.Mutex
	paths    []string
	inFlight atomic.Int32
	maxSeen  atomic.Int32
}

// Open records path and returns a fake handle.
func (o *Opener) Open(path string) (uintptr, error) {
	cur := o.inFlight.Add(1)
	defer o.inFlight.Add(-1)

	for {
		seen := o.maxSeen.Load()
		if cur <= seen || o.maxSeen.CompareAndSwap(seen, cur) {
			break
		}
	}

	if o.Delay > 0 {
		time.Sleep(o.Delay)
	}

	o.mu.Lock()
	o.paths = append(o.paths, path)
	n := len(o.paths)
	o.mu.Unlock()

	if o.Panic != nil {
		panic(o.Panic)
	}

	if o.Err != nil {
		return 0, o.Err
	}

	return uintptr(0x1000 + n), nil
}

// Lookup returns a fake symbol address.
func (o *Opener) Lookup(handle uintptr, symbol string) (uintptr, error) {
	if symbol == "" {
		return 0, errors.New("empty symbol")
	}

	return handle + uintptr(len(symbol)), nil
}

// Calls returns the paths passed to Open, in order.
func (o *Opener) Calls() []string {
	o.mu.Lock()
	defer o.mu.Unlock()

	return append([]string(nil), o.paths...)
}

// MaxConcurrent reports the highest number of simultaneous Open calls seen.
func (o *Opener) MaxConcurrent() int {
	return int(o.maxSeen.Load())
}

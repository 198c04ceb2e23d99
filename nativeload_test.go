package nativeload

import (
	"context"
	"crypto/md5" //nolint:gosec // Fingerprint comparison only.
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/nativeload/internal/bundletest"
	"github.com/oshokin/nativeload/internal/config"
)

type fixture struct {
	bundle   *bundletest.FS
	opener   *bundletest.Opener
	registry *CleanupRegistry
	scratch  string
	loader   *Loader
}

// newFixture wires a loader over an in-memory bundle holding native/foo.so.
func newFixture(t *testing.T, data []byte, opts ...Option) *fixture {
	t.Helper()

	f := &fixture{
		bundle:   bundletest.New("native/foo.so", data),
		opener:   new(bundletest.Opener),
		registry: NewCleanupRegistry(),
		scratch:  t.TempDir(),
	}

	base := []Option{
		WithResources(f.bundle),
		WithExtension(".so"),
		WithScratchDir(f.scratch),
		WithOpener(f.opener),
		WithCleanup(f.registry),
	}

	loader, err := New(append(base, opts...)...)
	require.NoError(t, err)

	f.loader = loader

	return f
}

func (f *fixture) scratchFiles(t *testing.T) []os.DirEntry {
	t.Helper()

	entries, err := os.ReadDir(f.scratch)
	require.NoError(t, err)

	return entries
}

// TestLoadLibrary_Success loads a 17-byte library end to end.
func TestLoadLibrary_Success(t *testing.T) {
	t.Parallel()

	data := bundletest.Sequence(17)
	f := newFixture(t, data)

	lib, err := f.loader.LoadLibrary(context.Background(), "foo")
	require.NoError(t, err)
	require.Equal(t, "foo", lib.Name)
	require.Equal(t, "native/foo.so", lib.Resource)
	require.Equal(t, int64(17), lib.Size)
	require.NotZero(t, lib.Handle())
	require.Equal(t, []string{lib.Path}, f.opener.Calls())

	sum := md5.Sum(data) //nolint:gosec // Fingerprint comparison only.
	require.Equal(t, hex.EncodeToString(sum[:]), lib.Digest)

	got, err := os.ReadFile(lib.Path)
	require.NoError(t, err)
	require.Equal(t, data, got)

	_, err = lib.Lookup("foo_version")
	require.NoError(t, err)

	require.Equal(t, 1, f.registry.Len())
	require.Equal(t, 1, f.registry.Run(context.Background()))
	require.Empty(t, f.scratchFiles(t))
}

// TestLoadLibrary_EmptyLibrary treats a zero-byte resource as a valid extraction.
func TestLoadLibrary_EmptyLibrary(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)

	lib, err := f.loader.LoadLibrary(context.Background(), "foo")
	require.NoError(t, err)
	require.Zero(t, lib.Size)
	require.Len(t, f.opener.Calls(), 1)
}

// TestLoadLibrary_NotFound fails before any file system write.
func TestLoadLibrary_NotFound(t *testing.T) {
	t.Parallel()

	f := newFixture(t, bundletest.Sequence(17))

	for _, name := range []string{"bar", "../foo", ""} {
		_, err := f.loader.LoadLibrary(context.Background(), name)
		require.ErrorIs(t, err, ErrResourceNotFound, name)
		require.ErrorIs(t, err, ErrNativeLibraryNotFound, name)
		require.NotErrorIs(t, err, ErrNativeLibraryLoadFailed, name)

		var loadErr *Error
		require.ErrorAs(t, err, &loadErr)
		require.Equal(t, StageLocate, loadErr.Stage)
		require.Equal(t, name, loadErr.Name)
	}

	require.Empty(t, f.scratchFiles(t))
	require.Zero(t, f.registry.Len())
	require.Empty(t, f.opener.Calls())
	require.Zero(t, f.bundle.Opens())
}

// TestLoadLibrary_InterruptedCopy reports an i/o failure after 10 of 17 bytes and never loads.
func TestLoadLibrary_InterruptedCopy(t *testing.T) {
	t.Parallel()

	f := newFixture(t, bundletest.Sequence(17))
	f.bundle.FailAfter = 10

	_, err := f.loader.LoadLibrary(context.Background(), "foo")
	require.ErrorIs(t, err, ErrExtractionIO)
	require.ErrorIs(t, err, ErrNativeLibraryLoadFailed)
	require.NotErrorIs(t, err, ErrNativeLibraryNotFound)

	var loadErr *Error
	require.ErrorAs(t, err, &loadErr)
	require.Equal(t, StageExtract, loadErr.Stage)

	require.Empty(t, f.opener.Calls())
	require.Empty(t, f.scratchFiles(t))
}

// TestLoadLibrary_Corrupted reports a verification mismatch and never loads.
func TestLoadLibrary_Corrupted(t *testing.T) {
	t.Parallel()

	f := newFixture(t, bundletest.Sequence(17))
	f.bundle.Tamper = func(b []byte) []byte {
		b[0] ^= 0x80
		return b
	}

	_, err := f.loader.LoadLibrary(context.Background(), "foo")
	require.ErrorIs(t, err, ErrExtractionCorrupted)
	require.ErrorIs(t, err, ErrNativeLibraryLoadFailed)
	require.NotErrorIs(t, err, ErrExtractionIO)
	require.Empty(t, f.opener.Calls())
}

// TestLoadLibrary_LinkageFailure surfaces loader rejections as load failures.
func TestLoadLibrary_LinkageFailure(t *testing.T) {
	t.Parallel()

	f := newFixture(t, bundletest.Sequence(17))
	f.opener.Err = errors.New("undefined symbol: libbar_init")

	_, err := f.loader.LoadLibrary(context.Background(), "foo")
	require.ErrorIs(t, err, ErrLinkage)
	require.ErrorIs(t, err, ErrNativeLibraryLoadFailed)

	var loadErr *Error
	require.ErrorAs(t, err, &loadErr)
	require.Equal(t, StageLoad, loadErr.Stage)
	require.Equal(t, f.scratch, filepath.Dir(loadErr.Path))
	require.Contains(t, err.Error(), "libbar_init")
}

// TestLoadLibrary_RetryUsesFreshFile runs the pipeline twice and expects two scratch files.
func TestLoadLibrary_RetryUsesFreshFile(t *testing.T) {
	t.Parallel()

	f := newFixture(t, bundletest.Sequence(17))

	first, err := f.loader.LoadLibrary(context.Background(), "foo")
	require.NoError(t, err)

	second, err := f.loader.LoadLibrary(context.Background(), "foo")
	require.NoError(t, err)

	require.NotEqual(t, first.Path, second.Path)
	require.Len(t, f.scratchFiles(t), 2)
}

// TestLoadLibrary_Concurrent extracts in parallel but loads one library at a time.
func TestLoadLibrary_Concurrent(t *testing.T) {
	t.Parallel()

	const callers = 24

	f := newFixture(t, bundletest.Sequence(4096))
	f.opener.Delay = time.Millisecond

	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		paths = make(map[string]struct{}, callers)
	)

	for range callers {
		wg.Add(1)

		go func() {
			defer wg.Done()

			lib, err := f.loader.LoadLibrary(context.Background(), "foo")
			if err != nil {
				t.Errorf("load: %v", err)
				return
			}

			mu.Lock()
			paths[lib.Path] = struct{}{}
			mu.Unlock()
		}()
	}

	wg.Wait()

	require.Len(t, paths, callers)
	require.Equal(t, 1, f.opener.MaxConcurrent())
	require.Len(t, f.opener.Calls(), callers)
}

// TestNew_InvalidDigest rejects unsupported digest algorithms up front.
func TestNew_InvalidDigest(t *testing.T) {
	t.Parallel()

	_, err := New(WithDigest("whirlpool"))
	require.ErrorIs(t, err, ErrAlgorithmUnavailable)
}

// TestFromConfig reads libraries from a directory named in the configuration.
func TestFromConfig(t *testing.T) {
	t.Parallel()

	resources := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(resources, "libs"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(resources, "libs", "foo.dll"), bundletest.Sequence(17), 0o600))

	cfg := &Config{
		Namespace:    "libs",
		FilePrefix:   "xfiledialog",
		ScratchDir:   t.TempDir(),
		Extension:    "dll",
		Digest:       "blake3",
		ResourcesDir: resources,
	}

	path := filepath.Join(t.TempDir(), "nativeload.yaml")
	require.NoError(t, config.Save(path, cfg))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)

	opener := new(bundletest.Opener)

	loader, err := New(FromConfig(loaded), WithOpener(opener), WithCleanup(NewCleanupRegistry()))
	require.NoError(t, err)

	lib, err := loader.LoadLibrary(context.Background(), "foo")
	require.NoError(t, err)
	require.Equal(t, "libs/foo.dll", lib.Resource)
	require.Equal(t, cfg.ScratchDir, filepath.Dir(lib.Path))
	require.Regexp(t, `^xfiledialog-[0-9a-f-]{36}\.dll$`, filepath.Base(lib.Path))
	require.Len(t, lib.Digest, 64)
}

// TestPackageDefault exercises the package-level entry points.
func TestPackageDefault(t *testing.T) {
	_, err := LoadLibrary(context.Background(), "foo")
	require.ErrorIs(t, err, errNoDefault)

	f := newFixture(t, bundletest.Sequence(17))

	SetDefault(f.loader)
	t.Cleanup(func() { SetDefault(nil) })

	lib, err := LoadLibrary(context.Background(), "foo")
	require.NoError(t, err)
	require.Equal(t, []string{lib.Path}, f.opener.Calls())
}

// TestCleanup_DefaultRegistry removes files scheduled on the default registry.
func TestCleanup_DefaultRegistry(t *testing.T) {
	scratch := t.TempDir()

	loader, err := New(
		WithResources(bundletest.New("native/foo.so", bundletest.Sequence(17))),
		WithExtension(".so"),
		WithScratchDir(scratch),
		WithOpener(new(bundletest.Opener)),
	)
	require.NoError(t, err)

	_, err = loader.LoadLibrary(context.Background(), "foo")
	require.NoError(t, err)

	require.GreaterOrEqual(t, Cleanup(context.Background()), 1)

	entries, err := os.ReadDir(scratch)
	require.NoError(t, err)
	require.Empty(t, entries)
}

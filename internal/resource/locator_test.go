package resource

import (
	"io"
	"io/fs"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"
)

// TestPath covers the naming convention and rejected names.
func TestPath(t *testing.T) {
	t.Parallel()

	p, err := Path("native", "foo", ".so")
	require.NoError(t, err)
	require.Equal(t, "native/foo.so", p)

	p, err = Path("/native/linux_amd64/", "foo", ".so")
	require.NoError(t, err)
	require.Equal(t, "native/linux_amd64/foo.so", p)

	p, err = Path("", "foo", ".dll")
	require.NoError(t, err)
	require.Equal(t, "foo.dll", p)

	for _, name := range []string{"", ".", "..", "a/b", `a\b`} {
		_, err = Path("native", name, ".so")
		require.ErrorIs(t, err, ErrInvalidName, name)
	}
}

// TestLocator_ExistsAndOpen verifies lookups against an in-memory bundle.
func TestLocator_ExistsAndOpen(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{
		"native/foo.so":   {Data: []byte{1, 2, 3}},
		"native/empty.so": {Data: nil},
		"native/dir.so":   {Mode: fs.ModeDir | 0o755},
	}
	l := NewLocator(fsys)

	require.True(t, l.Exists("native/foo.so"))
	require.True(t, l.Exists("native/empty.so"))
	require.False(t, l.Exists("native/bar.so"))
	require.False(t, l.Exists("native/dir.so"))

	f, err := l.Open("native/foo.so")
	require.NoError(t, err)

	data, err := io.ReadAll(f)
	require.NoError(t, err)
	require.NoError(t, f.Close())
	require.Equal(t, []byte{1, 2, 3}, data)

	_, err = l.Open("native/bar.so")
	require.ErrorIs(t, err, ErrNotFound)
}

// TestLocator_NilFS treats a missing bundle as having no resources.
func TestLocator_NilFS(t *testing.T) {
	t.Parallel()

	l := NewLocator(nil)
	require.False(t, l.Exists("native/foo.so"))

	_, err := l.Open("native/foo.so")
	require.ErrorIs(t, err, ErrNotFound)
}

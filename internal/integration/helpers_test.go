package integration

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/nativeload/internal/config"
)

// mathLibraryCandidates lists where distributions keep the C math library.
var mathLibraryCandidates = []string{
	"/lib/x86_64-linux-gnu/libm.so.6",
	"/usr/lib/x86_64-linux-gnu/libm.so.6",
	"/lib/aarch64-linux-gnu/libm.so.6",
	"/usr/lib/aarch64-linux-gnu/libm.so.6",
	"/lib64/libm.so.6",
	"/usr/lib64/libm.so.6",
	"/usr/lib/libm.so.6",
}

// systemMathLibrary returns the bytes of a real shared object, or skips the test.
func systemMathLibrary(t *testing.T) []byte {
	t.Helper()

	if runtime.GOOS != "linux" {
		t.Skip("real library loading is exercised on linux only")
	}

	for _, candidate := range mathLibraryCandidates {
		data, err := os.ReadFile(candidate)
		if err == nil {
			return data
		}
	}

	t.Skip("no libm.so.6 found on this system")

	return nil
}

// writeBundle lays out a resources directory holding one library and a
// config file pointing at it. Returns the config path.
func writeBundle(t *testing.T, name string, data []byte) (cfgPath, scratch string) {
	t.Helper()

	root := t.TempDir()
	resources := filepath.Join(root, "resources")
	scratch = filepath.Join(root, "scratch")

	require.NoError(t, os.MkdirAll(filepath.Join(resources, config.DefaultNamespace), 0o755))
	require.NoError(t, os.MkdirAll(scratch, 0o755))
	require.NoError(t, os.WriteFile(
		filepath.Join(resources, config.DefaultNamespace, name+".so"), data, 0o644))

	cfgPath = filepath.Join(root, config.DefaultConfigFilename)
	require.NoError(t, config.Save(cfgPath, &config.Config{
		Namespace:    config.DefaultNamespace,
		ScratchDir:   scratch,
		Extension:    ".so",
		Digest:       "sha256",
		LogLevel:     "error",
		ResourcesDir: resources,
	}))

	return cfgPath, scratch
}

// scratchEntries lists files left in the scratch directory.
func scratchEntries(t *testing.T, dir string) []string {
	t.Helper()

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}

	return names
}

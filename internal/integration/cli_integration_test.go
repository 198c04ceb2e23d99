package integration

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/nativeload/internal/service/checksum"
	"github.com/oshokin/nativeload/internal/service/common"
	"github.com/oshokin/nativeload/internal/service/exporter"
	"github.com/oshokin/nativeload/internal/service/loadlib"
)

// TestCLI_DigestExportLoad drives the three library commands against one bundle.
//
// Commands share the global logger level and the default cleanup registry, so
// this test does not run in parallel.
func TestCLI_DigestExportLoad(t *testing.T) {
	data := systemMathLibrary(t)
	cfgPath, scratch := writeBundle(t, "m", data)
	ctx := context.Background()

	// Digest without extraction.
	var out bytes.Buffer

	err := checksum.Run(ctx, &checksum.Options{
		Options: common.Options{ConfigPath: cfgPath, Out: &out},
		Name:    "m",
	})
	require.NoError(t, err)

	sum := sha256.Sum256(data)
	require.Equal(t, "sha256:"+hex.EncodeToString(sum[:])+"  native/m.so\n", out.String())
	require.Empty(t, scratchEntries(t, scratch))

	// Export to a stable location.
	out.Reset()

	target := filepath.Join(t.TempDir(), "lib", "libm-copy.so")

	err = exporter.Run(ctx, &exporter.Options{
		Options: common.Options{ConfigPath: cfgPath, Out: &out},
		Name:    "m",
		Output:  target,
	})
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(out.String(), target+"\tsha512:"))

	exported, err := os.ReadFile(target)
	require.NoError(t, err)
	require.Equal(t, data, exported)

	// Load removes its scratch file on return.
	out.Reset()

	err = loadlib.Run(ctx, &loadlib.Options{
		Options: common.Options{ConfigPath: cfgPath, Out: &out},
		Names:   []string{"m"},
	})
	require.NoError(t, err)

	fields := strings.Split(strings.TrimSpace(out.String()), "\t")
	require.Len(t, fields, 4)
	require.Equal(t, "m", fields[0])
	require.Equal(t, scratch, filepath.Dir(fields[1]))
	require.Equal(t, "sha256:"+hex.EncodeToString(sum[:]), fields[3])
	require.Empty(t, scratchEntries(t, scratch))
}

// TestCLI_LoadReportsEveryFailure passes one good and two bad names.
func TestCLI_LoadReportsEveryFailure(t *testing.T) {
	data := systemMathLibrary(t)
	cfgPath, scratch := writeBundle(t, "m", data)

	var out bytes.Buffer

	err := loadlib.Run(context.Background(), &loadlib.Options{
		Options: common.Options{ConfigPath: cfgPath, Out: &out},
		Names:   []string{"absent", "m", "missing"},
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), `"absent"`)
	require.Contains(t, err.Error(), `"missing"`)
	require.Equal(t, 1, strings.Count(out.String(), "\n"))
	require.Empty(t, scratchEntries(t, scratch))
}

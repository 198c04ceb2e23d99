package digest

import (
	"bytes"
	"crypto/md5" //nolint:gosec // Known answer test.
	"crypto/sha512"
	"errors"
	"io"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/require"
	"github.com/zeebo/blake3"
)

// TestReader_KnownAnswers compares Reader with the direct implementations.
func TestReader_KnownAnswers(t *testing.T) {
	t.Parallel()

	data := []byte("native library bytes")

	got, err := Reader(bytes.NewReader(data), MD5)
	require.NoError(t, err)

	wantMD5 := md5.Sum(data) //nolint:gosec // Known answer test.
	require.Equal(t, wantMD5[:], got)

	got, err = Reader(bytes.NewReader(data), SHA512)
	require.NoError(t, err)

	wantSHA := sha512.Sum512(data)
	require.Equal(t, wantSHA[:], got)

	got, err = Reader(bytes.NewReader(data), BLAKE3)
	require.NoError(t, err)

	wantBlake := blake3.Sum256(data)
	require.Equal(t, wantBlake[:], got)
}

// TestReader_EmptyStream checks the digest of an empty input.
func TestReader_EmptyStream(t *testing.T) {
	t.Parallel()

	got, err := Reader(strings.NewReader(""), MD5)
	require.NoError(t, err)
	require.Equal(t, "d41d8cd98f00b204e9800998ecf8427e", String(got))
}

// TestReader_DrainsUnseekableStream feeds a one-byte-at-a-time reader and expects it fully consumed.
func TestReader_DrainsUnseekableStream(t *testing.T) {
	t.Parallel()

	src := strings.NewReader(strings.Repeat("x", 10000))

	_, err := Reader(iotest.OneByteReader(src), SHA256)
	require.NoError(t, err)
	require.Zero(t, src.Len())
}

// TestReader_PropagatesReadErrors ensures read failures are reported.
func TestReader_PropagatesReadErrors(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")

	_, err := Reader(io.MultiReader(strings.NewReader("abc"), iotest.ErrReader(boom)), MD5)
	require.ErrorIs(t, err, boom)
}

// TestNew_Unavailable verifies unknown algorithms are rejected.
func TestNew_Unavailable(t *testing.T) {
	t.Parallel()

	_, err := New("whirlpool")
	require.ErrorIs(t, err, ErrAlgorithmUnavailable)

	_, err = Reader(strings.NewReader("x"), "whirlpool")
	require.ErrorIs(t, err, ErrAlgorithmUnavailable)
}

// TestParse covers defaults, case folding and rejection.
func TestParse(t *testing.T) {
	t.Parallel()

	alg, err := Parse("")
	require.NoError(t, err)
	require.Equal(t, Default, alg)

	alg, err = Parse(" SHA256 ")
	require.NoError(t, err)
	require.Equal(t, SHA256, alg)

	_, err = Parse("crc32")
	require.ErrorIs(t, err, ErrAlgorithmUnavailable)

	_, ok := BLAKE3.CryptoHash()
	require.False(t, ok)

	h, ok := SHA512.CryptoHash()
	require.True(t, ok)
	require.True(t, h.Available())
}

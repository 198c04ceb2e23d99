// Package digest computes checksums over byte streams.
//
// Algorithms backed by crypto.Hash are only usable when their implementation
// is linked into the binary; the blank imports below link the ones the module
// advertises. Asking for anything else yields ErrAlgorithmUnavailable, which
// callers treat as a configuration defect rather than a transient failure.
package digest

import (
	"crypto"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"io"
	"strings"

	"github.com/zeebo/blake3"

	// Link the crypto.Hash implementations listed in hashes.
	_ "crypto/md5"
	_ "crypto/sha1"
	_ "crypto/sha256"
	_ "crypto/sha512"
)

// Algorithm names a digest function.
type Algorithm string

const (
	// MD5 is the default algorithm for extraction bookkeeping.
	MD5 Algorithm = "md5"
	// SHA1 is kept for compatibility with older manifests.
	SHA1 Algorithm = "sha1"
	// SHA256 is a general purpose checksum.
	SHA256 Algorithm = "sha256"
	// SHA512 is the checksum handed to go-update on export.
	SHA512 Algorithm = "sha512"
	// BLAKE3 is the fastest option for large libraries.
	BLAKE3 Algorithm = "blake3"

	// Default is used when no algorithm is configured.
	Default = MD5
)

// ErrAlgorithmUnavailable is returned for unknown or unlinked algorithms.
var ErrAlgorithmUnavailable = errors.New("digest algorithm unavailable")

//nolint:gochecknoglobals // Read-only lookup table.
var hashes = map[Algorithm]crypto.Hash{
	MD5:    crypto.MD5,
	SHA1:   crypto.SHA1,
	SHA256: crypto.SHA256,
	SHA512: crypto.SHA512,
}

// Parse converts a user supplied name into an Algorithm.
// An empty name selects Default.
func Parse(name string) (Algorithm, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return Default, nil
	}

	alg := Algorithm(name)
	if _, err := New(alg); err != nil {
		return "", err
	}

	return alg, nil
}

// CryptoHash returns the crypto.Hash behind alg, if there is one.
func (a Algorithm) CryptoHash() (crypto.Hash, bool) {
	h, ok := hashes[a]
	return h, ok
}

// New returns a fresh hash.Hash for alg.
func New(alg Algorithm) (hash.Hash, error) {
	if alg == BLAKE3 {
		return blake3.New(), nil
	}

	h, ok := hashes[alg]
	if !ok {
		return nil, fmt.Errorf("%q: %w", alg, ErrAlgorithmUnavailable)
	}

	if !h.Available() {
		return nil, fmt.Errorf("%q is not linked: %w", alg, ErrAlgorithmUnavailable)
	}

	return h.New(), nil
}

// Reader consumes r until EOF and returns its digest.
// r is not closed.
func Reader(r io.Reader, alg Algorithm) ([]byte, error) {
	h, err := New(alg)
	if err != nil {
		return nil, err
	}

	if _, err = io.Copy(h, r); err != nil {
		return nil, fmt.Errorf("read stream: %w", err)
	}

	return h.Sum(nil), nil
}

// String renders a digest as lowercase hex.
func String(sum []byte) string {
	return hex.EncodeToString(sum)
}

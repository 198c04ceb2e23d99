//go:build !unix

package extractor

import "os"

// makeLoadable clears the read-only attribute; execute bits do not exist here.
func makeLoadable(path string) error {
	return os.Chmod(path, LoadableMode)
}

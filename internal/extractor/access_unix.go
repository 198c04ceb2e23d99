//go:build unix

package extractor

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// makeLoadable opens the file to the loader and checks the current user can read it.
func makeLoadable(path string) error {
	if err := os.Chmod(path, LoadableMode); err != nil {
		return err
	}

	if err := unix.Access(path, unix.R_OK); err != nil {
		return fmt.Errorf("access check: %w", err)
	}

	return nil
}

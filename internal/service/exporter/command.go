package exporter

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	goupdate "github.com/doitdistributed/go-update"

	"github.com/oshokin/nativeload/internal/digest"
	"github.com/oshokin/nativeload/internal/extractor"
	"github.com/oshokin/nativeload/internal/logger"
	"github.com/oshokin/nativeload/internal/resource"
	"github.com/oshokin/nativeload/internal/service/common"
	"github.com/oshokin/nativeload/internal/stream"
)

// checksumAlgorithm is what go-update verifies before replacing the target.
const checksumAlgorithm = digest.SHA512

var (
	// errOutputRequired is returned when no destination was given.
	errOutputRequired = errors.New("output path must be provided")
	// errExportMismatch is returned when the installed file differs from the bundle.
	errExportMismatch = errors.New("exported file does not match the bundled resource")
)

// Options are inputs accepted by the export command.
type Options struct {
	common.Options

	// Name is the logical library name.
	Name string
	// Output is the destination file.
	Output string
}

// Run installs the library called opts.Name at opts.Output.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "export")

	env, err := common.Setup(ctx, &opts.Options)
	if err != nil {
		return err
	}

	name, err := common.ValidateName(opts.Name)
	if err != nil {
		return err
	}

	if opts.Output == "" {
		return errOutputRequired
	}

	target, err := filepath.Abs(opts.Output)
	if err != nil {
		return fmt.Errorf("resolve output: %w", err)
	}

	resourcePath, err := env.Loader.ResourcePath(name)
	if err != nil {
		return err
	}

	locator := resource.NewLocator(env.Resources)

	data, err := readResource(locator, resourcePath)
	if err != nil {
		return err
	}

	sum, err := digest.Reader(bytes.NewReader(data), checksumAlgorithm)
	if err != nil {
		return err
	}

	if err = install(target, data, sum); err != nil {
		return fmt.Errorf("install %s: %w", target, err)
	}

	if err = verify(locator, resourcePath, target); err != nil {
		return err
	}

	logger.InfoKV(ctx, "Library exported", "resource", resourcePath, "path", target, "bytes", len(data))

	_, err = fmt.Fprintf(env.Out, "%s\t%s:%s\n", target, checksumAlgorithm, digest.String(sum))

	return err
}

func readResource(locator *resource.Locator, resourcePath string) ([]byte, error) {
	f, err := locator.Open(resourcePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", resourcePath, err)
	}

	return data, nil
}

// install swaps data in at target. go-update renames the previous file away,
// so the target has to exist first.
func install(target string, data, sum []byte) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}

	if _, err := os.Stat(target); errors.Is(err, os.ErrNotExist) {
		f, createErr := os.Create(target) //nolint:gosec // Path comes from the operator.
		if createErr != nil {
			return createErr
		}

		if createErr = f.Close(); createErr != nil {
			return createErr
		}
	}

	hash, _ := checksumAlgorithm.CryptoHash()

	options := goupdate.Options{
		TargetPath: target,
		TargetMode: extractor.LoadableMode,
		Checksum:   sum,
		Hash:       hash,
	}

	if err := goupdate.Apply(bytes.NewReader(data), options); err != nil {
		return err
	}

	// go-update creates the file through the process umask.
	return os.Chmod(target, extractor.LoadableMode)
}

func verify(locator *resource.Locator, resourcePath, target string) error {
	src, err := locator.Open(resourcePath)
	if err != nil {
		return err
	}
	defer src.Close()

	installed, err := os.Open(target) //nolint:gosec // Path comes from the operator.
	if err != nil {
		return err
	}
	defer installed.Close()

	equal, err := stream.Equal(src, installed)
	if err != nil {
		return fmt.Errorf("verify %s: %w", target, err)
	}

	if !equal {
		return fmt.Errorf("%s: %w", target, errExportMismatch)
	}

	return nil
}

// Package checksum implements the digest command, which fingerprints a
// bundled library without extracting it.
package checksum

import (
	"context"
	"fmt"

	"github.com/oshokin/nativeload/internal/digest"
	"github.com/oshokin/nativeload/internal/logger"
	"github.com/oshokin/nativeload/internal/resource"
	"github.com/oshokin/nativeload/internal/service/common"
)

// Options are inputs accepted by the digest command.
type Options struct {
	common.Options

	// Name is the logical library name.
	Name string
	// Algorithm overrides the configured digest algorithm.
	Algorithm string
}

// Run prints "<algorithm>:<hex>  <resource path>".
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "digest")

	env, err := common.Setup(ctx, &opts.Options)
	if err != nil {
		return err
	}

	name, err := common.ValidateName(opts.Name)
	if err != nil {
		return err
	}

	algName := opts.Algorithm
	if algName == "" {
		algName = env.Config.Digest
	}

	alg, err := digest.Parse(algName)
	if err != nil {
		return err
	}

	resourcePath, err := env.Loader.ResourcePath(name)
	if err != nil {
		return err
	}

	f, err := resource.NewLocator(env.Resources).Open(resourcePath)
	if err != nil {
		return err
	}
	defer f.Close()

	sum, err := digest.Reader(f, alg)
	if err != nil {
		return fmt.Errorf("digest %s: %w", resourcePath, err)
	}

	logger.DebugKV(ctx, "Digest computed", "resource", resourcePath, "algorithm", alg)

	_, err = fmt.Fprintf(env.Out, "%s:%s  %s\n", alg, digest.String(sum), resourcePath)

	return err
}

package loadlib

import (
	"context"
	"errors"
	"fmt"

	"github.com/oshokin/nativeload"
	"github.com/oshokin/nativeload/internal/cleanup"
	"github.com/oshokin/nativeload/internal/logger"
	"github.com/oshokin/nativeload/internal/service/common"
)

// Options are inputs accepted by the load command.
type Options struct {
	common.Options

	// Names lists the libraries to load.
	Names []string
	// KeepFiles skips scratch file removal, for inspection.
	KeepFiles bool
}

// Run loads every requested library and reports the first failure.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "load")

	env, err := common.Setup(ctx, &opts.Options)
	if err != nil {
		return err
	}

	if !opts.KeepFiles {
		defer func() {
			removed := cleanup.Default.Run(ctx)
			logger.DebugKV(ctx, "Scratch files removed", "count", removed)
		}()
	}

	var errs []error

	for _, raw := range opts.Names {
		name, err := common.ValidateName(raw)
		if err != nil {
			return err
		}

		lib, err := env.Loader.LoadLibrary(ctx, name)
		if err != nil {
			errs = append(errs, err)
			continue
		}

		printLibrary(env, lib)
	}

	return errors.Join(errs...)
}

func printLibrary(env *common.Env, lib *nativeload.Library) {
	if lib.Digest == "" {
		_, _ = fmt.Fprintf(env.Out, "%s\t%s\t%d bytes\n", lib.Name, lib.Path, lib.Size)
		return
	}

	_, _ = fmt.Fprintf(env.Out, "%s\t%s\t%d bytes\t%s:%s\n",
		lib.Name, lib.Path, lib.Size, env.Config.Digest, lib.Digest)
}

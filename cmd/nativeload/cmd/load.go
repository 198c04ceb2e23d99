package cmd

import (
	"github.com/spf13/cobra"

	"github.com/oshokin/nativeload/internal/service/loadlib"
)

var (
	// keepFiles leaves scratch files in place after loading.
	keepFiles bool

	loadCmd = &cobra.Command{
		Use:   "load <name>...",
		Short: "Extract and load bundled libraries.",
		Long: `Run the full extract, verify and load pipeline for each named library and
print the scratch path it was loaded from. Useful as a deployment check.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			ctx, stop := signalContext()
			defer stop()

			return loadlib.Run(ctx, &loadlib.Options{
				Options:   commonOptions,
				Names:     args,
				KeepFiles: keepFiles,
			})
		},
	}
)

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	loadCmd.Flags().BoolVar(&keepFiles, "keep", false, "do not delete scratch files on exit")
}

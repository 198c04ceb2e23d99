package cmd

import (
	"github.com/spf13/cobra"

	"github.com/oshokin/nativeload/internal/service/exporter"
)

var (
	// output is the export destination.
	output string

	exportCmd = &cobra.Command{
		Use:   "export <name>",
		Short: "Install a bundled library at a fixed path.",
		Long: `Write the bundled library to --output, replacing any existing file
atomically once its SHA-512 checksum has been verified.`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			ctx, stop := signalContext()
			defer stop()

			return exporter.Run(ctx, &exporter.Options{
				Options: commonOptions,
				Name:    args[0],
				Output:  output,
			})
		},
	}
)

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	exportCmd.Flags().StringVarP(&output, "output", "o", "", "destination file")

	if err := exportCmd.MarkFlagRequired("output"); err != nil {
		panic(err)
	}
}

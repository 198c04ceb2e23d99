package cmd

import (
	"github.com/spf13/cobra"

	"github.com/oshokin/nativeload/internal/service/checksum"
)

var (
	// algorithm overrides the configured digest.
	algorithm string

	digestCmd = &cobra.Command{
		Use:   "digest <name>",
		Short: "Print the digest of a bundled library.",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			ctx, stop := signalContext()
			defer stop()

			return checksum.Run(ctx, &checksum.Options{
				Options:   commonOptions,
				Name:      args[0],
				Algorithm: algorithm,
			})
		},
	}
)

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	digestCmd.Flags().StringVarP(&algorithm, "algorithm", "a", "",
		"md5, sha1, sha256, sha512 or blake3 (default from configuration)")
}

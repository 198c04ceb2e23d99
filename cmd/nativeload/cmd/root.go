package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/oshokin/nativeload/internal/config"
	"github.com/oshokin/nativeload/internal/logger"
	"github.com/oshokin/nativeload/internal/service/common"
	"github.com/oshokin/nativeload/internal/version"
)

var (
	// commonOptions are bound to the persistent flags.
	commonOptions common.Options

	// rootCmd represents the base command.
	rootCmd = &cobra.Command{
		Use:   "nativeload",
		Short: "Extract, verify and load bundled native libraries.",
		Long: `Extract native shared libraries bundled into this binary and load them.

Every load copies the library for the current platform to a uniquely named
file in the temp directory, compares the copy byte for byte with the bundle
and hands it to the operating system loader. Scratch files are removed when
the command exits.

Settings are read from nativeload.yaml in the working directory when present.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

// Execute runs the nativeload CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		logger.ErrorKV(context.Background(), "Command failed", "error", err)
		os.Exit(1)
	}
}

// signalContext cancels on SIGINT and SIGTERM so deferred cleanup still runs.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	bindCommonFlags(rootCmd.PersistentFlags())

	rootCmd.AddCommand(loadCmd, digestCmd, exportCmd)
}

// bindCommonFlags registers the flags shared by every subcommand.
func bindCommonFlags(flags *pflag.FlagSet) {
	flags.StringVarP(&commonOptions.ConfigPath, "config", "c", "",
		"path to configuration file (default "+config.DefaultConfigFilename+" if present)")
	flags.StringVarP(&commonOptions.ResourcesDir, "resources", "r", "",
		"read libraries from this directory instead of the embedded bundle")
	flags.StringVar(&commonOptions.LogLevel, "log-level", "",
		"log level: debug, info, warn or error")
}

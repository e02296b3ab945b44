package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/obentoo/aurup/internal/common/config"
	"github.com/obentoo/aurup/internal/common/logger"
	"github.com/obentoo/aurup/internal/common/output"
	"github.com/obentoo/aurup/internal/update"
	"github.com/obentoo/aurup/internal/upstream"
	"github.com/spf13/cobra"
)

var (
	verbose bool
	quiet   bool
	noColor bool

	flagPush       bool
	flagSkip       bool
	flagUpdateOnly bool
	flagForce      bool
	flagNoCache    bool
)

var rootCmd = &cobra.Command{
	Use:   "aurup [flags] <package-dir>",
	Short: "Synchronize a PKGBUILD with its upstream releases",
	Long: `aurup checks the upstream GitHub releases of a locally checked-out package,
rewrites pkgver/pkgrel in the PKGBUILD, verifies the result with a local
build, regenerates checksums and .SRCINFO, and optionally commits and
pushes the update.`,
	Args: cobra.ExactArgs(1),
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Configure logging based on flags
		if verbose {
			logger.SetVerbose(true)
		}
		if quiet {
			logger.SetQuiet(true)
		}
		if noColor {
			output.NoColor()
		}
	},
	Run: runUpdate,
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress non-error output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")

	rootCmd.Flags().BoolVar(&flagPush, "push", false, "Push the commit to the remote")
	rootCmd.Flags().BoolVar(&flagSkip, "skip", false, "Skip the local build verification")
	rootCmd.Flags().BoolVar(&flagUpdateOnly, "update-only", false, "Stop after rewriting and regenerating metadata")
	rootCmd.Flags().BoolVar(&flagForce, "force", false, "Rewrite even when already up to date")
	rootCmd.Flags().BoolVar(&flagNoCache, "no-cache", false, "Do not cache upstream version lookups")
}

func runUpdate(cmd *cobra.Command, args []string) {
	dir := args[0]

	cfg, err := config.Load()
	if err != nil {
		logger.Error("loading config: %v", err)
		os.Exit(1)
	}

	opts := []update.Option{
		update.WithConfig(cfg),
		update.WithPush(flagPush),
		update.WithSkipBuild(flagSkip),
		update.WithUpdateOnly(flagUpdateOnly),
		update.WithForce(flagForce),
		update.WithProgress(func(format string, fargs ...interface{}) {
			if !quiet {
				fmt.Printf(format+"\n", fargs...)
			}
		}),
	}

	if !flagNoCache {
		if cacheDir, err := upstream.DefaultCacheDir(); err == nil {
			if cache, err := upstream.NewCache(cacheDir); err == nil {
				opts = append(opts, update.WithCache(cache))
			}
		}
	}

	updater, err := update.NewUpdater(dir, opts...)
	if err != nil {
		output.PrintError("%v", err)
		os.Exit(1)
	}

	result, err := updater.Run(context.Background())
	if err != nil {
		output.PrintError("%v", err)
		if errors.Is(err, update.ErrPush) {
			output.PrintWarning("the commit was created; push again manually once the remote is reachable")
		}
		os.Exit(1)
	}

	switch {
	case result.UpToDate:
		output.PrintSuccess("%s is up to date (%s)", output.FormatPackage(result.Package), result.NewVersion)
	case result.Pushed:
		output.PrintSuccess("%s updated and pushed: %s", output.FormatPackage(result.Package),
			output.FormatBump(result.OldVersion, result.NewVersion))
	case result.Committed:
		output.PrintSuccess("%s updated and committed: %s", output.FormatPackage(result.Package),
			output.FormatBump(result.OldVersion, result.NewVersion))
	default:
		output.PrintSuccess("%s updated: %s", output.FormatPackage(result.Package),
			output.FormatBump(result.OldVersion, result.NewVersion))
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

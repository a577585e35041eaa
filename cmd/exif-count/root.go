// --- START OF FINAL REVISED FILE cmd/exif-count/root.go ---
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term" // For reliable TTY detection

	"github.com/aben20807/exif-count/internal/cli"
	"github.com/aben20807/exif-count/internal/cli/config"
	"github.com/aben20807/exif-count/pkg/photostat"
)

var (
	// These are set during build time using -ldflags
	version = "dev"     // Default version
	commit  = "none"    // Default commit hash
	date    = "unknown" // Default build date

	// Flags persistent across commands
	cfgFile     string // Path to config file
	profileName string // Name of profile to use
	verbose     bool   // Verbose logging flag
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = newRootCmd()

// newRootCmd builds the root command and registers its flags.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "exif-count -s <srcDir>",
		Short: "Counts EXIF values across a photo collection and charts their distribution.",
		Long: `exif-count scans a directory of photos, reads the capture date, camera model,
lens model, aperture, exposure time, ISO and focal length of every image, and draws
the distribution of each as a horizontal bar chart.

It features:
  - Parallel extraction with a per-file timeout.
  - Chronological and numeric ordering of dates, apertures, exposures and ISO values.
  - Text charts or json/yaml/toml output.
  - An interactive Terminal UI (TUI) for monitoring progress.`,
		Version:      fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		Args:         cobra.NoArgs,
		SilenceUsage: true, // Usage is for flag errors, not for failed runs
		RunE:         runRoot,
	}
	cmd.SetVersionTemplate(`{{.Use}} version {{.Version}}` + "\n")

	// Persistent flags
	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Configuration file path (default is search standard locations like ., $HOME/.config/exif-count/)")
	cmd.PersistentFlags().StringVar(&profileName, "profile", "", "Name of configuration profile to use")
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose (debug) logging output (disables TUI)")

	// Source selection flags
	// Note: Flag names align with the viper keys bound in internal/cli/config/config.go.
	cmd.Flags().StringP("src", "s", "", "Required. Directory containing the photos.")
	_ = cmd.MarkFlagRequired("src")
	cmd.Flags().BoolP("recursive", "r", photostat.DefaultRecursive, "Descend into subdirectories")
	cmd.Flags().String("dir_filter", photostat.DefaultDirFilter, "Only count files whose parent directory path contains this substring")
	cmd.Flags().String("img_exts", photostat.DefaultImageExtensions, "Comma separated, case-insensitive list of image extensions")

	// Performance flags
	cmd.Flags().Int("concurrency", photostat.DefaultConcurrency, "Number of parallel workers (0 for auto-detect CPU cores)")
	cmd.Flags().String("task-timeout", photostat.DefaultTaskTimeoutString, "Time limit for reading a single file (e.g., '500ms', '10s')")

	// Output flags
	cmd.Flags().String("output-format", string(photostat.DefaultOutputFormat), `Output format ("text", "json", "yaml", "toml")`)
	cmd.Flags().Int("chart-width", photostat.DefaultChartWidth, "Length of the longest bar (0 derives it from the terminal width)")
	cmd.Flags().Bool("no-tui", false, "Disable interactive Terminal UI even if in a TTY")

	return cmd
}

// runRoot loads the configuration and runs the count until it completes or a signal arrives.
func runRoot(cmd *cobra.Command, args []string) error {
	// Create a context that listens for interrupt signals
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	opts, logger, err := config.LoadAndValidate(cfgFile, profileName, version, verbose, cmd.Flags())
	if err != nil {
		return err
	}

	// Give the terminal a moment before the TUI takes it over.
	if term.IsTerminal(int(os.Stderr.Fd())) && !opts.Verbose && opts.TuiEnabled {
		time.Sleep(100 * time.Millisecond)
	}

	return cli.Run(ctx, opts, logger, cmd.OutOrStdout())
}

// Execute runs the root command. Cobra prints any returned error.
func Execute() error {
	return rootCmd.Execute()
}

// --- END OF FINAL REVISED FILE cmd/exif-count/root.go ---

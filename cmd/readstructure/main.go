package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/scttfrdmn/readstructure-go/internal/config"
	"github.com/scttfrdmn/readstructure-go/internal/logging"
	"github.com/scttfrdmn/readstructure-go/internal/ui"
)

var (
	configPath string
	logLevel   string
	colorMode  string

	// cfg is resolved before any subcommand runs.
	cfg = config.Default()
)

var rootCmd = &cobra.Command{
	Use:   "readstructure",
	Short: "Read structure tools for sequencing reads",
	Long: `Read structures describe how the bases of a sequencing read split into
template, barcode, UMI and skipped segments, e.g. "8M12S+T".

This tool explains read structures, slices reads by them, and converts
FASTQ files into unmapped BAM with barcodes and UMIs moved into tags.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"YAML configuration file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info",
		"Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&colorMode, "color", ui.ColorAuto,
		"Color output: auto, always, never")

	rootCmd.AddCommand(explainCmd)
	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(fastqToBAMCmd)
	rootCmd.AddCommand(versionCmd)
}

// run executes the command line and returns the process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	err := rootCmd.ExecuteContext(ctx)
	if err == nil {
		return ExitSuccess
	}

	styles := ui.NewStyles(ui.IsColorEnabled(colorMode, stderr))
	fmt.Fprintln(stderr, styles.RenderError(err))
	return exitCode(err)
}

// setup resolves configuration from defaults, the config file, the
// environment and flags, in increasing precedence, and installs the logger.
func setup(cmd *cobra.Command, _ []string) error {
	loaded := config.Default()
	if configPath != "" {
		var err error
		if loaded, err = config.Load(configPath); err != nil {
			return withExitCode(ExitConfigError, err)
		}
	}

	if err := config.LoadFromEnv(loaded); err != nil {
		return withExitCode(ExitConfigError, err)
	}

	if cmd.Flags().Changed("log-level") {
		loaded.LogLevel = logLevel
	}

	if err := loaded.Validate(); err != nil {
		return withExitCode(ExitConfigError, err)
	}

	logger := logging.NewWithWriter(cmd.ErrOrStderr(), loaded.LogLevel)
	logging.SetDefault(logger)
	cmd.SetContext(logging.WithLogger(cmd.Context(), logger))

	logger.Debug("starting", logging.FieldVersion, version, "command", cmd.Name())
	if configPath != "" {
		logger.Debug("loaded configuration", "path", configPath)
	}

	cfg = loaded
	return nil
}

// Command railkit generates printable rail, cover and connector STL files.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/soypat/railkit"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Global flags
	verbose    bool
	configPath string
	outDir     string
	timeout    time.Duration

	// Parameter flags, applied over the config file when set.
	flagParams = railkit.DefaultParameters()

	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "railkit",
	Short: "Parametric cable rail generator",
	Long: `railkit builds a channel rail, a snap-on cover and a sleeve connector
from a few dimensions and writes them as binary STL files laid out for
printing.

Parameters come from a YAML or TOML file (--config) and are overridden by
flags.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config := zap.NewProductionConfig()
		if verbose {
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = config.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	pf.StringVarP(&configPath, "config", "c", "", "Parameter file (.yaml, .yml or .toml)")
	pf.StringVarP(&outDir, "out", "o", ".", "Output directory")
	pf.DurationVar(&timeout, "timeout", 5*time.Minute, "Generation timeout")
	addParamFlags(pf)

	rootCmd.AddCommand(generateCmd, exportCmd, watchCmd, previewCmd, snapshotCmd, dxfCmd, paramsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// signalContext is canceled on interrupt or after the timeout. A zero
// timeout waits for the signal only.
func signalContext(d time.Duration) (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	if d <= 0 {
		return ctx, stop
	}
	ctx, cancel := context.WithTimeout(ctx, d)
	return ctx, func() { cancel(); stop() }
}

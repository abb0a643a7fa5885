package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ManakiYoshihara/GAS-con-test/config"
	"github.com/ManakiYoshihara/GAS-con-test/drive"
	"github.com/ManakiYoshihara/GAS-con-test/logging"
	"github.com/ManakiYoshihara/GAS-con-test/report"
)

var (
	// Global flags
	verbose    bool
	configPath string
	timeout    time.Duration

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "gascon",
	Short: "Compile monthly student reports from lesson records",
	Long: `gascon merges a student's individual and group lesson records into a
per-student data workbook, builds one report table per month from the
templates, publishes a values-only shared copy and links it from the
student's announcement document.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		logger, err = logging.New(cfg.Logging, verbose)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "gascon.yaml", "Path to the YAML configuration")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Minute, "Operation timeout")

	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(submitCmd)
	rootCmd.AddCommand(seedCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// commandContext is canceled on SIGINT, SIGTERM or after --timeout.
func commandContext() (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	ctx, cancel := context.WithTimeout(ctx, timeout)
	return ctx, func() {
		cancel()
		stop()
	}
}

// openOrchestrator opens the configured drive and wraps it in an
// orchestrator. The returned func closes the drive.
func openOrchestrator(opts ...report.Option) (*report.Orchestrator, func(), error) {
	d, err := drive.Open(cfg.Drive.Root,
		drive.WithBaseURL(cfg.Drive.BaseURL),
		drive.WithLogger(logger),
	)
	if err != nil {
		return nil, nil, err
	}
	o, err := report.New(cfg, d, append([]report.Option{report.WithLogger(logger)}, opts...)...)
	if err != nil {
		d.Close()
		return nil, nil, err
	}
	return o, func() {
		if err := d.Close(); err != nil {
			logger.Warn("close drive", zap.Error(err))
		}
	}, nil
}

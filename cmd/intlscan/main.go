package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"intlscan/pkg/scanner"
	"intlscan/pkg/util"
)

const version = "0.1.0-dev"

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var (
		root      = "."
		output    string
		include   []string
		exclude   []string
		workers   int
		watch     bool
		logLevel  string
		logFormat string
	)

	cmd := &cobra.Command{
		Use:   "intlscan [directory]",
		Short: "Extract translation keys from TypeScript/JavaScript sources",
		Long: `intlscan scans source files for useTranslations and getTranslations
usage, resolves the namespaced keys passed to the returned functions, and
maintains a merged JSON message catalog. Existing translations are never
overwritten. With --watch, changed files are re-scanned and new keys are
added incrementally.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				root = args[0]
			}
			return run(root, output, include, exclude, workers, watch, logLevel, logFormat)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "catalog JSON file (default messages.json)")
	cmd.Flags().StringSliceVarP(&include, "pattern", "p", nil, "include glob, repeatable (default all supported sources)")
	cmd.Flags().StringSliceVar(&exclude, "exclude", nil, "exclude glob, repeatable")
	cmd.Flags().IntVar(&workers, "workers", 0, "extraction worker count (default based on CPU count)")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "keep running and merge changes incrementally")
	cmd.Flags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")
	cmd.Flags().StringVar(&logFormat, "log-format", "text", "log format: text or json")

	cmd.AddCommand(versionCmd())

	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("intlscan %s\n", version)
		},
	}
}

func run(root, output string, include, exclude []string, workers int, watch bool, logLevel, logFormat string) error {
	logger := util.NewLogger(util.LoggerConfig{
		Level:  util.LogLevel(logLevel),
		Format: util.LogFormat(logFormat),
		Output: os.Stderr,
	})

	cfg, err := resolveConfig(root, output, include, exclude, workers)
	if err != nil {
		logger.Error("failed to load project config", "error", err)
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s := scanner.NewScanner(logger)
	defer s.Close()

	stats, err := s.Run(ctx, cfg)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			logger.Error("scan failed", "error", err)
		}
		return err
	}

	logger.Info("scan complete",
		"files", stats.FilesDiscovered,
		"keys", stats.KeysExtracted,
		"added", stats.KeysAdded,
		"output", cfg.OutputPath,
		"ms", stats.TotalTimeMs)

	if !watch {
		return nil
	}

	w, err := scanner.NewWatcher(cfg, s.Extractor(), logger)
	if err != nil {
		logger.Error("failed to start watcher", "error", err)
		return err
	}

	if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("watch failed", "error", err)
		return err
	}
	return nil
}

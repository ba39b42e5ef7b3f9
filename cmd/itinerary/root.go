package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tripweave/itinerary-engine/pkg/config"
	"github.com/tripweave/itinerary-engine/pkg/engine"
	"github.com/tripweave/itinerary-engine/pkg/logger"
)

const version = "1.0.0"

var strategyFlag string

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:     "itinerary",
	Short:   "AI itinerary generation engine",
	Long:    "Turns one trip request into an assembled, persisted day-by-day itinerary.",
	Version: version,
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&strategyFlag, "strategy", "s", "", "Generation strategy: content_first or ai_first (default: $ITINERARY_STRATEGY)")
}

// bootstrap loads configuration and builds the engine. Every command writes
// its output to stdout, so logs go elsewhere.
func bootstrap(ctx context.Context) (*engine.Engine, *logger.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	if strategyFlag != "" {
		cfg.Strategy = strategyFlag
		if err := cfg.Validate(); err != nil {
			return nil, nil, err
		}
	}
	cfg.LoggerOutputPath = logDestination(cfg.LoggerOutputPath)

	log, err := logger.New(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	eng, err := engine.New(ctx, cfg, log.Logger)
	if err != nil {
		log.Sync()
		return nil, nil, err
	}
	return eng, log, nil
}

// logDestination moves a stdout log destination to stderr
func logDestination(path string) string {
	if path == "" || path == "stdout" {
		return "stderr"
	}
	return path
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}

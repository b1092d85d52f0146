// Reelscore - IMDb Rating Prediction Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelscore

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/tomtom215/reelscore/internal/config"
	"github.com/tomtom215/reelscore/internal/logging"
	"github.com/tomtom215/reelscore/internal/pipeline"
)

func main() {
	stage, err := parseArgs(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		fmt.Fprintln(os.Stderr, usage())
		os.Exit(2)
	}
	if stage == "help" {
		fmt.Println(usage())
		return
	}

	// Load configuration first to get logging settings
	cfg, err := config.Load()
	if err != nil {
		// Use default logger for config errors (config not yet available)
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
	})

	log := logging.WithComponent("main")
	log.Info().
		Str("command", stage).
		Str("output_dir", cfg.Paths.OutputDir).
		Str("fit_scope", cfg.Features.FitScope).
		Strs("models", cfg.Models.Enabled).
		Msg("Configuration loaded")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = pipeline.NewRunner(cfg, os.Stdout).Execute(ctx, stage)
	stop()
	if err != nil {
		log.Fatal().Err(err).Str("command", stage).Msg("Pipeline failed")
	}
}

// parseArgs returns the stage named on the command line, "all" when none
// is given, or "help".
func parseArgs(args []string) (string, error) {
	if len(args) == 0 {
		return pipeline.StageAll, nil
	}
	if len(args) > 1 {
		return "", fmt.Errorf("expected at most one command, got %d", len(args))
	}

	switch arg := strings.ToLower(args[0]); arg {
	case "-h", "--help", "help":
		return "help", nil
	default:
		for _, s := range pipeline.Stages {
			if arg == s {
				return s, nil
			}
		}
		return "", fmt.Errorf("unknown command %q", args[0])
	}
}

func usage() string {
	return "usage: reelscore [" + strings.Join(pipeline.Stages, "|") + "]"
}

// Reelscore - IMDb Rating Prediction Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelscore

// Package pipeline runs the fetch, flatten and train stages in order.
//
// Each stage reads the previous stage's file output, so stages can also be
// run on their own against files left by an earlier run:
//
//	fetch    API pages        -> movies.json
//	flatten  movies.json      -> movies_clean.csv
//	train    movies_clean.csv -> vocabulary.yaml, movies_cleaned_final.csv,
//	                             rating_vs_year.png, evaluation.json
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/tomtom215/reelscore/internal/config"
	"github.com/tomtom215/reelscore/internal/flatten"
	"github.com/tomtom215/reelscore/internal/logging"
	"github.com/tomtom215/reelscore/internal/metrics"
	"github.com/tomtom215/reelscore/internal/ottapi"
)

// Stage names accepted by Execute.
const (
	StageFetch   = "fetch"
	StageFlatten = "flatten"
	StageTrain   = "train"
	StageAll     = "all"
)

// Stages lists the commands Execute accepts.
var Stages = []string{StageFetch, StageFlatten, StageTrain, StageAll}

// Runner executes pipeline stages for one configuration.
type Runner struct {
	cfg *config.Config
	out io.Writer
}

// NewRunner creates a runner. The model evaluation summary is printed to out.
func NewRunner(cfg *config.Config, out io.Writer) *Runner {
	if out == nil {
		out = io.Discard
	}
	return &Runner{cfg: cfg, out: out}
}

// Execute runs the named stage under a fresh run id, records its duration
// and exports metrics when a textfile path is configured.
func (r *Runner) Execute(ctx context.Context, stage string) error {
	var fn func(context.Context) error
	switch stage {
	case StageFetch:
		fn = r.Fetch
	case StageFlatten:
		fn = r.Flatten
	case StageTrain:
		fn = r.Train
	case StageAll, "":
		stage, fn = StageAll, r.Run
	default:
		return fmt.Errorf("unknown stage %q (want one of %v)", stage, Stages)
	}

	runID := logging.NewRunID()
	ctx = logging.ContextWithLogger(ctx, logging.WithComponent("pipeline"))
	ctx = logging.ContextWithRunID(ctx, runID)
	log := logging.Ctx(ctx)
	log.Info().Str("command", stage).Msg("Pipeline run started")

	start := time.Now()
	err := fn(ctx)
	metrics.RecordStage(stage, time.Since(start), err)

	if r.cfg.Metrics.TextfilePath != "" {
		if werr := metrics.WriteTextfile(r.cfg.Metrics.TextfilePath); werr != nil {
			log.Warn().Err(werr).Str("path", r.cfg.Metrics.TextfilePath).Msg("Failed to export metrics")
		}
	}

	if err != nil {
		return err
	}
	log.Info().Str("command", stage).Dur("duration", time.Since(start)).Msg("Pipeline run finished")
	return nil
}

// Run executes fetch, flatten and train. An incomplete fetch is logged and
// the pipeline continues with the partial capture. A cancelled ctx stops the
// run before the next stage so earlier outputs are left untouched.
func (r *Runner) Run(ctx context.Context) error {
	if err := r.Fetch(ctx); err != nil {
		if !errors.Is(err, ottapi.ErrIncomplete) {
			return err
		}
		logging.Ctx(ctx).Warn().Err(err).Msg("Continuing with partial capture")
	}
	for _, next := range []struct {
		name string
		fn   func(context.Context) error
	}{
		{StageFlatten, r.Flatten},
		{StageTrain, r.Train},
	} {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%s: %w", next.name, err)
		}
		if err := next.fn(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Fetch downloads every search page and saves the raw capture. A partial
// capture is saved before an ErrIncomplete error is returned.
func (r *Runner) Fetch(ctx context.Context) error {
	return r.stage(ctx, StageFetch, func(ctx context.Context) error {
		client, err := ottapi.NewClient(r.cfg.API)
		if err != nil {
			return err
		}

		records, fetchErr := client.FetchAll(ctx)
		if fetchErr != nil && !errors.Is(fetchErr, ottapi.ErrIncomplete) {
			return fetchErr
		}

		path := r.cfg.Paths.Resolve(r.cfg.Paths.RawJSON)
		if err := ottapi.SaveCapture(path, records); err != nil {
			return err
		}
		logging.Ctx(ctx).Info().Int("records", len(records)).Str("path", path).Msg("Saved raw capture")
		return fetchErr
	})
}

// Flatten converts the raw capture into the flat CSV table.
func (r *Runner) Flatten(ctx context.Context) error {
	return r.stage(ctx, StageFlatten, func(ctx context.Context) error {
		_, err := flatten.Run(ctx,
			r.cfg.Paths.Resolve(r.cfg.Paths.RawJSON),
			r.cfg.Paths.Resolve(r.cfg.Paths.FlatCSV))
		return err
	})
}

// Train encodes the flat table, evaluates the enabled models and writes
// the reports.
func (r *Runner) Train(ctx context.Context) error {
	return r.stage(ctx, StageTrain, r.train)
}

// stage tags ctx with the stage name and logs and times fn.
func (r *Runner) stage(ctx context.Context, name string, fn func(context.Context) error) error {
	ctx = logging.ContextWithStage(ctx, name)
	log := logging.Ctx(ctx)

	if err := os.MkdirAll(r.cfg.Paths.OutputDir, 0o750); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	log.Info().Msg("Stage started")
	start := time.Now()
	err := fn(ctx)
	metrics.RecordStage(name, time.Since(start), err)

	if err != nil {
		log.Error().Err(err).Dur("duration", time.Since(start)).Msg("Stage failed")
		return fmt.Errorf("%s: %w", name, err)
	}
	log.Info().Dur("duration", time.Since(start)).Msg("Stage finished")
	return nil
}

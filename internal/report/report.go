// Reelscore - IMDb Rating Prediction Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelscore

// Package report writes the pipeline's outputs: the model evaluation
// summary, the cleaned dataset and the rating versus year scatter plot.
//
// Every file is written to a temporary file in the target directory and
// renamed into place, so readers never observe a partial output.
package report

import (
	"fmt"
	"io"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/reelscore/internal/ml"
	"github.com/tomtom215/reelscore/internal/table"
)

// Evaluation is the persisted summary of one training run.
type Evaluation struct {
	RunID       string      `json:"run_id,omitempty"`
	GeneratedAt time.Time   `json:"generated_at"`
	FitScope    string      `json:"fit_scope"`
	Rows        int         `json:"rows"`
	// Features and Dropped are the variance selection fitted on every row,
	// matching the exported dataset. Each result carries the columns its
	// own holdout fit selected.
	Features []string    `json:"dataset_features"`
	Dropped  []string    `json:"dataset_dropped_features,omitempty"`
	Results  []ml.Result `json:"results"`
}

// WriteEvaluation writes ev as indented JSON.
func WriteEvaluation(path string, ev *Evaluation) error {
	data, err := json.MarshalIndent(ev, "", "  ")
	if err != nil {
		return fmt.Errorf("encode evaluation: %w", err)
	}
	return table.WriteAtomic(path, func(w io.Writer) error {
		_, err := w.Write(append(data, '\n'))
		return err
	})
}

// WriteSummary prints one block per model with scores to two decimals.
func WriteSummary(w io.Writer, results []ml.Result) error {
	if _, err := fmt.Fprintln(w, "\n--- Model Evaluation ---"); err != nil {
		return err
	}
	for _, r := range results {
		if _, err := fmt.Fprintf(w, "\n%s:\n  MSE (test): %.2f\n  R2 (test): %.2f\n  R2 (5-fold CV): %.2f\n",
			r.Model, r.MSE, r.R2, r.CVR2); err != nil {
			return err
		}
	}
	return nil
}

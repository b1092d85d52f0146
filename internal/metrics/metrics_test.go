// Reelscore - IMDb Rating Prediction Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelscore

package metrics

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordAPIRequest(t *testing.T) {
	tests := []struct {
		name    string
		outcome string
	}{
		{"success", "success"},
		{"retryable", "retryable"},
		{"fatal", "fatal"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := testutil.ToFloat64(APIRequests.WithLabelValues(tt.outcome))
			RecordAPIRequest(tt.outcome, 20*time.Millisecond)
			after := testutil.ToFloat64(APIRequests.WithLabelValues(tt.outcome))

			if after != before+1 {
				t.Errorf("APIRequests{%s} = %v, want %v", tt.outcome, after, before+1)
			}
		})
	}
}

func TestRecordPage(t *testing.T) {
	pagesBefore := testutil.ToFloat64(PagesFetched)
	recordsBefore := testutil.ToFloat64(RecordsFetched)

	RecordPage(10)
	RecordPage(7)

	if got := testutil.ToFloat64(PagesFetched) - pagesBefore; got != 2 {
		t.Errorf("PagesFetched delta = %v, want 2", got)
	}
	if got := testutil.ToFloat64(RecordsFetched) - recordsBefore; got != 17 {
		t.Errorf("RecordsFetched delta = %v, want 17", got)
	}
}

func TestRecordModelResult(t *testing.T) {
	RecordModelResult("Ridge Regression", 0.42, 0.31, 0.28, 1500*time.Millisecond)

	if got := testutil.ToFloat64(ModelTestMSE.WithLabelValues("Ridge Regression")); got != 0.42 {
		t.Errorf("ModelTestMSE = %v, want 0.42", got)
	}
	if got := testutil.ToFloat64(ModelTestR2.WithLabelValues("Ridge Regression")); got != 0.31 {
		t.Errorf("ModelTestR2 = %v, want 0.31", got)
	}
	if got := testutil.ToFloat64(ModelCVR2.WithLabelValues("Ridge Regression")); got != 0.28 {
		t.Errorf("ModelCVR2 = %v, want 0.28", got)
	}
	if got := testutil.ToFloat64(ModelTrainingDuration.WithLabelValues("Ridge Regression")); got != 1.5 {
		t.Errorf("ModelTrainingDuration = %v, want 1.5", got)
	}
}

func TestRecordStage(t *testing.T) {
	LastSuccess.Set(0)

	RecordStage("train", 2*time.Second, nil)
	if got := testutil.ToFloat64(StageDuration.WithLabelValues("train")); got != 2 {
		t.Errorf("StageDuration{train} = %v, want 2", got)
	}
	if got := testutil.ToFloat64(LastSuccess); got != 0 {
		t.Errorf("LastSuccess should only be set by the full run, got %v", got)
	}

	RecordStage("all", time.Second, errors.New("fetch failed"))
	if got := testutil.ToFloat64(LastSuccess); got != 0 {
		t.Errorf("LastSuccess should not be set on failure, got %v", got)
	}

	RecordStage("all", time.Second, nil)
	if got := testutil.ToFloat64(LastSuccess); got == 0 {
		t.Error("LastSuccess should be set after a successful run")
	}
}

func TestWriteTextfile(t *testing.T) {
	RecordPage(3)

	path := filepath.Join(t.TempDir(), "reelscore.prom")
	if err := WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read textfile: %v", err)
	}
	if !strings.Contains(string(data), "ott_pages_fetched_total") {
		t.Errorf("textfile missing ott_pages_fetched_total:\n%s", data)
	}
}

func TestWriteTextfile_BadPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "dir", "reelscore.prom")
	if err := WriteTextfile(path); err == nil {
		t.Error("expected error for missing directory")
	}
}

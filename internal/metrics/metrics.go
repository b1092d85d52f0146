// Reelscore - IMDb Rating Prediction Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelscore

package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Fetch Metrics
	PagesFetched = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ott_pages_fetched_total",
			Help: "Total number of search result pages fetched",
		},
	)

	RecordsFetched = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ott_records_fetched_total",
			Help: "Total number of raw movie records fetched",
		},
	)

	APIRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ott_requests_total",
			Help: "Total number of HTTP requests to the search API by outcome",
		},
		[]string{"outcome"}, // success, retryable, fatal
	)

	APIRetries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ott_retries_total",
			Help: "Total number of retries after transient API failures",
		},
	)

	APIRequestDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ott_request_duration_seconds",
			Help:    "Search API request duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // success, failure, rejected
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// Feature Metrics
	FlattenRows = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "flatten_rows",
			Help: "Number of rows in the most recently flattened table",
		},
	)

	FeatureRows = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "feature_rows",
			Help: "Number of encoded movie rows after aggregation",
		},
	)

	MoviesDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feature_movies_dropped_total",
			Help: "Total number of movies removed during encoding",
		},
		[]string{"reason"}, // no_genre, missing_id
	)

	ColumnsDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "feature_columns_dropped_total",
			Help: "Total number of feature columns removed by the variance filter",
		},
	)

	UnknownCategories = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feature_unknown_categories_total",
			Help: "Total number of category values not present in a reused vocabulary",
		},
		[]string{"kind"}, // genre, type
	)

	// Model Metrics
	ModelTestMSE = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "model_test_mse",
			Help: "Mean squared error on the held-out test partition",
		},
		[]string{"model"},
	)

	ModelTestR2 = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "model_test_r2",
			Help: "Coefficient of determination on the held-out test partition",
		},
		[]string{"model"},
	)

	ModelCVR2 = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "model_cv_r2",
			Help: "Mean k-fold cross-validated coefficient of determination",
		},
		[]string{"model"},
	)

	ModelTrainingDuration = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "model_training_duration_seconds",
			Help: "Wall time spent fitting and scoring a model, including cross-validation",
		},
		[]string{"model"},
	)

	// Run Metrics
	StageDuration = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "pipeline_stage_duration_seconds",
			Help: "Duration of the most recent run of each pipeline stage",
		},
		[]string{"stage"},
	)

	LastSuccess = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pipeline_last_success_timestamp_seconds",
			Help: "Unix timestamp of the last successful pipeline run",
		},
	)
)

// RecordAPIRequest records one HTTP attempt against the search API
func RecordAPIRequest(outcome string, duration time.Duration) {
	APIRequests.WithLabelValues(outcome).Inc()
	APIRequestDuration.Observe(duration.Seconds())
}

// RecordPage records a page that returned records
func RecordPage(records int) {
	PagesFetched.Inc()
	RecordsFetched.Add(float64(records))
}

// RecordModelResult records the scores of one evaluated model
func RecordModelResult(model string, mse, r2, cvR2 float64, duration time.Duration) {
	ModelTestMSE.WithLabelValues(model).Set(mse)
	ModelTestR2.WithLabelValues(model).Set(r2)
	ModelCVR2.WithLabelValues(model).Set(cvR2)
	ModelTrainingDuration.WithLabelValues(model).Set(duration.Seconds())
}

// RecordStage records a stage duration and, on success of the final stage, the run timestamp
func RecordStage(stage string, duration time.Duration, err error) {
	StageDuration.WithLabelValues(stage).Set(duration.Seconds())
	if err == nil && stage == "all" {
		LastSuccess.Set(float64(time.Now().Unix()))
	}
}

// WriteTextfile writes every metric in the default registry to path in the
// Prometheus text format. The file is written atomically.
func WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, prometheus.DefaultGatherer); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}

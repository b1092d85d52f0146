// Reelscore - IMDb Rating Prediction Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelscore

/*
Package metrics provides Prometheus instrumentation for pipeline runs.

The pipeline is a batch job, so metrics are not scraped from an HTTP
endpoint. Instead, when metrics.textfile_path is configured, the registry is
written once at the end of a run in the text exposition format understood by
the node exporter textfile collector:

	metrics.WriteTextfile("/var/lib/node_exporter/reelscore.prom")

# Available Metrics

Fetch:
  - ott_pages_fetched_total: pages that returned results
  - ott_records_fetched_total: raw records captured
  - ott_requests_total{outcome}: HTTP attempts by outcome (success, retryable, fatal)
  - ott_retries_total: retry attempts after transient failures
  - circuit_breaker_state{name}: 0=closed, 1=half-open, 2=open
  - circuit_breaker_requests_total{name,result}
  - circuit_breaker_state_transitions_total{name,from_state,to_state}

Features:
  - flatten_rows: rows in the flat table
  - feature_rows: encoded rows after aggregation
  - feature_movies_dropped_total{reason}: movies removed during encoding
  - feature_columns_dropped_total: low variance columns removed
  - feature_unknown_categories_total{kind}: categories absent from a reused vocabulary

Models:
  - model_test_mse{model}, model_test_r2{model}, model_cv_r2{model}
  - model_training_duration_seconds{model}

Run:
  - pipeline_stage_duration_seconds{stage}
  - pipeline_last_success_timestamp_seconds
*/
package metrics

// Reelscore - IMDb Rating Prediction Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelscore

// Package main is the entry point for the reelscore command.
//
// Reelscore collects movie search results from the OTT details API, turns
// them into a numeric dataset and compares regression baselines that
// predict a movie's IMDb rating.
//
// # Usage
//
//	reelscore [fetch|flatten|train|all]
//
// The default command is all, which runs the three stages in order:
//
//  1. fetch: page through the advanced search endpoint and save movies.json
//  2. flatten: join list fields and write movies_clean.csv
//  3. train: encode features, evaluate LinearRegression, Ridge and
//     RandomForest, and write the cleaned dataset, plot and evaluation
//
// # Configuration
//
// Configuration is loaded via Koanf v2 with layered sources (highest priority wins):
//   - Environment variables
//   - Config file (reelscore.yaml or config.yaml, or the file named by CONFIG_PATH)
//   - Built-in defaults
//
// The fetch stage needs a RapidAPI key:
//
//	export OTT_API_KEY=your-rapidapi-key
//	./reelscore
//
// Other commonly used variables:
//   - OUTPUT_DIR: directory for every output file (default: data)
//   - FIT_SCOPE: train (default) or full, the rows imputation and scaling are fitted on
//   - KEEP_EMPTY_GENRE: keep movies without genres (default: false)
//   - REUSE_VOCABULARY: encode with the saved vocabulary.yaml (default: false)
//   - LOG_LEVEL, LOG_FORMAT: zerolog level and json or console output
//   - METRICS_TEXTFILE: write Prometheus metrics here after the run
//
// # Signal Handling
//
// SIGINT and SIGTERM cancel the run. An interrupted fetch still saves the
// pages it has already downloaded.
//
// # Exit Status
//
// The command exits 0 on success and 1 when configuration or any stage fails.
package main

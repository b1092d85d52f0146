// Reelscore - IMDb Rating Prediction Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelscore

// Package config loads and validates the pipeline configuration.
//
// Configuration is layered with koanf: built-in defaults, then an optional
// YAML file, then environment variables. See LoadWithKoanf.
package config

import (
	"path/filepath"
	"time"
)

// Config holds all pipeline configuration.
type Config struct {
	API      APIConfig     `koanf:"api"`
	Paths    PathsConfig   `koanf:"paths"`
	Features FeatureConfig `koanf:"features"`
	Split    SplitConfig   `koanf:"split"`
	Models   ModelsConfig  `koanf:"models"`
	Logging  LoggingConfig `koanf:"logging"`
	Metrics  MetricsConfig `koanf:"metrics"`
}

// APIConfig configures the OTT details search client.
type APIConfig struct {
	BaseURL string `koanf:"base_url" validate:"required,url"`
	Host    string `koanf:"host" validate:"required"`
	// Key is the RapidAPI key. Only required by the fetch stage.
	Key string `koanf:"key"`

	// Fixed search parameters sent with every page request.
	StartYear int     `koanf:"start_year" validate:"min=1870"`
	EndYear   int     `koanf:"end_year" validate:"gtefield=StartYear"`
	MinIMDb   float64 `koanf:"min_imdb" validate:"gte=0,lte=10"`
	MaxIMDb   float64 `koanf:"max_imdb" validate:"gte=0,lte=10,gtefield=MinIMDb"`
	Genre     string  `koanf:"genre"`
	Language  string  `koanf:"language"`
	Type      string  `koanf:"type"`
	Sort      string  `koanf:"sort"`

	StartPage int `koanf:"start_page" validate:"min=1"`
	MaxPages  int `koanf:"max_pages" validate:"min=1,max=1000"`

	Timeout           time.Duration `koanf:"timeout" validate:"gt=0"`
	RetryAttempts     int           `koanf:"retry_attempts" validate:"min=0,max=10"`
	RetryBaseDelay    time.Duration `koanf:"retry_base_delay"`
	RetryMaxDelay     time.Duration `koanf:"retry_max_delay"`
	RequestsPerSecond float64       `koanf:"requests_per_second" validate:"gt=0"`

	// Circuit breaker trips after this many consecutive failed requests.
	BreakerFailures uint32        `koanf:"breaker_failures" validate:"min=1"`
	BreakerTimeout  time.Duration `koanf:"breaker_timeout"`
}

// PathsConfig names the files the pipeline reads and writes.
// Relative file names are resolved against OutputDir.
type PathsConfig struct {
	OutputDir  string `koanf:"output_dir" validate:"required"`
	RawJSON    string `koanf:"raw_json" validate:"required"`
	FlatCSV    string `koanf:"flat_csv" validate:"required"`
	FinalCSV   string `koanf:"final_csv" validate:"required"`
	Plot       string `koanf:"plot" validate:"required"`
	Vocabulary string `koanf:"vocabulary" validate:"required"`
	Evaluation string `koanf:"evaluation" validate:"required"`
}

// Resolve returns name joined to OutputDir unless name is absolute.
func (p PathsConfig) Resolve(name string) string {
	if name == "" || filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(p.OutputDir, name)
}

// FeatureConfig configures the feature builder.
type FeatureConfig struct {
	// Source column names in the flat table.
	IDField     string `koanf:"id_field" validate:"required"`
	GenreField  string `koanf:"genre_field" validate:"required"`
	RatingField string `koanf:"rating_field" validate:"required"`
	YearField   string `koanf:"year_field" validate:"required"`
	TypeField   string `koanf:"type_field" validate:"required"`

	// DropFields are display-only columns removed before encoding.
	DropFields []string `koanf:"drop_fields"`

	GenreSeparator    string  `koanf:"genre_separator" validate:"required"`
	VarianceThreshold float64 `koanf:"variance_threshold" validate:"gte=0"`

	// KeepEmptyGenre keeps movies without any genre tag as rows with all
	// genre indicators zero instead of dropping them.
	KeepEmptyGenre bool `koanf:"keep_empty_genre"`

	// FitScope selects which rows imputation, variance filtering and
	// scaling statistics are fitted on: "train" or "full".
	FitScope string `koanf:"fit_scope" validate:"oneof=train full"`

	// ReuseVocabulary encodes with the persisted vocabulary instead of
	// learning categories from the current table.
	ReuseVocabulary bool `koanf:"reuse_vocabulary"`
}

// SplitConfig configures the train/test split.
type SplitConfig struct {
	TestRatio float64 `koanf:"test_ratio" validate:"gt=0,lt=1"`
	Seed      int64   `koanf:"seed"`
}

// ModelsConfig configures the evaluated regressors.
type ModelsConfig struct {
	Enabled    []string `koanf:"enabled" validate:"min=1,dive,oneof=linear ridge forest"`
	RidgeAlpha float64  `koanf:"ridge_alpha" validate:"gte=0"`
	Trees      int      `koanf:"trees" validate:"min=1"`
	// MaxDepth of 0 grows trees until leaves are pure or too small to split.
	MaxDepth       int   `koanf:"max_depth" validate:"min=0"`
	MinSamplesLeaf int   `koanf:"min_samples_leaf" validate:"min=1"`
	ForestSeed     int64 `koanf:"forest_seed"`
	CVFolds        int   `koanf:"cv_folds" validate:"min=2"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn warning error fatal panic disabled"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}

// MetricsConfig controls the prometheus textfile export.
type MetricsConfig struct {
	// TextfilePath, when set, receives the run's metrics in the node
	// exporter textfile format after the pipeline finishes.
	TextfilePath string `koanf:"textfile_path"`
}

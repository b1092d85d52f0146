// Reelscore - IMDb Rating Prediction Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelscore

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"reelscore.yaml",
	"reelscore.yml",
	"config.yaml",
	"config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config struct with all default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:           "https://ott-details.p.rapidapi.com/advancedsearch",
			Host:              "ott-details.p.rapidapi.com",
			Key:               "",
			StartYear:         1970,
			EndYear:           2020,
			MinIMDb:           6,
			MaxIMDb:           7.8,
			Genre:             "action",
			Language:          "english",
			Type:              "movie",
			Sort:              "latest",
			StartPage:         1,
			MaxPages:          19,
			Timeout:           30 * time.Second,
			RetryAttempts:     3,
			RetryBaseDelay:    time.Second,
			RetryMaxDelay:     30 * time.Second,
			RequestsPerSecond: 2,
			BreakerFailures:   5,
			BreakerTimeout:    time.Minute,
		},
		Paths: PathsConfig{
			OutputDir:  "data",
			RawJSON:    "movies.json",
			FlatCSV:    "movies_clean.csv",
			FinalCSV:   "movies_cleaned_final.csv",
			Plot:       "rating_vs_year.png",
			Vocabulary: "vocabulary.yaml",
			Evaluation: "evaluation.json",
		},
		Features: FeatureConfig{
			IDField:           "imdbid",
			GenreField:        "genre",
			RatingField:       "imdbrating",
			YearField:         "released",
			TypeField:         "type",
			DropFields:        []string{"imageurl", "synopsis", "title"},
			GenreSeparator:    ", ",
			VarianceThreshold: 0.01,
			KeepEmptyGenre:    false,
			FitScope:          "train",
			ReuseVocabulary:   false,
		},
		Split: SplitConfig{
			TestRatio: 0.2,
			Seed:      42,
		},
		Models: ModelsConfig{
			Enabled:        []string{"linear", "ridge", "forest"},
			RidgeAlpha:     1.0,
			Trees:          100,
			MaxDepth:       0,
			MinSamplesLeaf: 1,
			ForestSeed:     42,
			CVFolds:        5,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// Default returns the built-in configuration without reading any file or
// environment variable.
func Default() *Config {
	return defaultConfig()
}

// LoadWithKoanf loads configuration using Koanf v2 with layered sources:
//  1. Defaults: built-in defaults
//  2. Config File: optional YAML config file (if exists)
//  3. Environment Variables: override any mapped setting
//
// Precedence is ENV > File > Defaults. The result is validated before it is returned.
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: Load defaults from struct
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: Load config file (optional)
	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: Load environment variables (highest priority)
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Load is an alias for LoadWithKoanf.
func Load() (*Config, error) {
	return LoadWithKoanf()
}

// findConfigFile searches for a config file in the default paths.
// Returns the path to the first file found, or empty string if none found.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths defines which config paths should be parsed as comma-separated slices
var sliceConfigPaths = []string{
	"features.drop_fields",
	"models.enabled",
}

// processSliceFields converts comma-separated string values to slices for known slice fields.
// Env vars come in as strings, but the config expects slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok {
			continue
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// envMappings maps environment variable names (lower-cased) to koanf paths.
var envMappings = map[string]string{
	// API
	"ott_api_url":             "api.base_url",
	"ott_api_host":            "api.host",
	"ott_api_key":             "api.key",
	"rapidapi_key":            "api.key",
	"ott_start_year":          "api.start_year",
	"ott_end_year":            "api.end_year",
	"ott_min_imdb":            "api.min_imdb",
	"ott_max_imdb":            "api.max_imdb",
	"ott_genre":               "api.genre",
	"ott_language":            "api.language",
	"ott_type":                "api.type",
	"ott_sort":                "api.sort",
	"ott_start_page":          "api.start_page",
	"ott_max_pages":           "api.max_pages",
	"ott_timeout":             "api.timeout",
	"ott_retry_attempts":      "api.retry_attempts",
	"ott_retry_delay":         "api.retry_base_delay",
	"ott_retry_max_delay":     "api.retry_max_delay",
	"ott_requests_per_second": "api.requests_per_second",
	"ott_breaker_failures":    "api.breaker_failures",
	"ott_breaker_timeout":     "api.breaker_timeout",

	// Paths
	"output_dir":      "paths.output_dir",
	"raw_json_path":   "paths.raw_json",
	"flat_csv_path":   "paths.flat_csv",
	"final_csv_path":  "paths.final_csv",
	"plot_path":       "paths.plot",
	"vocabulary_path": "paths.vocabulary",
	"evaluation_path": "paths.evaluation",

	// Features
	"keep_empty_genre":   "features.keep_empty_genre",
	"fit_scope":          "features.fit_scope",
	"reuse_vocabulary":   "features.reuse_vocabulary",
	"variance_threshold": "features.variance_threshold",
	"drop_fields":        "features.drop_fields",

	// Split
	"test_ratio": "split.test_ratio",
	"split_seed": "split.seed",

	// Models
	"models":       "models.enabled",
	"ridge_alpha":  "models.ridge_alpha",
	"forest_trees": "models.trees",
	"forest_depth": "models.max_depth",
	"forest_seed":  "models.forest_seed",
	"cv_folds":     "models.cv_folds",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	// Metrics
	"metrics_textfile": "metrics.textfile_path",
}

// envTransformFunc transforms environment variable names to koanf config paths.
//
// Examples:
//   - OTT_API_KEY -> api.key
//   - OUTPUT_DIR -> paths.output_dir
//   - KEEP_EMPTY_GENRE -> features.keep_empty_genre
//   - LOG_LEVEL -> logging.level
//
// Unmapped variables return "" so they are skipped.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}

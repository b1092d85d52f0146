// Reelscore - IMDb Rating Prediction Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelscore

/*
Package models defines the data structures exchanged with the OTT details API
and written to the raw capture file.

Key Components:

  - Record: one raw search result, a schemaless field to value mapping
  - SearchResponse: one page of the advanced search endpoint
  - Movie: typed view of the fields the feature builder relies on

Records are deliberately schemaless. The API does not guarantee a fixed set of
fields, so values keep their decoded JSON types (string, float64, bool, nil,
[]any or map[string]any) until the flattener normalizes them.
*/
package models

// Reelscore - IMDb Rating Prediction Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelscore

// Package flatten turns raw search results into a flat table where every
// cell is a single scalar string.
//
// Sequence values are reduced per column: a column is treated as
// sequence-valued when at least one record holds a list in it. In such a
// column a one-element list becomes its element, a longer list becomes its
// elements joined with ", ", and an empty list becomes an empty cell.
package flatten

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"github.com/tomtom215/reelscore/internal/logging"
	"github.com/tomtom215/reelscore/internal/metrics"
	"github.com/tomtom215/reelscore/internal/models"
	"github.com/tomtom215/reelscore/internal/table"
)

// Separator joins the elements of multi-valued fields.
const Separator = ", "

// ErrUnexpectedShape is returned when the raw capture is neither a JSON
// array of records nor an object holding a "results" array.
var ErrUnexpectedShape = errors.New("unexpected JSON structure")

// Decode parses a raw capture. It accepts a bare array of records or an
// object with a "results" array, matching both the saved capture and a
// single saved API page.
func Decode(data []byte) ([]models.Record, error) {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode raw capture: %w", err)
	}

	var items []any
	switch v := doc.(type) {
	case []any:
		items = v
	case map[string]any:
		results, ok := v["results"].([]any)
		if !ok {
			return nil, fmt.Errorf("%w: object without a results array", ErrUnexpectedShape)
		}
		items = results
	default:
		return nil, fmt.Errorf("%w: top level is %T", ErrUnexpectedShape, doc)
	}

	records := make([]models.Record, 0, len(items))
	for i, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: element %d is %T, not an object", ErrUnexpectedShape, i, item)
		}
		records = append(records, models.Record(obj))
	}
	return records, nil
}

// LoadCapture reads and decodes a raw capture file.
func LoadCapture(path string) ([]models.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read raw capture: %w", err)
	}
	records, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return records, nil
}

// Flatten builds the flat table. Columns are the union of all record fields
// in lexical order; a field missing from a record yields an empty cell.
func Flatten(records []models.Record) *table.Table {
	columns := unionKeys(records)
	sequence := sequenceColumns(records, columns)

	t := table.New(columns)
	t.Rows = make([][]string, 0, len(records))
	for _, rec := range records {
		row := make([]string, len(columns))
		for i, col := range columns {
			v, ok := rec[col]
			if !ok {
				continue
			}
			if list, isList := v.([]any); isList && sequence[col] {
				row[i] = joinSequence(list)
				continue
			}
			row[i] = formatScalar(v)
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// Run flattens the capture at in and writes the flat table to out.
func Run(ctx context.Context, in, out string) (*table.Table, error) {
	records, err := LoadCapture(in)
	if err != nil {
		return nil, err
	}

	t := Flatten(records)
	if err := t.WriteFile(out); err != nil {
		return nil, fmt.Errorf("write flat table: %w", err)
	}

	metrics.FlattenRows.Set(float64(t.Len()))
	logging.Ctx(ctx).Info().
		Str("input", in).
		Str("output", out).
		Int("rows", t.Len()).
		Int("columns", len(t.Columns)).
		Msg("Flat table written")
	return t, nil
}

func unionKeys(records []models.Record) []string {
	seen := make(map[string]bool)
	var keys []string
	for _, rec := range records {
		for _, k := range rec.Keys() {
			if !seen[k] {
				seen[k] = true
				keys = append(keys, k)
			}
		}
	}
	sort.Strings(keys)
	return keys
}

func sequenceColumns(records []models.Record, columns []string) map[string]bool {
	out := make(map[string]bool, len(columns))
	for _, rec := range records {
		for _, col := range columns {
			if _, ok := rec[col].([]any); ok {
				out[col] = true
			}
		}
	}
	return out
}

func joinSequence(list []any) string {
	switch len(list) {
	case 0:
		return ""
	case 1:
		return formatScalar(list[0])
	}
	parts := make([]string, len(list))
	for i, v := range list {
		parts[i] = formatScalar(v)
	}
	return strings.Join(parts, Separator)
}

// formatScalar renders one decoded JSON value as cell text.
// Nested objects and lists are kept as compact JSON.
func formatScalar(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	default:
		b, err := json.Marshal(x)
		if err != nil {
			return fmt.Sprint(x)
		}
		return string(b)
	}
}

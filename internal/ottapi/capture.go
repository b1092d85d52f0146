// Reelscore - IMDb Rating Prediction Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelscore

package ottapi

import (
	"fmt"
	"io"

	"github.com/goccy/go-json"

	"github.com/tomtom215/reelscore/internal/models"
	"github.com/tomtom215/reelscore/internal/table"
)

// SaveCapture writes records as an indented JSON array.
func SaveCapture(path string, records []models.Record) error {
	if records == nil {
		records = []models.Record{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encode capture: %w", err)
	}
	return table.WriteAtomic(path, func(w io.Writer) error {
		if _, err := w.Write(append(data, '\n')); err != nil {
			return fmt.Errorf("write capture: %w", err)
		}
		return nil
	})
}

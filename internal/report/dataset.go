// Reelscore - IMDb Rating Prediction Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelscore

package report

import (
	"fmt"
	"strconv"

	"github.com/tomtom215/reelscore/internal/table"
)

// TargetColumn is the header of the rating column in the cleaned dataset.
const TargetColumn = "rating"

// DatasetTable builds the cleaned dataset: the rating followed by one
// column per feature. X and y are not modified.
func DatasetTable(columns []string, X [][]float64, y []float64) (*table.Table, error) {
	if len(X) != len(y) {
		return nil, fmt.Errorf("dataset: %d rows but %d targets", len(X), len(y))
	}

	t := table.New(append([]string{TargetColumn}, columns...))
	for i, row := range X {
		if len(row) != len(columns) {
			return nil, fmt.Errorf("dataset: row %d has %d values, want %d", i, len(row), len(columns))
		}
		cells := make([]string, 0, len(row)+1)
		cells = append(cells, formatFloat(y[i]))
		for _, v := range row {
			cells = append(cells, formatFloat(v))
		}
		if err := t.Append(cells); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// WriteDataset writes the cleaned dataset as CSV.
func WriteDataset(path string, columns []string, X [][]float64, y []float64) error {
	t, err := DatasetTable(columns, X, y)
	if err != nil {
		return err
	}
	return t.WriteFile(path)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

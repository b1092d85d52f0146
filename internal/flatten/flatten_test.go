// Reelscore - IMDb Rating Prediction Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelscore

package flatten

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/tomtom215/reelscore/internal/models"
	"github.com/tomtom215/reelscore/internal/table"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantLen   int
		wantShape bool
		wantErr   bool
	}{
		{"bare array", `[{"imdbid":"tt1"},{"imdbid":"tt2"}]`, 2, false, false},
		{"results object", `{"page":1,"results":[{"imdbid":"tt1"}]}`, 1, false, false},
		{"empty array", `[]`, 0, false, false},
		{"object without results", `{"page":1}`, 0, true, true},
		{"results not a list", `{"results":"nope"}`, 0, true, true},
		{"scalar top level", `42`, 0, true, true},
		{"array of scalars", `[1,2]`, 0, true, true},
		{"invalid json", `[{`, 0, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode([]byte(tt.input))
			if (err != nil) != tt.wantErr {
				t.Fatalf("Decode() error = %v, wantErr %v", err, tt.wantErr)
			}
			if errors.Is(err, ErrUnexpectedShape) != tt.wantShape {
				t.Errorf("errors.Is(ErrUnexpectedShape) = %v, want %v", !tt.wantShape, tt.wantShape)
			}
			if len(got) != tt.wantLen {
				t.Errorf("len = %d, want %d", len(got), tt.wantLen)
			}
		})
	}
}

func TestFlatten(t *testing.T) {
	records := []models.Record{
		{
			"imdbid":     "tt1",
			"genre":      []any{"Action", "Drama"},
			"imageurl":   []any{"https://img/1.jpg"},
			"imdbrating": 7.5,
			"released":   float64(1995),
		},
		{
			"imdbid":     "tt2",
			"genre":      []any{},
			"imageurl":   []any{"https://img/2a.jpg", "https://img/2b.jpg"},
			"imdbrating": nil,
			"released":   float64(2001),
			"type":       "movie",
		},
		{
			"imdbid": "tt3",
			"genre":  "Comedy",
		},
	}

	got := Flatten(records)

	wantCols := []string{"genre", "imageurl", "imdbid", "imdbrating", "released", "type"}
	if !reflect.DeepEqual(got.Columns, wantCols) {
		t.Fatalf("Columns = %v, want %v", got.Columns, wantCols)
	}

	want := [][]string{
		{"Action, Drama", "https://img/1.jpg", "tt1", "7.5", "1995", ""},
		{"", "https://img/2a.jpg, https://img/2b.jpg", "tt2", "", "2001", "movie"},
		{"Comedy", "", "tt3", "", "", ""},
	}
	if !reflect.DeepEqual(got.Rows, want) {
		t.Errorf("Rows =\n%v\nwant\n%v", got.Rows, want)
	}
}

// No cell may hold a sequence after flattening, whatever the element types.
func TestFlatten_NoSequenceCells(t *testing.T) {
	records := []models.Record{
		{"a": []any{float64(1), true, nil}, "b": map[string]any{"k": "v"}},
		{"a": []any{[]any{"nested"}}, "b": []any{map[string]any{"k": float64(2)}}},
	}

	got := Flatten(records)
	want := [][]string{
		{"1, true, ", `{"k":"v"}`},
		{`["nested"]`, `{"k":2}`},
	}
	if !reflect.DeepEqual(got.Rows, want) {
		t.Errorf("Rows = %q, want %q", got.Rows, want)
	}
}

func TestFlatten_Empty(t *testing.T) {
	got := Flatten(nil)
	if len(got.Columns) != 0 || got.Len() != 0 {
		t.Errorf("Flatten(nil) = %+v, want empty table", got)
	}
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "movies.json")
	out := filepath.Join(dir, "movies_clean.csv")

	raw := `[
  {"imdbid": "tt1", "genre": ["Action"], "title": "One"},
  {"imdbid": "tt2", "genre": ["Action", "Crime"], "title": "Two"}
]`
	if err := os.WriteFile(in, []byte(raw), 0o644); err != nil {
		t.Fatal(err)
	}

	tbl, err := Run(context.Background(), in, out)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if tbl.Len() != 2 {
		t.Errorf("rows = %d, want 2", tbl.Len())
	}

	written, err := table.ReadFile(out)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	genres, _ := written.Column("genre")
	if want := []string{"Action", "Action, Crime"}; !reflect.DeepEqual(genres, want) {
		t.Errorf("genre column = %v, want %v", genres, want)
	}
}

func TestRun_UnexpectedShape(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "movies.json")
	if err := os.WriteFile(in, []byte(`{"message":"quota exceeded"}`), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := Run(context.Background(), in, filepath.Join(dir, "out.csv"))
	if !errors.Is(err, ErrUnexpectedShape) {
		t.Errorf("Run() error = %v, want ErrUnexpectedShape", err)
	}
	if _, statErr := os.Stat(filepath.Join(dir, "out.csv")); !os.IsNotExist(statErr) {
		t.Error("no output should be written for an invalid capture")
	}
}

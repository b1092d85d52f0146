// Reelscore - IMDb Rating Prediction Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelscore

package features

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomtom215/reelscore/internal/config"
	"github.com/tomtom215/reelscore/internal/table"
)

func testConfig() config.FeatureConfig {
	return config.FeatureConfig{
		IDField:           "imdbid",
		GenreField:        "genre",
		RatingField:       "imdbrating",
		YearField:         "released",
		TypeField:         "type",
		DropFields:        []string{"imageurl", "synopsis", "title"},
		GenreSeparator:    ", ",
		VarianceThreshold: 0.01,
		FitScope:          "train",
	}
}

// movieTable builds a flat table from (id, genre, rating, year, type) tuples.
func movieTable(rows ...[5]string) *table.Table {
	t := table.New([]string{"genre", "imageurl", "imdbid", "imdbrating", "released", "synopsis", "title", "type"})
	for _, r := range rows {
		t.Rows = append(t.Rows, []string{r[1], "https://img", r[0], r[2], r[3], "plot", "Title " + r[0], r[4]})
	}
	return t
}

func rowFor(t *testing.T, enc *Encoded, id string) map[string]float64 {
	t.Helper()
	for i, rid := range enc.IDs {
		if rid == id {
			out := make(map[string]float64, len(enc.Columns))
			for j, c := range enc.Columns {
				out[c] = enc.X[i][j]
			}
			out["rating"] = enc.Y[i]
			return out
		}
	}
	t.Fatalf("id %s not encoded", id)
	return nil
}

func TestBuilderFit_GenreRoundTrip(t *testing.T) {
	tbl := movieTable(
		[5]string{"tt1", "Action, Drama", "7.1", "1995", "movie"},
		[5]string{"tt2", "Comedy", "6.4", "2001", "movie"},
	)

	enc, err := NewBuilder(testConfig()).Fit(context.Background(), tbl)
	require.NoError(t, err)

	assert.Equal(t, []string{"year", "genre_Action", "genre_Comedy", "genre_Drama", "type_movie"}, enc.Columns)
	require.Equal(t, 2, enc.Len())

	r := rowFor(t, enc, "tt1")
	assert.Equal(t, 1.0, r["genre_Action"])
	assert.Equal(t, 1.0, r["genre_Drama"])
	assert.Equal(t, 0.0, r["genre_Comedy"])
	assert.Equal(t, 1995.0, r["year"])
	assert.Equal(t, 7.1, r["rating"])
}

func TestBuilderFit_DuplicateRowsAggregate(t *testing.T) {
	tbl := movieTable(
		[5]string{"tt1", "Action", "7", "1995", "movie"},
		[5]string{"tt1", "Drama, Action", "7", "1995", "movie"},
		[5]string{"tt2", "Crime", "6", "1990", "movie"},
	)

	enc, err := NewBuilder(testConfig()).Fit(context.Background(), tbl)
	require.NoError(t, err)

	require.Equal(t, 2, enc.Len(), "one row per movie id")
	r := rowFor(t, enc, "tt1")
	assert.Equal(t, 1.0, r["genre_Action"])
	assert.Equal(t, 1.0, r["genre_Drama"])
	assert.Equal(t, 0.0, r["genre_Crime"])
}

func TestBuilderFit_ConflictingDuplicateKeepsFirst(t *testing.T) {
	tbl := movieTable(
		[5]string{"tt1", "Action", "7", "1995", "movie"},
		[5]string{"tt1", "Drama", "8", "1996", "movie"},
	)

	enc, err := NewBuilder(testConfig()).Fit(context.Background(), tbl)
	require.NoError(t, err)

	r := rowFor(t, enc, "tt1")
	assert.Equal(t, 7.0, r["rating"])
	assert.Equal(t, 1995.0, r["year"])
	assert.Equal(t, 1.0, r["genre_Drama"])
}

func TestBuilderFit_EmptyGenre(t *testing.T) {
	tbl := movieTable(
		[5]string{"tt1", "Action", "7", "1995", "movie"},
		[5]string{"tt2", "", "6", "1990", "movie"},
		[5]string{"tt3", " , ", "5", "1985", "movie"},
	)

	t.Run("excluded by default", func(t *testing.T) {
		enc, err := NewBuilder(testConfig()).Fit(context.Background(), tbl)
		require.NoError(t, err)
		assert.Equal(t, []string{"tt1"}, enc.IDs)
	})

	t.Run("kept with zero indicators", func(t *testing.T) {
		cfg := testConfig()
		cfg.KeepEmptyGenre = true

		enc, err := NewBuilder(cfg).Fit(context.Background(), tbl)
		require.NoError(t, err)
		assert.Equal(t, []string{"tt1", "tt2", "tt3"}, enc.IDs)
		assert.Equal(t, []string{"year", "genre_Action", "type_movie"}, enc.Columns)

		r := rowFor(t, enc, "tt2")
		assert.Equal(t, 0.0, r["genre_Action"])
		assert.Equal(t, 1.0, r["type_movie"])
	})
}

func TestBuilderFit_TypeEncoding(t *testing.T) {
	tbl := movieTable(
		[5]string{"tt1", "Action", "7", "1995", "movie"},
		[5]string{"tt2", "Action", "6", "1990", "series"},
		[5]string{"tt3", "Action", "5", "1985", ""},
	)

	enc, err := NewBuilder(testConfig()).Fit(context.Background(), tbl)
	require.NoError(t, err)

	assert.Equal(t, []string{"movie", "series"}, enc.Vocabulary.Types)
	r := rowFor(t, enc, "tt3")
	assert.Equal(t, 0.0, r["type_movie"])
	assert.Equal(t, 0.0, r["type_series"])
	assert.Equal(t, 1.0, rowFor(t, enc, "tt2")["type_series"])
}

func TestBuilderFit_NumericCoercion(t *testing.T) {
	tbl := movieTable(
		[5]string{"tt1", "Action", "N/A", "bad", "movie"},
		[5]string{"tt2", "Action", " 6.5 ", "", "movie"},
		[5]string{"tt3", "Action", "Inf", "1999", "movie"},
	)

	enc, err := NewBuilder(testConfig()).Fit(context.Background(), tbl)
	require.NoError(t, err)

	r1 := rowFor(t, enc, "tt1")
	assert.True(t, math.IsNaN(r1["rating"]))
	assert.True(t, math.IsNaN(r1["year"]))

	r2 := rowFor(t, enc, "tt2")
	assert.Equal(t, 6.5, r2["rating"])
	assert.True(t, math.IsNaN(r2["year"]))

	assert.True(t, math.IsNaN(rowFor(t, enc, "tt3")["rating"]))
}

func TestBuilderFit_Errors(t *testing.T) {
	t.Run("missing column", func(t *testing.T) {
		tbl := table.New([]string{"imdbid", "genre"})
		_, err := NewBuilder(testConfig()).Fit(context.Background(), tbl)
		assert.Error(t, err)
	})

	t.Run("no rows", func(t *testing.T) {
		_, err := NewBuilder(testConfig()).Fit(context.Background(), movieTable())
		assert.ErrorIs(t, err, ErrNoRows)
	})

	t.Run("rows without id are dropped", func(t *testing.T) {
		tbl := movieTable([5]string{"", "Action", "7", "1995", "movie"})
		_, err := NewBuilder(testConfig()).Fit(context.Background(), tbl)
		assert.ErrorIs(t, err, ErrNoRows)
	})
}

func TestBuilderTransform_StableColumns(t *testing.T) {
	ctx := context.Background()
	b := NewBuilder(testConfig())

	train, err := b.Fit(ctx, movieTable(
		[5]string{"tt1", "Action, Drama", "7", "1995", "movie"},
		[5]string{"tt2", "Comedy", "6", "1990", "movie"},
	))
	require.NoError(t, err)

	later, err := b.Transform(ctx, movieTable(
		[5]string{"tt9", "Horror, Drama", "5", "2010", "series"},
	), train.Vocabulary)
	require.NoError(t, err)

	assert.Equal(t, train.Columns, later.Columns)
	r := rowFor(t, later, "tt9")
	assert.Equal(t, 1.0, r["genre_Drama"])
	assert.Equal(t, 0.0, r["type_movie"])
	assert.NotContains(t, later.Columns, "genre_Horror")
	assert.NotContains(t, later.Columns, "type_series")

	_, err = b.Transform(ctx, movieTable(), nil)
	assert.Error(t, err)
}

func TestSplitGenres(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"Action, Drama", []string{"Action", "Drama"}},
		{"Action", []string{"Action"}},
		{"", nil},
		{"   ", nil},
		{"Action, , Drama", []string{"Action", "Drama"}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := splitGenres(tt.in, ", ")
			if tt.want == nil {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

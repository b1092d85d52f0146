// Reelscore - IMDb Rating Prediction Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelscore

// Package features encodes the flat movie table into a numeric dataset.
//
// Encoding runs in two phases. The Builder explodes multi-valued genres,
// one-hot encodes genres and content type, collapses rows back to one per
// movie id and coerces rating and year to numbers, leaving missing values as
// NaN. The Preprocessor then imputes, filters low variance columns and
// standardizes year, using statistics fitted on whichever rows it is given,
// so callers decide whether the test partition contributes to them.
package features

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/tomtom215/reelscore/internal/config"
	"github.com/tomtom215/reelscore/internal/logging"
	"github.com/tomtom215/reelscore/internal/metrics"
	"github.com/tomtom215/reelscore/internal/table"
)

// ErrNoRows is returned when no movie survives encoding.
var ErrNoRows = errors.New("no movies left after encoding")

// Encoded is the one-hot encoded dataset before imputation.
// X[i][0] is the release year; missing years and ratings are NaN.
type Encoded struct {
	Columns    []string
	X          [][]float64
	Y          []float64
	IDs        []string
	Vocabulary *Vocabulary
}

// Len returns the number of encoded movies.
func (e *Encoded) Len() int {
	return len(e.Y)
}

// Builder encodes flat tables according to a FeatureConfig.
type Builder struct {
	cfg config.FeatureConfig
}

// NewBuilder creates a feature builder.
func NewBuilder(cfg config.FeatureConfig) *Builder {
	return &Builder{cfg: cfg}
}

// explodedRow is one (movie, genre) pair. A movie kept without genres
// carries an empty genre.
type explodedRow struct {
	id     string
	genre  string
	rating string
	year   string
	kind   string
}

// movie is the aggregate of all exploded rows sharing an id.
type movie struct {
	id     string
	rating string
	year   string
	kind   string
	genres map[string]bool
}

// Fit learns a vocabulary from t and encodes t with it.
func (b *Builder) Fit(ctx context.Context, t *table.Table) (*Encoded, error) {
	rows, err := b.explode(ctx, t)
	if err != nil {
		return nil, err
	}
	movies := b.aggregate(ctx, rows)

	vocab := b.learn(rows, movies)
	vocab.RunID = logging.RunIDFromContext(ctx)

	return b.encode(ctx, movies, vocab)
}

// Transform encodes t with an existing vocabulary. Categories the
// vocabulary does not know are ignored.
func (b *Builder) Transform(ctx context.Context, t *table.Table, vocab *Vocabulary) (*Encoded, error) {
	if vocab == nil {
		return nil, fmt.Errorf("transform: nil vocabulary")
	}
	rows, err := b.explode(ctx, t)
	if err != nil {
		return nil, err
	}
	return b.encode(ctx, b.aggregate(ctx, rows), vocab)
}

// explode drops display columns and emits one row per (id, genre) pair.
// Movies without genres vanish unless KeepEmptyGenre is set.
func (b *Builder) explode(ctx context.Context, t *table.Table) ([]explodedRow, error) {
	t = t.Drop(b.cfg.DropFields...)

	cols := make(map[string][]string, 5)
	for _, name := range []string{b.cfg.IDField, b.cfg.GenreField, b.cfg.RatingField, b.cfg.YearField, b.cfg.TypeField} {
		cells, err := t.Column(name)
		if err != nil {
			return nil, fmt.Errorf("flat table: %w", err)
		}
		cols[name] = cells
	}
	ids, genreCells := cols[b.cfg.IDField], cols[b.cfg.GenreField]
	ratings, years, kinds := cols[b.cfg.RatingField], cols[b.cfg.YearField], cols[b.cfg.TypeField]

	log := logging.Ctx(ctx)
	var out []explodedRow
	var noGenre, noID int
	for i := range ids {
		base := explodedRow{
			id:     strings.TrimSpace(ids[i]),
			rating: ratings[i],
			year:   years[i],
			kind:   strings.TrimSpace(kinds[i]),
		}
		if base.id == "" {
			noID++
			continue
		}

		genres := splitGenres(genreCells[i], b.cfg.GenreSeparator)
		if len(genres) == 0 {
			if !b.cfg.KeepEmptyGenre {
				noGenre++
				continue
			}
			out = append(out, base)
			continue
		}
		for _, g := range genres {
			r := base
			r.genre = g
			out = append(out, r)
		}
	}

	if noID > 0 {
		metrics.MoviesDropped.WithLabelValues("missing_id").Add(float64(noID))
		log.Warn().Int("rows", noID).Msg("Dropped rows without a movie id")
	}
	if noGenre > 0 {
		metrics.MoviesDropped.WithLabelValues("no_genre").Add(float64(noGenre))
		log.Info().Int("rows", noGenre).Msg("Dropped rows without genres")
	}
	return out, nil
}

// splitGenres splits a joined genre cell. Blank tokens are ignored, so an
// empty cell yields no genres.
func splitGenres(cell, sep string) []string {
	if strings.TrimSpace(cell) == "" {
		return nil
	}
	parts := strings.Split(cell, sep)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// aggregate collapses exploded rows to one movie per id, combining genre
// membership with logical OR. Rating, year and type come from the first
// row seen for the id.
func (b *Builder) aggregate(ctx context.Context, rows []explodedRow) []*movie {
	byID := make(map[string]*movie)
	var order []*movie
	conflicts := make(map[string]bool)

	for _, r := range rows {
		m, ok := byID[r.id]
		if !ok {
			m = &movie{id: r.id, rating: r.rating, year: r.year, kind: r.kind, genres: map[string]bool{}}
			byID[r.id] = m
			order = append(order, m)
		} else if (m.rating != r.rating || m.year != r.year || m.kind != r.kind) && !conflicts[r.id] {
			conflicts[r.id] = true
			logging.Ctx(ctx).Warn().
				Str("id", r.id).
				Str("rating", m.rating).Str("conflicting_rating", r.rating).
				Str("year", m.year).Str("conflicting_year", r.year).
				Msg("Duplicate movie with conflicting attributes, keeping first")
		}
		if r.genre != "" {
			m.genres[r.genre] = true
		}
	}
	return order
}

// learn builds a vocabulary from the categories present in the data.
func (b *Builder) learn(rows []explodedRow, movies []*movie) *Vocabulary {
	genreSet := map[string]bool{}
	for _, r := range rows {
		if r.genre != "" {
			genreSet[r.genre] = true
		}
	}
	typeSet := map[string]bool{}
	for _, m := range movies {
		if m.kind != "" {
			typeSet[m.kind] = true
		}
	}

	return &Vocabulary{
		Version:   vocabularyVersion,
		CreatedAt: time.Now().UTC().Truncate(time.Second),
		Fields: FieldMapping{
			ID:     b.cfg.IDField,
			Genre:  b.cfg.GenreField,
			Rating: b.cfg.RatingField,
			Year:   b.cfg.YearField,
			Type:   b.cfg.TypeField,
		},
		Genres: sortedKeys(genreSet),
		Types:  sortedKeys(typeSet),
	}
}

func (b *Builder) encode(ctx context.Context, movies []*movie, vocab *Vocabulary) (*Encoded, error) {
	if len(movies) == 0 {
		return nil, ErrNoRows
	}

	cols := vocab.Columns()
	genreIdx := vocab.genreIndex()
	typeIdx := vocab.typeIndex()

	enc := &Encoded{
		Columns:    cols,
		X:          make([][]float64, len(movies)),
		Y:          make([]float64, len(movies)),
		IDs:        make([]string, len(movies)),
		Vocabulary: vocab,
	}

	unknownGenres := map[string]bool{}
	unknownTypes := map[string]bool{}
	for i, m := range movies {
		x := make([]float64, len(cols))
		x[0] = parseNumber(m.year)
		for g := range m.genres {
			if j, ok := genreIdx[g]; ok {
				x[j] = 1
			} else {
				unknownGenres[g] = true
			}
		}
		if m.kind != "" {
			if j, ok := typeIdx[m.kind]; ok {
				x[j] = 1
			} else {
				unknownTypes[m.kind] = true
			}
		}
		enc.X[i] = x
		enc.Y[i] = parseNumber(m.rating)
		enc.IDs[i] = m.id
	}

	log := logging.Ctx(ctx)
	if len(unknownGenres) > 0 {
		metrics.UnknownCategories.WithLabelValues("genre").Add(float64(len(unknownGenres)))
		log.Warn().Strs("genres", sortedKeys(unknownGenres)).Msg("Ignoring genres missing from vocabulary")
	}
	if len(unknownTypes) > 0 {
		metrics.UnknownCategories.WithLabelValues("type").Add(float64(len(unknownTypes)))
		log.Warn().Strs("types", sortedKeys(unknownTypes)).Msg("Ignoring types missing from vocabulary")
	}

	metrics.FeatureRows.Set(float64(len(movies)))
	log.Info().
		Int("movies", len(movies)).
		Int("genres", len(vocab.Genres)).
		Int("types", len(vocab.Types)).
		Msg("Encoded feature table")
	return enc, nil
}

// parseNumber coerces a cell to a number. Anything unparseable or
// non-finite becomes NaN.
func parseNumber(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsInf(v, 0) {
		return math.NaN()
	}
	return v
}

func sortedKeys(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

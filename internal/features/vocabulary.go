// Reelscore - IMDb Rating Prediction Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelscore

package features

import (
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/tomtom215/reelscore/internal/table"
)

const (
	// YearColumn is the feature column holding the release year.
	YearColumn = "year"

	// GenrePrefix and TypePrefix name one-hot indicator columns.
	GenrePrefix = "genre_"
	TypePrefix  = "type_"

	vocabularyVersion = 1
)

// FieldMapping records which flat table columns fed each feature role.
type FieldMapping struct {
	ID     string `yaml:"id"`
	Genre  string `yaml:"genre"`
	Rating string `yaml:"rating"`
	Year   string `yaml:"year"`
	Type   string `yaml:"type"`
}

// Vocabulary is the persisted set of categories behind the one-hot columns.
// Encoding with a saved vocabulary always yields the same columns in the
// same order, whatever categories the new data contains.
type Vocabulary struct {
	Version   int          `yaml:"version"`
	RunID     string       `yaml:"run_id,omitempty"`
	CreatedAt time.Time    `yaml:"created_at"`
	Fields    FieldMapping `yaml:"fields"`
	Genres    []string     `yaml:"genres"`
	Types     []string     `yaml:"types"`
}

// Columns returns the encoded feature columns: year, then genre
// indicators, then type indicators.
func (v *Vocabulary) Columns() []string {
	cols := make([]string, 0, 1+len(v.Genres)+len(v.Types))
	cols = append(cols, YearColumn)
	for _, g := range v.Genres {
		cols = append(cols, GenrePrefix+g)
	}
	for _, t := range v.Types {
		cols = append(cols, TypePrefix+t)
	}
	return cols
}

func (v *Vocabulary) genreIndex() map[string]int {
	idx := make(map[string]int, len(v.Genres))
	for i, g := range v.Genres {
		idx[g] = 1 + i
	}
	return idx
}

func (v *Vocabulary) typeIndex() map[string]int {
	idx := make(map[string]int, len(v.Types))
	for i, t := range v.Types {
		idx[t] = 1 + len(v.Genres) + i
	}
	return idx
}

// Save writes the vocabulary as YAML.
func (v *Vocabulary) Save(path string) error {
	return table.WriteAtomic(path, func(w io.Writer) error {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encode vocabulary: %w", err)
		}
		return enc.Close()
	})
}

// LoadVocabulary reads a vocabulary written by Save.
func LoadVocabulary(path string) (*Vocabulary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read vocabulary: %w", err)
	}

	var v Vocabulary
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("parse vocabulary %s: %w", path, err)
	}
	if v.Version != vocabularyVersion {
		return nil, fmt.Errorf("vocabulary %s: unsupported version %d", path, v.Version)
	}
	return &v, nil
}

// Reelscore - IMDb Rating Prediction Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelscore

package models

import "sort"

// Record is one raw search result.
type Record map[string]any

// Keys returns the record's field names in lexical order.
func (r Record) Keys() []string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// SearchResponse is one page of the advanced search endpoint.
// Results is nil when the body has no "results" key.
type SearchResponse struct {
	Page    int      `json:"page,omitempty"`
	Results []Record `json:"results"`
}

// Movie is the subset of a search result the pipeline models.
// The JSON names match the OTT details API.
type Movie struct {
	IMDbID     string   `json:"imdbid"`
	Title      string   `json:"title"`
	Genres     []string `json:"genre"`
	IMDbRating float64  `json:"imdbrating"`
	Released   int      `json:"released"`
	Type       string   `json:"type"`
	Synopsis   string   `json:"synopsis,omitempty"`
	ImageURLs  []string `json:"imageurl,omitempty"`
}

// Record converts m into the raw representation returned by the API.
func (m Movie) Record() Record {
	genres := make([]any, len(m.Genres))
	for i, g := range m.Genres {
		genres[i] = g
	}
	images := make([]any, len(m.ImageURLs))
	for i, u := range m.ImageURLs {
		images[i] = u
	}
	return Record{
		"imdbid":     m.IMDbID,
		"title":      m.Title,
		"genre":      genres,
		"imdbrating": m.IMDbRating,
		"released":   float64(m.Released),
		"type":       m.Type,
		"synopsis":   m.Synopsis,
		"imageurl":   images,
	}
}

// Reelscore - IMDb Rating Prediction Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelscore

/*
Package ottapi fetches movie search results from the OTT details API on RapidAPI.

The advanced search endpoint is paged. FetchAll requests pages in order with
a fixed set of search parameters and stops at the first page whose body has
no "results" key or an empty results list.

Resilience:
  - Pacing: requests are spaced with a token bucket (golang.org/x/time/rate)
  - Retries: transport errors, HTTP 429, HTTP 5xx and undecodable bodies are
    retried with exponential backoff, honoring Retry-After
  - Circuit breaker: consecutive failures open the breaker (sony/gobreaker)
    and the fetch stops instead of waiting out every retry
  - Partial results: a page that still fails after its retries ends the fetch
    with the records gathered so far and an error wrapping ErrIncomplete

Example:

	client, err := ottapi.NewClient(cfg.API)
	if err != nil {
	    return err
	}
	records, err := client.FetchAll(ctx)
	if errors.Is(err, ottapi.ErrIncomplete) {
	    // records holds every page fetched before the failure
	}
*/
package ottapi

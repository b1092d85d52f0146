// Reelscore - IMDb Rating Prediction Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelscore

package ottapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/tomtom215/reelscore/internal/config"
	"github.com/tomtom215/reelscore/internal/logging"
	"github.com/tomtom215/reelscore/internal/metrics"
	"github.com/tomtom215/reelscore/internal/models"
)

// maxErrorBodySize limits the response body read for error reporting.
const maxErrorBodySize = 64 * 1024

var (
	// ErrIncomplete is returned by FetchAll when a page fails after all
	// retries. The records fetched before the failure are returned with it.
	ErrIncomplete = errors.New("capture incomplete")

	// ErrNoAPIKey is returned by NewClient when no RapidAPI key is configured.
	ErrNoAPIKey = errors.New("api key is not configured")
)

// Page is one fetched result page. Done marks the end of the data.
type Page struct {
	Number  int
	Records []models.Record
	Done    bool
}

// statusError is a non-200 response.
type statusError struct {
	code       int
	body       string
	retryAfter time.Duration
}

func (e *statusError) Error() string {
	return fmt.Sprintf("request failed with status %d: %s", e.code, e.body)
}

// retryableError marks failures worth another attempt.
type retryableError struct {
	err error
}

func (e *retryableError) Error() string { return e.err.Error() }
func (e *retryableError) Unwrap() error { return e.err }

// Client fetches search pages from the OTT details API.
//
// Thread Safety: a Client is safe for concurrent use, but FetchAll walks
// pages sequentially.
type Client struct {
	cfg        config.APIConfig
	httpClient *http.Client
	limiter    *rate.Limiter
	cb         *gobreaker.CircuitBreaker[*models.SearchResponse]
}

// NewClient creates a client from the API configuration.
func NewClient(cfg config.APIConfig) (*Client, error) {
	if cfg.Key == "" {
		return nil, ErrNoAPIKey
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}

	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		limiter:    rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
		cb:         newBreaker(cfg.BreakerFailures, cfg.BreakerTimeout),
	}, nil
}

// FetchAll fetches pages StartPage through StartPage+MaxPages-1 and stops
// early at the end of the data. When a page cannot be fetched, the records
// gathered so far are returned together with an error wrapping ErrIncomplete.
// Cancellation of ctx is returned as ctx.Err(), never as ErrIncomplete.
func (c *Client) FetchAll(ctx context.Context) ([]models.Record, error) {
	log := logging.Ctx(ctx)
	records := make([]models.Record, 0)

	last := c.cfg.StartPage + c.cfg.MaxPages - 1
	for n := c.cfg.StartPage; n <= last; n++ {
		page, err := c.FetchPage(ctx, n)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				log.Warn().Int("page", n).Int("records", len(records)).Msg("Fetch cancelled")
				return records, fmt.Errorf("page %d: %w", n, ctxErr)
			}
			log.Error().Err(err).
				Int("page", n).
				Int("records", len(records)).
				Msg("Fetch stopped before the end of the data")
			return records, fmt.Errorf("%w at page %d: %w", ErrIncomplete, n, err)
		}
		if page.Done {
			log.Info().Int("page", n).Int("records", len(records)).Msg("Reached end of search results")
			return records, nil
		}

		records = append(records, page.Records...)
		metrics.RecordPage(len(page.Records))
		log.Info().Int("page", n).Int("records", len(page.Records)).Msg("Fetched page")
	}

	log.Info().Int("pages", c.cfg.MaxPages).Int("records", len(records)).Msg("Reached page limit")
	return records, nil
}

// FetchPage fetches one page, retrying transient failures with exponential
// backoff. A body without results, or with an empty results list, yields a
// Page with Done set.
func (c *Client) FetchPage(ctx context.Context, page int) (Page, error) {
	log := logging.Ctx(ctx)

	for attempt := 0; ; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return Page{}, fmt.Errorf("wait for rate limiter: %w", err)
		}

		resp, err := c.cb.Execute(func() (*models.SearchResponse, error) {
			return c.doRequest(ctx, page)
		})
		recordBreakerResult(err)
		if err == nil {
			return Page{Number: page, Records: resp.Results, Done: len(resp.Results) == 0}, nil
		}

		var retryable *retryableError
		if !errors.As(err, &retryable) || ctx.Err() != nil {
			return Page{}, fmt.Errorf("page %d: %w", page, err)
		}
		if attempt >= c.cfg.RetryAttempts {
			return Page{}, fmt.Errorf("page %d: max retry attempts reached: %w", page, err)
		}

		delay := c.backoff(attempt, err)
		metrics.APIRetries.Inc()
		log.Warn().Err(err).
			Int("page", page).
			Int("attempt", attempt+1).
			Int("max_retries", c.cfg.RetryAttempts).
			Dur("delay", delay).
			Msg("Retrying search request")

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return Page{}, ctx.Err()
		}
	}
}

// backoff returns base*2^attempt capped at RetryMaxDelay. A Retry-After
// header on the failed response takes precedence.
func (c *Client) backoff(attempt int, err error) time.Duration {
	delay := c.cfg.RetryBaseDelay << attempt
	var se *statusError
	if errors.As(err, &se) && se.retryAfter > 0 {
		delay = se.retryAfter
	}
	if c.cfg.RetryMaxDelay > 0 && (delay > c.cfg.RetryMaxDelay || delay < 0) {
		delay = c.cfg.RetryMaxDelay
	}
	return delay
}

// doRequest performs one attempt. Errors worth retrying are wrapped in
// retryableError.
func (c *Client) doRequest(ctx context.Context, page int) (*models.SearchResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.pageURL(page), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("x-rapidapi-host", c.cfg.Host)
	req.Header.Set("x-rapidapi-key", c.cfg.Key)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.RecordAPIRequest("retryable", time.Since(start))
		return nil, &retryableError{fmt.Errorf("execute request: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		se := &statusError{
			code:       resp.StatusCode,
			body:       string(readBodyForError(resp.Body)),
			retryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
		}
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError {
			metrics.RecordAPIRequest("retryable", time.Since(start))
			return nil, &retryableError{se}
		}
		metrics.RecordAPIRequest("fatal", time.Since(start))
		return nil, se
	}

	var out models.SearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		metrics.RecordAPIRequest("retryable", time.Since(start))
		return nil, &retryableError{fmt.Errorf("decode page %d: %w", page, err)}
	}
	metrics.RecordAPIRequest("success", time.Since(start))
	return &out, nil
}

func (c *Client) pageURL(page int) string {
	params := url.Values{}
	params.Set("start_year", strconv.Itoa(c.cfg.StartYear))
	params.Set("end_year", strconv.Itoa(c.cfg.EndYear))
	params.Set("min_imdb", strconv.FormatFloat(c.cfg.MinIMDb, 'f', -1, 64))
	params.Set("max_imdb", strconv.FormatFloat(c.cfg.MaxIMDb, 'f', -1, 64))
	setIfNotEmpty(params, "genre", c.cfg.Genre)
	setIfNotEmpty(params, "language", c.cfg.Language)
	setIfNotEmpty(params, "type", c.cfg.Type)
	setIfNotEmpty(params, "sort", c.cfg.Sort)
	params.Set("page", strconv.Itoa(page))

	return c.cfg.BaseURL + "?" + params.Encode()
}

func setIfNotEmpty(params url.Values, key, value string) {
	if value != "" {
		params.Set(key, value)
	}
}

// parseRetryAfter reads a Retry-After header given in seconds or as an
// HTTP date. It returns 0 when absent or unparseable.
func parseRetryAfter(v string) time.Duration {
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(v); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}

// readBodyForError reads at most maxErrorBodySize bytes of a response body.
func readBodyForError(r io.Reader) []byte {
	body, err := io.ReadAll(io.LimitReader(r, maxErrorBodySize))
	if err != nil {
		return []byte("(failed to read response body)")
	}
	if len(body) == maxErrorBodySize {
		return append(body, []byte("\n... (truncated)")...)
	}
	return body
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pubmed talks to the NCBI E-utilities API: it opens server-side
// search sessions (esearch with history) and pages through their results
// (efetch), extracting records that pass the configured filters.
package pubmed

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/pdiddy/pubmed-harvester/internal/httputil"
	"github.com/pdiddy/pubmed-harvester/pkg/types"
)

const (
	esearchBase = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils/esearch.fcgi"
	efetchBase  = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils/efetch.fcgi"

	// database is the bibliographic database all requests target.
	database = "pubmed"

	// defaultInterval keeps the run under the E-utilities rate ceiling of
	// three requests per second without an API key.
	defaultInterval = 334 * time.Millisecond
)

// Client is a rate-limited E-utilities client. All remote calls pass
// through a single limiter, so the minimum inter-call interval holds
// between batches, between terms, and across retries alike.
type Client struct {
	HTTP *http.Client

	// SearchURL and FetchURL point at the esearch and efetch endpoints.
	// Tests substitute an httptest server.
	SearchURL string
	FetchURL  string

	limiter *rate.Limiter
	apiKey  string
	cfg     types.HarvestConfig
	log     io.Writer
}

// NewClient builds a client from the harvest configuration. apiKey may be
// empty; when set it is sent as the api_key parameter on every request.
// Diagnostics are written to w.
func NewClient(cfg types.HarvestConfig, apiKey string, w io.Writer) *Client {
	interval := cfg.RequestInterval
	if interval <= 0 {
		interval = defaultInterval
	}
	return &Client{
		HTTP:      &http.Client{},
		SearchURL: esearchBase,
		FetchURL:  efetchBase,
		limiter:   rate.NewLimiter(rate.Every(interval), 1),
		apiKey:    apiKey,
		cfg:       cfg,
		log:       w,
	}
}

// get waits for the rate limiter, then issues one logical request with
// retry and backoff.
func (c *Client) get(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}
	if c.apiKey != "" {
		params.Set("api_key", c.apiKey)
	}
	opts := httputil.RetryOptions{
		Attempts:  c.cfg.MaxAttempts,
		Timeout:   c.cfg.Timeout,
		UserAgent: c.cfg.UserAgent,
	}
	return httputil.GetWithRetry(ctx, c.HTTP, endpoint, params, opts, c.log)
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides HTTP helpers shared across stages.
package httputil

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// BackoffUnit controls the step duration for linear backoff between failed
// attempts: the wait after attempt n is BackoffUnit × n (1 s, 2 s, 3 s...).
// Tests override this to avoid real sleeps.
var BackoffUnit = 1 * time.Second

const (
	defaultAttempts = 3
	defaultTimeout  = 30 * time.Second
)

// RetryOptions configures GetWithRetry. Zero values select the defaults.
type RetryOptions struct {
	// Attempts is the total number of tries per request (default 3).
	Attempts int

	// Timeout bounds each individual attempt (default 30 s). It layers
	// over whatever deadline the caller's context already carries.
	Timeout time.Duration

	// UserAgent is sent with every attempt when non-empty.
	UserAgent string
}

// GetWithRetry issues a GET against endpoint with the given query parameters
// and returns the response body. Any failure (transport error, timeout,
// non-200 status) is logged to w with its attempt number; unless it was the
// final allowed attempt, the call sleeps BackoffUnit × attempt and retries.
// The final failure is wrapped and returned, never swallowed. If the
// caller's context is cancelled during a backoff wait, ctx.Err() is
// returned immediately.
func GetWithRetry(ctx context.Context, client *http.Client, endpoint string, params url.Values, opts RetryOptions, w io.Writer) ([]byte, error) {
	attempts := opts.Attempts
	if attempts <= 0 {
		attempts = defaultAttempts
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	reqURL := endpoint
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		body, err := get(ctx, client, reqURL, timeout, opts.UserAgent)
		if err == nil {
			return body, nil
		}
		lastErr = err
		fmt.Fprintf(w, "request failed (attempt %d/%d): %v\n", attempt, attempts, err)

		if attempt == attempts {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Duration(attempt) * BackoffUnit):
		}
	}
	return nil, fmt.Errorf("request failed after %d attempts: %w", attempts, lastErr)
}

// get performs a single attempt with its own timeout.
func get(ctx context.Context, client *http.Client, reqURL string, timeout time.Duration, userAgent string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if userAgent != "" {
		req.Header.Set("User-Agent", userAgent)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	return body, nil
}

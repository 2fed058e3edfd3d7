package types

import "time"

// HTTPConfig holds shared HTTP settings for stages that make network requests.
type HTTPConfig struct {
	// Timeout is the per-attempt HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "pubmed-harvester/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// HarvestConfig holds settings for the retrieval pipeline.
type HarvestConfig struct {
	HTTPConfig `yaml:",inline"`

	// PageSize is the efetch window size (default 100).
	PageSize int `json:"page_size" yaml:"page_size"`

	// MaxAttempts is the retry ceiling per request (default 3).
	MaxAttempts int `json:"max_attempts" yaml:"max_attempts"`

	// RequestInterval is the minimum delay between any two remote calls
	// (default 334ms). This is the mechanism that keeps the run under the
	// E-utilities request-rate ceiling.
	RequestInterval time.Duration `json:"request_interval" yaml:"request_interval"`
}

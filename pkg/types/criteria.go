// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "fmt"

// Criteria holds the static search criteria supplied once at startup:
// which topics to search, which institutions to keep, and the inclusive
// publication-year range. Never mutated after load.
type Criteria struct {
	// Terms are the topic search terms, processed in order.
	Terms []string `json:"terms" yaml:"terms"`

	// Institutions are the institution-name substrings matched
	// case-sensitively against the first author's affiliation.
	Institutions []string `json:"institutions" yaml:"institutions"`

	// YearStart and YearEnd bound the publication year, inclusive.
	YearStart int `json:"year_start" yaml:"year_start"`
	YearEnd   int `json:"year_end" yaml:"year_end"`
}

// Validate reports the first problem that would make a harvest meaningless.
func (c Criteria) Validate() error {
	if len(c.Terms) == 0 {
		return fmt.Errorf("no search terms configured")
	}
	if len(c.Institutions) == 0 {
		return fmt.Errorf("no institutions configured: every record would be filtered out")
	}
	if c.YearStart <= 0 || c.YearEnd <= 0 {
		return fmt.Errorf("year range not configured")
	}
	if c.YearStart > c.YearEnd {
		return fmt.Errorf("invalid year range %d-%d", c.YearStart, c.YearEnd)
	}
	return nil
}

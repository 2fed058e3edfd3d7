// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package harvest drives the term-by-term retrieval pipeline: it opens a
// search session per topic term, pages through the full result range,
// accumulates the extracted records, and deduplicates them by PMID.
package harvest

import (
	"context"
	"fmt"
	"io"

	"github.com/pdiddy/pubmed-harvester/internal/pubmed"
	"github.com/pdiddy/pubmed-harvester/pkg/types"
)

const defaultPageSize = 100

// TermSummary records the outcome of one term.
type TermSummary struct {
	Term string `json:"term" yaml:"term"`

	// Matched is the server-side match count for the term's session.
	Matched int `json:"matched" yaml:"matched"`

	// Kept is the number of records that passed extraction filters.
	Kept int `json:"kept" yaml:"kept"`

	// Error is the failure message for a term that contributed nothing.
	Error string `json:"error,omitempty" yaml:"error,omitempty"`
}

// Summary holds the outcome of a full harvest run.
type Summary struct {
	Terms   []TermSummary `json:"terms" yaml:"terms"`
	Failed  int           `json:"failed" yaml:"failed"`
	Fetched int           `json:"fetched" yaml:"fetched"`
	Unique  int           `json:"unique" yaml:"unique"`
}

// Run processes every term sequentially and returns the deduplicated
// records. A failure while processing one term is logged and contributes
// zero records; it never aborts the remaining terms, so Run itself does
// not return an error. Remote pacing lives in the client's rate limiter,
// not here.
func Run(ctx context.Context, client *pubmed.Client, criteria types.Criteria, cfg types.HarvestConfig, w io.Writer) ([]types.Record, Summary) {
	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}

	var all []types.Record
	var summary Summary

	for _, term := range criteria.Terms {
		ts := TermSummary{Term: term}
		records, matched, err := harvestTerm(ctx, client, term, criteria, pageSize, w)
		ts.Matched = matched
		if err != nil {
			fmt.Fprintf(w, "failed:  %q (%v)\n", term, err)
			ts.Error = err.Error()
			summary.Failed++
			summary.Terms = append(summary.Terms, ts)
			continue
		}
		ts.Kept = len(records)
		fmt.Fprintf(w, "term %q: %d matched, %d kept\n", term, matched, len(records))
		all = append(all, records...)
		summary.Terms = append(summary.Terms, ts)
	}

	summary.Fetched = len(all)
	deduped := Deduplicate(all)
	summary.Unique = len(deduped)

	fmt.Fprintf(w, "\nHarvest summary: %d terms, %d failed, %d records fetched, %d unique\n",
		len(summary.Terms), summary.Failed, summary.Fetched, summary.Unique)
	return deduped, summary
}

// harvestTerm opens one session and pages through [0, count). On error the
// term's partial records are discarded so a failed term contributes
// nothing; a zero-count session returns immediately without any fetch.
func harvestTerm(ctx context.Context, client *pubmed.Client, term string, criteria types.Criteria, pageSize int, w io.Writer) ([]types.Record, int, error) {
	sess, err := client.OpenSession(ctx, term, criteria)
	if err != nil {
		return nil, 0, err
	}
	if sess.Count == 0 {
		fmt.Fprintf(w, "term %q: no matches\n", term)
		return nil, 0, nil
	}

	var records []types.Record
	for offset := 0; offset < sess.Count; offset += pageSize {
		batch, err := client.FetchBatch(ctx, sess, offset, pageSize, criteria)
		if err != nil {
			return nil, sess.Count, err
		}
		records = append(records, batch...)
	}
	return records, sess.Count, nil
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the pubmed-harvester pipeline.
package types

// Record is the canonical output unit: one PubMed article that passed the
// affiliation and year filters. Every Record in a finished harvest has a
// Year inside the configured range and an Affiliation containing at least
// one configured institution substring; both are enforced at extraction
// time, not filtered afterward.
type Record struct {
	// PMID is the PubMed identifier and the deduplication key.
	PMID string `json:"pmid" yaml:"pmid"`

	// Title is the article title as returned by the service.
	Title string `json:"title" yaml:"title"`

	// Abstract is the abstract text, or "No abstract available" when the
	// record carries none.
	Abstract string `json:"abstract" yaml:"abstract"`

	// Authors lists author display names ("LastName ForeName") in source
	// order, or the single entry "No authors listed".
	Authors []string `json:"authors" yaml:"authors"`

	// Journal is the full journal title.
	Journal string `json:"journal" yaml:"journal"`

	// Year is the publication year from the journal issue's pub date.
	Year int `json:"year" yaml:"year"`

	// Affiliation is the first author's first affiliation string, raw.
	Affiliation string `json:"affiliation" yaml:"affiliation"`
}

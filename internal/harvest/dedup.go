// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package harvest

import "github.com/pdiddy/pubmed-harvester/pkg/types"

// Deduplicate returns one record per PMID, keeping the first occurrence in
// input order. It is a pure function and idempotent: applying it to its
// own output returns the same sequence.
func Deduplicate(records []types.Record) []types.Record {
	seen := make(map[string]bool, len(records))
	var unique []types.Record
	for _, r := range records {
		if seen[r.PMID] {
			continue
		}
		seen[r.PMID] = true
		unique = append(unique, r)
	}
	return unique
}

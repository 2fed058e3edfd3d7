// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package harvest

import (
	"reflect"
	"testing"

	"github.com/pdiddy/pubmed-harvester/pkg/types"
)

func rec(pmid, title string) types.Record {
	return types.Record{PMID: pmid, Title: title}
}

func TestDeduplicate(t *testing.T) {
	tests := []struct {
		name  string
		input []types.Record
		want  []types.Record
	}{
		{
			name:  "empty",
			input: nil,
			want:  nil,
		},
		{
			name:  "no duplicates",
			input: []types.Record{rec("1", "a"), rec("2", "b")},
			want:  []types.Record{rec("1", "a"), rec("2", "b")},
		},
		{
			name:  "first occurrence wins",
			input: []types.Record{rec("1", "first"), rec("2", "b"), rec("1", "second")},
			want:  []types.Record{rec("1", "first"), rec("2", "b")},
		},
		{
			name:  "all duplicates",
			input: []types.Record{rec("1", "a"), rec("1", "a"), rec("1", "a")},
			want:  []types.Record{rec("1", "a")},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Deduplicate(tt.input)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Deduplicate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDeduplicateIdempotent(t *testing.T) {
	input := []types.Record{rec("1", "a"), rec("2", "b"), rec("1", "dup"), rec("3", "c"), rec("2", "dup")}

	once := Deduplicate(input)
	twice := Deduplicate(once)

	if !reflect.DeepEqual(once, twice) {
		t.Errorf("Deduplicate is not idempotent: %v != %v", once, twice)
	}

	seen := map[string]bool{}
	for _, r := range once {
		if seen[r.PMID] {
			t.Errorf("duplicate PMID %q in output", r.PMID)
		}
		seen[r.PMID] = true
	}
}

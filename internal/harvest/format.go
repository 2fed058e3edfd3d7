// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package harvest

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/pubmed-harvester/pkg/types"
)

// WriteDocument serializes the records as a pretty-printed JSON document
// (2-space indent) at path, creating parent directories as needed.
func WriteDocument(path string, records []types.Record) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling records: %w", err)
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

// FormatTable writes records as a human-readable table to w.
func FormatTable(records []types.Record, w io.Writer) {
	if len(records) == 0 {
		fmt.Fprintln(w, "No records harvested.")
		return
	}

	fmt.Fprintf(w, "%-10s  %-56s  %-22s  %-4s  %s\n",
		"PMID", "Title", "First author", "Year", "Journal")
	fmt.Fprintln(w, strings.Repeat("-", 110))

	for _, r := range records {
		title := truncate(r.Title, 56)
		author := ""
		if len(r.Authors) > 0 {
			author = truncate(r.Authors[0], 22)
		}
		fmt.Fprintf(w, "%-10s  %-56s  %-22s  %-4d  %s\n",
			r.PMID, title, author, r.Year, r.Journal)
	}

	fmt.Fprintf(w, "\n%d records\n", len(records))
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pubmed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/pdiddy/pubmed-harvester/pkg/types"
)

// Session is a server-held query context: the handle pair needed to page
// through a previously executed search, plus its total match count. A
// Session with Count 0 carries no handles and must not be fetched from.
// Sessions are never persisted.
type Session struct {
	QueryKey string
	WebEnv   string
	Count    int
}

// BuildQuery combines a topic term, the institution list, and the year
// range into one boolean esearch expression:
//
//	(term) AND ("inst1"[Affiliation] OR "inst2"[Affiliation]) AND (2021:2023[pdat])
func BuildQuery(term string, criteria types.Criteria) string {
	parts := []string{"(" + term + ")"}

	if len(criteria.Institutions) > 0 {
		insts := make([]string, len(criteria.Institutions))
		for i, inst := range criteria.Institutions {
			insts[i] = fmt.Sprintf("%q[Affiliation]", inst)
		}
		parts = append(parts, "("+strings.Join(insts, " OR ")+")")
	}

	if criteria.YearStart != 0 || criteria.YearEnd != 0 {
		parts = append(parts, fmt.Sprintf("(%d:%d[pdat])", criteria.YearStart, criteria.YearEnd))
	}

	return strings.Join(parts, " AND ")
}

// OpenSession runs an esearch in history mode for one term and returns the
// session handle and total match count. A zero count returns an empty
// Session and no error; the caller must skip fetching for that term.
func (c *Client) OpenSession(ctx context.Context, term string, criteria types.Criteria) (Session, error) {
	params := url.Values{
		"db":         {database},
		"term":       {BuildQuery(term, criteria)},
		"usehistory": {"y"},
		"retmode":    {"json"},
		"retmax":     {"0"},
	}

	body, err := c.get(ctx, c.SearchURL, params)
	if err != nil {
		return Session{}, fmt.Errorf("esearch for %q: %w", term, err)
	}

	var er esearchResponse
	if err := json.Unmarshal(body, &er); err != nil {
		return Session{}, fmt.Errorf("parsing esearch response: %w", err)
	}

	// The wire format carries the count as a string.
	count := 0
	if er.Result.Count != "" {
		count, err = strconv.Atoi(er.Result.Count)
		if err != nil {
			return Session{}, fmt.Errorf("parsing esearch count %q: %w", er.Result.Count, err)
		}
	}
	if count == 0 {
		return Session{}, nil
	}

	if er.Result.QueryKey == "" || er.Result.WebEnv == "" {
		return Session{}, fmt.Errorf("esearch response missing session handle for %q", term)
	}

	return Session{
		QueryKey: er.Result.QueryKey,
		WebEnv:   er.Result.WebEnv,
		Count:    count,
	}, nil
}

// E-utilities esearch JSON structures.
type esearchResponse struct {
	Result esearchResult `json:"esearchresult"`
}

type esearchResult struct {
	Count    string `json:"count"`
	QueryKey string `json:"querykey"`
	WebEnv   string `json:"webenv"`
}

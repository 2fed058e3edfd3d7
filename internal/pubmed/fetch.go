// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pubmed

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/pdiddy/pubmed-harvester/pkg/types"
)

// Placeholder values substituted when a record omits optional structure.
const (
	NoAbstract = "No abstract available"
	NoAuthors  = "No authors listed"
)

// FetchBatch retrieves one window of full-abstract records from an open
// session and extracts those matching the criteria. A response without any
// article elements is a normal condition near the tail of a result set: it
// is logged and yields an empty slice, not an error. Output order follows
// the response.
func (c *Client) FetchBatch(ctx context.Context, sess Session, offset, pageSize int, criteria types.Criteria) ([]types.Record, error) {
	params := url.Values{
		"db":        {database},
		"query_key": {sess.QueryKey},
		"WebEnv":    {sess.WebEnv},
		"retstart":  {strconv.Itoa(offset)},
		"retmax":    {strconv.Itoa(pageSize)},
		"retmode":   {"xml"},
		"rettype":   {"abstract"},
	}

	body, err := c.get(ctx, c.FetchURL, params)
	if err != nil {
		return nil, fmt.Errorf("efetch window %d+%d: %w", offset, pageSize, err)
	}

	var set articleSet
	if err := xml.Unmarshal(body, &set); err != nil {
		return nil, fmt.Errorf("parsing efetch response: %w", err)
	}

	if len(set.Articles) == 0 {
		fmt.Fprintf(c.log, "no articles in window starting at %d\n", offset)
		return nil, nil
	}

	var records []types.Record
	for _, art := range set.Articles {
		if rec, ok := extractRecord(art, criteria); ok {
			records = append(records, rec)
		}
	}
	return records, nil
}

// extractRecord turns one raw article into a Record, substituting
// placeholders for absent optional fields. It returns false when the
// record fails the affiliation or year filter; this is the only place
// the filters are applied.
func extractRecord(art pubmedArticle, criteria types.Criteria) (types.Record, bool) {
	a := art.Citation.Article

	affiliation := ""
	if a.Authors != nil && len(a.Authors.Authors) > 0 && len(a.Authors.Authors[0].Affiliations) > 0 {
		affiliation = a.Authors.Authors[0].Affiliations[0]
	}

	year, ok := pubYear(a.Journal)
	if !ok || year < criteria.YearStart || year > criteria.YearEnd {
		return types.Record{}, false
	}
	if !matchesInstitution(affiliation, criteria.Institutions) {
		return types.Record{}, false
	}

	return types.Record{
		PMID:        strings.TrimSpace(art.Citation.PMID),
		Title:       strings.TrimSpace(a.Title),
		Abstract:    abstractText(a.Abstract),
		Authors:     authorNames(a.Authors),
		Journal:     strings.TrimSpace(a.Journal.Title),
		Year:        year,
		Affiliation: affiliation,
	}, true
}

// matchesInstitution reports whether the affiliation contains any of the
// configured institution substrings. The match is case-sensitive.
func matchesInstitution(affiliation string, institutions []string) bool {
	for _, inst := range institutions {
		if strings.Contains(affiliation, inst) {
			return true
		}
	}
	return false
}

// pubYear parses the publication year from the journal issue's pub date.
func pubYear(j journal) (int, bool) {
	if j.Issue == nil || j.Issue.PubDate.Year == "" {
		return 0, false
	}
	year, err := strconv.Atoi(strings.TrimSpace(j.Issue.PubDate.Year))
	if err != nil {
		return 0, false
	}
	return year, true
}

// abstractText joins the abstract sections, or substitutes the placeholder
// when the container or its text is absent.
func abstractText(ab *abstract) string {
	if ab == nil {
		return NoAbstract
	}
	text := strings.TrimSpace(strings.Join(ab.Text, " "))
	if text == "" {
		return NoAbstract
	}
	return text
}

// authorNames builds "LastName ForeName" display names in source order,
// with a missing half contributing nothing. An absent author list yields
// the single placeholder entry.
func authorNames(list *authorList) []string {
	if list == nil || len(list.Authors) == 0 {
		return []string{NoAuthors}
	}
	names := make([]string, 0, len(list.Authors))
	for _, a := range list.Authors {
		names = append(names, strings.TrimSpace(a.LastName+" "+a.ForeName))
	}
	return names
}

// E-utilities efetch XML structures. Optional containers are pointers so
// extraction can tell "absent" from "empty".
type articleSet struct {
	Articles []pubmedArticle `xml:"PubmedArticle"`
}

type pubmedArticle struct {
	Citation medlineCitation `xml:"MedlineCitation"`
}

type medlineCitation struct {
	PMID    string  `xml:"PMID"`
	Article article `xml:"Article"`
}

type article struct {
	Title    string      `xml:"ArticleTitle"`
	Abstract *abstract   `xml:"Abstract"`
	Authors  *authorList `xml:"AuthorList"`
	Journal  journal     `xml:"Journal"`
}

type abstract struct {
	Text []string `xml:"AbstractText"`
}

type authorList struct {
	Authors []author `xml:"Author"`
}

type author struct {
	LastName     string   `xml:"LastName"`
	ForeName     string   `xml:"ForeName"`
	Affiliations []string `xml:"AffiliationInfo>Affiliation"`
}

type journal struct {
	Title string        `xml:"Title"`
	Issue *journalIssue `xml:"JournalIssue"`
}

type journalIssue struct {
	PubDate pubDate `xml:"PubDate"`
}

type pubDate struct {
	Year string `xml:"Year"`
}

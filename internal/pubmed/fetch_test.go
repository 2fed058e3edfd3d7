// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pubmed

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// sampleEFetchXML carries two articles: one that passes the Yale/2021
// filters and one from 2019 that must be dropped.
const sampleEFetchXML = `<?xml version="1.0" ?>
<PubmedArticleSet>
  <PubmedArticle>
    <MedlineCitation>
      <PMID>34567890</PMID>
      <Article>
        <Journal>
          <JournalIssue>
            <PubDate><Year>2021</Year></PubDate>
          </JournalIssue>
          <Title>Journal of Molecular Biology</Title>
        </Journal>
        <ArticleTitle>Gene expression dynamics in yeast</ArticleTitle>
        <Abstract>
          <AbstractText>We measured expression over time.</AbstractText>
        </Abstract>
        <AuthorList>
          <Author>
            <LastName>Smith</LastName>
            <ForeName>Jane</ForeName>
            <AffiliationInfo>
              <Affiliation>Dept of Biology, Yale University, New Haven</Affiliation>
            </AffiliationInfo>
          </Author>
          <Author>
            <LastName>Doe</LastName>
            <ForeName>John</ForeName>
          </Author>
        </AuthorList>
      </Article>
    </MedlineCitation>
  </PubmedArticle>
  <PubmedArticle>
    <MedlineCitation>
      <PMID>29876543</PMID>
      <Article>
        <Journal>
          <JournalIssue>
            <PubDate><Year>2019</Year></PubDate>
          </JournalIssue>
          <Title>Cell Reports</Title>
        </Journal>
        <ArticleTitle>An older study</ArticleTitle>
        <AuthorList>
          <Author>
            <LastName>Lee</LastName>
            <ForeName>Ana</ForeName>
            <AffiliationInfo>
              <Affiliation>Yale University School of Medicine</Affiliation>
            </AffiliationInfo>
          </Author>
        </AuthorList>
      </Article>
    </MedlineCitation>
  </PubmedArticle>
</PubmedArticleSet>`

func efetchTestServer(statusCode int, body string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/xml")
		w.WriteHeader(statusCode)
		fmt.Fprint(w, body)
	}))
}

func newFetchClient(ts *httptest.Server) *Client {
	c := NewClient(testCfg(), "", io.Discard)
	c.HTTP = ts.Client()
	c.FetchURL = ts.URL
	return c
}

func testSession() Session {
	return Session{QueryKey: "1", WebEnv: "MCID_test", Count: 2}
}

// parseArticle unmarshals a single PubmedArticle fragment for extraction tests.
func parseArticle(t *testing.T, fragment string) pubmedArticle {
	t.Helper()
	var art pubmedArticle
	if err := xml.Unmarshal([]byte(fragment), &art); err != nil {
		t.Fatalf("unmarshaling test fragment: %v", err)
	}
	return art
}

// --- FetchBatch ---

func TestFetchBatch(t *testing.T) {
	ts := efetchTestServer(http.StatusOK, sampleEFetchXML)
	defer ts.Close()

	c := newFetchClient(ts)
	records, err := c.FetchBatch(context.Background(), testSession(), 0, 100, testCriteria())
	if err != nil {
		t.Fatalf("FetchBatch: %v", err)
	}
	// The 2019 article falls outside the year range.
	if len(records) != 1 {
		t.Fatalf("len(records) = %d, want 1", len(records))
	}

	r := records[0]
	if r.PMID != "34567890" {
		t.Errorf("PMID = %q, want 34567890", r.PMID)
	}
	if r.Title != "Gene expression dynamics in yeast" {
		t.Errorf("Title = %q", r.Title)
	}
	if r.Abstract != "We measured expression over time." {
		t.Errorf("Abstract = %q", r.Abstract)
	}
	if len(r.Authors) != 2 || r.Authors[0] != "Smith Jane" || r.Authors[1] != "Doe John" {
		t.Errorf("Authors = %v, want [Smith Jane, Doe John]", r.Authors)
	}
	if r.Journal != "Journal of Molecular Biology" {
		t.Errorf("Journal = %q", r.Journal)
	}
	if r.Year != 2021 {
		t.Errorf("Year = %d, want 2021", r.Year)
	}
	if r.Affiliation != "Dept of Biology, Yale University, New Haven" {
		t.Errorf("Affiliation = %q", r.Affiliation)
	}
}

func TestFetchBatchSendsWindowParams(t *testing.T) {
	var got map[string]string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = map[string]string{}
		for k := range r.URL.Query() {
			got[k] = r.URL.Query().Get(k)
		}
		fmt.Fprint(w, `<PubmedArticleSet></PubmedArticleSet>`)
	}))
	defer ts.Close()

	c := newFetchClient(ts)
	if _, err := c.FetchBatch(context.Background(), testSession(), 200, 100, testCriteria()); err != nil {
		t.Fatalf("FetchBatch: %v", err)
	}

	if got["query_key"] != "1" {
		t.Errorf("query_key = %q, want 1", got["query_key"])
	}
	if got["WebEnv"] != "MCID_test" {
		t.Errorf("WebEnv = %q, want MCID_test", got["WebEnv"])
	}
	if got["retstart"] != "200" {
		t.Errorf("retstart = %q, want 200", got["retstart"])
	}
	if got["retmax"] != "100" {
		t.Errorf("retmax = %q, want 100", got["retmax"])
	}
	if got["retmode"] != "xml" || got["rettype"] != "abstract" {
		t.Errorf("retmode/rettype = %q/%q, want xml/abstract", got["retmode"], got["rettype"])
	}
}

func TestFetchBatchEmptyContainer(t *testing.T) {
	ts := efetchTestServer(http.StatusOK, `<PubmedArticleSet></PubmedArticleSet>`)
	defer ts.Close()

	c := newFetchClient(ts)
	records, err := c.FetchBatch(context.Background(), testSession(), 0, 100, testCriteria())
	if err != nil {
		t.Fatalf("FetchBatch should treat an empty container as an empty batch, got: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("len(records) = %d, want 0", len(records))
	}
}

func TestFetchBatchErrors(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		body       string
		wantSubstr string
	}{
		{"server error", http.StatusInternalServerError, "", "efetch"},
		{"malformed XML", http.StatusOK, `<PubmedArticleSet><broken`, "parsing efetch response"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := efetchTestServer(tt.statusCode, tt.body)
			defer ts.Close()

			c := newFetchClient(ts)
			_, err := c.FetchBatch(context.Background(), testSession(), 0, 100, testCriteria())
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantSubstr) {
				t.Errorf("error = %q, should contain %q", err.Error(), tt.wantSubstr)
			}
		})
	}
}

// --- extractRecord ---

const articleTemplate = `<PubmedArticle>
  <MedlineCitation>
    <PMID>111</PMID>
    <Article>
      <Journal>
        %s
        <Title>Test Journal</Title>
      </Journal>
      <ArticleTitle>Test Article</ArticleTitle>
      %s
      %s
    </Article>
  </MedlineCitation>
</PubmedArticle>`

const yaleAuthor = `<AuthorList>
  <Author>
    <LastName>Smith</LastName>
    <ForeName>Jane</ForeName>
    <AffiliationInfo><Affiliation>Yale University</Affiliation></AffiliationInfo>
  </Author>
</AuthorList>`

const year2021 = `<JournalIssue><PubDate><Year>2021</Year></PubDate></JournalIssue>`

func TestExtractRecordMissingAbstract(t *testing.T) {
	art := parseArticle(t, fmt.Sprintf(articleTemplate, year2021, "", yaleAuthor))

	rec, ok := extractRecord(art, testCriteria())
	if !ok {
		t.Fatal("record should pass the filters")
	}
	if rec.Abstract != NoAbstract {
		t.Errorf("Abstract = %q, want %q", rec.Abstract, NoAbstract)
	}
}

func TestExtractRecordEmptyAbstractText(t *testing.T) {
	empty := `<Abstract><AbstractText></AbstractText></Abstract>`
	art := parseArticle(t, fmt.Sprintf(articleTemplate, year2021, empty, yaleAuthor))

	rec, ok := extractRecord(art, testCriteria())
	if !ok {
		t.Fatal("record should pass the filters")
	}
	if rec.Abstract != NoAbstract {
		t.Errorf("Abstract = %q, want %q", rec.Abstract, NoAbstract)
	}
}

func TestExtractRecordMissingAuthorList(t *testing.T) {
	// Without authors there is no affiliation, so the record can only be
	// kept when an empty affiliation matches -- use an empty institution
	// substring to isolate the author placeholder behavior.
	criteria := testCriteria()
	criteria.Institutions = []string{""}

	art := parseArticle(t, fmt.Sprintf(articleTemplate, year2021, "", ""))

	rec, ok := extractRecord(art, criteria)
	if !ok {
		t.Fatal("record should pass the filters")
	}
	if len(rec.Authors) != 1 || rec.Authors[0] != NoAuthors {
		t.Errorf("Authors = %v, want [%q]", rec.Authors, NoAuthors)
	}
	if rec.Affiliation != "" {
		t.Errorf("Affiliation = %q, want empty", rec.Affiliation)
	}
}

func TestExtractRecordPartialAuthorNames(t *testing.T) {
	authors := `<AuthorList>
	  <Author>
	    <LastName>OnlyLast</LastName>
	    <AffiliationInfo><Affiliation>Yale University</Affiliation></AffiliationInfo>
	  </Author>
	  <Author><ForeName>OnlyFore</ForeName></Author>
	</AuthorList>`
	art := parseArticle(t, fmt.Sprintf(articleTemplate, year2021, "", authors))

	rec, ok := extractRecord(art, testCriteria())
	if !ok {
		t.Fatal("record should pass the filters")
	}
	if len(rec.Authors) != 2 || rec.Authors[0] != "OnlyLast" || rec.Authors[1] != "OnlyFore" {
		t.Errorf("Authors = %v, want [OnlyLast, OnlyFore]", rec.Authors)
	}
}

func TestExtractRecordFilters(t *testing.T) {
	mitAuthor := strings.ReplaceAll(yaleAuthor, "Yale University", "MIT")
	noYear := `<JournalIssue><PubDate></PubDate></JournalIssue>`
	year2030 := strings.ReplaceAll(year2021, "2021", "2030")

	tests := []struct {
		name    string
		issue   string
		authors string
	}{
		{"wrong institution", year2021, mitAuthor},
		{"missing year", noYear, yaleAuthor},
		{"year above range", year2030, yaleAuthor},
		{"no authors means no affiliation", year2021, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			art := parseArticle(t, fmt.Sprintf(articleTemplate, tt.issue, "", tt.authors))
			if _, ok := extractRecord(art, testCriteria()); ok {
				t.Error("record should be dropped")
			}
		})
	}
}

func TestExtractRecordUsesFirstAuthorFirstAffiliation(t *testing.T) {
	authors := `<AuthorList>
	  <Author>
	    <LastName>First</LastName><ForeName>A</ForeName>
	    <AffiliationInfo><Affiliation>Yale University, New Haven</Affiliation></AffiliationInfo>
	    <AffiliationInfo><Affiliation>Broad Institute</Affiliation></AffiliationInfo>
	  </Author>
	  <Author>
	    <LastName>Second</LastName><ForeName>B</ForeName>
	    <AffiliationInfo><Affiliation>Stanford University</Affiliation></AffiliationInfo>
	  </Author>
	</AuthorList>`
	art := parseArticle(t, fmt.Sprintf(articleTemplate, year2021, "", authors))

	rec, ok := extractRecord(art, testCriteria())
	if !ok {
		t.Fatal("record should pass the filters")
	}
	if rec.Affiliation != "Yale University, New Haven" {
		t.Errorf("Affiliation = %q, want first author's first entry", rec.Affiliation)
	}
}

func TestExtractRecordSecondAuthorAffiliationIgnored(t *testing.T) {
	// Only the first author's affiliation is consulted; a match on a
	// later author does not qualify the record.
	authors := `<AuthorList>
	  <Author>
	    <LastName>First</LastName><ForeName>A</ForeName>
	    <AffiliationInfo><Affiliation>Stanford University</Affiliation></AffiliationInfo>
	  </Author>
	  <Author>
	    <LastName>Second</LastName><ForeName>B</ForeName>
	    <AffiliationInfo><Affiliation>Yale University</Affiliation></AffiliationInfo>
	  </Author>
	</AuthorList>`
	art := parseArticle(t, fmt.Sprintf(articleTemplate, year2021, "", authors))

	if _, ok := extractRecord(art, testCriteria()); ok {
		t.Error("record should be dropped when only a later author matches")
	}
}

func TestExtractRecordCaseSensitiveMatch(t *testing.T) {
	lower := strings.ReplaceAll(yaleAuthor, "Yale University", "yale university")
	art := parseArticle(t, fmt.Sprintf(articleTemplate, year2021, "", lower))

	if _, ok := extractRecord(art, testCriteria()); ok {
		t.Error("substring match is case-sensitive; lowercase affiliation should be dropped")
	}
}

func TestExtractRecordMultiSectionAbstract(t *testing.T) {
	sections := `<Abstract>
	  <AbstractText>Background text.</AbstractText>
	  <AbstractText>Results text.</AbstractText>
	</Abstract>`
	art := parseArticle(t, fmt.Sprintf(articleTemplate, year2021, sections, yaleAuthor))

	rec, ok := extractRecord(art, testCriteria())
	if !ok {
		t.Fatal("record should pass the filters")
	}
	if rec.Abstract != "Background text. Results text." {
		t.Errorf("Abstract = %q, want joined sections", rec.Abstract)
	}
}

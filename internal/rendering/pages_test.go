package rendering

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/jonathan/cvfeed/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseHTML(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func TestRenderCandidatePage(t *testing.T) {
	data := types.ParseCandidateData([]byte(`{
		"candidate": {"fullName": "<Ada>", "primaryProfession": "Engineer"},
		"skills": [{"name": "Go"}],
		"education": [{"degreeType": "BSc", "fieldOfStudy": "Maths", "graduationYear": "2012"}, {"degreeType": "MSc"}],
		"experience": [{"title": "Analyst", "companyName": "Engines", "startDate": "2019"}]
	}`))
	prev, next := int64(3), int64(9)
	source := "upload"
	created := time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)

	page := NewCandidatePage(5, data, RecordMeta{Source: &source, CreatedAt: &created}, &prev, &next)

	var buf bytes.Buffer
	require.NoError(t, RenderCandidatePage(&buf, page))
	doc := parseHTML(t, buf.String())

	assert.Equal(t, "<Ada>", doc.Find("h1.full-name").Text())
	assert.NotContains(t, buf.String(), "<Ada>")
	assert.Equal(t, "N/A", doc.Find("li.location").Text())
	assert.Equal(t, "Go", doc.Find("section.skills li").Text())
	years := doc.Find("section.education .graduation-year")
	require.Equal(t, 2, years.Length())
	assert.Equal(t, "2012", years.Eq(0).Text())
	assert.Equal(t, "N/A", years.Eq(1).Text())
	assert.Equal(t, "2019 – Present", doc.Find(".role .period").Text())
	assert.Equal(t, "upload", doc.Find(".source").Text())
	assert.Equal(t, "N/A", doc.Find(".source-file").Text())
	assert.Equal(t, "2025-09-01T12:00:00Z", doc.Find("footer time").Text())

	href, ok := doc.Find("a.prev").Attr("href")
	require.True(t, ok)
	assert.Equal(t, "/candidate/3", href)
	href, ok = doc.Find("a.next").Attr("href")
	require.True(t, ok)
	assert.Equal(t, "/candidate/9", href)
}

func TestRenderCandidatePage_NoNeighbours(t *testing.T) {
	page := NewCandidatePage(1, types.CandidateData{}, RecordMeta{}, nil, nil)

	var buf bytes.Buffer
	require.NoError(t, RenderCandidatePage(&buf, page))
	doc := parseHTML(t, buf.String())

	assert.Equal(t, 0, doc.Find("a.prev").Length())
	assert.Equal(t, 0, doc.Find("a.next").Length())
	assert.Equal(t, "N/A", doc.Find("section.education p").Text())
}

func TestRenderCandidatesPage(t *testing.T) {
	entries := []types.ProjectionEntry{
		{ID: 1, Projection: types.ParseCandidateData([]byte(`{"candidate": {"fullName": "A"}, "skills": ["Go", "SQL"]}`)).Project()},
		{ID: 2, Projection: types.ParseCandidateData(nil).Project()},
	}

	var buf bytes.Buffer
	require.NoError(t, RenderCandidatesPage(&buf, NewCandidatesPage([]string{"Designer", "Engineer"}, entries)))
	doc := parseHTML(t, buf.String())

	assert.Equal(t, 2, doc.Find("li.job").Length())
	rows := doc.Find("table.candidates tbody tr")
	require.Equal(t, 2, rows.Length())

	href, _ := rows.First().Find("a").Attr("href")
	assert.Equal(t, "/candidate/1", href)
	assert.Equal(t, "Go, SQL", rows.First().Find("td").Last().Text())
	assert.Equal(t, "N/A", rows.Last().Find("a").Text())
}

func TestRenderStatusPage(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderStatusPage(&buf, "Not Found", "Candidate 7 does not exist"))
	doc := parseHTML(t, buf.String())
	assert.Equal(t, "Not Found", doc.Find("h1").Text())
	assert.Equal(t, "Candidate 7 does not exist", doc.Find("p.message").Text())
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("closed") }

func TestRender_WriteFailure(t *testing.T) {
	err := RenderStatusPage(failingWriter{}, "t", "m")

	var renderErr *RenderError
	require.ErrorAs(t, err, &renderErr)
	assert.Contains(t, err.Error(), "closed")
}

func TestRender_UnknownTemplate(t *testing.T) {
	err := render(&bytes.Buffer{}, "missing.html", nil)

	var tmplErr *TemplateError
	require.ErrorAs(t, err, &tmplErr)
	assert.Equal(t, "missing.html", tmplErr.Name)
}

package arxiv

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"digital-library/config"
)

const sampleFeed = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <opensearch:totalResults xmlns:opensearch="http://a9.com/-/spec/opensearch/1.1/">2</opensearch:totalResults>
  <entry>
    <id>http://arxiv.org/abs/2301.00001v2</id>
    <title>Microservice   Migration:
      a Field Study</title>
    <summary>We report on
      twelve migrations.</summary>
    <published>2023-01-02T18:30:00Z</published>
    <author><name>Ana Silva</name></author>
    <author><name>Bruno Costa</name></author>
    <category term="cs.SE"/>
    <category term="cs.DC"/>
    <link href="http://arxiv.org/abs/2301.00001v2" rel="alternate" type="text/html"/>
    <link href="http://arxiv.org/pdf/2301.00001v2" rel="related" type="application/pdf"/>
    <arxiv:doi xmlns:arxiv="http://arxiv.org/schemas/atom">10.1000/example</arxiv:doi>
    <arxiv:journal_ref xmlns:arxiv="http://arxiv.org/schemas/atom">IEEE TSE 2023</arxiv:journal_ref>
  </entry>
  <entry>
    <id>http://arxiv.org/abs/2212.09999v1</id>
    <title>A Second Paper</title>
    <summary>Short abstract.</summary>
    <published>2022-12-20T09:00:00Z</published>
    <author><name>Carla Dias</name></author>
    <category term="cs.SE"/>
  </entry>
</feed>`

func testConfig(baseURL string) *config.Config {
	return &config.Config{
		ArxivBaseURL:    baseURL,
		ArxivPageSize:   100,
		ArxivMaxResults: 200,
		ArxivRateLimit:  1000, // no throttling in tests
	}
}

func TestSearchParsesFeed(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("search_query")
		w.Header().Set("Content-Type", "application/atom+xml")
		w.Write([]byte(sampleFeed))
	}))
	defer srv.Close()

	f := NewFetcher(testConfig(srv.URL), zap.NewNop())
	papers, err := f.Search(context.Background(), "cat:cs.SE", 10)
	require.NoError(t, err)
	assert.Equal(t, "cat:cs.SE", gotQuery)
	require.Len(t, papers, 2)

	p := papers[0]
	assert.Equal(t, "2301.00001v2", p.SourceID)
	assert.Equal(t, "Microservice Migration: a Field Study", p.Title)
	assert.Equal(t, "We report on twelve migrations.", p.Abstract)
	assert.Equal(t, []string{"Ana Silva", "Bruno Costa"}, p.Authors)
	assert.Equal(t, []string{"cs.SE", "cs.DC"}, p.Categories)
	assert.Equal(t, "http://arxiv.org/pdf/2301.00001v2", p.PDFURL)
	assert.Equal(t, "http://arxiv.org/abs/2301.00001v2", p.PageURL)
	assert.Equal(t, "2023-01-02", p.Published)
	assert.Equal(t, 2023, p.Year)
	assert.Equal(t, "10.1000/example", p.DOI)
	assert.Equal(t, "IEEE TSE 2023", p.JournalRef)

	// second entry carries no links at all
	assert.Empty(t, papers[1].PDFURL)
	assert.Equal(t, 2022, papers[1].Year)
}

func TestSearchStopsOnShortPage(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Write([]byte(sampleFeed)) // 2 entries, fewer than the page size
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.ArxivPageSize = 50
	f := NewFetcher(cfg, zap.NewNop())

	papers, err := f.Search(context.Background(), "cat:cs.SE", 200)
	require.NoError(t, err)
	assert.Len(t, papers, 2)
	assert.Equal(t, 1, calls)
}

func TestSearchAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	f := NewFetcher(testConfig(srv.URL), zap.NewNop())
	_, err := f.Search(context.Background(), "cat:cs.SE", 10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 503")
}

func TestArxivID(t *testing.T) {
	assert.Equal(t, "2301.00001v2", arxivID("http://arxiv.org/abs/2301.00001v2"))
	assert.Equal(t, "plain-id", arxivID("plain-id"))
}

// Package europepmc implements the Europe PMC scraping provider. It covers
// life-science venues the arXiv provider does not reach.
package europepmc

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"digital-library/config"
	"digital-library/providers"
)

const baseURL = "https://www.ebi.ac.uk/europepmc/webservices/rest/search"

var httpClient = &http.Client{Timeout: 60 * time.Second}

// Fetcher queries the Europe PMC REST API.
type Fetcher struct {
	Config *config.Config
	Logger *zap.Logger
}

// NewFetcher creates a new Europe PMC fetcher.
func NewFetcher(cfg *config.Config, logger *zap.Logger) *Fetcher {
	return &Fetcher{Config: cfg, Logger: logger}
}

// Name returns the provider name.
func (f *Fetcher) Name() string {
	return "europepmc"
}

// Search runs one search call against the REST endpoint. Europe PMC caps a
// single page at 1000 results, more than any scrape here asks for, so no
// cursor paging is done.
func (f *Fetcher) Search(ctx context.Context, query string, maxResults int) ([]providers.ScrapedPaper, error) {
	log := f.Logger.With(zap.String("query", query))

	if maxResults <= 0 || maxResults > 1000 {
		maxResults = 100
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("format", "json")
	params.Set("resultType", "core")
	params.Set("pageSize", strconv.Itoa(maxResults))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("europepmc request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("europepmc API returned status %d", resp.StatusCode)
	}

	var sr searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("decoding europepmc response: %w", err)
	}

	papers := make([]providers.ScrapedPaper, 0, len(sr.ResultList.Result))
	for _, a := range sr.ResultList.Result {
		papers = append(papers, articleToPaper(a))
	}

	log.Info("Europe PMC search finished", zap.Int("total", len(papers)))
	return papers, nil
}

// articleToPaper normalizes one search result.
func articleToPaper(a article) providers.ScrapedPaper {
	p := providers.ScrapedPaper{
		SourceID:   a.ID,
		Title:      strings.TrimSpace(a.Title),
		Abstract:   strings.TrimSpace(a.AbstractText),
		DOI:        a.DOI,
		JournalRef: a.JournalTitle,
		PageURL:    fmt.Sprintf("https://europepmc.org/article/%s/%s", a.Source, a.ID),
	}

	if names := strings.TrimSpace(a.AuthorString); names != "" {
		for _, name := range strings.Split(strings.TrimSuffix(names, "."), ",") {
			if name = strings.TrimSpace(name); name != "" {
				p.Authors = append(p.Authors, name)
			}
		}
	}

	// first open access PDF link wins
	for _, u := range a.FullTextURLList.FullTextURL {
		if u.DocumentStyle == "pdf" && u.AvailabilityCode == "OA" {
			p.PDFURL = u.URL
			break
		}
	}

	if len(a.FirstPublicationDate) >= 4 {
		p.Published = a.FirstPublicationDate
		if y, err := strconv.Atoi(a.FirstPublicationDate[:4]); err == nil {
			p.Year = y
		}
	}
	return p
}

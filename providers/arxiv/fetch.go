package arxiv

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"digital-library/config"
	"digital-library/providers"
)

var (
	httpClient = &http.Client{Timeout: 60 * time.Second}
	whitespace = regexp.MustCompile(`\s+`)
)

// Fetcher queries the arXiv Atom API. Requests are rate limited to the
// courtesy interval arXiv asks for (one request every ~3 seconds).
type Fetcher struct {
	Config  *config.Config
	Logger  *zap.Logger
	limiter *rate.Limiter
}

// NewFetcher creates a new arXiv fetcher.
func NewFetcher(cfg *config.Config, logger *zap.Logger) *Fetcher {
	return &Fetcher{
		Config:  cfg,
		Logger:  logger,
		limiter: rate.NewLimiter(rate.Limit(cfg.ArxivRateLimit), 1),
	}
}

// Name returns the provider name.
func (f *Fetcher) Name() string {
	return "arxiv"
}

// Search pages through the arXiv query API until maxResults papers are
// collected or the feed is exhausted. Results come back newest first.
func (f *Fetcher) Search(ctx context.Context, query string, maxResults int) ([]providers.ScrapedPaper, error) {
	log := f.Logger.With(zap.String("query", query))

	if maxResults <= 0 {
		maxResults = f.Config.ArxivMaxResults
	}

	var papers []providers.ScrapedPaper
	for start := 0; start < maxResults; start += f.Config.ArxivPageSize {
		pageSize := f.Config.ArxivPageSize
		if remaining := maxResults - start; remaining < pageSize {
			pageSize = remaining
		}

		page, err := f.fetchPage(ctx, query, start, pageSize)
		if err != nil {
			return nil, err
		}
		if len(page) == 0 {
			break
		}
		papers = append(papers, page...)
		log.Debug("Fetched arXiv page", zap.Int("start", start), zap.Int("count", len(page)))

		if len(page) < pageSize {
			break
		}
	}

	log.Info("arXiv search finished", zap.Int("total", len(papers)))
	return papers, nil
}

// fetchPage requests one page of results from the query endpoint.
func (f *Fetcher) fetchPage(ctx context.Context, query string, start, pageSize int) ([]providers.ScrapedPaper, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("search_query", query)
	params.Set("start", strconv.Itoa(start))
	params.Set("max_results", strconv.Itoa(pageSize))
	params.Set("sortBy", "submittedDate")
	params.Set("sortOrder", "descending")

	reqURL := f.Config.ArxivBaseURL + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("arxiv request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("arxiv API returned status %d", resp.StatusCode)
	}

	var fd feed
	if err := xml.NewDecoder(resp.Body).Decode(&fd); err != nil {
		return nil, fmt.Errorf("decoding arxiv feed: %w", err)
	}

	papers := make([]providers.ScrapedPaper, 0, len(fd.Entries))
	for _, e := range fd.Entries {
		papers = append(papers, entryToPaper(e))
	}
	return papers, nil
}

// entryToPaper normalizes one Atom entry.
func entryToPaper(e entry) providers.ScrapedPaper {
	p := providers.ScrapedPaper{
		SourceID:   arxivID(e.ID),
		Title:      collapseWhitespace(e.Title),
		Abstract:   collapseWhitespace(e.Summary),
		DOI:        strings.TrimSpace(e.DOI),
		JournalRef: strings.TrimSpace(e.JournalRef),
	}

	for _, a := range e.Authors {
		if name := strings.TrimSpace(a.Name); name != "" {
			p.Authors = append(p.Authors, name)
		}
	}
	for _, c := range e.Categories {
		if c.Term != "" {
			p.Categories = append(p.Categories, c.Term)
		}
	}
	for _, l := range e.Links {
		switch l.Type {
		case "application/pdf":
			p.PDFURL = l.Href
		case "text/html":
			p.PageURL = l.Href
		}
	}

	if len(e.Published) >= 10 {
		p.Published = e.Published[:10]
		if y, err := strconv.Atoi(e.Published[:4]); err == nil {
			p.Year = y
		}
	}
	return p
}

// arxivID extracts the bare identifier from an entry id URL like
// http://arxiv.org/abs/2301.00001v2.
func arxivID(id string) string {
	if i := strings.LastIndex(id, "/"); i >= 0 {
		return id[i+1:]
	}
	return id
}

func collapseWhitespace(s string) string {
	return strings.TrimSpace(whitespace.ReplaceAllString(s, " "))
}

// Package providers defines the interface every metadata scraping provider
// implements.
package providers

import "context"

// ScrapedPaper is the normalized result every provider returns for one
// scraped article.
type ScrapedPaper struct {
	SourceID   string   `json:"source_id"` // provider-native id, e.g. an arXiv id
	Title      string   `json:"title"`
	Authors    []string `json:"authors"`
	Abstract   string   `json:"abstract"`
	Year       int      `json:"year"`
	Published  string   `json:"published_date"` // ISO date, may be empty
	Categories []string `json:"categories"`
	PDFURL     string   `json:"pdf_url"`
	PageURL    string   `json:"page_url"`
	DOI        string   `json:"doi"`
	JournalRef string   `json:"journal_ref"`
}

// Provider is implemented by every scraping source.
type Provider interface {
	// Search runs a query and returns up to maxResults normalized papers.
	Search(ctx context.Context, query string, maxResults int) ([]ScrapedPaper, error)

	// Name returns the unique provider name, e.g. "arxiv".
	Name() string
}

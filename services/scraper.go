package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"digital-library/bibtex"
	"digital-library/config"
	"digital-library/providers"
)

// ScrapeService runs the configured scraping providers and funnels their
// results through the same import pipeline bulk uploads use, so scraped
// articles get identical validation and reporting.
type ScrapeService struct {
	Config    *config.Config
	Providers []providers.Provider
	Importer  *ImportService
	Logger    *zap.Logger
}

// NewScrapeService creates a new ScrapeService.
func NewScrapeService(cfg *config.Config, provs []providers.Provider, importer *ImportService, logger *zap.Logger) *ScrapeService {
	return &ScrapeService{Config: cfg, Providers: provs, Importer: importer, Logger: logger}
}

// Run searches every provider for the query and imports the results into
// the edition identified by event name and year. Provider failures skip
// that provider; the import report of the combined results is returned.
func (s *ScrapeService) Run(ctx context.Context, query, eventName string, year int, maxResults int) (*ImportResult, error) {
	if eventName == "" {
		return nil, fmt.Errorf("event name is required")
	}
	if year == 0 {
		year = time.Now().Year()
	}

	var papers []providers.ScrapedPaper
	for _, p := range s.Providers {
		found, err := p.Search(ctx, query, maxResults)
		if err != nil {
			s.Logger.Error("Provider search failed",
				zap.String("provider", p.Name()), zap.Error(err))
			continue
		}
		s.Logger.Info("Provider returned results",
			zap.String("provider", p.Name()), zap.Int("count", len(found)))
		papers = append(papers, found...)
	}

	raw := bibtex.Render(providers.ToBibTeX(papers))
	return s.Importer.Run(ctx, ImportRequest{
		Bibtex:    raw,
		EventName: eventName,
		Year:      year,
	})
}

// Package main provides the scraper CLI entry point.
package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"

	"digital-library/bibtex"
	"digital-library/config"
	"digital-library/providers"
	"digital-library/providers/arxiv"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	maxResults   int
	outputFormat string
	outputFile   string
)

// scraperConfig carries only the arXiv settings; the CLI must run without
// the server's database and bucket environment.
type scraperConfig struct {
	ArxivBaseURL    string  `envconfig:"ARXIV_BASE_URL" default:"http://export.arxiv.org/api/query"`
	ArxivPageSize   int     `envconfig:"ARXIV_PAGE_SIZE" default:"100"`
	ArxivMaxResults int     `envconfig:"ARXIV_MAX_RESULTS" default:"300"`
	ArxivRateLimit  float64 `envconfig:"ARXIV_RATE_LIMIT" default:"0.33"`
}

func loadScraperConfig() (*config.Config, error) {
	_ = godotenv.Load()
	var sc scraperConfig
	if err := envconfig.Process("", &sc); err != nil {
		return nil, err
	}
	return &config.Config{
		ArxivBaseURL:    sc.ArxivBaseURL,
		ArxivPageSize:   sc.ArxivPageSize,
		ArxivMaxResults: sc.ArxivMaxResults,
		ArxivRateLimit:  sc.ArxivRateLimit,
	}, nil
}

var rootCmd = &cobra.Command{
	Use:   "scraper",
	Short: "Fetch conference article metadata from arXiv",
	Long: `scraper queries the arXiv API for article metadata and renders the
results as BibTeX, JSON or CSV. The BibTeX output is suitable for the
library's bulk import endpoint.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(categoriesCmd)

	searchCmd.Flags().IntVar(&maxResults, "max", 100, "Maximum number of results to fetch")
	searchCmd.Flags().StringVar(&outputFormat, "format", "bibtex", "Output format: bibtex, json or csv")
	searchCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Write output to file instead of stdout")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search arXiv and print the results",
	Long: `Search arXiv and print the results.

The query uses arXiv API syntax, e.g. "cat:cs.SE" or "all:microservices".

Example:
  scraper search "cat:cs.DB" --max 50 --format bibtex -o articles.bib`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func runSearch(cmd *cobra.Command, args []string) error {
	cfg, err := loadScraperConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	logger, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	defer logger.Sync()

	fetcher := arxiv.NewFetcher(cfg, logger)
	papers, err := fetcher.Search(context.Background(), args[0], maxResults)
	if err != nil {
		return fmt.Errorf("arxiv search: %w", err)
	}
	if len(papers) == 0 {
		fmt.Fprintln(os.Stderr, "no results")
		return nil
	}

	out := os.Stdout
	if outputFile != "" {
		f, err := os.Create(outputFile)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	switch outputFormat {
	case "bibtex":
		fmt.Fprint(out, bibtex.Render(providers.ToBibTeX(papers)))
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(papers); err != nil {
			return fmt.Errorf("encoding json: %w", err)
		}
	case "csv":
		if err := writeCSV(out, papers); err != nil {
			return fmt.Errorf("writing csv: %w", err)
		}
	default:
		return fmt.Errorf("unknown format %q (want bibtex, json or csv)", outputFormat)
	}

	fmt.Fprintf(os.Stderr, "fetched %d entries\n", len(papers))
	return nil
}

func writeCSV(out *os.File, papers []providers.ScrapedPaper) error {
	w := csv.NewWriter(out)
	if err := w.Write([]string{"source_id", "title", "authors", "year", "pdf_url", "doi"}); err != nil {
		return err
	}
	for _, p := range papers {
		authors := ""
		for i, a := range p.Authors {
			if i > 0 {
				authors += "; "
			}
			authors += a
		}
		row := []string{p.SourceID, p.Title, authors, strconv.Itoa(p.Year), p.PDFURL, p.DOI}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List known arXiv categories and their conference mapping",
	RunE: func(cmd *cobra.Command, args []string) error {
		cats := make([]string, 0, len(arxiv.CategoryEvents))
		for cat := range arxiv.CategoryEvents {
			cats = append(cats, cat)
		}
		sort.Strings(cats)
		for _, cat := range cats {
			fmt.Printf("%-10s %v\n", cat, arxiv.CategoryEvents[cat])
		}
		return nil
	},
}

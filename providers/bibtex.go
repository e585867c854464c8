package providers

import (
	"fmt"
	"strings"

	"digital-library/bibtex"
)

// ToBibTeX renders scraped papers as importable BibTeX entries, keyed by
// the provider-native id so re-imported PDFs can be matched by entry key.
func ToBibTeX(papers []ScrapedPaper) []bibtex.Entry {
	entries := make([]bibtex.Entry, 0, len(papers))
	for i, p := range papers {
		key := p.SourceID
		if key == "" {
			key = fmt.Sprintf("entry-%d", i+1)
		}

		year := ""
		if p.Year != 0 {
			year = fmt.Sprintf("%d", p.Year)
		}

		entries = append(entries, bibtex.Entry{
			Type: "article",
			Key:  key,
			Fields: []bibtex.Field{
				{Name: "title", Value: p.Title},
				{Name: "author", Value: strings.Join(p.Authors, " and ")},
				{Name: "year", Value: year},
				{Name: "abstract", Value: p.Abstract},
				{Name: "url", Value: p.PDFURL},
				{Name: "journal", Value: p.JournalRef},
			},
		})
	}
	return entries
}

package europepmc

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"digital-library/config"
	"go.uber.org/zap"
)

func TestArticleToPaper(t *testing.T) {
	a := article{
		ID:                   "34567890",
		Source:               "MED",
		DOI:                  "10.1093/bioinformatics/btab123",
		Title:                "Sequence Alignment Revisited ",
		AuthorString:         "Silva A, Costa B, Dias C.",
		JournalTitle:         "Bioinformatics",
		FirstPublicationDate: "2021-03-15",
		AbstractText:         " We revisit alignment. ",
	}
	a.FullTextURLList.FullTextURL = []fullTextURL{
		{DocumentStyle: "html", AvailabilityCode: "OA", URL: "https://example.org/html"},
		{DocumentStyle: "pdf", AvailabilityCode: "S", URL: "https://example.org/paywalled.pdf"},
		{DocumentStyle: "pdf", AvailabilityCode: "OA", URL: "https://example.org/open.pdf"},
	}

	p := articleToPaper(a)
	assert.Equal(t, "34567890", p.SourceID)
	assert.Equal(t, "Sequence Alignment Revisited", p.Title)
	assert.Equal(t, "We revisit alignment.", p.Abstract)
	assert.Equal(t, []string{"Silva A", "Costa B", "Dias C"}, p.Authors)
	assert.Equal(t, "https://example.org/open.pdf", p.PDFURL)
	assert.Equal(t, "https://europepmc.org/article/MED/34567890", p.PageURL)
	assert.Equal(t, 2021, p.Year)
	assert.Equal(t, "Bioinformatics", p.JournalRef)
}

func TestArticleToPaperSparse(t *testing.T) {
	p := articleToPaper(article{ID: "1", Source: "PPR", Title: "Preprint"})
	assert.Empty(t, p.Authors)
	assert.Empty(t, p.PDFURL)
	assert.Zero(t, p.Year)
}

func TestFetcherName(t *testing.T) {
	f := NewFetcher(&config.Config{}, zap.NewNop())
	assert.Equal(t, "europepmc", f.Name())
}

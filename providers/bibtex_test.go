package providers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToBibTeX(t *testing.T) {
	entries := ToBibTeX([]ScrapedPaper{
		{
			SourceID:   "2301.00001v2",
			Title:      "A Scraped Paper",
			Authors:    []string{"Ana Silva", "Bruno Costa"},
			Abstract:   "Some abstract.",
			Year:       2023,
			PDFURL:     "http://arxiv.org/pdf/2301.00001v2",
			JournalRef: "IEEE TSE 2023",
		},
		{Title: "Keyless Paper"},
	})
	require.Len(t, entries, 2)

	first := entries[0].String()
	assert.Contains(t, first, "@article{2301.00001v2,")
	assert.Contains(t, first, "author = {Ana Silva and Bruno Costa},")
	assert.Contains(t, first, "year = {2023},")
	assert.Contains(t, first, "journal = {IEEE TSE 2023},")

	// papers without a provider id get a positional key
	second := entries[1].String()
	assert.Contains(t, second, "@article{entry-2,")
	// zero year and empty fields are left out entirely
	assert.NotContains(t, second, "year")
	assert.NotContains(t, second, "author")
}

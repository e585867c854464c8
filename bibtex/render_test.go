package bibtex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntryString(t *testing.T) {
	e := Entry{
		Type: "article",
		Key:  "2301.01234",
		Fields: []Field{
			{"title", "A Rendered Title"},
			{"author", "Ana Silva and Bruno Costa"},
			{"year", "2023"},
			{"abstract", ""},
		},
	}
	got := e.String()
	assert.Contains(t, got, "@article{2301.01234,\n")
	assert.Contains(t, got, "  title = {A Rendered Title},\n")
	assert.Contains(t, got, "  author = {Ana Silva and Bruno Costa},\n")
	assert.NotContains(t, got, "abstract")
}

func TestEntrySanitizesDelimiters(t *testing.T) {
	e := Entry{Type: "article", Key: "k", Fields: []Field{{"title", `The {BIG} "idea"`}}}
	assert.Contains(t, e.String(), "title = {The (BIG) 'idea'},")
}

func TestRenderRoundTripsThroughParser(t *testing.T) {
	entries := []Entry{
		{Type: "article", Key: "one", Fields: []Field{{"title", "First Paper"}, {"year", "2022"}}},
		{Type: "article", Key: "two", Fields: []Field{{"title", "Second Paper"}, {"author", "A B and C D"}, {"year", "2023"}}},
	}
	blocks := Split(Render(entries))
	require.Len(t, blocks, 2)

	first := Extract(blocks[0])
	assert.Equal(t, "one", first.EntryKey)
	assert.Equal(t, "First Paper", first.Title)
	assert.Equal(t, "2022", first.Year)

	second := Extract(blocks[1])
	assert.Equal(t, []string{"A B", "C D"}, second.Authors)
}

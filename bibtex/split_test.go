package bibtex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const twoRecords = `@inproceedings{sbes-paper1,
  title = {Microservice Evolution},
  author = {Ana Silva and Bruno Costa},
  year = {2023}
}
@article{tse-paper2,
  title = {Refactoring at Scale},
  year = {2022}
}`

func TestSplitTwoRecords(t *testing.T) {
	blocks := Split(twoRecords)
	require.Len(t, blocks, 2)

	assert.Equal(t, 1, blocks[0].Index)
	assert.Equal(t, "inproceedings", blocks[0].Type)
	assert.Equal(t, "sbes-paper1", blocks[0].Key)
	assert.Contains(t, blocks[0].Body, "Microservice Evolution")
	assert.NotContains(t, blocks[0].Body, "Refactoring")

	assert.Equal(t, 2, blocks[1].Index)
	assert.Equal(t, "article", blocks[1].Type)
	assert.Equal(t, "tse-paper2", blocks[1].Key)
}

func TestSplitEmptyInput(t *testing.T) {
	assert.Empty(t, Split(""))
	assert.Empty(t, Split("   \n\t  "))
}

func TestSplitDiscardsLeadingText(t *testing.T) {
	raw := "This file was exported on 2023-01-01.\n% a comment\n@misc{only, title={X}}"
	blocks := Split(raw)
	require.Len(t, blocks, 1)
	assert.Equal(t, "misc", blocks[0].Type)
	assert.Equal(t, "only", blocks[0].Key)
}

func TestSplitNoRecordMarkers(t *testing.T) {
	assert.Empty(t, Split("just some prose with no entries at all"))
}

func TestSplitMalformedRecordStillYieldsBlock(t *testing.T) {
	// A record with a missing closing brace still occupies its span.
	raw := "@inproceedings{broken, title = {Unclosed\n@article{next, title={Fine}, year={2020}}"
	blocks := Split(raw)
	require.Len(t, blocks, 2)
	assert.Equal(t, "broken", blocks[0].Key)
	assert.Equal(t, "next", blocks[1].Key)
}

func TestRawRoundTrip(t *testing.T) {
	blocks := Split(twoRecords)
	require.Len(t, blocks, 2)
	assert.Equal(t, "@inproceedings{", blocks[0].Raw()[:len("@inproceedings{")])
	assert.Contains(t, blocks[0].Raw(), "sbes-paper1")
}

func TestSplitKeyWithoutComma(t *testing.T) {
	blocks := Split("@misc{trailingkey}")
	require.Len(t, blocks, 1)
	assert.Equal(t, "trailingkey", blocks[0].Key)
}

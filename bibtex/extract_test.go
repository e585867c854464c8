package bibtex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func extractOne(t *testing.T, raw string) ExtractedRecord {
	t.Helper()
	blocks := Split(raw)
	require.Len(t, blocks, 1)
	return Extract(blocks[0])
}

func TestExtractFullRecord(t *testing.T) {
	rec := extractOne(t, `@inproceedings{silva2023micro,
  title = {Microservice Evolution Patterns},
  author = {Ana Silva and Bruno Costa and Carla Dias},
  abstract = {We study how microservice architectures evolve.},
  year = {2023},
  pages = {101--112},
  booktitle = {Proceedings of SBES},
  url = {https://example.org/paper.pdf}
}`)

	assert.Equal(t, "silva2023micro", rec.EntryKey)
	assert.Equal(t, "Microservice Evolution Patterns", rec.Title)
	assert.Equal(t, []string{"Ana Silva", "Bruno Costa", "Carla Dias"}, rec.Authors)
	assert.Equal(t, "We study how microservice architectures evolve.", rec.Abstract)
	assert.Equal(t, "2023", rec.Year)
	assert.Equal(t, "101--112", rec.Pages)
	assert.Equal(t, "Proceedings of SBES", rec.Booktitle)
	assert.Equal(t, "https://example.org/paper.pdf", rec.URL)
	assert.Contains(t, rec.RawText, "@inproceedings{")
}

func TestExtractQuotedValues(t *testing.T) {
	rec := extractOne(t, `@article{q1, title = "Quoted Title", author = "Solo Author", year = "2021"}`)
	assert.Equal(t, "Quoted Title", rec.Title)
	assert.Equal(t, []string{"Solo Author"}, rec.Authors)
	assert.Equal(t, "2021", rec.Year)
}

func TestExtractMissingFieldsAreEmpty(t *testing.T) {
	rec := extractOne(t, `@misc{bare, note = {nothing relevant}}`)
	assert.Equal(t, "", rec.Title)
	assert.Equal(t, "", rec.Year)
	assert.Equal(t, "", rec.Abstract)
	require.NotNil(t, rec.Authors)
	assert.Empty(t, rec.Authors)
}

func TestExtractYearWithoutDelimiters(t *testing.T) {
	rec := extractOne(t, "@article{y1, title={T1}, year = 2019,\n pages={1--2}}")
	assert.Equal(t, "2019", rec.Year)
}

func TestExtractYearWithSurroundingText(t *testing.T) {
	rec := extractOne(t, `@article{y2, title={T2}, year = {c. 2018 (print)}}`)
	assert.Equal(t, "2018", rec.Year)
}

func TestExtractYearNoDigits(t *testing.T) {
	rec := extractOne(t, `@article{y3, title={T3}, year = {forthcoming}}`)
	assert.Equal(t, "", rec.Year)
}

func TestExtractFieldNamesCaseInsensitive(t *testing.T) {
	rec := extractOne(t, `@ARTICLE{c1, TITLE = {Upper Case Fields}, AUTHOR = {A B}, YEAR = {2020}}`)
	assert.Equal(t, "Upper Case Fields", rec.Title)
	assert.Equal(t, []string{"A B"}, rec.Authors)
	assert.Equal(t, "2020", rec.Year)
}

func TestExtractAuthorSplitting(t *testing.T) {
	rec := extractOne(t, `@article{a1, title={T}, author = {  First Person   and  Second Person and }}`)
	assert.Equal(t, []string{"First Person", "Second Person"}, rec.Authors)
}

func TestExtractAuthorTrailingSeparator(t *testing.T) {
	rec := extractOne(t, `@article{a3, title={T}, author = {Ana Silva and Bruno Costa and }, year={2024}}`)
	assert.Equal(t, []string{"Ana Silva", "Bruno Costa"}, rec.Authors)
}

func TestExtractAuthorLeadingSeparator(t *testing.T) {
	rec := extractOne(t, `@article{a4, title={T}, author = { and Ana Silva}}`)
	assert.Equal(t, []string{"Ana Silva"}, rec.Authors)
}

func TestExtractAuthorAndRequiresWordBoundaries(t *testing.T) {
	// "and" needs surrounding whitespace to act as a separator.
	rec := extractOne(t, `@article{a2, title={T}, author = {Alexandra Brand}}`)
	assert.Equal(t, []string{"Alexandra Brand"}, rec.Authors)
}

package bibtex

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateAccepted(t *testing.T) {
	out := Validate(ExtractedRecord{
		Title:   "A Study of Things",
		Year:    "2023",
		Authors: []string{"Ana Silva"},
	})
	assert.True(t, out.Accepted)
	assert.Empty(t, out.RejectionReason)
	assert.Empty(t, out.MissingRequired)
	assert.Empty(t, out.MissingRecommended)
}

func TestValidateMissingTitle(t *testing.T) {
	out := Validate(ExtractedRecord{Year: "2023", Authors: []string{"A"}})
	assert.False(t, out.Accepted)
	assert.Equal(t, []string{"title"}, out.MissingRequired)
	assert.Equal(t, "Missing required fields: title", out.RejectionReason)
}

func TestValidateTitleTooShort(t *testing.T) {
	out := Validate(ExtractedRecord{Title: "ab", Year: "2023", Authors: []string{"A"}})
	assert.False(t, out.Accepted)
	assert.Equal(t, []string{"title (too short)"}, out.MissingRequired)
}

func TestValidateTitleLengthCountsRunes(t *testing.T) {
	// two multibyte characters are still too short
	out := Validate(ExtractedRecord{Title: "学会", Year: "2023", Authors: []string{"A"}})
	assert.False(t, out.Accepted)
	assert.Equal(t, []string{"title (too short)"}, out.MissingRequired)

	// three are enough, regardless of byte length
	out = Validate(ExtractedRecord{Title: "学会誌", Year: "2023", Authors: []string{"A"}})
	assert.True(t, out.Accepted)
}

func TestValidateYearVariants(t *testing.T) {
	cases := []struct {
		name string
		year string
		want string
	}{
		{"missing", "", "year"},
		{"not a number", "20x3", "year (invalid format)"},
		{"below range", "1899", "year (invalid range)"},
		{"above range", "2031", "year (invalid range)"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out := Validate(ExtractedRecord{Title: "Valid Title", Year: tc.year, Authors: []string{"A"}})
			assert.False(t, out.Accepted)
			assert.Equal(t, []string{tc.want}, out.MissingRequired)
		})
	}
}

func TestValidateYearBounds(t *testing.T) {
	for _, year := range []string{"1900", "2030"} {
		out := Validate(ExtractedRecord{Title: "Valid Title", Year: year, Authors: []string{"A"}})
		assert.True(t, out.Accepted, "year %s should be accepted", year)
	}
}

func TestValidateMissingAuthorsIsWarningOnly(t *testing.T) {
	out := Validate(ExtractedRecord{Title: "Valid Title", Year: "2023"})
	assert.True(t, out.Accepted)
	assert.Empty(t, out.RejectionReason)
	assert.Equal(t, []string{"authors"}, out.MissingRecommended)
}

func TestValidateMultipleMissingRequired(t *testing.T) {
	out := Validate(ExtractedRecord{})
	assert.False(t, out.Accepted)
	assert.Equal(t, []string{"title", "year"}, out.MissingRequired)
	assert.Equal(t, "Missing required fields: title, year", out.RejectionReason)
	assert.Equal(t, []string{"title", "year", "authors"}, out.MissingFields())
}

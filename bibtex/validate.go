package bibtex

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Year bounds accepted by validation.
const (
	MinYear = 1900
	MaxYear = 2030
)

// MinTitleLength is the shortest title considered meaningful.
const MinTitleLength = 3

// ValidationOutcome is the result of checking one extracted record against
// the required/recommended field policy.
type ValidationOutcome struct {
	Accepted           bool     `json:"accepted"`
	RejectionReason    string   `json:"rejection_reason,omitempty"`
	MissingRequired    []string `json:"missing_required"`
	MissingRecommended []string `json:"missing_recommended"`
}

// MissingFields returns the combined missing field names, required first,
// as reported to API clients.
func (v ValidationOutcome) MissingFields() []string {
	fields := make([]string, 0, len(v.MissingRequired)+len(v.MissingRecommended))
	fields = append(fields, v.MissingRequired...)
	fields = append(fields, v.MissingRecommended...)
	return fields
}

// Validate applies the field policy: title and year are required, authors
// are recommended. A record is accepted iff no required field is missing;
// missing recommended fields are surfaced as warnings only.
func Validate(rec ExtractedRecord) ValidationOutcome {
	var out ValidationOutcome

	title := strings.TrimSpace(rec.Title)
	switch {
	case title == "":
		out.MissingRequired = append(out.MissingRequired, "title")
	case utf8.RuneCountInString(title) < MinTitleLength:
		out.MissingRequired = append(out.MissingRequired, "title (too short)")
	}

	year := strings.TrimSpace(rec.Year)
	if year == "" {
		out.MissingRequired = append(out.MissingRequired, "year")
	} else if y, err := strconv.Atoi(year); err != nil {
		out.MissingRequired = append(out.MissingRequired, "year (invalid format)")
	} else if y < MinYear || y > MaxYear {
		out.MissingRequired = append(out.MissingRequired, "year (invalid range)")
	}

	if len(rec.Authors) == 0 {
		out.MissingRecommended = append(out.MissingRecommended, "authors")
	}

	out.Accepted = len(out.MissingRequired) == 0
	if !out.Accepted {
		out.RejectionReason = fmt.Sprintf("Missing required fields: %s",
			strings.Join(out.MissingRequired, ", "))
	}
	return out
}

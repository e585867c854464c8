package bibtex

import (
	"regexp"
	"strings"
)

// ExtractedRecord holds the recognized fields of one record. Absent fields
// are empty strings (or an empty slice for Authors), never missing.
type ExtractedRecord struct {
	EntryKey  string   `json:"entry_key"`
	Title     string   `json:"title"`
	Authors   []string `json:"authors"`
	Abstract  string   `json:"abstract"`
	URL       string   `json:"url"`
	Year      string   `json:"year"`
	Pages     string   `json:"pages"`
	Booktitle string   `json:"booktitle"`
	Journal   string   `json:"journal"`
	RawText   string   `json:"raw_text"`
}

// fieldPattern matches `<name> = {value}` or `<name> = "value"`,
// case-insensitive. Values may not themselves contain braces or quotes;
// nested delimiters are outside the supported subset.
func fieldPattern(name string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)` + name + `\s*=\s*[{"]([^"}]+)["}]`)
}

var (
	titlePattern     = fieldPattern("title")
	authorPattern    = fieldPattern("author")
	abstractPattern  = fieldPattern("abstract")
	urlPattern       = fieldPattern("url")
	pagesPattern     = fieldPattern("pages")
	booktitlePattern = fieldPattern("booktitle")
	journalPattern   = fieldPattern("journal")

	// year tolerates missing delimiters and surrounding punctuation; the
	// first 4-digit run wins.
	yearPattern     = regexp.MustCompile(`(?i)year\s*=\s*[{"]?([^,\n"}]*)`)
	yearDigits      = regexp.MustCompile(`\d{4}`)
	authorSeparator = regexp.MustCompile(`\s+and\s+`)
)

// Extract pulls the recognized fields out of one record block. For each
// field the first match wins; no match yields an empty value. Extraction is
// a pure function of the block and never fails.
func Extract(block RawRecordBlock) ExtractedRecord {
	rec := ExtractedRecord{
		EntryKey: block.Key,
		Authors:  []string{},
		RawText:  block.Raw(),
	}

	rec.Title = firstMatch(titlePattern, block.Body)
	rec.Abstract = firstMatch(abstractPattern, block.Body)
	rec.URL = firstMatch(urlPattern, block.Body)
	rec.Pages = firstMatch(pagesPattern, block.Body)
	rec.Booktitle = firstMatch(booktitlePattern, block.Body)
	rec.Journal = firstMatch(journalPattern, block.Body)

	if m := yearPattern.FindStringSubmatch(block.Body); m != nil {
		rec.Year = yearDigits.FindString(m[1])
	}

	// split the raw group before any trimming: a leading or trailing
	// separator needs its surrounding whitespace intact to match
	if m := authorPattern.FindStringSubmatch(block.Body); m != nil {
		for _, name := range authorSeparator.Split(m[1], -1) {
			name = strings.TrimSpace(name)
			if name != "" {
				rec.Authors = append(rec.Authors, name)
			}
		}
	}

	return rec
}

func firstMatch(p *regexp.Regexp, s string) string {
	if m := p.FindStringSubmatch(s); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}

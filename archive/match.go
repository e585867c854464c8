package archive

import (
	"regexp"
	"sort"
	"strings"

	"digital-library/bibtex"
)

var nonWordChars = regexp.MustCompile(`[^\w\s-]`)

// Match finds at most one PDF for a record. Strategies are tried in order,
// first hit wins:
//
//  1. entry-key exact match, with and without the .pdf extension
//  2. title-derived filename candidates, exact match
//  3. substring fallback over the index keys in sorted order
//
// Match is a pure function of (record, index) and returns nil when nothing
// matches.
func Match(rec bibtex.ExtractedRecord, idx Index) *PDFFile {
	if len(idx) == 0 {
		return nil
	}

	key := strings.ToLower(rec.EntryKey)
	if key != "" {
		if pdf, ok := idx[key+".pdf"]; ok {
			return &pdf
		}
		if pdf, ok := idx[key]; ok {
			return &pdf
		}
	}

	candidates := titleCandidates(rec.Title)
	for _, name := range candidates {
		if pdf, ok := idx[name]; ok {
			return &pdf
		}
	}

	// Fallback: substring match against every index key. Keys are visited
	// in sorted order so ties resolve deterministically.
	keys := make([]string, 0, len(idx))
	for k := range idx {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if key != "" && strings.Contains(k, key) {
			pdf := idx[k]
			return &pdf
		}
		for _, name := range candidates {
			if len(name) > 3 && strings.Contains(k, name) {
				pdf := idx[k]
				return &pdf
			}
		}
	}
	return nil
}

// titleCandidates derives plausible filenames from an article title: the
// cleaned title with spaces substituted by `_`, `-`, or removed, the first
// three words joined by `_` or `-`, and the first word alone.
func titleCandidates(title string) []string {
	title = strings.ToLower(title)
	clean := nonWordChars.ReplaceAllString(title, "")
	words := strings.Fields(clean)

	firstThree := words
	if len(firstThree) > 3 {
		firstThree = firstThree[:3]
	}

	candidates := []string{
		strings.ReplaceAll(clean, " ", "_"),
		strings.ReplaceAll(clean, " ", "-"),
		strings.ReplaceAll(clean, " ", ""),
		strings.Join(firstThree, "_"),
		strings.Join(firstThree, "-"),
	}
	if len(words) > 0 {
		candidates = append(candidates, words[0])
	} else {
		candidates = append(candidates, "")
	}

	out := candidates[:0]
	for _, c := range candidates {
		if c != "" {
			out = append(out, c)
		}
	}
	return out
}

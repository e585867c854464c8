// Package bibtex parses loosely-structured BibTeX-like text into value
// types. It recognizes only the field subset the library needs; it is not a
// general BibTeX grammar. All functions are pure and never fail on malformed
// input — absent or broken fields degrade to empty values.
package bibtex

import (
	"regexp"
	"strings"
)

// RawRecordBlock is the text span of one bibliographic entry.
type RawRecordBlock struct {
	// Index is the 1-based position of the record in the source text,
	// used in diagnostic messages.
	Index int

	// Type is the record-type keyword, e.g. "inproceedings".
	Type string

	// Key is the entry key following the opening brace, e.g. "sbes-paper1".
	Key string

	// Body is the record text from just after the opening brace up to the
	// start of the next record (or end of input).
	Body string
}

// Raw reconstructs the record source text, including the type prefix.
func (b RawRecordBlock) Raw() string {
	return "@" + b.Type + "{" + b.Body
}

var (
	recordStart = regexp.MustCompile(`@(\w+)\s*\{`)
	entryKey    = regexp.MustCompile(`^\s*([^,\s}]+)`)
)

// Split partitions a text blob into one RawRecordBlock per entry. A record
// starts at each `@<word>{` occurrence and runs to the next occurrence or
// end of input. Text before the first occurrence has no record-type context
// and is discarded. Empty input yields an empty slice.
func Split(raw string) []RawRecordBlock {
	starts := recordStart.FindAllStringSubmatchIndex(raw, -1)
	blocks := make([]RawRecordBlock, 0, len(starts))

	for i, loc := range starts {
		end := len(raw)
		if i+1 < len(starts) {
			end = starts[i+1][0]
		}
		body := raw[loc[1]:end]

		key := ""
		if m := entryKey.FindStringSubmatch(body); m != nil {
			key = strings.TrimSpace(m[1])
		}

		blocks = append(blocks, RawRecordBlock{
			Index: i + 1,
			Type:  raw[loc[2]:loc[3]],
			Key:   key,
			Body:  body,
		})
	}
	return blocks
}

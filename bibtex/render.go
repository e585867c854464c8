package bibtex

import (
	"fmt"
	"strings"
)

// Field is one name/value pair of a rendered entry.
type Field struct {
	Name  string
	Value string
}

// Entry is a record to be rendered as BibTeX text. Empty field values are
// omitted from the output.
type Entry struct {
	Type   string
	Key    string
	Fields []Field
}

// String renders the entry in brace-delimited form.
func (e Entry) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "@%s{%s,\n", e.Type, e.Key)
	for _, f := range e.Fields {
		if f.Value == "" {
			continue
		}
		fmt.Fprintf(&b, "  %s = {%s},\n", f.Name, sanitizeValue(f.Value))
	}
	b.WriteString("}\n")
	return b.String()
}

// Render joins entries into one importable text blob.
func Render(entries []Entry) string {
	parts := make([]string, 0, len(entries))
	for _, e := range entries {
		parts = append(parts, e.String())
	}
	return strings.Join(parts, "\n")
}

// sanitizeValue strips the delimiter characters the parser cannot
// represent inside a value.
func sanitizeValue(s string) string {
	s = strings.ReplaceAll(s, "{", "(")
	s = strings.ReplaceAll(s, "}", ")")
	s = strings.ReplaceAll(s, `"`, "'")
	return s
}

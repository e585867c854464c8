// Package archive unpacks an uploaded PDF bundle into a filename index and
// matches bibliographic records against it. Matching is filename-based
// only; PDF contents are never inspected.
package archive

import (
	"archive/zip"
	"bytes"
	"io"
	"path"
	"strings"
)

// PDFFile is one candidate attachment pulled out of the bundle.
type PDFFile struct {
	Name    string
	Content []byte
}

// Index maps normalized filenames to PDF files. Every PDF is stored under
// its lowercased basename both with and without the extension, so lookups
// succeed either way.
type Index map[string]PDFFile

// BuildIndex reads a zip archive and indexes every entry whose name ends in
// .pdf (case-insensitive). An unreadable archive or one without PDFs yields
// an empty index rather than an error; key collisions are resolved last
// entry wins.
func BuildIndex(data []byte) Index {
	idx := make(Index)
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return idx
	}

	for _, f := range zr.File {
		if !strings.HasSuffix(strings.ToLower(f.Name), ".pdf") {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			continue
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			continue
		}

		name := path.Base(f.Name)
		pdf := PDFFile{Name: name, Content: content}

		lower := strings.ToLower(name)
		idx[lower] = pdf
		idx[strings.TrimSuffix(lower, path.Ext(lower))] = pdf
	}
	return idx
}

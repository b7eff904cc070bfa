// Package source loads documents for evaluation. Files are only ever
// opened read-only; discovering which files to load is the caller's job.
package source

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

var (
	ErrTooLarge = errors.New("file exceeds size limit")
	ErrBinary   = errors.New("binary file")
)

// sniffLen is how much of a file is inspected for NUL bytes.
const sniffLen = 8000

type Document struct {
	Path     string
	Language string
	Content  string

	lineStarts []int // byte offset of each line's first byte
}

// New builds a Document from in-memory content.
func New(path, content string) *Document {
	d := &Document{
		Path:     path,
		Language: DetectLanguage(path),
		Content:  content,
	}
	d.index()
	return d
}

// Load reads path. maxBytes <= 0 disables the size check.
func Load(path string, maxBytes int64) (*Document, error) {
	st, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if st.IsDir() {
		return nil, fmt.Errorf("%s: is a directory", path)
	}
	if maxBytes > 0 && st.Size() > maxBytes {
		return nil, fmt.Errorf("%s (%d bytes): %w", path, st.Size(), ErrTooLarge)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	sniff := b
	if len(sniff) > sniffLen {
		sniff = sniff[:sniffLen]
	}
	if bytes.IndexByte(sniff, 0) >= 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrBinary)
	}
	return New(path, string(b)), nil
}

func (d *Document) index() {
	d.lineStarts = []int{0}
	for i := 0; i < len(d.Content); i++ {
		if d.Content[i] == '\n' && i+1 < len(d.Content) {
			d.lineStarts = append(d.lineStarts, i+1)
		}
	}
}

// LineCount is the number of lines; a trailing newline does not start a new one.
func (d *Document) LineCount() int {
	if d.Content == "" {
		return 0
	}
	return len(d.lineStarts)
}

// LineAt maps a byte offset to its 1-based line number.
func (d *Document) LineAt(offset int) int {
	if offset < 0 {
		offset = 0
	}
	i := sort.Search(len(d.lineStarts), func(i int) bool { return d.lineStarts[i] > offset })
	return i
}

// Line returns the text of 1-based line n without its newline.
func (d *Document) Line(n int) string {
	if n < 1 || n > len(d.lineStarts) || d.Content == "" {
		return ""
	}
	start := d.lineStarts[n-1]
	end := len(d.Content)
	if n < len(d.lineStarts) {
		end = d.lineStarts[n]
	}
	return strings.TrimRight(d.Content[start:end], "\r\n")
}

// Lines returns lines from..to inclusive joined by newlines.
func (d *Document) Lines(from, to int) string {
	if from < 1 {
		from = 1
	}
	if to > d.LineCount() {
		to = d.LineCount()
	}
	var out []string
	for n := from; n <= to; n++ {
		out = append(out, d.Line(n))
	}
	return strings.Join(out, "\n")
}

// Base is the lower-cased file name, used for manifest matching.
func (d *Document) Base() string { return strings.ToLower(filepath.Base(d.Path)) }

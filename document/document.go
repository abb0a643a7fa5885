// Package document edits the plain-text announcement documents kept in the
// file store.
package document

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"regexp"
	"strings"
)

// ErrNotFound is returned when the document file does not exist.
var ErrNotFound = errors.New("document: not found")

// Document is an open text document. Edits stay in memory until SaveAndClose.
type Document struct {
	path  string
	body  string
	dirty bool
}

// Open reads the document at path.
func Open(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("open document %s: %w", path, err)
	}
	return &Document{path: path, body: string(data)}, nil
}

// Body returns the current text.
func (d *Document) Body() string { return d.body }

// ReplaceText replaces every match of the regular expression pattern with
// repl, taken literally, and returns the number of matches.
func (d *Document) ReplaceText(pattern, repl string) (int, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return 0, fmt.Errorf("replace %q: %w", pattern, err)
	}
	n := len(re.FindAllStringIndex(d.body, -1))
	if n == 0 {
		return 0, nil
	}
	d.body = re.ReplaceAllLiteralString(d.body, repl)
	d.dirty = true
	return n, nil
}

// SaveAndClose writes the text back when it changed. The document must not be
// used afterwards.
func (d *Document) SaveAndClose() error {
	if !d.dirty {
		return nil
	}
	if err := os.WriteFile(d.path, []byte(d.body), 0o644); err != nil {
		return fmt.Errorf("save document %s: %w", d.path, err)
	}
	d.dirty = false
	return nil
}

// Replacer accumulates token→value pairs and applies all of them in a single
// pass, so a value that contains another token is never expanded again.
//
// Usage:
//
//	n, err := document.NewReplacer().
//		Add("[monthlysheet]", url).
//		Apply(doc)
type Replacer struct {
	pairs []replacePair
}

type replacePair struct{ token, val string }

// NewReplacer creates an empty Replacer.
func NewReplacer() *Replacer {
	return &Replacer{}
}

// Add appends a token→val pair. Returns r so calls can be chained.
func (r *Replacer) Add(token, val string) *Replacer {
	r.pairs = append(r.pairs, replacePair{token, val})
	return r
}

// Apply replaces every token in the document body and returns how many
// occurrences were replaced.
func (r *Replacer) Apply(d *Document) (int, error) {
	if len(r.pairs) == 0 {
		return 0, nil
	}
	quoted := make([]string, len(r.pairs))
	values := make(map[string]string, len(r.pairs))
	for i, p := range r.pairs {
		quoted[i] = regexp.QuoteMeta(p.token)
		values[p.token] = p.val
	}
	re, err := regexp.Compile(strings.Join(quoted, "|"))
	if err != nil {
		return 0, fmt.Errorf("replacer: %w", err)
	}

	n := 0
	replaced := re.ReplaceAllStringFunc(d.body, func(tok string) string {
		n++
		return values[tok]
	})
	if n > 0 {
		d.body = replaced
		d.dirty = true
	}
	return n, nil
}

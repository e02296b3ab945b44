// Package pkgbuild parses, validates and rewrites PKGBUILD descriptor files.
package pkgbuild

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	// ErrParse is returned when the descriptor text cannot be parsed
	ErrParse = errors.New("failed to parse PKGBUILD")
)

// scalarRegex matches simple variable assignments: name=value
var scalarRegex = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_]*)=(.*)$`)

// arrayStartRegex matches the opening of an array assignment: name=(...
var arrayStartRegex = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_]*)=\((.*)$`)

// funcRegex matches a shell function definition: name() {
var funcRegex = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_]*)\s*\(\)\s*\{`)

// Descriptor is a parsed PKGBUILD. It keeps the raw line sequence alongside
// the extracted fields so consumers can rewrite the text without disturbing
// anything that was not a recognized field.
type Descriptor struct {
	// Lines is the raw text split on newlines, preserved byte-for-byte
	Lines []string

	scalars  map[string]string
	arrays   map[string][]string
	computed map[string]bool
}

// Parse scans PKGBUILD text and extracts scalar fields, array fields and
// computed (function) fields. Absent fields are simply not set; only a
// structurally broken descriptor (unterminated array) is an error.
func Parse(text string) (*Descriptor, error) {
	d := &Descriptor{
		Lines:    strings.Split(text, "\n"),
		scalars:  make(map[string]string),
		arrays:   make(map[string][]string),
		computed: make(map[string]bool),
	}

	inFunc := false
	for i := 0; i < len(d.Lines); i++ {
		line := d.Lines[i]

		// Track function bodies so assignments inside them are not
		// mistaken for top-level fields.
		if inFunc {
			if strings.HasPrefix(line, "}") {
				inFunc = false
			}
			continue
		}

		if m := funcRegex.FindStringSubmatch(line); m != nil {
			d.computed[m[1]] = true
			// Single-line body: name() { ...; }
			if !strings.Contains(line, "}") {
				inFunc = true
			}
			continue
		}

		if m := arrayStartRegex.FindStringSubmatch(line); m != nil {
			name := m[1]
			items, consumed, err := parseArray(d.Lines, i, m[2])
			if err != nil {
				return nil, err
			}
			// First assignment wins, matching rewrite semantics
			if _, seen := d.arrays[name]; !seen {
				d.arrays[name] = items
			}
			i += consumed
			continue
		}

		if m := scalarRegex.FindStringSubmatch(line); m != nil {
			name := m[1]
			if _, seen := d.scalars[name]; !seen {
				d.scalars[name] = unquote(strings.TrimSpace(m[2]))
			}
			continue
		}
	}

	return d, nil
}

// parseArray collects items of an array field starting at line idx. The
// opening line contributes rest (text after the paren). Returns the items and
// how many extra lines were consumed.
func parseArray(lines []string, idx int, rest string) ([]string, int, error) {
	var items []string
	consumed := 0
	chunk := rest

	for {
		body, closed := splitArrayChunk(chunk)
		items = append(items, splitItems(body)...)
		if closed {
			return items, consumed, nil
		}
		next := idx + consumed + 1
		if next >= len(lines) {
			return nil, 0, fmt.Errorf("%w: unterminated array starting at line %d", ErrParse, idx+1)
		}
		consumed++
		chunk = lines[next]
	}
}

// splitArrayChunk returns the portion of a chunk that belongs to the array
// body and whether the closing paren was found in it.
func splitArrayChunk(chunk string) (body string, closed bool) {
	if i := strings.Index(chunk, ")"); i >= 0 {
		return chunk[:i], true
	}
	// Strip trailing comments on continuation lines
	if i := strings.Index(chunk, "#"); i >= 0 {
		chunk = chunk[:i]
	}
	return chunk, false
}

// splitItems splits array body text into items, stripping quotes
func splitItems(body string) []string {
	fields := strings.Fields(body)
	items := make([]string, 0, len(fields))
	for _, f := range fields {
		items = append(items, unquote(f))
	}
	return items
}

// unquote strips one level of matching single or double quotes
func unquote(s string) string {
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}

// Has reports whether a field is set, in either scalar, array or computed form
func (d *Descriptor) Has(name string) bool {
	if _, ok := d.scalars[name]; ok {
		return true
	}
	if _, ok := d.arrays[name]; ok {
		return true
	}
	return d.computed[name]
}

// Scalar returns the value of a scalar field, or "" if not set
func (d *Descriptor) Scalar(name string) string {
	return d.scalars[name]
}

// HasScalar reports whether a scalar field is set
func (d *Descriptor) HasScalar(name string) bool {
	_, ok := d.scalars[name]
	return ok
}

// Array returns the ordered items of an array field, or nil if not set
func (d *Descriptor) Array(name string) []string {
	return d.arrays[name]
}

// IsComputed reports whether the field is defined as a shell function
func (d *Descriptor) IsComputed(name string) bool {
	return d.computed[name]
}

// Name returns the canonical package name: pkgbase if set, else pkgname
func (d *Descriptor) Name() string {
	if v := d.Scalar("pkgbase"); v != "" {
		return v
	}
	return d.Scalar("pkgname")
}

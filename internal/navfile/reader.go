// Package navfile reads and writes navigation files in the autodoc text
// format: a header line "AdocVersion = <v>", then sections introduced by
// "[Item = <label>]" holding "key = value ..." lines.
package navfile

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

var (
	// ErrNotAutodoc is returned when the first non-blank line is not an AdocVersion line.
	ErrNotAutodoc = errors.New("not an autodoc file: could not find AdocVersion")

	// ErrLabelNotFound is returned when no section carries the requested label.
	ErrLabelNotFound = errors.New("label not found")
)

const (
	versionKey = "AdocVersion"
	itemKind   = "Item"
)

// Section is one bracketed block of a navigation file.
type Section struct {
	Kind   string              // Bracket name, "Item" for navigator items
	Label  string              // Value after the "=" in the bracket line
	Fields map[string][]string // Key -> whitespace-separated value tokens
	Keys   []string            // Keys in file order
}

// File is a parsed navigation file.
type File struct {
	Version  string
	Header   map[string][]string // Key lines before the first section
	Sections []Section
}

// Load reads and parses the navigation file at path.
func Load(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open nav file: %w", err)
	}
	defer f.Close()

	nf, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return nf, nil
}

// Parse reads a navigation file. Leading and trailing whitespace on each line
// is ignored, as are blank lines and "#" comments.
func Parse(r io.Reader) (*File, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 4*1024*1024)

	nf := &File{Header: make(map[string][]string)}
	var cur *Section
	sawVersion := false
	lineNo := 0

	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if !sawVersion {
			key, value, ok := splitKeyValue(line)
			if !ok || key != versionKey {
				return nil, ErrNotAutodoc
			}
			nf.Version = strings.TrimSpace(value)
			sawVersion = true
			continue
		}

		if strings.HasPrefix(line, "[") {
			kind, label, err := parseBracket(line)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			nf.Sections = append(nf.Sections, Section{
				Kind:   kind,
				Label:  label,
				Fields: make(map[string][]string),
			})
			cur = &nf.Sections[len(nf.Sections)-1]
			continue
		}

		key, value, ok := splitKeyValue(line)
		if !ok {
			return nil, fmt.Errorf("line %d: expected \"key = value\", got %q", lineNo, line)
		}
		if cur == nil {
			nf.Header[key] = strings.Fields(value)
			continue
		}
		if _, dup := cur.Fields[key]; !dup {
			cur.Keys = append(cur.Keys, key)
		}
		cur.Fields[key] = strings.Fields(value)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read nav file: %w", err)
	}
	if !sawVersion {
		return nil, ErrNotAutodoc
	}
	return nf, nil
}

// IsValid reports whether r starts with an AdocVersion line.
func IsValid(r io.Reader) bool {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		return fields[0] == versionKey
	}
	return false
}

// Item returns the navigator item with the given label.
func (f *File) Item(label string) (Section, error) {
	for _, s := range f.Sections {
		if s.Kind == itemKind && s.Label == label {
			return s, nil
		}
	}
	return Section{}, fmt.Errorf("%w: %q", ErrLabelNotFound, label)
}

// HasItem reports whether an item with the given label exists.
func (f *File) HasItem(label string) bool {
	_, err := f.Item(label)
	return err == nil
}

// Labels returns the item labels in file order.
func (f *File) Labels() []string {
	var labels []string
	for _, s := range f.Sections {
		if s.Kind == itemKind {
			labels = append(labels, s.Label)
		}
	}
	return labels
}

func parseBracket(line string) (kind, label string, err error) {
	if !strings.HasSuffix(line, "]") {
		return "", "", fmt.Errorf("unterminated section header %q", line)
	}
	inner := strings.TrimSpace(line[1 : len(line)-1])
	key, value, ok := splitKeyValue(inner)
	if !ok {
		return "", "", fmt.Errorf("malformed section header %q", line)
	}
	return key, strings.TrimSpace(value), nil
}

func splitKeyValue(line string) (key, value string, ok bool) {
	k, v, found := strings.Cut(line, "=")
	if !found {
		return "", "", false
	}
	k = strings.TrimSpace(k)
	if k == "" || strings.ContainsAny(k, " \t") {
		return "", "", false
	}
	return k, v, true
}

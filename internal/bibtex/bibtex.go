// Package bibtex reads and writes brace-delimited bibliography records.
//
// DBLP exports are predictable: one record per blank-line-separated block,
// an @type{key, opening line, and "name = {value}," field lines whose
// values may span several lines. Records are parsed into an ordered field
// list so fields can be added or replaced programmatically and written
// back without positional text patching.
package bibtex

import (
	"fmt"
	"regexp"
	"strings"
)

// Field is a single name/value pair within an entry. Values are stored
// verbatim, including any continuation-line whitespace between the braces.
type Field struct {
	Name  string
	Value string
}

// Entry is one bibliography record: an entry type, a citation key, and
// fields in file order. Serialization preserves field order, so the order
// of Fields is part of the output contract.
type Entry struct {
	Type   string // e.g. "inproceedings", "article"
	Key    string // full citation key, e.g. "DBLP:conf/its/MartinezSMLA00"
	Fields []Field
}

var entryStartRe = regexp.MustCompile(`^@(\w+)\{([^,\s]+),`)

// Get returns the value of the first field with the given name.
func (e *Entry) Get(name string) (string, bool) {
	for _, f := range e.Fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return "", false
}

// Has reports whether a field with the given name exists.
func (e *Entry) Has(name string) bool {
	_, ok := e.Get(name)
	return ok
}

// Set replaces the value of the first field with the given name, or
// appends a new field if none exists.
func (e *Entry) Set(name, value string) {
	for i, f := range e.Fields {
		if f.Name == name {
			e.Fields[i].Value = value
			return
		}
	}
	e.Fields = append(e.Fields, Field{Name: name, Value: value})
}

// InsertBefore inserts a new field immediately before the first field
// named anchor. If anchor is absent the field is appended. Returns true
// if the anchor was found.
func (e *Entry) InsertBefore(anchor, name, value string) bool {
	for i, f := range e.Fields {
		if f.Name == anchor {
			e.Fields = append(e.Fields, Field{})
			copy(e.Fields[i+1:], e.Fields[i:])
			e.Fields[i] = Field{Name: name, Value: value}
			return true
		}
	}
	e.Fields = append(e.Fields, Field{Name: name, Value: value})
	return false
}

// Parse parses a single record block. The block must start with
// @type{key, and contain zero or more fields. A missing or malformed
// opening line is an error; so is an unterminated field value.
func Parse(block string) (*Entry, error) {
	block = strings.TrimSpace(block)
	m := entryStartRe.FindStringSubmatch(block)
	if m == nil {
		return nil, fmt.Errorf("no @type{key, opening in record %q", head(block))
	}
	e := &Entry{Type: m[1], Key: m[2]}

	rest := block[len(m[0]):]
	for {
		rest = strings.TrimLeft(rest, " \t\r\n")
		if rest == "" {
			return nil, fmt.Errorf("record %s: missing closing brace", e.Key)
		}
		if rest[0] == '}' {
			return e, nil
		}

		eq := strings.IndexByte(rest, '=')
		if eq < 0 {
			return nil, fmt.Errorf("record %s: field without '='", e.Key)
		}
		name := strings.TrimSpace(rest[:eq])
		if name == "" || strings.ContainsAny(name, "{}\n") {
			return nil, fmt.Errorf("record %s: malformed field name %q", e.Key, head(name))
		}
		rest = strings.TrimLeft(rest[eq+1:], " \t")

		var value string
		if strings.HasPrefix(rest, "{") {
			end, err := matchBrace(rest)
			if err != nil {
				return nil, fmt.Errorf("record %s, field %s: %w", e.Key, name, err)
			}
			value = rest[1:end]
			rest = rest[end+1:]
		} else {
			// Bare value (e.g. "year = 2000"): runs to the comma or
			// end of line. Re-serialized with braces.
			end := strings.IndexAny(rest, ",\n")
			if end < 0 {
				end = len(rest)
			}
			value = strings.TrimSpace(rest[:end])
			rest = rest[end:]
		}
		e.Fields = append(e.Fields, Field{Name: name, Value: value})

		rest = strings.TrimLeft(rest, " \t\r")
		rest = strings.TrimPrefix(rest, ",")
	}
}

// matchBrace returns the index of the brace closing the one at s[0].
func matchBrace(s string) (int, error) {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i, nil
			}
		}
	}
	return 0, fmt.Errorf("unbalanced braces")
}

// String serializes the entry in DBLP's layout: two-space indent, field
// names padded to twelve columns, every field brace-delimited, a comma
// after each field except the last.
func (e *Entry) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "@%s{%s,\n", e.Type, e.Key)
	for i, f := range e.Fields {
		fmt.Fprintf(&b, "  %-12s = {%s}", f.Name, f.Value)
		if i < len(e.Fields)-1 {
			b.WriteString(",")
		}
		b.WriteString("\n")
	}
	b.WriteString("}\n")
	return b.String()
}

// SplitBlocks splits raw bibliography text into record blocks on runs of
// blank lines. Blocks are trimmed; empty blocks are dropped.
func SplitBlocks(text string) []string {
	var blocks []string
	for _, raw := range blankRunRe.Split(text, -1) {
		if b := strings.TrimSpace(raw); b != "" {
			blocks = append(blocks, b)
		}
	}
	return blocks
}

var blankRunRe = regexp.MustCompile(`\n([ \t\r]*\n)+`)

// head truncates a string for inclusion in error messages.
func head(s string) string {
	if len(s) > 40 {
		return s[:40] + "..."
	}
	return s
}

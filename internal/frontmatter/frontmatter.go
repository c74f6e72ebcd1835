// Package frontmatter splits batch markdown files into their frontmatter
// header and body, and renders them back.
//
// The accepted header grammar is deliberately lenient, because batch files
// are edited by hand:
//
//	---
//	title: "Solar powered irrigation"
//	description: 'Solar powered irrigation'
//	code_link: https://github.com/example/solar
//	---
//
// Each header line is split at its first colon; name and value are trimmed
// and one pair of wrapping double or single quotes is removed. Lines without
// a colon are dropped. A file that does not start with a well-formed header
// block is all body.
//
// Rendering is a normalization: every value is written double-quoted with
// inner double quotes backslash-escaped, in header order.
package frontmatter

import (
	"strings"
)

// Delimiter is the marker line that opens and closes the header block.
const Delimiter = "---"

// Field is one header entry.
type Field struct {
	Name  string
	Value string
}

// Header is an ordered set of fields. Fields keep the position of their
// first appearance; the zero value is an empty header.
type Header struct {
	fields []Field
}

// NewHeader builds a header from fields in order. Later duplicates overwrite
// the value of the first occurrence.
func NewHeader(fields ...Field) Header {
	var h Header
	for _, f := range fields {
		h.Set(f.Name, f.Value)
	}

	return h
}

// Get returns the value for name.
// Returns ("", false) if the field is not present.
func (h Header) Get(name string) (string, bool) {
	if i := h.index(name); i >= 0 {
		return h.fields[i].Value, true
	}

	return "", false
}

// Set updates the field in place when present and appends it otherwise.
func (h *Header) Set(name, value string) {
	if i := h.index(name); i >= 0 {
		h.fields[i].Value = value

		return
	}

	h.fields = append(h.fields, Field{Name: name, Value: value})
}

// Fields returns a copy of the fields in header order.
func (h Header) Fields() []Field {
	return append([]Field(nil), h.fields...)
}

// Len returns the number of fields.
func (h Header) Len() int {
	return len(h.fields)
}

func (h Header) index(name string) int {
	for i, f := range h.fields {
		if f.Name == name {
			return i
		}
	}

	return -1
}

// Parse splits text into header and body.
//
// The header block must start on the first line: a delimiter line, the
// header lines, then a closing delimiter line. Delimiter lines may carry
// trailing spaces, tabs or a carriage return. Everything after the closing
// delimiter's newline is returned as body, byte for byte.
//
// When text has no well-formed header block, Parse returns an empty header
// and text unchanged as body.
func Parse(text string) (Header, string) {
	content, body, ok := split(text)
	if !ok {
		return Header{}, text
	}

	var h Header

	for line := range strings.SplitSeq(content, "\n") {
		name, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}

		h.Set(strings.TrimSpace(name), unquote(strings.TrimSpace(value)))
	}

	return h, body
}

// Render writes the header block followed by body verbatim.
func Render(h Header, body string) string {
	var b strings.Builder

	b.WriteString(Delimiter)
	b.WriteByte('\n')

	if len(h.fields) == 0 {
		b.WriteByte('\n')
	}

	for _, f := range h.fields {
		b.WriteString(f.Name)
		b.WriteString(`: "`)
		b.WriteString(strings.ReplaceAll(f.Value, `"`, `\"`))
		b.WriteString("\"\n")
	}

	b.WriteString(Delimiter)
	b.WriteByte('\n')
	b.WriteString(body)

	return b.String()
}

// split locates the header block. content excludes both delimiter lines.
func split(text string) (string, string, bool) {
	rest, ok := cutDelimiterLine(text)
	if !ok {
		return "", "", false
	}

	// The closing delimiter is the first "\n---" that forms a whole line.
	for from := 0; ; {
		idx := strings.Index(rest[from:], "\n"+Delimiter)
		if idx < 0 {
			return "", "", false
		}

		pos := from + idx

		if body, closed := cutDelimiterLine(rest[pos+1:]); closed {
			return rest[:pos], body, true
		}

		from = pos + 1
	}
}

// cutDelimiterLine strips a leading delimiter line from s.
func cutDelimiterLine(s string) (string, bool) {
	after, ok := strings.CutPrefix(s, Delimiter)
	if !ok {
		return "", false
	}

	return strings.CutPrefix(strings.TrimLeft(after, " \t\r"), "\n")
}

// unquote removes one pair of matching wrapping quotes. Double-quoted values
// also have the \" escape written by [Render] decoded.
func unquote(value string) string {
	if len(value) < 2 {
		return value
	}

	first, last := value[0], value[len(value)-1]

	switch {
	case first == '"' && last == '"':
		return strings.ReplaceAll(value[1:len(value)-1], `\"`, `"`)
	case first == '\'' && last == '\'':
		return value[1 : len(value)-1]
	default:
		return value
	}
}

// Package document merges spreadsheet values into an existing batch file:
// frontmatter field updates plus the "Project Abstract" body section.
//
// Everything else in the file is left alone. Header fields not named by an
// update keep their value and position, and body text outside the abstract
// section is preserved byte for byte.
package document

import (
	"strings"

	"github.com/calvinalkan/batchsync/internal/frontmatter"
)

// AbstractHeading is the heading line that opens the abstract section.
const AbstractHeading = "### Project Abstract"

// FieldUpdate sets one header field. An empty Value clears the field but
// keeps the key; a field with no update in the set is left untouched.
type FieldUpdate struct {
	Name  string
	Value string
}

// ApplyFieldUpdates sets every update on h, in order. Existing fields change
// in place, new fields are appended.
func ApplyFieldUpdates(h *frontmatter.Header, updates []FieldUpdate) {
	for _, u := range updates {
		h.Set(u.Name, u.Value)
	}
}

// ApplyAbstract replaces the content of the abstract section in body with
// text, or prepends a new section when body has none. Empty text returns
// body unchanged.
//
// The section is the first line starting with [AbstractHeading], followed by
// whitespace ending in a blank line. Its content runs up to the next heading
// line (any ATX level) or horizontal rule, or the end of body. The heading is
// normalized to "### Project Abstract\n\n" and the new content is separated
// from whatever follows by one blank line.
//
// Body text that follows the section without a heading or rule of its own
// belongs to the section and is replaced with it. A freshly inserted section
// therefore absorbs such text on the next call.
func ApplyAbstract(body, text string) string {
	if text == "" {
		return body
	}

	start, contentStart, end, found := findAbstract(body)
	if !found {
		return AbstractHeading + "\n\n" + text + "\n\n" + body
	}

	// An empty section ends right at the next heading, which needs its own
	// blank line; otherwise body[end:] already starts with the newline.
	if end == contentStart && end < len(body) {
		return body[:start] + AbstractHeading + "\n\n" + text + "\n\n" + body[end:]
	}

	return body[:start] + AbstractHeading + "\n\n" + text + "\n" + body[end:]
}

// Merge applies updates and the abstract to a batch file's text.
// The bool reports whether the result differs from text.
func Merge(text string, updates []FieldUpdate, abstract string) (string, bool) {
	h, body := frontmatter.Parse(text)

	ApplyFieldUpdates(&h, updates)
	body = ApplyAbstract(body, abstract)

	out := frontmatter.Render(h, body)

	return out, out != text
}

// findAbstract returns where the heading line starts, where its content
// starts and where the content ends.
func findAbstract(body string) (int, int, int, bool) {
	for lineStart := 0; lineStart < len(body); {
		if strings.HasPrefix(body[lineStart:], AbstractHeading) {
			if contentStart, ok := skipHeadingGap(body, lineStart+len(AbstractHeading)); ok {
				return lineStart, contentStart, sectionEnd(body, contentStart), true
			}
		}

		nl := strings.IndexByte(body[lineStart:], '\n')
		if nl < 0 {
			break
		}

		lineStart += nl + 1
	}

	return 0, 0, 0, false
}

// skipHeadingGap consumes the whitespace after the heading text. The run must
// contain a blank line; content starts after the last one in the run.
func skipHeadingGap(body string, from int) (int, bool) {
	end := from
	for end < len(body) && isSpace(body[end]) {
		end++
	}

	gap := strings.LastIndex(body[from:end], "\n\n")
	if gap < 0 {
		return 0, false
	}

	return from + gap + 2, true
}

// sectionEnd finds where the next heading or rule line begins, excluding the
// newline before it. from is always a line start.
func sectionEnd(body string, from int) int {
	if stopsSection(body[from:]) {
		return from
	}

	for i := from; i < len(body); i++ {
		if body[i] == '\n' && stopsSection(body[i+1:]) {
			return i
		}
	}

	return len(body)
}

// stopsSection reports whether the line at the start of s is an ATX heading
// ("#" to "######" followed by a space, tab or line end) or a horizontal rule
// (three or more "-", "*" or "_", optionally spaced). Up to three spaces of
// indentation are allowed.
func stopsSection(s string) bool {
	line, _, _ := strings.Cut(s, "\n")
	line = strings.TrimRight(line, " \t\r")

	for i := 0; i < 3 && strings.HasPrefix(line, " "); i++ {
		line = line[1:]
	}

	return isATXHeading(line) || isRule(line)
}

func isATXHeading(line string) bool {
	level := 0
	for level < len(line) && line[level] == '#' {
		level++
	}

	if level == 0 || level > 6 {
		return false
	}

	return level == len(line) || line[level] == ' ' || line[level] == '\t'
}

func isRule(line string) bool {
	if line == "" {
		return false
	}

	mark := line[0]
	if mark != '-' && mark != '*' && mark != '_' {
		return false
	}

	count := 0

	for i := 0; i < len(line); i++ {
		switch line[i] {
		case mark:
			count++
		case ' ', '\t':
		default:
			return false
		}
	}

	return count >= 3
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	default:
		return false
	}
}

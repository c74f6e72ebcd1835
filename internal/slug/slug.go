// Package slug derives the canonical batch file name from the free-text
// batch designator entered in the submission form.
package slug

import (
	"regexp"
	"strings"
)

// Prefix is prepended to every canonical batch slug.
const Prefix = "batch-"

var batchPattern = regexp.MustCompile(`(?i)batch\s*(\d+)`)

// FromBatch maps text such as "Batch 9" or "batch09" to "batch-09".
//
// The first integer following the case-insensitive token "batch" is used.
// Numbers are padded to two digits; wider numbers keep every digit.
// Returns ("", false) when the text carries no batch number.
func FromBatch(text string) (string, bool) {
	match := batchPattern.FindStringSubmatch(text)
	if match == nil {
		return "", false
	}

	digits := strings.TrimLeft(match[1], "0")

	switch len(digits) {
	case 0:
		digits = "00"
	case 1:
		digits = "0" + digits
	}

	return Prefix + digits, true
}

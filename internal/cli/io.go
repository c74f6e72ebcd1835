package cli

import (
	"fmt"
	"io"
)

// IO handles command output with warning visibility.
type IO struct {
	out      io.Writer
	errOut   io.Writer
	warnings []string
}

// NewIO creates a new IO instance.
func NewIO(out, errOut io.Writer) *IO {
	return &IO{out: out, errOut: errOut}
}

// Warn reports an actionable warning.
//
// Parameters:
//   - issue: what went wrong
//   - action: what the user should do about it
//
// The warning is printed to stderr immediately, next to the progress line it
// belongs to, and again in the summary printed by [IO.Finish], so it stays
// visible when long output is truncated or piped through head/tail.
// Warnings don't change the exit code.
func (o *IO) Warn(issue string, action string) {
	w := fmt.Sprintf("%s: %s", issue, action)
	o.warnings = append(o.warnings, w)
	_, _ = fmt.Fprintln(o.errOut, "warning:", w)
}

// Println writes to stdout.
func (o *IO) Println(a ...any) {
	_, _ = fmt.Fprintln(o.out, a...)
}

// Printf writes formatted output to stdout.
func (o *IO) Printf(format string, a ...any) {
	_, _ = fmt.Fprintf(o.out, format, a...)
}

// ErrPrintln writes to stderr.
func (o *IO) ErrPrintln(a ...any) {
	_, _ = fmt.Fprintln(o.errOut, a...)
}

// Warnings returns the warnings reported so far.
func (o *IO) Warnings() []string {
	return append([]string(nil), o.warnings...)
}

// Finish repeats collected warnings on stderr and returns exit code 0.
func (o *IO) Finish() int {
	if len(o.warnings) == 0 {
		return 0
	}

	_, _ = fmt.Fprintf(o.errOut, "\n%d warning(s):\n", len(o.warnings))

	for _, w := range o.warnings {
		_, _ = fmt.Fprintln(o.errOut, "warning:", w)
	}

	return 0
}

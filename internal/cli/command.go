package cli

import (
	"context"
	"errors"
	"strings"

	flag "github.com/spf13/pflag"
)

// Command defines the CLI command with unified help generation.
type Command struct {
	// Flags defines the command flags.
	Flags *flag.FlagSet

	// Usage is the freeform usage string shown after "batchsync" in help.
	Usage string

	// Short is a one-line description.
	Short string

	// Long is the full description shown in help.
	// If empty, Short is used instead.
	Long string

	// Exec runs the command after flags are parsed.
	Exec func(ctx context.Context, o *IO, args []string) error
}

// PrintHelp prints the full help output for "batchsync --help".
func (c *Command) PrintHelp(o *IO) {
	o.Println("Usage: batchsync", c.Usage)
	o.Println()

	desc := c.Long
	if desc == "" {
		desc = c.Short
	}

	o.Println(desc)

	if c.Flags != nil && c.Flags.HasFlags() {
		o.Println()
		o.Println("Flags:")

		var buf strings.Builder
		c.Flags.SetOutput(&buf)
		c.Flags.PrintDefaults()
		o.Printf("%s", buf.String())
	}
}

// Run parses flags and executes the command. Returns exit code.
// Handles error printing internally for consistent output ordering.
func (c *Command) Run(ctx context.Context, o *IO, args []string) int {
	c.Flags.SetOutput(&strings.Builder{}) // discard pflag output

	err := c.Flags.Parse(args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			c.PrintHelp(o)

			return 0
		}

		o.ErrPrintln("error:", err)
		o.ErrPrintln()
		c.PrintHelp(errIO(o))

		return 1
	}

	if err := c.Exec(ctx, o, c.Flags.Args()); err != nil {
		var usageErr *usageError
		if errors.As(err, &usageErr) {
			o.ErrPrintln("error:", err)
			o.ErrPrintln()
			c.PrintHelp(errIO(o))

			return 1
		}

		o.ErrPrintln("error:", err)

		return 1
	}

	return o.Finish()
}

// usageError marks errors caused by invalid arguments; help is printed
// after the message.
type usageError struct {
	err error
}

func (e *usageError) Error() string { return e.err.Error() }

func (e *usageError) Unwrap() error { return e.err }

// errIO returns an IO whose stdout is o's stderr, for help printed on error.
func errIO(o *IO) *IO {
	return NewIO(o.errOut, o.errOut)
}

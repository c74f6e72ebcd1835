// Package cli implements the batchsync command line: flag and argument
// handling, configuration, progress output and the sync run itself.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	flag "github.com/spf13/pflag"
)

// Usage errors for positional arguments.
var (
	errYearRequired = errors.New("year is required when sheet-id is given")
	errTooManyArgs  = errors.New("too many arguments")
)

const maxPositional = 3

// options collects flag and positional values for one invocation.
type options struct {
	workDir     string
	configPath  string
	root        string
	file        string
	sheet       string
	dryRun      bool
	confirm     bool
	printConfig bool

	sheetID string
	year    string
	gid     string
}

// Run is the main entry point. Returns exit code.
//
// sigCh may be nil. A signal received on it cancels the running sync; files
// already written stay written.
func Run(stdin io.Reader, out io.Writer, errOut io.Writer, args []string, env map[string]string, sigCh <-chan os.Signal) int {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if sigCh != nil {
		go func() {
			select {
			case <-sigCh:
				cancel()
			case <-ctx.Done():
			}
		}()
	}

	var opts options

	cmd := newCommand(&opts, stdin, env)

	if len(args) > 0 {
		args = args[1:]
	}

	return cmd.Run(ctx, NewIO(out, errOut), args)
}

func newCommand(opts *options, stdin io.Reader, env map[string]string) *Command {
	flags := flag.NewFlagSet("batchsync", flag.ContinueOnError)
	flags.StringVarP(&opts.workDir, "cwd", "C", "", "Run as if started in `dir`")
	flags.StringVarP(&opts.configPath, "config", "c", "", "Use specified config `file`")
	flags.StringVar(&opts.root, "root", "", "Batch files root `dir` (default \"_batches\")")
	flags.StringVar(&opts.file, "file", "", "Read records from a local .csv or .xlsx `path` instead of fetching")
	flags.StringVar(&opts.sheet, "sheet", "", "Worksheet `name` for --file workbooks (default: first sheet)")
	flags.BoolVar(&opts.dryRun, "dry-run", false, "Show what would change without writing files")
	flags.BoolVar(&opts.confirm, "confirm", false, "Ask before writing each file")
	flags.BoolVar(&opts.printConfig, "print-config", false, "Show resolved configuration and exit")

	return &Command{
		Flags: flags,
		Usage: "[flags] [sheet-id] [year] [gid]",
		Short: "Sync project submissions from a spreadsheet into batch files",
		Long: `Sync project submissions from a Google Sheets form export into the
per-batch markdown files under <root>/<year>/batch-NN.md.

Each row's "Select your batch number." column picks the file; the title,
abstract and link columns are merged into its frontmatter and
"### Project Abstract" section. Rows without a parsable batch number and
batches without a file are skipped with a warning.

Omitted arguments come from the config file, then from the built-in
sheet, year 2022 and gid 0. When sheet-id is given, year must be too.`,
		Exec: func(ctx context.Context, o *IO, args []string) error {
			if err := opts.positional(args); err != nil {
				return &usageError{err: err}
			}

			return execSync(ctx, o, opts, stdin, env)
		},
	}
}

func (opts *options) positional(args []string) error {
	switch len(args) {
	case 0:
	case 1:
		return errYearRequired
	case 2:
		opts.sheetID, opts.year = args[0], args[1]
	case maxPositional:
		opts.sheetID, opts.year, opts.gid = args[0], args[1], args[2]
	default:
		return fmt.Errorf("%w: got %d, want at most %d", errTooManyArgs, len(args), maxPositional)
	}

	if opts.sheetID != "" && strings.TrimSpace(opts.year) == "" {
		return errYearRequired
	}

	return nil
}

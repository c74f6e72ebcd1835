// Package syncer drives one synchronization run: load records, map each one
// to its batch file, merge and write.
//
// A run moves strictly forward: records are loaded and parsed once, then
// visited in sheet order. Records without a usable batch number, and batches
// without a file, are skipped with a warning and never stop the run. Loading
// failures and file read/write failures end the run with an error.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/calvinalkan/batchsync/internal/batches"
	"github.com/calvinalkan/batchsync/internal/document"
	"github.com/calvinalkan/batchsync/internal/records"
	"github.com/calvinalkan/batchsync/internal/slug"
)

// ErrNoBatchColumn is returned when the sheet has records but no batch
// number column.
var ErrNoBatchColumn = errors.New("batch number column not found")

// Source yields the records of one run.
type Source interface {
	Records(ctx context.Context) ([]records.Record, error)
}

// Reporter receives progress lines and per-record warnings.
type Reporter interface {
	Println(a ...any)
	Warn(issue string, action string)
}

// Decision is the answer of a [Confirmer].
type Decision int

// Confirmer answers.
const (
	Yes  Decision = iota // write this file
	No                   // skip this file
	All                  // write this and every following file without asking
	Quit                 // stop the run before this file
)

// Confirmer is asked before each batch file is written.
type Confirmer interface {
	Confirm(slug, title string) (Decision, error)
}

// Options configures [Run]. Source, Store and Out are required.
type Options struct {
	Source  Source
	Store   *batches.Store
	Out     Reporter
	DryRun  bool      // merge and report, never write
	Confirm Confirmer // nil writes without asking
}

// Result counts the outcome of a run.
type Result struct {
	Records   int      // records loaded
	Updated   int      // records merged into their batch file
	Unchanged int      // subset of Updated whose file already matched
	Skipped   int      // records not applied
	Missing   []string // slugs without a batch file, in sheet order
	Stopped   bool     // the Confirmer asked to quit
}

// Run loads the records from opts.Source and merges each into its batch file.
//
// The returned Result is valid even when err is non-nil and reflects the
// records processed before the failure.
func Run(ctx context.Context, opts Options) (Result, error) {
	var res Result

	recs, err := opts.Source.Records(ctx)
	if err != nil {
		return res, err
	}

	res.Records = len(recs)
	opts.Out.Println(fmt.Sprintf("Fetched %d record(s)", len(recs)))

	if len(recs) > 0 {
		if _, ok := recs[0].Get(ColumnBatch); !ok {
			return res, fmt.Errorf("%w: %q", ErrNoBatchColumn, ColumnBatch)
		}
	}

	confirm := opts.Confirm

	for i, rec := range recs {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		row := i + 2 // header is row 1

		raw, _ := rec.Get(ColumnBatch)
		if strings.TrimSpace(raw) == "" {
			opts.Out.Warn(fmt.Sprintf("row %d has no batch number", row), "skipped; fill in the batch column")
			res.Skipped++

			continue
		}

		batch, ok := slug.FromBatch(raw)
		if !ok {
			opts.Out.Warn(fmt.Sprintf("row %d: could not parse batch number %q", row, raw), "skipped; use the form \"Batch N\"")
			res.Skipped++

			continue
		}

		opts.Out.Println(fmt.Sprintf("Updating %s...", batch))

		text, err := opts.Store.Read(batch)
		if errors.Is(err, batches.ErrNotFound) {
			opts.Out.Warn("file not found: "+opts.Store.Path(batch), "skipped; create the batch file to sync it")
			res.Skipped++
			res.Missing = append(res.Missing, batch)

			continue
		}

		if err != nil {
			return res, err
		}

		title := titleOf(rec)

		merged, changed := document.Merge(text, updatesFor(rec), abstractOf(rec))

		if confirm != nil && changed && !opts.DryRun {
			decision, err := confirm.Confirm(batch, title)
			if err != nil {
				return res, fmt.Errorf("confirm %s: %w", batch, err)
			}

			switch decision {
			case Quit:
				res.Stopped = true

				return res, nil
			case No:
				opts.Out.Println("  Skipped:", batch)
				res.Skipped++

				continue
			case All:
				confirm = nil
			case Yes:
			}
		}

		switch {
		case !changed:
			res.Unchanged++

			opts.Out.Println("  Unchanged:", title)
		case opts.DryRun:
			opts.Out.Println("  Would update:", title)
		default:
			if err := opts.Store.Write(batch, merged); err != nil {
				return res, err
			}

			opts.Out.Println("  Updated:", title)
		}

		res.Updated++
	}

	return res, nil
}

func titleOf(rec records.Record) string {
	if title, _ := rec.Get(ColumnTitle); title != "" {
		return title
	}

	return "Untitled"
}

func abstractOf(rec records.Record) string {
	abstract, _ := rec.Get(ColumnAbstract)

	return abstract
}

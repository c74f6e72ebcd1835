package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"

	"github.com/calvinalkan/batchsync/internal/batches"
	"github.com/calvinalkan/batchsync/internal/config"
	"github.com/calvinalkan/batchsync/internal/fetch"
	"github.com/calvinalkan/batchsync/internal/fs"
	"github.com/calvinalkan/batchsync/internal/records"
	"github.com/calvinalkan/batchsync/internal/source"
	"github.com/calvinalkan/batchsync/internal/syncer"
)

func execSync(ctx context.Context, o *IO, opts *options, stdin io.Reader, env map[string]string) error {
	cfg, err := config.Load(config.LoadInput{
		WorkDirOverride: opts.workDir,
		ConfigPath:      opts.configPath,
		Overrides: config.Config{
			SheetID: opts.sheetID,
			Year:    opts.year,
			GID:     opts.gid,
			Root:    opts.root,
		},
		Env: env,
	})
	if err != nil {
		return err
	}

	if opts.printConfig {
		return execPrintConfig(o, &cfg)
	}

	fsys := fs.NewReal()
	store := batches.NewStore(fsys, cfg.RootAbs, cfg.Year)

	if exists, err := fsys.Exists(store.Dir()); err == nil && !exists {
		o.Warn("batch directory "+store.Dir()+" does not exist", "check --root and the year argument")
	}

	run := syncer.Options{
		Source: newSource(o, opts, &cfg, fsys),
		Store:  store,
		Out:    o,
		DryRun: opts.dryRun,
	}

	if opts.confirm && !opts.dryRun {
		p, release, err := newPrompter(stdin, o.out)
		if err != nil {
			return err
		}
		defer release()

		run.Confirm = &promptConfirmer{p: p, o: o}
	}

	res, err := syncer.Run(ctx, run)
	if err != nil {
		if errors.Is(err, source.ErrRetrieval) && opts.file == "" {
			printTroubleshooting(o, &cfg)
		}

		if errors.Is(err, records.ErrMalformed) {
			o.ErrPrintln("The sheet export could not be parsed as a table.")
		}

		return err
	}

	printSummary(o, res, opts.dryRun)

	return nil
}

func newSource(o *IO, opts *options, cfg *config.Config, fsys fs.FS) syncer.Source {
	if opts.file != "" {
		path := opts.file
		if !filepath.IsAbs(path) {
			path = filepath.Join(cfg.EffectiveCwd, path)
		}

		o.Println("Reading records from", path+"...")

		return &source.File{FS: fsys, Path: path, Sheet: opts.sheet}
	}

	o.Println("Fetching data from Google Sheets...")
	o.Println("Sheet ID:", cfg.SheetID)
	o.Println("GID:", cfg.GID)
	o.Println("Year:", cfg.Year)

	return &source.Remote{
		Fetcher: fetch.New(http.DefaultClient),
		URLs:    fetch.CandidateURLs(cfg.Endpoints, cfg.SheetID, cfg.GID),
		OnAttempt: func(i int, _ string, err error) {
			if err == nil {
				o.Printf("Trying URL format %d... Success!\n", i+1)

				return
			}

			o.Printf("Trying URL format %d... Failed (%v), trying next format...\n", i+1, err)
		},
	}
}

func printSummary(o *IO, res syncer.Result, dryRun bool) {
	if res.Stopped {
		o.Println("Stopped before all records were processed.")
	}

	verb := "Updated"
	if dryRun {
		verb = "Would update"
	}

	o.Println()
	o.Printf("Done! %s %d file(s), skipped %d record(s)\n", verb, res.Updated, res.Skipped)

	if res.Unchanged > 0 {
		o.Printf("%d file(s) were already up to date\n", res.Unchanged)
	}

	if len(res.Missing) > 0 {
		o.Printf("Missing batch files: %v\n", res.Missing)
	}
}

func printTroubleshooting(o *IO, cfg *config.Config) {
	o.ErrPrintln("Could not download the sheet. Troubleshooting:")
	o.ErrPrintln("  1. Share the sheet publicly: Share > General access > Anyone with the link, role Viewer")
	o.ErrPrintln("  2. Or publish it: File > Share > Publish to web, format CSV")
	o.ErrPrintln(fmt.Sprintf("  3. Check the GID (%s): it is the number after #gid= in the sheet URL", cfg.GID))
	o.ErrPrintln(fmt.Sprintf("  4. Check the sheet ID (%s)", cfg.SheetID))
}

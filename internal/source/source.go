// Package source provides the record sources a sync run reads from: the
// remote spreadsheet export, or a local CSV/xlsx file.
package source

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/calvinalkan/batchsync/internal/fetch"
	"github.com/calvinalkan/batchsync/internal/fs"
	"github.com/calvinalkan/batchsync/internal/records"
)

// ErrRetrieval marks source data that could not be obtained at all.
var ErrRetrieval = errors.New("cannot retrieve source data")

// Remote fetches CSV text from the first answering candidate URL.
type Remote struct {
	Fetcher   *fetch.Fetcher
	URLs      []string
	OnAttempt fetch.AttemptFunc
}

// Records fetches and parses the export. The first row is the header.
func (r *Remote) Records(ctx context.Context) ([]records.Record, error) {
	text, err := r.Fetcher.Fetch(ctx, r.URLs, r.OnAttempt)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRetrieval, err)
	}

	return records.ParseCSV(text, true)
}

// File reads records from a local export. Files ending in .xlsx or .xlsm are
// read as workbooks, anything else as CSV.
type File struct {
	FS    fs.FS
	Path  string
	Sheet string // worksheet name for workbooks; empty means the first sheet
}

// Records reads and parses the file. The first row is the header.
func (f *File) Records(_ context.Context) ([]records.Record, error) {
	data, err := f.FS.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRetrieval, err)
	}

	switch strings.ToLower(filepath.Ext(f.Path)) {
	case ".xlsx", ".xlsm":
		return records.ParseXLSX(bytes.NewReader(data), f.Sheet, true)
	default:
		return records.ParseCSV(string(data), true)
	}
}

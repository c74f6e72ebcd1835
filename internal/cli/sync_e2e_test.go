package cli_test

import (
	"encoding/csv"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/calvinalkan/batchsync/internal/cli"
)

var header = []string{
	"Timestamp",
	"Select your batch number.",
	"Project title",
	"Short abstract of the project",
	"Public Google drive link to project journal (PDF preferred)",
	"Public Google drive link to project presentation (PDF/PPTX preferred)",
	"Public Google drive link to project report (PDF preferred)",
	"Link to GitHub repository or deployment link",
}

const batchFile = `---
layout: "batch"
title: "Batch 09"
---
### Team

- Alice
`

func writeFile(t *testing.T, path, content string) {
	t.Helper()

	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func sheetCSV(t *testing.T, rows ...[]string) string {
	t.Helper()

	var b strings.Builder

	w := csv.NewWriter(&b)
	require.NoError(t, w.WriteAll(append([][]string{header}, rows...)))

	return b.String()
}

// serveSheet starts a server answering every request with body and points
// the project config at it. Paths listed in failing answer 404.
func serveSheet(t *testing.T, c *cli.CLI, body string, failing ...string) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for _, p := range failing {
			if r.URL.Path == p {
				http.NotFound(w, r)

				return
			}
		}

		w.Header().Set("Content-Type", "text/csv")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	c.WriteFile(".batchsync.json", `{
		"endpoints": [
			"`+srv.URL+`/first/{sheet}/{gid}",
			"`+srv.URL+`/second/{sheet}/{gid}",
		],
	}`)

	return srv
}

var solarRow = []string{"1/2/2022", "Batch 9", "Solar Car", "We built a car.", "https://j", "https://p", "https://r", "https://github.com/x"}

const solarBatch = `---
layout: "batch"
title: "Solar Car"
description: "Solar Car"
journal_link: "https://j"
ppt_link: "https://p"
report_link: "https://r"
code_link: "https://github.com/x"
---
### Project Abstract

We built a car.

### Team

- Alice
`

// Contract: one matching row and one unparsable row update one file and skip one record.
func Test_Sync_Updates_Batch_File_When_Sheet_Fetched(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.WriteBatch("2022", "batch-09", batchFile)
	serveSheet(t, c, sheetCSV(t, solarRow, []string{"1/2/2022", "Team Nine", "Other", "", "", "", "", ""}))

	stdout, stderr, code := c.Run()

	if got, want := code, 0; got != want {
		t.Fatalf("exitCode=%d, want=%d\nstderr: %s", got, want, stderr)
	}

	cli.AssertContains(t, stdout, "Fetching data from Google Sheets...")
	cli.AssertContains(t, stdout, "Trying URL format 1... Success!")
	cli.AssertContains(t, stdout, "Fetched 2 record(s)")
	cli.AssertContains(t, stdout, "Updating batch-09...")
	cli.AssertContains(t, stdout, "  Updated: Solar Car")
	cli.AssertContains(t, stdout, "Done! Updated 1 file(s), skipped 1 record(s)")
	cli.AssertContains(t, stderr, `warning: row 3: could not parse batch number "Team Nine"`)

	if diff := cmp.Diff(solarBatch, c.ReadBatch("2022", "batch-09")); diff != "" {
		t.Fatalf("batch file mismatch (-want +got):\n%s", diff)
	}
}

// Contract: a failing endpoint falls through to the next one.
func Test_Sync_Falls_Back_To_Next_Endpoint_When_First_Fails(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.WriteBatch("2022", "batch-09", batchFile)
	serveSheet(t, c, sheetCSV(t, solarRow), "/first/"+"1usKC2Wq8kW6Wuo5yx5rK6SJuFEZIPCDckxsY8zlszgs/0")

	stdout := c.MustRun()

	cli.AssertContains(t, stdout, "Trying URL format 1... Failed")
	cli.AssertContains(t, stdout, "trying next format...")
	cli.AssertContains(t, stdout, "Trying URL format 2... Success!")
	cli.AssertContains(t, stdout, "Done! Updated 1 file(s), skipped 0 record(s)")
}

// Contract: when every endpoint fails the run exits 1 with troubleshooting hints.
func Test_Sync_Prints_Troubleshooting_When_All_Endpoints_Fail(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.WriteBatch("2022", "batch-09", batchFile)
	serveSheet(t, c, "", "/first/my-sheet/3", "/second/my-sheet/3")

	stdout, stderr, code := c.Run("my-sheet", "2022", "3")

	if got, want := code, 1; got != want {
		t.Fatalf("exitCode=%d, want=%d", got, want)
	}

	cli.AssertContains(t, stdout, "Sheet ID: my-sheet")
	cli.AssertContains(t, stdout, "GID: 3")
	cli.AssertNotContains(t, stdout, "Done!")
	cli.AssertContains(t, stderr, "error: cannot retrieve source data")
	cli.AssertContains(t, stderr, "404 Not Found")
	cli.AssertContains(t, stderr, "Anyone with the link, role Viewer")
	cli.AssertContains(t, stderr, "Publish to web")
	cli.AssertContains(t, stderr, "Check the GID (3)")

	if diff := cmp.Diff(batchFile, c.ReadBatch("2022", "batch-09")); diff != "" {
		t.Fatalf("batch file changed (-want +got):\n%s", diff)
	}
}

// Contract: positional year selects the batch directory.
func Test_Sync_Uses_Positional_Year_When_Given(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.WriteBatch("2023", "batch-09", batchFile)

	var hits atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)

		if got, want := r.URL.Path, "/other-sheet/12"; got != want {
			t.Errorf("path=%q, want=%q", got, want)
		}

		_, _ = w.Write([]byte(sheetCSV(t, solarRow)))
	}))
	t.Cleanup(srv.Close)

	c.WriteFile(".batchsync.json", `{"endpoints": ["`+srv.URL+`/{sheet}/{gid}"]}`)

	stdout := c.MustRun("other-sheet", "2023", "12")

	cli.AssertContains(t, stdout, "Year: 2023")
	cli.AssertContains(t, c.ReadBatch("2023", "batch-09"), `title: "Solar Car"`)

	if got, want := hits.Load(), int32(1); got != want {
		t.Fatalf("hits=%d, want=%d", got, want)
	}
}

// Contract: a missing batch file is a warning, not a failure.
func Test_Sync_Warns_When_Batch_File_Missing(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.WriteBatch("2022", "batch-01", batchFile)
	serveSheet(t, c, sheetCSV(t, solarRow))

	stdout, stderr, code := c.Run()

	if got, want := code, 0; got != want {
		t.Fatalf("exitCode=%d, want=%d\nstderr: %s", got, want, stderr)
	}

	cli.AssertContains(t, stdout, "Done! Updated 0 file(s), skipped 1 record(s)")
	cli.AssertContains(t, stdout, "Missing batch files: [batch-09]")
	cli.AssertContains(t, stderr, "warning: file not found: "+filepath.Join(c.BatchDir("2022"), "batch-09.md"))
	cli.AssertContains(t, stderr, "1 warning(s):")
}

// Contract: a missing year directory is reported up front.
func Test_Sync_Warns_When_Year_Directory_Missing(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	serveSheet(t, c, sheetCSV(t, solarRow))

	_, stderr, code := c.Run()

	if got, want := code, 0; got != want {
		t.Fatalf("exitCode=%d, want=%d", got, want)
	}

	cli.AssertContains(t, stderr, "batch directory "+c.BatchDir("2022")+" does not exist")
}

// Contract: --dry-run reports but leaves files untouched.
func Test_Sync_Does_Not_Write_When_Dry_Run(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.WriteBatch("2022", "batch-09", batchFile)
	serveSheet(t, c, sheetCSV(t, solarRow))

	stdout := c.MustRun("--dry-run")

	cli.AssertContains(t, stdout, "  Would update: Solar Car")
	cli.AssertContains(t, stdout, "Done! Would update 1 file(s), skipped 0 record(s)")

	if diff := cmp.Diff(batchFile, c.ReadBatch("2022", "batch-09")); diff != "" {
		t.Fatalf("batch file changed (-want +got):\n%s", diff)
	}
}

// Contract: running twice leaves the file as the first run wrote it.
func Test_Sync_Reports_Up_To_Date_When_Run_Twice(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.WriteBatch("2022", "batch-09", batchFile)
	serveSheet(t, c, sheetCSV(t, solarRow))

	c.MustRun()
	stdout := c.MustRun()

	cli.AssertContains(t, stdout, "  Unchanged: Solar Car")
	cli.AssertContains(t, stdout, "1 file(s) were already up to date")
	require.Equal(t, solarBatch, c.ReadBatch("2022", "batch-09"))
}

// Contract: --file reads a local CSV export without any network access.
func Test_Sync_Reads_Local_CSV_When_File_Given(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.WriteBatch("2022", "batch-09", batchFile)
	c.WriteFile("export.csv", sheetCSV(t, solarRow))

	stdout := c.MustRun("--file", "export.csv")

	cli.AssertContains(t, stdout, "Reading records from "+filepath.Join(c.Dir, "export.csv"))
	cli.AssertNotContains(t, stdout, "Fetching data")
	require.Equal(t, solarBatch, c.ReadBatch("2022", "batch-09"))
}

// Contract: --file with a workbook reads the named sheet.
func Test_Sync_Reads_Local_XLSX_When_File_Given(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.WriteBatch("2022", "batch-09", batchFile)

	book := excelize.NewFile()
	_, err := book.NewSheet("Responses")
	require.NoError(t, err)

	headerCells := make([]any, len(header))
	for i, h := range header {
		headerCells[i] = h
	}

	rowCells := make([]any, len(solarRow))
	for i, v := range solarRow {
		rowCells[i] = v
	}

	require.NoError(t, book.SetSheetRow("Responses", "A1", &headerCells))
	require.NoError(t, book.SetSheetRow("Responses", "A2", &rowCells))
	require.NoError(t, book.SaveAs(filepath.Join(c.Dir, "export.xlsx")))
	require.NoError(t, book.Close())

	c.MustRun("--file", "export.xlsx", "--sheet", "Responses")

	require.Equal(t, solarBatch, c.ReadBatch("2022", "batch-09"))
}

// Contract: structurally broken CSV fails the run.
func Test_Sync_Fails_When_CSV_Malformed(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.WriteFile("export.csv", "a,b\n\"unterminated\n")

	stderr := c.MustFail("--file", "export.csv")

	cli.AssertContains(t, stderr, "could not be parsed")
}

// Contract: --confirm asks per file; "n" skips, "y" writes.
func Test_Sync_Asks_Before_Writing_When_Confirm(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.WriteBatch("2022", "batch-01", batchFile)
	c.WriteBatch("2022", "batch-09", batchFile)

	row1 := append([]string(nil), solarRow...)
	row1[1] = "Batch 1"
	row1[2] = "Kiosk"

	serveSheet(t, c, sheetCSV(t, row1, solarRow))

	stdout, stderr, code := c.RunWithInput("maybe\nn\ny\n", "--confirm")

	if got, want := code, 0; got != want {
		t.Fatalf("exitCode=%d, want=%d\nstderr: %s", got, want, stderr)
	}

	cli.AssertContains(t, stdout, "Write batch-01 (Kiosk)? [y]es/[n]o/[a]ll/[q]uit:")
	cli.AssertContains(t, stdout, "Please answer y, n, a or q.")
	cli.AssertContains(t, stdout, "Done! Updated 1 file(s), skipped 1 record(s)")
	require.Equal(t, batchFile, c.ReadBatch("2022", "batch-01"))
	require.Equal(t, solarBatch, c.ReadBatch("2022", "batch-09"))
}

// Contract: end of input during --confirm stops the run without writing.
func Test_Sync_Stops_When_Confirm_Input_Ends(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.WriteBatch("2022", "batch-09", batchFile)
	serveSheet(t, c, sheetCSV(t, solarRow))

	stdout, _, code := c.RunWithInput("", "--confirm")

	if got, want := code, 0; got != want {
		t.Fatalf("exitCode=%d, want=%d", got, want)
	}

	cli.AssertContains(t, stdout, "Stopped before all records were processed.")
	require.Equal(t, batchFile, c.ReadBatch("2022", "batch-09"))
}

// Contract: --confirm without an input stream is an error.
func Test_Sync_Fails_When_Confirm_Without_Input(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.WriteBatch("2022", "batch-09", batchFile)
	serveSheet(t, c, sheetCSV(t, solarRow))

	stderr := c.MustFail("--confirm")

	cli.AssertContains(t, stderr, "--confirm needs an input stream")
}

package syncer

import (
	"github.com/calvinalkan/batchsync/internal/document"
	"github.com/calvinalkan/batchsync/internal/records"
)

// Submission form columns, matched exactly.
const (
	ColumnBatch        = "Select your batch number."
	ColumnTitle        = "Project title"
	ColumnAbstract     = "Short abstract of the project"
	ColumnJournal      = "Public Google drive link to project journal (PDF preferred)"
	ColumnPresentation = "Public Google drive link to project presentation (PDF/PPTX preferred)"
	ColumnReport       = "Public Google drive link to project report (PDF preferred)"
	ColumnCode         = "Link to GitHub repository or deployment link"
)

// Frontmatter fields written by a sync.
const (
	FieldTitle       = "title"
	FieldDescription = "description"
	FieldJournal     = "journal_link"
	FieldPPT         = "ppt_link"
	FieldReport      = "report_link"
	FieldCode        = "code_link"
)

type fieldMapping struct {
	column string
	field  string
}

// fieldMappings is applied in order. The title feeds description as well.
var fieldMappings = []fieldMapping{
	{column: ColumnTitle, field: FieldTitle},
	{column: ColumnTitle, field: FieldDescription},
	{column: ColumnJournal, field: FieldJournal},
	{column: ColumnPresentation, field: FieldPPT},
	{column: ColumnReport, field: FieldReport},
	{column: ColumnCode, field: FieldCode},
}

// updatesFor maps the columns present in rec to field updates. Blank cells
// clear their field; columns missing from the sheet leave it alone.
func updatesFor(rec records.Record) []document.FieldUpdate {
	updates := make([]document.FieldUpdate, 0, len(fieldMappings))

	for _, m := range fieldMappings {
		value, ok := rec.Get(m.column)
		if !ok {
			continue
		}

		updates = append(updates, document.FieldUpdate{Name: m.field, Value: value})
	}

	return updates
}

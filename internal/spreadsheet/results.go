package spreadsheet

import (
	"io"
	"strings"

	"github.com/stemsi/exstem-proctor/internal/model"
	"github.com/xuri/excelize/v2"
)

// ResultHeader is the header row of the results workbook.
var ResultHeader = []string{"ID", "Name", "Email", "Correct", "Total", "Percentage", "Submitted At", "Warnings", "Warning Details"}

const resultsTimeLayout = "2006-01-02 15:04:05"

// ExportResults writes one row per stored result.
func ExportResults(w io.Writer, results []model.ResultRecord) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Results"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return err
	}
	if err := writeHeader(f, sheet, ResultHeader); err != nil {
		return err
	}

	for i, r := range results {
		row := []interface{}{
			r.ID,
			r.UserName,
			r.Email,
			r.Correct,
			r.Total,
			r.Percentage,
			r.SubmittedAt.UTC().Format(resultsTimeLayout),
			len(r.Warnings),
			strings.Join(r.Warnings, "; "),
		}
		if err := setRow(f, sheet, i+2, row); err != nil {
			return err
		}
	}
	if err := f.SetColWidth(sheet, "B", "C", 28); err != nil {
		return err
	}
	if err := f.SetColWidth(sheet, "G", "G", 20); err != nil {
		return err
	}
	if err := f.SetColWidth(sheet, "I", "I", 60); err != nil {
		return err
	}

	_, err := f.WriteTo(w)
	return err
}

// Package spreadsheet moves question banks and exam results in and out of
// Excel workbooks and CSV files.
package spreadsheet

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/stemsi/exstem-proctor/internal/model"
	"github.com/stemsi/exstem-proctor/internal/validator"
	"github.com/xuri/excelize/v2"
)

// QuestionHeader is the header row written by ExportQuestions and skipped by
// ParseQuestions.
var QuestionHeader = []string{"Question", "A", "B", "C", "D", "Correct"}

// ImportResult holds the outcome of parsing a question file.
type ImportResult struct {
	TotalProcessed int
	Questions      []model.QuestionRequest
	Errors         []string
}

// ErrUnsupportedFormat is returned for files that are neither .xlsx nor .csv.
var ErrUnsupportedFormat = errors.New("unsupported file format, expected .xlsx or .csv")

// ParseQuestions reads one question per row: question text, four options and
// the correct letter. The format is chosen by the file name's extension.
// Invalid rows are reported in Errors and skipped.
func ParseQuestions(r io.Reader, filename string) (*ImportResult, error) {
	var (
		rows [][]string
		err  error
	)
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx":
		rows, err = readExcelRows(r)
	case ".csv":
		rows, err = readCSVRows(r)
	default:
		return nil, ErrUnsupportedFormat
	}
	if err != nil {
		return nil, err
	}

	result := &ImportResult{Errors: make([]string, 0)}
	for i, row := range rows {
		if isBlank(row) || (i == 0 && isHeader(row)) {
			continue
		}
		result.TotalProcessed++

		req, err := questionFromRow(row)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", i+1, err))
			continue
		}
		result.Questions = append(result.Questions, req)
	}
	return result, nil
}

func readExcelRows(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to get rows: %w", err)
	}
	return rows, nil
}

func readCSVRows(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("error reading CSV: %w", err)
	}
	return rows, nil
}

func questionFromRow(row []string) (model.QuestionRequest, error) {
	cell := func(i int) string {
		if i < len(row) {
			return strings.TrimSpace(row[i])
		}
		return ""
	}

	req := model.QuestionRequest{
		Question: cell(0),
		Options:  []string{cell(1), cell(2), cell(3), cell(4)},
		Correct:  model.NormalizeLetter(cell(5)),
	}
	for i, opt := range req.Options {
		if opt == "" {
			return req, fmt.Errorf("option %s is empty", model.OptionLetters[i])
		}
	}
	if fields := validator.Validate(&req); fields != nil {
		return req, fmt.Errorf("%s", joinFields(fields))
	}
	return req, nil
}

func isHeader(row []string) bool {
	return len(row) > 0 && strings.EqualFold(strings.TrimSpace(row[0]), QuestionHeader[0])
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func joinFields(fields map[string]string) string {
	parts := make([]string, 0, len(fields))
	for _, name := range []string{"question", "options", "correct"} {
		if msg, ok := fields[name]; ok {
			parts = append(parts, msg)
			delete(fields, name)
		}
	}
	for _, msg := range fields {
		parts = append(parts, msg)
	}
	return strings.Join(parts, "; ")
}

// ExportQuestions writes the bank as a workbook that ParseQuestions accepts.
func ExportQuestions(w io.Writer, questions []model.Question) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Questions"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return err
	}
	if err := writeHeader(f, sheet, QuestionHeader); err != nil {
		return err
	}

	for i, q := range questions {
		row := []interface{}{q.Question}
		for _, opt := range q.Options {
			row = append(row, opt)
		}
		row = append(row, q.Correct)
		if err := setRow(f, sheet, i+2, row); err != nil {
			return err
		}
	}
	if err := f.SetColWidth(sheet, "A", "A", 60); err != nil {
		return err
	}
	if err := f.SetColWidth(sheet, "B", "E", 24); err != nil {
		return err
	}

	_, err := f.WriteTo(w)
	return err
}

func writeHeader(f *excelize.File, sheet string, header []string) error {
	row := make([]interface{}, len(header))
	for i, h := range header {
		row[i] = h
	}
	if err := setRow(f, sheet, 1, row); err != nil {
		return err
	}

	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, style); err != nil {
		return err
	}
	return f.SetPanes(sheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})
}

func setRow(f *excelize.File, sheet string, rowNum int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}

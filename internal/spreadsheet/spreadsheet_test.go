package spreadsheet

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stemsi/exstem-proctor/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestQuestionWorkbookRoundTrip(t *testing.T) {
	bank := []model.Question{
		{ID: 1, Question: "What is 2 + 2?", Options: []string{"3", "4", "5", "6"}, Correct: "B"},
		{ID: 7, Question: "Capital of France?", Options: []string{"Berlin", "Madrid", "Paris", "Rome"}, Correct: "C"},
	}

	var buf bytes.Buffer
	require.NoError(t, ExportQuestions(&buf, bank))

	res, err := ParseQuestions(&buf, "bank.xlsx")
	require.NoError(t, err)
	assert.Empty(t, res.Errors)
	assert.Equal(t, 2, res.TotalProcessed)
	require.Len(t, res.Questions, 2)

	assert.Equal(t, "Capital of France?", res.Questions[1].Question)
	assert.Equal(t, []string{"Berlin", "Madrid", "Paris", "Rome"}, res.Questions[1].Options)
	assert.Equal(t, "C", res.Questions[1].Correct)
}

func TestParseQuestionsCSV(t *testing.T) {
	input := strings.Join([]string{
		"question,a,b,c,d,correct",
		"Largest planet?,Mars,Jupiter,Venus,Earth,b",
		",,,,,",
		"Missing option,one,two,,four,A",
		"Bad letter,one,two,three,four,E",
		"Short row,one",
	}, "\n")

	res, err := ParseQuestions(strings.NewReader(input), "Bank.CSV")
	require.NoError(t, err)

	assert.Equal(t, 4, res.TotalProcessed, "header and blank rows are not counted")
	require.Len(t, res.Questions, 1)
	assert.Equal(t, "B", res.Questions[0].Correct)

	require.Len(t, res.Errors, 3)
	assert.True(t, strings.HasPrefix(res.Errors[0], "Row 4:"))
	assert.Contains(t, res.Errors[0], "option C is empty")
	assert.True(t, strings.HasPrefix(res.Errors[1], "Row 5:"))
}

func TestParseQuestionsUnsupported(t *testing.T) {
	_, err := ParseQuestions(strings.NewReader("{}"), "bank.json")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = ParseQuestions(strings.NewReader("not a zip"), "bank.xlsx")
	assert.Error(t, err)
}

func TestExportResults(t *testing.T) {
	results := []model.ResultRecord{
		{
			ID:          1,
			UserName:    "Ann",
			Email:       "ann@example.com",
			Correct:     2,
			Total:       3,
			Percentage:  66.67,
			SubmittedAt: time.Date(2026, 10, 18, 9, 30, 0, 0, time.UTC),
			Warnings:    []string{"Window lost focus", "Tab hidden"},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, ExportResults(&buf, results))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Results")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, ResultHeader, rows[0])
	assert.Equal(t, []string{
		"1", "Ann", "ann@example.com", "2", "3", "66.67",
		"2026-10-18 09:30:00", "2", "Window lost focus; Tab hidden",
	}, rows[1])
}

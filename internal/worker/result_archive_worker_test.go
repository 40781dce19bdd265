package worker

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stemsi/exstem-proctor/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArchiveRowMatchesColumns(t *testing.T) {
	at := time.Date(2026, 10, 18, 9, 30, 0, 0, time.UTC)
	sel := "B"
	rec := &model.ResultRecord{
		ID:          4,
		UserName:    "Ann",
		Email:       "ann@example.com",
		Correct:     1,
		Total:       3,
		Percentage:  33.33,
		SubmittedAt: at,
		Answers: []model.GradedAnswer{
			{QuestionID: 2, SelectedOption: &sel, CorrectOption: "B", IsCorrect: true},
		},
	}

	row, err := archiveRow(rec)
	require.NoError(t, err)
	require.Len(t, row, len(archiveColumns))

	assert.Equal(t, 4, row[0])
	assert.Equal(t, 33.33, row[5])
	assert.Equal(t, "[]", row[6], "nil warnings archive as an empty array")
	assert.Equal(t, at, row[8])

	var answers []model.GradedAnswer
	require.NoError(t, json.Unmarshal([]byte(row[7].(string)), &answers))
	require.Len(t, answers, 1)
	assert.True(t, answers[0].IsCorrect)
}

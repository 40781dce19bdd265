package service

import (
	"testing"

	"github.com/stemsi/exstem-proctor/internal/model"
	"github.com/stemsi/exstem-proctor/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListForExamStripsAnswers(t *testing.T) {
	qr, _ := newRepos(t, abcBank())
	svc := NewQuestionService(qr, 0)

	questions, err := svc.ListForExam(ctx())
	require.NoError(t, err)
	require.Len(t, questions, 3)
	for i, q := range questions {
		assert.Equal(t, i+1, q.ID, "whole bank keeps stored order")
	}
}

func TestListForExamCapsRandomSubset(t *testing.T) {
	qr, _ := newRepos(t, abcBank())
	svc := NewQuestionService(qr, 2)

	questions, err := svc.ListForExam(ctx())
	require.NoError(t, err)
	require.Len(t, questions, 2)
	assert.NotEqual(t, questions[0].ID, questions[1].ID)
}

func TestSampleLimits(t *testing.T) {
	bank := abcBank()

	assert.Len(t, Sample(bank, 0), 3)
	assert.Len(t, Sample(bank, 10), 3)
	assert.Len(t, Sample(bank, 1), 1)
	assert.Equal(t, 1, bank[0].ID, "input is not reordered")
}

func TestCreateNormalizesAndRoundTrips(t *testing.T) {
	qr, _ := newRepos(t, abcBank())
	svc := NewQuestionService(qr, 0)

	created, err := svc.Create(ctx(), model.QuestionRequest{
		Question: "  Spaces kept ",
		Options:  []string{"<b>", "two", "three", "four"},
		Correct:  "d",
	})
	require.NoError(t, err)
	assert.Equal(t, 4, created.ID)
	assert.Equal(t, "D", created.Correct)

	all, err := svc.List(ctx())
	require.NoError(t, err)
	assert.Equal(t, *created, all[3])
	assert.Equal(t, "  Spaces kept ", all[3].Question)
}

func TestUpdateDeleteUnknown(t *testing.T) {
	qr, _ := newRepos(t, abcBank())
	svc := NewQuestionService(qr, 0)

	_, err := svc.Update(ctx(), 77, model.QuestionRequest{Question: "x", Options: []string{"1", "2", "3", "4"}, Correct: "A"})
	assert.ErrorIs(t, err, repository.ErrNotFound)

	_, err = svc.Delete(ctx(), 77)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	ok, err := svc.Exists(ctx(), 2)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = svc.Exists(ctx(), 77)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestImportStoresInOrder(t *testing.T) {
	qr, _ := newRepos(t, []model.Question{})
	svc := NewQuestionService(qr, 0)

	n, err := svc.Import(ctx(), []model.QuestionRequest{
		{Question: "first", Options: []string{"1", "2", "3", "4"}, Correct: "a"},
		{Question: "second", Options: []string{"1", "2", "3", "4"}, Correct: "b"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	all, err := svc.List(ctx())
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, 1, all[0].ID)
	assert.Equal(t, "B", all[1].Correct)
}

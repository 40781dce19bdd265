package service

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stemsi/exstem-proctor/internal/model"
	"github.com/stemsi/exstem-proctor/internal/repository"
	"github.com/stretchr/testify/require"
)

func abcBank() []model.Question {
	return []model.Question{
		{ID: 1, Question: "q1", Options: []string{"a", "b", "c", "d"}, Correct: "A"},
		{ID: 2, Question: "q2", Options: []string{"a", "b", "c", "d"}, Correct: "B"},
		{ID: 3, Question: "q3", Options: []string{"a", "b", "c", "d"}, Correct: "C"},
	}
}

func newRepos(t *testing.T, seed []model.Question) (*repository.QuestionRepository, *repository.ResultRepository) {
	t.Helper()
	dir := t.TempDir()
	qr, err := repository.NewQuestionRepository(dir, seed, zerolog.Nop())
	require.NoError(t, err)
	rr, err := repository.NewResultRepository(dir, zerolog.Nop())
	require.NoError(t, err)
	return qr, rr
}

func opt(s string) *string { return &s }

func ctx() context.Context { return context.Background() }

package repository

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stemsi/exstem-proctor/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newQuestionRepo(t *testing.T, seed []model.Question) (*QuestionRepository, string) {
	t.Helper()
	dir := t.TempDir()
	repo, err := NewQuestionRepository(dir, seed, zerolog.Nop())
	require.NoError(t, err)
	return repo, dir
}

func TestQuestionRepositorySeedsOnFirstStart(t *testing.T) {
	repo, dir := newQuestionRepo(t, SeedQuestions())

	questions, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, questions, 3)
	assert.Equal(t, "C", questions[2].Correct)

	raw, err := os.ReadFile(filepath.Join(dir, QuestionsFile))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(raw), "[\n  {\n    \"id\": 1,"), "document should be pretty-printed")
}

func TestQuestionRepositoryDoesNotReseedExistingFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, QuestionsFile), []byte("[]"), 0o644))

	repo, err := NewQuestionRepository(dir, SeedQuestions(), zerolog.Nop())
	require.NoError(t, err)

	questions, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, questions)
}

func TestQuestionRepositoryCreateAssignsMaxPlusOne(t *testing.T) {
	repo, _ := newQuestionRepo(t, []model.Question{
		{ID: 4, Question: "a", Options: []string{"1", "2", "3", "4"}, Correct: "A"},
		{ID: 9, Question: "b", Options: []string{"1", "2", "3", "4"}, Correct: "B"},
		{ID: 2, Question: "c", Options: []string{"1", "2", "3", "4"}, Correct: "C"},
	})
	ctx := context.Background()

	q := &model.Question{Question: "new", Options: []string{"w", "x", "y", "z"}, Correct: "D"}
	require.NoError(t, repo.Create(ctx, q))
	assert.Equal(t, 10, q.ID)

	got, err := repo.GetByID(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, *q, *got)
}

func TestQuestionRepositoryDeletedIDNotReused(t *testing.T) {
	repo, _ := newQuestionRepo(t, SeedQuestions())
	ctx := context.Background()

	_, err := repo.Delete(ctx, 3)
	require.NoError(t, err)

	q := &model.Question{Question: "again", Options: []string{"1", "2", "3", "4"}, Correct: "A"}
	require.NoError(t, repo.Create(ctx, q))
	assert.Equal(t, 4, q.ID)
}

func TestQuestionRepositoryDeletedIDStaysRetiredAfterRestart(t *testing.T) {
	repo, dir := newQuestionRepo(t, SeedQuestions())
	ctx := context.Background()

	q := &model.Question{Question: "newest", Options: []string{"1", "2", "3", "4"}, Correct: "A"}
	require.NoError(t, repo.Create(ctx, q))
	require.Equal(t, 4, q.ID)
	_, err := repo.Delete(ctx, 4)
	require.NoError(t, err)

	reopened, err := NewQuestionRepository(dir, SeedQuestions(), zerolog.Nop())
	require.NoError(t, err)

	again := &model.Question{Question: "after restart", Options: []string{"1", "2", "3", "4"}, Correct: "B"}
	require.NoError(t, reopened.Create(ctx, again))
	assert.Equal(t, 5, again.ID)
}

func TestQuestionRepositoryIgnoresMalformedSeqFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, QuestionSeqFile), []byte("not a number"), 0o644))

	repo, err := NewQuestionRepository(dir, SeedQuestions(), zerolog.Nop())
	require.NoError(t, err)

	q := &model.Question{Question: "x", Options: []string{"1", "2", "3", "4"}, Correct: "C"}
	require.NoError(t, repo.Create(context.Background(), q))
	assert.Equal(t, 4, q.ID)
}

func TestQuestionRepositoryUpdateAndDeleteUnknown(t *testing.T) {
	repo, _ := newQuestionRepo(t, SeedQuestions())
	ctx := context.Background()

	err := repo.Update(ctx, &model.Question{ID: 99, Question: "x", Options: []string{"1", "2", "3", "4"}, Correct: "A"})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = repo.Delete(ctx, 99)
	assert.ErrorIs(t, err, ErrNotFound)

	questions, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, questions, 3)
}

func TestQuestionRepositoryUpdateReplacesInPlace(t *testing.T) {
	repo, _ := newQuestionRepo(t, SeedQuestions())
	ctx := context.Background()

	updated := model.Question{ID: 2, Question: "Which verb deletes?", Options: []string{"GET", "POST", "PUT", "DELETE"}, Correct: "D"}
	require.NoError(t, repo.Update(ctx, &updated))

	questions, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, questions, 3)
	assert.Equal(t, updated, questions[1])
}

func TestQuestionRepositoryMalformedFileDegradesToEmpty(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, QuestionsFile), []byte("{not json"), 0o644))

	repo, err := NewQuestionRepository(dir, SeedQuestions(), zerolog.Nop())
	require.NoError(t, err)

	questions, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, questions)
	assert.Empty(t, questions)
}

package service

import (
	"context"
	"errors"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/exstem-proctor/internal/broker"
	"github.com/stemsi/exstem-proctor/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGradeExample(t *testing.T) {
	correct, graded := Grade(abcBank(), []model.Answer{
		{QuestionID: 1, SelectedOption: opt("A")},
		{QuestionID: 2, SelectedOption: opt("X")},
		{QuestionID: 3, SelectedOption: opt("C")},
	})

	assert.Equal(t, 2, correct)
	assert.Equal(t, 66.67, Percentage(correct, 3))
	require.Len(t, graded, 3)
	assert.False(t, graded[1].IsCorrect)
	assert.Equal(t, "B", graded[1].CorrectOption)
}

func TestGradeNormalizesSelection(t *testing.T) {
	correct, graded := Grade(abcBank(), []model.Answer{
		{QuestionID: 1, SelectedOption: opt(" a ")},
		{QuestionID: 2, SelectedOption: nil},
	})

	assert.Equal(t, 1, correct)
	assert.Equal(t, "A", *graded[0].SelectedOption)
	assert.Nil(t, graded[1].SelectedOption)
	assert.False(t, graded[1].IsCorrect)
}

func TestGradeIgnoresUnknownQuestions(t *testing.T) {
	correct, graded := Grade(abcBank(), []model.Answer{
		{QuestionID: 42, SelectedOption: opt("A")},
		{QuestionID: 3, SelectedOption: opt("C")},
	})

	assert.Equal(t, 1, correct)
	require.Len(t, graded, 1)
	assert.Equal(t, 3, graded[0].QuestionID)
}

func TestGradeLastAnswerWinsForRepeats(t *testing.T) {
	correct, graded := Grade(abcBank(), []model.Answer{
		{QuestionID: 1, SelectedOption: opt("A")},
		{QuestionID: 1, SelectedOption: opt("A")},
		{QuestionID: 1, SelectedOption: opt("D")},
	})

	assert.Equal(t, 0, correct)
	require.Len(t, graded, 1)
	assert.Equal(t, "D", *graded[0].SelectedOption)
}

func TestPercentage(t *testing.T) {
	assert.Equal(t, 0.0, Percentage(0, 0))
	assert.Equal(t, 100.0, Percentage(3, 3))
	assert.Equal(t, 33.33, Percentage(1, 3))
	assert.Equal(t, 14.29, Percentage(1, 7))
}

func TestGradeBoundsHoldForRandomSubmissions(t *testing.T) {
	letters := []string{"A", "B", "C", "D", "x", ""}
	bank := abcBank()

	for i := 0; i < 500; i++ {
		n := rand.IntN(10)
		answers := make([]model.Answer, n)
		for j := range answers {
			answers[j] = model.Answer{
				QuestionID:     rand.IntN(6),
				SelectedOption: opt(letters[rand.IntN(len(letters))]),
			}
		}

		correct, _ := Grade(bank, answers)
		pct := Percentage(correct, len(bank))

		require.GreaterOrEqual(t, correct, 0)
		require.LessOrEqual(t, correct, len(bank))
		require.InDelta(t, float64(correct)/3*100, pct, 0.005)
	}
}

type recordingArchiver struct {
	got []*model.ResultRecord
	err error
}

func (a *recordingArchiver) Enqueue(_ context.Context, rec *model.ResultRecord) error {
	a.got = append(a.got, rec)
	return a.err
}

func TestScoringServiceSubmitPersistsResult(t *testing.T) {
	qr, rr := newRepos(t, abcBank())
	arch := &recordingArchiver{err: errors.New("redis down")}
	svc := NewScoringService(qr, rr, nil, arch, false, zerolog.Nop())
	fixed := time.Date(2026, 10, 18, 9, 30, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	res, err := svc.Submit(ctx(), model.SubmitRequest{
		UserName: "Ann",
		Email:    "ann@example.com",
		Answers: []model.Answer{
			{QuestionID: 1, SelectedOption: opt("A")},
			{QuestionID: 2, SelectedOption: opt("X")},
			{QuestionID: 3, SelectedOption: opt("C")},
		},
		Warnings: []string{"Window lost focus"},
	})
	require.NoError(t, err)

	assert.Equal(t, SubmittedMessage, res.Message)
	assert.Equal(t, 2, res.Correct)
	assert.Equal(t, 3, res.Total)
	assert.Equal(t, 66.67, res.Percentage)
	assert.Nil(t, res.Answers, "breakdown only returned when review is enabled")

	results, err := svc.ListResults(ctx())
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, 1, results[0].ID)
	assert.Equal(t, fixed, results[0].SubmittedAt)
	assert.Equal(t, []string{"Window lost focus"}, results[0].Warnings)
	assert.Len(t, results[0].Answers, 3)

	require.Len(t, arch.got, 1, "archive failure must not fail the submission")
}

func TestScoringServiceTotalIsBankSize(t *testing.T) {
	qr, rr := newRepos(t, abcBank())
	svc := NewScoringService(qr, rr, nil, nil, true, zerolog.Nop())

	res, err := svc.Submit(ctx(), model.SubmitRequest{
		UserName: "Bo",
		Email:    "bo@example.com",
		Answers:  []model.Answer{{QuestionID: 2, SelectedOption: opt("b")}},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, res.Correct)
	assert.Equal(t, 3, res.Total)
	assert.Equal(t, 33.33, res.Percentage)
	require.Len(t, res.Answers, 1)
	assert.True(t, res.Answers[0].IsCorrect)
}

func TestScoringServiceEmptyBank(t *testing.T) {
	qr, rr := newRepos(t, []model.Question{})
	svc := NewScoringService(qr, rr, nil, nil, false, zerolog.Nop())

	res, err := svc.Submit(ctx(), model.SubmitRequest{
		UserName: "Cy",
		Email:    "cy@example.com",
		Answers:  []model.Answer{{QuestionID: 1, SelectedOption: opt("A")}},
	})
	require.NoError(t, err)
	assert.Equal(t, 0, res.Total)
	assert.Equal(t, 0.0, res.Percentage)
}

func TestScoringServiceRejectsInvalidPayload(t *testing.T) {
	qr, rr := newRepos(t, abcBank())
	svc := NewScoringService(qr, rr, nil, nil, false, zerolog.Nop())

	cases := []model.SubmitRequest{
		{Email: "a@example.com", Answers: []model.Answer{}},
		{UserName: "A", Answers: []model.Answer{}},
		{UserName: "A", Email: "a@example.com"},
	}
	for _, req := range cases {
		_, err := svc.Submit(ctx(), req)
		assert.ErrorIs(t, err, ErrInvalidSubmission)
	}

	results, err := svc.ListResults(ctx())
	require.NoError(t, err)
	assert.Empty(t, results, "rejected submissions must not be persisted")
}

func TestScoringServicePublishesSubmittedEvent(t *testing.T) {
	qr, rr := newRepos(t, abcBank())
	bus := broker.NewMemoryBus()
	proctor := NewProctorService(bus, zerolog.Nop())
	svc := NewScoringService(qr, rr, proctor, nil, false, zerolog.Nop())

	sub, cancel := context.WithCancel(ctx())
	defer cancel()
	events, err := proctor.Subscribe(sub)
	require.NoError(t, err)

	_, err = svc.Submit(ctx(), model.SubmitRequest{
		UserName: "Di",
		Email:    "di@example.com",
		Answers:  []model.Answer{{QuestionID: 1, SelectedOption: opt("A")}},
		Warnings: []string{"w1", "w2"},
	})
	require.NoError(t, err)

	select {
	case ev := <-events:
		assert.Equal(t, model.ProctorEventSubmitted, ev.Type)
		assert.Equal(t, "di@example.com", ev.Email)
		assert.Equal(t, 2, ev.WarningCount)
		require.NotNil(t, ev.Percentage)
		assert.Equal(t, 33.33, *ev.Percentage)
	case <-time.After(time.Second):
		t.Fatal("no submitted event")
	}
}

package validator

import (
	"testing"

	"github.com/stemsi/exstem-proctor/internal/model"
	"github.com/stretchr/testify/assert"
)

func TestValidateQuestionRequest(t *testing.T) {
	ok := model.QuestionRequest{Question: "Q?", Options: []string{"a", "b", "c", "d"}, Correct: "b"}
	assert.Nil(t, Validate(&ok))

	three := model.QuestionRequest{Question: "Q?", Options: []string{"a", "b", "c"}, Correct: "A"}
	fields := Validate(&three)
	assert.Contains(t, fields, "options")

	badLetter := model.QuestionRequest{Question: "Q?", Options: []string{"a", "b", "c", "d"}, Correct: "E"}
	fields = Validate(&badLetter)
	assert.Equal(t, "correct must be one of A, B, C or D", fields["correct"])

	empty := model.QuestionRequest{Options: []string{"a", "b", "c", "d"}, Correct: "A"}
	assert.Contains(t, Validate(&empty), "question")
}

func TestValidateSubmitRequest(t *testing.T) {
	ok := model.SubmitRequest{UserName: "Ann", Email: "ann@example.com", Answers: []model.Answer{}}
	assert.Nil(t, Validate(&ok))

	noAnswers := model.SubmitRequest{UserName: "Ann", Email: "ann@example.com"}
	assert.Contains(t, Validate(&noAnswers), "answers")

	badEmail := model.SubmitRequest{UserName: "Ann", Email: "nope", Answers: []model.Answer{}}
	assert.Contains(t, Validate(&badEmail), "email")
}

func TestIsEmail(t *testing.T) {
	assert.True(t, IsEmail("a@b.co"))
	assert.False(t, IsEmail("a@"))
	assert.False(t, IsEmail(""))
}

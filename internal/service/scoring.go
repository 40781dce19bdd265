package service

import (
	"math"

	"github.com/stemsi/exstem-proctor/internal/model"
)

// Grade compares answers against the bank. Answers naming an unknown question
// are ignored. When a question is answered more than once the last answer
// wins, matching how the exam page overwrites its answer sheet, so correct
// never exceeds the bank size.
func Grade(questions []model.Question, answers []model.Answer) (int, []model.GradedAnswer) {
	byID := make(map[int]*model.Question, len(questions))
	for i := range questions {
		byID[questions[i].ID] = &questions[i]
	}

	graded := make([]model.GradedAnswer, 0, len(answers))
	position := make(map[int]int, len(answers))

	for _, ans := range answers {
		q, ok := byID[ans.QuestionID]
		if !ok {
			continue
		}

		var selected *string
		if ans.SelectedOption != nil {
			s := model.NormalizeLetter(*ans.SelectedOption)
			selected = &s
		}

		entry := model.GradedAnswer{
			QuestionID:     q.ID,
			Question:       q.Question,
			Options:        q.Options,
			SelectedOption: selected,
			CorrectOption:  q.Correct,
			IsCorrect:      selected != nil && *selected == q.Correct,
		}

		if idx, seen := position[q.ID]; seen {
			graded[idx] = entry
			continue
		}
		position[q.ID] = len(graded)
		graded = append(graded, entry)
	}

	correct := 0
	for _, g := range graded {
		if g.IsCorrect {
			correct++
		}
	}
	return correct, graded
}

// Percentage returns 100*correct/total rounded to two decimals, or 0 for an
// empty bank.
func Percentage(correct, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(correct)/float64(total)*100*100) / 100
}

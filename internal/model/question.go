package model

import "strings"

// OptionCount is the fixed number of options every question carries.
const OptionCount = 4

// OptionLetters maps option positions to their answer letters.
var OptionLetters = [OptionCount]string{"A", "B", "C", "D"}

// Question is a bank entry including its correct answer. Only admins see it.
type Question struct {
	ID       int      `json:"id"`
	Question string   `json:"question"`
	Options  []string `json:"options"`
	Correct  string   `json:"correct"`
}

// SanitizedQuestion is a question without the correct answer, sent to exam-takers.
type SanitizedQuestion struct {
	ID       int      `json:"id"`
	Question string   `json:"question"`
	Options  []string `json:"options"`
}

// Sanitize strips the correct answer.
func (q Question) Sanitize() SanitizedQuestion {
	opts := make([]string, len(q.Options))
	copy(opts, q.Options)
	return SanitizedQuestion{ID: q.ID, Question: q.Question, Options: opts}
}

// QuestionRequest is the admin payload for creating or replacing a question.
type QuestionRequest struct {
	Question string   `json:"question" binding:"required,max=2000"`
	Options  []string `json:"options" binding:"required,len=4,dive,max=500"`
	Correct  string   `json:"correct" binding:"required,option_letter"`
}

// ToQuestion builds a Question with the correct letter normalised.
func (r QuestionRequest) ToQuestion(id int) Question {
	opts := make([]string, len(r.Options))
	copy(opts, r.Options)
	return Question{
		ID:       id,
		Question: r.Question,
		Options:  opts,
		Correct:  NormalizeLetter(r.Correct),
	}
}

// NormalizeLetter trims and upper-cases an option letter.
func NormalizeLetter(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// IsOptionLetter reports whether s names one of the four options, ignoring
// case and surrounding space.
func IsOptionLetter(s string) bool {
	return LetterIndex(s) >= 0
}

// LetterIndex returns the option position for a letter, or -1.
func LetterIndex(s string) int {
	n := NormalizeLetter(s)
	for i, l := range OptionLetters {
		if l == n {
			return i
		}
	}
	return -1
}
